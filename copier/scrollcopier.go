// Package copier provides a ContentCopier implementation that streams
// documents between two indices of the same cluster with a scroll search
// and bulk writes.
package copier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	es7 "github.com/olivere/elastic/v7"
	log "github.com/sirupsen/logrus"
)

const logTag = "[copier]"

const (
	defaultScrollSize  = 500
	defaultBulkActions = 1000
	scrollKeepAlive    = "5m"
)

// ScrollBulkCopier copies all documents of a source index into a target
// index. Documents keep their ids. The copy is synchronous, Copy returns
// once every batch has been acknowledged and the target has been refreshed.
type ScrollBulkCopier struct {
	client      *es7.Client
	scrollSize  int
	bulkActions int
}

// NewScrollBulkCopier returns a copier with default batch sizes.
func NewScrollBulkCopier(client *es7.Client) *ScrollBulkCopier {
	return &ScrollBulkCopier{
		client:      client,
		scrollSize:  defaultScrollSize,
		bulkActions: defaultBulkActions,
	}
}

// ScrollSize sets the number of documents fetched per scroll page.
func (c *ScrollBulkCopier) ScrollSize(size int) *ScrollBulkCopier {
	c.scrollSize = size
	return c
}

// BulkActions sets the number of index operations per bulk request.
func (c *ScrollBulkCopier) BulkActions(n int) *ScrollBulkCopier {
	c.bulkActions = n
	return c
}

// Copy implements migration.ContentCopier.
func (c *ScrollBulkCopier) Copy(ctx context.Context, sourceIndex, targetIndex string) error {
	log.Debugln(logTag, ": copying documents from", sourceIndex, "to", targetIndex)

	scroll := c.client.Scroll(sourceIndex).Size(c.scrollSize).Scroll(scrollKeepAlive)
	defer scroll.Clear(context.Background())

	bulk := c.client.Bulk()
	copied := 0
	for {
		page, err := scroll.Do(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		for _, hit := range page.Hits.Hits {
			bulk.Add(es7.NewBulkIndexRequest().
				Index(targetIndex).
				Id(hit.Id).
				Doc(json.RawMessage(hit.Source)))
			copied++
			if bulk.NumberOfActions() >= c.bulkActions {
				if err := c.flush(ctx, bulk); err != nil {
					return err
				}
			}
		}
	}
	if bulk.NumberOfActions() > 0 {
		if err := c.flush(ctx, bulk); err != nil {
			return err
		}
	}

	// Make the copied documents visible before the alias is repointed.
	if _, err := c.client.Refresh(targetIndex).Do(ctx); err != nil {
		return err
	}

	log.Infoln(logTag, ": copied", copied, "documents from", sourceIndex, "to", targetIndex)
	return nil
}

func (c *ScrollBulkCopier) flush(ctx context.Context, bulk *es7.BulkService) error {
	res, err := bulk.Do(ctx)
	if err != nil {
		return err
	}
	if failed := res.Failed(); len(failed) > 0 {
		first := failed[0]
		reason := ""
		if first.Error != nil {
			reason = first.Error.Reason
		}
		return fmt.Errorf("%d documents failed to index, first failure on %q: %s", len(failed), first.Id, reason)
	}
	return nil
}
