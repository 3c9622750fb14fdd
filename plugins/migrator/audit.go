package migrator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/searchops/indexmigrate/migration"
	"github.com/searchops/indexmigrate/util"
)

const auditIndexName = ".migrations"

const auditMaxHits = 100

// auditEntry is the document recorded per migration run.
type auditEntry struct {
	Target         string    `json:"target"`
	Index          string    `json:"index,omitempty"`
	CopiedFrom     string    `json:"copied_from,omitempty"`
	RemovedIndices []string  `json:"removed_indices,omitempty"`
	Status         string    `json:"status"`
	Error          string    `json:"error,omitempty"`
	TookMillis     int64     `json:"took_millis"`
	Timestamp      time.Time `json:"timestamp"`
}

// ensureAuditIndex creates the audit index if it doesn't already exist.
func ensureAuditIndex(ctx context.Context) error {
	client := util.GetClient7()

	exists, err := client.IndexExists(auditIndexName).Do(ctx)
	if err != nil {
		return fmt.Errorf("error while checking if index already exists: %v", err)
	}
	if exists {
		log.Println(logTag, ":", auditIndexName, "exists, skip creating")
		return nil
	}

	body := fmt.Sprintf(`{
		"settings": {
			%s
			"number_of_shards": 1,
			"number_of_replicas": 0
		},
		"mappings": {
			"properties": {
				"timestamp": { "type": "date" }
			}
		}
	}`, util.HiddenIndexSettings())

	_, err = client.CreateIndex(auditIndexName).Body(body).Do(ctx)
	if err != nil {
		return fmt.Errorf("error while creating index named %s: %v", auditIndexName, err)
	}

	log.Println(logTag, ": successfully created index named", auditIndexName)
	return nil
}

// recordMigration stores the outcome of a run. Failure to record is logged,
// it never fails the migration itself.
func (m *migrator) recordMigration(ctx context.Context, target string, result *migration.Result, runErr error, took time.Duration) {
	entry := auditEntry{
		Target:     target,
		Status:     "success",
		TookMillis: took.Milliseconds(),
		Timestamp:  time.Now().UTC(),
	}
	if runErr != nil {
		entry.Status = "failure"
		entry.Error = runErr.Error()
	}
	if result != nil {
		entry.Index = result.Index
		entry.CopiedFrom = result.CopiedFrom
		entry.RemovedIndices = result.RemovedIndices
	}

	_, err := util.GetClient7().
		Index().
		Index(auditIndexName).
		BodyJson(entry).
		Do(ctx)
	if err != nil {
		log.Errorln(logTag, ": error recording migration of", target, ":", err)
	}
}

// recentMigrations returns the latest audit entries, newest first, as a
// json encoded array.
func (m *migrator) recentMigrations(ctx context.Context) ([]byte, error) {
	res, err := util.GetClient7().
		Search(auditIndexName).
		Sort("timestamp", false).
		Size(auditMaxHits).
		Do(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]json.RawMessage, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		entries = append(entries, json.RawMessage(hit.Source))
	}
	return json.Marshal(entries)
}
