package migration

import (
	"context"
	"fmt"

	es7 "github.com/olivere/elastic/v7"
	log "github.com/sirupsen/logrus"

	"github.com/searchops/indexmigrate/errors"
)

// elasticsearch implements adminService on top of the olivere client.
type elasticsearch struct {
	client *es7.Client
}

func newElasticsearch(client *es7.Client) *elasticsearch {
	return &elasticsearch{client}
}

// aliasExists reports whether name is currently an alias in the cluster.
func (es *elasticsearch) aliasExists(ctx context.Context, name string) (bool, error) {
	aliases, err := es.client.CatAliases().Do(ctx)
	if err != nil {
		return false, err
	}
	for _, alias := range aliases {
		if alias.Alias == name {
			return true, nil
		}
	}
	return false, nil
}

// indicesForAlias returns the concrete indices currently bound to alias.
// A missing alias yields an empty result, not an error.
func (es *elasticsearch) indicesForAlias(ctx context.Context, alias string) ([]string, error) {
	res, err := es.client.Aliases().Index(alias).Do(ctx)
	if err != nil {
		if es7.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return res.IndicesByAlias(alias), nil
}

// settingsOf fetches the settings of indexName. Bookkeeping settings the
// cluster refuses on a create request are stripped, the rest is returned
// as-is.
func (es *elasticsearch) settingsOf(ctx context.Context, indexName string) (map[string]interface{}, error) {
	res, err := es.client.IndexGetSettings(indexName).Do(ctx)
	if err != nil {
		if es7.IsNotFound(err) {
			return nil, errors.NewSourceNotFoundError(indexName)
		}
		return nil, err
	}
	indexSettings, found := res[indexName]
	if !found || indexSettings == nil {
		return nil, errors.NewSourceNotFoundError(indexName)
	}
	settings := indexSettings.Settings
	if index, ok := settings["index"].(map[string]interface{}); ok {
		delete(index, "creation_date")
		delete(index, "uuid")
		delete(index, "version")
		delete(index, "provided_name")
	}
	return settings, nil
}

// mappingsOf fetches the mappings of indexName, keyed the way the cluster
// returns them: per type on 6.x-style indices, a bare properties object on
// typeless ones.
func (es *elasticsearch) mappingsOf(ctx context.Context, indexName string) (map[string]interface{}, error) {
	res, err := es.client.GetMapping().Index(indexName).Do(ctx)
	if err != nil {
		if es7.IsNotFound(err) {
			return nil, errors.NewSourceNotFoundError(indexName)
		}
		return nil, err
	}
	indexMappings, ok := res[indexName].(map[string]interface{})
	if !ok {
		return nil, errors.NewSourceNotFoundError(indexName)
	}
	mappings, ok := indexMappings["mappings"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected mappings result for index %q", indexName)
	}
	return mappings, nil
}

// createIndex creates a new index with the given body in a single
// synchronous call.
func (es *elasticsearch) createIndex(ctx context.Context, name string, body map[string]interface{}) error {
	svc := es.client.CreateIndex(name)
	if len(body) > 0 {
		svc = svc.BodyJson(body)
	}
	res, err := svc.Do(ctx)
	if err != nil {
		return err
	}
	if !res.Acknowledged {
		return fmt.Errorf("failed to create index named %q, acknowledged=false", name)
	}
	return nil
}

// updateAliases applies the removals and additions as one batch, which the
// cluster applies atomically.
func (es *elasticsearch) updateAliases(ctx context.Context, add, remove []aliasBinding) error {
	svc := es.client.Alias()
	for _, binding := range remove {
		svc = svc.Action(es7.NewAliasRemoveAction(binding.alias).Index(binding.index))
	}
	for _, binding := range add {
		svc = svc.Action(es7.NewAliasAddAction(binding.alias).Index(binding.index))
	}
	res, err := svc.Do(ctx)
	if err != nil {
		return err
	}
	if !res.Acknowledged {
		return fmt.Errorf("alias update was not acknowledged")
	}
	return nil
}

// deleteIndex deletes name if present. A missing index is a no-op.
func (es *elasticsearch) deleteIndex(ctx context.Context, name string) error {
	res, err := es.client.DeleteIndex(name).Do(ctx)
	if err != nil {
		if es7.IsNotFound(err) {
			log.Debugln(logTag, ": index", name, "is already absent")
			return nil
		}
		return err
	}
	if !res.Acknowledged {
		return fmt.Errorf("error deleting index %q, acknowledged=false", name)
	}
	return nil
}
