package migration

import "context"

// aliasBinding pairs a concrete index with an alias name. The index may be
// a wildcard pattern on removals.
type aliasBinding struct {
	index string
	alias string
}

// adminService is the admin surface of the cluster that the migration
// protocol needs. Connection lifecycle, authentication and request-level
// retries are the client's concern, every method either returns a result
// or an error.
type adminService interface {
	aliasExists(ctx context.Context, name string) (bool, error)
	indicesForAlias(ctx context.Context, alias string) ([]string, error)
	settingsOf(ctx context.Context, indexName string) (map[string]interface{}, error)
	mappingsOf(ctx context.Context, indexName string) (map[string]interface{}, error)
	createIndex(ctx context.Context, name string, body map[string]interface{}) error
	updateAliases(ctx context.Context, add, remove []aliasBinding) error
	deleteIndex(ctx context.Context, name string) error
}
