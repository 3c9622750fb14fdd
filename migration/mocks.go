package migration

import (
	"context"
	"fmt"

	"github.com/searchops/indexmigrate/errors"
)

// mockAdmin is an in-memory adminService. Cluster state is seeded through
// the fixture maps, every mutation is recorded for assertions, and ops
// keeps the call order of the mutating methods.
type mockAdmin struct {
	aliases  map[string][]string
	settings map[string]map[string]interface{}
	mappings map[string]map[string]interface{}

	createdIndex    string
	createdBody     map[string]interface{}
	addedBindings   []aliasBinding
	removedBindings []aliasBinding
	deletedIndices  []string
	ops             []string
}

func (m *mockAdmin) aliasExists(ctx context.Context, name string) (bool, error) {
	_, found := m.aliases[name]
	return found, nil
}

func (m *mockAdmin) indicesForAlias(ctx context.Context, alias string) ([]string, error) {
	return m.aliases[alias], nil
}

func (m *mockAdmin) settingsOf(ctx context.Context, indexName string) (map[string]interface{}, error) {
	settings, found := m.settings[indexName]
	if !found {
		return nil, errors.NewSourceNotFoundError(indexName)
	}
	return settings, nil
}

func (m *mockAdmin) mappingsOf(ctx context.Context, indexName string) (map[string]interface{}, error) {
	mappings, found := m.mappings[indexName]
	if !found {
		return nil, errors.NewSourceNotFoundError(indexName)
	}
	return mappings, nil
}

func (m *mockAdmin) createIndex(ctx context.Context, name string, body map[string]interface{}) error {
	m.createdIndex = name
	m.createdBody = body
	m.ops = append(m.ops, "createIndex")
	return nil
}

func (m *mockAdmin) updateAliases(ctx context.Context, add, remove []aliasBinding) error {
	m.addedBindings = append(m.addedBindings, add...)
	m.removedBindings = append(m.removedBindings, remove...)
	m.ops = append(m.ops, "updateAliases")
	return nil
}

func (m *mockAdmin) deleteIndex(ctx context.Context, name string) error {
	m.deletedIndices = append(m.deletedIndices, name)
	m.ops = append(m.ops, "deleteIndex")
	return nil
}

type mockAdminCreateIndexErr struct{ *mockAdmin }

func (m *mockAdminCreateIndexErr) createIndex(ctx context.Context, name string, body map[string]interface{}) error {
	return fmt.Errorf("failed to create index named %q, acknowledged=false", name)
}

type mockAdminUpdateAliasesErr struct{ *mockAdmin }

func (m *mockAdminUpdateAliasesErr) updateAliases(ctx context.Context, add, remove []aliasBinding) error {
	return fmt.Errorf("alias update was not acknowledged")
}

type mockAdminDeleteIndexErr struct{ *mockAdmin }

func (m *mockAdminDeleteIndexErr) deleteIndex(ctx context.Context, name string) error {
	return fmt.Errorf("error deleting index %q, acknowledged=false", name)
}

// mockCopier records the single Copy call the migration makes.
type mockCopier struct {
	called bool
	source string
	target string
	err    error
}

func (c *mockCopier) Copy(ctx context.Context, sourceIndex, targetIndex string) error {
	c.called = true
	c.source = sourceIndex
	c.target = targetIndex
	return c.err
}
