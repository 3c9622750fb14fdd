package migration

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"testing"

	"github.com/searchops/indexmigrate/errors"
)

var timestampedName = regexp.MustCompile(`^shop-\d{14}$`)

func TestExecuteDefaultScenario(t *testing.T) {
	ctx := context.Background()
	mock := &mockAdmin{
		aliases: map[string][]string{
			// deliberately unsorted, the latest index must still win
			"shop": {"shop-20200101020202", "shop-20200101010101"},
		},
		settings: map[string]map[string]interface{}{
			"shop-20200101020202": {
				"index": map[string]interface{}{"number_of_shards": "5"},
			},
		},
		mappings: map[string]map[string]interface{}{
			"shop-20200101020202": {
				"properties": map[string]interface{}{
					"name": map[string]interface{}{"type": "text"},
				},
			},
		},
	}
	copier := &mockCopier{}
	cfg := NewBuilder("shop").
		CopyDataWith(copier).
		RemoveOldIndices().
		Build()

	result, err := (&Migrator{mock}).Execute(ctx, cfg)
	if err != nil {
		t.Fatalf("Migration should have succeeded, got: %v\n", err)
	}

	if !timestampedName.MatchString(result.Index) {
		t.Fatalf("New index should carry a timestamp suffix, got: %q\n", result.Index)
	}
	if mock.createdIndex != result.Index {
		t.Fatalf("Created index %q does not match result index %q\n", mock.createdIndex, result.Index)
	}
	if result.CopiedFrom != "shop-20200101020202" {
		t.Fatalf("Latest index behind the alias should be the copy source, got: %q\n", result.CopiedFrom)
	}

	settings, _ := mock.createdBody["settings"].(map[string]interface{})
	if !reflect.DeepEqual(settings, mock.settings["shop-20200101020202"]) {
		t.Fatalf("New index should carry the settings of the copy source, got: %v\n", settings)
	}
	if _, ok := mock.createdBody["mappings"]; !ok {
		t.Fatalf("New index should carry the mappings of the copy source, got: %v\n", mock.createdBody)
	}

	if !copier.called || copier.source != "shop-20200101020202" || copier.target != result.Index {
		t.Fatalf("Content copy should run from the copy source into the new index, got: %+v\n", copier)
	}

	expectedAdd := []aliasBinding{{index: result.Index, alias: "shop"}}
	if !reflect.DeepEqual(mock.addedBindings, expectedAdd) {
		t.Fatalf("Alias should be bound to the new index, got: %v\n", mock.addedBindings)
	}
	expectedRemove := []aliasBinding{{index: "shop-*", alias: "shop"}}
	if !reflect.DeepEqual(mock.removedBindings, expectedRemove) {
		t.Fatalf("Old alias bindings should be removed by pattern, got: %v\n", mock.removedBindings)
	}
	if result.Alias != "shop" || result.RemovedAlias != "shop-*" {
		t.Fatalf("Result should report the alias move, got: %+v\n", result)
	}

	expectedDeleted := []string{"shop-20200101010101", "shop-20200101020202"}
	if !reflect.DeepEqual(mock.deletedIndices, expectedDeleted) {
		t.Fatalf("Both old indices should be deleted, got: %v\n", mock.deletedIndices)
	}
	if !reflect.DeepEqual(result.RemovedIndices, expectedDeleted) {
		t.Fatalf("Result should report the removed indices, got: %v\n", result.RemovedIndices)
	}

	expectedOps := []string{"createIndex", "updateAliases", "deleteIndex", "deleteIndex"}
	if !reflect.DeepEqual(mock.ops, expectedOps) {
		t.Fatalf("Steps should run in strict order, got: %v\n", mock.ops)
	}
}

func TestExecuteFreshAlias(t *testing.T) {
	ctx := context.Background()
	mock := &mockAdmin{}
	cfg := NewBuilder("shop").Build()

	result, err := (&Migrator{mock}).Execute(ctx, cfg)
	if err != nil {
		t.Fatalf("Migration of a fresh alias should have succeeded, got: %v\n", err)
	}
	if !timestampedName.MatchString(result.Index) {
		t.Fatalf("New index should carry a timestamp suffix, got: %q\n", result.Index)
	}
	if len(mock.createdBody) != 0 {
		t.Fatalf("With no source and no payloads the create body should be empty, got: %v\n", mock.createdBody)
	}
	if result.Alias != "shop" || len(mock.removedBindings) != 0 {
		t.Fatalf("Fresh alias should only gain a binding, got: %+v remove: %v\n", result, mock.removedBindings)
	}
	if len(mock.deletedIndices) != 0 {
		t.Fatalf("Nothing should be deleted by default, got: %v\n", mock.deletedIndices)
	}
}

func TestExecuteExactName(t *testing.T) {
	ctx := context.Background()
	mock := &mockAdmin{}
	cfg := NewBuilder("catalog").
		UseExactName().
		Settings(`{"index":{"number_of_shards":1}}`).
		AddMapping("properties", `{"name":{"type":"text"}}`).
		Build()

	result, err := (&Migrator{mock}).Execute(ctx, cfg)
	if err != nil {
		t.Fatalf("Exact-name migration should have succeeded, got: %v\n", err)
	}
	if result.Index != "catalog" || mock.createdIndex != "catalog" {
		t.Fatalf("Exact-name migration should create the target verbatim, got: %q\n", mock.createdIndex)
	}
	if result.Alias != "" || len(mock.addedBindings) != 0 || len(mock.removedBindings) != 0 {
		t.Fatalf("Exact-name migration should not touch aliases, got: %+v\n", mock)
	}
}

func TestExecuteReplaceWithAlias(t *testing.T) {
	ctx := context.Background()
	mock := &mockAdmin{
		settings: map[string]map[string]interface{}{
			"products": {
				"index": map[string]interface{}{"number_of_shards": "1"},
			},
		},
		mappings: map[string]map[string]interface{}{
			"products": {
				"properties": map[string]interface{}{
					"sku": map[string]interface{}{"type": "keyword"},
				},
			},
		},
	}
	copier := &mockCopier{}
	cfg := NewBuilder("products").
		CopyDataWith(copier).
		ReplaceWithAlias().
		Build()

	result, err := (&Migrator{mock}).Execute(ctx, cfg)
	if err != nil {
		t.Fatalf("Replace migration should have succeeded, got: %v\n", err)
	}
	if !regexp.MustCompile(`^products-\d{14}$`).MatchString(result.Index) {
		t.Fatalf("Replacement index should carry a timestamp suffix, got: %q\n", result.Index)
	}
	if !copier.called || copier.source != "products" || copier.target != result.Index {
		t.Fatalf("Content of the concrete index should be copied over, got: %+v\n", copier)
	}
	if !reflect.DeepEqual(mock.deletedIndices, []string{"products"}) {
		t.Fatalf("The concrete index should be deleted, got: %v\n", mock.deletedIndices)
	}
	expectedAdd := []aliasBinding{{index: result.Index, alias: "products"}}
	if !reflect.DeepEqual(mock.addedBindings, expectedAdd) {
		t.Fatalf("The freed name should become an alias to the new index, got: %v\n", mock.addedBindings)
	}
	if result.Alias != "products" {
		t.Fatalf("Result should report the new alias, got: %+v\n", result)
	}

	// The alias can only take the name once the old index is gone.
	expectedOps := []string{"createIndex", "deleteIndex", "updateAliases"}
	if !reflect.DeepEqual(mock.ops, expectedOps) {
		t.Fatalf("Replace steps should run in strict order, got: %v\n", mock.ops)
	}
}

var executeConfigErrTests = []struct {
	description string
	cfg         Config
}{
	{
		"empty target",
		NewBuilder("").Build(),
	},
	{
		"replace mode without a copier",
		NewBuilder("products").ReplaceWithAlias().Build(),
	},
}

func TestExecuteConfigErr(t *testing.T) {
	for _, tt := range executeConfigErrTests {
		t.Run(tt.description, func(t *testing.T) {
			ctx := context.Background()
			mock := &mockAdmin{}
			_, err := (&Migrator{mock}).Execute(ctx, tt.cfg)
			if _, ok := err.(*errors.ConfigError); !ok {
				t.Fatalf("Execution should have failed with a config error, got: %v\n", err)
			}
			if len(mock.ops) != 0 {
				t.Fatalf("Config errors must precede any cluster call, got: %v\n", mock.ops)
			}
		})
	}
}

func TestExecuteSourceIsAlias(t *testing.T) {
	ctx := context.Background()
	mock := &mockAdmin{
		aliases: map[string][]string{"books": {"books-20200101010101"}},
	}
	cfg := NewBuilder("library").CopyFrom("books").Build()

	_, err := (&Migrator{mock}).Execute(ctx, cfg)
	if _, ok := err.(*errors.SourceIsAliasError); !ok {
		t.Fatalf("Copying from an alias should have been rejected, got: %v\n", err)
	}
	if mock.createdIndex != "" {
		t.Fatalf("No index should be created when the source is an alias, got: %q\n", mock.createdIndex)
	}
}

func TestExecuteSourceNotFound(t *testing.T) {
	ctx := context.Background()
	mock := &mockAdmin{}
	cfg := NewBuilder("library").CopyFrom("ghost").Build()

	_, err := (&Migrator{mock}).Execute(ctx, cfg)
	if _, ok := err.(*errors.SourceNotFoundError); !ok {
		t.Fatalf("A missing copy source should have been reported, got: %v\n", err)
	}
	if mock.createdIndex != "" {
		t.Fatalf("No index should be created when the source is missing, got: %q\n", mock.createdIndex)
	}
}

func TestExecuteStepErrs(t *testing.T) {
	base := func() *mockAdmin {
		return &mockAdmin{
			aliases: map[string][]string{"shop": {"shop-20200101010101"}},
			settings: map[string]map[string]interface{}{
				"shop-20200101010101": {"index": map[string]interface{}{"number_of_shards": "1"}},
			},
			mappings: map[string]map[string]interface{}{
				"shop-20200101010101": {"properties": map[string]interface{}{}},
			},
		}
	}

	t.Run("index creation failure", func(t *testing.T) {
		mock := &mockAdminCreateIndexErr{base()}
		cfg := NewBuilder("shop").Build()
		_, err := (&Migrator{mock}).Execute(context.Background(), cfg)
		if _, ok := err.(*errors.IndexCreationError); !ok {
			t.Fatalf("Expected an index creation error, got: %v\n", err)
		}
	})

	t.Run("content copy failure", func(t *testing.T) {
		mock := base()
		copier := &mockCopier{err: fmt.Errorf("search context expired")}
		cfg := NewBuilder("shop").CopyDataWith(copier).Build()
		_, err := (&Migrator{mock}).Execute(context.Background(), cfg)
		if _, ok := err.(*errors.ContentCopyError); !ok {
			t.Fatalf("Expected a content copy error, got: %v\n", err)
		}
		if len(mock.addedBindings) != 0 {
			t.Fatalf("Alias must stay on the old index after a failed copy, got: %v\n", mock.addedBindings)
		}
	})

	t.Run("alias update failure", func(t *testing.T) {
		mock := &mockAdminUpdateAliasesErr{base()}
		cfg := NewBuilder("shop").Build()
		_, err := (&Migrator{mock}).Execute(context.Background(), cfg)
		if _, ok := err.(*errors.AliasUpdateError); !ok {
			t.Fatalf("Expected an alias update error, got: %v\n", err)
		}
	})

	t.Run("index deletion failure", func(t *testing.T) {
		mock := &mockAdminDeleteIndexErr{base()}
		cfg := NewBuilder("shop").RemoveOldIndices().Build()
		_, err := (&Migrator{mock}).Execute(context.Background(), cfg)
		if _, ok := err.(*errors.IndexDeletionError); !ok {
			t.Fatalf("Expected an index deletion error, got: %v\n", err)
		}
	})
}
