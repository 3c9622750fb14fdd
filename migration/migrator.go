// Package migration creates a new Elasticsearch index based on an existing
// index, or on explicit payloads, and repoints a stable alias at it.
//
// The preferred scenario is to create indices with a timestamp suffix and
// let clients use an alias without the timestamp: target then names the
// alias, and the defaults follow that scenario. Alternatively an index can
// be created under its exact name, or a concrete index can be replaced by
// the alias setup in one go.
//
// The protocol runs as a single pass with no retries between steps and no
// rollback: when a step fails the error is returned as-is and whatever the
// cluster did in the prior steps stays in place. Callers must serialize
// migrations per target alias.
package migration

import (
	"context"
	"time"

	es7 "github.com/olivere/elastic/v7"
	log "github.com/sirupsen/logrus"

	"github.com/searchops/indexmigrate/errors"
	"github.com/searchops/indexmigrate/util"
)

const logTag = "[migration]"

// Migrator runs the migration protocol against a cluster.
type Migrator struct {
	es adminService
}

// New returns a Migrator backed by the package-level elasticsearch client.
func New() *Migrator {
	return &Migrator{newElasticsearch(util.GetClient7())}
}

// NewWithClient returns a Migrator backed by the given client.
func NewWithClient(client *es7.Client) *Migrator {
	return &Migrator{newElasticsearch(client)}
}

// Result is the terminal record of a completed migration.
type Result struct {
	// Index is the name of the index that is now live.
	Index string `json:"index"`
	// Alias is the alias pointing at Index, empty in exact-name mode.
	Alias string `json:"alias,omitempty"`
	// CopiedFrom is the index settings, mappings and data came from.
	CopiedFrom string `json:"copied_from,omitempty"`
	// RemovedIndices lists the old indices deleted during cleanup.
	RemovedIndices []string `json:"removed_indices,omitempty"`
	// RemovedAlias is the alias binding pattern removed on the alias move.
	RemovedAlias string `json:"removed_alias,omitempty"`
}

// Execute runs the migration described by cfg and blocks until it is done.
// The returned error is one of the types in the errors package, or a raw
// cluster error from a lookup step.
func (m *Migrator) Execute(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	newIndex := provisionedName(cfg, time.Now())
	log.Debugln(logTag, ": migration for", cfg.target, "provisions index", newIndex)

	src, err := resolveSource(ctx, m.es, cfg)
	if err != nil {
		return nil, err
	}

	settings, err := resolveSettings(ctx, m.es, cfg, src)
	if err != nil {
		return nil, err
	}

	mappings, err := resolveMappings(ctx, m.es, cfg, src)
	if err != nil {
		return nil, err
	}

	if err := m.es.createIndex(ctx, newIndex, createBody(settings, mappings)); err != nil {
		return nil, errors.NewIndexCreationError(newIndex, err)
	}

	if err := m.copyContent(ctx, cfg, src.copyFrom, newIndex); err != nil {
		return nil, err
	}

	result := &Result{Index: newIndex, CopiedFrom: src.copyFrom}

	if !cfg.exactName && !cfg.replaceWithAlias {
		if err := m.moveAlias(ctx, cfg, newIndex); err != nil {
			return nil, err
		}
		result.Alias = cfg.target
		if cfg.removeOldAlias {
			result.RemovedAlias = cfg.target + "-*"
		}
	}

	removed, err := m.removeOldIndices(ctx, cfg, src)
	if err != nil {
		return nil, err
	}
	result.RemovedIndices = removed

	if cfg.replaceWithAlias {
		// The old index of the same name is gone by now, the alias slot is
		// free to take.
		add := []aliasBinding{{index: newIndex, alias: cfg.target}}
		if err := m.es.updateAliases(ctx, add, nil); err != nil {
			return nil, errors.NewAliasUpdateError(cfg.target, err)
		}
		result.Alias = cfg.target
	}

	log.Infoln(logTag, ": index", newIndex, "is live for", cfg.target)
	return result, nil
}

// copyContent invokes the configured copier between index creation and any
// alias mutation, and blocks until it finishes.
func (m *Migrator) copyContent(ctx context.Context, cfg Config, source, target string) error {
	if cfg.copier == nil || source == "" {
		return nil
	}
	if err := cfg.copier.Copy(ctx, source, target); err != nil {
		return errors.NewContentCopyError(source, target, err)
	}
	return nil
}

// moveAlias repoints the target alias at the new index. Removal of the old
// binding and addition of the new one go out in a single request so the
// alias never points nowhere.
func (m *Migrator) moveAlias(ctx context.Context, cfg Config, newIndex string) error {
	var remove []aliasBinding
	if cfg.removeOldAlias {
		remove = append(remove, aliasBinding{index: cfg.target + "-*", alias: cfg.target})
	}
	add := []aliasBinding{{index: newIndex, alias: cfg.target}}
	if err := m.es.updateAliases(ctx, add, remove); err != nil {
		return errors.NewAliasUpdateError(cfg.target, err)
	}
	return nil
}

// removeOldIndices deletes the indices superseded by the migration: the
// candidates found through the alias when there are any, the explicit
// copy-from index otherwise.
func (m *Migrator) removeOldIndices(ctx context.Context, cfg Config, src resolvedSource) ([]string, error) {
	if !cfg.removeOldIndices {
		return nil, nil
	}
	targets := src.candidates
	if len(targets) == 0 && cfg.copyFrom != "" {
		targets = []string{cfg.copyFrom}
	}
	var removed []string
	for _, index := range targets {
		if err := m.es.deleteIndex(ctx, index); err != nil {
			return removed, errors.NewIndexDeletionError(index, err)
		}
		removed = append(removed, index)
	}
	return removed, nil
}
