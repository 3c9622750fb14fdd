package migration

import (
	"context"

	"github.com/searchops/indexmigrate/errors"
)

// ContentCopier transfers the documents of a source index into a target
// index. Implementations own their retry and streaming semantics, the
// migration invokes Copy once, synchronously, between index creation and
// alias work.
type ContentCopier interface {
	Copy(ctx context.Context, sourceIndex, targetIndex string) error
}

// Config is an immutable description of a single migration. Build one with
// a Builder, then pass it to Migrator.Execute. A Config is never mutated
// once the protocol starts, everything derived from it (the resolved copy
// source, the provisioned index name) is computed per execution.
type Config struct {
	target             string
	exactName          bool
	copyFrom           string
	settings           string
	mappings           map[string]string
	settingsIdentifier string
	mappingsIdentifier string
	removeOldIndices   bool
	removeOldAlias     bool
	replaceWithAlias   bool
	copier             ContentCopier
}

// Target returns the alias, or exact index name, the migration is for.
func (c Config) Target() string {
	return c.target
}

func (c Config) validate() error {
	if c.target == "" {
		return errors.NewConfigError("target name must not be empty")
	}
	if c.replaceWithAlias && c.copier == nil {
		return errors.NewConfigError("replace-mode requires a content copier")
	}
	return nil
}

// Builder accumulates the options of a migration. It performs no cluster
// I/O, validation happens when the migration starts.
//
// The default scenario is an alias-managed index: target is the name of the
// alias, the new index gets a timestamp suffix, and settings, mappings and
// data are taken from the index the alias currently points to. The other
// scenarios (exact names, explicit payloads, replacing a concrete index
// with an alias) are opt-in through the methods below.
type Builder struct {
	cfg Config
}

// NewBuilder starts a builder for the given index or alias name.
func NewBuilder(target string) *Builder {
	return &Builder{Config{target: target}}
}

// Settings provides the settings payload for the new index. Providing
// settings indicates the settings of an existing index are not wanted. When
// the migration creates a brand new index this is mandatory.
func (b *Builder) Settings(settings string) *Builder {
	b.cfg.settings = settings
	return b
}

// AddMapping adds the mapping payload for the given type. Providing a
// mapping indicates mappings are not to be copied from an existing index.
// When the migration creates a brand new index this is mandatory.
func (b *Builder) AddMapping(typ, mapping string) *Builder {
	if b.cfg.mappings == nil {
		b.cfg.mappings = make(map[string]string)
	}
	b.cfg.mappings[typ] = mapping
	return b
}

// SettingsIdentifier stores the given identifier in the new index as
// metadata, next to the explicit settings payload.
func (b *Builder) SettingsIdentifier(identifier string) *Builder {
	b.cfg.settingsIdentifier = identifier
	return b
}

// MappingsIdentifier stores the given identifier in the new index as
// metadata, next to the explicit settings payload.
func (b *Builder) MappingsIdentifier(identifier string) *Builder {
	b.cfg.mappingsIdentifier = identifier
	return b
}

// CopyFrom manually sets the index to copy settings, mappings and data
// from. Only to be used when not relying on the alias lookup.
func (b *Builder) CopyFrom(index string) *Builder {
	b.cfg.copyFrom = index
	return b
}

// CopyDataWith configures the copier that transfers all data from the old
// index into the new one.
func (b *Builder) CopyDataWith(copier ContentCopier) *Builder {
	b.cfg.copier = copier
	return b
}

// RemoveOldIndices requests removal of the old indices after creation and
// copying are done: either the configured copy-from index, or the indices
// found through the alias. Implies RemoveOldAlias.
func (b *Builder) RemoveOldIndices() *Builder {
	b.cfg.removeOldIndices = true
	b.cfg.removeOldAlias = true
	return b
}

// RemoveOldAlias requests removal of the alias from the old indices when
// the alias is moved.
func (b *Builder) RemoveOldAlias() *Builder {
	b.cfg.removeOldAlias = true
	return b
}

// UseExactName makes target the name of the index to create, verbatim,
// instead of the alias under which a timestamped index is created.
func (b *Builder) UseExactName() *Builder {
	b.cfg.exactName = true
	return b
}

// ReplaceWithAlias converts a concrete index into the usual timestamped
// index plus alias setup: the existing index named target is copied into a
// fresh timestamped index, removed, and target becomes an alias to the new
// index. Requires a content copier.
func (b *Builder) ReplaceWithAlias() *Builder {
	b.cfg.replaceWithAlias = true
	b.cfg.copyFrom = b.cfg.target
	b.cfg.removeOldIndices = true
	return b
}

// Build finalizes the configuration. The builder can be discarded
// afterwards, later builder mutations do not leak into the returned Config.
func (b *Builder) Build() Config {
	cfg := b.cfg
	if len(b.cfg.mappings) > 0 {
		cfg.mappings = make(map[string]string, len(b.cfg.mappings))
		for typ, mapping := range b.cfg.mappings {
			cfg.mappings[typ] = mapping
		}
	}
	return cfg
}
