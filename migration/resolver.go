package migration

import (
	"context"
	"sort"

	"github.com/searchops/indexmigrate/errors"
)

// resolvedSource is the outcome of the source resolution step: the index to
// copy from, if any, and the full candidate list when the source was found
// through the alias. Candidates are retained for the cleanup step.
type resolvedSource struct {
	copyFrom   string
	candidates []string
}

// resolveSource decides which index settings, mappings and data are copied
// from.
//
// An explicit copy-from name must be a concrete index: aliases can back
// multiple indices, which makes "copy settings from it" ill-defined, so an
// alias is rejected outright. Without an explicit source, and outside
// exact-name and replace mode, the indices behind the target alias are the
// candidates, the latest one is the source. The cluster enumerates alias
// results in no particular order, so candidates are sorted before picking
// the last entry; timestamped names sort chronologically.
func resolveSource(ctx context.Context, es adminService, cfg Config) (resolvedSource, error) {
	if cfg.copyFrom != "" {
		isAlias, err := es.aliasExists(ctx, cfg.copyFrom)
		if err != nil {
			return resolvedSource{}, err
		}
		if isAlias {
			return resolvedSource{}, errors.NewSourceIsAliasError(cfg.copyFrom)
		}
		return resolvedSource{copyFrom: cfg.copyFrom}, nil
	}

	if cfg.exactName || cfg.replaceWithAlias {
		return resolvedSource{}, nil
	}

	indices, err := es.indicesForAlias(ctx, cfg.target)
	if err != nil {
		return resolvedSource{}, err
	}
	if len(indices) == 0 {
		// No backing index. Settings and mappings must have been supplied
		// explicitly, or index creation fails downstream.
		return resolvedSource{}, nil
	}

	candidates := append([]string(nil), indices...)
	sort.Strings(candidates)
	return resolvedSource{
		copyFrom:   candidates[len(candidates)-1],
		candidates: candidates,
	}, nil
}
