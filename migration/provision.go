package migration

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/buger/jsonparser"
	log "github.com/sirupsen/logrus"

	"github.com/searchops/indexmigrate/errors"
)

// Metadata keys stored in the index settings when identifiers are
// configured along with an explicit settings payload.
const (
	MetaSettingsIdentifier = "_meta.settings_identifier"
	MetaMappingsIdentifier = "_meta.mappings_identifier"
)

// Second granularity. Two migrations for the same target within the same
// second synthesize the same name, callers serialize migrations per alias.
const nameTimestampLayout = "20060102150405"

// provisionedName computes the name of the index to create: target verbatim
// in exact-name mode, target plus a timestamp suffix otherwise.
func provisionedName(cfg Config, now time.Time) string {
	if cfg.exactName {
		return cfg.target
	}
	return cfg.target + "-" + now.Format(nameTimestampLayout)
}

// resolveSettings assembles the settings of the new index. An explicit
// payload wins and carries the configured identifiers as metadata keys.
// Otherwise the settings of the copy source are reused, without injecting
// identifiers, the source keeps its own metadata. With neither, the new
// index falls back to cluster defaults.
func resolveSettings(ctx context.Context, es adminService, cfg Config, src resolvedSource) (map[string]interface{}, error) {
	if cfg.settings != "" {
		payload := []byte(cfg.settings)
		var err error
		if cfg.settingsIdentifier != "" {
			payload, err = jsonparser.Set(payload, []byte(strconv.Quote(cfg.settingsIdentifier)), MetaSettingsIdentifier)
			if err != nil {
				return nil, errors.NewConfigError(fmt.Sprintf("unable to set %s in the settings payload: %v", MetaSettingsIdentifier, err))
			}
		}
		if cfg.mappingsIdentifier != "" {
			payload, err = jsonparser.Set(payload, []byte(strconv.Quote(cfg.mappingsIdentifier)), MetaMappingsIdentifier)
			if err != nil {
				return nil, errors.NewConfigError(fmt.Sprintf("unable to set %s in the settings payload: %v", MetaMappingsIdentifier, err))
			}
		}
		var settings map[string]interface{}
		if err := json.Unmarshal(payload, &settings); err != nil {
			return nil, errors.NewConfigError(fmt.Sprintf("invalid settings payload: %v", err))
		}
		return settings, nil
	}

	if src.copyFrom != "" {
		return es.settingsOf(ctx, src.copyFrom)
	}

	return nil, nil
}

// resolveMappings assembles the type-keyed mappings of the new index.
// Explicit payloads are applied verbatim. On the copy path every type is
// applied individually: a type whose mapping body cannot be read is logged
// and skipped, the remaining types still apply.
func resolveMappings(ctx context.Context, es adminService, cfg Config, src resolvedSource) (map[string]interface{}, error) {
	if len(cfg.mappings) > 0 {
		mappings := make(map[string]interface{}, len(cfg.mappings))
		for typ, mapping := range cfg.mappings {
			mappings[typ] = json.RawMessage(mapping)
		}
		return mappings, nil
	}

	if src.copyFrom == "" {
		return nil, nil
	}

	fetched, err := es.mappingsOf(ctx, src.copyFrom)
	if err != nil {
		return nil, err
	}
	mappings := make(map[string]interface{}, len(fetched))
	for typ, body := range fetched {
		decoded, ok := body.(map[string]interface{})
		if !ok {
			log.Warnln(logTag, ": could not read the mapping for", typ, "from index", src.copyFrom, ", skipping")
			continue
		}
		mappings[typ] = decoded
	}
	if len(mappings) == 0 {
		return nil, nil
	}
	return mappings, nil
}

// createBody merges settings and mappings into a single create-index body.
func createBody(settings, mappings map[string]interface{}) map[string]interface{} {
	body := make(map[string]interface{})
	if len(settings) > 0 {
		body["settings"] = settings
	}
	if len(mappings) > 0 {
		body["mappings"] = mappings
	}
	return body
}
