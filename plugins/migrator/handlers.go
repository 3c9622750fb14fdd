package migrator

import (
	"encoding/json"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/searchops/indexmigrate/copier"
	"github.com/searchops/indexmigrate/errors"
	"github.com/searchops/indexmigrate/migration"
	"github.com/searchops/indexmigrate/util"
)

// migrateRequest is the optional body of a migrate call. An empty body runs
// the default scenario: a timestamped index copying its setup from the index
// the alias points at.
type migrateRequest struct {
	CopyFrom           string                     `json:"copy_from,omitempty"`
	UseExactName       bool                       `json:"use_exact_name,omitempty"`
	ReplaceWithAlias   bool                       `json:"replace_with_alias,omitempty"`
	CopyOldData        bool                       `json:"copy_old_data,omitempty"`
	RemoveOldIndices   bool                       `json:"remove_old_indices,omitempty"`
	RemoveOldAlias     bool                       `json:"remove_old_alias,omitempty"`
	Settings           json.RawMessage            `json:"settings,omitempty"`
	Mappings           map[string]json.RawMessage `json:"mappings,omitempty"`
	SettingsIdentifier string                     `json:"settings_identifier,omitempty"`
	MappingsIdentifier string                     `json:"mappings_identifier,omitempty"`
}

func (m *migrator) migrateIndex() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		vars := mux.Vars(req)
		target, ok := vars["index"]
		if !ok {
			util.WriteBackError(w, "an index or alias must be present in the route", http.StatusBadRequest)
			return
		}

		defer req.Body.Close()
		body, err := ioutil.ReadAll(req.Body)
		if err != nil {
			log.Errorln(logTag, ": can't read request body:", err)
			util.WriteBackError(w, "can't read request body", http.StatusInternalServerError)
			return
		}

		var request migrateRequest
		if len(body) > 0 {
			if err := json.Unmarshal(body, &request); err != nil {
				log.Errorln(logTag, ": can't parse request body:", err)
				util.WriteBackError(w, "can't parse request body", http.StatusBadRequest)
				return
			}
		}

		cfg := buildConfig(target, request)
		start := time.Now()
		result, err := migration.New().Execute(req.Context(), cfg)
		m.recordMigration(req.Context(), target, result, err, time.Since(start))
		if err != nil {
			log.Errorln(logTag, ": migration of", target, "failed:", err)
			util.WriteBackError(w, err.Error(), errorCode(err))
			return
		}

		raw, err := json.Marshal(result)
		if err != nil {
			log.Errorln(logTag, ": error marshaling migration result:", err)
			util.WriteBackError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		util.WriteBackRaw(w, raw, http.StatusOK)
	}
}

func (m *migrator) getMigrations() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		raw, err := m.recentMigrations(req.Context())
		if err != nil {
			log.Errorln(logTag, ": error fetching migrations:", err)
			util.WriteBackError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		util.WriteBackRaw(w, raw, http.StatusOK)
	}
}

// buildConfig translates the request body into a migration config. When the
// caller asks for the old data, the copy runs through a scroll and bulk
// copier on the shared client.
func buildConfig(target string, request migrateRequest) migration.Config {
	builder := migration.NewBuilder(target)
	if request.CopyFrom != "" {
		builder.CopyFrom(request.CopyFrom)
	}
	if request.UseExactName {
		builder.UseExactName()
	}
	if len(request.Settings) > 0 {
		builder.Settings(string(request.Settings))
	}
	for typ, mapping := range request.Mappings {
		builder.AddMapping(typ, string(mapping))
	}
	if request.SettingsIdentifier != "" {
		builder.SettingsIdentifier(request.SettingsIdentifier)
	}
	if request.MappingsIdentifier != "" {
		builder.MappingsIdentifier(request.MappingsIdentifier)
	}
	if request.RemoveOldIndices {
		builder.RemoveOldIndices()
	}
	if request.RemoveOldAlias {
		builder.RemoveOldAlias()
	}
	if request.CopyOldData || request.ReplaceWithAlias {
		builder.CopyDataWith(copier.NewScrollBulkCopier(util.GetClient7()))
	}
	if request.ReplaceWithAlias {
		builder.ReplaceWithAlias()
	}
	return builder.Build()
}

func errorCode(err error) int {
	switch err.(type) {
	case *errors.ConfigError, *errors.SourceIsAliasError:
		return http.StatusBadRequest
	case *errors.SourceNotFoundError:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
