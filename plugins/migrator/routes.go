package migrator

import (
	"net/http"

	"github.com/searchops/indexmigrate/plugins"
)

func (m *migrator) routes() []plugins.Route {
	return []plugins.Route{
		{
			Name:        "Migrate index",
			Methods:     []string{http.MethodPost},
			Path:        "/_migrate/{index}",
			HandlerFunc: m.migrateIndex(),
			Description: "Creates a replacement index for {index} and repoints its alias",
		},
		{
			Name:        "Get migrations",
			Methods:     []string{http.MethodGet},
			Path:        "/_migrations",
			HandlerFunc: m.getMigrations(),
			Description: "Returns the most recent migrations run by this service",
		},
	}
}
