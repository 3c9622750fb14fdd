// Package migrator exposes index migrations over HTTP and keeps an audit
// trail of every run in a hidden index.
package migrator

import (
	"context"
	"sync"

	"github.com/searchops/indexmigrate/plugins"
)

const logTag = "[migrator]"

var (
	singleton *migrator
	once      sync.Once
)

type migrator struct{}

// Instance returns the singleton of the plugin. Instantiates the plugin
// if not already instantiated.
func Instance() *migrator {
	once.Do(func() { singleton = &migrator{} })
	return singleton
}

// Name returns the name of the plugin.
func (m *migrator) Name() string {
	return logTag
}

// InitFunc makes sure the audit index exists before the routes go live.
func (m *migrator) InitFunc() error {
	return ensureAuditIndex(context.Background())
}

// Routes returns the routes the plugin handles.
func (m *migrator) Routes() []plugins.Route {
	return m.routes()
}
