package plugins

import (
	"sort"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const logTag = "[registry]"

// plugins is a map of a unique identifier, usually the plugin name,
// to the Plugin. So, in practice all plugins must have a name,
// preferably following the same practice while naming a package.
var plugins = make(map[string]Plugin)

// Plugin is a type that holds information about the plugin.
type Plugin interface {
	// Name returns the name of the plugin. Name of the plugin must be
	// unique as it is the name of the plugin that is used as a key
	// to identify a plugin in the plugins map.
	Name() string

	// InitFunc returns the plugin's setup function that is executed
	// before the plugin routes are loaded in the router.
	InitFunc() error

	// Routes returns the http routes that a plugin handles or is
	// associated with.
	Routes() []Route
}

// RegisterPlugin adds a plugin to the plugins map. Plugins are loaded into
// the router in lexical order of their names.
func RegisterPlugin(p Plugin) {
	plugins[p.Name()] = p
}

// Load initializes every registered plugin and mounts its routes on the
// given router.
func Load(router *mux.Router) error {
	names := make([]string, 0, len(plugins))
	for name := range plugins {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		p := plugins[name]
		if err := p.InitFunc(); err != nil {
			return err
		}
		for _, route := range p.Routes() {
			log.Debugln(logTag, ": registering", route.Name, "on", route.Path)
			router.HandleFunc(route.Path, route.HandlerFunc).Methods(route.Methods...)
		}
		log.Println(logTag, ": loaded plugin", name)
	}
	return nil
}
