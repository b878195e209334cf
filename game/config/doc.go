// Package config loads the world catalogs served by campus quest.
//
// Worlds live as JSON or YAML catalog files in a config directory. A world
// is named by its file name without extension ("campus" for campus.json).
// Manager parses each catalog once, checks it against the catalog schema
// and the semantic rules, and caches the result. Manager implements
// service.ConfigManager.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	cat, err := manager.LoadWorld("campus")
//	worlds, err := manager.ListWorlds()
//
// The default world is "campus". When it is missing the first valid world
// in the directory is used instead.
package config
