package config

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/samber/oops"

	"github.com/wricardo/campus-quest/game/catalog"
	"github.com/wricardo/campus-quest/game/engine"
	"github.com/wricardo/campus-quest/game/service"
)

// DefaultWorld is the world used when a caller names none.
const DefaultWorld = "campus"

var (
	ErrWorldNotFound = errors.New("world not found")
	ErrInvalidWorld  = errors.New("invalid world")
)

// extensions lists the catalog encodings looked up, in order.
var extensions = []string{".json", ".yaml", ".yml"}

// Manager handles world catalog loading and caching
type Manager struct {
	configDir   string
	defaultName string
	worlds      map[string]*catalog.Catalog
	mu          sync.RWMutex
}

// NewManager creates a new world manager over configDir. The default world
// is DefaultWorld, or the first valid world in the directory when that one
// is missing.
func NewManager(configDir string) (*Manager, error) {
	info, err := os.Stat(configDir)
	if err != nil || !info.IsDir() {
		return nil, oops.
			Code("CONFIG_DIR_MISSING").
			With("dir", configDir).
			Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		worlds:    make(map[string]*catalog.Catalog),
	}

	if err := m.loadDefaultWorld(); err != nil {
		return nil, err
	}

	return m, nil
}

// LoadWorld loads a world catalog by name. The name may carry a file
// extension. Catalogs are parsed once and cached.
func (m *Manager) LoadWorld(name string) (*catalog.Catalog, error) {
	name = worldName(name)

	m.mu.RLock()
	if cat, exists := m.worlds[name]; exists {
		m.mu.RUnlock()
		return cat, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if cat, exists := m.worlds[name]; exists {
		return cat, nil
	}

	path, ok := m.find(name)
	if !ok {
		return nil, oops.
			Code(service.CodeWorldNotFound).
			With("world", name).
			With("available", m.names()).
			Wrapf(ErrWorldNotFound, "world %q", name)
	}

	cat, err := catalog.LoadFile(path)
	if err != nil {
		return nil, oops.With("world", name).Wrap(errors.Join(ErrInvalidWorld, err))
	}
	if _, err := engine.NewEngineWithDefaults(cat); err != nil {
		return nil, oops.With("world", name).Wrap(errors.Join(ErrInvalidWorld, err))
	}

	m.worlds[name] = cat
	return cat, nil
}

// ListWorlds returns information about all valid worlds. Invalid catalogs
// are skipped.
func (m *Manager) ListWorlds() ([]*service.WorldInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, oops.Code("CONFIG_DIR_UNREADABLE").With("dir", m.configDir).Wrap(err)
	}

	worlds := []*service.WorldInfo{}
	seen := make(map[string]bool)

	for _, entry := range entries {
		if entry.IsDir() || !isCatalogFile(entry.Name()) {
			continue
		}

		id := worldName(entry.Name())
		if seen[id] {
			continue
		}

		cat, err := m.LoadWorld(id)
		if err != nil {
			continue
		}
		seen[id] = true

		settings := engine.SettingsFor(cat)
		worlds = append(worlds, &service.WorldInfo{
			Filename:    entry.Name(),
			WorldID:     id,
			Name:        cat.Name,
			Description: cat.Description,
			Locations:   len(cat.Locations),
			Items:       len(cat.Items),
			MinScore:    settings.MinScore,
			MaxTurns:    settings.MaxTurns,
			Start:       settings.StartLocation,
		})
	}

	return worlds, nil
}

// GetDefault returns the default world catalog
func (m *Manager) GetDefault() *catalog.Catalog {
	cat, err := m.LoadWorld(m.DefaultName())
	if err != nil {
		return nil
	}
	return cat
}

// DefaultName returns the identifier of the default world
func (m *Manager) DefaultName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultName
}

// SetDefault sets the default world by name
func (m *Manager) SetDefault(name string) error {
	if _, err := m.LoadWorld(name); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultName = worldName(name)
	return nil
}

// RefreshCache drops every cached catalog so the next load reads from disk
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.worlds = make(map[string]*catalog.Catalog)
	m.mu.Unlock()

	return m.loadDefaultWorld()
}

// Count returns the number of cached worlds
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.worlds)
}

func (m *Manager) loadDefaultWorld() error {
	if _, err := m.LoadWorld(DefaultWorld); err == nil {
		m.mu.Lock()
		m.defaultName = DefaultWorld
		m.mu.Unlock()
		return nil
	}

	worlds, err := m.ListWorlds()
	if err != nil {
		return err
	}
	if len(worlds) == 0 {
		return oops.
			Code(service.CodeWorldNotFound).
			With("dir", m.configDir).
			Wrapf(ErrWorldNotFound, "no valid world in %s", m.configDir)
	}

	m.mu.Lock()
	m.defaultName = worlds[0].WorldID
	m.mu.Unlock()
	return nil
}

// find returns the catalog file for a world. Callers hold the lock.
func (m *Manager) find(name string) (string, bool) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", false
	}
	for _, ext := range extensions {
		path := filepath.Join(m.configDir, name+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// names lists the world identifiers present on disk.
func (m *Manager) names() []string {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil
	}
	set := make(map[string]bool)
	for _, entry := range entries {
		if !entry.IsDir() && isCatalogFile(entry.Name()) {
			set[worldName(entry.Name())] = true
		}
	}
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func isCatalogFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func worldName(name string) string {
	name = strings.TrimSpace(name)
	if isCatalogFile(name) {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}
