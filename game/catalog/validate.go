package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/samber/oops"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

var ErrInvalidCatalog = errors.New("invalid catalog")

//go:embed schema.json
var schemaSource string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("catalog.schema.json", schemaSource)
	})
	return schema, schemaErr
}

// ValidateDocument checks a decoded JSON document against the catalog schema.
func ValidateDocument(doc any) error {
	s, err := compiledSchema()
	if err != nil {
		return oops.Code("SCHEMA_COMPILE_FAILED").Wrap(err)
	}
	if err := s.Validate(doc); err != nil {
		return oops.Code("CATALOG_INVALID").Wrapf(errors.Join(ErrInvalidCatalog, err), "schema")
	}
	return nil
}

// Validate checks the cross references a schema cannot express.
//
// Every problem found is reported, not just the first.
func (c *Catalog) Validate() error {
	problems := c.Problems()
	if len(problems) == 0 {
		return nil
	}
	return oops.
		Code("CATALOG_INVALID").
		With("catalog", c.Name).
		With("problems", problems).
		Wrapf(ErrInvalidCatalog, "%s", strings.Join(problems, "; "))
}

// Problems lists every semantic problem with the catalog.
func (c *Catalog) Problems() []string {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if len(c.Locations) == 0 {
		add("catalog has no locations")
	}

	seen := make(map[int]bool, len(c.Locations))
	for _, loc := range c.Locations {
		if loc.ID < 0 {
			add("location %d: id must be non-negative", loc.ID)
		}
		if seen[loc.ID] {
			add("location %d: duplicate id", loc.ID)
		}
		seen[loc.ID] = true
	}

	itemNames := make(map[string]bool, len(c.Items))
	for _, item := range c.Items {
		if item.Name == "" {
			add("item with empty name")
			continue
		}
		if itemNames[item.Name] {
			add("item %q: duplicate name", item.Name)
		}
		itemNames[item.Name] = true
		if item.TargetPoints < 0 {
			add("item %q: target_points must be non-negative", item.Name)
		}
		if !seen[item.StartPosition] {
			add("item %q: unknown start_position %d", item.Name, item.StartPosition)
		}
		if !seen[item.TargetPosition] {
			add("item %q: unknown target_position %d", item.Name, item.TargetPosition)
		}
	}

	granted := make(map[string]bool)
	placed := make(map[string]int)
	for _, loc := range c.Locations {
		for _, cmd := range loc.Commands() {
			if dest := loc.AvailableCommands[cmd]; !seen[dest] {
				add("location %d: command %q leads to unknown location %d", loc.ID, cmd, dest)
			}
		}
		for _, name := range loc.Items {
			item, ok := c.Item(name)
			if !ok {
				add("location %d: unknown item %q", loc.ID, name)
				continue
			}
			if prev, dup := placed[item.Name]; dup {
				add("item %q: placed at both %d and %d", item.Name, prev, loc.ID)
			}
			placed[item.Name] = loc.ID
			if item.StartPosition != loc.ID {
				add("item %q: listed at %d but start_position is %d", item.Name, loc.ID, item.StartPosition)
			}
		}
		for _, required := range loc.RequiredItems() {
			if _, ok := c.Item(required); !ok {
				add("location %d: restriction names unknown item %q", loc.ID, required)
			}
		}
		for _, trigger := range sortedKeys(loc.Rewards.Items) {
			grant := loc.Rewards.Items[trigger]
			if _, ok := c.Item(trigger); !ok {
				add("location %d: reward trigger %q is not an item", loc.ID, trigger)
			}
			item, ok := c.Item(grant)
			if !ok {
				add("location %d: reward grants unknown item %q", loc.ID, grant)
				continue
			}
			granted[item.Name] = true
		}
		for _, trigger := range sortedKeys(loc.Rewards.Attributes) {
			if _, ok := c.Item(trigger); !ok {
				add("location %d: attribute trigger %q is not an item", loc.ID, trigger)
			}
		}
	}

	for _, item := range c.Items {
		if _, ok := placed[item.Name]; !ok && !granted[item.Name] {
			add("item %q: not placed anywhere and never granted", item.Name)
		}
	}

	if c.Rules.StartLocation != nil && !seen[*c.Rules.StartLocation] {
		add("rules: unknown start_location %d", *c.Rules.StartLocation)
	}

	return problems
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
