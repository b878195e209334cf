package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

// Format names a catalog encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath infers the encoding from a file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// rawRewards accepts both the flat shape and the legacy shape nested one
// level under a "rewards" key.
type rawRewards struct {
	Items      map[string]string `json:"items"`
	Attributes map[string]string `json:"attributes"`
	Rewards    *rawRewards       `json:"rewards"`
}

type rawLocation struct {
	ID                int            `json:"id"`
	Name              string         `json:"name"`
	BriefDescription  string         `json:"brief_description"`
	LongDescription   string         `json:"long_description"`
	AvailableCommands map[string]int `json:"available_commands"`
	Items             []string       `json:"items"`
	Restrictions      any            `json:"restrictions"`
	Rewards           *rawRewards    `json:"rewards"`
}

type rawCatalog struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Rules       Rules          `json:"rules"`
	Locations   []*rawLocation `json:"locations"`
	Items       []*Item        `json:"items"`
}

// LoadFile reads, schema-checks and validates a catalog file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oops.Code("CATALOG_READ_FAILED").With("path", path).Wrap(err)
	}
	cat, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return nil, oops.With("path", path).Wrap(err)
	}
	if cat.Name == "" {
		cat.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return cat, nil
}

// Parse decodes a catalog document, checks it against the catalog schema,
// normalizes reward payloads and validates cross references.
func Parse(data []byte, format Format) (*Catalog, error) {
	jsonData := data
	if format == FormatYAML {
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, oops.Code("CATALOG_INVALID").Wrapf(err, "decode yaml")
		}
		converted, err := json.Marshal(doc)
		if err != nil {
			return nil, oops.Code("CATALOG_INVALID").Wrapf(err, "convert yaml")
		}
		jsonData = converted
	}

	var doc any
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return nil, oops.Code("CATALOG_INVALID").Wrapf(err, "decode json")
	}
	if err := ValidateDocument(doc); err != nil {
		return nil, err
	}

	var raw rawCatalog
	if err := json.Unmarshal(jsonData, &raw); err != nil {
		return nil, oops.Code("CATALOG_INVALID").Wrapf(err, "decode catalog")
	}

	cat := raw.build()
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return cat, nil
}

func (r *rawCatalog) build() *Catalog {
	locations := make([]*Location, 0, len(r.Locations))
	for _, rl := range r.Locations {
		loc := &Location{
			ID:                rl.ID,
			Name:              rl.Name,
			BriefDescription:  rl.BriefDescription,
			LongDescription:   rl.LongDescription,
			AvailableCommands: make(map[string]int, len(rl.AvailableCommands)),
			Items:             append([]string{}, rl.Items...),
			Restriction:       normalizeRestriction(rl.Restrictions),
			Rewards:           rl.Rewards.normalize(),
		}
		for cmd, dest := range rl.AvailableCommands {
			loc.AvailableCommands[strings.ToLower(strings.TrimSpace(cmd))] = dest
		}
		locations = append(locations, loc)
	}

	cat := New(r.Name, locations, r.Items)
	cat.Description = r.Description
	cat.Rules = r.Rules
	return cat
}

// normalize merges the flat and nested reward maps, lower-casing keys and values.
func (r *rawRewards) normalize() Rewards {
	var out Rewards
	if r == nil {
		return out
	}
	out.Items = mergeLower(out.Items, r.Items)
	out.Attributes = mergeLower(out.Attributes, r.Attributes)
	if r.Rewards != nil {
		out.Items = mergeLower(out.Items, r.Rewards.Items)
		out.Attributes = mergeLower(out.Attributes, r.Rewards.Attributes)
	}
	return out
}

func mergeLower(dst, src map[string]string) map[string]string {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for k, v := range src {
		dst[strings.ToLower(k)] = strings.ToLower(v)
	}
	return dst
}

// normalizeRestriction turns the restriction payload into a single item name.
// Only a string names an item; an empty object or null means no restriction.
func normalizeRestriction(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}
