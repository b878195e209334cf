package catalog

import (
	"sort"
	"strings"
)

// Rewards holds the drop-triggered rewards configured at a location. Both maps
// are keyed by the lowercase name of the trigger item.
type Rewards struct {
	// Items maps a trigger item to the item granted in exchange.
	Items map[string]string `json:"items,omitempty" yaml:"items,omitempty"`
	// Attributes maps a trigger item to a free-text effect.
	Attributes map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// Empty reports whether no reward of either kind is configured.
func (r Rewards) Empty() bool {
	return len(r.Items) == 0 && len(r.Attributes) == 0
}

// Location is a node of the world graph.
type Location struct {
	ID                int            `json:"id" yaml:"id"`
	Name              string         `json:"name" yaml:"name"`
	BriefDescription  string         `json:"brief_description" yaml:"brief_description"`
	LongDescription   string         `json:"long_description" yaml:"long_description"`
	AvailableCommands map[string]int `json:"available_commands" yaml:"available_commands"`
	Items             []string       `json:"items" yaml:"items"`
	Restriction       string         `json:"restrictions,omitempty" yaml:"restrictions,omitempty"`
	Rewards           Rewards        `json:"rewards,omitempty" yaml:"rewards,omitempty"`
	Visited           bool           `json:"visited,omitempty" yaml:"visited,omitempty"`
}

// HasItem reports whether an item with exactly this name lies here.
func (l *Location) HasItem(name string) bool {
	for _, n := range l.Items {
		if n == name {
			return true
		}
	}
	return false
}

// AddItem places an item here. Adding an item that is already present is a no-op.
func (l *Location) AddItem(name string) {
	if l.HasItem(name) {
		return
	}
	l.Items = append(l.Items, name)
}

// RemoveItem lifts an item from this location and reports whether it was here.
func (l *Location) RemoveItem(name string) bool {
	for i, n := range l.Items {
		if n == name {
			l.Items = append(l.Items[:i], l.Items[i+1:]...)
			return true
		}
	}
	return false
}

// RequiredItems returns the lowercase names of the items needed to enter.
func (l *Location) RequiredItems() []string {
	required := strings.ToLower(strings.TrimSpace(l.Restriction))
	if required == "" {
		return nil
	}
	return []string{required}
}

// Commands returns the movement commands available here in sorted order.
func (l *Location) Commands() []string {
	commands := make([]string, 0, len(l.AvailableCommands))
	for cmd := range l.AvailableCommands {
		commands = append(commands, cmd)
	}
	sort.Strings(commands)
	return commands
}

func (l *Location) clone() *Location {
	c := *l
	c.AvailableCommands = make(map[string]int, len(l.AvailableCommands))
	for k, v := range l.AvailableCommands {
		c.AvailableCommands[k] = v
	}
	c.Items = append([]string(nil), l.Items...)
	c.Rewards = Rewards{
		Items:      copyStrings(l.Rewards.Items),
		Attributes: copyStrings(l.Rewards.Attributes),
	}
	return &c
}

// Item is a collectible with a delivery goal.
type Item struct {
	Name           string `json:"name" yaml:"name"`
	Description    string `json:"description" yaml:"description"`
	Hint           string `json:"hint" yaml:"hint"`
	CompletionText string `json:"completion_text" yaml:"completion_text"`
	StartPosition  int    `json:"start_position" yaml:"start_position"`
	TargetPosition int    `json:"target_position" yaml:"target_position"`
	TargetPoints   int    `json:"target_points" yaml:"target_points"`
}

// String renders the label shown in item listings.
func (i *Item) String() string {
	if i.Name == "" {
		return " - " + i.Description
	}
	return strings.ToUpper(i.Name[:1]) + strings.ToLower(i.Name[1:]) + " - " + i.Description
}

// Rules optionally overrides the default game rules for one world.
// Zero values mean "use the default".
type Rules struct {
	StartLocation       *int     `json:"start_location,omitempty" yaml:"start_location,omitempty"`
	MinScore            int      `json:"min_score,omitempty" yaml:"min_score,omitempty"`
	MaxScore            int      `json:"max_score,omitempty" yaml:"max_score,omitempty"`
	MaxTurns            int      `json:"max_turns,omitempty" yaml:"max_turns,omitempty"`
	ExtensionBonusTurns int      `json:"extension_bonus_turns,omitempty" yaml:"extension_bonus_turns,omitempty"`
	ExtensionEffect     string   `json:"extension_effect,omitempty" yaml:"extension_effect,omitempty"`
	RequiredReturns     []string `json:"required_returns,omitempty" yaml:"required_returns,omitempty"`
	StorageEquivalents  []string `json:"storage_equivalents,omitempty" yaml:"storage_equivalents,omitempty"`
	SubstituteItem      string   `json:"substitute_item,omitempty" yaml:"substitute_item,omitempty"`
	SubstitutesFor      string   `json:"substitutes_for,omitempty" yaml:"substitutes_for,omitempty"`
}

// Catalog is the whole world: every location and every item.
type Catalog struct {
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Rules       Rules       `json:"rules,omitempty" yaml:"rules,omitempty"`
	Locations   []*Location `json:"locations" yaml:"locations"`
	Items       []*Item     `json:"items" yaml:"items"`

	locations map[int]*Location
	items     map[string]*Item
}

// New builds an indexed catalog from already-parsed records.
func New(name string, locations []*Location, items []*Item) *Catalog {
	c := &Catalog{Name: name, Locations: locations, Items: items}
	c.reindex()
	return c
}

func (c *Catalog) reindex() {
	c.locations = make(map[int]*Location, len(c.Locations))
	for _, loc := range c.Locations {
		c.locations[loc.ID] = loc
	}
	c.items = make(map[string]*Item, len(c.Items))
	for _, item := range c.Items {
		c.items[item.Name] = item
	}
}

// Location returns the location with the given id.
func (c *Catalog) Location(id int) (*Location, bool) {
	if c.locations == nil {
		c.reindex()
	}
	loc, ok := c.locations[id]
	return loc, ok
}

// Item resolves an item by name. The canonical name matches first; otherwise
// the lookup falls back to a case-insensitive match.
func (c *Catalog) Item(name string) (*Item, bool) {
	if c.items == nil {
		c.reindex()
	}
	if item, ok := c.items[name]; ok {
		return item, true
	}
	for _, item := range c.Items {
		if strings.EqualFold(item.Name, name) {
			return item, true
		}
	}
	return nil, false
}

// LocationIDs returns every location id in ascending order.
func (c *Catalog) LocationIDs() []int {
	ids := make([]int, 0, len(c.Locations))
	for _, loc := range c.Locations {
		ids = append(ids, loc.ID)
	}
	sort.Ints(ids)
	return ids
}

// Holder returns the id of the location currently holding the named item.
func (c *Catalog) Holder(name string) (int, bool) {
	for _, loc := range c.Locations {
		if loc.HasItem(name) {
			return loc.ID, true
		}
	}
	return 0, false
}

// Clone returns a deep copy whose mutable state (items, visited flags) is
// independent of the receiver. Items are immutable and shared.
func (c *Catalog) Clone() *Catalog {
	out := &Catalog{
		Name:        c.Name,
		Description: c.Description,
		Rules:       c.Rules,
		Locations:   make([]*Location, 0, len(c.Locations)),
		Items:       append([]*Item(nil), c.Items...),
	}
	for _, loc := range c.Locations {
		out.Locations = append(out.Locations, loc.clone())
	}
	out.reindex()
	return out
}

func copyStrings(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
