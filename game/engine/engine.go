package engine

import (
	"sort"

	"github.com/wricardo/campus-quest/game/catalog"
)

// Engine provides the main interface for game operations
type Engine interface {
	// World
	World() *catalog.Catalog
	Settings() Settings
	CurrentLocation() *catalog.Location
	CurrentLocationID() int
	Location(id int) (*catalog.Location, bool)
	Item(name string) (*catalog.Item, bool)

	// Player state
	Inventory() []*catalog.Item
	SetInventory(items []*catalog.Item)
	Score() int
	SetScore(score int)
	Turn() int
	SetTurn(turn int)
	MaxTurns() int
	TurnsLeft() int
	Returned() []string
	SetReturned(names []string)
	Ongoing() bool
	Snapshot() *GameState

	// Movement
	Move(command string) MoveResult
	CanEnter(locationID int) (bool, string)
	Describe() string
	Look() string

	// Items
	PickUp(name string) bool
	Drop(name string) bool
	Inspect(name string) (string, bool)
	CheckQuestCompletion(name string) QuestResult
	ApplyLocationRewards(trigger string) []string

	// Session control
	EnableUnlimitedMoves()
	IsUnlimitedMoves() bool
	LockScore()
	IsScoreLocked() bool
	SubmitEarly() bool
	CanSubmitEarly() bool
	RequestQuit()
	IsQuitRequested() bool
	ContinueExploring() bool
	Reset()

	// Win conditions
	HasStorageSolution() bool
	HasRequiredReturns() bool
	MissingWinItems() []string
	ScoreSummary() string
	DidWin() bool
	Outcome() Outcome
}

// GameEngine implements the Engine interface. It is not safe for
// concurrent use; callers serialize access.
type GameEngine struct {
	template *catalog.Catalog
	world    *catalog.Catalog
	settings Settings

	current int
	ongoing bool
	state   PlayerState
}

// NewEngine creates a new game engine over a private copy of cat.
func NewEngine(cat *catalog.Catalog, settings Settings) (*GameEngine, error) {
	if err := ValidateSettings(cat, settings); err != nil {
		return nil, err
	}

	engine := &GameEngine{
		template: cat.Clone(),
		settings: settings,
	}
	engine.Reset()

	return engine, nil
}

// NewEngineWithDefaults creates an engine using the default settings
// overlaid with the catalog's own rules.
func NewEngineWithDefaults(cat *catalog.Catalog) (*GameEngine, error) {
	if cat == nil {
		return NewEngine(nil, DefaultSettings())
	}
	return NewEngine(cat, SettingsFor(cat))
}

// Reset starts over from the pristine world with fresh player state.
func (e *GameEngine) Reset() {
	e.world = e.template.Clone()
	e.current = e.settings.StartLocation
	e.ongoing = true
	e.state = newPlayerState(e.settings.MaxTurns)
}

func (e *GameEngine) World() *catalog.Catalog { return e.world }

func (e *GameEngine) Settings() Settings { return e.settings }

// CurrentLocation returns the location the player stands in.
func (e *GameEngine) CurrentLocation() *catalog.Location {
	loc, _ := e.world.Location(e.current)
	return loc
}

func (e *GameEngine) CurrentLocationID() int { return e.current }

func (e *GameEngine) Location(id int) (*catalog.Location, bool) {
	return e.world.Location(id)
}

func (e *GameEngine) Item(name string) (*catalog.Item, bool) {
	return e.world.Item(name)
}

// Inventory returns the held items in pick-up order.
func (e *GameEngine) Inventory() []*catalog.Item {
	return append([]*catalog.Item(nil), e.state.Inventory...)
}

// SetInventory replaces the held items. Duplicates are dropped.
func (e *GameEngine) SetInventory(items []*catalog.Item) {
	inv := make([]*catalog.Item, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if item == nil || seen[item.Name] {
			continue
		}
		seen[item.Name] = true
		inv = append(inv, item)
	}
	e.state.Inventory = inv
}

func (e *GameEngine) Score() int { return e.state.Score }

func (e *GameEngine) SetScore(score int) {
	if score < 0 {
		score = 0
	}
	e.state.Score = score
}

func (e *GameEngine) Turn() int { return e.state.Turn }

func (e *GameEngine) SetTurn(turn int) { e.state.Turn = turn }

func (e *GameEngine) MaxTurns() int { return e.state.MaxTurns }

// TurnsLeft returns the moves remaining, or UnlimitedTurns in unlimited mode.
func (e *GameEngine) TurnsLeft() int {
	if e.state.Flags.UnlimitedMoves {
		return UnlimitedTurns
	}
	left := e.state.MaxTurns - e.state.Turn
	if left < 0 {
		return 0
	}
	return left
}

// Returned lists the returned item names in sorted order.
func (e *GameEngine) Returned() []string {
	return sortedSet(e.state.Returned)
}

func (e *GameEngine) SetReturned(names []string) {
	e.state.Returned = make(map[string]bool, len(names))
	for _, name := range names {
		e.state.Returned[name] = true
	}
}

func (e *GameEngine) Ongoing() bool { return e.ongoing }

// Snapshot returns a copy of the session that is safe to serialize.
func (e *GameEngine) Snapshot() *GameState {
	loc := e.CurrentLocation()
	inventory := make([]ItemView, 0, len(e.state.Inventory))
	for _, item := range e.state.Inventory {
		inventory = append(inventory, ItemView{
			Name:        item.Name,
			Description: item.Description,
			Target:      item.TargetPosition,
			Points:      item.TargetPoints,
		})
	}

	return &GameState{
		World: e.world.Name,
		Location: LocationView{
			ID:          loc.ID,
			Name:        loc.Name,
			Description: loc.BriefDescription,
			Commands:    loc.Commands(),
			Items:       append([]string{}, loc.Items...),
			Restricted:  loc.Restriction != "",
		},
		Inventory:      inventory,
		Score:          e.state.Score,
		MaxScore:       e.settings.MaxScore,
		MinScore:       e.settings.MinScore,
		Turn:           e.state.Turn,
		MaxTurns:       e.state.MaxTurns,
		TurnsLeft:      e.TurnsLeft(),
		Unlimited:      e.state.Flags.UnlimitedMoves,
		Ongoing:        e.ongoing,
		Flags:          e.state.Flags,
		Returned:       e.Returned(),
		RewardsClaimed: sortedSet(e.state.RewardsClaimed),
		Outcome:        e.Outcome(),
	}
}

func (e *GameEngine) holds(name string) bool {
	for _, item := range e.state.Inventory {
		if item.Name == name {
			return true
		}
	}
	return false
}

func (e *GameEngine) inventoryNames() map[string]bool {
	names := make(map[string]bool, len(e.state.Inventory))
	for _, item := range e.state.Inventory {
		names[toLower(item.Name)] = true
	}
	return names
}

func sortedSet(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
