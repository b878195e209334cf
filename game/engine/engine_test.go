package engine

import (
	"encoding/json"
	"testing"

	"github.com/wricardo/campus-quest/game/catalog"
)

// createTestCatalog builds a small world:
//
//	3 <-> 2 <-> 1 <-> 0 <-> 4 (vault, needs the key)
func createTestCatalog() *catalog.Catalog {
	locations := []*catalog.Location{
		{
			ID: 0, Name: "Start", BriefDescription: "Start.", LongDescription: "The starting hall.",
			AvailableCommands: map[string]int{"go west": 1, "go east": 4},
			Items:             []string{"key", "coin"},
		},
		{
			ID: 1, Name: "West One", BriefDescription: "West one.", LongDescription: "First room west.",
			AvailableCommands: map[string]int{"go west": 2, "go east": 0},
			Items:             []string{"drive"},
		},
		{
			ID: 2, Name: "West Two", BriefDescription: "West two.", LongDescription: "Second room west.",
			AvailableCommands: map[string]int{"go west": 3, "go east": 1},
			Items:             []string{"cable"},
		},
		{
			ID: 3, Name: "West Three", BriefDescription: "West three.", LongDescription: "Third room west.",
			AvailableCommands: map[string]int{"go east": 2},
			Items:             []string{"mug"},
		},
		{
			ID: 4, Name: "Vault", BriefDescription: "Vault.", LongDescription: "A cold vault.",
			AvailableCommands: map[string]int{"go west": 0},
			Items:             []string{},
			Restriction:       "Key",
			Rewards: catalog.Rewards{
				Items:      map[string]string{"coin": "gem"},
				Attributes: map[string]string{"coin": "a chime rings", "key": ExtensionEffect},
			},
		},
	}
	items := []*catalog.Item{
		{Name: "key", Description: "A brass key.", Hint: "Opens the vault.", CompletionText: "Key home.", StartPosition: 0, TargetPosition: 4, TargetPoints: 5},
		{Name: "coin", Description: "A coin.", Hint: "Spend it.", CompletionText: "Coin spent.", StartPosition: 0, TargetPosition: 4, TargetPoints: 10},
		{Name: "drive", Description: "A drive.", Hint: "Bring it home.", CompletionText: "Drive home.", StartPosition: 1, TargetPosition: 0, TargetPoints: 30},
		{Name: "cable", Description: "A cable.", Hint: "Backup.", CompletionText: "Cable home.", StartPosition: 2, TargetPosition: 0, TargetPoints: 10},
		{Name: "mug", Description: "A mug.", Hint: "Lucky.", CompletionText: "Mug home.", StartPosition: 3, TargetPosition: 0, TargetPoints: 20},
		{Name: "gem", Description: "A gem.", Hint: "Shiny.", CompletionText: "Gem home.", StartPosition: 4, TargetPosition: 0, TargetPoints: 15},
	}
	return catalog.New("test", locations, items)
}

func createTestSettings() Settings {
	s := DefaultSettings()
	s.StartLocation = 0
	s.MinScore = 50
	s.MaxTurns = 10
	s.ExtensionBonusTurns = 5
	s.RequiredReturns = []string{"mug"}
	s.StorageEquivalents = []string{"drive", "cable"}
	s.SubstituteItem = "cable"
	s.SubstitutesFor = "drive"
	return s
}

func createTestEngine(t *testing.T) *GameEngine {
	t.Helper()
	engine, err := NewEngine(createTestCatalog(), createTestSettings())
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return engine
}

func TestNewEngine(t *testing.T) {
	engine := createTestEngine(t)

	if engine.CurrentLocationID() != 0 {
		t.Errorf("Expected start location 0, got %d", engine.CurrentLocationID())
	}
	if engine.Score() != 0 {
		t.Errorf("Expected initial score 0, got %d", engine.Score())
	}
	if engine.Turn() != 0 {
		t.Errorf("Expected initial turn 0, got %d", engine.Turn())
	}
	if engine.MaxTurns() != 10 {
		t.Errorf("Expected max turns 10, got %d", engine.MaxTurns())
	}
	if !engine.Ongoing() {
		t.Error("Expected game to be ongoing initially")
	}
	if len(engine.Inventory()) != 0 {
		t.Errorf("Expected empty inventory, got %d items", len(engine.Inventory()))
	}
	if engine.Outcome().Status != StatusOngoing {
		t.Errorf("Expected ongoing outcome, got %s", engine.Outcome().Status)
	}
}

func TestNewEngineInvalidSettings(t *testing.T) {
	tests := []struct {
		name     string
		cat      *catalog.Catalog
		settings func(Settings) Settings
	}{
		{"nil catalog", nil, func(s Settings) Settings { return s }},
		{"unknown start", createTestCatalog(), func(s Settings) Settings { s.StartLocation = 99; return s }},
		{"zero turns", createTestCatalog(), func(s Settings) Settings { s.MaxTurns = 0; return s }},
		{"negative min score", createTestCatalog(), func(s Settings) Settings { s.MinScore = -1; return s }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewEngine(tt.cat, tt.settings(createTestSettings())); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestNewEngineWithDefaults(t *testing.T) {
	cat := createTestCatalog()
	start := 1
	cat.Rules = catalog.Rules{StartLocation: &start, MaxTurns: 20}

	engine, err := NewEngineWithDefaults(cat)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	if engine.CurrentLocationID() != 1 {
		t.Errorf("Expected start location from rules, got %d", engine.CurrentLocationID())
	}
	if engine.MaxTurns() != 20 {
		t.Errorf("Expected max turns from rules, got %d", engine.MaxTurns())
	}
	if engine.Settings().MinScore != DefaultMinScore {
		t.Errorf("Expected default min score, got %d", engine.Settings().MinScore)
	}

	if _, err := NewEngineWithDefaults(nil); err == nil {
		t.Error("Expected error for nil catalog")
	}
}

func TestEngineDoesNotMutateSourceCatalog(t *testing.T) {
	cat := createTestCatalog()
	engine, err := NewEngine(cat, createTestSettings())
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	engine.PickUp("key")
	engine.Describe()

	start, _ := cat.Location(0)
	if !start.HasItem("key") {
		t.Error("Expected source catalog to keep the key")
	}
	if start.Visited {
		t.Error("Expected source catalog location to stay unvisited")
	}
}

func TestReset(t *testing.T) {
	engine := createTestEngine(t)

	engine.PickUp("key")
	engine.PickUp("coin")
	engine.Move("go east")
	engine.Drop("coin")
	engine.CheckQuestCompletion("coin")
	engine.ApplyLocationRewards("coin")
	engine.LockScore()
	engine.EnableUnlimitedMoves()
	engine.SubmitEarly()

	engine.Reset()

	if engine.CurrentLocationID() != 0 {
		t.Errorf("Expected start location after reset, got %d", engine.CurrentLocationID())
	}
	if engine.Score() != 0 || engine.Turn() != 0 {
		t.Errorf("Expected zero score and turn, got %d and %d", engine.Score(), engine.Turn())
	}
	if engine.MaxTurns() != 10 {
		t.Errorf("Expected max turns restored, got %d", engine.MaxTurns())
	}
	if !engine.Ongoing() {
		t.Error("Expected game to be ongoing after reset")
	}
	if engine.IsScoreLocked() || engine.IsUnlimitedMoves() || !engine.CanSubmitEarly() {
		t.Error("Expected flags cleared after reset")
	}
	if len(engine.Inventory()) != 0 || len(engine.Returned()) != 0 {
		t.Error("Expected empty inventory and returned set after reset")
	}
	if len(engine.Snapshot().RewardsClaimed) != 0 {
		t.Error("Expected no claimed rewards after reset")
	}
	start, _ := engine.Location(0)
	if !start.HasItem("key") || !start.HasItem("coin") {
		t.Errorf("Expected items back at start, got %v", start.Items)
	}
	vault, _ := engine.Location(4)
	if vault.HasItem("coin") {
		t.Error("Expected vault emptied after reset")
	}
}

func TestSetters(t *testing.T) {
	engine := createTestEngine(t)
	key, _ := engine.Item("key")

	engine.SetInventory([]*catalog.Item{key, key, nil})
	if len(engine.Inventory()) != 1 {
		t.Errorf("Expected duplicates dropped, got %d items", len(engine.Inventory()))
	}

	engine.SetScore(-5)
	if engine.Score() != 0 {
		t.Errorf("Expected negative score clamped, got %d", engine.Score())
	}
	engine.SetScore(42)
	if engine.Score() != 42 {
		t.Errorf("Expected score 42, got %d", engine.Score())
	}

	engine.SetTurn(7)
	if engine.TurnsLeft() != 3 {
		t.Errorf("Expected 3 turns left, got %d", engine.TurnsLeft())
	}

	engine.SetReturned([]string{"mug", "drive"})
	got := engine.Returned()
	if len(got) != 2 || got[0] != "drive" || got[1] != "mug" {
		t.Errorf("Expected sorted returned set, got %v", got)
	}

	inv := engine.Inventory()
	inv[0] = nil
	if engine.Inventory()[0] == nil {
		t.Error("Expected Inventory to return a copy")
	}
}

func TestSnapshot(t *testing.T) {
	engine := createTestEngine(t)
	engine.PickUp("key")

	state := engine.Snapshot()
	if state.World != "test" {
		t.Errorf("Expected world test, got %s", state.World)
	}
	if state.Location.ID != 0 || state.Location.Name != "Start" {
		t.Errorf("Unexpected location %+v", state.Location)
	}
	if len(state.Location.Commands) != 2 || state.Location.Commands[0] != "go east" {
		t.Errorf("Expected sorted commands, got %v", state.Location.Commands)
	}
	if len(state.Inventory) != 1 || state.Inventory[0].Name != "key" {
		t.Errorf("Expected key in inventory, got %+v", state.Inventory)
	}
	if state.TurnsLeft != 10 || state.MinScore != 50 {
		t.Errorf("Unexpected turn/score fields %+v", state)
	}

	data, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("Failed to marshal snapshot: %v", err)
	}
	var decoded GameState
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal snapshot: %v", err)
	}
	if decoded.Outcome.Status != StatusOngoing {
		t.Errorf("Expected ongoing status, got %s", decoded.Outcome.Status)
	}
}
