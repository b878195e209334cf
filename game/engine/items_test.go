package engine

import (
	"strings"
	"testing"
)

func TestPickUp(t *testing.T) {
	tests := []struct {
		name   string
		item   string
		expect bool
	}{
		{"item here", "key", true},
		{"case insensitive", "KEY", true},
		{"item elsewhere", "mug", false},
		{"unknown item", "ghost", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := createTestEngine(t)
			if got := engine.PickUp(tt.item); got != tt.expect {
				t.Errorf("PickUp(%q) = %v, want %v", tt.item, got, tt.expect)
			}
			start := engine.CurrentLocation()
			if tt.expect && start.HasItem("key") {
				t.Error("Expected key removed from location")
			}
			if tt.expect && len(engine.Inventory()) != 1 {
				t.Errorf("Expected one held item, got %d", len(engine.Inventory()))
			}
			if !tt.expect && len(engine.Inventory()) != 0 {
				t.Error("Expected inventory unchanged")
			}
		})
	}
}

func TestPickUpTwice(t *testing.T) {
	engine := createTestEngine(t)
	if !engine.PickUp("key") {
		t.Fatal("Expected first pick up to succeed")
	}
	if engine.PickUp("key") {
		t.Error("Expected second pick up to fail")
	}
}

func TestDrop(t *testing.T) {
	engine := createTestEngine(t)

	if engine.Drop("key") {
		t.Error("Expected drop of an unheld item to fail")
	}
	if engine.Drop("ghost") {
		t.Error("Expected drop of an unknown item to fail")
	}

	engine.PickUp("key")
	engine.Move("go west")
	if !engine.Drop("key") {
		t.Fatal("Expected drop to succeed")
	}
	if !engine.CurrentLocation().HasItem("key") {
		t.Error("Expected key at current location")
	}
	if len(engine.Inventory()) != 0 {
		t.Error("Expected key removed from inventory")
	}
}

func TestInspect(t *testing.T) {
	engine := createTestEngine(t)

	if _, ok := engine.Inspect("key"); ok {
		t.Error("Expected inspect of an unheld item to fail")
	}

	engine.PickUp("key")
	text, ok := engine.Inspect("key")
	if !ok {
		t.Fatal("Expected inspect to succeed")
	}
	if text != "Opens the vault.\n..... It needs to go to Vault" {
		t.Errorf("Unexpected inspect text %q", text)
	}
}

func TestCheckQuestCompletion(t *testing.T) {
	engine := createTestEngine(t)
	engine.PickUp("key")
	engine.PickUp("coin")

	// Wrong location.
	engine.Drop("coin")
	if engine.CheckQuestCompletion("coin").Completed {
		t.Error("Expected no completion away from target")
	}
	engine.PickUp("coin")

	engine.Move("go east")
	engine.Drop("coin")
	result := engine.CheckQuestCompletion("coin")
	if !result.Completed || result.Points != 10 {
		t.Fatalf("Expected completion worth 10, got %+v", result)
	}
	if result.Message != "Coin spent." {
		t.Errorf("Expected completion text, got %q", result.Message)
	}
	if engine.Score() != 10 {
		t.Errorf("Expected score 10, got %d", engine.Score())
	}

	// Repeating the check never re-awards.
	for i := 0; i < 3; i++ {
		if engine.CheckQuestCompletion("coin").Completed {
			t.Error("Expected repeat check to fail")
		}
	}
	engine.PickUp("coin")
	engine.Drop("coin")
	if engine.CheckQuestCompletion("coin").Completed {
		t.Error("Expected re-drop check to fail")
	}
	if engine.Score() != 10 {
		t.Errorf("Expected score to stay 10, got %d", engine.Score())
	}
}

func TestCheckQuestCompletionRequiresItemPresent(t *testing.T) {
	engine := createTestEngine(t)
	engine.PickUp("key")
	engine.Move("go east")

	// Held, not dropped.
	if engine.CheckQuestCompletion("key").Completed {
		t.Error("Expected no completion for a held item")
	}
	if engine.CheckQuestCompletion("ghost").Completed {
		t.Error("Expected no completion for an unknown item")
	}
}

func TestCheckQuestCompletionScoreLocked(t *testing.T) {
	engine := createTestEngine(t)
	engine.PickUp("key")
	engine.PickUp("coin")
	engine.Move("go east")
	engine.LockScore()
	engine.LockScore()

	engine.Drop("coin")
	result := engine.CheckQuestCompletion("coin")
	if !result.Completed || !result.ScoreLocked || result.Points != 0 {
		t.Errorf("Expected locked completion, got %+v", result)
	}
	if engine.Score() != 0 {
		t.Errorf("Expected score unchanged, got %d", engine.Score())
	}
	if got := engine.Returned(); len(got) != 1 || got[0] != "coin" {
		t.Errorf("Expected coin marked returned, got %v", got)
	}
}

func walkHomeWith(t *testing.T, engine *GameEngine, items ...string) {
	t.Helper()
	for _, step := range []string{"go west", "go west", "go west"} {
		engine.Move(step)
		for _, item := range items {
			engine.PickUp(item)
		}
	}
	for _, step := range []string{"go east", "go east", "go east"} {
		engine.Move(step)
	}
	if engine.CurrentLocationID() != 0 {
		t.Fatalf("Expected to be back at start, got %d", engine.CurrentLocationID())
	}
}

func TestSubstituteScoresAsPrimary(t *testing.T) {
	engine := createTestEngine(t)
	walkHomeWith(t, engine, "drive", "cable")

	engine.Drop("cable")
	if got := engine.CheckQuestCompletion("cable").Points; got != 30 {
		t.Errorf("Expected substitute to score as the drive (30), got %d", got)
	}

	engine.Drop("drive")
	if got := engine.CheckQuestCompletion("drive").Points; got != 30 {
		t.Errorf("Expected drive to score 30, got %d", got)
	}
	if engine.Score() != 60 {
		t.Errorf("Expected score 60, got %d", engine.Score())
	}
}

func TestSubstituteAfterPrimaryScoresOwnValue(t *testing.T) {
	engine := createTestEngine(t)
	walkHomeWith(t, engine, "drive", "cable")

	engine.Drop("drive")
	engine.CheckQuestCompletion("drive")
	engine.Drop("cable")
	if got := engine.CheckQuestCompletion("cable").Points; got != 10 {
		t.Errorf("Expected substitute to score its own 10 once the drive is back, got %d", got)
	}
}

func TestSubstituteOnlyWhenPrimaryWorthMore(t *testing.T) {
	cat := createTestCatalog()
	drive, _ := cat.Item("drive")
	drive.TargetPoints = 5

	engine, err := NewEngine(cat, createTestSettings())
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	walkHomeWith(t, engine, "cable")

	engine.Drop("cable")
	if got := engine.CheckQuestCompletion("cable").Points; got != 10 {
		t.Errorf("Expected substitute to keep its own value, got %d", got)
	}
}

func TestLookListsDroppedItem(t *testing.T) {
	engine := createTestEngine(t)
	engine.PickUp("key")
	engine.Move("go west")
	engine.Drop("key")

	if !strings.Contains(engine.Look(), "Key - A brass key.") {
		t.Error("Expected dropped key in listing")
	}
}
