package engine

import (
	"reflect"
	"testing"
)

func enterVault(t *testing.T, engine *GameEngine) {
	t.Helper()
	engine.PickUp("key")
	engine.PickUp("coin")
	if !engine.Move("go east").Moved {
		t.Fatal("Expected to enter the vault")
	}
}

func TestItemReward(t *testing.T) {
	engine := createTestEngine(t)
	enterVault(t, engine)

	engine.Drop("coin")
	messages := engine.ApplyLocationRewards("coin")
	want := []string{"You received gem.", "a chime rings"}
	if !reflect.DeepEqual(messages, want) {
		t.Errorf("Expected %v, got %v", want, messages)
	}
	if !engine.holds("gem") {
		t.Error("Expected gem in inventory")
	}

	claimed := engine.Snapshot().RewardsClaimed
	wantClaimed := []string{"attribute:4:coin->a chime rings", "item:4:coin->gem"}
	if !reflect.DeepEqual(claimed, wantClaimed) {
		t.Errorf("Expected markers %v, got %v", wantClaimed, claimed)
	}
}

func TestItemRewardIdempotent(t *testing.T) {
	engine := createTestEngine(t)
	enterVault(t, engine)

	engine.Drop("coin")
	engine.ApplyLocationRewards("coin")
	engine.Drop("gem")

	engine.PickUp("coin")
	engine.Drop("coin")
	if messages := engine.ApplyLocationRewards("COIN"); len(messages) != 0 {
		t.Errorf("Expected no messages on repeat, got %v", messages)
	}
	if engine.holds("gem") {
		t.Error("Expected no second gem")
	}
	if got := len(engine.Snapshot().RewardsClaimed); got != 2 {
		t.Errorf("Expected 2 claimed markers, got %d", got)
	}
}

func TestItemRewardAlreadyHeld(t *testing.T) {
	engine := createTestEngine(t)
	enterVault(t, engine)
	gem, _ := engine.Item("gem")
	engine.SetInventory(append(engine.Inventory(), gem))

	engine.Drop("coin")
	messages := engine.ApplyLocationRewards("coin")
	if len(messages) == 0 || messages[0] != "You already have gem." {
		t.Errorf("Expected already-have message, got %v", messages)
	}
	count := 0
	for _, item := range engine.Inventory() {
		if item.Name == "gem" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("Expected exactly one gem, got %d", count)
	}
}

func TestGrantedItemIsLiftedFromLocation(t *testing.T) {
	engine := createTestEngine(t)
	start, _ := engine.Location(0)
	start.AddItem("gem")

	enterVault(t, engine)
	engine.Drop("coin")
	engine.ApplyLocationRewards("coin")

	if start.HasItem("gem") {
		t.Error("Expected granted gem lifted from the start location")
	}
	if !engine.holds("gem") {
		t.Error("Expected gem in inventory")
	}
}

func TestExtensionReward(t *testing.T) {
	engine := createTestEngine(t)
	enterVault(t, engine)

	engine.Drop("key")
	messages := engine.ApplyLocationRewards("key")
	if len(messages) != 1 || messages[0] != "Extension approved: +5 moves." {
		t.Errorf("Unexpected messages %v", messages)
	}
	if engine.MaxTurns() != 15 {
		t.Errorf("Expected max turns 15, got %d", engine.MaxTurns())
	}

	engine.PickUp("key")
	engine.Drop("key")
	messages = engine.ApplyLocationRewards("key")
	if len(messages) != 1 || messages[0] != "Extension already approved." {
		t.Errorf("Expected already-approved message, got %v", messages)
	}
	if engine.MaxTurns() != 15 {
		t.Errorf("Expected max turns unchanged, got %d", engine.MaxTurns())
	}
}

func TestExtensionFlagGuardsSecondLocation(t *testing.T) {
	engine := createTestEngine(t)
	loc, _ := engine.Location(1)
	loc.Rewards.Attributes = map[string]string{"key": ExtensionEffect}

	enterVault(t, engine)
	engine.Drop("key")
	engine.ApplyLocationRewards("key")
	engine.PickUp("key")

	engine.Move("go west")
	engine.Move("go west")
	engine.Drop("key")
	messages := engine.ApplyLocationRewards("key")
	if len(messages) != 1 || messages[0] != "Extension already approved." {
		t.Errorf("Expected already-approved message, got %v", messages)
	}
	if engine.MaxTurns() != 15 {
		t.Errorf("Expected one extension only, got %d", engine.MaxTurns())
	}
}

func TestNoRewardForOtherItems(t *testing.T) {
	engine := createTestEngine(t)
	if messages := engine.ApplyLocationRewards("key"); len(messages) != 0 {
		t.Errorf("Expected no rewards at start, got %v", messages)
	}
}
