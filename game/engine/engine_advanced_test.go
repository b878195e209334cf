package engine

import (
	"math/rand"
	"testing"
)

// checkConservation verifies every item is in at most one place, and that
// items placed at load time are in exactly one place.
func checkConservation(t *testing.T, engine *GameEngine, placed map[string]bool) {
	t.Helper()
	counts := make(map[string]int)
	for _, loc := range engine.World().Locations {
		for _, name := range loc.Items {
			counts[name]++
		}
	}
	for _, item := range engine.Inventory() {
		counts[item.Name]++
	}

	for _, item := range engine.World().Items {
		n := counts[item.Name]
		if n > 1 {
			t.Fatalf("Item %q is in %d places", item.Name, n)
		}
		if placed[item.Name] && n != 1 {
			t.Fatalf("Item %q is in %d places, want 1", item.Name, n)
		}
		if n == 1 {
			placed[item.Name] = true
		}
	}
}

func TestItemConservationUnderRandomPlay(t *testing.T) {
	commands := []string{"go west", "go east", "go north"}
	items := []string{"key", "coin", "drive", "cable", "mug", "gem", "ghost"}

	for seed := int64(1); seed <= 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		engine := createTestEngine(t)
		engine.EnableUnlimitedMoves()

		placed := make(map[string]bool)
		for _, loc := range engine.World().Locations {
			for _, name := range loc.Items {
				placed[name] = true
			}
		}
		checkConservation(t, engine, placed)

		for step := 0; step < 300; step++ {
			item := items[rng.Intn(len(items))]
			switch rng.Intn(3) {
			case 0:
				engine.Move(commands[rng.Intn(len(commands))])
			case 1:
				engine.PickUp(item)
			case 2:
				if engine.Drop(item) {
					engine.CheckQuestCompletion(item)
					engine.ApplyLocationRewards(item)
				}
			}
			checkConservation(t, engine, placed)
		}
	}
}

func TestTurnMonotonicity(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	engine := createTestEngine(t)
	engine.PickUp("key")
	commands := []string{"go west", "go east", "go north", "go south"}

	for engine.Ongoing() {
		before := engine.Turn()
		result := engine.Move(commands[rng.Intn(len(commands))])

		want := before
		if result.Moved {
			want++
		}
		if engine.Turn() != want {
			t.Fatalf("Turn went from %d to %d (moved=%v)", before, engine.Turn(), result.Moved)
		}
		if engine.Ongoing() != (engine.Turn() < engine.MaxTurns()) {
			t.Fatalf("Ongoing=%v at turn %d of %d", engine.Ongoing(), engine.Turn(), engine.MaxTurns())
		}
	}
	if engine.Turn() != engine.MaxTurns() {
		t.Errorf("Expected session to end exactly at the cap, got turn %d", engine.Turn())
	}
}

func TestUnlimitedMovesNeverExhaust(t *testing.T) {
	engine := createTestEngine(t)
	engine.EnableUnlimitedMoves()

	for i := 0; i < 10000; i++ {
		command := "go west"
		if i%2 == 1 {
			command = "go east"
		}
		result := engine.Move(command)
		if !result.Moved {
			t.Fatalf("Move %d failed: %s", i, result.Reason)
		}
		if result.TurnCapReached || !engine.Ongoing() {
			t.Fatalf("Session ended at move %d", i)
		}
	}
	if engine.Outcome().Status != StatusOngoing {
		t.Errorf("Expected ongoing, got %s", engine.Outcome().Status)
	}
}

func TestRestrictedMoveLeavesStateUnchanged(t *testing.T) {
	engine := createTestEngine(t)
	engine.PickUp("coin")
	engine.Move("go west")
	engine.Move("go east")

	before := engine.Snapshot()
	for i := 0; i < 5; i++ {
		engine.Move("go east")
	}
	after := engine.Snapshot()

	if after.Location.ID != before.Location.ID || after.Turn != before.Turn || len(after.Inventory) != len(before.Inventory) {
		t.Errorf("Expected no change, before=%+v after=%+v", before, after)
	}
}

func TestDropQuestRewardSequence(t *testing.T) {
	engine := createTestEngine(t)
	enterVault(t, engine)

	if !engine.Drop("coin") {
		t.Fatal("Expected drop")
	}
	quest := engine.CheckQuestCompletion("coin")
	rewards := engine.ApplyLocationRewards("coin")

	if !quest.Completed || engine.Score() != 10 {
		t.Errorf("Expected coin worth 10, got %+v (score %d)", quest, engine.Score())
	}
	if len(rewards) != 2 {
		t.Errorf("Expected two reward messages, got %v", rewards)
	}

	engine.Drop("gem")
	if engine.CheckQuestCompletion("gem").Completed {
		t.Error("Expected gem to complete only at its own target")
	}
}
