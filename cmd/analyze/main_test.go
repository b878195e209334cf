package main

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/wricardo/campus-quest/game/catalog"
)

func testWorld() *catalog.Catalog {
	cat := catalog.New("tower", []*catalog.Location{
		{ID: 0, Name: "Hall", AvailableCommands: map[string]int{"go east": 1, "go north": 2}, Items: []string{"key"}},
		{ID: 1, Name: "Vault", AvailableCommands: map[string]int{"go west": 0}, Restriction: "key",
			Rewards: catalog.Rewards{Attributes: map[string]string{"key": "a bell rings"}}},
		{ID: 2, Name: "Tower", AvailableCommands: map[string]int{}, Items: []string{"coin"}},
	}, []*catalog.Item{
		{Name: "key", StartPosition: 0, TargetPosition: 1, TargetPoints: 5},
		{Name: "coin", StartPosition: 2, TargetPosition: 0, TargetPoints: 3},
	})
	start := 0
	cat.Rules.StartLocation = &start
	cat.Rules.MaxTurns = 10
	return cat
}

func TestDistances(t *testing.T) {
	cat := testWorld()

	got := distances(cat, 0)
	want := map[int]int{0: 0, 1: 1, 2: 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	if got := distances(cat, 2); len(got) != 1 {
		t.Errorf("Expected dead end to reach only itself, got %v", got)
	}
	if got := distances(cat, 99); len(got) != 0 {
		t.Errorf("Expected unknown start to reach nothing, got %v", got)
	}
}

func TestAnalyze(t *testing.T) {
	r := analyze("tower", testWorld())

	if r.Locations != 3 {
		t.Errorf("Expected 3 locations, got %d", r.Locations)
	}
	if r.Exits != 3 {
		t.Errorf("Expected 3 exits, got %d", r.Exits)
	}
	if !reflect.DeepEqual(r.DeadEnds, []int{2}) {
		t.Errorf("Expected dead end [2], got %v", r.DeadEnds)
	}
	if !reflect.DeepEqual(r.OneWay, []string{"0 -go north-> 2"}) {
		t.Errorf("Unexpected one-way exits %v", r.OneWay)
	}
	if !reflect.DeepEqual(r.Gated, map[int][]string{1: {"key"}}) {
		t.Errorf("Unexpected gated locations %v", r.Gated)
	}
	if !reflect.DeepEqual(r.Rewarded, []int{1}) {
		t.Errorf("Expected rewards at [1], got %v", r.Rewarded)
	}
	if len(r.Unreachable) != 0 || len(r.Unobtainable) != 0 {
		t.Errorf("Expected everything reachable, got %v / %v", r.Unreachable, r.Unobtainable)
	}
	if !reflect.DeepEqual(r.Stranded, []string{"coin"}) {
		t.Errorf("Expected coin stranded, got %v", r.Stranded)
	}
	if r.DeliveryMoves != 1 {
		t.Errorf("Expected 1 delivery move, got %d", r.DeliveryMoves)
	}
	if r.TotalPoints != 8 || r.MaxTurns != 10 {
		t.Errorf("Unexpected points/turns %d/%d", r.TotalPoints, r.MaxTurns)
	}
}

func TestAnalyze_LockedVault(t *testing.T) {
	cat := testWorld()
	hall, _ := cat.Location(0)
	vault, _ := cat.Location(1)
	hall.RemoveItem("key")
	vault.AddItem("key")
	item, _ := cat.Item("key")
	item.StartPosition = 1

	r := analyze("tower", cat)
	if !reflect.DeepEqual(r.Unreachable, []int{1}) {
		t.Errorf("Expected vault unreachable, got %v", r.Unreachable)
	}
	if !reflect.DeepEqual(r.Unobtainable, []string{"key"}) {
		t.Errorf("Expected key unobtainable, got %v", r.Unobtainable)
	}
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	writeReport(&buf, analyze("tower", testWorld()))
	out := buf.String()

	for _, want := range []string{
		"Name: tower",
		"Dead ends: [2]",
		"One-way exits: 0 -go north-> 2",
		"Gated: 1 needs key",
		"Rewards at: [1]",
		"No delivery route: coin",
		"Win threshold is above the points available",
		"Delivery estimate: 1 moves for 10 turns",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in report:\n%s", want, out)
		}
	}
}

func TestRun(t *testing.T) {
	dir := filepath.Join("..", "..", "configs")
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}

	var buf bytes.Buffer
	if err := run(&buf, dir); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "=== Analyzing campus.json ===") {
		t.Errorf("Expected campus analysis, got:\n%s", out)
	}
	if strings.Contains(out, "Unreachable locations") {
		t.Errorf("Expected campus to be fully reachable:\n%s", out)
	}

	if err := run(&bytes.Buffer{}, filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Expected error for missing directory")
	}
}
