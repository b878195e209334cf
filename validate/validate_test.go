package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const baseWorld = `name: Vault Run
description: Two rooms and a key.
rules:
  start_location: 0
  min_score: %MIN%
  max_turns: 10
  required_returns: [%REQUIRED%]
  storage_equivalents: [gold]
locations:
  - id: 0
    name: Hall
    brief_description: The hall.
    long_description: A long hall with a door to the east.
    available_commands:
      go east: 1
    items: [%HALL%]
  - id: 1
    name: Vault
    brief_description: The vault.
    long_description: A cold vault.
    available_commands:
      go west: 0
    items: [%VAULT%]
    restrictions: key
    rewards:
      items:
        key: gold
%EXTRA%items:
  - name: key
    description: A brass key.
    hint: Opens the vault.
    completion_text: The key turns.
    start_position: %KEYSTART%
    target_position: 1
    target_points: 5
  - name: gold
    description: A bar of gold.
    hint: Heavy.
    completion_text: Rich at last.
    start_position: 1
    target_position: 0
    target_points: 10
`

type worldOpts struct {
	min, required, hall, vault, extra, keyStart string
}

func world(o worldOpts) string {
	if o.min == "" {
		o.min = "10"
	}
	if o.required == "" {
		o.required = "key"
	}
	if o.keyStart == "" {
		o.keyStart = "0"
		o.hall = "key"
	}
	r := strings.NewReplacer(
		"%MIN%", o.min,
		"%REQUIRED%", o.required,
		"%HALL%", o.hall,
		"%VAULT%", o.vault,
		"%EXTRA%", o.extra,
		"%KEYSTART%", o.keyStart,
	)
	return r.Replace(baseWorld)
}

func writeWorld(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write world: %v", err)
	}
	return path
}

func TestValidateWorld(t *testing.T) {
	tests := []struct {
		name      string
		file      string
		content   string
		wantValid bool
		wantError string
	}{
		{
			name:      "valid",
			file:      "vault.yaml",
			content:   world(worldOpts{}),
			wantValid: true,
		},
		{
			name: "unreachable location",
			file: "island.yaml",
			content: world(worldOpts{extra: `  - id: 2
    name: Island
    brief_description: An island.
    long_description: Nobody comes here.
    available_commands:
      go west: 0
    items: []
`}),
			wantError: "Connectivity failure: 1/3 locations unreachable from 0: [2]",
		},
		{
			name:      "key locked inside the vault",
			file:      "locked.yaml",
			content:   world(worldOpts{keyStart: "1", vault: "key"}),
			wantError: "Unobtainable items: gold, key",
		},
		{
			name:      "threshold too high",
			file:      "greedy.yaml",
			content:   world(worldOpts{min: "100"}),
			wantError: "Win threshold 100 exceeds the 15 points available",
		},
		{
			name:      "rules name unknown item",
			file:      "rules.yaml",
			content:   world(worldOpts{required: "laptop charger"}),
			wantError: `Rules name unknown item "laptop charger"`,
		},
		{
			name:      "schema violation",
			file:      "broken.json",
			content:   `{"name": "broken", "locations": []}`,
			wantError: "CATALOG_INVALID",
		},
		{
			name:      "unparseable",
			file:      "garbage.json",
			content:   `{not json`,
			wantError: "CATALOG_INVALID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validateWorld(writeWorld(t, tt.file, tt.content))

			if result.File != tt.file {
				t.Errorf("Expected file %s, got %s", tt.file, result.File)
			}
			if result.Valid != tt.wantValid {
				t.Fatalf("Expected valid=%v, got errors: %v", tt.wantValid, result.Errors)
			}
			if tt.wantValid {
				if len(result.Info) == 0 {
					t.Error("Expected summary info for a valid world")
				}
				return
			}

			found := false
			for _, e := range result.Errors {
				if strings.Contains(e, tt.wantError) {
					found = true
				}
			}
			if !found {
				t.Errorf("Expected error containing %q, got %v", tt.wantError, result.Errors)
			}
		})
	}
}

func TestValidateWorld_MissingFile(t *testing.T) {
	result := validateWorld(filepath.Join(t.TempDir(), "nope.json"))
	if result.Valid {
		t.Error("Expected missing file to be invalid")
	}
}

func TestValidateShippedWorlds(t *testing.T) {
	files, err := worldFiles(filepath.Join("..", "configs"))
	if err != nil {
		t.Fatalf("Failed to list worlds: %v", err)
	}
	if len(files) == 0 {
		t.Skip("No worlds found")
	}

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			result := validateWorld(file)
			if !result.Valid {
				t.Errorf("Expected shipped world to be valid, got: %v", result.Errors)
			}
		})
	}
}

func TestWorldFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.yaml", "a.json", "c.yml", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := worldFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	if strings.Join(names, ",") != "a.json,b.yaml,c.yml" {
		t.Errorf("unexpected files %v", names)
	}
}
