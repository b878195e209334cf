// Package scenario replays scripted command sequences against a fresh engine.
//
// The runner is the regression hook of the game: every command appends one
// event to a history, so the resulting id trace can be compared exactly with
// an expected sequence. Movement commands attempt a move; "take <item>" and
// "drop <item>" act on items (a drop also checks quest completion and
// rewards); "submit early" and "quit" end the session; anything else keeps the
// player in place.
//
// Scripts are YAML files:
//
//	name: inventory
//	world: campus
//	start: 2
//	commands: ["take tcard", "inventory", "go west"]
//	expected_log: [2, 2, 2, 3]
package scenario
