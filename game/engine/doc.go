// Package engine provides the core game logic for Campus Quest.
//
// The engine package implements the game mechanics including:
//   - Movement along the location graph and entry restrictions
//   - Turn accounting against the turn budget
//   - Picking up, dropping and delivering items
//   - Drop-triggered rewards, each granted at most once
//   - Win and lose determination
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. Settings carry the rules (score threshold, turn
// budget, required items) and are defaulted by DefaultSettings. GameState is
// a serializable snapshot for transports.
//
// Usage:
//
//	cat, err := catalog.LoadFile("configs/campus.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngineWithDefaults(cat)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine.PickUp("tcard")
//	result := gameEngine.Move("go east")
//	fmt.Println(result.Moved, gameEngine.TurnsLeft())
//
// Game Rules:
//
// The player starts in the residence and has a limited number of moves to
// bring the required items back to the lab. Dropping an item at its target
// location scores its points once. The session ends when the moves run out,
// when the player submits early, or when the player quits. A quit has no
// verdict; otherwise the player wins with enough points and every required
// item returned, provided the moves did not run out.
//
// The engine does no I/O and has no internal locking.
package engine
