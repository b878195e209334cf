package engine

import "fmt"

// PickUp moves an item lying at the current location into the inventory.
func (e *GameEngine) PickUp(name string) bool {
	item, ok := e.world.Item(name)
	if !ok {
		return false
	}
	loc := e.CurrentLocation()
	if !loc.RemoveItem(item.Name) {
		return false
	}
	e.state.Inventory = append(e.state.Inventory, item)
	return true
}

// Drop moves a held item into the current location. Callers run
// CheckQuestCompletion and ApplyLocationRewards after a successful drop.
func (e *GameEngine) Drop(name string) bool {
	item, ok := e.world.Item(name)
	if !ok {
		return false
	}
	for i, held := range e.state.Inventory {
		if held.Name != item.Name {
			continue
		}
		e.state.Inventory = append(e.state.Inventory[:i], e.state.Inventory[i+1:]...)
		e.CurrentLocation().AddItem(item.Name)
		return true
	}
	return false
}

// Inspect returns the hint for a held item and where it has to go.
func (e *GameEngine) Inspect(name string) (string, bool) {
	item, ok := e.world.Item(name)
	if !ok || !e.holds(item.Name) {
		return "", false
	}
	target := fmt.Sprintf("location %d", item.TargetPosition)
	if loc, ok := e.world.Location(item.TargetPosition); ok {
		target = loc.Name
	}
	return fmt.Sprintf("%s\n..... It needs to go to %s", item.Hint, target), true
}

// CheckQuestCompletion checks whether a dropped item has reached its target.
//
// An item completes at most once. Once completed, the item's points are
// awarded unless the score is locked. The substitute item scores as the item
// it substitutes for when that one is worth more and has not been returned.
func (e *GameEngine) CheckQuestCompletion(name string) QuestResult {
	item, ok := e.world.Item(name)
	if !ok {
		return QuestResult{}
	}
	loc := e.CurrentLocation()
	if item.TargetPosition != loc.ID || !loc.HasItem(item.Name) {
		return QuestResult{}
	}
	if e.state.Returned[item.Name] {
		return QuestResult{}
	}

	e.state.Returned[item.Name] = true
	result := QuestResult{Completed: true, Item: item.Name, Message: item.CompletionText}

	if e.state.Flags.ScoreLocked {
		result.ScoreLocked = true
		return result
	}

	points := item.TargetPoints
	if item.Name == e.settings.SubstituteItem && !e.state.Returned[e.settings.SubstitutesFor] {
		if primary, ok := e.world.Item(e.settings.SubstitutesFor); ok && primary.TargetPoints > item.TargetPoints {
			points = primary.TargetPoints
		}
	}

	e.state.Score += points
	result.Points = points
	return result
}
