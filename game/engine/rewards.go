package engine

import "fmt"

func itemMarker(locationID int, trigger, granted string) string {
	return fmt.Sprintf("item:%d:%s->%s", locationID, trigger, granted)
}

func attributeMarker(locationID int, trigger, effect string) string {
	return fmt.Sprintf("attribute:%d:%s->%s", locationID, trigger, effect)
}

// ApplyLocationRewards grants the rewards the current location holds for
// dropping the trigger item and returns the messages to show the player.
//
// Each reward is granted at most once per session. A claimed item reward
// stays silent on repeat; a claimed extension reward says so.
func (e *GameEngine) ApplyLocationRewards(trigger string) []string {
	loc := e.CurrentLocation()
	trigger = toLower(trigger)
	var messages []string

	if granted, ok := loc.Rewards.Items[trigger]; ok {
		if msg, ok := e.grantItem(loc.ID, trigger, granted); ok {
			messages = append(messages, msg)
		}
	}

	if effect, ok := loc.Rewards.Attributes[trigger]; ok {
		if msg, ok := e.grantAttribute(loc.ID, trigger, effect); ok {
			messages = append(messages, msg)
		}
	}

	return messages
}

func (e *GameEngine) grantItem(locationID int, trigger, granted string) (string, bool) {
	marker := itemMarker(locationID, trigger, granted)
	if e.state.RewardsClaimed[marker] {
		return "", false
	}
	e.state.RewardsClaimed[marker] = true

	item, ok := e.world.Item(granted)
	if !ok {
		return "", false
	}
	if e.holds(item.Name) {
		return fmt.Sprintf("You already have %s.", granted), true
	}

	// A granted item is never in two places at once.
	if holder, ok := e.world.Holder(item.Name); ok {
		loc, _ := e.world.Location(holder)
		loc.RemoveItem(item.Name)
	}
	e.state.Inventory = append(e.state.Inventory, item)
	return fmt.Sprintf("You received %s.", granted), true
}

func (e *GameEngine) grantAttribute(locationID int, trigger, effect string) (string, bool) {
	isExtension := effect == toLower(e.settings.ExtensionEffect)
	marker := attributeMarker(locationID, trigger, effect)
	if e.state.RewardsClaimed[marker] {
		if isExtension {
			return "Extension already approved.", true
		}
		return "", false
	}
	e.state.RewardsClaimed[marker] = true

	if !isExtension {
		return effect, true
	}
	if e.state.Flags.ExtensionGranted {
		return "Extension already approved.", true
	}
	e.state.MaxTurns += e.settings.ExtensionBonusTurns
	e.state.Flags.ExtensionGranted = true
	return fmt.Sprintf("Extension approved: +%d moves.", e.settings.ExtensionBonusTurns), true
}
