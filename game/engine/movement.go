package engine

import (
	"fmt"
	"sort"
	"strings"
)

// Move follows a movement command from the current location.
//
// A move into a location whose restriction is unmet changes nothing. A
// successful move costs one turn unless unlimited moves are enabled; using
// the last turn ends the session. An ended session does not move.
func (e *GameEngine) Move(command string) MoveResult {
	from := e.CurrentLocation()
	result := MoveResult{From: from.ID, To: from.ID}

	if !e.ongoing {
		result.Reason = "The game is over."
		return result
	}

	dest, ok := from.AvailableCommands[normalizeCommand(command)]
	if !ok {
		result.Reason = fmt.Sprintf("You can't %q from %s.", command, from.Name)
		return result
	}

	if allowed, reason := e.CanEnter(dest); !allowed {
		result.Reason = reason
		return result
	}

	e.current = dest
	result.Moved = true
	result.To = dest

	if !e.state.Flags.UnlimitedMoves {
		e.state.Turn++
		if e.state.Turn >= e.state.MaxTurns {
			e.ongoing = false
			result.TurnCapReached = true
		}
	}

	return result
}

// CanEnter reports whether the player holds everything the location
// requires; if not, the reason names the missing items.
func (e *GameEngine) CanEnter(locationID int) (bool, string) {
	dest, ok := e.world.Location(locationID)
	if !ok {
		return false, fmt.Sprintf("Location %d does not exist.", locationID)
	}

	required := dest.RequiredItems()
	if len(required) == 0 {
		return true, ""
	}

	held := e.inventoryNames()
	var missing []string
	for _, name := range required {
		if !held[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return true, ""
	}
	sort.Strings(missing)

	return false, fmt.Sprintf("You need %s to enter %s.", strings.Join(missing, ", "), dest.Name)
}

// Describe returns the long description on the first visit and the brief
// one afterwards.
func (e *GameEngine) Describe() string {
	loc := e.CurrentLocation()
	if loc.Visited {
		return loc.BriefDescription
	}
	loc.Visited = true
	return loc.LongDescription
}

// Look returns the long description followed by the items lying here.
func (e *GameEngine) Look() string {
	loc := e.CurrentLocation()

	var b strings.Builder
	b.WriteString(loc.LongDescription)
	b.WriteString("\n")
	if len(loc.Items) == 0 {
		b.WriteString("No Items In " + loc.Name)
		return b.String()
	}
	b.WriteString("Items In " + loc.Name)
	for _, name := range loc.Items {
		b.WriteString("\n")
		if item, ok := e.world.Item(name); ok {
			b.WriteString(item.String())
		} else {
			b.WriteString(name)
		}
	}
	return b.String()
}

func normalizeCommand(command string) string {
	return strings.ToLower(strings.TrimSpace(command))
}

func toLower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
