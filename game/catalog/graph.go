package catalog

import "sort"

// Reachable returns every location reachable from start by following
// exits, ignoring restrictions.
func (c *Catalog) Reachable(start int) map[int]bool {
	seen := map[int]bool{}
	if _, ok := c.Location(start); !ok {
		return seen
	}
	queue := []int{start}
	seen[start] = true
	for len(queue) > 0 {
		loc, _ := c.Location(queue[0])
		queue = queue[1:]
		for _, cmd := range loc.Commands() {
			dest := loc.AvailableCommands[cmd]
			if _, ok := c.Location(dest); ok && !seen[dest] {
				seen[dest] = true
				queue = append(queue, dest)
			}
		}
	}
	return seen
}

// Exploration is what a player can reach from a start location when
// restrictions are honored.
type Exploration struct {
	Locations map[int]bool
	// Items are the items the player can obtain: placed in a reachable
	// location, or granted by a reward whose trigger is obtainable.
	Items map[string]bool
}

// LocationIDs returns the reached location ids in ascending order.
func (e Exploration) LocationIDs() []int {
	ids := make([]int, 0, len(e.Locations))
	for id := range e.Locations {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Explore computes the fixed point of reachable locations and obtainable
// items from start. A restricted location is entered only once its
// required item is obtainable.
func (c *Catalog) Explore(start int) Exploration {
	e := Exploration{Locations: map[int]bool{}, Items: map[string]bool{}}
	if _, ok := c.Location(start); !ok {
		return e
	}
	e.Locations[start] = true

	for changed := true; changed; {
		changed = false

		for _, loc := range c.Locations {
			if !e.Locations[loc.ID] {
				continue
			}
			for _, name := range loc.Items {
				if !e.Items[name] {
					e.Items[name] = true
					changed = true
				}
			}
			for _, trigger := range sortedKeys(loc.Rewards.Items) {
				granted := loc.Rewards.Items[trigger]
				if e.Items[trigger] && !e.Items[granted] {
					e.Items[granted] = true
					changed = true
				}
			}
			for _, cmd := range loc.Commands() {
				dest, ok := c.Location(loc.AvailableCommands[cmd])
				if !ok || e.Locations[dest.ID] {
					continue
				}
				if dest.Restriction != "" && !e.Items[dest.Restriction] {
					continue
				}
				e.Locations[dest.ID] = true
				changed = true
			}
		}
	}
	return e
}
