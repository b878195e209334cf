// Command analyze prints quick, human-readable heuristics about the worlds
// in the project's configs directory. It summarizes the map, lists dead
// ends, one-way exits, gated and rewarding locations, and estimates how
// many moves a full clear needs against the turn budget.
package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/wricardo/campus-quest/game/catalog"
	"github.com/wricardo/campus-quest/game/config"
	"github.com/wricardo/campus-quest/game/engine"
)

// Report is the analysis of a single world.
type Report struct {
	World         string
	Name          string
	Locations     int
	Exits         int
	DeadEnds      []int
	OneWay        []string
	Gated         map[int][]string
	Rewarded      []int
	Unreachable   []int
	Unobtainable  []string
	TotalPoints   int
	MinScore      int
	MaxTurns      int
	DeliveryMoves int
	// Stranded lists items whose delivery route does not exist.
	Stranded []string
}

// distances returns the shortest move count from start to every location
// reachable by exits, ignoring restrictions.
func distances(cat *catalog.Catalog, start int) map[int]int {
	dist := map[int]int{}
	if _, ok := cat.Location(start); !ok {
		return dist
	}
	dist[start] = 0
	queue := []int{start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		loc, _ := cat.Location(id)
		for _, cmd := range loc.Commands() {
			dest := loc.AvailableCommands[cmd]
			if _, ok := cat.Location(dest); !ok {
				continue
			}
			if _, seen := dist[dest]; !seen {
				dist[dest] = dist[id] + 1
				queue = append(queue, dest)
			}
		}
	}
	return dist
}

func analyze(world string, cat *catalog.Catalog) Report {
	settings := engine.SettingsFor(cat)
	r := Report{
		World:     world,
		Name:      cat.Name,
		Locations: len(cat.Locations),
		Gated:     map[int][]string{},
		MinScore:  settings.MinScore,
		MaxTurns:  settings.MaxTurns,
	}

	for _, loc := range cat.Locations {
		cmds := loc.Commands()
		r.Exits += len(cmds)
		if len(cmds) == 0 {
			r.DeadEnds = append(r.DeadEnds, loc.ID)
		}
		if req := loc.RequiredItems(); len(req) > 0 {
			r.Gated[loc.ID] = req
		}
		if !loc.Rewards.Empty() {
			r.Rewarded = append(r.Rewarded, loc.ID)
		}
		for _, cmd := range cmds {
			dest, ok := cat.Location(loc.AvailableCommands[cmd])
			if !ok {
				continue
			}
			back := false
			for _, d := range dest.AvailableCommands {
				if d == loc.ID {
					back = true
					break
				}
			}
			if !back {
				r.OneWay = append(r.OneWay, fmt.Sprintf("%d -%s-> %d", loc.ID, cmd, dest.ID))
			}
		}
	}
	sort.Ints(r.DeadEnds)
	sort.Ints(r.Rewarded)

	explored := cat.Explore(settings.StartLocation)
	for _, id := range cat.LocationIDs() {
		if !explored.Locations[id] {
			r.Unreachable = append(r.Unreachable, id)
		}
	}

	fromStart := distances(cat, settings.StartLocation)
	for _, item := range cat.Items {
		r.TotalPoints += item.TargetPoints
		if !explored.Items[item.Name] {
			r.Unobtainable = append(r.Unobtainable, item.Name)
		}

		toItem, ok := fromStart[item.StartPosition]
		toTarget, ok2 := distances(cat, item.StartPosition)[item.TargetPosition]
		if !ok || !ok2 {
			r.Stranded = append(r.Stranded, item.Name)
			continue
		}
		// Each item is fetched from the start and carried to its target.
		r.DeliveryMoves += toItem + toTarget
	}
	sort.Strings(r.Unobtainable)
	sort.Strings(r.Stranded)

	return r
}

func writeReport(w io.Writer, r Report) {
	fmt.Fprintf(w, "Name: %s\n", r.Name)
	fmt.Fprintf(w, "Locations: %d\n", r.Locations)
	fmt.Fprintf(w, "Exits: %d\n", r.Exits)
	fmt.Fprintf(w, "Turns: %d\n", r.MaxTurns)
	fmt.Fprintf(w, "Points: %d available, %d to win\n", r.TotalPoints, r.MinScore)

	if len(r.DeadEnds) > 0 {
		fmt.Fprintf(w, "Dead ends: %v\n", r.DeadEnds)
	}
	if len(r.OneWay) > 0 {
		fmt.Fprintf(w, "One-way exits: %s\n", strings.Join(r.OneWay, ", "))
	}
	ids := make([]int, 0, len(r.Gated))
	for id := range r.Gated {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		fmt.Fprintf(w, "Gated: %d needs %s\n", id, strings.Join(r.Gated[id], ", "))
	}
	if len(r.Rewarded) > 0 {
		fmt.Fprintf(w, "Rewards at: %v\n", r.Rewarded)
	}

	if len(r.Unreachable) > 0 {
		fmt.Fprintf(w, "⚠️  Unreachable locations: %v\n", r.Unreachable)
	}
	if len(r.Unobtainable) > 0 {
		fmt.Fprintf(w, "⚠️  Unobtainable items: %s\n", strings.Join(r.Unobtainable, ", "))
	}
	if len(r.Stranded) > 0 {
		fmt.Fprintf(w, "⚠️  No delivery route: %s\n", strings.Join(r.Stranded, ", "))
	}
	if r.TotalPoints < r.MinScore {
		fmt.Fprintf(w, "⚠️  Win threshold is above the points available\n")
	}

	fmt.Fprintf(w, "Delivery estimate: %d moves for %d turns\n", r.DeliveryMoves, r.MaxTurns)
	if r.DeliveryMoves > r.MaxTurns {
		fmt.Fprintf(w, "Routes must be combined to clear every item in time\n")
	}
}

func run(w io.Writer, dir string) error {
	manager, err := config.NewManager(dir)
	if err != nil {
		return err
	}
	worlds, err := manager.ListWorlds()
	if err != nil {
		return err
	}

	for _, info := range worlds {
		cat, err := manager.LoadWorld(info.WorldID)
		if err != nil {
			fmt.Fprintf(w, "Error loading %s: %v\n", info.Filename, err)
			continue
		}
		fmt.Fprintf(w, "\n=== Analyzing %s ===\n", info.Filename)
		writeReport(w, analyze(info.WorldID, cat))
	}
	return nil
}

func main() {
	dir := "configs"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}
	if err := run(os.Stdout, dir); err != nil {
		fmt.Fprintf(os.Stderr, "analyze: %v\n", err)
		os.Exit(1)
	}
}
