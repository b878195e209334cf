package scenario

import (
	"strings"

	"github.com/wricardo/campus-quest/game/catalog"
	"github.com/wricardo/campus-quest/game/engine"
	"github.com/wricardo/campus-quest/game/history"
)

// Result is what a replay produced.
type Result struct {
	IDs        []int          `json:"ids"`
	Score      int            `json:"score"`
	Turn       int            `json:"turn"`
	Outcome    engine.Outcome `json:"outcome"`
	Transcript string         `json:"transcript"`
}

// Runner drives one engine through commands and records every step.
type Runner struct {
	engine  engine.Engine
	history *history.History
}

// NewRunner records the engine's current location as the first event.
func NewRunner(eng engine.Engine) *Runner {
	r := &Runner{engine: eng, history: history.New()}
	r.record("")
	return r
}

// Simulate replays commands on a fresh engine over cat starting at start.
func Simulate(cat *catalog.Catalog, start int, commands []string) (*Result, error) {
	settings := engine.SettingsFor(cat)
	settings.StartLocation = start
	eng, err := engine.NewEngine(cat, settings)
	if err != nil {
		return nil, err
	}
	r := NewRunner(eng)
	r.Run(commands)
	return r.Result(), nil
}

// Run applies each command and appends one event per command.
func (r *Runner) Run(commands []string) {
	for _, command := range commands {
		r.Step(command)
	}
}

// Step applies a single command.
func (r *Runner) Step(command string) {
	normalized := strings.ToLower(strings.TrimSpace(command))
	loc := r.engine.CurrentLocation()

	if _, ok := loc.AvailableCommands[normalized]; ok {
		r.engine.Move(normalized)
	} else {
		r.act(normalized)
	}
	r.record(normalized)
}

func (r *Runner) act(command string) {
	switch command {
	case "submit early":
		r.engine.SubmitEarly()
		return
	case "quit":
		r.engine.RequestQuit()
		return
	}

	verb, name, ok := strings.Cut(command, " ")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return
	}
	switch verb {
	case "take":
		r.engine.PickUp(name)
	case "drop":
		if r.engine.Drop(name) {
			r.engine.CheckQuestCompletion(name)
			r.engine.ApplyLocationRewards(name)
		}
	}
}

func (r *Runner) record(command string) {
	loc := r.engine.CurrentLocation()
	r.history.Add(history.Event{LocationID: loc.ID, Description: loc.BriefDescription}, command)
}

// IDs returns the location trace so far.
func (r *Runner) IDs() []int {
	return r.history.IDs()
}

// History returns the recorded events.
func (r *Runner) History() *history.History {
	return r.history
}

// Transcript renders the replay as description / command pairs.
func (r *Runner) Transcript() string {
	var b strings.Builder
	events := r.history.Events()
	for i, e := range events {
		b.WriteString(e.Description)
		b.WriteString("\n")
		if i < len(events)-1 {
			b.WriteString("You choose: " + e.NextCommand + "\n")
		}
	}
	return b.String()
}

// Result summarizes the replay.
func (r *Runner) Result() *Result {
	return &Result{
		IDs:        r.IDs(),
		Score:      r.engine.Score(),
		Turn:       r.engine.Turn(),
		Outcome:    r.engine.Outcome(),
		Transcript: r.Transcript(),
	}
}
