package engine

import (
	"fmt"
	"strings"
)

// EnableUnlimitedMoves stops turn accounting for the rest of the session.
func (e *GameEngine) EnableUnlimitedMoves() {
	e.state.Flags.UnlimitedMoves = true
	e.state.MaxTurns = UnlimitedTurns
	if e.state.Turn < 0 {
		e.state.Turn = 0
	}
}

func (e *GameEngine) IsUnlimitedMoves() bool { return e.state.Flags.UnlimitedMoves }

// LockScore freezes the score. Items still count as returned.
func (e *GameEngine) LockScore() {
	e.state.Flags.ScoreLocked = true
}

func (e *GameEngine) IsScoreLocked() bool { return e.state.Flags.ScoreLocked }

// SubmitEarly ends the session. Only the first call is accepted.
func (e *GameEngine) SubmitEarly() bool {
	if e.state.Flags.SubmittedOnce {
		return false
	}
	e.state.Flags.SubmittedOnce = true
	e.ongoing = false
	return true
}

func (e *GameEngine) CanSubmitEarly() bool { return !e.state.Flags.SubmittedOnce }

// RequestQuit ends the session as a quit, which overrides any verdict.
func (e *GameEngine) RequestQuit() {
	e.state.Flags.QuitRequested = true
	e.ongoing = false
}

func (e *GameEngine) IsQuitRequested() bool { return e.state.Flags.QuitRequested }

// ContinueExploring resumes a won session in free-roam mode: moves become
// unlimited and the score is frozen. Lost and quit sessions stay ended.
func (e *GameEngine) ContinueExploring() bool {
	if e.ongoing || e.state.Flags.QuitRequested || !e.DidWin() {
		return false
	}
	e.EnableUnlimitedMoves()
	e.LockScore()
	e.ongoing = true
	return true
}

// HasStorageSolution reports whether any storage-equivalent item was returned.
func (e *GameEngine) HasStorageSolution() bool {
	for _, name := range e.settings.StorageEquivalents {
		if e.state.Returned[name] {
			return true
		}
	}
	return false
}

// HasRequiredReturns reports whether every mandatory item and one storage
// item have been returned.
func (e *GameEngine) HasRequiredReturns() bool {
	for _, name := range e.settings.RequiredReturns {
		if !e.state.Returned[name] {
			return false
		}
	}
	return e.HasStorageSolution()
}

// MissingWinItems lists what still has to be returned to win.
func (e *GameEngine) MissingWinItems() []string {
	var missing []string
	for _, name := range sortedNames(e.settings.RequiredReturns) {
		if !e.state.Returned[name] {
			missing = append(missing, name)
		}
	}
	if !e.HasStorageSolution() && len(e.settings.StorageEquivalents) > 0 {
		missing = append(missing, strings.Join(e.settings.StorageEquivalents, " or "))
	}
	return missing
}

// DidWin applies the win rules: the turn budget must not be spent (unless
// moves are unlimited), the score must reach the minimum and every required
// item must be back.
func (e *GameEngine) DidWin() bool {
	if !e.state.Flags.UnlimitedMoves && e.state.Turn >= e.state.MaxTurns {
		return false
	}
	return e.state.Score >= e.settings.MinScore && e.HasRequiredReturns()
}

// Outcome reports the verdict. A session still in play is ongoing.
func (e *GameEngine) Outcome() Outcome {
	if e.ongoing {
		return Outcome{Status: StatusOngoing}
	}
	if e.state.Flags.QuitRequested {
		return Outcome{Status: StatusQuit, Reason: EndQuit}
	}

	reason := EndSubmitted
	if !e.state.Flags.UnlimitedMoves && e.state.Turn >= e.state.MaxTurns {
		reason = EndTurnCap
	}
	if e.DidWin() {
		return Outcome{Status: StatusWon, Reason: reason}
	}
	return Outcome{Status: StatusLost, Reason: reason, Missing: e.MissingWinItems()}
}

// ScoreSummary renders the score against the display maximum.
func (e *GameEngine) ScoreSummary() string {
	return fmt.Sprintf("%d / %d", e.state.Score, e.settings.MaxScore)
}

func sortedNames(names []string) []string {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return sortedSet(set)
}
