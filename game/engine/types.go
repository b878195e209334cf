package engine

import (
	"github.com/wricardo/campus-quest/game/catalog"
)

// Flags are the boolean switches of a session.
type Flags struct {
	UnlimitedMoves   bool `json:"unlimited_moves"`
	ScoreLocked      bool `json:"score_locked"`
	SubmittedOnce    bool `json:"submitted_once"`
	QuitRequested    bool `json:"quit_requested"`
	ExtensionGranted bool `json:"extension_granted"`
}

// PlayerState is the mutable progress of one player.
type PlayerState struct {
	Inventory      []*catalog.Item
	Score          int
	Turn           int
	MaxTurns       int
	Flags          Flags
	RewardsClaimed map[string]bool
	Returned       map[string]bool
}

func newPlayerState(maxTurns int) PlayerState {
	return PlayerState{
		Inventory:      []*catalog.Item{},
		MaxTurns:       maxTurns,
		RewardsClaimed: make(map[string]bool),
		Returned:       make(map[string]bool),
	}
}

// MoveResult describes the outcome of a movement attempt.
type MoveResult struct {
	Moved bool `json:"moved"`
	From  int  `json:"from"`
	To    int  `json:"to"`
	// Reason explains a rejected move.
	Reason string `json:"reason,omitempty"`
	// TurnCapReached is set when this move used the last turn.
	TurnCapReached bool `json:"turn_cap_reached,omitempty"`
}

// QuestResult describes a quest completion check.
type QuestResult struct {
	Completed bool   `json:"completed"`
	Item      string `json:"item,omitempty"`
	Points    int    `json:"points"`
	// ScoreLocked is set when the item was returned but scoring was locked.
	ScoreLocked bool   `json:"score_locked,omitempty"`
	Message     string `json:"message,omitempty"`
}

// Status is the coarse result of a session.
type Status string

const (
	StatusOngoing Status = "ongoing"
	StatusQuit    Status = "quit"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
)

// EndReason tells how a finished session ended.
type EndReason string

const (
	EndNone      EndReason = ""
	EndTurnCap   EndReason = "turn_cap"
	EndSubmitted EndReason = "submitted"
	EndQuit      EndReason = "quit"
)

// Outcome is the verdict on a session.
type Outcome struct {
	Status  Status    `json:"status"`
	Reason  EndReason `json:"reason,omitempty"`
	Missing []string  `json:"missing,omitempty"`
}

// ItemView is an item as shown to clients.
type ItemView struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Target      int    `json:"target"`
	Points      int    `json:"points"`
}

// LocationView is the current location as shown to clients.
type LocationView struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Commands    []string `json:"commands"`
	Items       []string `json:"items"`
	Restricted  bool     `json:"restricted,omitempty"`
}

// GameState is a read-only snapshot of a session.
type GameState struct {
	World          string       `json:"world"`
	Location       LocationView `json:"location"`
	Inventory      []ItemView   `json:"inventory"`
	Score          int          `json:"score"`
	MaxScore       int          `json:"max_score"`
	MinScore       int          `json:"min_score"`
	Turn           int          `json:"turn"`
	MaxTurns       int          `json:"max_turns"`
	TurnsLeft      int          `json:"turns_left"`
	Unlimited      bool         `json:"unlimited"`
	Ongoing        bool         `json:"ongoing"`
	Flags          Flags        `json:"flags"`
	Returned       []string     `json:"returned"`
	RewardsClaimed []string     `json:"rewards_claimed"`
	Outcome        Outcome      `json:"outcome"`
}
