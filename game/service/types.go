package service

import (
	"time"

	"github.com/wricardo/campus-quest/game/engine"
	"github.com/wricardo/campus-quest/game/history"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string            `json:"id"`
	World          string            `json:"world"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	GameState      *engine.GameState `json:"game_state"`
}

// CommandResult contains the result of one player command
type CommandResult struct {
	Success   bool               `json:"success"`
	Command   string             `json:"command"`
	Action    string             `json:"action"`
	Messages  []string           `json:"messages"`
	GameState *engine.GameState  `json:"game_state"`
	Events    []GameEvent        `json:"events,omitempty"`
	Move      *engine.MoveResult `json:"move,omitempty"`
	Quest     *engine.QuestResult `json:"quest,omitempty"`
}

// Actions reported in CommandResult.Action.
const (
	ActionMove      = "move"
	ActionTake      = "take"
	ActionDrop      = "drop"
	ActionInspect   = "inspect"
	ActionLook      = "look"
	ActionInventory = "inventory"
	ActionScore     = "score"
	ActionLog       = "log"
	ActionSubmit    = "submit"
	ActionQuit      = "quit"
)

// Event types reported in GameEvent.Type.
const (
	EventMove          = "move"
	EventBlocked       = "blocked"
	EventPickUp        = "pick_up"
	EventDrop          = "drop"
	EventQuestComplete = "quest_complete"
	EventReward        = "reward"
	EventSubmitted     = "submitted"
	EventQuit          = "quit"
	EventGameOver      = "game_over"
	EventReset         = "reset"
	EventContinue      = "continue"
)

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type       string    `json:"type"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
	LocationID int       `json:"location_id"`
}

// HistoryOptions configures event history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated event history
type HistoryResponse struct {
	Events      []history.Event `json:"events"`
	TotalEvents int             `json:"total_events"`
	Page        int             `json:"page"`
	PageSize    int             `json:"page_size"`
	TotalPages  int             `json:"total_pages"`
	HasNext     bool            `json:"has_next"`
	HasPrevious bool            `json:"has_previous"`
}

// WorldInfo provides information about a world catalog
type WorldInfo struct {
	Filename    string `json:"filename"`
	WorldID     string `json:"world_id"` // The identifier to use for session creation
	Name        string `json:"name"`
	Description string `json:"description"`
	Locations   int    `json:"locations"`
	Items       int    `json:"items"`
	MinScore    int    `json:"min_score"`
	MaxTurns    int    `json:"max_turns"`
	Start       int    `json:"start"`
}

// SimulateRequest describes a scripted replay
type SimulateRequest struct {
	World    string   `json:"world"`
	Start    *int     `json:"start,omitempty"`
	Commands []string `json:"commands"`
}
