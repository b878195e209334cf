package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/campus-quest/game/catalog"
	"github.com/wricardo/campus-quest/game/engine"
	"github.com/wricardo/campus-quest/game/history"
	"github.com/wricardo/campus-quest/game/scenario"
)

// Error codes attached to service errors.
const (
	CodeSessionNotFound = "SESSION_NOT_FOUND"
	CodeSessionEnded    = "SESSION_ENDED"
	CodeWorldNotFound   = "WORLD_NOT_FOUND"
	CodeInvalidCommand  = "INVALID_COMMAND"
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeInternal        = "INTERNAL"
)

var (
	ErrSessionEnded   = errors.New("session has ended")
	ErrInvalidCommand = errors.New("invalid command")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, world string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Command(ctx context.Context, sessionID, command string) (*CommandResult, error)
	Move(ctx context.Context, sessionID, command string) (*CommandResult, error)
	Take(ctx context.Context, sessionID, item string) (*CommandResult, error)
	Drop(ctx context.Context, sessionID, item string) (*CommandResult, error)
	Submit(ctx context.Context, sessionID string) (*CommandResult, error)
	Quit(ctx context.Context, sessionID string) (*CommandResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.GameState, error)
	ContinueExploring(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Worlds
	ListWorlds(ctx context.Context) ([]*WorldInfo, error)
	LoadWorld(ctx context.Context, world string) (*catalog.Catalog, error)
	Simulate(ctx context.Context, req SimulateRequest) (*scenario.Result, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, world string, cat *catalog.Catalog) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles world catalog loading
type ConfigManager interface {
	LoadWorld(name string) (*catalog.Catalog, error)
	ListWorlds() ([]*WorldInfo, error)
	DefaultName() string
}

// Session represents an active game session. Each session owns its engine
// and history; engines are never shared.
type Session struct {
	ID             string
	World          string
	Engine         *engine.GameEngine
	History        *history.History
	CreatedAt      time.Time
	LastAccessedAt time.Time
}

// RecordLocation appends the current location to the history. The command
// is the one that led away from the previous location.
func (s *Session) RecordLocation(command string) {
	loc := s.Engine.CurrentLocation()
	s.History.Add(history.Event{LocationID: loc.ID, Description: loc.BriefDescription}, command)
}
