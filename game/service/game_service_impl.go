package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/samber/oops"

	"github.com/wricardo/campus-quest/game/catalog"
	"github.com/wricardo/campus-quest/game/engine"
	"github.com/wricardo/campus-quest/game/history"
	"github.com/wricardo/campus-quest/game/scenario"
	"github.com/wricardo/campus-quest/internal/logging"
	"github.com/wricardo/campus-quest/internal/observability"
)

// Console texts shown at the end of a session.
const (
	WinBanner     = "YOU WIN!!!!"
	WinMessage    = "You submitted your assignment on time!"
	LoseBanner    = "YOU LOSE!!!!"
	LoseMessage   = "You submitted your assignment late!"
	InvalidOption = "That was an invalid option; try again."
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	metrics  *observability.Metrics
	logger   *slog.Logger
	now      func() time.Time
	mu       sync.RWMutex
}

// Option configures the game service.
type Option func(*gameServiceImpl)

// WithMetrics records command and session metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *gameServiceImpl) { s.metrics = m }
}

// WithLogger replaces the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *gameServiceImpl) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession creates a new game session on the named world
func (s *gameServiceImpl) CreateSession(ctx context.Context, world string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if world == "" {
		world = s.configs.DefaultName()
	}
	cat, err := s.configs.LoadWorld(world)
	if err != nil {
		return nil, oops.With("world", world).Wrapf(err, "create session")
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", world, cat)
	if err != nil {
		return nil, oops.Code(CodeInternal).With("world", world).Wrapf(err, "create session")
	}
	sess.RecordLocation("")
	sess.Engine.Describe()

	s.metrics.SessionCreated()
	s.logger.InfoContext(logging.WithSession(ctx, sess.ID), "session created", "world", world)

	return s.info(sess), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return s.info(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	infos := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		infos = append(infos, s.info(sess))
	}
	return infos, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	s.metrics.SessionsRemoved(1)
	s.logger.InfoContext(logging.WithSession(ctx, sessionID), "session deleted")
	return nil
}

// Command runs one console command: a movement command of the current
// location, an item verb, or a menu command.
func (s *gameServiceImpl) Command(ctx context.Context, sessionID, command string) (*CommandResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.live(sessionID)
	if err != nil {
		return nil, err
	}
	ctx = logging.WithSession(ctx, sess.ID)
	normalized := normalize(command)

	if _, ok := sess.Engine.CurrentLocation().AvailableCommands[normalized]; ok {
		return s.move(ctx, sess, normalized), nil
	}

	switch normalized {
	case "look":
		return s.report(sess, normalized, ActionLook, sess.Engine.Look()), nil
	case "inventory":
		return s.report(sess, normalized, ActionInventory, inventoryText(sess.Engine)), nil
	case "score":
		return s.report(sess, normalized, ActionScore, "Your score is "+sess.Engine.ScoreSummary()), nil
	case "log":
		return s.report(sess, normalized, ActionLog, strings.TrimSuffix(sess.History.String(), "\n")), nil
	case "submit early", "submit":
		return s.submit(ctx, sess), nil
	case "quit":
		return s.quit(ctx, sess), nil
	}

	verb, name, _ := strings.Cut(normalized, " ")
	name = strings.TrimSpace(name)
	if name != "" {
		switch verb {
		case "take":
			return s.take(ctx, sess, name), nil
		case "drop":
			return s.drop(ctx, sess, name), nil
		case "inspect":
			return s.inspect(sess, name), nil
		}
	}

	s.metrics.RecordCommand("invalid", false)
	return nil, oops.
		Code(CodeInvalidCommand).
		With("session_id", sess.ID).
		With("command", command).
		Wrapf(ErrInvalidCommand, "%s", InvalidOption)
}

// Move follows a movement command
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, command string) (*CommandResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.live(sessionID)
	if err != nil {
		return nil, err
	}
	return s.move(logging.WithSession(ctx, sess.ID), sess, normalize(command)), nil
}

// Take picks up an item at the current location
func (s *gameServiceImpl) Take(ctx context.Context, sessionID, item string) (*CommandResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.live(sessionID)
	if err != nil {
		return nil, err
	}
	return s.take(logging.WithSession(ctx, sess.ID), sess, normalize(item)), nil
}

// Drop puts down a held item, then checks quest completion and rewards
func (s *gameServiceImpl) Drop(ctx context.Context, sessionID, item string) (*CommandResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.live(sessionID)
	if err != nil {
		return nil, err
	}
	return s.drop(logging.WithSession(ctx, sess.ID), sess, normalize(item)), nil
}

// Submit ends the session early
func (s *gameServiceImpl) Submit(ctx context.Context, sessionID string) (*CommandResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.live(sessionID)
	if err != nil {
		return nil, err
	}
	return s.submit(logging.WithSession(ctx, sess.ID), sess), nil
}

// Quit abandons the session
func (s *gameServiceImpl) Quit(ctx context.Context, sessionID string) (*CommandResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.live(sessionID)
	if err != nil {
		return nil, err
	}
	return s.quit(logging.WithSession(ctx, sess.ID), sess), nil
}

// Reset restarts the session from the pristine world
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Engine.Reset()
	sess.History.Clear()
	sess.RecordLocation("")
	sess.Engine.Describe()

	s.logger.InfoContext(logging.WithSession(ctx, sess.ID), "session reset")
	return sess.Engine.Snapshot(), nil
}

// ContinueExploring resumes a won session in free-roam mode
func (s *gameServiceImpl) ContinueExploring(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Engine.ContinueExploring() {
		return nil, oops.
			Code(CodeSessionEnded).
			With("session_id", sess.ID).
			Wrapf(ErrSessionEnded, "session cannot continue")
	}

	s.logger.InfoContext(logging.WithSession(ctx, sess.ID), "continue exploring")
	return sess.Engine.Snapshot(), nil
}

// GetGameState returns the current state snapshot
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.Snapshot(), nil
}

// GetHistory returns paginated event history
func (s *gameServiceImpl) GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	events := sess.History.Events()
	total := len(events)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order != "asc" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	page := []history.Event{}
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			page = append(page, events[i])
		}
	} else if start < total {
		page = append(page, events[start:end]...)
	}

	return &HistoryResponse{
		Events:      page,
		TotalEvents: total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListWorlds returns the available world catalogs
func (s *gameServiceImpl) ListWorlds(ctx context.Context) ([]*WorldInfo, error) {
	return s.configs.ListWorlds()
}

// LoadWorld returns a world catalog by name
func (s *gameServiceImpl) LoadWorld(ctx context.Context, world string) (*catalog.Catalog, error) {
	return s.configs.LoadWorld(world)
}

// Simulate replays commands against a fresh engine of the named world.
// The optional start overrides the world's start location.
func (s *gameServiceImpl) Simulate(ctx context.Context, req SimulateRequest) (*scenario.Result, error) {
	world := req.World
	if world == "" {
		world = s.configs.DefaultName()
	}
	cat, err := s.configs.LoadWorld(world)
	if err != nil {
		return nil, err
	}

	start := engine.SettingsFor(cat).StartLocation
	if req.Start != nil {
		start = *req.Start
	}
	if _, ok := cat.Location(start); !ok {
		return nil, oops.
			Code(CodeInvalidRequest).
			With("world", world).
			With("start", start).
			Errorf("unknown start location %d", start)
	}

	res, err := scenario.Simulate(cat, start, req.Commands)
	if err != nil {
		return nil, oops.Code(CodeInvalidRequest).With("world", world).Wrap(err)
	}
	s.logger.DebugContext(ctx, "simulated", "world", world, "commands", len(req.Commands), "ids", len(res.IDs))
	return res, nil
}

func (s *gameServiceImpl) move(ctx context.Context, sess *Session, command string) *CommandResult {
	eng := sess.Engine
	move := eng.Move(command)
	result := s.result(command, ActionMove, move.Moved)
	result.Move = &move

	if !move.Moved {
		result.Messages = append(result.Messages, move.Reason)
		result.Events = append(result.Events, s.event(EventBlocked, move.Reason, move.From))
		s.metrics.RecordCommand(ActionMove, false)
		s.logger.DebugContext(ctx, "move rejected", "command", command, "location", move.From, "reason", move.Reason)
		return s.finish(sess, result)
	}

	sess.RecordLocation(command)
	description := eng.Describe()
	result.Messages = append(result.Messages, description)
	result.Events = append(result.Events, s.event(EventMove, eng.CurrentLocation().BriefDescription, move.To))
	s.metrics.RecordCommand(ActionMove, true)
	s.logger.DebugContext(ctx, "moved", "command", command, "from", move.From, "to", move.To, "turn", eng.Turn())

	if move.TurnCapReached {
		s.gameOver(ctx, sess, result)
	}
	return s.finish(sess, result)
}

func (s *gameServiceImpl) take(ctx context.Context, sess *Session, name string) *CommandResult {
	ok := sess.Engine.PickUp(name)
	result := s.result("take "+name, ActionTake, ok)
	s.metrics.RecordCommand(ActionTake, ok)
	if !ok {
		result.Messages = append(result.Messages, fmt.Sprintf("No such item %s here.", name))
		return s.finish(sess, result)
	}
	msg := "You picked up " + name
	result.Messages = append(result.Messages, msg)
	result.Events = append(result.Events, s.event(EventPickUp, msg, sess.Engine.CurrentLocationID()))
	s.logger.DebugContext(ctx, "picked up", "item", name, "location", sess.Engine.CurrentLocationID())
	return s.finish(sess, result)
}

func (s *gameServiceImpl) drop(ctx context.Context, sess *Session, name string) *CommandResult {
	eng := sess.Engine
	ok := eng.Drop(name)
	result := s.result("drop "+name, ActionDrop, ok)
	s.metrics.RecordCommand(ActionDrop, ok)
	if !ok {
		result.Messages = append(result.Messages, fmt.Sprintf("No such item %s in inventory.", name))
		return s.finish(sess, result)
	}

	loc := eng.CurrentLocationID()
	msg := "You dropped " + name
	result.Messages = append(result.Messages, msg)
	result.Events = append(result.Events, s.event(EventDrop, msg, loc))

	quest := eng.CheckQuestCompletion(name)
	if quest.Completed {
		result.Quest = &quest
		if quest.Message != "" {
			result.Messages = append(result.Messages, quest.Message)
		}
		if quest.ScoreLocked {
			result.Messages = append(result.Messages, "Score is locked after submission.")
		} else {
			result.Messages = append(result.Messages, fmt.Sprintf("Your score is now %d", eng.Score()))
		}
		result.Events = append(result.Events, s.event(EventQuestComplete, quest.Item, loc))
		s.logger.InfoContext(ctx, "quest completed", "item", quest.Item, "points", quest.Points, "score", eng.Score())
	}

	for _, reward := range eng.ApplyLocationRewards(name) {
		result.Messages = append(result.Messages, reward)
		result.Events = append(result.Events, s.event(EventReward, reward, loc))
	}
	return s.finish(sess, result)
}

func (s *gameServiceImpl) inspect(sess *Session, name string) *CommandResult {
	text, ok := sess.Engine.Inspect(name)
	result := s.result("inspect "+name, ActionInspect, ok)
	s.metrics.RecordCommand(ActionInspect, ok)
	if !ok {
		text = fmt.Sprintf("No such item %s in inventory.", name)
	}
	result.Messages = append(result.Messages, text)
	return s.finish(sess, result)
}

func (s *gameServiceImpl) submit(ctx context.Context, sess *Session) *CommandResult {
	ok := sess.Engine.SubmitEarly()
	result := s.result("submit early", ActionSubmit, ok)
	s.metrics.RecordCommand(ActionSubmit, ok)
	if !ok {
		result.Messages = append(result.Messages, "Submission is already finalized.")
		return s.finish(sess, result)
	}
	result.Events = append(result.Events, s.event(EventSubmitted, "submitted early", sess.Engine.CurrentLocationID()))
	s.gameOver(ctx, sess, result)
	return s.finish(sess, result)
}

func (s *gameServiceImpl) quit(ctx context.Context, sess *Session) *CommandResult {
	sess.Engine.RequestQuit()
	result := s.result("quit", ActionQuit, true)
	s.metrics.RecordCommand(ActionQuit, true)
	result.Messages = append(result.Messages, "You quit the game.")
	result.Events = append(result.Events, s.event(EventQuit, "quit", sess.Engine.CurrentLocationID()))
	s.metrics.GameFinished(string(engine.StatusQuit), string(engine.EndQuit))
	s.logger.InfoContext(ctx, "session quit", "score", sess.Engine.Score(), "turn", sess.Engine.Turn())
	return s.finish(sess, result)
}

func (s *gameServiceImpl) report(sess *Session, command, action, text string) *CommandResult {
	result := s.result(command, action, true)
	result.Messages = append(result.Messages, text)
	s.metrics.RecordCommand(action, true)
	return s.finish(sess, result)
}

// gameOver appends the end screen for a session that just finished.
func (s *gameServiceImpl) gameOver(ctx context.Context, sess *Session, result *CommandResult) {
	outcome := sess.Engine.Outcome()
	if outcome.Status == engine.StatusWon {
		result.Messages = append(result.Messages, WinBanner, WinMessage)
	} else {
		result.Messages = append(result.Messages, LoseBanner, LoseMessage)
		if threshold := sess.Engine.Settings().MinScore; sess.Engine.Score() < threshold {
			result.Messages = append(result.Messages, fmt.Sprintf("Score too low: %d/%d.", sess.Engine.Score(), threshold))
		}
		for _, missing := range outcome.Missing {
			result.Messages = append(result.Messages, "Missing: "+missing)
		}
	}
	result.Messages = append(result.Messages, "Final score: "+sess.Engine.ScoreSummary())
	result.Events = append(result.Events, s.event(EventGameOver, string(outcome.Status), sess.Engine.CurrentLocationID()))

	s.metrics.GameFinished(string(outcome.Status), string(outcome.Reason))
	s.logger.InfoContext(ctx, "game over",
		"status", outcome.Status,
		"reason", outcome.Reason,
		"score", sess.Engine.Score(),
		"turn", sess.Engine.Turn(),
	)
}

func (s *gameServiceImpl) result(command, action string, ok bool) *CommandResult {
	return &CommandResult{
		Success:  ok,
		Command:  command,
		Action:   action,
		Messages: []string{},
	}
}

func (s *gameServiceImpl) finish(sess *Session, result *CommandResult) *CommandResult {
	result.GameState = sess.Engine.Snapshot()
	return result
}

func (s *gameServiceImpl) event(kind, message string, location int) GameEvent {
	return GameEvent{Type: kind, Message: message, Timestamp: s.now(), LocationID: location}
}

// touch looks up a session and marks it accessed.
func (s *gameServiceImpl) touch(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.UpdateLastAccessed(sess.ID); err != nil {
		return nil, err
	}
	return sess, nil
}

// live is touch for commands that need a session still in play.
func (s *gameServiceImpl) live(sessionID string) (*Session, error) {
	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Engine.Ongoing() {
		return nil, oops.
			Code(CodeSessionEnded).
			With("session_id", sess.ID).
			With("outcome", sess.Engine.Outcome().Status).
			Wrapf(ErrSessionEnded, "session %s has ended", sess.ID)
	}
	return sess, nil
}

func (s *gameServiceImpl) info(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		World:          sess.World,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.Snapshot(),
	}
}

func inventoryText(eng *engine.GameEngine) string {
	items := eng.Inventory()
	if len(items) == 0 {
		return "No Items In Your Inventory"
	}
	lines := make([]string, 0, len(items)+1)
	lines = append(lines, "Items In Your Inventory")
	for _, item := range items {
		lines = append(lines, item.String())
	}
	return strings.Join(lines, "\n")
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
