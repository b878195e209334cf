package api

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/wricardo/campus-quest/game/catalog"
	"github.com/wricardo/campus-quest/game/scenario"
	"github.com/wricardo/campus-quest/game/service"
	"github.com/wricardo/campus-quest/internal/logging"
	"github.com/wricardo/campus-quest/internal/observability"
	"github.com/wricardo/campus-quest/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
	metrics *observability.Metrics
	logger  *slog.Logger
}

// Option configures the API server.
type Option func(*Server)

// WithMetrics counts requests and serves /metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithLogger replaces the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server. The hub may be nil.
func NewServer(gameService service.GameService, hub *websocket.Hub, opts ...Option) *Server {
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.Use(s.instrument)

	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Game operations
	api.HandleFunc("/sessions/{id}/state", s.handleGetGameState).Methods("GET")
	api.HandleFunc("/sessions/{id}/command", s.handleCommand).Methods("POST")
	api.HandleFunc("/sessions/{id}/move", s.handleMove).Methods("POST")
	api.HandleFunc("/sessions/{id}/take", s.handleTake).Methods("POST")
	api.HandleFunc("/sessions/{id}/drop", s.handleDrop).Methods("POST")
	api.HandleFunc("/sessions/{id}/submit", s.handleSubmit).Methods("POST")
	api.HandleFunc("/sessions/{id}/quit", s.handleQuit).Methods("POST")
	api.HandleFunc("/sessions/{id}/reset", s.handleReset).Methods("POST")
	api.HandleFunc("/sessions/{id}/continue", s.handleContinue).Methods("POST")
	api.HandleFunc("/sessions/{id}/history", s.handleGetHistory).Methods("GET")

	// Worlds
	api.HandleFunc("/worlds", s.handleListWorlds).Methods("GET")
	api.HandleFunc("/worlds/{name}", s.handleGetWorld).Methods("GET")
	api.HandleFunc("/simulate", s.handleSimulate).Methods("POST")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)

	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	s.router.Handle("/metrics", s.metrics.Handler()).Methods("GET")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		logging.LogError(r.Context(), s.logger, "request failed", err)
	}
	respondJSON(w, status, ErrorResponse{Error: err.Error(), Code: logging.ErrorCode(err)})
}

func respondBadRequest(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: message, Code: service.CodeInvalidRequest})
}

// StatusFor maps a service error to an HTTP status by its error code.
func StatusFor(err error) int {
	switch logging.ErrorCode(err) {
	case service.CodeSessionNotFound, service.CodeWorldNotFound:
		return http.StatusNotFound
	case service.CodeSessionEnded:
		return http.StatusConflict
	case service.CodeInvalidCommand, service.CodeInvalidRequest:
		return http.StatusBadRequest
	case "CATALOG_INVALID", "ENGINE_SETTINGS_INVALID":
		return http.StatusUnprocessableEntity
	}
	if errors.Is(err, catalog.ErrInvalidCatalog) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// decode reads an optional JSON body into v. An empty body is not an error.
func decode(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		World string `json:"world,omitempty"`
	}
	if err := decode(r, &req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}

	session, err := s.service.CreateSession(r.Context(), req.World)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	query := r.URL.Query()
	sortBy := query.Get("sort") // "created", "accessed" (default)
	order := query.Get("order") // "asc", "desc" (default)
	total := len(sessions)

	if sortBy != "created" {
		sortBy = "accessed"
	}
	if order != "asc" {
		order = "desc"
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	if l, err := strconv.Atoi(query.Get("limit")); err == nil && l > 0 && l < len(sessions) {
		sessions = sessions[:l]
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.service.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		s.respondError(w, r, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastEvent(sessionID, websocket.EventSessionGone, nil)
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Session " + sessionID + " deleted",
	})
}

// Game Operation Handlers

func (s *Server) handleGetGameState(w http.ResponseWriter, r *http.Request) {
	state, err := s.service.GetGameState(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Command string `json:"command"`
	}
	if err := decode(r, &req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}

	s.respondResult(w, r, func(id string) (*service.CommandResult, error) {
		return s.service.Command(r.Context(), id, req.Command)
	})
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Command string `json:"command"`
	}
	if err := decode(r, &req); err != nil || req.Command == "" {
		respondBadRequest(w, "command is required")
		return
	}

	s.respondResult(w, r, func(id string) (*service.CommandResult, error) {
		return s.service.Move(r.Context(), id, req.Command)
	})
}

func (s *Server) handleTake(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Item string `json:"item"`
	}
	if err := decode(r, &req); err != nil || req.Item == "" {
		respondBadRequest(w, "item is required")
		return
	}

	s.respondResult(w, r, func(id string) (*service.CommandResult, error) {
		return s.service.Take(r.Context(), id, req.Item)
	})
}

func (s *Server) handleDrop(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Item string `json:"item"`
	}
	if err := decode(r, &req); err != nil || req.Item == "" {
		respondBadRequest(w, "item is required")
		return
	}

	s.respondResult(w, r, func(id string) (*service.CommandResult, error) {
		return s.service.Drop(r.Context(), id, req.Item)
	})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	s.respondResult(w, r, func(id string) (*service.CommandResult, error) {
		return s.service.Submit(r.Context(), id)
	})
}

func (s *Server) handleQuit(w http.ResponseWriter, r *http.Request) {
	s.respondResult(w, r, func(id string) (*service.CommandResult, error) {
		return s.service.Quit(r.Context(), id)
	})
}

// respondResult runs a session command, broadcasts the new state and
// writes the result.
func (s *Server) respondResult(w http.ResponseWriter, r *http.Request, run func(id string) (*service.CommandResult, error)) {
	sessionID := mux.Vars(r)["id"]

	result, err := run(sessionID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastToSession(sessionID, result.GameState)
	}

	s.logger.DebugContext(logging.WithSession(r.Context(), sessionID), "command",
		"action", result.Action,
		"command", result.Command,
		"success", result.Success,
		"location", result.GameState.Location.ID,
		"turn", result.GameState.Turn,
	)

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.Reset(r.Context(), sessionID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastToSession(sessionID, state)
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Game reset successfully",
		"state":   state,
	})
}

func (s *Server) handleContinue(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.ContinueExploring(r.Context(), sessionID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastToSession(sessionID, state)
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Keep exploring. Moves are unlimited and the score is locked.",
		"state":   state,
	})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	opts := service.HistoryOptions{
		Page:  1,
		Limit: 20,
		Order: "desc",
	}

	query := r.URL.Query()
	if p, err := strconv.Atoi(query.Get("page")); err == nil && p > 0 {
		opts.Page = p
	}
	if l, err := strconv.Atoi(query.Get("limit")); err == nil && l > 0 {
		opts.Limit = l
	}
	if order := query.Get("order"); order == "asc" || order == "desc" {
		opts.Order = order
	}

	history, err := s.service.GetHistory(r.Context(), mux.Vars(r)["id"], opts)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, history)
}

// World Handlers

func (s *Server) handleListWorlds(w http.ResponseWriter, r *http.Request) {
	worlds, err := s.service.ListWorlds(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, worlds)
}

func (s *Server) handleGetWorld(w http.ResponseWriter, r *http.Request) {
	cat, err := s.service.LoadWorld(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, cat)
}

// SimulateResponse is the replay result, verified when an expected log was sent.
type SimulateResponse struct {
	*scenario.Result
	Verified *bool  `json:"verified,omitempty"`
	Mismatch string `json:"mismatch,omitempty"`
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		service.SimulateRequest
		ExpectedLog []int `json:"expected_log,omitempty"`
	}
	if err := decode(r, &req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}

	result, err := s.service.Simulate(r.Context(), req.SimulateRequest)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	resp := SimulateResponse{Result: result}
	if req.ExpectedLog != nil {
		script := &scenario.Script{Name: "request", ExpectedLog: req.ExpectedLog}
		verr := script.Verify(result)
		ok := verr == nil
		resp.Verified = &ok
		if verr != nil {
			resp.Mismatch = verr.Error()
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		respondBadRequest(w, "session parameter required")
		return
	}
	if s.hub == nil {
		respondJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "websocket hub disabled"})
		return
	}

	if _, err := s.service.GetSession(r.Context(), sessionID); err != nil {
		s.respondError(w, r, err)
		return
	}

	s.hub.ServeWS(w, r, sessionID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// instrument counts and logs every request by its route template.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		s.metrics.RecordRequest(r.Method, route, strconv.Itoa(rec.status))
		s.logger.DebugContext(r.Context(), "http request",
			"method", r.Method,
			"route", route,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// statusRecorder captures the response status. It passes Hijack through so
// WebSocket upgrades keep working.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}
