package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/campus-quest/game/engine"
	"github.com/wricardo/campus-quest/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Campus Quest",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Campus Quest - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Walk the campus, return lost items to where they belong, and submit your
assignment before the turn budget runs out. You win with at least the minimum
score while holding a storage device and having returned the required items.

AVAILABLE TOOLS:
- create_session: Create a new game session (optionally pick a world)
- list_sessions / get_session: Inspect sessions
- game_state: Current location, inventory, score and turns left
- command: Any console command ("go north", "take tcard", "look", "log", ...)
- move: Movement only - requires intent explanation
- take / drop: Pick up or drop an item (dropping at its target scores it)
- submit_early: Finalize the assignment now
- continue_exploring: Keep walking after a win (score stays locked)
- reset_game: Start the session over
- history: Locations visited so far
- list_worlds: Available worlds
- game_instructions: Full rules

NOTE: The 'intent' parameter on move serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional world selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"world": map[string]interface{}{
					"type":        "string",
					"description": "Name of the world to play (optional, defaults to campus)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "command",
		Description: "Run one console command: a movement listed in the location's commands, take/drop/inspect <item>, look, inventory, score, log, submit early or quit",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"command": map[string]interface{}{
					"type":        "string",
					"description": "The command text, e.g. \"go north\" or \"take tcard\"",
				},
			},
			Required: []string{"session_id", "command"},
		},
	}, c.handleCommand)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move along one of the current location's exits. Each move costs a turn.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"command": map[string]interface{}{
					"type":        "string",
					"description": "Exit command as listed in the game state, e.g. \"go west\"",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Why you are making this move",
				},
			},
			Required: []string{"session_id", "command", "intent"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "take",
		Description: "Pick up an item at the current location",
		InputSchema: itemSchema(),
	}, c.handleTake)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "drop",
		Description: "Drop an item from the inventory. Dropping it at its target location returns it and scores its points.",
		InputSchema: itemSchema(),
	}, c.handleDrop)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "submit_early",
		Description: "Submit the assignment now and end the game",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleSubmit)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "continue_exploring",
		Description: "Keep exploring after a win. Moves become unlimited and the score is locked.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleContinue)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset the game to its initial state",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "history",
		Description: "Get the locations visited, with pagination",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"page": map[string]interface{}{
					"type":        "number",
					"description": "Page number (default 1)",
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Events per page (default 20, max 100)",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"description": "asc (oldest first) or desc (default)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleHistory)

	// Worlds
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_worlds",
		Description: "List available worlds",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListWorlds)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

func itemSchema() mcp.ToolInputSchema {
	return mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"session_id": sessionProperty(),
			"item": map[string]interface{}{
				"type":        "string",
				"description": "Item name, e.g. \"tcard\"",
			},
		},
		Required: []string{"session_id", "item"},
	}
}

// GetMCPServer returns the underlying MCP server.
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// HTTPHandler serves single JSON-RPC messages posted to it.
func (c *Client) HTTPHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := c.mcpServer.HandleMessage(r.Context(), body)
		if response == nil {
			w.WriteHeader(http.StatusAccepted)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write(responseData)
	})
}

// APIError is a failed REST call.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return e.Code + ": " + e.Message
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error == "" {
			errResp.Error = fmt.Sprintf("API error: %d", resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Code: errResp.Code, Message: errResp.Error}
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	return args
}

func stringArg(request mcp.CallToolRequest, key string) string {
	v, _ := arguments(request)[key].(string)
	return strings.TrimSpace(v)
}

func intArg(request mcp.CallToolRequest, key string) (int, bool) {
	v, ok := arguments(request)[key].(float64)
	return int(v), ok
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := map[string]string{}
	if world := stringArg(request, "world"); world != "" {
		body["world"] = world
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nWorld: %s\n\n%s", session.ID, session.World, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := "ongoing"
		if s.GameState != nil {
			status = string(s.GameState.Outcome.Status)
		}
		fmt.Fprintf(&b, "- %s (World: %s, Status: %s, Created: %s)\n",
			s.ID, s.World, status, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(stringArg(request, "session_id"), ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(stringArg(request, "session_id"), "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleCommand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := map[string]string{"command": stringArg(request, "command")}
	return c.commandResult(ctx, sessionPath(stringArg(request, "session_id"), "/command"), body)
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	// Intent is for the caller's benefit only.
	_ = stringArg(request, "intent")

	body := map[string]string{"command": stringArg(request, "command")}
	return c.commandResult(ctx, sessionPath(stringArg(request, "session_id"), "/move"), body)
}

func (c *Client) handleTake(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := map[string]string{"item": stringArg(request, "item")}
	return c.commandResult(ctx, sessionPath(stringArg(request, "session_id"), "/take"), body)
}

func (c *Client) handleDrop(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := map[string]string{"item": stringArg(request, "item")}
	return c.commandResult(ctx, sessionPath(stringArg(request, "session_id"), "/drop"), body)
}

func (c *Client) handleSubmit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.commandResult(ctx, sessionPath(stringArg(request, "session_id"), "/submit"), nil)
}

func (c *Client) commandResult(ctx context.Context, path string, body interface{}) (*mcp.CallToolResult, error) {
	var result service.CommandResult
	if err := c.apiCall(ctx, "POST", path, body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCommandResult(&result)), nil
}

func (c *Client) handleContinue(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.stateChange(ctx, sessionPath(stringArg(request, "session_id"), "/continue"))
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.stateChange(ctx, sessionPath(stringArg(request, "session_id"), "/reset"))
}

func (c *Client) stateChange(ctx context.Context, path string) (*mcp.CallToolResult, error) {
	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}

	if err := c.apiCall(ctx, "POST", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := url.Values{}
	if page, ok := intArg(request, "page"); ok {
		params.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(request, "limit"); ok {
		params.Set("limit", fmt.Sprint(limit))
	}
	if order := stringArg(request, "order"); order != "" {
		params.Set("order", order)
	}

	path := sessionPath(stringArg(request, "session_id"), "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListWorlds(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var worlds []service.WorldInfo
	if err := c.apiCall(ctx, "GET", "/api/worlds", nil, &worlds); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Worlds:\n\n")
	for _, w := range worlds {
		fmt.Fprintf(&b, "• %s (%s)\n  %s\n  Locations: %d, Items: %d, Win at: %d points, Turns: %d\n\n",
			w.WorldID, w.Name, w.Description, w.Locations, w.Items, w.MinScore, w.MaxTurns)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

const instructions = `Campus Quest - Complete Instructions

GAME OBJECTIVE:
Your assignment is due. Walk the campus, recover the items you left behind,
return them to where they belong, and submit in time.

GAME MECHANICS:
• Movement: each location lists its exits ("go north", "go west", ...). Every
  successful move costs one turn.
• Restricted locations: some locations require an item in your inventory
  (for example a tcard to enter a lab). A blocked move costs nothing.
• Items: take an item where it lies, drop it at its target location to return
  it and earn its points. Use "inspect <item>" for a hint about its target.
• Rewards: dropping certain items in certain places grants a new item or an
  extension of the turn budget. Each reward is granted at most once.
• Turn budget: when the last turn is used the game ends.

WINNING:
• Submit ("submit early") or run out of turns.
• You win with at least the minimum score, a storage device (usb drive or
  spare usb cable) returned, and the required items returned.
• Otherwise you lose and the missing items are listed.

AFTER THE GAME:
• After a win, continue_exploring lets you keep walking with unlimited moves;
  the score is locked from then on.
• reset_game starts over.

COMMANDS (command tool):
look, inventory, score, log, take <item>, drop <item>, inspect <item>,
submit early, quit, or any exit listed in the game state.

TIPS:
• Check game_state for exits and items before moving.
• Use history to review the route so far.`

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nWorld: %s\nCreated: %s\n\n%s",
		session.ID, session.World,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder

	turns := fmt.Sprintf("%d/%d", state.Turn, state.MaxTurns)
	if state.Unlimited {
		turns = fmt.Sprintf("%d (unlimited)", state.Turn)
	}
	fmt.Fprintf(&b, "Location: %s (%d) | Score: %d/%d (win at %d) | Turns: %s\n\n",
		state.Location.Name, state.Location.ID, state.Score, state.MaxScore, state.MinScore, turns)

	if state.Location.Description != "" {
		b.WriteString(state.Location.Description + "\n\n")
	}

	if len(state.Location.Commands) > 0 {
		b.WriteString("Exits: " + strings.Join(state.Location.Commands, ", ") + "\n")
	}
	if len(state.Location.Items) > 0 {
		b.WriteString("Items here: " + strings.Join(state.Location.Items, ", ") + "\n")
	}

	if len(state.Inventory) == 0 {
		b.WriteString("Inventory: (empty)\n")
	} else {
		names := make([]string, 0, len(state.Inventory))
		for _, item := range state.Inventory {
			names = append(names, item.Name)
		}
		b.WriteString("Inventory: " + strings.Join(names, ", ") + "\n")
	}
	if len(state.Returned) > 0 {
		b.WriteString("Returned: " + strings.Join(state.Returned, ", ") + "\n")
	}
	if state.Flags.ScoreLocked {
		b.WriteString("Score is locked.\n")
	}

	if !state.Ongoing {
		switch state.Outcome.Status {
		case engine.StatusWon:
			b.WriteString("\nYOU WIN!")
		case engine.StatusLost:
			b.WriteString("\nYOU LOSE")
			if len(state.Outcome.Missing) > 0 {
				b.WriteString(" - missing: " + strings.Join(state.Outcome.Missing, ", "))
			}
		case engine.StatusQuit:
			b.WriteString("\nGame quit")
		}
		if state.Outcome.Reason != engine.EndNone {
			fmt.Fprintf(&b, " (%s)", state.Outcome.Reason)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func formatCommandResult(result *service.CommandResult) string {
	var b strings.Builder
	status := "✓"
	if !result.Success {
		status = "✗"
	}
	fmt.Fprintf(&b, "%s %s [%s]\n", status, result.Command, result.Action)
	for _, msg := range result.Messages {
		b.WriteString(msg + "\n")
	}
	b.WriteString("\n" + formatGameState(result.GameState))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Location History (Page %d/%d) - Total: %d\n\n",
		history.Page, history.TotalPages, history.TotalEvents)

	for i, event := range history.Events {
		num := (history.Page-1)*history.PageSize + i + 1
		fmt.Fprintf(&b, "%d. [%d] %s", num, event.LocationID, event.Description)
		if event.NextCommand != "" {
			fmt.Fprintf(&b, " -> %s", event.NextCommand)
		}
		b.WriteString("\n")
	}

	return b.String()
}
