// Command campus-quest runs the campus adventure game.
//
// Subcommands:
//  1. "serve" (default) – runs the HTTP server exposing REST API, WebSocket, /metrics and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "play" – plays one world in the terminal
//  4. "simulate" – replays scenario scripts and verifies their expected logs
//
// Flags control host/port, the world directory, log format and optional
// ngrok tunneling for easy external access during development. Every flag
// can also be set from the environment or a .env file.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/campus-quest/api"
	"github.com/wricardo/campus-quest/game/config"
	"github.com/wricardo/campus-quest/game/service"
	"github.com/wricardo/campus-quest/game/session"
	"github.com/wricardo/campus-quest/internal/logging"
	"github.com/wricardo/campus-quest/internal/observability"
	"github.com/wricardo/campus-quest/transport/mcp"
	"github.com/wricardo/campus-quest/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Campus Quest Server"
)

const (
	sessionCleanupInterval = time.Hour
	sessionMaxAge          = 24 * time.Hour
)

// main loads .env, builds the command tree and runs it.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
	}

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newApp builds the command tree. Root flags apply to every subcommand.
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "campus-quest",
		Usage:   "Campus adventure game server, console and scenario runner",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("CAMPUS_HOST"),
			},
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("CAMPUS_PORT"),
			},
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "Directory containing world catalogs",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   "text",
				Usage:   "Log format: text or json",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logging.SetDefault("campus-quest", Version, cmd.String("log-format"), os.Stderr)
			return ctx, nil
		},
		Action: runServe,
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Run HTTP server with API, WebSocket, metrics and MCP endpoint",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "ngrok",
						Usage:   "Enable ngrok tunnel",
						Sources: cli.EnvVars("NGROK_ENABLED"),
					},
					&cli.StringFlag{
						Name:    "ngrok-auth",
						Usage:   "Ngrok auth token",
						Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
					},
					&cli.StringFlag{
						Name:    "ngrok-domain",
						Usage:   "Custom ngrok domain (optional)",
						Sources: cli.EnvVars("NGROK_DOMAIN"),
					},
				},
				Action: runServe,
			},
			{
				Name:  "mcp",
				Usage: "Run MCP stdio server against an external or internal HTTP API",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "api-url",
						Value:   "http://localhost:8080",
						Usage:   "External API server to reuse when reachable",
						Sources: cli.EnvVars("CAMPUS_API_URL"),
					},
				},
				Action: runStdioMCP,
			},
			{
				Name:      "play",
				Usage:     "Play a world in the terminal",
				ArgsUsage: "[world]",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					svc, _, err := initializeServices(cmd.String("config-dir"), nil, slog.Default())
					if err != nil {
						return err
					}
					return newConsole(svc, os.Stdin, os.Stdout).Run(ctx, cmd.Args().First())
				},
			},
			{
				Name:      "simulate",
				Usage:     "Replay scenario scripts and verify their expected logs",
				ArgsUsage: "[script.yaml|dir ...]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "transcript",
						Usage: "Print the replay transcript of every script",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					worlds, err := config.NewManager(cmd.String("config-dir"))
					if err != nil {
						return err
					}
					paths := cmd.Args().Slice()
					if len(paths) == 0 {
						paths = []string{"scenarios"}
					}
					return runScripts(os.Stdout, worlds, paths, cmd.Bool("transcript"))
				},
			},
		},
	}
}

// initializeServices wires session/config managers and the game service.
func initializeServices(configDir string, metrics *observability.Metrics, logger *slog.Logger) (service.GameService, *session.Manager, error) {
	configManager, err := config.NewManager(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	sessionManager := session.NewManager()
	gameService := service.NewGameService(sessionManager, configManager,
		service.WithMetrics(metrics),
		service.WithLogger(logger),
	)

	return gameService, sessionManager, nil
}

// newHTTPHandler combines the API server and the /mcp endpoint.
func newHTTPHandler(apiServer http.Handler, mcpClient *mcp.Client) http.Handler {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.Handle("/mcp", mcpClient.HTTPHandler())
	return mainRouter
}

// runServe starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled it also provisions a public tunnel.
func runServe(ctx context.Context, cmd *cli.Command) error {
	logger := slog.Default()
	metrics := observability.NewMetrics()

	gameService, sessionManager, err := initializeServices(cmd.String("config-dir"), metrics, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	go sessionManager.RunCleanup(ctx, sessionCleanupInterval, sessionMaxAge, func(n int) {
		metrics.SessionsRemoved(n)
		logger.Info("cleaned up expired sessions", "count", n)
	})

	apiServer := api.NewServer(gameService, hub, api.WithMetrics(metrics), api.WithLogger(logger))

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), int(cmd.Int("port")))
	mcpClient := mcp.NewClient("http://" + addr)
	handler := newHTTPHandler(apiServer, mcpClient)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		logger.Info("HTTP server listening",
			"addr", addr,
			"api", "http://"+addr+"/api",
			"websocket", "ws://"+addr+"/ws?session=<session_id>",
			"mcp", "http://"+addr+"/mcp",
			"metrics", "http://"+addr+"/metrics",
		)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, logger, cmd.String("ngrok-auth"), cmd.String("ngrok-domain"), handler)
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serveErr:
		stop()
		wg.Wait()
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	wg.Wait()
	logger.Info("server stopped")
	return nil
}

// runNgrok serves handler through an ngrok tunnel until ctx is done.
func runNgrok(ctx context.Context, logger *slog.Logger, authToken, domain string, handler http.Handler) {
	if authToken == "" {
		logger.Warn("ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	logger.Info("starting ngrok tunnel")

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		logger.Info("using custom ngrok domain", "domain", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		logger.Error("failed to start ngrok tunnel", "error", err)
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			logger.Error("failed to close ngrok tunnel", "error", err)
		}
	}()

	ngrokURL := tun.URL()
	logger.Info("ngrok tunnel established",
		"url", ngrokURL,
		"api", ngrokURL+"/api",
		"websocket", ngrokURL+"/ws?session=<session_id>",
		"mcp", ngrokURL+"/mcp",
	)

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		logger.Error("ngrok server error", "error", err)
	}
	logger.Info("ngrok tunnel closed")
}

// runStdioMCP runs an MCP stdio server. It reuses the external API when it
// answers /healthz; otherwise it starts an internal HTTP API bound to a
// random loopback port and targets that.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	logger := slog.Default()

	baseURL := cmd.String("api-url")
	if !apiReachable(ctx, baseURL) {
		logger.Info("no external API server found, starting internal HTTP server", "checked", baseURL)

		gameService, sessionManager, err := initializeServices(cmd.String("config-dir"), nil, logger)
		if err != nil {
			return err
		}

		internalURL, shutdown, err := startInternalServer(ctx, gameService, sessionManager, logger)
		if err != nil {
			return err
		}
		defer shutdown()
		baseURL = internalURL
	}

	mcpClient := mcp.NewClient(baseURL)
	logger.Info("MCP stdio server ready", "api", baseURL)

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// apiReachable reports whether a campus-quest API answers at baseURL.
func apiReachable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/healthz", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

// startInternalServer serves the API on a random loopback port and returns
// its base URL and a shutdown function.
func startInternalServer(ctx context.Context, gameService service.GameService, sessionManager *session.Manager, logger *slog.Logger) (string, func(), error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("failed to get available port: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)

	hub := websocket.NewHub(logger)
	go hub.Run(ctx)
	go sessionManager.RunCleanup(ctx, sessionCleanupInterval, sessionMaxAge, nil)

	httpServer := &http.Server{Handler: api.NewServer(gameService, hub, api.WithLogger(logger))}
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("internal HTTP server error", "error", err)
		}
	}()

	addr := listener.Addr().String()
	logger.Info("internal HTTP server started", "addr", addr)

	shutdown := func() {
		cancel()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = httpServer.Shutdown(shutdownCtx)
	}
	return "http://" + addr, shutdown, nil
}
