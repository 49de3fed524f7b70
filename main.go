// Command roadlink starts the Roadlink puzzle server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Flags control host/port, the level and session stores, logging, version
// output, and optional ngrok tunneling for external access during development.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/wricardo/roadlink/api"
	"github.com/wricardo/roadlink/game/config"
	"github.com/wricardo/roadlink/game/service"
	"github.com/wricardo/roadlink/game/session"
	"github.com/wricardo/roadlink/logger"
	"github.com/wricardo/roadlink/transport/mcp"
	"github.com/wricardo/roadlink/transport/websocket"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Roadlink Server"
)

const (
	storeFile   = "file"
	storeSQLite = "sqlite"

	sessionMaxAge   = 24 * time.Hour
	cleanupInterval = time.Hour
	syncInterval    = 5 * time.Second
)

// Configuration flags control how the server starts and which services are enabled.
var (
	port         = flag.Int("port", 8080, "HTTP server port")
	host         = flag.String("host", "localhost", "HTTP server host")
	levelsDir    = flag.String("levels-dir", envDefault("LEVELS_DIR", "levels"), "Directory containing hand-authored level files")
	sessionsDir  = flag.String("sessions-dir", envDefault("SESSIONS_DIR", "sessions"), "Directory for file-backed sessions")
	store        = flag.String("store", envDefault("SESSION_STORE", storeFile), "Session store: file or sqlite")
	dbPath       = flag.String("db", envDefault("SESSION_DB", "roadlink.db"), "SQLite database path when -store=sqlite")
	logConfig    = flag.String("log-config", envDefault("LOG_CONFIG", "logging.yaml"), "YAML file with a logging section")
	debug        = flag.Bool("debug", false, "Enable debug logging")
	version      = flag.Bool("version", false, "Show version information")
	ngrokEnabled = flag.Bool("ngrok", false, "Enable ngrok tunnel")
	ngrokAuth    = flag.String("ngrok-auth", "", "Ngrok auth token (or use NGROK_AUTHTOKEN env var)")
	ngrokDomain  = flag.String("ngrok-domain", "", "Custom ngrok domain (optional)")
)

// envDefault returns the environment value of key, or fallback when unset.
func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [MODE]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "%s v%s\n\n", AppName, Version)
		fmt.Fprintf(os.Stderr, "Available modes:\n")
		fmt.Fprintf(os.Stderr, "  server, http     Run HTTP server with API, WebSocket, and MCP endpoint (default)\n")
		fmt.Fprintf(os.Stderr, "  stdio-mcp        Run MCP stdio server with internal HTTP server\n")
		fmt.Fprintf(os.Stderr, "  mcp-stdio        Alias for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "  mcp              Alias for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                          # Run HTTP server on default port 8080\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -store sqlite -db x.db   # Keep sessions in SQLite\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s stdio-mcp                # Run MCP stdio server\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s mcp -port 9090           # Run MCP stdio server against port 9090\n", os.Args[0])
	}
}

// services bundles what the transports need and what shutdown must flush.
type services struct {
	game     service.GameService
	sessions *session.Manager
	closers  []func() error
}

func (s *services) Close() {
	if err := s.sessions.SaveAllSessions(); err != nil {
		logger.Warningf("Failed to save sessions on shutdown: %v", err)
	}
	for _, c := range s.closers {
		if err := c(); err != nil {
			logger.Warningf("Failed to close store: %v", err)
		}
	}
}

// main parses flags, initializes services, and starts the selected mode.
func main() {
	// A missing .env is fine
	envErr := godotenv.Load()

	flag.Parse()

	if *version {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	args := flag.Args()
	mode := "server"
	if len(args) > 0 {
		mode = args[0]
	}
	stdio := mode == "stdio-mcp" || mode == "mcp-stdio" || mode == "mcp"

	if err := setupLogging(stdio); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	if envErr == nil {
		logger.Debug("Loaded environment variables from .env file")
	} else if !os.IsNotExist(envErr) {
		logger.Warningf("Error loading .env file: %v", envErr)
	}

	logger.Info("Starting server", "app", AppName, "version", Version, "mode", mode)

	svc, err := initializeServices()
	if err != nil {
		logger.Errorf("Failed to initialize services: %v", err)
		os.Exit(1)
	}
	defer svc.Close()

	switch {
	case stdio:
		runStdioMCPWithInternalServer(svc.game)
	case mode == "server" || mode == "http":
		runHTTPServer(svc.game)
	default:
		logger.Errorf("Unknown mode: %s. Use 'server' (default) or 'stdio-mcp'", mode)
		svc.Close()
		os.Exit(2)
	}
}

// setupLogging loads the logging config. Stdout belongs to the protocol in
// stdio mode, so logs go to stderr there.
func setupLogging(stdio bool) error {
	cfg, err := logger.LoadConfig(*logConfig)
	if err != nil {
		return err
	}
	if *debug {
		cfg.Level = "DEBUG"
	}
	if err := logger.Initialize(cfg); err != nil {
		return err
	}
	if stdio {
		level := slog.LevelInfo
		if *debug {
			level = slog.LevelDebug
		}
		logger.SetOutput(os.Stderr, cfg.ConsoleFormat, level)
	}
	return nil
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and the /mcp endpoint.
// If ngrok is enabled (via flag or environment), it also provisions a public tunnel.
func runHTTPServer(gameService service.GameService) {
	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Stop()

	apiServer := api.NewServer(gameService, hub)
	apiServer.SetVersion(Version)

	addr := fmt.Sprintf("%s:%d", *host, *port)

	// The MCP tools call back into this server's REST API
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.Handle("/mcp", mcpClient.HTTPHandler())

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		logger.Info("HTTP server listening", "addr", addr)
		logger.Infof("REST API: http://%s/api", addr)
		logger.Infof("WebSocket: ws://%s/ws?session=<session_id>", addr)
		logger.Infof("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("HTTP server failed: %v", err)
			stop <- syscall.SIGTERM
		}
	}()

	if ngrokShouldRun() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, mainRouter)
		}()
	}

	sig := <-stop
	logger.Infof("Received signal: %v. Shutting down...", sig)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warningf("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	logger.Info("Server stopped")
}

// ngrokShouldRun checks the flag first, then NGROK_ENABLED
func ngrokShouldRun() bool {
	if *ngrokEnabled {
		return true
	}
	env := os.Getenv("NGROK_ENABLED")
	return env == "true" || env == "1"
}

// ngrokAuthToken reads the token from the flag or either environment spelling
func ngrokAuthToken() string {
	if *ngrokAuth != "" {
		return *ngrokAuth
	}
	if token := os.Getenv("NGROK_AUTHTOKEN"); token != "" {
		return token
	}
	return os.Getenv("NGROK_AUTH_TOKEN")
}

// runNgrokTunnel serves handler through an ngrok endpoint until ctx ends
func runNgrokTunnel(ctx context.Context, handler http.Handler) {
	authToken := ngrokAuthToken()
	if authToken == "" {
		logger.Warning("Ngrok enabled but no auth token provided (use -ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	logger.Info("Starting ngrok tunnel")

	domain := *ngrokDomain
	if domain == "" {
		domain = os.Getenv("NGROK_DOMAIN")
	}

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		logger.Info("Using custom ngrok domain", "domain", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		logger.Errorf("Failed to start ngrok tunnel: %v", err)
		return
	}

	// Serve returns once the listener is closed
	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			logger.Warningf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	ngrokURL := tun.URL()
	logger.Info("Ngrok tunnel established", "url", ngrokURL)
	logger.Infof("  REST API (ngrok): %s/api", ngrokURL)
	logger.Infof("  WebSocket (ngrok): %s/ws?session=<session_id>", ngrokURL)
	logger.Infof("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		logger.Warningf("Ngrok server error: %v", err)
	}
	logger.Info("Ngrok tunnel closed")
}

// initializeServices wires the level store, the session store and the game
// service, and starts the background session maintenance.
func initializeServices() (*services, error) {
	levels, err := config.NewManager(*levelsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create level manager: %w", err)
	}
	logger.Info("Level store ready", "dir", *levelsDir, "levels", levels.Count())

	svc := &services{}

	var (
		persistence session.SessionPersistence
		purge       func(time.Time) (int64, error)
	)
	switch *store {
	case storeFile:
		fp, err := session.NewFilePersistence(*sessionsDir)
		if err != nil {
			return nil, fmt.Errorf("failed to create session persistence: %w", err)
		}
		persistence = fp
	case storeSQLite:
		sp, err := session.NewSQLitePersistence(*dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open session database: %w", err)
		}
		persistence = sp
		purge = sp.PurgeBefore
		svc.closers = append(svc.closers, sp.Close)
	default:
		return nil, fmt.Errorf("unknown session store %q (use %s or %s)", *store, storeFile, storeSQLite)
	}

	svc.sessions = session.NewManagerWithPersistence(persistence)
	if err := svc.sessions.LoadPersistedSessions(); err != nil {
		logger.Warningf("Failed to load persisted sessions: %v", err)
	}
	logger.Info("Session store ready", "store", *store, "sessions", svc.sessions.Count())

	svc.game = service.NewGameService(svc.sessions, levels)

	go sessionCleanupRoutine(svc.sessions, purge)
	go storeSyncRoutine(svc.sessions, persistence)

	return svc, nil
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within the retention window. purge, when set, also trims rows the
// manager never loaded.
func sessionCleanupRoutine(manager *session.Manager, purge func(time.Time) (int64, error)) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		cleanupSessions(manager, purge, time.Now())
	}
}

func cleanupSessions(manager *session.Manager, purge func(time.Time) (int64, error), now time.Time) int {
	removed := manager.CleanupExpiredSessions(sessionMaxAge)
	if purge != nil {
		purged, err := purge(now.Add(-sessionMaxAge))
		if err != nil {
			logger.Warningf("Failed to purge expired sessions: %v", err)
		} else {
			removed += int(purged)
		}
	}
	if removed > 0 {
		logger.Info("Cleaned up expired sessions", "count", removed)
	}
	return removed
}

// storeSyncRoutine periodically drops in-memory sessions whose stored copy
// was deleted out of band.
func storeSyncRoutine(manager *session.Manager, persistence session.SessionPersistence) {
	ticker := time.NewTicker(syncInterval)
	defer ticker.Stop()

	for range ticker.C {
		syncSessions(manager, persistence)
	}
}

func syncSessions(manager *session.Manager, persistence session.SessionPersistence) int {
	if persistence == nil {
		return 0
	}

	pruned := 0
	for _, sess := range manager.List() {
		if persistence.Exists(sess.ID) {
			continue
		}
		if err := manager.DeleteFromMemory(sess.ID); err == nil {
			pruned++
			logger.Debug("Pruned session from memory (store entry deleted)", "session_id", sess.ID)
		}
	}

	if pruned > 0 {
		logger.Info("Store sync pruned orphaned sessions", "count", pruned)
	}
	return pruned
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It reuses an API already listening on -port; otherwise it starts an
// internal HTTP API on a random loopback port and targets that.
func runStdioMCPWithInternalServer(gameService service.GameService) {
	externalURL := fmt.Sprintf("http://localhost:%d", *port)
	baseURL := externalURL

	if apiAvailable(externalURL) {
		logger.Info("External API server found, using it for MCP", "url", externalURL)
	} else {
		logger.Info("No external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			logger.Errorf("Failed to get available port: %v", err)
			return
		}
		internalAddr := listener.Addr().String()

		hub := websocket.NewHub()
		go hub.Run()
		defer hub.Stop()

		apiServer := api.NewServer(gameService, hub)
		apiServer.SetVersion(Version)

		httpServer := &http.Server{Handler: apiServer}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Errorf("Internal HTTP server error: %v", err)
			}
		}()
		defer httpServer.Close()

		baseURL = fmt.Sprintf("http://%s", internalAddr)
		logger.Info("Internal HTTP server started", "addr", internalAddr)
	}

	mcpClient := mcp.NewClient(baseURL)
	logger.Info("MCP stdio server ready", "api", baseURL)

	if err := mcpClient.ServeStdio(); err != nil {
		logger.Errorf("MCP stdio server error: %v", err)
	}
}

// apiAvailable probes the health endpoint of a running server
func apiAvailable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
