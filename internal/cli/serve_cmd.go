package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dstanek/workgraph/internal/config"
	"github.com/dstanek/workgraph/internal/domain/activity"
	"github.com/dstanek/workgraph/internal/domain/dependency"
	"github.com/dstanek/workgraph/internal/domain/project"
	"github.com/dstanek/workgraph/internal/domain/rollup"
	"github.com/dstanek/workgraph/internal/domain/task"
	"github.com/dstanek/workgraph/internal/mcp"
	"github.com/dstanek/workgraph/internal/sqlite"
	"github.com/dstanek/workgraph/internal/transport"
)

func newServeCmd() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over stdio or HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if mode != "" {
				cfg.Transport.Mode = mode
			}

			// Keep stdout clean for JSON-RPC in stdio mode.
			logWriter := io.Writer(os.Stdout)
			if cfg.Transport.Mode == "stdio" {
				logWriter = os.Stderr
			}
			logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
				Level: parseLogLevel(cfg.Log.Level),
			}))

			db, err := openDB(cfg.DB.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			services, handler := buildServices(db, logger)
			resolver := sqlite.NewAPIKeyRepository(db)
			mcpServer := mcp.NewServer(mcp.Config{
				Services:      services,
				Resolver:      resolver,
				AuthEnabled:   cfg.Auth.Enabled,
				TransportMode: cfg.Transport.Mode,
				DefaultActor:  cfg.Transport.DefaultActor,
				Logger:        logger,
			})

			if cfg.Transport.Mode == "stdio" {
				return runStdio(logger, mcpServer)
			}
			return runHTTP(cfg, logger, mcpServer, handler, resolver)
		},
	}

	cmd.Flags().StringVar(&mode, "transport", "", `transport mode: "stdio" or "http" (overrides config)`)
	return cmd
}

func buildServices(db *sqlite.DB, logger *slog.Logger) (mcp.Services, *mcp.Handler) {
	projectRepo := sqlite.NewProjectRepository(db)
	taskRepo := sqlite.NewTaskRepository(db)
	dependencyRepo := sqlite.NewDependencyRepository(db)
	activityRepo := sqlite.NewActivityRepository(db)
	userRepo := sqlite.NewUserRepository(db)
	auditRepo := sqlite.NewAuditRepository(db)
	searchRepo := sqlite.NewSearchRepository(db)

	propagator := rollup.NewPropagator(taskRepo, projectRepo, logger)
	projectSvc := project.NewService(projectRepo, taskRepo, userRepo, auditRepo, logger)
	taskSvc := task.NewService(taskRepo, projectRepo, userRepo, auditRepo, logger)
	dependencySvc := dependency.NewService(dependencyRepo, taskRepo, userRepo, auditRepo, logger)
	activitySvc := activity.NewService(activityRepo, taskRepo, userRepo, auditRepo, propagator, logger)

	services := mcp.Services{
		Projects:     projectSvc,
		Tasks:        taskSvc,
		Dependencies: dependencySvc,
		Activities:   activitySvc,
		Search:       searchRepo,
	}
	handler := mcp.NewHandler(projectSvc, taskSvc, dependencySvc, activitySvc, searchRepo)
	return services, handler
}

func runStdio(logger *slog.Logger, mcpServer *sdkmcp.Server) error {
	logger.Info("starting stdio transport", "auth", "disabled")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		logger.Info("shutting down")
		cancel()
	}()

	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil {
		return fmt.Errorf("stdio server: %w", err)
	}
	return nil
}

func runHTTP(cfg config.Config, logger *slog.Logger, mcpServer *sdkmcp.Server, handler *mcp.Handler, resolver transport.ActorResolver) error {
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(r *http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{
			Stateless:      false,
			SessionTimeout: 30 * time.Minute,
		},
	)

	var authMiddleware func(http.Handler) http.Handler
	if cfg.Auth.Enabled {
		authMiddleware = transport.AuthMiddleware(resolver)
	} else {
		authMiddleware = transport.StaticActorMiddleware(cfg.Transport.DefaultActor)
	}
	router := transport.NewRouter(handler, mcpHandler, authMiddleware)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr, "auth", cfg.Auth.Enabled)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-stop:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openDB(path string) (*sqlite.DB, error) {
	if err := ensureDBDir(path); err != nil {
		return nil, fmt.Errorf("preparing database path: %w", err)
	}
	db, err := sqlite.New(path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
