// @title			Floating Agent API
// @version		1.0
// @description	Proxy between the floating agent browser extension and the Weavy chat platform.
// @BasePath		/api

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/mtlprog/floatingagent/internal/config"
	"github.com/mtlprog/floatingagent/internal/database"
	"github.com/mtlprog/floatingagent/internal/domain"
	"github.com/mtlprog/floatingagent/internal/handler"
	"github.com/mtlprog/floatingagent/internal/logger"
	"github.com/mtlprog/floatingagent/internal/metrics"
	"github.com/mtlprog/floatingagent/internal/middleware"
	"github.com/mtlprog/floatingagent/internal/repository"
	"github.com/mtlprog/floatingagent/internal/weavy"
	"github.com/urfave/cli/v2"
)

func main() {
	// .env is optional; variables already set in the environment win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	if err := newApp().Run(os.Args); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

// serverFlags are read by the root action and by serve alike.
func serverFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Value:   config.DefaultPort,
			Usage:   "HTTP server port",
			EnvVars: []string{"PORT"},
		},
		&cli.StringFlag{
			Name:    "cors-origins",
			Value:   config.DefaultCORSOrigins,
			Usage:   "Comma separated list of allowed CORS origins",
			EnvVars: []string{"CORS_ORIGINS"},
		},
		&cli.Int64Flag{
			Name:    "max-body-bytes",
			Value:   config.DefaultMaxBodyBytes,
			Usage:   "Maximum accepted request body size",
			EnvVars: []string{"MAX_BODY_BYTES"},
		},
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "floatingagent",
		Usage: "Proxy between the floating agent extension and the Weavy platform",
		Flags: append(serverFlags(),
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   "json",
				Usage:   "Log format (json, text)",
				EnvVars: []string{"LOG_FORMAT"},
			},
			&cli.StringFlag{
				Name:    "weavy-url",
				Usage:   "Base URL of the Weavy environment",
				EnvVars: []string{"WEAVY_URL"},
			},
			&cli.StringFlag{
				Name:    "weavy-api-key",
				Usage:   "Weavy API key used as bearer token",
				EnvVars: []string{"WEAVY_API_KEY"},
			},
			&cli.DurationFlag{
				Name:    "weavy-timeout",
				Value:   config.DefaultWeavyTimeout,
				Usage:   "Timeout of each Weavy API call (0 disables)",
				EnvVars: []string{"WEAVY_TIMEOUT"},
			},
			&cli.StringFlag{
				Name:    "database-url",
				Aliases: []string{"d"},
				Value:   config.DefaultDatabaseURL,
				Usage:   "PostgreSQL URL of the workflow journal (journal disabled when empty)",
				EnvVars: []string{"DATABASE_URL"},
			},
		),
		Before: func(c *cli.Context) error {
			logger.Setup(logger.ParseLevel(c.String("log-level")), c.String("log-format"))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the proxy server",
				Action: runServe,
			},
			{
				Name:   "migrate",
				Usage:  "Apply workflow journal migrations",
				Action: runMigrate,
			},
			{
				Name:  "runs",
				Usage: "Print recent workflow runs from the journal",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Value: repository.DefaultRunLimit,
						Usage: "Number of runs to show",
					},
					&cli.StringFlag{
						Name:  "kind",
						Usage: "Only show runs of this workflow kind",
					},
				},
				Action: runListRuns,
			},
		},
		Action: runServe,
	}
}

func loadConfig(c *cli.Context) *config.Config {
	return &config.Config{
		Port:         c.String("port"),
		WeavyURL:     c.String("weavy-url"),
		WeavyAPIKey:  c.String("weavy-api-key"),
		WeavyTimeout: c.Duration("weavy-timeout"),
		DatabaseURL:  c.String("database-url"),
		CORSOrigins:  config.ParseOrigins(c.String("cors-origins")),
		MaxBodyBytes: c.Int64("max-body-bytes"),
	}
}

func runServe(c *cli.Context) error {
	ctx := c.Context

	cfg := loadConfig(c)
	if err := cfg.Validate(); err != nil {
		return err
	}

	var pool *pgxpool.Pool
	if cfg.JournalEnabled() {
		db, err := database.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to open workflow journal: %w", err)
		}
		defer db.Close()
		pool = db.Pool()
	} else {
		slog.Warn("workflow journal disabled, set DATABASE_URL to enable it")
	}

	client := weavy.New(cfg.WeavyURL, cfg.WeavyAPIKey, weavy.WithTimeout(cfg.WeavyTimeout))
	m := metrics.New()
	h := handler.New(client, pool, m)

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	var root http.Handler = mux
	root = middleware.Instrument(m)(root)
	root = middleware.LimitBody(cfg.MaxBodyBytes)(root)
	root = middleware.CORS(cfg.CORSOrigins)(root)
	root = middleware.RequestLogger(root)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           root,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server",
			"server_addr", "http://localhost:"+cfg.Port,
			"weavy_url", cfg.WeavyURL,
			"cors_origins", cfg.CORSOrigins,
			"journal", cfg.JournalEnabled(),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-done:
		slog.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

func runMigrate(c *cli.Context) error {
	ctx := c.Context

	databaseURL := c.String("database-url")
	if databaseURL == "" {
		return fmt.Errorf("database URL is required to run migrations")
	}

	db, err := database.Open(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to migrate workflow journal: %w", err)
	}
	defer db.Close()

	version, err := database.MigrationVersion(ctx, db.Pool())
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "workflow journal at migration version %d\n", version)
	return nil
}

func runListRuns(c *cli.Context) error {
	ctx := c.Context

	databaseURL := c.String("database-url")
	if databaseURL == "" {
		return fmt.Errorf("database URL is required to list workflow runs")
	}

	filters := repository.RunListFilters{Limit: c.Int("limit")}
	if k := c.String("kind"); k != "" {
		kind := domain.WorkflowKind(k)
		if !kind.IsValid() {
			return fmt.Errorf("unknown workflow kind %q", k)
		}
		filters.Kind = &kind
	}

	db, err := database.New(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	runs, err := repository.NewWorkflowRunRepository(db.Pool()).List(ctx, filters)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tSUBJECT\tSTATUS\tSTARTED\tERROR")
	for _, run := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			run.ID, run.Kind, run.Subject, run.Status,
			run.StartedAt.Local().Format(time.DateTime), run.Error,
		)
	}
	return tw.Flush()
}
