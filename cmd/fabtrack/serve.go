package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/xelth-com/fabtrack/internal/api"
	"github.com/xelth-com/fabtrack/internal/buildinfo"
	"github.com/xelth-com/fabtrack/internal/config"
	"github.com/xelth-com/fabtrack/internal/database"
	"github.com/xelth-com/fabtrack/internal/handlers"
	"github.com/xelth-com/fabtrack/internal/live"
	"github.com/xelth-com/fabtrack/internal/session"
	"github.com/xelth-com/fabtrack/internal/workflow"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web front end",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

// purger is the part of the session store housekeeping needs
type purger interface {
	Purge(ctx context.Context) (int64, error)
}

// newHousekeeper schedules removal of expired sessions and abandoned
// transition drafts. Drafts live as long as a session may.
func newHousekeeper(schedule string, sessions purger, drafts *workflow.Drafts, maxAge time.Duration) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		n, err := sessions.Purge(ctx)
		if err != nil {
			log.Printf("⚠️ Housekeeping: session purge failed: %v", err)
		}
		swept := drafts.Sweep(maxAge)
		if n > 0 || swept > 0 {
			log.Printf("🧹 Housekeeping: removed %d sessions, %d drafts", n, swept)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid housekeeping schedule %q: %w", schedule, err)
	}
	return c, nil
}

func serve() error {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log.Printf("🏭 fabtrack %s", buildinfo.Summary())

	// 2. Session database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("🚀 Synchronizing session schema...")
	if err := db.Migrate(); err != nil {
		db.Close()
		return fmt.Errorf("migration failed: %w", err)
	}
	log.Println("✅ Schema synchronized successfully")

	// 3. Shared state
	sessions := session.NewStore(db.DB, cfg.Session.TTL)
	client := api.NewClient(cfg.APIBaseURL, cfg.RequestTimeout)
	drafts := workflow.NewDrafts()
	hub := live.NewHub()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go hub.Run(ctx)

	// 4. Housekeeping
	keeper, err := newHousekeeper(cfg.Housekeeping, sessions, drafts, cfg.Session.TTL)
	if err != nil {
		db.Close()
		return err
	}
	keeper.Start()
	log.Printf("✅ Housekeeping scheduled (%s)", cfg.Housekeeping)

	// 5. Router
	router, err := handlers.NewRouter(cfg, client, sessions, drafts, hub)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to build router: %w", err)
	}

	// 6. Start server with graceful shutdown
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("🚀 Server starting on port %s [API: %s]", cfg.Port, cfg.APIBaseURL)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case sig := <-shutdown:
		log.Printf("⚠️  Received signal: %v. Shutting down gracefully...", sig)
	case err = <-serverErr:
		log.Printf("❌ Server failed: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	<-keeper.Stop().Done()
	stop()

	log.Println("🛑 Closing database connection...")
	if err := db.Close(); err != nil {
		log.Printf("Database close error: %v", err)
	}

	log.Println("✅ Shutdown complete")
	return err
}
