// Package cli wires the session library into a small terminal host: it is
// both a reference integration and a way to operate sessions from scripts.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aussiebroadwan/ldapsession/pkg/dirclient"
	"github.com/aussiebroadwan/ldapsession/pkg/securestore"
	"github.com/aussiebroadwan/ldapsession/pkg/session"
	"github.com/aussiebroadwan/ldapsession/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// App holds the wired dependencies for one CLI invocation.
type App struct {
	cfg     Config
	logger  *slog.Logger
	backend securestore.Backend
	manager *session.Manager
}

// New builds the store, client, and manager from config.
func New(cfg Config) (*App, error) {
	logger := slogx.New(slogx.Config{
		Service: "ldapsession",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})

	db, err := securestore.NewSQLite(cfg.DatabaseFile)
	if err != nil {
		return nil, fmt.Errorf("open secure store: %w", err)
	}

	var backend securestore.Backend = db
	if cfg.StorePassphrase != "" {
		sealed, err := securestore.NewSealed(context.Background(), db, cfg.StorePassphrase)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("seal secure store: %w", err)
		}
		backend = sealed
	}

	manager := session.NewManager(
		session.Config{
			SweepInterval: cfg.SweepInterval,
			Expiry:        cfg.Expiry(),
		},
		dirclient.NewClient(cfg.ServerURL),
		backend,
		NewTerminalPrompter(),
		logger,
	)

	manager.Notifier().Subscribe(func(e session.Event) {
		logger.Info("session event",
			"event_id", e.ID.String(),
			"type", string(e.Type),
			"session_id", e.Record.ID,
		)
	})

	return &App{
		cfg:     cfg,
		logger:  logger,
		backend: backend,
		manager: manager,
	}, nil
}

// Close releases the manager and the store. Safe to call more than once.
func (a *App) Close() {
	a.manager.Dispose()
	_ = a.backend.Close()
}

// Run dispatches the subcommand.
func (a *App) Run(args []string) error {
	ctx := slogx.WithContext(context.Background(), a.logger)

	command := "status"
	if len(args) > 0 {
		command = args[0]
	}

	switch command {
	case "login":
		return a.login(ctx)
	case "logout":
		return a.logout(ctx)
	case "status":
		return a.status(ctx)
	case "run":
		return a.runDaemon(ctx)
	default:
		return fmt.Errorf("unknown command %q (expected login, logout, status, or run)", command)
	}
}

func (a *App) login(ctx context.Context) error {
	record, err := a.manager.CreateSession(ctx, nil)
	if err != nil {
		return err
	}

	fmt.Printf("Signed in as %s (%s)\n", record.Account.Label, record.ID)
	return nil
}

func (a *App) logout(ctx context.Context) error {
	records, err := a.manager.Sessions(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No active session.")
		return nil
	}

	for _, record := range records {
		if err := a.manager.RemoveSession(ctx, record.ID); err != nil {
			return err
		}
		fmt.Printf("Signed out %s\n", record.ID)
	}
	return nil
}

func (a *App) status(ctx context.Context) error {
	records, err := a.manager.Sessions(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No active session.")
		return nil
	}

	for _, record := range records {
		state := "valid"
		switch {
		case record.LoginNeeded:
			state = "login needed"
		case record.Expired(time.Now()):
			state = "expired"
		}
		fmt.Printf("%s\t%s\texpires %s\t%s\n",
			record.ID, record.Account.Label,
			record.ExpiresAt.Local().Format("2006-01-02 15:04:05"), state)
	}
	return nil
}

// runDaemon keeps the process alive so the background refresh sweep keeps
// sessions fresh, until an interrupt arrives.
func (a *App) runDaemon(ctx context.Context) error {
	a.logger.Info("session daemon running",
		"server", a.cfg.ServerURL, "sweep_interval", a.cfg.SweepInterval)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	sig := <-shutdown
	a.logger.Info("shutdown signal received", "signal", sig)
	return nil
}
