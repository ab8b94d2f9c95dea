// Package container assembles the application's dependencies from a Config
// and owns their lifecycle.
package container

import (
	"context"
	"fmt"
	"log/slog"

	"dataviz/adapters/sqlstore"
	"dataviz/app"
	"dataviz/internal/config"
	ingest "dataviz/internal/dataset"
	"dataviz/internal/errors"
	"dataviz/internal/migration"
	"dataviz/internal/session"
	"dataviz/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB    *sqlx.DB
	Blobs *session.LocalBlobStore

	// Repositories (data access layer)
	UploadRepo   ports.UploadRepository
	SnapshotRepo ports.SnapshotRepository

	Sessions  *session.Manager
	Workbench *app.WorkbenchService
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	return &Container{Config: cfg}, nil
}

// Init opens the database, migrates it and builds every component on top.
func (c *Container) Init(ctx context.Context) error {
	db, err := sqlstore.Open(ctx, c.Config.Database.Driver, c.Config.Database.DSN())
	if err != nil {
		return err
	}
	return c.InitWithDatabase(ctx, db)
}

// InitWithDatabase builds the components on an already open database.
func (c *Container) InitWithDatabase(ctx context.Context, db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}
	c.DB = db

	if err := db.PingContext(ctx); err != nil {
		return errors.DatabaseError("database connection test failed", err)
	}

	runner := migration.NewRunner()
	if err := runner.Run(ctx, db); err != nil {
		return errors.Wrap(err, "database migration failed")
	}

	if err := c.initRepositories(); err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}
	if err := c.initWorkbench(); err != nil {
		return fmt.Errorf("failed to initialize workbench: %w", err)
	}

	slog.Info("container initialized",
		"driver", c.Config.Database.Driver,
		"schema", runner.Version(),
		"upload_dir", c.Blobs.Root())
	return nil
}

// initRepositories initializes data access repositories
func (c *Container) initRepositories() error {
	c.UploadRepo = sqlstore.NewUploadRepository(c.DB)
	c.SnapshotRepo = sqlstore.NewSnapshotRepository(c.DB)

	blobs, err := session.NewLocalBlobStore(c.Config.Storage.UploadDir)
	if err != nil {
		return err
	}
	c.Blobs = blobs
	return nil
}

func (c *Container) initWorkbench() error {
	policy, err := ingest.PolicyByName(c.Config.Data.BlankPolicy)
	if err != nil {
		return err
	}
	c.Sessions = session.NewManager(c.Config.Session.TTL)
	c.Workbench = app.NewWorkbenchService(c.UploadRepo, c.SnapshotRepo, c.Blobs, policy)
	return nil
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
