package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/pageza/what-to-cook/backend/config"
	"github.com/pageza/what-to-cook/backend/internal/database"
	"github.com/pageza/what-to-cook/backend/internal/logging"
	"github.com/pageza/what-to-cook/backend/internal/router"
	"github.com/pageza/what-to-cook/backend/internal/server"
	"github.com/pageza/what-to-cook/backend/internal/service"
	"github.com/pageza/what-to-cook/backend/internal/session"
	"github.com/pageza/what-to-cook/backend/migrations"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "what-to-cook",
		Short:         "Recipe generation API",
		SilenceUsage: true,
		RunE:         func(cmd *cobra.Command, args []string) error { return serve(cmd.Context()) },
	}
	root.AddCommand(newServeCmd(), newMigrateCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func newMigrateCmd() *cobra.Command {
	var rollback bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := database.Open(cfg)
			if err != nil {
				return err
			}
			defer closeDB(db)

			ctx := cmd.Context()
			if !rollback {
				return database.RunMigrations(ctx, db)
			}
			if cfg.DBDriver != "postgres" {
				return fmt.Errorf("rollback is only supported for postgres")
			}
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			name, err := database.Rollback(ctx, sqlDB, migrations.FS)
			if errors.Is(err, database.ErrNoMigrations) {
				logging.Logger.Info("nothing to roll back")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Successfully rolled back migration: %s\n", name)
			return nil
		},
	}
	cmd.Flags().BoolVar(&rollback, "rollback", false, "Rollback the last migration")
	return cmd
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	return cfg, nil
}

func serve(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := database.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.RunMigrations(ctx, db); err != nil {
		closeDB(db)
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	sessions, closeSessions, err := newSessionStore(cfg)
	if err != nil {
		closeDB(db)
		return err
	}

	archiver, err := newArchiver(ctx, cfg)
	if err != nil {
		closeSessions()
		closeDB(db)
		return err
	}

	store := service.NewRecipeStore(db)
	pipeline := service.NewPipeline(
		service.NewRecipeGenerator(service.LLMConfig{
			APIKey:            cfg.LLMAPIKey,
			BaseURL:           cfg.LLMBaseURL,
			Model:             cfg.LLMModel,
			RequestsPerSecond: cfg.LLMRequestsPerSecond,
			MaxRetries:        2,
		}),
		service.NewRecipeParser(archiver),
		store,
	)

	handler := router.SetupRouter(router.Dependencies{
		Config:   cfg,
		Backend:  pipeline,
		Reader:   store,
		Sessions: sessions,
		DB:       db,
	})

	srv := server.New(cfg, handler)
	return srv.Run(closeSessions, func() { closeDB(db) })
}

// newSessionStore builds the configured session store and its cleanup.
func newSessionStore(cfg *config.Config) (session.Store, func(), error) {
	cookie := session.DefaultCookieOptions(cfg.SessionCookieName, cfg.SessionTTL)
	cookie.Secure = config.IsProduction()

	switch cfg.SessionStore {
	case config.SessionStoreRedis:
		client, err := database.NewRedisClient(cfg)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := client.Close(); err != nil {
				logging.Logger.Warn("failed to close redis client", "error", err)
			}
		}
		return session.NewRedisStore(client, cookie), closeFn, nil
	case config.SessionStoreMemory:
		logging.Logger.Warn("using in-memory sessions, quotas reset on restart")
		return session.NewMemoryStore(cookie), func() {}, nil
	default:
		store, err := session.NewCookieStore(cfg.SessionSecret, cookie)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}
}

func newArchiver(ctx context.Context, cfg *config.Config) (service.Archiver, error) {
	s3Cfg, err := config.NewS3Config(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3: %w", err)
	}
	if s3Cfg == nil {
		return service.NoopArchiver{}, nil
	}
	logging.Logger.Info("archiving unparsed model output", "bucket", s3Cfg.BucketName)
	return service.NewS3Archiver(s3Cfg.Client, s3Cfg.BucketName), nil
}

func closeDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logging.Logger.Warn("failed to close database", "error", err)
	}
}
