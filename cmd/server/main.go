package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AnshRaj112/soloura-backend/internal/ai"
	"github.com/AnshRaj112/soloura-backend/internal/config"
	"github.com/AnshRaj112/soloura-backend/internal/database"
	"github.com/AnshRaj112/soloura-backend/internal/handlers"
	"github.com/AnshRaj112/soloura-backend/internal/logging"
	"github.com/AnshRaj112/soloura-backend/internal/metrics"
	"github.com/AnshRaj112/soloura-backend/internal/middleware"
	"github.com/AnshRaj112/soloura-backend/internal/routes"
	"github.com/AnshRaj112/soloura-backend/internal/services"
	"github.com/AnshRaj112/soloura-backend/internal/store"
	"github.com/AnshRaj112/soloura-backend/pkg/utils"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:           "soloura",
		Short:         "Soloura journaling backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), debug)
		},
	}
	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), debug)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create the Postgres schema and MongoDB indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate(cmd.Context(), debug)
		},
	})
	return cmd
}

func setup(debug bool) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger, err := logging.New(cfg.IsProduction(), debug)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// backends holds whatever the configured store backend opened, plus how to close it.
type backends struct {
	accounts store.AccountStore
	profiles store.ProfileStore
	journals store.JournalStore
	sessions services.SessionStore
	codes    services.ActionCodeStore
	bus      services.AuthBus
	redis    *redis.Client
	health   map[string]handlers.Pinger
	closers  []func()

	postgresAccounts *store.PostgresAccountStore
	mongoJournals    *store.MongoJournalStore
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func openBackends(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*backends, error) {
	b := &backends{health: map[string]handlers.Pinger{}}

	if cfg.StoreBackend == config.StoreMemory {
		logger.Warn("Using in-memory stores; data is lost on restart")
		sessions := services.NewMemorySessionStore()
		b.accounts = store.NewMemoryAccountStore()
		b.profiles = store.NewMemoryProfileStore()
		b.journals = store.NewMemoryJournalStore()
		b.sessions = sessions
		b.codes = sessions
		b.bus = services.NewLocalAuthBus(logger)
		return b, nil
	}

	// Check encryption key (warn if not set, but don't fail)
	var cipher *utils.Cipher
	if cfg.EncryptionKey == "" {
		logger.Warn("ENCRYPTION_KEY not set; journal content is stored unencrypted")
	} else {
		c, err := utils.NewCipher(cfg.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("ENCRYPTION_KEY is invalid: %w", err)
		}
		cipher = c
	}

	pg, err := database.ConnectPostgres(ctx, cfg.PostgresURI, logger)
	if err != nil {
		return nil, err
	}
	b.closers = append(b.closers, func() { _ = pg.Close() })
	b.health["postgres"] = handlers.PingFunc(pg.PingContext)

	rdb, err := database.ConnectRedis(ctx, cfg.RedisURI, logger)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.closers = append(b.closers, func() { _ = rdb.Close() })
	b.health["redis"] = handlers.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })

	mc, db, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, logger)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.closers = append(b.closers, func() { _ = database.DisconnectMongo(mc) })
	b.health["mongo"] = handlers.PingFunc(func(ctx context.Context) error { return mc.Ping(ctx, nil) })

	sessions := services.NewRedisSessionStore(rdb)
	b.postgresAccounts = store.NewPostgresAccountStore(pg, logger)
	b.mongoJournals = store.NewMongoJournalStore(db, cipher, logger)
	b.accounts = b.postgresAccounts
	b.profiles = store.NewMongoProfileStore(db, logger)
	b.journals = b.mongoJournals
	b.sessions = sessions
	b.codes = sessions
	b.bus = services.NewRedisAuthBus(rdb, logger)
	b.redis = rdb
	return b, nil
}

func serve(ctx context.Context, debug bool) error {
	cfg, logger, err := setup(debug)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := openBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	tokens, err := services.NewTokenService(cfg.JWTSecret, cfg.IDTokenTTL)
	if err != nil {
		return err
	}
	var completer ai.Completer = ai.Unavailable{}
	if cfg.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY not set; AI analysis is disabled")
	} else {
		gc, err := ai.NewGenAICompleter(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return fmt.Errorf("create completer: %w", err)
		}
		completer = gc
	}

	m := metrics.New()
	adapters := ai.NewAdapters(completer, m, logger)
	identity := services.NewIdentityService(services.IdentityDeps{
		Accounts: b.accounts,
		Profiles: b.profiles,
		Sessions: b.sessions,
		Codes:    b.codes,
		Tokens:   tokens,
		Bus:      b.bus,
		Logger:   logger,
	})

	loc := cfg.Location()
	deps := routes.Deps{
		Auth:           handlers.NewAuthHandler(identity, logger),
		Journal:        handlers.NewJournalHandler(b.journals, adapters, loc, logger),
		Insights:       handlers.NewInsightsHandler(b.journals, adapters, loc, logger),
		Analysis:       handlers.NewAnalysisHandler(adapters, logger),
		Tokens:         tokens,
		Metrics:        m,
		Health:         b.health,
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedHost:    cfg.AllowedHost,
		Production:     cfg.IsProduction(),
	}
	if b.redis != nil {
		deps.AIRateLimit = middleware.NewRateLimit(b.redis, logger).Handler
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Soloura backend running",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Environment),
			zap.String("store", cfg.StoreBackend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func migrate(ctx context.Context, debug bool) error {
	cfg, logger, err := setup(debug)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.StoreBackend == config.StoreMemory {
		logger.Info("Memory store backend has nothing to migrate")
		return nil
	}

	b, err := openBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	if err := b.postgresAccounts.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate postgres: %w", err)
	}
	logger.Info("Postgres schema ready")
	if err := b.mongoJournals.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensure mongo indexes: %w", err)
	}
	logger.Info("MongoDB indexes ensured")
	return nil
}
