package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/ibanking/backend/internal/config"
	"github.com/ibanking/backend/internal/database"
	"github.com/ibanking/backend/internal/handlers"
	"github.com/ibanking/backend/internal/identity"
	"github.com/ibanking/backend/internal/logger"
	"github.com/ibanking/backend/internal/repository"
	"github.com/ibanking/backend/internal/services"
	"go.uber.org/zap"
)

// stores groups the persistence backends selected by storage.driver.
type stores struct {
	users    repository.UserSource
	registry services.UserRegistry
	accounts services.AccountStore
	ledger   services.LedgerStore
}

func main() {
	cfg := config.Load()

	log := logger.New(cfg.Log.Level, cfg.Log.Development)
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, db := openStores(ctx, cfg, log)
	if db != nil {
		defer db.Close()
	}

	var users services.UserDirectory = st.users
	if redisClient := database.InitRedis(ctx, cfg.Redis, log); redisClient != nil {
		defer redisClient.Close()
		users = cachedUsers(st.users, redisClient, cfg.Redis.UserTTL, log)
	}

	ids := services.RandomIDs{}
	identityClient := identity.NewClient(nil, cfg.Identity.BaseAddress, cfg.Identity.APIKey)
	sessions, err := services.NewSessionIssuer(cfg.JWT.SecretKey, cfg.JWT.Issuer, cfg.JWT.Expiry)
	if err != nil {
		log.Fatal("Failed to create session issuer", zap.Error(err))
	}

	accountService := services.NewAccountService(users, st.accounts, st.ledger, ids, log)
	transactionService := services.NewTransactionService(users, st.accounts, st.ledger, ids, log)
	authService := services.NewAuthService(identityClient, sessions, users, st.registry, ids, log)

	router := handlers.NewRouter(handlers.RouterConfig{
		Accounts:       handlers.NewAccountHandler(accountService, log),
		Transactions:   handlers.NewTransactionHandler(transactionService, log),
		Auth:           handlers.NewAuthHandler(authService, log),
		JWTSecret:      cfg.JWT.SecretKey,
		JWTIssuer:      cfg.JWT.Issuer,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RequestTimeout: 60 * time.Second,
		Log:            log,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		log.Info("Server starting", zap.String("addr", server.Addr), zap.String("storage", cfg.Storage))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()

	log.Info("Server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		os.Exit(1)
	}

	log.Info("Server stopped")
}

func openStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (stores, *sql.DB) {
	if cfg.Storage == config.StorageMemory {
		log.Warn("Using in-memory storage, data is lost on restart")
		mem := repository.NewMemoryStore()
		return stores{users: mem, registry: mem, accounts: mem, ledger: mem}, nil
	}

	db, err := database.InitDB(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	userRepo := repository.NewUserRepository(db)
	return stores{
		users:    userRepo,
		registry: userRepo,
		accounts: repository.NewAccountRepository(db),
		ledger:   repository.NewLedgerRepository(db),
	}, db
}

func cachedUsers(source repository.UserSource, client *redis.Client, ttl time.Duration, log *zap.Logger) services.UserDirectory {
	log.Info("User directory cached in Redis", zap.Duration("ttl", ttl))
	return repository.NewCachedUserDirectory(source, client, ttl, log)
}
