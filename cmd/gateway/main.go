package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sau-portal/auth-gateway/internal/config"
	"github.com/sau-portal/auth-gateway/internal/repository/memory"
	"github.com/sau-portal/auth-gateway/internal/repository/postgres"
	"github.com/sau-portal/auth-gateway/internal/repository/redis"
	"github.com/sau-portal/auth-gateway/internal/service/cleanup"
	"github.com/sau-portal/auth-gateway/internal/service/gateway"
	"github.com/sau-portal/auth-gateway/internal/service/session"
	"github.com/sau-portal/auth-gateway/internal/service/verifier"
	transportHttp "github.com/sau-portal/auth-gateway/internal/transport/http"
	"github.com/sau-portal/auth-gateway/internal/transport/http/middleware"
	"github.com/sau-portal/auth-gateway/pkg/auth"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.LoadConfig()

	// 1. Session backend and credential verifier. Postgres is optional: with
	// no DATABASE_URL the gateway runs on the in-memory store and the seeded
	// static verifier.
	var sessionRepo session.SessionRepository
	var idleStore cleanup.IdleRevoker
	var credVerifier verifier.Verifier

	if cfg.DatabaseURL != "" {
		db, err := postgres.Connect(cfg.DatabaseURL, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetimeMin)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		userRepo := postgres.NewUserRepo(db)
		seedUsers(userRepo, cfg.SeedUsers)

		repo := postgres.NewSessionRepo(db)
		sessionRepo = repo
		idleStore = repo
		credVerifier = verifier.NewDatabase(userRepo)
	} else {
		log.Println("No DATABASE_URL set, using in-memory session store and seeded users")
		store := memory.NewSessionStore()
		sessionRepo = store
		idleStore = store
		credVerifier = verifier.NewStatic(cfg.SeedUsers)
	}

	// 2. Optional Redis cache/blocklist layer.
	var cache session.CacheRepository
	if redisCache := redis.Connect(); redisCache != nil {
		cache = redisCache
		defer redisCache.Close()
	}

	// 3. Services
	sessionService := session.NewService(sessionRepo, cache)
	accessFilter := gateway.NewFilter(sessionService)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	if cfg.SessionIdleTimeoutMin > 0 {
		worker := cleanup.NewWorker(idleStore, time.Duration(cfg.SessionIdleTimeoutMin)*time.Minute)
		worker.Start(workerCtx)
	}

	// 4. HTTP Handlers
	loginHandler := transportHttp.NewLoginHandler(credVerifier, sessionService, &cfg.Upstream)
	logoutHandler := transportHttp.NewLogoutHandler(sessionService)
	portalHandler := transportHttp.NewPortalHandler()

	var upstreamHandler *transportHttp.UpstreamHandler
	if cfg.Upstream.Enabled {
		upstreamHandler = transportHttp.NewUpstreamHandler(&cfg.Upstream, sessionService)
	}

	mux := transportHttp.NewMux(loginHandler, logoutHandler, portalHandler, upstreamHandler, accessFilter, sessionService)

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: middleware.SecurityHeaders(mux),
	}

	go func() {
		log.Printf("Gateway listening on :%s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited gracefully")
}

// seedUsers ensures configured demo accounts exist; existing rows keep their
// password hash.
func seedUsers(repo *postgres.UserRepo, seeds []config.SeedUser) {
	ctx := context.Background()
	for _, seed := range seeds {
		hash, err := auth.HashPassword(seed.Password)
		if err != nil {
			log.Printf("Failed to hash seed password for %q: %v", seed.Username, err)
			continue
		}
		if err := repo.EnsureUser(ctx, seed.Username, seed.Username, hash); err != nil {
			log.Printf("Failed to seed user %q: %v", seed.Username, err)
		}
	}
}
