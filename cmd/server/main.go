package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ignite/supportbot/internal/analytics"
	"github.com/ignite/supportbot/internal/api"
	"github.com/ignite/supportbot/internal/archive"
	"github.com/ignite/supportbot/internal/config"
	"github.com/ignite/supportbot/internal/engine"
	"github.com/ignite/supportbot/internal/repository/postgres"
	"github.com/ignite/supportbot/internal/worker"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"
)

func extractHost(dsn string) string {
	at := strings.Index(dsn, "@")
	if at < 0 {
		return "(unknown)"
	}
	rest := dsn[at+1:]
	if slash := strings.Index(rest, "/"); slash >= 0 {
		rest = rest[:slash]
	}
	return rest
}

func main() {
	log.Println("╔════════════════════════════════════════════════════════════╗")
	log.Println("║  SupportBot Conversation Server                            ║")
	log.Println("║  Rule-based intent, sentiment and response engine          ║")
	log.Println("╚════════════════════════════════════════════════════════════╝")

	// Load configuration
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("DATABASE_URL") != "" {
		log.Println("[config] DATABASE_URL env override active")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis: session store + analytics counters
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		target := cfg.Redis.URL
		if target == "" {
			target = cfg.Redis.Addr
		}
		if opts, err := redis.ParseURL(target); err == nil {
			redisClient = redis.NewClient(opts)
		} else {
			redisClient = redis.NewClient(&redis.Options{Addr: target})
		}
		pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Printf("Warning: Redis connection failed (%s): %v — falling back to in-memory sessions", target, err)
			redisClient.Close()
			redisClient = nil
		} else {
			log.Printf("Redis connected: %s", target)
		}
		pingCancel()
	} else {
		log.Println("Redis not configured — using in-memory sessions")
	}

	// PostgreSQL: message and analytics persistence
	var db *sql.DB
	if cfg.Database.Enabled && cfg.Database.URL != "" {
		log.Printf("DB URL host portion: ...@%s/...", extractHost(cfg.Database.URL))
		db, err = sql.Open("postgres", cfg.Database.URL)
		if err != nil {
			log.Printf("Warning: Failed to open database: %v — running without persistence", err)
			db = nil
		} else {
			db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
			db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
			db.SetConnMaxLifetime(5 * time.Minute)

			pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
			if err := db.PingContext(pingCtx); err != nil {
				log.Printf("Warning: Database unreachable: %v — running without persistence", err)
				db.Close()
				db = nil
			} else {
				log.Println("PostgreSQL connected")
			}
			pingCancel()
		}
	} else {
		log.Println("Database not configured — messages will not be persisted")
	}

	// Session store: Redis when available, in-memory otherwise
	var store engine.SessionStore
	if redisClient != nil {
		store = engine.NewRedisStore(redisClient, cfg.Engine.SessionTTL())
	} else {
		store = engine.NewMemoryStore(cfg.Engine.SessionTTL())
	}

	// Analytics tracker doubles as the flow side-effect sink
	var tracker *analytics.Tracker
	var effects engine.SideEffects
	if cfg.Analytics.Enabled {
		tracker = analytics.New(db, redisClient)
		effects = analytics.NewFlowEffects(tracker)
	}

	eng, err := engine.New(cfg.Engine, store, effects)
	if err != nil {
		log.Fatalf("Failed to initialize engine: %v", err)
	}

	// S3 transcript archiver
	var archiver *archive.Archiver
	if cfg.Archive.Enabled && cfg.Archive.S3Bucket != "" {
		archiver, err = archive.New(ctx, cfg.Archive)
		if err != nil {
			log.Printf("Warning: archive init failed: %v — archival disabled", err)
			archiver = nil
		} else {
			log.Printf("Transcript archival enabled: s3://%s/%s", cfg.Archive.S3Bucket, cfg.Archive.S3Prefix)
		}
	}

	var repo *postgres.MessageRepo
	if db != nil {
		repo = postgres.NewMessageRepo(db)
	}

	// Proactive re-engagement sweeper
	if cfg.Sweeper.Enabled {
		sweeper := worker.NewProactiveSweeper(eng, repo, tracker, cfg.Sweeper.TickInterval())
		go sweeper.Start(ctx)
	} else {
		log.Println("Proactive sweeper disabled — idle nudges fire in-band only")
	}

	handlers := api.NewHandlers(eng, repo, tracker, archiver)
	server := api.NewServer(cfg.Server, cfg.Auth, handlers)

	addr := fmt.Sprintf("%s:%d", cfg.Server.GetHost(), cfg.Server.Port)
	errCh := make(chan error, 1)
	go func() {
		log.Printf("API server listening on %s", addr)
		errCh <- server.ListenAndServe(addr)
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("Received %s, shutting down...", sig)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	if db != nil {
		db.Close()
	}
	if redisClient != nil {
		redisClient.Close()
	}
	log.Println("Server stopped")
}
