package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"alumnihub/access"
	"alumnihub/api"
	"alumnihub/config"
	"alumnihub/database"
	"alumnihub/handlers"
	"alumnihub/middleware"
	"alumnihub/migrations"
	"alumnihub/query"
	"alumnihub/remote"
	"alumnihub/security"
	"alumnihub/services"
	"alumnihub/session"
)

const sweepInterval = 10 * time.Minute

func main() {
	// Parse command line flags
	configPath := pflag.String("config", "", "Path to a YAML settings file")
	resetDB := pflag.Bool("reset-db", false, "Delete the database and recreate it")
	noExit := pflag.Bool("no-exit", false, "Don't exit after database reset")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if cfg.IsDevelopment() {
		log.Println("Running in development environment")
	}

	// Use an encryption key from the environment or a default one
	encryptionKey := cfg.EncryptionKey
	if encryptionKey == "" {
		log.Println("Warning: ENCRYPTION_KEY not set, using a default key. This is NOT secure for production!")
		encryptionKey = "default-key-for-development-only"
	}
	cipher, err := security.NewCipher(encryptionKey)
	if err != nil {
		log.Fatal(err)
	}

	sessionSecret := cfg.SessionSecret
	if sessionSecret == "" {
		log.Println("Warning: SESSION_SECRET not set, using a default secret. This is NOT secure for production!")
		sessionSecret = "default-session-secret-for-development-only"
	}

	if *resetDB {
		log.Println("Running in database reset mode")
		if err := removeDatabase(cfg.DatabasePath); err != nil {
			log.Fatal(err)
		}
	}

	// Initialize database, seeding sample data in development
	err = database.InitDB(cfg.DatabasePath, migrations.Options{SeedTestData: cfg.IsDevelopment()})
	if err != nil {
		log.Fatal(err)
	}
	defer database.DB.Close()

	// If running in reset mode, exit after database setup is complete
	// unless --no-exit flag is provided
	if *resetDB && !*noExit {
		log.Println("Database reset completed successfully. Exiting.")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Firebase Admin SDK
	verifier, err := middleware.InitializeFirebase(ctx, cfg)
	if err != nil {
		log.Printf("Warning: Failed to initialize Firebase: %v", err)
		log.Println("ID token login will be disabled!")
	}

	store := database.NewStore(database.DB, cipher, cfg.SuperAdminPrincipals)
	cache := query.NewClient(query.Options{
		StaleTime:    cfg.QueryStaleTime,
		FetchTimeout: cfg.QueryFetchTimeout,
	})
	queries := services.NewQueries(cache)

	sessions, err := session.NewManager(session.Options{
		Dialer:         store.Dial,
		Cache:          cache,
		Allowlist:      access.NewAllowlist(cfg.SuperAdminPrincipals),
		Secret:         []byte(sessionSecret),
		TTL:            cfg.SessionTTL,
		ConnectTimeout: cfg.BackendConnectTimeout,
	})
	if err != nil {
		log.Fatal(err)
	}
	go sweepSessions(ctx, sessions)

	snapshotBinding := remote.NewBinding(store.Dial, cfg.SnapshotPrincipal, cfg.BackendConnectTimeout)
	defer snapshotBinding.Close()
	services.NewScheduler(queries, snapshotBinding, cfg.SnapshotInterval).StartScheduler(ctx)

	identity := &middleware.Identity{
		Sessions:     sessions,
		Verifier:     verifier,
		DevPrincipal: cfg.DevPrincipal,
	}
	if cfg.DevPrincipal != "" {
		log.Printf("Development principal %s signs in every anonymous request", remote.ShortPrincipal(cfg.DevPrincipal))
	}

	server := &api.Server{
		Handlers: &handlers.Handler{
			Queries:      queries,
			Sessions:     sessions,
			Identity:     identity,
			Version:      cfg.Version,
			DevLogin:     cfg.IsDevelopment() && verifier == nil,
			SecureCookie: !cfg.IsDevelopment(),
			SessionTTL:   cfg.SessionTTL,
			AccessWait:   cfg.GateWait,
		},
		Identity:  identity,
		Gates:     middleware.Gates{Wait: cfg.GateWait},
		CORS:      middleware.CORS{AllowedOrigins: cfg.CORSAllowedOrigins, Development: cfg.IsDevelopment()},
		StaticDir: cfg.StaticDir,
	}

	srv := &http.Server{
		Handler:      server.Handler(),
		Addr:         ":" + cfg.Port,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down server: %v", err)
		}
	}()

	// Start the server
	log.Printf("Starting server on port %s (version %s)...", cfg.Port, cfg.Version)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

// sweepSessions drops expired sessions until ctx is done
func sweepSessions(ctx context.Context, sessions *session.Manager) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Sweep(); n > 0 {
				log.Printf("Expired %d sessions", n)
			}
		}
	}
}

// removeDatabase deletes the sqlite file and its WAL side files
func removeDatabase(path string) error {
	if path == "" {
		path = "./alumnihub.db"
	}
	if path == database.MemoryPath {
		return nil
	}
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	log.Printf("Removed database %s", path)
	return nil
}
