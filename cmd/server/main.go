// The server command runs the PIN authentication gateway.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	authservice "pinauth/internal/auth/service"
	userStore "pinauth/internal/auth/store/user"
	"pinauth/internal/credential"
	"pinauth/internal/platform/config"
	"pinauth/internal/platform/database"
	"pinauth/internal/platform/health"
	"pinauth/internal/platform/logger"
	"pinauth/internal/platform/metrics"
	"pinauth/internal/provision"
	provmodels "pinauth/internal/provision/models"
	provstore "pinauth/internal/provision/store"
	"pinauth/internal/token"
	httptransport "pinauth/internal/transport/http"
	"pinauth/migrations"
)

func main() {
	log := logger.New()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	m := metrics.New()
	tokens := token.New(cfg.SigningKey, cfg.Issuer, cfg.TokenTTL)
	pool := credential.NewVerifyPool(credential.NewHasher(cfg.BcryptCost), cfg.HashConcurrency)
	healthHandler := health.New(cfg.Environment)

	var (
		directory   authservice.UserDirectory
		provisioner provstore.Store
	)
	if cfg.DatabaseURL != "" {
		dbCfg := database.DefaultConfig()
		dbCfg.URL = cfg.DatabaseURL
		db, err := database.New(dbCfg)
		if err != nil {
			log.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := db.Ping(context.Background()); err != nil {
			log.Error("database unreachable", "error", err)
			os.Exit(1)
		}
		if cfg.Migrate {
			if err := db.Migrate(context.Background(), migrations.FS); err != nil {
				log.Error("migrations failed", "error", err)
				os.Exit(1)
			}
			log.Info("migrations applied")
		}
		healthHandler.RegisterCheck("database", func() error {
			return db.Ping(context.Background())
		})

		directory = userStore.NewPostgres(db.DB())
		provisioner = provstore.NewPostgres(db.DB())
		log.Info("using postgres stores")
	} else {
		// Memory mode serves both ports from one store so provisioned users are
		// immediately visible to login.
		mem := provstore.NewInMemory()
		directory = mem
		provisioner = mem
		log.Info("using in-memory stores")
	}

	authSvc := authservice.New(directory, pool, tokens,
		authservice.WithLogger(log),
		authservice.WithMetrics(m),
	)
	provSvc := provision.New(provisioner, pool,
		provision.WithLogger(log),
		provision.WithMetrics(m),
	)

	if cfg.DatabaseURL == "" && cfg.Environment == "dev" {
		if mem, ok := provisioner.(*provstore.InMemoryStore); ok {
			seedDemoData(mem, provSvc, log)
		}
	}

	handler := httptransport.NewHandler(authSvc, provSvc, tokens, log)
	router := httptransport.NewRouter(handler, healthHandler, m, log)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("server starting", "addr", cfg.Addr, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// seedDemoData loads the reference tenants and two demo credentials so a fresh
// dev process accepts logins out of the box.
func seedDemoData(mem *provstore.InMemoryStore, provSvc *provision.Service, log *slog.Logger) {
	mem.AddOrganization(provmodels.Organization{Slug: "knn", Name: "KNN Idiomas"}, "adm", "pedagogico")
	mem.AddOrganization(provmodels.Organization{Slug: "phenom", Name: "Phenom"}, "adm")
	for _, role := range []string{"diretor", "lider", "sr", "jr"} {
		mem.AddRole(role)
	}

	ctx := context.Background()
	for _, seed := range []provmodels.CreateUserRequest{
		{Name: "Dana Diretora", Pin: "4321", SchoolSlug: "knn", SectorKey: "adm", RoleKey: "diretor"},
		{Name: "Sofia Silva", Pin: "1234", SchoolSlug: "knn", SectorKey: "pedagogico", RoleKey: "sr"},
		{Name: "Leo Lima", Pin: "5678", SchoolSlug: "phenom", SectorKey: "adm", RoleKey: "lider"},
	} {
		if _, err := provSvc.Provision(ctx, &seed); err != nil {
			log.Warn("failed to seed demo user", "name", seed.Name, "error", err)
		}
	}
	log.Info("seeded demo tenants and users")
}
