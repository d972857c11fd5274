// @title           CRM API
// @version         1.0
// @description     JSON API of the CRM: customers, leads and API tokens.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/crmdesk/crm-system/internal/api"
	"github.com/crmdesk/crm-system/internal/api/handler"
	"github.com/crmdesk/crm-system/internal/api/middleware"
	"github.com/crmdesk/crm-system/internal/core/ports"
	"github.com/crmdesk/crm-system/internal/core/service"
	mongostore "github.com/crmdesk/crm-system/internal/infrastructure/db/mongo"
	pgstore "github.com/crmdesk/crm-system/internal/infrastructure/db/postgres"
	redisstore "github.com/crmdesk/crm-system/internal/infrastructure/db/redis"
	"github.com/crmdesk/crm-system/internal/pkg/config"
	"github.com/crmdesk/crm-system/pkg/logger"
)

// stores groups the repositories of the selected backend.
type stores struct {
	users     ports.UserRepository
	customers ports.CustomerRepository
	leads     ports.LeadRepository
	pinger    handler.Pinger
	close     func(context.Context) error
}

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "crm",
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.close(closeCtx); err != nil {
			log.Error().Err(err).Msg("close store")
		}
	}()
	log.Info().Str("driver", cfg.Store.Driver).Msg("store connected")

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	hasher := service.NewBcryptHasher(cfg.Auth.BcryptCost)

	if cfg.Store.SeedDemo {
		seeder := service.NewSeeder(st.users, st.customers, st.leads, hasher, logger.Component("seeder"))
		if err := seeder.Seed(ctx); err != nil {
			return err
		}
	}

	secret := cfg.JWTSecret
	if secret == "" {
		secret = uuid.NewString()
		log.Warn().Msg("JWT_SECRET not set; using a random secret, tokens will not survive a restart")
	}

	sessions := redisstore.NewSessionStore(rdb, cfg.Auth.SessionTTL)
	authService := service.NewAuthService(
		st.users,
		sessions,
		hasher,
		service.NewTokenIssuer(secret, cfg.Auth.TokenTTL),
		service.AuthOptions{AllowAdminSelfRegistration: cfg.Auth.AllowAdminSelfRegistration},
		logger.Component("auth"),
	)

	e, err := api.NewRouter(api.Deps{
		Auth:      authService,
		Flashes:   service.NewFlashService(sessions),
		Customers: service.NewCustomerService(st.customers, logger.Component("customers")),
		Leads:     service.NewLeadService(st.leads, logger.Component("leads")),
		Health:    []handler.Pinger{st.pinger, redisstore.NewPinger(rdb)},
		Cookie: middleware.SessionCookie{
			Name:   middleware.DefaultCookieName,
			Secure: cfg.Auth.CookieSecure,
			MaxAge: cfg.Auth.SessionTTL,
		},
		AllowAdminSelfRegistration: cfg.Auth.AllowAdminSelfRegistration,
		Logger:                     logger.Component("http"),
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.Store.Driver {
	case config.StorePostgres:
		db, err := pgstore.Connect(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		if err := pgstore.Migrate(db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &stores{
			users:     pgstore.NewUserRepository(db),
			customers: pgstore.NewCustomerRepository(db),
			leads:     pgstore.NewLeadRepository(db),
			pinger:    pgstore.NewPinger(db),
			close:     func(context.Context) error { return db.Close() },
		}, nil

	default:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return &stores{
			users:     mongostore.NewUserRepository(db),
			customers: mongostore.NewCustomerRepository(db),
			leads:     mongostore.NewLeadRepository(db),
			pinger:    mongostore.NewPinger(db),
			close:     client.Disconnect,
		}, nil
	}
}
