package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"finbase/internal/account"
	"finbase/internal/api"
	"finbase/internal/card"
	"finbase/internal/consent"
	"finbase/internal/credit"
	"finbase/internal/customer"
	"finbase/internal/fx"
	"finbase/internal/investment"
	"finbase/internal/payment"
	"finbase/internal/platform/config"
	"finbase/internal/platform/events"
	"finbase/internal/platform/httpserver"
	"finbase/internal/platform/logger"
	"finbase/internal/platform/metrics"
	"finbase/internal/platform/redis"
	"finbase/internal/storage"
	"finbase/pkg/platform/tx"
)

// stores groups one implementation per cluster so the Postgres and
// in-memory wirings stay symmetric.
type stores struct {
	customers   customer.Store
	accounts    account.Store
	cards       card.Store
	credits     credit.Store
	investments investment.Store
	fxOps       fx.Store
	consents    consent.Store
	payments    payment.Store
}

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	m := metrics.New()

	publisher, closePublisher, err := buildPublisher(cfg)
	if err != nil {
		log.Error("event publisher setup failed", "error", err)
		os.Exit(1)
	}
	defer closePublisher()

	var (
		db     *sql.DB
		runner tx.Runner
		st     stores
	)
	if cfg.DatabaseURL != "" {
		db, err = storage.Open(cfg.DatabaseURL)
		if err != nil {
			log.Error("open database failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := storage.Migrate(db); err != nil {
			log.Error("migrations failed", "error", err)
			os.Exit(1)
		}
		runner = tx.NewSQLRunner(db)
		st = postgresStores(db)
		log.Info("storage ready", "backend", "postgres")
	} else {
		runner = tx.NopRunner{}
		st = memoryStores()
		log.Info("storage ready", "backend", "in-memory", "reason", "FINBASE_DATABASE_URL not set")
	}

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		st.accounts = account.NewCachedBalances(st.accounts, redisClient, cfg.Redis.SnapshotTTL)
		log.Info("latest-balance cache enabled", "ttl", cfg.Redis.SnapshotTTL)
	}

	handler := api.NewHandler(log, api.Services{
		Customers: customer.NewService(st.customers, runner, publisher, m,
			st.accounts, st.cards, st.credits, st.investments, st.fxOps, st.consents, st.payments),
		Credits:     credit.NewService(st.credits, runner, m),
		Investments: investment.NewService(st.investments, m),
		Consents:    consent.NewService(st.consents, runner, publisher, m),
		Payments:    payment.NewService(st.payments, publisher, m),
	}, api.Stores{
		Customers: st.customers,
		Accounts:  st.accounts,
		Cards:     st.cards,
		FxOps:     st.fxOps,
	})

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Recoverer)
	handler.Register(router)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				http.Error(w, "database unreachable", http.StatusServiceUnavailable)
				return
			}
		}
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				http.Error(w, "redis unreachable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("starting finbase", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("finbase stopped")
}

func buildPublisher(cfg config.Server) (*events.Publisher, func(), error) {
	sink, err := events.NewKafkaSink(cfg.Kafka)
	if err != nil {
		return nil, nil, err
	}
	if sink == nil {
		publisher := events.NopPublisher()
		return publisher, func() {}, nil
	}
	publisher := events.NewPublisher(sink, events.WithAsyncBuffer(256))
	return publisher, func() {
		publisher.Close()
		sink.Close()
	}, nil
}

func postgresStores(db *sql.DB) stores {
	return stores{
		customers:   customer.NewPostgres(db),
		accounts:    account.NewPostgres(db),
		cards:       card.NewPostgres(db),
		credits:     credit.NewPostgres(db),
		investments: investment.NewPostgres(db),
		fxOps:       fx.NewPostgres(db),
		consents:    consent.NewPostgres(db),
		payments:    payment.NewPostgres(db),
	}
}

func memoryStores() stores {
	customers := customer.NewInMemory()
	return stores{
		customers:   customers,
		accounts:    account.NewInMemory(customers),
		cards:       card.NewInMemory(customers),
		credits:     credit.NewInMemory(customers),
		investments: investment.NewInMemory(customers),
		fxOps:       fx.NewInMemory(customers),
		consents:    consent.NewInMemory(customers),
		payments:    payment.NewInMemory(customers),
	}
}
