package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"voteauth/internal/aca"
	"voteauth/internal/audit"
	"voteauth/internal/platform/config"
	"voteauth/internal/platform/httpserver"
	"voteauth/internal/platform/logger"
	"voteauth/internal/platform/metrics"
	"voteauth/internal/station"
	httptransport "voteauth/internal/transport/http"
	"voteauth/internal/vote/classify"
	"voteauth/internal/vote/seed"
	"voteauth/internal/vote/service"
	"voteauth/internal/vote/store"
	"voteauth/internal/vote/store/entry"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	log := logger.New()
	slog.SetDefault(log)

	if err := run(log); err != nil {
		log.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	if cfg.APIKey == "" {
		return errors.New("VOTEAUTH_API_KEY is required")
	}
	if cfg.ACABaseURL == "" {
		return errors.New("VOTEAUTH_ACA_URL is required")
	}

	m := metrics.New()
	catalog := classify.DefaultCatalog()

	var seedData seed.Data
	if cfg.SeedFile != "" {
		seedData, err = seed.Load(cfg.SeedFile, catalog)
		if err != nil {
			return err
		}
		log.Info("seed file loaded",
			slog.Int("departments", len(seedData.Departments)),
			slog.Int("overrides", len(seedData.Overrides)),
			slog.Int("codes", len(seedData.Codes)),
		)
	}

	var (
		records      store.RecordStore
		issuer       store.Issuer
		overrides    classify.OverrideTable
		departments  classify.DepartmentTable
		auditStore   audit.Store
		stationStore station.Store
	)
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := store.CreateSchema(context.Background(), db); err != nil {
			return err
		}
		if cfg.SeedFile != "" {
			if err := seed.Apply(context.Background(), db, seedData); err != nil {
				return err
			}
		}
		records = store.NewPostgresRecordStore(db)
		issuer = store.NewPostgresIssuer(db)
		entries := entry.NewPostgres(db)
		overrides = entries
		departments = entries
		auditStore = audit.NewPostgresStore(db)
		stationStore = station.NewPostgresStore(db)
		log.Info("using postgres stores")
	} else {
		memRecords := store.NewInMemoryRecordStore()
		memCodes := store.NewInMemoryCodeStore()
		if err := memCodes.Add(context.Background(), seedData.Codes); err != nil {
			return err
		}
		entries := entry.NewInMemory(seedData.Departments, seedData.Overrides)
		records = memRecords
		issuer = store.NewMemoryIssuer(memRecords, memCodes)
		overrides = entries
		departments = entries
		auditStore = audit.NewInMemoryStore()
		stationStore = station.NewInMemoryStore()
		log.Warn("no database configured, state is in memory only")
	}

	classifier, err := classify.New(
		overrides,
		departments,
		catalog,
		classify.DefaultCategories(),
		classify.DefaultCategoryDefaults(),
		classify.WithRules(classify.DefaultRules()),
		classify.WithLogger(log),
	)
	if err != nil {
		return err
	}

	resolver, err := aca.NewClient(cfg.ACABaseURL, cfg.ACAUsername, cfg.ACAPassword,
		aca.WithTimeout(cfg.ACATimeout),
		aca.WithLogger(log),
	)
	if err != nil {
		return err
	}

	publisher, inbox := audit.NewPublisher(cfg.AuditBuffer, log,
		audit.WithDropCounter(m.AuditDropped))
	worker := audit.NewWorker(auditStore, inbox, log)

	voteSvc, err := service.New(
		cfg.APIKey,
		service.NewWindow(cfg.EventOpensAt, cfg.EventClosesAt),
		resolver,
		records,
		issuer,
		classifier,
		catalog,
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithAuditPublisher(publisher),
	)
	if err != nil {
		return err
	}

	stationSvc, err := station.NewService(stationStore, []byte(cfg.JWTSigningKey),
		station.WithLogger(log),
	)
	if err != nil {
		return err
	}

	router := httptransport.NewRouter(
		httptransport.NewVoteHandler(voteSvc),
		httptransport.NewStationHandler(stationSvc),
	)
	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting voteauth", slog.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		return httpserver.Shutdown(srv, 10*time.Second)
	})

	return g.Wait()
}
