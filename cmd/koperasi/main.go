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

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/koperasi-digital/koperasi-core/internal/accounting"
	"github.com/koperasi-digital/koperasi-core/internal/app"
	"github.com/koperasi-digital/koperasi-core/internal/audit"
	"github.com/koperasi-digital/koperasi-core/internal/cache"
	"github.com/koperasi-digital/koperasi-core/internal/ledger"
	"github.com/koperasi-digital/koperasi-core/internal/platform/store"
	"github.com/koperasi-digital/koperasi-core/internal/refund"
	"github.com/koperasi-digital/koperasi-core/internal/repo"
	"github.com/koperasi-digital/koperasi-core/internal/rollback"
	"github.com/koperasi-digital/koperasi-core/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	kv, cleanup, err := buildStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("init store", slog.Any("error", err))
		os.Exit(1)
	}
	defer cleanup()

	var ledgerCache *cache.Cache
	var reaper refund.ReapEnqueuer
	if cfg.CacheEnabled || cfg.StoreBackend == "redis" {
		client, err := store.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Warn("redis unavailable, cache and worker queue disabled", slog.Any("error", err))
		} else {
			if cfg.CacheEnabled {
				ledgerCache = cache.New(client, cfg.CacheTTL)
			}
			jobClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
			defer func() { _ = jobClient.Close() }()
			reaper = jobClient
		}
	}

	members := repo.NewMembers(kv)
	pokok := repo.NewSavings(kv, repo.SimpananPokok)
	wajib := repo.NewSavings(kv, repo.SimpananWajib)
	sukarela := repo.NewSavings(kv, repo.SimpananSukarela)
	loans := repo.NewLoans(kv)
	sales := repo.NewSales(kv)
	payments := repo.NewPayments(kv)
	refunds := repo.NewRefunds(kv)
	journal := accounting.NewJournal(kv)
	accounts := accounting.NewAccounts(kv)
	poster := accounting.NewPoster(journal, accounts)
	auditRec := audit.NewRecorder(kv, logger)
	queries := ledger.NewQueries(loans, sales, pokok, wajib, sukarela, ledgerCache)

	refundSvc := refund.NewService(refund.Deps{
		Store:    kv,
		Members:  members,
		Pokok:    pokok,
		Wajib:    wajib,
		Sukarela: sukarela,
		Loans:    loans,
		Sales:    sales,
		Payments: payments,
		Refunds:  refunds,
		Queries:  queries,
		Poster:   poster,
		Accounts: accounts,
		Audit:    auditRec,
		Cache:    ledgerCache,
		Reaper:   reaper,
		Logger:   logger,
	})
	rollbackEngine := rollback.NewEngine(payments, journal, members, poster, auditRec, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		RefundHandler:   refund.NewHandler(logger, refundSvc),
		RollbackHandler: rollback.NewHandler(logger, rollbackEngine),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func buildStore(ctx context.Context, cfg *app.Config, logger *slog.Logger) (store.Store, func(), error) {
	switch cfg.StoreBackend {
	case "redis":
		client, err := store.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		return store.NewRedis(client), func() { _ = client.Close() }, nil
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.PGDSN)
		if err != nil {
			return nil, nil, err
		}
		pg := store.NewPostgres(pool)
		if err := pg.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return pg, pool.Close, nil
	default:
		logger.Warn("using in-memory store; data will not survive restarts")
		return store.NewMemory(), func() {}, nil
	}
}
