package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/koperasi-digital/koperasi-core/internal/accounting"
	"github.com/koperasi-digital/koperasi-core/internal/app"
	"github.com/koperasi-digital/koperasi-core/internal/audit"
	"github.com/koperasi-digital/koperasi-core/internal/ledger"
	"github.com/koperasi-digital/koperasi-core/internal/platform/store"
	"github.com/koperasi-digital/koperasi-core/internal/refund"
	"github.com/koperasi-digital/koperasi-core/internal/repo"
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

	kv, cleanup, err := buildStore(ctx, cfg)
	if err != nil {
		logger.Error("init store", slog.Any("error", err))
		os.Exit(1)
	}
	defer cleanup()

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
	queries := ledger.NewQueries(loans, sales, pokok, wajib, sukarela, nil)

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
		Logger:   logger,
	})

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Refund:    refundSvc,
		Journal:   journal,
		Audit:     auditRec,
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func buildStore(ctx context.Context, cfg *app.Config) (store.Store, func(), error) {
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
		return store.NewMemory(), func() {}, nil
	}
}
