package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/hibiken/asynq"

	"github.com/koperasi-digital/koperasi-core/internal/accounting"
	"github.com/koperasi-digital/koperasi-core/internal/audit"
	"github.com/koperasi-digital/koperasi-core/internal/refund"
	"github.com/koperasi-digital/koperasi-core/internal/shared"
)

// Worker wraps the asynq server and optional scheduler.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *asynq.Scheduler
	logger    *slog.Logger
}

// WorkerConfig collects dependencies required to bootstrap the worker.
type WorkerConfig struct {
	RedisOpts asynq.RedisClientOpt
	Logger    *slog.Logger
	Refund    *refund.Service
	Journal   *accounting.Journal
	Audit     *audit.Recorder
}

// NewWorker constructs a Worker instance with the reap and integrity
// handlers registered, plus a nightly cron for the integrity scan.
func NewWorker(cfg WorkerConfig) (*Worker, error) {
	srv := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			QueueDefault: 1,
		},
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskReapAnggota, handleReap(cfg.Refund, cfg.Logger))
	mux.HandleFunc(TaskJurnalIntegrity, handleJurnalIntegrity(cfg.Journal, cfg.Audit, cfg.Logger))

	scheduler := asynq.NewScheduler(cfg.RedisOpts, &asynq.SchedulerOpts{Location: time.UTC})
	if _, err := scheduler.Register("0 2 * * *", NewJurnalIntegrityTask()); err != nil {
		return nil, err
	}

	return &Worker{server: srv, mux: mux, scheduler: scheduler, logger: cfg.Logger}, nil
}

// Run starts processing jobs until context cancellation.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil {
		return errors.New("worker: not configured")
	}
	if err := w.scheduler.Start(); err != nil {
		return err
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Run(w.mux)
	}()
	select {
	case <-ctx.Done():
		w.scheduler.Shutdown()
		w.server.Shutdown()
		return ctx.Err()
	case err := <-errCh:
		w.scheduler.Shutdown()
		return err
	}
}

// handleReap retries a cascading delete that failed inline after a
// completed refund. Deletion-blocked is terminal: retrying cannot clear an
// open loan, so the task is dropped rather than requeued.
func handleReap(svc *refund.Service, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var payload ReapPayload
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return err
		}
		summary, err := svc.Reap(ctx, payload.AnggotaID, refund.Actor{UserName: "worker"})
		if err != nil {
			if shared.IsCode(err, shared.CodeDeletionBlocked) || shared.IsCode(err, shared.CodeMemberNotFound) {
				logger.Warn("reap dilewati", slog.String("anggota_id", payload.AnggotaID), slog.Any("error", err))
				return nil
			}
			return err
		}
		logger.Info("reap selesai",
			slog.String("anggota_id", payload.AnggotaID),
			slog.Int("simpanan_pokok", summary.SimpananPokok),
			slog.Int("simpanan_wajib", summary.SimpananWajib),
		)
		return nil
	}
}

// handleJurnalIntegrity recomputes debit/credit balance per journal entry
// and records WARNING audit entries for any drift.
func handleJurnalIntegrity(journal *accounting.Journal, auditRec *audit.Recorder, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		entries, err := journal.List(ctx)
		if err != nil {
			return err
		}
		drift := 0
		for _, entry := range entries {
			if math.Abs(entry.TotalDebit()-entry.TotalKredit()) <= accounting.BalanceTolerance {
				continue
			}
			drift++
			_ = auditRec.Record(ctx, audit.Entry{
				Action:   "jurnal.tidak-seimbang",
				Severity: audit.SeverityWarning,
				Details: map[string]any{
					"journalId": entry.ID,
					"debit":     entry.TotalDebit(),
					"kredit":    entry.TotalKredit(),
				},
			})
		}
		logger.Info("pemeriksaan jurnal selesai",
			slog.Int("entries", len(entries)), slog.Int("drift", drift))
		return nil
	}
}
