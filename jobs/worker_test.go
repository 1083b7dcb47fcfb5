package jobs

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koperasi-digital/koperasi-core/internal/accounting"
	"github.com/koperasi-digital/koperasi-core/internal/audit"
	"github.com/koperasi-digital/koperasi-core/internal/domain"
	"github.com/koperasi-digital/koperasi-core/internal/ledger"
	"github.com/koperasi-digital/koperasi-core/internal/platform/store"
	"github.com/koperasi-digital/koperasi-core/internal/refund"
	"github.com/koperasi-digital/koperasi-core/internal/repo"
)

type jobFixture struct {
	kv      store.Store
	members *repo.Members
	journal *accounting.Journal
	audit   *audit.Recorder
	refund  *refund.Service
	logger  *slog.Logger
}

func newJobFixture(t *testing.T) *jobFixture {
	t.Helper()
	kv := store.NewMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	members := repo.NewMembers(kv)
	pokok := repo.NewSavings(kv, repo.SimpananPokok)
	wajib := repo.NewSavings(kv, repo.SimpananWajib)
	sukarela := repo.NewSavings(kv, repo.SimpananSukarela)
	loans := repo.NewLoans(kv)
	sales := repo.NewSales(kv)
	journal := accounting.NewJournal(kv)
	accounts := accounting.NewAccounts(kv)
	auditRec := audit.NewRecorder(kv, logger)

	svc := refund.NewService(refund.Deps{
		Store:    kv,
		Members:  members,
		Pokok:    pokok,
		Wajib:    wajib,
		Sukarela: sukarela,
		Loans:    loans,
		Sales:    sales,
		Payments: repo.NewPayments(kv),
		Refunds:  repo.NewRefunds(kv),
		Queries:  ledger.NewQueries(loans, sales, pokok, wajib, sukarela, nil),
		Poster:   accounting.NewPoster(journal, accounts),
		Accounts: accounts,
		Audit:    auditRec,
		Logger:   logger,
	})

	return &jobFixture{kv: kv, members: members, journal: journal, audit: auditRec, refund: svc, logger: logger}
}

func reapTask(t *testing.T, anggotaID string) *asynq.Task {
	t.Helper()
	task, err := NewReapTask(ReapPayload{AnggotaID: anggotaID})
	require.NoError(t, err)
	return task
}

func TestHandleReap(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes an eligible member", func(t *testing.T) {
		f := newJobFixture(t)
		require.NoError(t, store.SaveCollection(ctx, f.kv, domain.KeyAnggota, []domain.Anggota{{
			ID: "A001", Nama: "Budi", Status: domain.MemberStatusInactive,
			RefundStatus: domain.RefundStatusCompleted,
		}}))

		handler := handleReap(f.refund, f.logger)
		require.NoError(t, handler(ctx, reapTask(t, "A001")))

		_, ok, err := f.members.GetByID(ctx, "A001")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("missing member is terminal, not retried", func(t *testing.T) {
		f := newJobFixture(t)
		handler := handleReap(f.refund, f.logger)
		assert.NoError(t, handler(ctx, reapTask(t, "GHOST")))
	})

	t.Run("blocked deletion is terminal, not retried", func(t *testing.T) {
		f := newJobFixture(t)
		require.NoError(t, store.SaveCollection(ctx, f.kv, domain.KeyAnggota, []domain.Anggota{{
			ID: "A001", Nama: "Budi", Status: domain.MemberStatusInactive,
			RefundStatus: domain.RefundStatusPending,
		}}))

		handler := handleReap(f.refund, f.logger)
		assert.NoError(t, handler(ctx, reapTask(t, "A001")))

		_, ok, err := f.members.GetByID(ctx, "A001")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("malformed payload errors for requeue", func(t *testing.T) {
		f := newJobFixture(t)
		handler := handleReap(f.refund, f.logger)
		task := asynq.NewTask(TaskReapAnggota, []byte("{not json"))
		assert.Error(t, handler(ctx, task))
	})
}

func TestHandleJurnalIntegrity(t *testing.T) {
	ctx := context.Background()

	t.Run("flags unbalanced entries", func(t *testing.T) {
		f := newJobFixture(t)
		require.NoError(t, f.journal.ReplaceAll(ctx, []accounting.JournalEntry{
			{ID: "J1", Tanggal: "2025-03-01", Lines: []accounting.JournalLine{
				{Akun: "1001", Debit: 100}, {Akun: "3001", Kredit: 100},
			}},
			{ID: "J2", Tanggal: "2025-03-01", Lines: []accounting.JournalLine{
				{Akun: "1001", Debit: 100}, {Akun: "3001", Kredit: 60},
			}},
		}))

		handler := handleJurnalIntegrity(f.journal, f.audit, f.logger)
		require.NoError(t, handler(ctx, NewJurnalIntegrityTask()))

		entries, err := f.audit.List(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "jurnal.tidak-seimbang", entries[0].Action)
		assert.Equal(t, audit.SeverityWarning, entries[0].Severity)
		assert.Equal(t, "J2", entries[0].Details["journalId"])
	})

	t.Run("clean journal records nothing", func(t *testing.T) {
		f := newJobFixture(t)
		handler := handleJurnalIntegrity(f.journal, f.audit, f.logger)
		require.NoError(t, handler(ctx, NewJurnalIntegrityTask()))

		entries, err := f.audit.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}
