// Package rollback undoes previously committed batch-payment imports: it
// removes the batch's payment transactions and their journal entries,
// verifies post-conditions, and keeps an in-memory history for reporting.
//
// The engine is deliberately resilient rather than fail-fast: a batch
// rollback is itself a recovery action, so every transaction is attempted
// independently and failures are aggregated instead of aborting the batch.
package rollback

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/koperasi-digital/koperasi-core/internal/accounting"
	"github.com/koperasi-digital/koperasi-core/internal/audit"
	"github.com/koperasi-digital/koperasi-core/internal/domain"
	"github.com/koperasi-digital/koperasi-core/internal/repo"
	"github.com/koperasi-digital/koperasi-core/internal/shared"
)

// Engine is stateless with respect to domain data; only the rollback
// history lives in memory.
type Engine struct {
	payments *repo.Payments
	journal  *accounting.Journal
	members  *repo.Members
	poster   *accounting.Poster
	audit    *audit.Recorder
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	history []HistoryEntry
}

func NewEngine(payments *repo.Payments, journal *accounting.Journal, members *repo.Members, poster *accounting.Poster, auditRec *audit.Recorder, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		payments: payments,
		journal:  journal,
		members:  members,
		poster:   poster,
		audit:    auditRec,
		logger:   logger,
		now:      time.Now,
	}
}

// WithNow overrides the clock, for tests.
func (e *Engine) WithNow(now func() time.Time) {
	if now != nil {
		e.now = now
	}
}

// CanRollback reports whether any committed transaction carries the batch
// id. Pure read.
func (e *Engine) CanRollback(ctx context.Context, batchID string) (Eligibility, error) {
	if batchID == "" {
		return Eligibility{}, shared.NewError(shared.CodeInvalidParameter, "ID batch wajib diisi")
	}
	txs, err := e.payments.ByBatch(ctx, batchID)
	if err != nil {
		return Eligibility{}, shared.WrapError(err, shared.CodeSystemError, "gagal membaca transaksi")
	}
	if len(txs) == 0 {
		return Eligibility{
			Eligible: false,
			Message:  fmt.Sprintf("tidak ada transaksi dengan batch %s", batchID),
		}, nil
	}
	return Eligibility{Eligible: true, Count: len(txs)}, nil
}

// RollbackByBatchID resolves the batch's transactions and delegates to
// RollbackBatch, short-circuiting when the batch has nothing to undo.
func (e *Engine) RollbackByBatchID(ctx context.Context, batchID string, actor string) (BatchResult, error) {
	eligibility, err := e.CanRollback(ctx, batchID)
	if err != nil {
		return BatchResult{}, err
	}
	if !eligibility.Eligible {
		return BatchResult{
			BatchID: batchID,
			Success: false,
			Errors:  []TxError{},
			Message: eligibility.Message,
		}, nil
	}
	txs, err := e.payments.ByBatch(ctx, batchID)
	if err != nil {
		return BatchResult{}, shared.WrapError(err, shared.CodeSystemError, "gagal membaca transaksi")
	}
	return e.RollbackBatch(ctx, batchID, txs, actor)
}

// RollbackBatch undoes the given transactions. Iteration is last-applied-
// first, since later transactions may have been computed from balances the
// earlier ones produced. Collections are loaded once and persisted once at
// the end: a batched write, not transactional isolation.
func (e *Engine) RollbackBatch(ctx context.Context, batchID string, txs []domain.PaymentTransaction, actor string) (BatchResult, error) {
	result := BatchResult{BatchID: batchID, Errors: []TxError{}}
	if len(txs) == 0 {
		result.Success = true
		result.Message = "tidak ada transaksi untuk dibatalkan"
		return result, nil
	}

	payments, err := e.payments.List(ctx)
	if err != nil {
		return BatchResult{}, shared.WrapError(err, shared.CodeSystemError, "gagal membaca transaksi")
	}
	journal, err := e.journal.List(ctx)
	if err != nil {
		return BatchResult{}, shared.WrapError(err, shared.CodeSystemError, "gagal membaca jurnal")
	}
	members, err := e.members.List(ctx)
	if err != nil {
		return BatchResult{}, shared.WrapError(err, shared.CodeSystemError, "gagal membaca anggota")
	}

	origPayments := len(payments)
	origJournal := len(journal)
	var removedEntries []accounting.JournalEntry

	for i := len(txs) - 1; i >= 0; i-- {
		tx := txs[i]
		single, removed, err := e.rollbackSingle(tx, &payments, &journal, members)
		if err != nil {
			result.Errors = append(result.Errors, TxError{TransactionID: tx.ID, Message: err.Error()})
			if shared.IsCode(err, CodeBalanceUnrecoverable) {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("transaksi %s perlu rekonsiliasi manual: saldo sebelumnya tidak tercatat", tx.ID))
			}
			continue
		}
		result.Results = append(result.Results, single)
		result.RolledBackCount++
		removedEntries = append(removedEntries, removed...)
	}

	if err := e.payments.ReplaceAll(ctx, payments); err != nil {
		return BatchResult{}, shared.WrapError(err, shared.CodeSystemError, "gagal menyimpan transaksi")
	}
	if err := e.journal.ReplaceAll(ctx, journal); err != nil {
		return BatchResult{}, shared.WrapError(err, shared.CodeSystemError, "gagal menyimpan jurnal")
	}
	if len(removedEntries) > 0 {
		if err := e.poster.Unpost(ctx, removedEntries); err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("saldo akun tidak sepenuhnya dipulihkan: %v", err))
		}
	}

	verification := verifyRollback(origPayments, origJournal, len(payments), len(journal), result.RolledBackCount)
	result.Verification = &verification
	result.Warnings = append(result.Warnings, verification.Warnings...)
	result.Success = len(result.Errors) == 0 && verification.Success

	e.appendHistory(HistoryEntry{
		ID:              uuid.NewString(),
		BatchID:         batchID,
		Timestamp:       e.now(),
		RolledBackCount: result.RolledBackCount,
		ErrorCount:      len(result.Errors),
		Success:         result.Success,
	})

	severity := audit.SeverityInfo
	if !result.Success {
		severity = audit.SeverityError
	}
	_ = e.audit.Record(ctx, audit.Entry{
		UserName: actor,
		Action:   "rollback.batch",
		BatchID:  batchID,
		Severity: severity,
		Details: map[string]any{
			"rolledBackCount": result.RolledBackCount,
			"errorCount":      len(result.Errors),
			"verification":    verification.Success,
		},
	})

	return result, nil
}

// CodeBalanceUnrecoverable marks a transaction whose prior balance cannot
// be reconstructed. The legacy data carried an "amount times two" guess
// here; that guess is not replicated — the transaction fails loudly and is
// left for manual reconciliation.
const CodeBalanceUnrecoverable = "BALANCE_UNRECOVERABLE"

// rollbackSingle removes one transaction and its journal entries from the
// in-memory collections. Journal matching goes by the correlation id
// stamped at posting time; narration sniffing remains only as a fallback
// for legacy entries.
func (e *Engine) rollbackSingle(tx domain.PaymentTransaction, payments *[]domain.PaymentTransaction, journal *[]accounting.JournalEntry, members []domain.Anggota) (SingleResult, []accounting.JournalEntry, error) {
	idx := findPayment(*payments, tx)
	if idx < 0 {
		return SingleResult{}, nil, shared.NewError(shared.CodeTransactionNotFound,
			"transaksi %s tidak ditemukan", describeTx(tx))
	}
	matched := (*payments)[idx]

	if matched.BalanceBefore == nil {
		return SingleResult{}, nil, shared.NewError(CodeBalanceUnrecoverable,
			"saldo sebelum transaksi %s tidak tercatat", describeTx(matched))
	}
	restored := *matched.BalanceBefore

	*payments = append((*payments)[:idx], (*payments)[idx+1:]...)

	memberName := matched.AnggotaNama
	if memberName == "" {
		for _, m := range members {
			if m.ID == matched.AnggotaID {
				memberName = m.Nama
				break
			}
		}
	}

	kept := (*journal)[:0]
	var removed []accounting.JournalEntry
	for _, entry := range *journal {
		if matchesJournal(entry, matched, memberName) {
			removed = append(removed, entry)
			continue
		}
		kept = append(kept, entry)
	}
	*journal = kept

	return SingleResult{
		TransactionID:   matched.ID,
		AnggotaID:       matched.AnggotaID,
		JournalRemoved:  len(removed) > 0,
		BalanceRestored: &restored,
	}, removed, nil
}

// findPayment matches by id first, then falls back to batch+member+amount.
// The heuristic tolerates minor id drift from upstream import bugs.
func findPayment(payments []domain.PaymentTransaction, tx domain.PaymentTransaction) int {
	if tx.ID != "" {
		for i, p := range payments {
			if p.ID == tx.ID {
				return i
			}
		}
	}
	if tx.BatchID == "" || tx.AnggotaID == "" {
		return -1
	}
	for i, p := range payments {
		if p.BatchID == tx.BatchID && p.AnggotaID == tx.AnggotaID && p.Jumlah == tx.Jumlah {
			return i
		}
	}
	return -1
}

func matchesJournal(entry accounting.JournalEntry, tx domain.PaymentTransaction, memberName string) bool {
	if entry.SourceID != "" && entry.SourceID == tx.ID {
		return true
	}
	// Legacy fallback: narration contains the member name, same date, and
	// a batch marker. Fragile by construction; correlation ids make this
	// path rare.
	if memberName == "" || entry.Tanggal != tx.Tanggal {
		return false
	}
	if !strings.Contains(entry.Keterangan, memberName) {
		return false
	}
	return strings.Contains(entry.Keterangan, "Batch") ||
		(tx.BatchID != "" && strings.Contains(entry.Keterangan, tx.BatchID))
}

func describeTx(tx domain.PaymentTransaction) string {
	if tx.ID != "" {
		return tx.ID
	}
	return fmt.Sprintf("(batch %s, anggota %s, %s)", tx.BatchID, tx.AnggotaID, shared.Rupiah(tx.Jumlah))
}

// verifyRollback runs two post-condition checks: the payments collection
// must have shrunk by exactly the rolled-back count, and the journal must
// not have grown. The journal check is weak on purpose — the exact
// expected reduction is unknown when matching was heuristic.
func verifyRollback(origPayments, origJournal, newPayments, newJournal, rolledBack int) Verification {
	v := Verification{
		Payments: CheckResult{
			Name:     "payments_count",
			Expected: origPayments - rolledBack,
			Actual:   newPayments,
			Passed:   newPayments == origPayments-rolledBack,
		},
		Journal: CheckResult{
			Name:     "journal_monotonic",
			Expected: origJournal,
			Actual:   newJournal,
			Passed:   newJournal <= origJournal,
		},
	}
	if !v.Payments.Passed {
		v.Warnings = append(v.Warnings, fmt.Sprintf(
			"jumlah transaksi tidak sesuai: diharapkan %d, tercatat %d", v.Payments.Expected, v.Payments.Actual))
	}
	if !v.Journal.Passed {
		v.Warnings = append(v.Warnings, fmt.Sprintf(
			"jurnal bertambah selama rollback: %d menjadi %d", origJournal, newJournal))
	}
	if newJournal == origJournal && rolledBack > 0 {
		v.Warnings = append(v.Warnings, "tidak ada entri jurnal yang terhapus; periksa pencocokan jurnal")
	}
	v.Success = v.Payments.Passed && v.Journal.Passed
	return v
}

func (e *Engine) appendHistory(entry HistoryEntry) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history = append(e.history, entry)
}

// History returns a copy of the process-lifetime rollback history.
func (e *Engine) History() []HistoryEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]HistoryEntry, len(e.history))
	copy(out, e.history)
	return out
}

// Statistics aggregates the history.
func (e *Engine) Statistics() Statistics {
	e.mu.Lock()
	defer e.mu.Unlock()
	stats := Statistics{TotalRollbacks: len(e.history)}
	for _, h := range e.history {
		if h.Success {
			stats.Successful++
		} else {
			stats.Failed++
		}
		stats.TotalTransactions += h.RolledBackCount
	}
	return stats
}

// ClearHistory resets the in-memory history.
func (e *Engine) ClearHistory() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history = nil
}
