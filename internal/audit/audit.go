// Package audit keeps a trail of every state-changing action with its
// before/after context. Entries are never modified or removed by the
// application; retention is handled outside this system.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/koperasi-digital/koperasi-core/internal/domain"
	"github.com/koperasi-digital/koperasi-core/internal/platform/store"
)

// Severity levels for audit entries.
const (
	SeverityInfo    = "INFO"
	SeverityWarning = "WARNING"
	SeverityError   = "ERROR"
)

// Entry is one append-only audit record.
type Entry struct {
	ID            string         `json:"id"`
	Timestamp     time.Time      `json:"timestamp"`
	UserID        string         `json:"userId,omitempty"`
	UserName      string         `json:"userName,omitempty"`
	Action        string         `json:"action"`
	AnggotaID     string         `json:"anggotaId,omitempty"`
	BatchID       string         `json:"batchId,omitempty"`
	TransactionID string         `json:"transactionId,omitempty"`
	Details       map[string]any `json:"details,omitempty"`
	Severity      string         `json:"severity"`
}

// Recorder appends entries to the audit collection and mirrors them to the
// structured log.
type Recorder struct {
	s      store.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewRecorder(s store.Store, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{s: s, logger: logger, now: time.Now}
}

// WithNow overrides the clock, for tests.
func (r *Recorder) WithNow(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

// Record stamps and appends the entry. Failures are returned but callers
// on best-effort paths may ignore them.
func (r *Recorder) Record(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = r.now()
	}
	if entry.Severity == "" {
		entry.Severity = SeverityInfo
	}
	entries, err := store.LoadCollection[Entry](ctx, r.s, domain.KeyAuditLog)
	if err != nil {
		return err
	}
	entries = append(entries, entry)
	if err := store.SaveCollection(ctx, r.s, domain.KeyAuditLog, entries); err != nil {
		return err
	}
	r.logger.Log(ctx, levelFor(entry.Severity), "audit",
		slog.String("action", entry.Action),
		slog.String("anggota_id", entry.AnggotaID),
		slog.String("batch_id", entry.BatchID),
		slog.String("severity", entry.Severity),
	)
	return nil
}

// List returns every recorded entry, oldest first.
func (r *Recorder) List(ctx context.Context) ([]Entry, error) {
	return store.LoadCollection[Entry](ctx, r.s, domain.KeyAuditLog)
}

func levelFor(severity string) slog.Level {
	switch severity {
	case SeverityError:
		return slog.LevelError
	case SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
