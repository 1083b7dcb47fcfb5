// Package refund implements the member-exit and savings-refund state
// machine:
//
//	Aktif -> MarkExit -> keluar (refund Pending)
//	      -> Process  -> refund Completed -> Reap (cascading delete)
//	      -> CancelExit (only while refund is not Completed)
//
// Every mutating operation is guarded by a store snapshot and unwound on
// failure. Refund completion is the durability boundary: once the refund
// record is persisted, cascading deletion failures are reported but never
// undo the refund.
package refund

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/koperasi-digital/koperasi-core/internal/accounting"
	"github.com/koperasi-digital/koperasi-core/internal/audit"
	"github.com/koperasi-digital/koperasi-core/internal/cache"
	"github.com/koperasi-digital/koperasi-core/internal/domain"
	"github.com/koperasi-digital/koperasi-core/internal/ledger"
	"github.com/koperasi-digital/koperasi-core/internal/platform/store"
	"github.com/koperasi-digital/koperasi-core/internal/repo"
	"github.com/koperasi-digital/koperasi-core/internal/shared"
)

// Issue codes inside ValidationOutcome.
const (
	IssueActiveLoan        = "ACTIVE_LOAN_EXISTS"
	IssueInvalidMethod     = "INVALID_PAYMENT_METHOD"
	IssueInsufficientSaldo = "INSUFFICIENT_BALANCE"
	IssueNegativeRefund    = "NEGATIVE_REFUND"
)

// ReapEnqueuer schedules an out-of-band retry of the cascading delete.
// Optional; nil disables async retries.
type ReapEnqueuer interface {
	EnqueueReap(ctx context.Context, anggotaID string) error
}

// Service orchestrates exit marking, refund processing, cascading deletion
// and cancellation.
type Service struct {
	store    store.Store
	members  *repo.Members
	pokok    *repo.Savings
	wajib    *repo.Savings
	sukarela *repo.Savings
	loans    *repo.Loans
	sales    *repo.Sales
	payments *repo.Payments
	refunds  *repo.Refunds
	queries  *ledger.Queries
	poster   *accounting.Poster
	accounts *accounting.Accounts
	audit    *audit.Recorder
	cache    *cache.Cache
	reaper   ReapEnqueuer
	logger   *slog.Logger
	now      func() time.Time
}

// Deps groups the service dependencies.
type Deps struct {
	Store    store.Store
	Members  *repo.Members
	Pokok    *repo.Savings
	Wajib    *repo.Savings
	Sukarela *repo.Savings
	Loans    *repo.Loans
	Sales    *repo.Sales
	Payments *repo.Payments
	Refunds  *repo.Refunds
	Queries  *ledger.Queries
	Poster   *accounting.Poster
	Accounts *accounting.Accounts
	Audit    *audit.Recorder
	Cache    *cache.Cache
	Reaper   ReapEnqueuer
	Logger   *slog.Logger
}

func NewService(d Deps) *Service {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    d.Store,
		members:  d.Members,
		pokok:    d.Pokok,
		wajib:    d.Wajib,
		sukarela: d.Sukarela,
		loans:    d.Loans,
		sales:    d.Sales,
		payments: d.Payments,
		refunds:  d.Refunds,
		queries:  d.Queries,
		poster:   d.Poster,
		accounts: d.Accounts,
		audit:    d.Audit,
		cache:    d.Cache,
		reaper:   d.Reaper,
		logger:   logger,
		now:      time.Now,
	}
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// MarkExit transitions an active member into the exited state with refund
// pending. Marking an already-exited member fails; re-entry requires an
// explicit CancelExit first.
func (s *Service) MarkExit(ctx context.Context, in MarkExitInput) (ExitInfo, error) {
	if in.AnggotaID == "" {
		return ExitInfo{}, shared.NewError(shared.CodeInvalidParameter, "ID anggota wajib diisi")
	}
	if in.ExitReason == "" {
		return ExitInfo{}, shared.NewError(shared.CodeInvalidParameter, "alasan keluar wajib diisi")
	}
	if _, err := time.Parse("2006-01-02", in.ExitDate); err != nil {
		return ExitInfo{}, shared.NewError(shared.CodeInvalidDateFormat, "tanggal keluar harus berformat YYYY-MM-DD")
	}
	// Calendar-date comparison in the clock's own zone; instant-based
	// comparison would reject "today" during the early hours east of UTC.
	if in.ExitDate > s.now().Format("2006-01-02") {
		return ExitInfo{}, shared.NewError(shared.CodeFutureDate, "tanggal keluar tidak boleh di masa depan")
	}

	member, ok, err := s.members.GetByID(ctx, in.AnggotaID)
	if err != nil {
		return ExitInfo{}, shared.WrapError(err, shared.CodeSystemError, "gagal membaca data anggota")
	}
	if !ok {
		return ExitInfo{}, shared.NewError(shared.CodeMemberNotFound, "anggota %s tidak ditemukan", in.AnggotaID)
	}
	if member.Exited() {
		return ExitInfo{}, shared.NewError(shared.CodeAlreadyExited, "anggota %s sudah ditandai keluar", member.Nama)
	}

	oldStatus := string(member.Status)
	member.Status = domain.MemberStatusInactive
	member.ExitDate = in.ExitDate
	member.ExitReason = in.ExitReason
	member.RefundStatus = domain.RefundStatusPending
	member.RefundID = ""
	if err := s.members.Update(ctx, member); err != nil {
		return ExitInfo{}, shared.WrapError(err, shared.CodeSystemError, "gagal menyimpan status keluar")
	}

	_ = s.audit.Record(ctx, audit.Entry{
		UserID:    in.Actor.UserID,
		UserName:  in.Actor.UserName,
		Action:    "anggota.keluar",
		AnggotaID: member.ID,
		Details: map[string]any{
			"oldStatus":  oldStatus,
			"newStatus":  string(member.Status),
			"exitDate":   in.ExitDate,
			"exitReason": in.ExitReason,
		},
	})
	s.cache.InvalidateAnggota(ctx, member.ID)

	return ExitInfo{
		AnggotaID:  member.ID,
		Nama:       member.Nama,
		ExitDate:   in.ExitDate,
		ExitReason: in.ExitReason,
		OldStatus:  oldStatus,
		NewStatus:  string(member.Status),
	}, nil
}

// Calculate computes the refund breakdown. Pure read; savings totals come
// from the cached ledger helpers when available.
func (s *Service) Calculate(ctx context.Context, anggotaID string) (Calculation, error) {
	member, ok, err := s.members.GetByID(ctx, anggotaID)
	if err != nil {
		return Calculation{}, shared.WrapError(err, shared.CodeSystemError, "gagal membaca data anggota")
	}
	if !ok {
		return Calculation{}, shared.NewError(shared.CodeMemberNotFound, "anggota %s tidak ditemukan", anggotaID)
	}

	totals, err := s.queries.TotalSimpanan(ctx, anggotaID)
	if err != nil {
		return Calculation{}, shared.WrapError(err, shared.CodeSystemError, "gagal menghitung total simpanan")
	}
	activeLoans, err := s.queries.PinjamanAktif(ctx, anggotaID)
	if err != nil {
		return Calculation{}, shared.WrapError(err, shared.CodeSystemError, "gagal membaca pinjaman")
	}
	var totalPinjaman float64
	for _, p := range activeLoans {
		totalPinjaman += p.SisaPokok
	}
	kewajibanLain, err := s.queries.KewajibanLain(ctx, anggotaID)
	if err != nil {
		return Calculation{}, shared.WrapError(err, shared.CodeSystemError, "gagal membaca kewajiban POS")
	}

	totalSimpanan := totals.SimpananPokok + totals.SimpananWajib
	outstanding := totalPinjaman + kewajibanLain
	return Calculation{
		AnggotaID:              member.ID,
		Nama:                   member.Nama,
		SimpananPokok:          totals.SimpananPokok,
		SimpananWajib:          totals.SimpananWajib,
		TotalSimpanan:          totalSimpanan,
		PinjamanAktif:          activeLoans,
		TotalPinjaman:          totalPinjaman,
		KewajibanLain:          kewajibanLain,
		OutstandingObligations: outstanding,
		TotalRefund:            totalSimpanan - outstanding,
		HasActiveLoan:          len(activeLoans) > 0,
	}, nil
}

// Validate checks whether the refund may be processed. method == nil means
// the cashier has not chosen a payout method yet, which is not an error.
// Balance sufficiency is advisory only: the till may be topped up before
// finalizing. Active loans are a hard block.
func (s *Service) Validate(ctx context.Context, anggotaID string, method *domain.PaymentMethod) (ValidationOutcome, error) {
	calc, err := s.Calculate(ctx, anggotaID)
	if err != nil {
		return ValidationOutcome{}, err
	}

	outcome := ValidationOutcome{Errors: []Issue{}, Warnings: []Issue{}}

	if calc.HasActiveLoan {
		outcome.Errors = append(outcome.Errors, Issue{
			Code: IssueActiveLoan,
			Message: fmt.Sprintf("anggota masih memiliki %d pinjaman aktif sebesar %s",
				len(calc.PinjamanAktif), shared.Rupiah(calc.TotalPinjaman)),
		})
	}
	if method != nil && !domain.ValidMethod(*method) {
		outcome.Errors = append(outcome.Errors, Issue{
			Code:    IssueInvalidMethod,
			Message: "metode pembayaran harus Cash atau BankTransfer",
		})
	}

	if calc.TotalRefund < 0 {
		outcome.Warnings = append(outcome.Warnings, Issue{
			Code: IssueNegativeRefund,
			Message: fmt.Sprintf("kewajiban melebihi simpanan; anggota masih berutang %s",
				shared.Rupiah(-calc.TotalRefund)),
		})
	}
	if warn := s.balanceWarning(ctx, calc.TotalRefund, method); warn != nil {
		outcome.Warnings = append(outcome.Warnings, *warn)
	}

	outcome.Valid = len(outcome.Errors) == 0
	return outcome, nil
}

func (s *Service) balanceWarning(ctx context.Context, required float64, method *domain.PaymentMethod) *Issue {
	if required <= 0 {
		return nil
	}
	kas, err := s.accounts.Balance(ctx, domain.AccountKas)
	if err != nil {
		return nil
	}
	bank, err := s.accounts.Balance(ctx, domain.AccountBank)
	if err != nil {
		return nil
	}
	available := kas + bank
	source := "kas dan bank"
	if method != nil {
		switch *method {
		case domain.PaymentCash:
			available, source = kas, "kas"
		case domain.PaymentBankTransfer:
			available, source = bank, "bank"
		}
	}
	if available >= required {
		return nil
	}
	return &Issue{
		Code: IssueInsufficientSaldo,
		Message: fmt.Sprintf("saldo %s (%s) kurang dari pengembalian %s",
			source, shared.Rupiah(available), shared.Rupiah(required)),
	}
}

// mutatedByProcess lists every collection Process may touch, for the
// snapshot.
var mutatedByProcess = []string{
	domain.KeyAnggota,
	domain.KeyPengembalian,
	domain.KeyJurnal,
	domain.KeyCOA,
	domain.KeySimpananPokok,
	domain.KeySimpananWajib,
	domain.KeySimpananSukarela,
}

// Process executes the refund atomically: post the journal, zero the
// ledgers, persist the refund record, and mark the member refunded. Any
// failure before the refund record commits restores the snapshot. Cache
// invalidation and cascading deletion run after the durability boundary
// and never undo the refund.
func (s *Service) Process(ctx context.Context, in ProcessInput) (domain.Pengembalian, error) {
	if in.AnggotaID == "" {
		return domain.Pengembalian{}, shared.NewError(shared.CodeInvalidParameter, "ID anggota wajib diisi")
	}
	if !domain.ValidMethod(in.PaymentMethod) {
		return domain.Pengembalian{}, shared.NewError(shared.CodeValidationFailed, "metode pembayaran harus Cash atau BankTransfer")
	}
	if _, err := time.Parse("2006-01-02", in.PaymentDate); err != nil {
		return domain.Pengembalian{}, shared.NewError(shared.CodeInvalidDateFormat, "tanggal pembayaran harus berformat YYYY-MM-DD")
	}

	member, ok, err := s.members.GetByID(ctx, in.AnggotaID)
	if err != nil {
		return domain.Pengembalian{}, shared.WrapError(err, shared.CodeSystemError, "gagal membaca data anggota")
	}
	if !ok {
		return domain.Pengembalian{}, shared.NewError(shared.CodeMemberNotFound, "anggota %s tidak ditemukan", in.AnggotaID)
	}
	switch member.RefundStatus {
	case domain.RefundStatusCompleted:
		return domain.Pengembalian{}, shared.NewError(shared.CodeRefundAlreadyProcessed, "pengembalian anggota %s sudah diproses", member.Nama)
	case domain.RefundStatusPending:
	default:
		return domain.Pengembalian{}, shared.NewError(shared.CodeValidationFailed, "anggota %s belum ditandai keluar", member.Nama)
	}

	method := in.PaymentMethod
	outcome, err := s.Validate(ctx, in.AnggotaID, &method)
	if err != nil {
		return domain.Pengembalian{}, err
	}
	if !outcome.Valid {
		return domain.Pengembalian{}, shared.NewError(shared.CodeValidationFailed, "validasi gagal: %s", outcome.Errors[0].Message)
	}

	calc, err := s.Calculate(ctx, in.AnggotaID)
	if err != nil {
		return domain.Pengembalian{}, err
	}
	if calc.TotalRefund < 0 {
		return domain.Pengembalian{}, shared.NewError(shared.CodeValidationFailed,
			"kewajiban %s melebihi simpanan %s; selesaikan kewajiban terlebih dahulu",
			shared.Rupiah(calc.OutstandingObligations), shared.Rupiah(calc.TotalSimpanan))
	}

	uow, err := store.Begin(ctx, s.store, mutatedByProcess...)
	if err != nil {
		return domain.Pengembalian{}, shared.WrapError(err, shared.CodeSystemError, "gagal mengambil snapshot")
	}

	record, err := s.apply(ctx, member, calc, in)
	if err != nil {
		if rbErr := uow.Rollback(ctx); rbErr != nil {
			s.logger.Error("rollback pengembalian", slog.Any("error", rbErr))
		}
		_ = s.audit.Record(ctx, audit.Entry{
			UserID:    in.Actor.UserID,
			UserName:  in.Actor.UserName,
			Action:    "pengembalian.gagal",
			AnggotaID: in.AnggotaID,
			Severity:  audit.SeverityError,
			Details:   map[string]any{"error": err.Error()},
		})
		if shared.CodeOf(err) != shared.CodeSystemError {
			return domain.Pengembalian{}, err
		}
		return domain.Pengembalian{}, shared.WrapError(err, shared.CodeSystemError, "pengembalian dibatalkan")
	}
	uow.Commit()

	// Past the durability boundary: best-effort only from here on.
	s.cache.InvalidateAnggota(ctx, member.ID)
	s.cache.InvalidateSimpanan(ctx)
	s.cache.InvalidateReports(ctx)
	s.attemptReap(ctx, member.ID, in.Actor)

	return record, nil
}

// apply runs the mutation phase inside the snapshot guard.
func (s *Service) apply(ctx context.Context, member domain.Anggota, calc Calculation, in ProcessInput) (domain.Pengembalian, error) {
	refundID := fmt.Sprintf("REF-%s", uuid.NewString())
	refundDate := s.now().Format("2006-01-02")

	var lines []accounting.JournalLine
	if calc.SimpananPokok > 0 {
		lines = append(lines, accounting.JournalLine{Akun: domain.AccountSimpananPokok, Debit: calc.SimpananPokok})
	}
	if calc.SimpananWajib > 0 {
		lines = append(lines, accounting.JournalLine{Akun: domain.AccountSimpananWajib, Debit: calc.SimpananWajib})
	}
	payout := domain.AccountKas
	if in.PaymentMethod == domain.PaymentBankTransfer {
		payout = domain.AccountBank
	}
	if calc.TotalRefund > 0 {
		lines = append(lines, accounting.JournalLine{Akun: payout, Kredit: calc.TotalRefund})
	}
	if calc.OutstandingObligations > 0 {
		// Obligations withheld from the payout settle the member's POS debt.
		lines = append(lines, accounting.JournalLine{Akun: domain.AccountPiutangAnggota, Kredit: calc.OutstandingObligations})
	}

	var entry accounting.JournalEntry
	if len(lines) > 0 {
		var err error
		entry, err = s.poster.Post(ctx, accounting.PostingInput{
			Keterangan: fmt.Sprintf("Pengembalian simpanan %s (%s)", member.Nama, member.ID),
			Tanggal:    in.PaymentDate,
			SourceID:   refundID,
			Lines:      lines,
		})
		if err != nil {
			return domain.Pengembalian{}, err
		}
	}

	for _, savings := range []*repo.Savings{s.pokok, s.wajib, s.sukarela} {
		if err := zeroLedger(ctx, savings, member.ID, refundID, refundDate); err != nil {
			return domain.Pengembalian{}, shared.WrapError(err, shared.CodeSystemError, "gagal menolkan simpanan")
		}
	}

	record := domain.Pengembalian{
		ID:                     refundID,
		AnggotaID:              member.ID,
		SimpananPokok:          calc.SimpananPokok,
		SimpananWajib:          calc.SimpananWajib,
		TotalSimpanan:          calc.TotalSimpanan,
		OutstandingObligations: calc.OutstandingObligations,
		TotalRefund:            calc.TotalRefund,
		PaymentMethod:          in.PaymentMethod,
		PaymentDate:            in.PaymentDate,
		ReferenceNumber:        fmt.Sprintf("PGB/%s/%s", s.now().Format("200601"), member.ID),
		Notes:                  in.Notes,
		Status:                 domain.PengembalianCompleted,
		JournalID:              entry.ID,
	}
	if err := s.refunds.Append(ctx, record); err != nil {
		return domain.Pengembalian{}, shared.WrapError(err, shared.CodeSystemError, "gagal menyimpan catatan pengembalian")
	}

	member.RefundStatus = domain.RefundStatusCompleted
	member.RefundID = refundID
	if err := s.members.Update(ctx, member); err != nil {
		return domain.Pengembalian{}, shared.WrapError(err, shared.CodeSystemError, "gagal memperbarui status anggota")
	}

	if err := s.audit.Record(ctx, audit.Entry{
		UserID:    in.Actor.UserID,
		UserName:  in.Actor.UserName,
		Action:    "pengembalian.proses",
		AnggotaID: member.ID,
		Details: map[string]any{
			"refundId":      refundID,
			"journalId":     entry.ID,
			"simpananPokok": calc.SimpananPokok,
			"simpananWajib": calc.SimpananWajib,
			"kewajiban":     calc.OutstandingObligations,
			"totalRefund":   calc.TotalRefund,
			"paymentMethod": string(in.PaymentMethod),
		},
	}); err != nil {
		return domain.Pengembalian{}, shared.WrapError(err, shared.CodeSystemError, "gagal menulis audit log")
	}

	return record, nil
}

// zeroLedger stamps every refundable entry of the member as refunded,
// preserving the historical amount. Entries are never deleted here.
func zeroLedger(ctx context.Context, savings *repo.Savings, anggotaID, refundID, refundDate string) error {
	entries, err := savings.List(ctx)
	if err != nil {
		return err
	}
	changed := false
	for i := range entries {
		e := &entries[i]
		if e.AnggotaID != anggotaID || !e.Refundable() {
			continue
		}
		e.BalanceBeforeRefund = e.Jumlah
		e.Jumlah = 0
		e.RefundStatus = domain.EntryRefunded
		e.RefundID = refundID
		e.RefundDate = refundDate
		changed = true
	}
	if !changed {
		return nil
	}
	return savings.ReplaceAll(ctx, entries)
}

func (s *Service) attemptReap(ctx context.Context, anggotaID string, actor Actor) {
	eligibility, err := s.DeletionEligibility(ctx, anggotaID)
	if err != nil {
		s.logger.Warn("cek kelayakan hapus", slog.String("anggota_id", anggotaID), slog.Any("error", err))
		return
	}
	if !eligibility.Eligible {
		s.logger.Info("hapus otomatis dilewati", slog.String("anggota_id", anggotaID),
			slog.Any("reasons", eligibility.Reasons))
		return
	}
	if _, err := s.Reap(ctx, anggotaID, actor); err != nil {
		s.logger.Error("hapus otomatis gagal", slog.String("anggota_id", anggotaID), slog.Any("error", err))
		if s.reaper != nil {
			if qErr := s.reaper.EnqueueReap(ctx, anggotaID); qErr != nil {
				s.logger.Error("antre ulang hapus", slog.String("anggota_id", anggotaID), slog.Any("error", qErr))
			}
		}
	}
}

// DeletionEligibility blocks cascading deletion while the member still has
// active loans or outstanding POS debt. Pure read.
func (s *Service) DeletionEligibility(ctx context.Context, anggotaID string) (Eligibility, error) {
	activeLoans, err := s.queries.PinjamanAktif(ctx, anggotaID)
	if err != nil {
		return Eligibility{}, shared.WrapError(err, shared.CodeSystemError, "gagal membaca pinjaman")
	}
	kewajiban, err := s.queries.KewajibanLain(ctx, anggotaID)
	if err != nil {
		return Eligibility{}, shared.WrapError(err, shared.CodeSystemError, "gagal membaca kewajiban POS")
	}
	var reasons []string
	if len(activeLoans) > 0 {
		reasons = append(reasons, fmt.Sprintf("%d pinjaman aktif", len(activeLoans)))
	}
	if kewajiban > 0 {
		reasons = append(reasons, fmt.Sprintf("kewajiban POS %s", shared.Rupiah(kewajiban)))
	}
	return Eligibility{Eligible: len(reasons) == 0, Reasons: reasons}, nil
}

// mutatedByReap lists every collection the cascade may touch.
var mutatedByReap = []string{
	domain.KeyAnggota,
	domain.KeySimpananPokok,
	domain.KeySimpananWajib,
	domain.KeySimpananSukarela,
	domain.KeyPenjualan,
	domain.KeyPinjaman,
	domain.KeyPembayaran,
}

// Reap permanently removes the member record and everything referencing it
// except open loans, which must never be discarded. Snapshot-guarded; the
// caller decides whether a failure matters (Process logs and moves on).
func (s *Service) Reap(ctx context.Context, anggotaID string, actor Actor) (DeletionSummary, error) {
	member, ok, err := s.members.GetByID(ctx, anggotaID)
	if err != nil {
		return DeletionSummary{}, shared.WrapError(err, shared.CodeSystemError, "gagal membaca data anggota")
	}
	if !ok {
		return DeletionSummary{}, shared.NewError(shared.CodeMemberNotFound, "anggota %s tidak ditemukan", anggotaID)
	}
	if member.RefundStatus != domain.RefundStatusCompleted {
		return DeletionSummary{}, shared.NewError(shared.CodeDeletionBlocked,
			"pengembalian anggota %s belum selesai", member.Nama)
	}
	eligibility, err := s.DeletionEligibility(ctx, anggotaID)
	if err != nil {
		return DeletionSummary{}, err
	}
	if !eligibility.Eligible {
		return DeletionSummary{}, shared.NewError(shared.CodeDeletionBlocked,
			"penghapusan diblokir: %v", eligibility.Reasons)
	}

	uow, err := store.Begin(ctx, s.store, mutatedByReap...)
	if err != nil {
		return DeletionSummary{}, shared.WrapError(err, shared.CodeSystemError, "gagal mengambil snapshot")
	}

	summary, err := s.cascade(ctx, member)
	if err != nil {
		if rbErr := uow.Rollback(ctx); rbErr != nil {
			s.logger.Error("rollback penghapusan", slog.Any("error", rbErr))
		}
		return DeletionSummary{}, shared.WrapError(err, shared.CodeSystemError, "penghapusan dibatalkan")
	}
	uow.Commit()

	_ = s.audit.Record(ctx, audit.Entry{
		UserID:    actor.UserID,
		UserName:  actor.UserName,
		Action:    "anggota.hapus",
		AnggotaID: member.ID,
		Severity:  audit.SeverityWarning,
		Details: map[string]any{
			"nama":             member.Nama,
			"simpananPokok":    summary.SimpananPokok,
			"simpananWajib":    summary.SimpananWajib,
			"simpananSukarela": summary.SimpananSukarela,
			"penjualan":        summary.Penjualan,
			"pinjamanLunas":    summary.PinjamanLunas,
			"pembayaran":       summary.Pembayaran,
		},
	})
	s.cache.InvalidateAll(ctx)

	return summary, nil
}

func (s *Service) cascade(ctx context.Context, member domain.Anggota) (DeletionSummary, error) {
	summary := DeletionSummary{AnggotaID: member.ID, Nama: member.Nama}

	if _, err := s.members.Remove(ctx, member.ID); err != nil {
		return DeletionSummary{}, err
	}
	var err error
	if summary.SimpananPokok, err = s.pokok.RemoveByMember(ctx, member.ID); err != nil {
		return DeletionSummary{}, err
	}
	if summary.SimpananWajib, err = s.wajib.RemoveByMember(ctx, member.ID); err != nil {
		return DeletionSummary{}, err
	}
	if summary.SimpananSukarela, err = s.sukarela.RemoveByMember(ctx, member.ID); err != nil {
		return DeletionSummary{}, err
	}

	sales, err := s.sales.List(ctx)
	if err != nil {
		return DeletionSummary{}, err
	}
	keptSales := sales[:0]
	for _, sale := range sales {
		if sale.AnggotaID == member.ID {
			summary.Penjualan++
			continue
		}
		keptSales = append(keptSales, sale)
	}
	if err := s.sales.ReplaceAll(ctx, keptSales); err != nil {
		return DeletionSummary{}, err
	}

	// Only fully paid loans go; an open loan is a liability that must
	// survive the member record.
	loans, err := s.loans.List(ctx)
	if err != nil {
		return DeletionSummary{}, err
	}
	keptLoans := loans[:0]
	for _, loan := range loans {
		if loan.AnggotaID == member.ID && loan.Lunas() {
			summary.PinjamanLunas++
			continue
		}
		keptLoans = append(keptLoans, loan)
	}
	if err := s.loans.ReplaceAll(ctx, keptLoans); err != nil {
		return DeletionSummary{}, err
	}

	payments, err := s.payments.List(ctx)
	if err != nil {
		return DeletionSummary{}, err
	}
	keptPayments := payments[:0]
	for _, tx := range payments {
		if tx.AnggotaID == member.ID {
			summary.Pembayaran++
			continue
		}
		keptPayments = append(keptPayments, tx)
	}
	if err := s.payments.ReplaceAll(ctx, keptPayments); err != nil {
		return DeletionSummary{}, err
	}

	return summary, nil
}

// CancelExit returns an exited member to active status. Irreversible once
// the refund has completed.
func (s *Service) CancelExit(ctx context.Context, anggotaID string, actor Actor) (CancelInfo, error) {
	member, ok, err := s.members.GetByID(ctx, anggotaID)
	if err != nil {
		return CancelInfo{}, shared.WrapError(err, shared.CodeSystemError, "gagal membaca data anggota")
	}
	if !ok {
		return CancelInfo{}, shared.NewError(shared.CodeMemberNotFound, "anggota %s tidak ditemukan", anggotaID)
	}
	if member.RefundStatus == domain.RefundStatusCompleted {
		return CancelInfo{}, shared.NewError(shared.CodeRefundAlreadyProcessed,
			"pengembalian anggota %s sudah diproses dan tidak dapat dibatalkan", member.Nama)
	}
	if !member.Exited() {
		return CancelInfo{}, shared.NewError(shared.CodeValidationFailed, "anggota %s tidak berstatus keluar", member.Nama)
	}

	member.Status = domain.MemberStatusActive
	member.ExitDate = ""
	member.ExitReason = ""
	member.RefundStatus = ""
	member.RefundID = ""
	if err := s.members.Update(ctx, member); err != nil {
		return CancelInfo{}, shared.WrapError(err, shared.CodeSystemError, "gagal menyimpan pembatalan")
	}

	_ = s.audit.Record(ctx, audit.Entry{
		UserID:    actor.UserID,
		UserName:  actor.UserName,
		Action:    "anggota.batal-keluar",
		AnggotaID: member.ID,
		Details:   map[string]any{"newStatus": string(member.Status)},
	})
	s.cache.InvalidateAnggota(ctx, member.ID)

	return CancelInfo{AnggotaID: member.ID, Nama: member.Nama, NewStatus: string(member.Status)}, nil
}
