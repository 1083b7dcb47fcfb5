package refund

import "github.com/koperasi-digital/koperasi-core/internal/domain"

// Actor identifies who performed an operation, for the audit trail.
type Actor struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

// MarkExitInput carries the exit-marking request.
type MarkExitInput struct {
	AnggotaID  string `json:"anggotaId" validate:"required"`
	ExitDate   string `json:"exitDate" validate:"required"`
	ExitReason string `json:"exitReason" validate:"required"`
	Actor      Actor  `json:"-"`
}

// ExitInfo reports the state transition applied by MarkExit.
type ExitInfo struct {
	AnggotaID  string `json:"anggotaId"`
	Nama       string `json:"nama"`
	ExitDate   string `json:"exitDate"`
	ExitReason string `json:"exitReason"`
	OldStatus  string `json:"oldStatus"`
	NewStatus  string `json:"newStatus"`
}

// Calculation is the refund breakdown for one member. TotalRefund is
// TotalSimpanan minus OutstandingObligations, never clamped.
type Calculation struct {
	AnggotaID              string            `json:"anggotaId"`
	Nama                   string            `json:"nama"`
	SimpananPokok          float64           `json:"simpananPokok"`
	SimpananWajib          float64           `json:"simpananWajib"`
	TotalSimpanan          float64           `json:"totalSimpanan"`
	PinjamanAktif          []domain.Pinjaman `json:"pinjamanAktif"`
	TotalPinjaman          float64           `json:"totalPinjaman"`
	KewajibanLain          float64           `json:"kewajibanLain"`
	OutstandingObligations float64           `json:"outstandingObligations"`
	TotalRefund            float64           `json:"totalRefund"`
	HasActiveLoan          bool              `json:"hasActiveLoan"`
}

// Issue is one validation error or warning with a stable code.
type Issue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationOutcome separates hard errors (block processing) from soft
// warnings (advisory only).
type ValidationOutcome struct {
	Valid    bool    `json:"valid"`
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

// ProcessInput carries the refund execution request.
type ProcessInput struct {
	AnggotaID     string               `json:"anggotaId" validate:"required"`
	PaymentMethod domain.PaymentMethod `json:"paymentMethod" validate:"required,oneof=Cash BankTransfer"`
	PaymentDate   string               `json:"paymentDate" validate:"required"`
	Notes         string               `json:"notes"`
	Actor         Actor                `json:"-"`
}

// Eligibility reports whether a member's records may be cascade-deleted.
type Eligibility struct {
	Eligible bool     `json:"eligible"`
	Reasons  []string `json:"reasons,omitempty"`
}

// DeletionSummary counts everything removed by the cascading delete.
type DeletionSummary struct {
	AnggotaID        string `json:"anggotaId"`
	Nama             string `json:"nama"`
	SimpananPokok    int    `json:"simpananPokok"`
	SimpananWajib    int    `json:"simpananWajib"`
	SimpananSukarela int    `json:"simpananSukarela"`
	Penjualan        int    `json:"penjualan"`
	PinjamanLunas    int    `json:"pinjamanLunas"`
	Pembayaran       int    `json:"pembayaran"`
}

// CancelInfo reports the exit cancellation.
type CancelInfo struct {
	AnggotaID string `json:"anggotaId"`
	Nama      string `json:"nama"`
	NewStatus string `json:"newStatus"`
}
