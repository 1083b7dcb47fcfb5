package domain

// MemberStatus enumerates membership lifecycle values.
type MemberStatus string

const (
	MemberStatusActive   MemberStatus = "Aktif"
	MemberStatusInactive MemberStatus = "Tidak Aktif"
)

// RefundStatus tracks a member's progress through the exit/refund flow.
// The empty string means no exit has been initiated.
type RefundStatus string

const (
	RefundStatusPending   RefundStatus = "Pending"
	RefundStatusCompleted RefundStatus = "Completed"
)

// Anggota is a cooperative member record.
type Anggota struct {
	ID           string       `json:"id"`
	Nama         string       `json:"nama"`
	NIK          string       `json:"nik"`
	Status       MemberStatus `json:"status"`
	ExitDate     string       `json:"exitDate,omitempty"`
	ExitReason   string       `json:"exitReason,omitempty"`
	RefundStatus RefundStatus `json:"refundStatus,omitempty"`
	RefundID     string       `json:"refundId,omitempty"`
}

// Exited reports whether an exit has been initiated or completed.
func (a Anggota) Exited() bool {
	return a.RefundStatus == RefundStatusPending || a.RefundStatus == RefundStatusCompleted
}

// EntryRefundStatus marks whether a savings entry still counts toward a
// member's balance.
type EntryRefundStatus string

const (
	EntryActive   EntryRefundStatus = "Active"
	EntryRefunded EntryRefundStatus = "Refunded"
)

// SimpananEntry is one deposit or withdrawal row in a savings ledger.
// A refunded entry keeps its historical amount in BalanceBeforeRefund and
// is never deleted by the refund path.
type SimpananEntry struct {
	ID                  string            `json:"id"`
	AnggotaID           string            `json:"anggotaId"`
	Jumlah              float64           `json:"jumlah"`
	Tanggal             string            `json:"tanggal"`
	RefundStatus        EntryRefundStatus `json:"refundStatus,omitempty"`
	BalanceBeforeRefund float64           `json:"balanceBeforeRefund,omitempty"`
	RefundID            string            `json:"refundId,omitempty"`
	RefundDate          string            `json:"refundDate,omitempty"`
}

// Refundable reports whether the entry still carries balance.
func (e SimpananEntry) Refundable() bool {
	return e.RefundStatus != EntryRefunded
}

// Pinjaman is a member loan.
type Pinjaman struct {
	ID         string  `json:"id"`
	AnggotaID  string  `json:"anggotaId"`
	Pokok      float64 `json:"pokok"`
	SisaPokok  float64 `json:"sisaPokok"`
	Tanggal    string  `json:"tanggal"`
	Status     string  `json:"status"`
	LunasTgl   string  `json:"lunasTanggal,omitempty"`
	Keterangan string  `json:"keterangan,omitempty"`
}

// Lunas reports whether the loan is fully paid.
func (p Pinjaman) Lunas() bool {
	return p.Status == "Lunas" || p.SisaPokok <= 0
}

// Aktif reports whether the loan still carries outstanding principal.
func (p Pinjaman) Aktif() bool {
	return !p.Lunas()
}

// Penjualan is a POS sale, possibly on credit (kasbon).
type Penjualan struct {
	ID        string  `json:"id"`
	AnggotaID string  `json:"anggotaId,omitempty"`
	Total     float64 `json:"total"`
	Dibayar   float64 `json:"dibayar"`
	Tanggal   string  `json:"tanggal"`
	Metode    string  `json:"metode,omitempty"`
}

// Outstanding returns the unpaid remainder of the sale.
func (p Penjualan) Outstanding() float64 {
	if rest := p.Total - p.Dibayar; rest > 0 {
		return rest
	}
	return 0
}

// PaymentKind distinguishes payable vs receivable settlements.
type PaymentKind string

const (
	PaymentHutang  PaymentKind = "hutang"
	PaymentPiutang PaymentKind = "piutang"
)

// PaymentTransaction is one manual or batch-imported hutang/piutang payment.
type PaymentTransaction struct {
	ID            string      `json:"id"`
	BatchID       string      `json:"batchId,omitempty"`
	AnggotaID     string      `json:"anggotaId"`
	AnggotaNama   string      `json:"anggotaNama"`
	Kind          PaymentKind `json:"jenis"`
	Jumlah        float64     `json:"jumlah"`
	BalanceBefore *float64    `json:"balanceBefore,omitempty"`
	BalanceAfter  *float64    `json:"balanceAfter,omitempty"`
	Tanggal       string      `json:"tanggal"`
	KasirID       string      `json:"kasirId,omitempty"`
	Status        string      `json:"status,omitempty"`
}

// PaymentMethod selects the balancing account for a refund payout.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "Cash"
	PaymentBankTransfer PaymentMethod = "BankTransfer"
)

// ValidMethod reports whether m is a recognised payout method.
func ValidMethod(m PaymentMethod) bool {
	return m == PaymentCash || m == PaymentBankTransfer
}

// PengembalianStatus tracks a refund record's lifecycle.
type PengembalianStatus string

const (
	PengembalianProcessing PengembalianStatus = "Processing"
	PengembalianCompleted  PengembalianStatus = "Completed"
)

// Pengembalian is one savings refund paid out to an exiting member.
// Immutable once Status reaches Completed.
type Pengembalian struct {
	ID                     string             `json:"id"`
	AnggotaID              string             `json:"anggotaId"`
	SimpananPokok          float64            `json:"simpananPokok"`
	SimpananWajib          float64            `json:"simpananWajib"`
	TotalSimpanan          float64            `json:"totalSimpanan"`
	OutstandingObligations float64            `json:"outstandingObligations"`
	TotalRefund            float64            `json:"totalRefund"`
	PaymentMethod          PaymentMethod      `json:"paymentMethod"`
	PaymentDate            string             `json:"paymentDate"`
	ReferenceNumber        string             `json:"referenceNumber"`
	Notes                  string             `json:"notes,omitempty"`
	Status                 PengembalianStatus `json:"status"`
	JournalID              string             `json:"journalId,omitempty"`
}
