package rollback

import "time"

// Eligibility answers whether a batch has anything to roll back.
type Eligibility struct {
	Eligible bool   `json:"eligible"`
	Count    int    `json:"count"`
	Message  string `json:"message,omitempty"`
}

// TxError records one transaction whose rollback failed. The batch keeps
// going; these are aggregated into the result.
type TxError struct {
	TransactionID string `json:"transactionId"`
	Message       string `json:"message"`
}

// SingleResult reports the outcome for one rolled-back transaction.
type SingleResult struct {
	TransactionID   string   `json:"transactionId"`
	AnggotaID       string   `json:"anggotaId"`
	JournalRemoved  bool     `json:"journalRemoved"`
	BalanceRestored *float64 `json:"balanceRestored,omitempty"`
}

// CheckResult is one named post-condition verification.
type CheckResult struct {
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Expected int    `json:"expected"`
	Actual   int    `json:"actual"`
}

// Verification aggregates the post-rollback consistency checks.
type Verification struct {
	Payments CheckResult `json:"payments"`
	Journal  CheckResult `json:"journal"`
	Warnings []string    `json:"warnings,omitempty"`
	Success  bool        `json:"success"`
}

// BatchResult is the aggregate outcome of a batch rollback. Success
// requires zero per-transaction errors and a passing verification.
type BatchResult struct {
	BatchID         string         `json:"batchId"`
	Success         bool           `json:"success"`
	RolledBackCount int            `json:"rolledBackCount"`
	Results         []SingleResult `json:"results,omitempty"`
	Errors          []TxError      `json:"errors"`
	Warnings        []string       `json:"warnings,omitempty"`
	Verification    *Verification  `json:"verification,omitempty"`
	Message         string         `json:"message,omitempty"`
}

// HistoryEntry is one line of the process-lifetime rollback history.
type HistoryEntry struct {
	ID              string    `json:"id"`
	BatchID         string    `json:"batchId"`
	Timestamp       time.Time `json:"timestamp"`
	RolledBackCount int       `json:"rolledBackCount"`
	ErrorCount      int       `json:"errorCount"`
	Success         bool      `json:"success"`
}

// Statistics aggregates the in-memory history.
type Statistics struct {
	TotalRollbacks    int `json:"totalRollbacks"`
	Successful        int `json:"successful"`
	Failed            int `json:"failed"`
	TotalTransactions int `json:"totalTransactions"`
}
