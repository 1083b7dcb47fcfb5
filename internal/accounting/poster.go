package accounting

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/koperasi-digital/koperasi-core/internal/shared"
)

// BalanceTolerance is the rounding slack allowed between total debit and
// total credit of an entry.
const BalanceTolerance = 0.01

// PostingInput groups the fields required to post one journal entry.
type PostingInput struct {
	Keterangan string
	Tanggal    string
	SourceID   string
	Lines      []JournalLine
}

// Validate checks double-entry balance before anything is written.
func (in PostingInput) Validate() error {
	if len(in.Lines) < 2 {
		return shared.NewError(shared.CodeInvalidParameter, "jurnal membutuhkan minimal 2 baris")
	}
	var debit, kredit float64
	for i, line := range in.Lines {
		if line.Akun == "" {
			return shared.NewError(shared.CodeInvalidParameter, "baris %d tanpa kode akun", i)
		}
		if line.Debit < 0 || line.Kredit < 0 {
			return shared.NewError(shared.CodeInvalidParameter, "baris %d bernilai negatif", i)
		}
		if line.Debit > 0 && line.Kredit > 0 {
			return shared.NewError(shared.CodeInvalidParameter, "baris %d debit dan kredit sekaligus", i)
		}
		debit += line.Debit
		kredit += line.Kredit
	}
	if math.Abs(debit-kredit) > BalanceTolerance {
		return shared.NewError(shared.CodeConsistencyError,
			"jurnal tidak seimbang: debit %s, kredit %s", shared.Rupiah(debit), shared.Rupiah(kredit))
	}
	return nil
}

// Poster appends balanced entries to the journal and keeps chart-of-account
// balances current.
type Poster struct {
	journal  *Journal
	accounts *Accounts
	now      func() time.Time
}

func NewPoster(journal *Journal, accounts *Accounts) *Poster {
	return &Poster{journal: journal, accounts: accounts, now: time.Now}
}

// WithNow overrides the clock, for tests.
func (p *Poster) WithNow(now func() time.Time) {
	if now != nil {
		p.now = now
	}
}

// Post validates, appends the entry, and applies its lines to the COA.
func (p *Poster) Post(ctx context.Context, in PostingInput) (JournalEntry, error) {
	if err := in.Validate(); err != nil {
		return JournalEntry{}, err
	}
	tanggal := in.Tanggal
	if tanggal == "" {
		tanggal = p.now().Format("2006-01-02")
	}
	entry := JournalEntry{
		ID:         fmt.Sprintf("JRN-%s", uuid.NewString()),
		Tanggal:    tanggal,
		Keterangan: in.Keterangan,
		SourceID:   in.SourceID,
		Lines:      in.Lines,
	}
	if err := p.journal.Append(ctx, entry); err != nil {
		return JournalEntry{}, err
	}
	if err := p.applyToAccounts(ctx, entry.Lines, 1); err != nil {
		return JournalEntry{}, err
	}
	return entry, nil
}

// Unpost reverses the COA effect of entries that have already been removed
// from the journal collection by the caller.
func (p *Poster) Unpost(ctx context.Context, entries []JournalEntry) error {
	for _, entry := range entries {
		if err := p.applyToAccounts(ctx, entry.Lines, -1); err != nil {
			return err
		}
	}
	return nil
}

func (p *Poster) applyToAccounts(ctx context.Context, lines []JournalLine, sign float64) error {
	accounts, err := p.accounts.List(ctx)
	if err != nil {
		return err
	}
	index := make(map[string]int, len(accounts))
	for i, a := range accounts {
		index[a.Kode] = i
	}
	for _, line := range lines {
		i, ok := index[line.Akun]
		if !ok {
			// Unknown codes get a bare row so the balance is not lost.
			accounts = append(accounts, Account{Kode: line.Akun, Nama: line.Akun})
			i = len(accounts) - 1
			index[line.Akun] = i
		}
		if debitNormal(accounts[i]) {
			accounts[i].Saldo += sign * (line.Debit - line.Kredit)
		} else {
			accounts[i].Saldo += sign * (line.Kredit - line.Debit)
		}
	}
	return p.accounts.ReplaceAll(ctx, accounts)
}

// debitNormal reports whether the account grows on the debit side.
// Assets (1xxx) and expenses (5xxx) are debit-normal; everything else is
// credit-normal unless the row says otherwise.
func debitNormal(a Account) bool {
	switch a.Normal {
	case "Debit":
		return true
	case "Kredit":
		return false
	}
	if len(a.Kode) > 0 {
		return a.Kode[0] == '1' || a.Kode[0] == '5'
	}
	return false
}
