package accounting

import (
	"context"

	"github.com/koperasi-digital/koperasi-core/internal/domain"
	"github.com/koperasi-digital/koperasi-core/internal/platform/store"
)

// Journal accesses the jurnal collection.
type Journal struct {
	s store.Store
}

func NewJournal(s store.Store) *Journal { return &Journal{s: s} }

func (r *Journal) List(ctx context.Context) ([]JournalEntry, error) {
	return store.LoadCollection[JournalEntry](ctx, r.s, domain.KeyJurnal)
}

func (r *Journal) Append(ctx context.Context, entry JournalEntry) error {
	entries, err := r.List(ctx)
	if err != nil {
		return err
	}
	entries = append(entries, entry)
	return store.SaveCollection(ctx, r.s, domain.KeyJurnal, entries)
}

func (r *Journal) ReplaceAll(ctx context.Context, entries []JournalEntry) error {
	return store.SaveCollection(ctx, r.s, domain.KeyJurnal, entries)
}

// Accounts accesses the chart of accounts.
type Accounts struct {
	s store.Store
}

func NewAccounts(s store.Store) *Accounts { return &Accounts{s: s} }

func (r *Accounts) List(ctx context.Context) ([]Account, error) {
	return store.LoadCollection[Account](ctx, r.s, domain.KeyCOA)
}

func (r *Accounts) ReplaceAll(ctx context.Context, accounts []Account) error {
	return store.SaveCollection(ctx, r.s, domain.KeyCOA, accounts)
}

// Balance returns the stored balance for a COA code, zero when absent.
func (r *Accounts) Balance(ctx context.Context, kode string) (float64, error) {
	accounts, err := r.List(ctx)
	if err != nil {
		return 0, err
	}
	for _, a := range accounts {
		if a.Kode == kode {
			return a.Saldo, nil
		}
	}
	return 0, nil
}
