// Package ledger answers read-only questions about a member's financial
// position: active loans, outstanding POS debt, and savings totals.
package ledger

import (
	"context"

	"github.com/koperasi-digital/koperasi-core/internal/cache"
	"github.com/koperasi-digital/koperasi-core/internal/domain"
	"github.com/koperasi-digital/koperasi-core/internal/repo"
)

// Totals carries per-ledger sums of active, non-refunded entries.
type Totals struct {
	SimpananPokok    float64 `json:"simpananPokok"`
	SimpananWajib    float64 `json:"simpananWajib"`
	SimpananSukarela float64 `json:"simpananSukarela"`
}

// Queries bundles the repositories the helpers read from. The cache is an
// optional dependency; nil disables memoization.
type Queries struct {
	loans    *repo.Loans
	sales    *repo.Sales
	pokok    *repo.Savings
	wajib    *repo.Savings
	sukarela *repo.Savings
	cache    *cache.Cache
}

func NewQueries(loans *repo.Loans, sales *repo.Sales, pokok, wajib, sukarela *repo.Savings, c *cache.Cache) *Queries {
	return &Queries{loans: loans, sales: sales, pokok: pokok, wajib: wajib, sukarela: sukarela, cache: c}
}

// PinjamanAktif returns the member's loans that still carry principal.
func (q *Queries) PinjamanAktif(ctx context.Context, anggotaID string) ([]domain.Pinjaman, error) {
	return q.loans.ActiveByMember(ctx, anggotaID)
}

// KewajibanLain sums the member's unpaid POS sales (kasbon).
func (q *Queries) KewajibanLain(ctx context.Context, anggotaID string) (float64, error) {
	sales, err := q.sales.List(ctx)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, s := range sales {
		if s.AnggotaID == anggotaID {
			total += s.Outstanding()
		}
	}
	return total, nil
}

// TotalSimpanan returns the member's active savings totals, memoized per
// member when a cache is wired.
func (q *Queries) TotalSimpanan(ctx context.Context, anggotaID string) (Totals, error) {
	key, err := q.cache.BuildKey(ctx, cache.SimpananScope(anggotaID), "ledger", "totals", anggotaID)
	if err != nil {
		// Cache trouble never blocks a read; recompute directly.
		return q.computeTotals(ctx, anggotaID)
	}
	var totals Totals
	err = q.cache.FetchJSON(ctx, key, &totals, func(ctx context.Context) (any, error) {
		return q.computeTotals(ctx, anggotaID)
	})
	if err != nil {
		return q.computeTotals(ctx, anggotaID)
	}
	return totals, nil
}

func (q *Queries) computeTotals(ctx context.Context, anggotaID string) (Totals, error) {
	var totals Totals
	for _, pair := range []struct {
		repo *repo.Savings
		dest *float64
	}{
		{q.pokok, &totals.SimpananPokok},
		{q.wajib, &totals.SimpananWajib},
		{q.sukarela, &totals.SimpananSukarela},
	} {
		entries, err := pair.repo.ByMember(ctx, anggotaID)
		if err != nil {
			return Totals{}, err
		}
		for _, e := range entries {
			if e.Refundable() {
				*pair.dest += e.Jumlah
			}
		}
	}
	return totals, nil
}
