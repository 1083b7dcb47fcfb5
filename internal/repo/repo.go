// Package repo provides typed repositories over the key-value substrate.
// Each repository owns one collection key; the application layer never
// touches raw keys directly.
package repo

import (
	"context"

	"github.com/koperasi-digital/koperasi-core/internal/domain"
	"github.com/koperasi-digital/koperasi-core/internal/platform/store"
)

// Members accesses the anggota collection.
type Members struct {
	s store.Store
}

func NewMembers(s store.Store) *Members { return &Members{s: s} }

func (r *Members) List(ctx context.Context) ([]domain.Anggota, error) {
	return store.LoadCollection[domain.Anggota](ctx, r.s, domain.KeyAnggota)
}

// GetByID returns the member and whether it exists.
func (r *Members) GetByID(ctx context.Context, id string) (domain.Anggota, bool, error) {
	members, err := r.List(ctx)
	if err != nil {
		return domain.Anggota{}, false, err
	}
	for _, m := range members {
		if m.ID == id {
			return m, true, nil
		}
	}
	return domain.Anggota{}, false, nil
}

// Update replaces the member with the same ID.
func (r *Members) Update(ctx context.Context, member domain.Anggota) error {
	members, err := r.List(ctx)
	if err != nil {
		return err
	}
	for i := range members {
		if members[i].ID == member.ID {
			members[i] = member
			break
		}
	}
	return store.SaveCollection(ctx, r.s, domain.KeyAnggota, members)
}

// Remove deletes the member record, reporting whether one was removed.
func (r *Members) Remove(ctx context.Context, id string) (bool, error) {
	members, err := r.List(ctx)
	if err != nil {
		return false, err
	}
	kept := members[:0]
	removed := false
	for _, m := range members {
		if m.ID == id {
			removed = true
			continue
		}
		kept = append(kept, m)
	}
	if !removed {
		return false, nil
	}
	return removed, store.SaveCollection(ctx, r.s, domain.KeyAnggota, kept)
}

// SavingsKind selects one of the three parallel savings ledgers.
type SavingsKind string

const (
	SimpananPokok    SavingsKind = domain.KeySimpananPokok
	SimpananWajib    SavingsKind = domain.KeySimpananWajib
	SimpananSukarela SavingsKind = domain.KeySimpananSukarela
)

// Savings accesses one savings ledger collection.
type Savings struct {
	s    store.Store
	kind SavingsKind
}

func NewSavings(s store.Store, kind SavingsKind) *Savings {
	return &Savings{s: s, kind: kind}
}

func (r *Savings) List(ctx context.Context) ([]domain.SimpananEntry, error) {
	return store.LoadCollection[domain.SimpananEntry](ctx, r.s, string(r.kind))
}

func (r *Savings) ReplaceAll(ctx context.Context, entries []domain.SimpananEntry) error {
	return store.SaveCollection(ctx, r.s, string(r.kind), entries)
}

// ByMember returns all entries belonging to the member.
func (r *Savings) ByMember(ctx context.Context, anggotaID string) ([]domain.SimpananEntry, error) {
	entries, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.SimpananEntry, 0, 8)
	for _, e := range entries {
		if e.AnggotaID == anggotaID {
			out = append(out, e)
		}
	}
	return out, nil
}

// RemoveByMember drops every entry for the member, returning the count.
func (r *Savings) RemoveByMember(ctx context.Context, anggotaID string) (int, error) {
	entries, err := r.List(ctx)
	if err != nil {
		return 0, err
	}
	kept := entries[:0]
	removed := 0
	for _, e := range entries {
		if e.AnggotaID == anggotaID {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, store.SaveCollection(ctx, r.s, string(r.kind), kept)
}

// Loans accesses the pinjaman collection.
type Loans struct {
	s store.Store
}

func NewLoans(s store.Store) *Loans { return &Loans{s: s} }

func (r *Loans) List(ctx context.Context) ([]domain.Pinjaman, error) {
	return store.LoadCollection[domain.Pinjaman](ctx, r.s, domain.KeyPinjaman)
}

func (r *Loans) ReplaceAll(ctx context.Context, loans []domain.Pinjaman) error {
	return store.SaveCollection(ctx, r.s, domain.KeyPinjaman, loans)
}

// ActiveByMember returns loans still carrying outstanding principal.
func (r *Loans) ActiveByMember(ctx context.Context, anggotaID string) ([]domain.Pinjaman, error) {
	loans, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := []domain.Pinjaman{}
	for _, p := range loans {
		if p.AnggotaID == anggotaID && p.Aktif() {
			out = append(out, p)
		}
	}
	return out, nil
}

// Sales accesses the penjualan collection.
type Sales struct {
	s store.Store
}

func NewSales(s store.Store) *Sales { return &Sales{s: s} }

func (r *Sales) List(ctx context.Context) ([]domain.Penjualan, error) {
	return store.LoadCollection[domain.Penjualan](ctx, r.s, domain.KeyPenjualan)
}

func (r *Sales) ReplaceAll(ctx context.Context, sales []domain.Penjualan) error {
	return store.SaveCollection(ctx, r.s, domain.KeyPenjualan, sales)
}

// Payments accesses the pembayaranHutangPiutang collection.
type Payments struct {
	s store.Store
}

func NewPayments(s store.Store) *Payments { return &Payments{s: s} }

func (r *Payments) List(ctx context.Context) ([]domain.PaymentTransaction, error) {
	return store.LoadCollection[domain.PaymentTransaction](ctx, r.s, domain.KeyPembayaran)
}

func (r *Payments) ReplaceAll(ctx context.Context, txs []domain.PaymentTransaction) error {
	return store.SaveCollection(ctx, r.s, domain.KeyPembayaran, txs)
}

// ByBatch returns transactions sharing the batch id.
func (r *Payments) ByBatch(ctx context.Context, batchID string) ([]domain.PaymentTransaction, error) {
	txs, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := []domain.PaymentTransaction{}
	for _, tx := range txs {
		if tx.BatchID == batchID {
			out = append(out, tx)
		}
	}
	return out, nil
}

// Refunds accesses the pengembalian collection.
type Refunds struct {
	s store.Store
}

func NewRefunds(s store.Store) *Refunds { return &Refunds{s: s} }

func (r *Refunds) List(ctx context.Context) ([]domain.Pengembalian, error) {
	return store.LoadCollection[domain.Pengembalian](ctx, r.s, domain.KeyPengembalian)
}

// Append persists a new refund record.
func (r *Refunds) Append(ctx context.Context, rec domain.Pengembalian) error {
	records, err := r.List(ctx)
	if err != nil {
		return err
	}
	records = append(records, rec)
	return store.SaveCollection(ctx, r.s, domain.KeyPengembalian, records)
}
