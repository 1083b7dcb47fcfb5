package domain

// Store collection keys. These names are fixed by the data already in
// production storage and must not change.
const (
	KeyAnggota          = "anggota"
	KeySimpananPokok    = "simpananPokok"
	KeySimpananWajib    = "simpananWajib"
	KeySimpananSukarela = "simpananSukarela"
	KeyPenjualan        = "penjualan"
	KeyPinjaman         = "pinjaman"
	KeyPembayaran       = "pembayaranHutangPiutang"
	KeyJurnal           = "jurnal"
	KeyCOA              = "coa"
	KeyPengembalian     = "pengembalian"
	KeyAuditLog         = "auditLog"
)

// Chart-of-account codes the refund flow posts against.
const (
	AccountKas            = "1001"
	AccountBank           = "1002"
	AccountPiutangAnggota = "1201"
	AccountSimpananPokok  = "3001"
	AccountSimpananWajib  = "3002"
)
