package accounting

// JournalLine stores a debit or credit amount against a COA code.
type JournalLine struct {
	Akun   string  `json:"akun"`
	Debit  float64 `json:"debit"`
	Kredit float64 `json:"kredit"`
}

// JournalEntry is one dated, named set of balanced lines. SourceID is the
// correlating id stamped at posting time so reversals can match by id
// instead of sniffing the narration text.
type JournalEntry struct {
	ID         string        `json:"id"`
	Tanggal    string        `json:"tanggal"`
	Keterangan string        `json:"keterangan"`
	SourceID   string        `json:"sourceId,omitempty"`
	Lines      []JournalLine `json:"lines"`
}

// TotalDebit sums the entry's debit lines.
func (e JournalEntry) TotalDebit() float64 {
	var sum float64
	for _, l := range e.Lines {
		sum += l.Debit
	}
	return sum
}

// TotalKredit sums the entry's credit lines.
func (e JournalEntry) TotalKredit() float64 {
	var sum float64
	for _, l := range e.Lines {
		sum += l.Kredit
	}
	return sum
}

// Account is one chart-of-accounts row with a running balance.
type Account struct {
	Kode   string  `json:"kode"`
	Nama   string  `json:"nama"`
	Tipe   string  `json:"tipe"`
	Saldo  float64 `json:"saldo"`
	Normal string  `json:"normal,omitempty"`
}
