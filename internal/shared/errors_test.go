package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodedErrors(t *testing.T) {
	t.Run("formats code and message", func(t *testing.T) {
		err := NewError(CodeMemberNotFound, "anggota %s tidak ditemukan", "A001")
		assert.Equal(t, "MEMBER_NOT_FOUND: anggota A001 tidak ditemukan", err.Error())
		assert.Equal(t, CodeMemberNotFound, CodeOf(err))
		assert.True(t, IsCode(err, CodeMemberNotFound))
	})

	t.Run("wrap preserves the cause", func(t *testing.T) {
		cause := errors.New("disk full")
		err := WrapError(cause, CodeSystemError, "gagal menyimpan")
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "disk full")
		assert.Equal(t, CodeSystemError, CodeOf(err))
	})

	t.Run("code survives further wrapping", func(t *testing.T) {
		inner := NewError(CodeDeletionBlocked, "pinjaman aktif")
		outer := fmt.Errorf("reap: %w", inner)
		assert.Equal(t, CodeDeletionBlocked, CodeOf(outer))
	})

	t.Run("uncoded errors default to system error", func(t *testing.T) {
		assert.Equal(t, CodeSystemError, CodeOf(errors.New("boom")))
	})
}

func TestRupiah(t *testing.T) {
	assert.Equal(t, "Rp 1.234.567", Rupiah(1234567))
	assert.Equal(t, "Rp 0", Rupiah(0))
	assert.Equal(t, "Rp 1.500,5", Rupiah(1500.5))
}
