package refund

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koperasi-digital/koperasi-core/internal/platform/httpx"
	"github.com/koperasi-digital/koperasi-core/internal/shared"
)

func newTestRouter(f *fixture) http.Handler {
	r := chi.NewRouter()
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), f.svc)
	h.Routes(r)
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) (*httptest.ResponseRecorder, httpx.Envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "U1")
	req.Header.Set("X-User-Name", "admin")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var envelope httpx.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return rec, envelope
}

func TestHandlerMarkExit(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newFixture(t)
		f.seedMember(t, activeMember("A001", "Budi"))
		router := newTestRouter(f)

		rec, env := doJSON(t, router, http.MethodPost, "/anggota/A001/keluar",
			`{"exitDate":"2025-03-10","exitReason":"pindah"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, env.Success)
	})

	t.Run("missing reason is rejected before the service runs", func(t *testing.T) {
		f := newFixture(t)
		f.seedMember(t, activeMember("A001", "Budi"))
		router := newTestRouter(f)

		rec, env := doJSON(t, router, http.MethodPost, "/anggota/A001/keluar",
			`{"exitDate":"2025-03-10"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, shared.CodeInvalidParameter, env.Error.Code)
	})

	t.Run("unknown member maps to 404", func(t *testing.T) {
		f := newFixture(t)
		router := newTestRouter(f)

		rec, env := doJSON(t, router, http.MethodPost, "/anggota/ZZZ/keluar",
			`{"exitDate":"2025-03-10","exitReason":"pindah"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, shared.CodeMemberNotFound, env.Error.Code)
	})

	t.Run("double mark maps to 409", func(t *testing.T) {
		f := newFixture(t)
		f.seedMember(t, exitedMember("A001", "Budi"))
		router := newTestRouter(f)

		rec, env := doJSON(t, router, http.MethodPost, "/anggota/A001/keluar",
			`{"exitDate":"2025-03-10","exitReason":"pindah"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, shared.CodeAlreadyExited, env.Error.Code)
	})
}

func TestHandlerValidate(t *testing.T) {
	f := newFixture(t)
	f.seedMember(t, exitedMember("A001", "Budi"))
	router := newTestRouter(f)

	t.Run("empty body means no method chosen yet", func(t *testing.T) {
		rec, env := doJSON(t, router, http.MethodPost, "/anggota/A001/pengembalian/validasi", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, env.Success)
	})

	t.Run("invalid method surfaces in the outcome, not the status", func(t *testing.T) {
		rec, env := doJSON(t, router, http.MethodPost, "/anggota/A001/pengembalian/validasi",
			`{"paymentMethod":"Cek"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, env.Success)

		raw, err := json.Marshal(env.Data)
		require.NoError(t, err)
		var outcome ValidationOutcome
		require.NoError(t, json.Unmarshal(raw, &outcome))
		assert.False(t, outcome.Valid)
		require.Len(t, outcome.Errors, 1)
		assert.Equal(t, IssueInvalidMethod, outcome.Errors[0].Code)
	})
}

func TestHandlerProcess(t *testing.T) {
	t.Run("bad method fails struct validation", func(t *testing.T) {
		f := newFixture(t)
		f.seedMember(t, exitedMember("A001", "Budi"))
		router := newTestRouter(f)

		rec, env := doJSON(t, router, http.MethodPost, "/anggota/A001/pengembalian",
			`{"paymentMethod":"Cek","paymentDate":"2025-03-15"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		require.NotNil(t, env.Error)
	})

	t.Run("success returns the refund record", func(t *testing.T) {
		f := newFixture(t)
		f.seedMember(t, exitedMember("A001", "Budi"))
		router := newTestRouter(f)

		rec, env := doJSON(t, router, http.MethodPost, "/anggota/A001/pengembalian",
			`{"paymentMethod":"Cash","paymentDate":"2025-03-15","notes":"selesai"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		require.True(t, env.Success)

		raw, err := json.Marshal(env.Data)
		require.NoError(t, err)
		var record map[string]any
		require.NoError(t, json.Unmarshal(raw, &record))
		assert.Equal(t, "Completed", record["status"])
	})
}

func TestHandlerCancelAndEligibility(t *testing.T) {
	f := newFixture(t)
	f.seedMember(t, exitedMember("A001", "Budi"))
	router := newTestRouter(f)

	rec, env := doJSON(t, router, http.MethodGet, "/anggota/A001/kelayakan-hapus", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	rec, env = doJSON(t, router, http.MethodDelete, "/anggota/A001/keluar", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	// Reaping an active member is blocked.
	rec, env = doJSON(t, router, http.MethodDelete, "/anggota/A001/", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, shared.CodeDeletionBlocked, env.Error.Code)
}
