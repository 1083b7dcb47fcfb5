package rollback

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/koperasi-digital/koperasi-core/internal/platform/httpx"
)

// Handler exposes the rollback engine over HTTP.
type Handler struct {
	engine *Engine
	logger *slog.Logger
}

func NewHandler(logger *slog.Logger, engine *Engine) *Handler {
	return &Handler{engine: engine, logger: logger}
}

// Routes mounts the handler under /rollback.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/rollback", func(r chi.Router) {
		r.Get("/batch/{batchID}/kelayakan", h.Eligibility)
		r.Post("/batch/{batchID}", h.RollbackBatch)
		r.Get("/riwayat", h.History)
		r.Get("/statistik", h.Statistics)
		r.Delete("/riwayat", h.ClearHistory)
	})
}

func (h *Handler) Eligibility(w http.ResponseWriter, r *http.Request) {
	eligibility, err := h.engine.CanRollback(r.Context(), chi.URLParam(r, "batchID"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, eligibility)
}

func (h *Handler) RollbackBatch(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "batchID")
	result, err := h.engine.RollbackByBatchID(r.Context(), batchID, r.Header.Get("X-User-Name"))
	if err != nil {
		h.logger.Error("rollback batch", slog.String("batch_id", batchID), slog.Any("error", err))
		httpx.Error(w, err)
		return
	}
	// The engine reports partial failure inside the result rather than as
	// an error; the envelope mirrors its success flag.
	httpx.JSON(w, http.StatusOK, httpx.Envelope{Success: result.Success, Data: result})
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	httpx.OK(w, h.engine.History())
}

func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	httpx.OK(w, h.engine.Statistics())
}

func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	h.engine.ClearHistory()
	httpx.OK(w, map[string]string{"status": "riwayat dibersihkan"})
}
