package refund

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/koperasi-digital/koperasi-core/internal/domain"
	"github.com/koperasi-digital/koperasi-core/internal/platform/httpx"
	"github.com/koperasi-digital/koperasi-core/internal/shared"
)

// Handler exposes the exit/refund flow over HTTP.
type Handler struct {
	service  *Service
	logger   *slog.Logger
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{service: service, logger: logger, validate: validator.New()}
}

// Routes mounts the handler under /anggota.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/anggota/{anggotaID}", func(r chi.Router) {
		r.Post("/keluar", h.MarkExit)
		r.Delete("/keluar", h.CancelExit)
		r.Get("/pengembalian", h.Calculate)
		r.Post("/pengembalian/validasi", h.Validate)
		r.Post("/pengembalian", h.Process)
		r.Get("/kelayakan-hapus", h.DeletionEligibility)
		r.Delete("/", h.Reap)
	})
}

func actorFrom(r *http.Request) Actor {
	return Actor{
		UserID:   r.Header.Get("X-User-ID"),
		UserName: r.Header.Get("X-User-Name"),
	}
}

type markExitRequest struct {
	ExitDate   string `json:"exitDate" validate:"required"`
	ExitReason string `json:"exitReason" validate:"required"`
}

func (h *Handler) MarkExit(w http.ResponseWriter, r *http.Request) {
	var req markExitRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, shared.CodeInvalidParameter, "body tidak valid")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, shared.CodeInvalidParameter, err.Error())
		return
	}
	info, err := h.service.MarkExit(r.Context(), MarkExitInput{
		AnggotaID:  chi.URLParam(r, "anggotaID"),
		ExitDate:   req.ExitDate,
		ExitReason: req.ExitReason,
		Actor:      actorFrom(r),
	})
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, info)
}

func (h *Handler) CancelExit(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.CancelExit(r.Context(), chi.URLParam(r, "anggotaID"), actorFrom(r))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, info)
}

func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	calc, err := h.service.Calculate(r.Context(), chi.URLParam(r, "anggotaID"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, calc)
}

type validateRequest struct {
	PaymentMethod *domain.PaymentMethod `json:"paymentMethod"`
}

func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if r.ContentLength > 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Fail(w, http.StatusBadRequest, shared.CodeInvalidParameter, "body tidak valid")
			return
		}
	}
	outcome, err := h.service.Validate(r.Context(), chi.URLParam(r, "anggotaID"), req.PaymentMethod)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, outcome)
}

type processRequest struct {
	PaymentMethod domain.PaymentMethod `json:"paymentMethod" validate:"required,oneof=Cash BankTransfer"`
	PaymentDate   string               `json:"paymentDate" validate:"required"`
	Notes         string               `json:"notes"`
}

func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, shared.CodeInvalidParameter, "body tidak valid")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, shared.CodeInvalidParameter, err.Error())
		return
	}
	record, err := h.service.Process(r.Context(), ProcessInput{
		AnggotaID:     chi.URLParam(r, "anggotaID"),
		PaymentMethod: req.PaymentMethod,
		PaymentDate:   req.PaymentDate,
		Notes:         req.Notes,
		Actor:         actorFrom(r),
	})
	if err != nil {
		h.logger.Error("proses pengembalian", slog.Any("error", err))
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, record)
}

func (h *Handler) DeletionEligibility(w http.ResponseWriter, r *http.Request) {
	eligibility, err := h.service.DeletionEligibility(r.Context(), chi.URLParam(r, "anggotaID"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, eligibility)
}

func (h *Handler) Reap(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Reap(r.Context(), chi.URLParam(r, "anggotaID"), actorFrom(r))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, summary)
}
