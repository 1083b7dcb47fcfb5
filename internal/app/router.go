package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"

	"github.com/koperasi-digital/koperasi-core/internal/platform/httpx"
	"github.com/koperasi-digital/koperasi-core/internal/refund"
	"github.com/koperasi-digital/koperasi-core/internal/rollback"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	RefundHandler   *refund.Handler
	RollbackHandler *rollback.Handler
}

// NewRouter wires the middleware stack and mounts the API handlers.
func NewRouter(p RouterParams) http.Handler {
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		SSLRedirect:        p.Config != nil && p.Config.IsProduction(),
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
	})

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(httprate.LimitByIP(120, time.Minute))
	r.Use(secureMiddleware.Handler)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.OK(w, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		p.RefundHandler.Routes(r)
		p.RollbackHandler.Routes(r)
	})

	return r
}
