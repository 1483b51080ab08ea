package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"imagegw/internal/http/handlers"
	"imagegw/internal/middleware"
)

// RouterOptions carries the cross-cutting pieces the router wires in.
type RouterOptions struct {
	Logger         zerolog.Logger
	AllowedOrigins []string
	Recorder       middleware.HTTPRecorder
	Metrics        http.Handler
}

func NewRouter(app *handlers.App, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID(opts.Logger),
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger, opts.Recorder),
		middleware.CORS(opts.AllowedOrigins),
	)
	r.MethodNotAllowed(app.MethodNotAllowed)

	r.Get("/v1/healthz", app.Health)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/generate", app.Generate)
		r.Post("/edit", app.Edit)
	})

	return r
}
