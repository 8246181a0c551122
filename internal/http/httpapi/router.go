package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"studio/internal/http/handlers"
	"studio/internal/middleware"
)

// NewRouter assembles the API surface consumed by the studio UI.
func NewRouter(app *handlers.App) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(app.Config.AllowedOrigins),
		middleware.RateLimit(app.Config.RateLimitPerMin, time.Minute),
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/sessions", func(r chi.Router) {
		r.Post("/", app.SessionCreate)
		r.Route("/{session_id}", func(r chi.Router) {
			r.Get("/", app.SessionGet)
			r.Delete("/", app.SessionDelete)
			r.Put("/settings", app.SettingsUpdate)
			r.Post("/assets/{kind}", app.AssetUpload)
			r.Post("/generate", app.Generate)
			r.Post("/suggest", app.Suggest)
			r.Post("/undo", app.Undo)
			r.Post("/redo", app.Redo)
			r.Post("/log/{record_id}/select", app.HistorySelect)
			r.Delete("/log/{record_id}", app.HistoryDelete)
			r.Post("/reset", app.SessionReset)
			r.Get("/canvas", app.Canvas)
		})
	})

	return r
}
