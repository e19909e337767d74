package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"quiz-widget-service/internal/app"
	"quiz-widget-service/internal/logger"
)

// Services are the use cases the HTTP surface exposes.
type Services struct {
	Scores  *app.ScoreService
	Catalog *app.CatalogService
	Play    *app.PlayService
}

// NewRouter mounts the score API (including the .php paths older widgets post to),
// the catalog API and the WebSocket play endpoint.
func NewRouter(svc Services, log *logger.Logger) http.Handler {
	if log == nil {
		log = logger.Nop()
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger(log), middleware.Recoverer)

	// Scores are posted from embedded widgets on any origin.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	r.Group(func(api chi.Router) {
		api.Use(middleware.Timeout(30 * time.Second))

		scores := NewScoreHandler(svc.Scores, log)
		api.Post("/save-score", scores.SaveScore)
		api.Post("/save-score.php", scores.SaveScore)
		api.Get("/quiz-stats", scores.Stats)
		api.Get("/quiz-stats.php", scores.Stats)

		catalog := NewCatalogHandler(svc.Catalog, log)
		api.Get("/quizzes", catalog.List)
		api.Get("/quizzes/{topic}/{quizID}", catalog.Get)
	})

	if svc.Play != nil {
		r.Get("/ws", NewWSHandler(svc.Play, svc.Catalog, log).ServeWS)
	}
	return r
}

func requestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"requestId", middleware.GetReqID(r.Context()),
			)
		})
	}
}
