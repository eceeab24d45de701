package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"socialnet/chat-service/internal/auth"
	"socialnet/chat-service/internal/metrics"
)

type RouterOptions struct {
	RequestTimeout time.Duration
	CORSOrigins    []string
}

func NewRouter(h *Handler, verifier *auth.Verifier, m *metrics.Metrics, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(m.Middleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", m.Handler())

	r.Group(func(pr chi.Router) {
		pr.Use(verifier.Middleware)
		if opts.RequestTimeout > 0 {
			pr.Use(middleware.Timeout(opts.RequestTimeout))
		}

		pr.Route("/chats", func(rc chi.Router) {
			rc.Get("/", h.ListChats)
			rc.Post("/", h.CreateChat)

			rc.Route("/{chatID}", func(rr chi.Router) {
				rr.Get("/", h.GetChat)
				rr.Get("/messages", h.GetMessages)
				rr.Post("/messages", h.SendMessage)
				rr.Patch("/messages/read", h.MarkRead)
			})
		})
	})

	return r
}

// RequestLogger writes one access log line per request.
func RequestLogger(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			fields := logrus.Fields{
				"request_id": middleware.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"duration":   time.Since(start).String(),
			}

			entry := logger.WithFields(fields)
			switch {
			case ww.Status() >= http.StatusInternalServerError:
				entry.Error("HTTP request")
			case ww.Status() >= http.StatusBadRequest:
				entry.Warn("HTTP request")
			default:
				entry.Info("HTTP request")
			}
		})
	}
}
