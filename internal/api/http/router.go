package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	auth "github.com/mind-engage/examgrader/internal/auth/middleware"
	"github.com/mind-engage/examgrader/internal/bank"
	"github.com/mind-engage/examgrader/internal/exam"
	"github.com/mind-engage/examgrader/internal/grading"
	"github.com/mind-engage/examgrader/internal/rbac"
	"github.com/mind-engage/examgrader/internal/storage"
)

// Deps is everything the router serves.
type Deps struct {
	Service     *exam.Service
	Bank        *bank.Bank
	Grader      grading.Grader
	Resolver    exam.Resolver
	Blobs       storage.BlobStore
	Auth        *auth.AuthService
	CORSOrigins []string
	GuestLogin  bool
	Logger      *slog.Logger

	Ready func(ctx context.Context) error // nil means always ready
	Now   func() time.Time
}

func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, RequestLogger(d.Logger), middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(d.Auth))
	if d.GuestLogin {
		r.Post("/auth/guest", auth.GuestLoginHandler(d.Auth))
	}

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(d.Auth))

		pr.With(rbac.Require(rbac.PermEvaluateRun)).
			Post("/evaluate", EvaluateHandler(d.Bank, d.Grader, d.Resolver))

		pr.With(rbac.Require(rbac.PermTestGenerate)).
			Post("/tests", GenerateTestHandler(d.Service))
		pr.With(rbac.Require(rbac.PermTestView)).
			Get("/tests/{testID}", GetTestHandler(d.Service))
		pr.With(rbac.Require(rbac.PermAnswerSubmit)).
			Post("/tests/{testID}/questions/{questionID}/answer", AnswerHandler(d.Service))
		pr.With(rbac.RequireAny(rbac.PermResultsView, rbac.PermResultsViewAll)).
			Get("/tests/{testID}/results", ResultsHandler(d.Service))
		pr.With(rbac.Require(rbac.PermResultsExport)).
			Post("/tests/{testID}/report", CreateReportHandler(d.Service, d.Blobs, d.Now))

		pr.With(rbac.Require(rbac.PermResultsExport)).
			Route("/reports", func(rr chi.Router) { MountReports(rr, d.Blobs) })
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.Ready != nil {
			if err := d.Ready(r.Context()); err != nil {
				d.Logger.WarnContext(r.Context(), "not ready", "err", err)
				http.Error(w, "not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	return r
}

// RequestLogger writes one structured line per request.
func RequestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			level := slog.LevelInfo
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			}
			log.Log(r.Context(), level, "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"duration", time.Since(start).String(),
				"bytes", ww.BytesWritten(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
