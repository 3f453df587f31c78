package http

import (
	"log/slog"
	"os"

	"github.com/campushq/attendance-backend-go/internal/handler/http/middleware"
	"github.com/campushq/attendance-backend-go/internal/pkg/jwt"
	"github.com/campushq/attendance-backend-go/internal/pkg/ratelimit"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(
	jwtService jwt.Service,
	limiter *ratelimit.Limiter,
	geofenceHandler GeofenceHandler,
	sessionHandler SessionHandler,
	attendanceHandler AttendanceHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "campushq-attendance"),
		slog.String("version", "v1.0.0"),
		slog.String("env", os.Getenv("APP_ENV")),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/geofences", func(r chi.Router) {
				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Post("/", geofenceHandler.Create)
					r.Put("/{id}", geofenceHandler.Update)
					r.Post("/{id}/activate", geofenceHandler.Activate)
					r.Post("/{id}/deactivate", geofenceHandler.Deactivate)
				})

				r.Get("/", geofenceHandler.List)
				r.Get("/{id}", geofenceHandler.Get)
				r.Get("/{id}/check", geofenceHandler.CheckPoint)
			})

			r.Route("/sessions", func(r chi.Router) {
				// Lecturer or admin
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireLecturer)
					r.Post("/", sessionHandler.Start)
					r.Put("/{id}", sessionHandler.Update)
					r.Post("/{id}/end", sessionHandler.End)
					r.Post("/{id}/cancel", sessionHandler.Cancel)
					r.Get("/statistics", sessionHandler.Statistics)
					r.Get("/recent/{lecturerID}", sessionHandler.Recent)
					r.Get("/{sessionID}/records", attendanceHandler.SessionRoster)
				})

				r.Get("/", sessionHandler.List)
				r.Get("/active", sessionHandler.ListActive)
				r.Get("/{id}", sessionHandler.Get)
			})

			r.Route("/attendance", func(r chi.Router) {
				// Student check-in, throttled per user
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireStudent)
					r.With(middleware.CheckInRateLimit(limiter)).Post("/check-in", attendanceHandler.CheckIn)
					r.Get("/my-history", attendanceHandler.MyHistory)
				})

				// Lecturer or admin
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireLecturer)
					r.Post("/override", attendanceHandler.Override)
					r.Get("/", attendanceHandler.List)
					r.Get("/statistics", attendanceHandler.Statistics)
					r.Get("/students/{studentID}/history", attendanceHandler.StudentHistory)
				})

				r.Get("/{id}", attendanceHandler.Get)
				r.Get("/{id}/overrides", attendanceHandler.RecordOverrides)
			})
		})
	})

	return r
}
