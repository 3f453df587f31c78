package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/campushq/attendance-backend-go/internal/config"
	appHTTP "github.com/campushq/attendance-backend-go/internal/handler/http"
	"github.com/campushq/attendance-backend-go/internal/pkg/cron"
	"github.com/campushq/attendance-backend-go/internal/pkg/database"
	"github.com/campushq/attendance-backend-go/internal/pkg/jwt"
	"github.com/campushq/attendance-backend-go/internal/pkg/ratelimit"
	"github.com/campushq/attendance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/campushq/attendance-backend-go/internal/service/attendance"
	geofenceService "github.com/campushq/attendance-backend-go/internal/service/geofence"
	sessionService "github.com/campushq/attendance-backend-go/internal/service/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	geofenceRepo := postgresql.NewGeofenceAreaRepository(db)
	sessionRepo := postgresql.NewSessionRepository(db)
	recordRepo := postgresql.NewAttendanceRecordRepository(db)
	overrideRepo := postgresql.NewAttendanceOverrideRepository(db)
	assignmentRegistry := postgresql.NewCourseAssignmentRegistry(db)
	enrollmentLookup := postgresql.NewEnrollmentLookup(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	var limiter *ratelimit.Limiter
	if cfg.Redis.Addr != "" {
		limiter, err = ratelimit.New(
			cfg.Redis.Addr,
			cfg.Redis.Password,
			cfg.Redis.CheckInLimit,
			time.Duration(cfg.Redis.CheckInWindowMs)*time.Millisecond,
		)
		if err != nil {
			log.Fatal("Failed to connect to Redis:", err)
		}
		defer limiter.Close()
	}

	geofenceSvc := geofenceService.NewGeofenceService(geofenceRepo)
	sessionSvc := sessionService.NewSessionService(sessionRepo, assignmentRegistry, geofenceRepo, enrollmentLookup)
	attendanceSvc := attendanceService.NewAttendanceService(
		db,
		recordRepo,
		overrideRepo,
		sessionRepo,
		assignmentRegistry,
		geofenceRepo,
		enrollmentLookup,
	)

	geofenceHandler := appHTTP.NewGeofenceHandler(geofenceSvc)
	sessionHandler := appHTTP.NewSessionHandler(sessionSvc)
	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)

	scheduler := cron.NewScheduler()
	cron.NewSessionJobs(sessionSvc).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		JWTService,
		limiter,
		geofenceHandler,
		sessionHandler,
		attendanceHandler,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
