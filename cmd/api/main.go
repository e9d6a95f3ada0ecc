package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/medhq/hospital-api/config"
	"github.com/medhq/hospital-api/internal/email"
	"github.com/medhq/hospital-api/internal/handler"
	adminhandler "github.com/medhq/hospital-api/internal/handler/admin"
	appointmenthandler "github.com/medhq/hospital-api/internal/handler/appointment"
	authhandler "github.com/medhq/hospital-api/internal/handler/auth"
	dashboardhandler "github.com/medhq/hospital-api/internal/handler/dashboard"
	doctorhandler "github.com/medhq/hospital-api/internal/handler/doctor"
	patienthandler "github.com/medhq/hospital-api/internal/handler/patient"
	"github.com/medhq/hospital-api/internal/middleware"
	"github.com/medhq/hospital-api/internal/repository/postgres"
	"github.com/medhq/hospital-api/internal/repository/redis"
	"github.com/medhq/hospital-api/internal/router"
	adminservice "github.com/medhq/hospital-api/internal/service/admin"
	appointmentservice "github.com/medhq/hospital-api/internal/service/appointment"
	auditservice "github.com/medhq/hospital-api/internal/service/audit"
	authservice "github.com/medhq/hospital-api/internal/service/auth"
	dashboardservice "github.com/medhq/hospital-api/internal/service/dashboard"
	doctorservice "github.com/medhq/hospital-api/internal/service/doctor"
	patientservice "github.com/medhq/hospital-api/internal/service/patient"
	"github.com/medhq/hospital-api/pkg/auth"
	"github.com/medhq/hospital-api/pkg/logger"
	"github.com/medhq/hospital-api/pkg/metrics"
	"github.com/medhq/hospital-api/pkg/security"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		Pretty:     cfg.Log.Pretty,
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	tokenRepo, err := redis.NewTokenRepository(cfg.Redis.URL)
	if err != nil {
		log.Fatal(err, "failed to connect to redis")
	}

	patientRepo := postgres.NewPatientRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	adminRepo := postgres.NewAdminRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	auditRepo := postgres.NewAuditRepository(db)

	m := metrics.New("hospital_api")
	hasher := security.NewBcryptHasher(0)
	jwtSvc := auth.NewJWTService(cfg.JWT)
	emailSvc := email.NewService(cfg.SMTP, m)

	auditSvc := auditservice.NewService(auditRepo, log, m)
	patientSvc := patientservice.NewService(patientRepo, appointmentRepo, hasher, auditSvc)
	doctorSvc := doctorservice.NewService(doctorRepo, appointmentRepo, hasher, auditSvc)
	adminSvc := adminservice.NewService(adminRepo, hasher, auditSvc)
	appointmentSvc := appointmentservice.NewService(appointmentRepo, patientRepo, doctorRepo, emailSvc, auditSvc, log)
	dashboardSvc := dashboardservice.NewService(patientRepo, doctorRepo, adminRepo, appointmentRepo)
	authSvc := authservice.NewService(patientRepo, doctorRepo, adminRepo, tokenRepo, patientSvc, jwtSvc, hasher)

	authMW := middleware.NewAuthMiddleware(authSvc)

	r := router.New(
		authMW,
		authhandler.NewHandler(authSvc),
		handler.NewHandler(db),
		router.Config{
			RateLimit:      middleware.RateLimiterConfig{RPS: cfg.RateLimit.RPS, Burst: cfg.RateLimit.Burst},
			CORS:           corsConfig(cfg.Server.AllowedOrigins),
			RequestTimeout: cfg.Server.RequestTimeout,
		},
		patienthandler.NewHandler(patientSvc, authMW),
		doctorhandler.NewHandler(doctorSvc, authMW),
		adminhandler.NewHandler(adminSvc),
		appointmenthandler.NewHandler(appointmentSvc),
		dashboardhandler.NewHandler(dashboardSvc),
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		log.WithFields(map[string]interface{}{"addr": srv.Addr}).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err, "server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error(err, "forced shutdown")
	}
	log.Info("server stopped")
}

func corsConfig(origins []string) middleware.CORSConfig {
	cfg := middleware.DefaultCORSConfig()
	if len(origins) > 0 {
		cfg.AllowOrigins = origins
	}
	return cfg
}
