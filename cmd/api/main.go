package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/academix/gradebook-api/api/swagger"
	"github.com/academix/gradebook-api/internal/handler"
	"github.com/academix/gradebook-api/internal/middleware"
	"github.com/academix/gradebook-api/internal/repository"
	"github.com/academix/gradebook-api/internal/service"
	"github.com/academix/gradebook-api/pkg/cache"
	"github.com/academix/gradebook-api/pkg/config"
	"github.com/academix/gradebook-api/pkg/database"
	"github.com/academix/gradebook-api/pkg/jobs"
	"github.com/academix/gradebook-api/pkg/logger"
	corsmiddleware "github.com/academix/gradebook-api/pkg/middleware/cors"
	reqidmiddleware "github.com/academix/gradebook-api/pkg/middleware/requestid"
)

// @title Academix Gradebook API
// @version 1.0.0
// @description Multi-tenant school grading and report card service
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	schemeRepo := repository.NewSchemeRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	examRepo := repository.NewExamResultRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	classSubjectRepo := repository.NewClassSubjectRepository(db)
	reportCardRepo := repository.NewReportCardRepository(db)
	transcriptRepo := repository.NewTranscriptRepository(db)
	academicYearRepo := repository.NewAcademicYearRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	notifySvc := service.NewNotificationService(jobs.QueueConfig{
		Workers:    cfg.Notify.Workers,
		MaxRetries: cfg.Notify.MaxRetries,
		RetryDelay: cfg.Notify.RetryDelay,
		Logger:     logr,
	}, logr)
	gradeSvc := service.NewGradeService(submissionRepo, examRepo, schemeRepo, gradeRepo, classSubjectRepo, metricsSvc, validate, logr)
	reportCardSvc := service.NewReportCardService(gradeSvc, gradeRepo, attendanceRepo, reportCardRepo, cacheRepo, notifySvc, metricsSvc, validate, logr, cfg.Grading.ReportCardCacheTTL)
	transcriptSvc := service.NewTranscriptService(gradeRepo, transcriptRepo, studentRepo, cacheRepo, metricsSvc, logr, cfg.Grading.TranscriptCacheTTL)
	schemeSvc := service.NewSchemeService(schemeRepo, validate, logr)
	academicYearSvc := service.NewAcademicYearService(academicYearRepo, validate, logr)
	exportSvc := service.NewExportService(gradeRepo, studentRepo, classSubjectRepo, reportCardRepo, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notifySvc.Start(ctx)
	defer notifySvc.Stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	handler.RegisterRoutes(api, handler.Handlers{
		Auth:         handler.NewAuthHandler(authSvc),
		Scheme:       handler.NewSchemeHandler(schemeSvc),
		AcademicYear: handler.NewAcademicYearHandler(academicYearSvc),
		Grade:        handler.NewGradeHandler(gradeSvc),
		ReportCard:   handler.NewReportCardHandler(reportCardSvc, studentRepo),
		Transcript:   handler.NewTranscriptHandler(transcriptSvc, studentRepo),
		Export:       handler.NewExportHandler(exportSvc, reportCardSvc, studentRepo),
	}, authSvc)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
