package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/coaching-center-api/api/swagger"
	"github.com/noah-isme/coaching-center-api/internal/handler"
	"github.com/noah-isme/coaching-center-api/internal/middleware"
	"github.com/noah-isme/coaching-center-api/internal/repository"
	"github.com/noah-isme/coaching-center-api/internal/service"
	"github.com/noah-isme/coaching-center-api/pkg/cache"
	"github.com/noah-isme/coaching-center-api/pkg/config"
	"github.com/noah-isme/coaching-center-api/pkg/database"
	"github.com/noah-isme/coaching-center-api/pkg/export"
	"github.com/noah-isme/coaching-center-api/pkg/jobs"
	"github.com/noah-isme/coaching-center-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/coaching-center-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/coaching-center-api/pkg/middleware/requestid"
	"github.com/noah-isme/coaching-center-api/pkg/storage"
)

// @title Coaching Center API
// @version 1.0.0
// @description Back office for coaching centers: admissions, timetabling, attendance, exams, fees and reports.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricsSvc := service.NewMetricsService()
	validate := service.NewValidator()

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	batchRepo := repository.NewBatchRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	examRepo := repository.NewExamRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	reportRepo := repository.NewReportRepository(db)

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.DefaultTTL, logr, cfg.Cache.Enabled && cacheRepo != nil)

	slotInterval := cfg.Schedule.SlotInterval
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
		SingleSession:      cfg.JWT.SingleSession,
	})
	userSvc := service.NewUserService(userRepo, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, batchRepo, validate, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, batchRepo, slotInterval, validate, logr)
	roomSvc := service.NewRoomService(roomRepo, batchRepo, slotInterval, validate, logr)
	batchSvc := service.NewBatchService(batchRepo, roomRepo, teacherRepo, slotInterval, validate, logr).WithMetrics(metricsSvc)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, studentRepo, batchRepo, validate, logr)
	examSvc := service.NewExamService(examRepo, batchRepo, studentRepo, validate, logr)
	paymentSvc := service.NewPaymentService(paymentRepo, studentRepo, teacherRepo, cacheSvc, validate, logr)
	documentSvc := service.NewDocumentService(documentRepo, batchRepo, validate, logr)
	analyticsSvc := service.NewAnalyticsService(analyticsRepo, cacheSvc, metricsSvc, logr)
	dashboardSvc := service.NewDashboardService(analyticsRepo, cacheSvc, metricsSvc, logr, service.DashboardServiceConfig{CacheTTL: cfg.Cache.DefaultTTL})

	fileStore, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare export storage", zap.Error(err))
	}
	exportSvc := service.NewExportService(service.ExportSources{
		Finance:    analyticsRepo,
		Students:   studentRepo,
		Attendance: attendanceRepo,
		Results:    examRepo,
	}, fileStore, storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL), service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Reports.SignedURLTTL,
	}, logr, export.NewCSVExporter(), export.NewPDFExporter())

	worker := service.NewReportWorker(reportRepo, exportSvc, metricsSvc, cfg.Reports.WorkerRetries, logr)
	queue := jobs.NewQueue("reports", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Reports.WorkerConcurrency,
		MaxRetries: cfg.Reports.WorkerRetries,
		RetryDelay: 2 * time.Second,
		Logger:     logr,
		OnDone:     worker.Done,
	})
	reportSvc := service.NewReportService(reportRepo, examRepo, queue, exportSvc, validate, logr, service.ReportServiceConfig{
		ResultTTL:       cfg.Reports.SignedURLTTL,
		CleanupInterval: cfg.Reports.CleanupInterval,
	})
	if cfg.Reports.Enabled {
		queue.Start(ctx)
		defer queue.Stop()
		if recovered := reportSvc.RecoverPendingJobs(ctx); recovered > 0 {
			logr.Info("requeued pending exports", zap.Int("count", recovered))
		}
		reportSvc.StartCleanup(ctx)
	}

	checks := map[string]handler.ReadinessCheck{"postgres": db.PingContext}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, cfg.Log.SkipPaths...))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc, "/metrics"))
	r.Use(middleware.WithResponseMeta())

	limiter := middleware.NewLoginLimiter(cfg.RateLimit.LoginPerMinute, cfg.RateLimit.LoginBurst, cfg.RateLimit.IdleTTL, metricsSvc)
	registerRoutes(r, cfg.APIPrefix, handlers{
		auth:       handler.NewAuthHandler(authSvc),
		users:      handler.NewUserHandler(userSvc),
		students:   handler.NewStudentHandler(studentSvc),
		teachers:   handler.NewTeacherHandler(teacherSvc),
		rooms:      handler.NewRoomHandler(roomSvc),
		batches:    handler.NewBatchHandler(batchSvc),
		attendance: handler.NewAttendanceHandler(attendanceSvc),
		exams:      handler.NewExamHandler(examSvc),
		payments:   handler.NewPaymentHandler(paymentSvc),
		documents:  handler.NewDocumentHandler(documentSvc),
		analytics:  handler.NewAnalyticsHandler(analyticsSvc),
		dashboard:  handler.NewDashboardHandler(dashboardSvc),
		reports:    handler.NewReportHandler(reportSvc, logr),
		metrics:    handler.NewMetricsHandler(metricsSvc, checks),
	}, routeDeps{
		jwt:          middleware.JWT(authSvc),
		loginLimiter: limiter.Middleware(),
		audit:        userRepo,
		logger:       logr,
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
