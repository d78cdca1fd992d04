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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/campus-placement-api/api/swagger"
	"github.com/noah-isme/campus-placement-api/internal/dto"
	"github.com/noah-isme/campus-placement-api/internal/handler"
	"github.com/noah-isme/campus-placement-api/internal/middleware"
	"github.com/noah-isme/campus-placement-api/internal/repository"
	"github.com/noah-isme/campus-placement-api/internal/service"
	"github.com/noah-isme/campus-placement-api/pkg/cache"
	"github.com/noah-isme/campus-placement-api/pkg/config"
	"github.com/noah-isme/campus-placement-api/pkg/database"
	"github.com/noah-isme/campus-placement-api/pkg/events"
	"github.com/noah-isme/campus-placement-api/pkg/jobs"
	"github.com/noah-isme/campus-placement-api/pkg/logger"
	"github.com/noah-isme/campus-placement-api/pkg/mailer"
	corsmiddleware "github.com/noah-isme/campus-placement-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/campus-placement-api/pkg/middleware/requestid"
	"github.com/noah-isme/campus-placement-api/pkg/storage"
)

// @title Campus Placement API
// @version 1.0.0
// @description Student placement portal: job postings, eligibility, applications, placements and exports
// @BasePath /
// @schemes http https
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

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close() //nolint:errcheck

	if cfg.Database.AutoMigrate {
		if err := repository.Migrate(ctx, db, logr); err != nil {
			return fmt.Errorf("migrate schema: %w", err)
		}
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.NATS.URL != "" {
		natsPublisher, err := events.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.SubjectPrefix, logr)
		if err != nil {
			logr.Warn("nats unavailable, domain events disabled", zap.Error(err))
		} else {
			publisher = natsPublisher
		}
	}
	defer publisher.Close() //nolint:errcheck

	uploads, err := storage.NewLocalStorage(cfg.Storage.Dir)
	if err != nil {
		return fmt.Errorf("prepare upload storage: %w", err)
	}
	exportStore, err := storage.NewLocalStorage(cfg.Exports.Dir)
	if err != nil {
		return fmt.Errorf("prepare export storage: %w", err)
	}

	profileRepo := repository.NewProfileRepository(db)
	adminRoleRepo := repository.NewAdminRoleRepository(db)
	jobRepo := repository.NewJobRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	placementRepo := repository.NewPlacementRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	otpRepo := repository.NewOTPRepository(cacheRepo)

	validate := dto.NewValidator()
	metrics := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Jobs.CacheTTL, logr, cfg.Jobs.CacheEnabled)

	mailQueue := jobs.NewQueue("mail", service.NewMailJobHandler(mailer.NewSMTPSender(cfg.SMTP, logr)), jobs.QueueConfig{
		Workers:    cfg.Mail.Workers,
		MaxRetries: cfg.Mail.Retries,
		RetryDelay: 2 * time.Second,
		Logger:     logr,
		OnGiveUp: func(job jobs.Job, err error) {
			metrics.MailDropped()
			logr.Error("verification mail dropped", zap.String("job_id", job.ID), zap.Error(err))
		},
	})
	mailQueue.Start(ctx)
	defer mailQueue.Stop()

	fileSvc := service.NewFileService(uploads, storage.NewSignedURLSigner(cfg.Storage.SignedURLSecret, cfg.Storage.SignedURLTTL), service.FileServiceConfig{
		MaxSizeBytes: cfg.Storage.MaxFileSizeBytes,
		AllowedMIMEs: cfg.Storage.AllowedMIMEs,
		URLPrefix:    cfg.APIPrefix + "/files",
	}, logr)
	authSvc := service.NewAuthService(otpRepo, profileRepo, mailQueue, auditRepo, validate, logr, service.AuthConfig{
		TokenSecret:   cfg.JWT.Secret,
		TokenExpiry:   cfg.JWT.Expiration,
		Issuer:        cfg.JWT.Issuer,
		CodeTTL:       cfg.OTP.TTL,
		CodeLength:    cfg.OTP.Length,
		MaxAttempts:   cfg.OTP.MaxAttempts,
		AllowedDomain: cfg.OTP.AllowedEmailDomain,
	})
	resolver := service.NewAccessResolver(profileRepo, adminRoleRepo, logr)
	profileSvc := service.NewProfileService(profileRepo, fileSvc, validate, logr)
	jobSvc := service.NewJobService(jobRepo, cacheSvc, fileSvc, publisher, metrics, validate, logr)
	applicationSvc := service.NewApplicationService(applicationRepo, jobRepo, profileRepo, publisher, metrics, validate, logr)
	placementSvc := service.NewPlacementService(placementRepo, fileSvc, publisher, validate, logr)
	adminRoleSvc := service.NewAdminRoleService(adminRoleRepo, profileRepo, validate, logr)
	exportSvc := service.NewExportService(applicationSvc, exportStore, storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.TTL), fileSvc, metrics, service.ExportConfig{
		URLPrefix: cfg.APIPrefix + "/exports",
		ResultTTL: cfg.Exports.TTL,
	}, validate, logr)

	maintenance, err := service.NewMaintenanceService(jobSvc, exportSvc, service.MaintenanceConfig{
		DeadlineSweep: cfg.Cron.DeadlineSweep,
		ExportCleanup: cfg.Cron.ExportCleanup,
		ExportTTL:     cfg.Exports.TTL,
	}, logr)
	if err != nil {
		return err
	}
	maintenance.Start()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())

	system := handler.NewSystemHandler(metrics, map[string]handler.Pinger{
		"postgres": handler.PingFunc(db.PingContext),
		"redis":    cacheRepo,
	})
	r.GET("/health", system.Health)
	r.GET("/ready", system.Ready)
	r.GET("/metrics", system.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	routes := &handler.Routes{
		Tokens:       authSvc,
		Principals:   resolver,
		Audit:        auditRepo,
		Logger:       logr,
		Auth:         handler.NewAuthHandler(authSvc, profileSvc),
		Profiles:     handler.NewProfileHandler(profileSvc, fileSvc),
		Jobs:         handler.NewJobHandler(jobSvc, fileSvc),
		Applications: handler.NewApplicationHandler(applicationSvc),
		Placements:   handler.NewPlacementHandler(placementSvc, fileSvc),
		Roles:        handler.NewAdminRoleHandler(adminRoleSvc),
		Exports:      handler.NewExportHandler(exportSvc),
		Files:        handler.NewFileHandler(fileSvc),
		System:       system,
	}
	routes.RegisterRoutes(r.Group(cfg.APIPrefix))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logr.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	maintenance.Stop(shutdownCtx)
	return srv.Shutdown(shutdownCtx)
}
