package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/tutorhub/tutoring-api/api/swagger"
	"github.com/tutorhub/tutoring-api/internal/handler"
	"github.com/tutorhub/tutoring-api/internal/middleware"
	"github.com/tutorhub/tutoring-api/internal/models"
	"github.com/tutorhub/tutoring-api/internal/repository"
	"github.com/tutorhub/tutoring-api/internal/service"
	"github.com/tutorhub/tutoring-api/pkg/cache"
	"github.com/tutorhub/tutoring-api/pkg/config"
	"github.com/tutorhub/tutoring-api/pkg/database"
	"github.com/tutorhub/tutoring-api/pkg/logger"
	"github.com/tutorhub/tutoring-api/pkg/mailer"
	corsmiddleware "github.com/tutorhub/tutoring-api/pkg/middleware/cors"
	reqidmiddleware "github.com/tutorhub/tutoring-api/pkg/middleware/requestid"
	"github.com/tutorhub/tutoring-api/pkg/storage"
)

// @title Tutoring API
// @version 1.0.0
// @description Tutoring coordination service: accounts, recurring lessons, tasks, messaging
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

	ctx := context.Background()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			logr.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, calendar caching disabled", zap.Error(err))
		redisClient = nil
	}

	store, err := storage.NewLocalStorage(cfg.Uploads.Dir)
	if err != nil {
		logr.Fatal("failed to prepare uploads directory", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Uploads.SignedURLSecret, cfg.Uploads.SignedURLTTL)

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	var mail mailer.Mailer
	if cfg.Mail.APIKey != "" {
		mail = mailer.NewSendgrid(cfg.Mail)
	} else {
		logr.Info("mail api key missing, notifications disabled")
	}

	notifications := service.NewNotificationService(mail, cfg.Notifications, logr)
	notifications.Start(ctx)
	defer notifications.Stop()

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	adminSvc := service.NewAdminService(userRepo, notifications, logr)
	lessonSvc := service.NewLessonService(lessonRepo, userRepo, cacheRepo, notifications, metricsSvc, validate, logr, cfg.Lessons)
	taskSvc := service.NewTaskService(taskRepo, userRepo, store, signer, notifications, validate, logr)
	messageSvc := service.NewMessageService(messageRepo, userRepo, validate, logr)
	reportSvc := service.NewReportService(taskRepo, userRepo, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	adminHandler := handler.NewAdminHandler(adminSvc)
	lessonHandler := handler.NewLessonHandler(lessonSvc)
	taskHandler := handler.NewTaskHandler(taskSvc, cfg.Uploads.MaxFileSizeBytes)
	messageHandler := handler.NewMessageHandler(messageSvc)
	fileHandler := handler.NewFileHandler(taskSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

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
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		version, err := database.MigrationVersion(c.Request.Context(), db)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "migration_version": version})
	})

	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
	}

	admin := api.Group("/admin", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/pending", adminHandler.ListPending)
		admin.GET("/users", adminHandler.ListUsers)
		admin.POST("/approve/:id", adminHandler.Approve)
		admin.DELETE("/reject/:id", adminHandler.Reject)
	}

	lessons := api.Group("/lessons", middleware.JWT(authSvc))
	{
		lessons.GET("/events",
			middleware.RequireRoles(models.RoleTeacher, models.RoleStudent),
			lessonHandler.Events)
		lessons.POST("/assign/:student_id",
			middleware.RequireRoles(models.RoleTeacher),
			lessonHandler.Assign)
		lessons.DELETE("/events/:event_id",
			middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin),
			lessonHandler.DeleteInstance)
	}

	tasks := api.Group("/tasks", middleware.JWT(authSvc))
	{
		tasks.GET("",
			middleware.RequireRoles(models.RoleTeacher, models.RoleStudent),
			taskHandler.List)
		tasks.POST("",
			middleware.RequireRoles(models.RoleTeacher),
			taskHandler.Assign)
		tasks.POST("/:id/submit",
			middleware.RequireRoles(models.RoleStudent),
			taskHandler.Submit)
		tasks.POST("/:id/grade",
			middleware.RequireRoles(models.RoleTeacher),
			taskHandler.Grade)
	}

	messages := api.Group("/messages", middleware.JWT(authSvc),
		middleware.RequireRoles(models.RoleTeacher, models.RoleStudent))
	{
		messages.GET("/:peer_id", messageHandler.Thread)
		messages.POST("/:peer_id", messageHandler.Send)
	}

	reports := api.Group("/reports", middleware.JWT(authSvc))
	{
		reports.GET("/grades/:student_id", reportHandler.Grades)
	}

	// signed tokens carry their own auth
	api.GET("/files/:token", fileHandler.Download)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
