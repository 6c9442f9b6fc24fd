package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmehra2102/prod-golang-projects/docintake/internal/config"
	v1 "github.com/dmehra2102/prod-golang-projects/docintake/internal/handler/v1"
	"github.com/dmehra2102/prod-golang-projects/docintake/internal/matcher"
	"github.com/dmehra2102/prod-golang-projects/docintake/internal/repository/postgres"
	"github.com/dmehra2102/prod-golang-projects/docintake/internal/review"
	"github.com/dmehra2102/prod-golang-projects/docintake/internal/service"
	"github.com/dmehra2102/prod-golang-projects/docintake/internal/vectorizer"
	"github.com/dmehra2102/prod-golang-projects/docintake/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/docintake/pkg/database"
	"github.com/dmehra2102/prod-golang-projects/docintake/pkg/logger"
	"github.com/dmehra2102/prod-golang-projects/docintake/pkg/metrics"
	"github.com/dmehra2102/prod-golang-projects/docintake/pkg/tracer"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zlog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("building logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	tp, err := tracer.Init(cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			zlog.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return err
	}
	if err := database.Migrate(db, zlog); err != nil {
		return err
	}

	collector := metrics.NewCollector("docintake")
	if sqlDB, derr := db.DB(); derr == nil {
		go func() {
			ticker := time.NewTicker(15 * time.Second)
			defer ticker.Stop()
			for range ticker.C {
				collector.DBConnections.Set(float64(sqlDB.Stats().OpenConnections))
			}
		}()
	}

	// Repositories
	batchRepo := postgres.NewBatchRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	documentRepo := postgres.NewDocumentRepository(db)
	auditRepo := postgres.NewAuditRepository(db)
	userRepo := postgres.NewUserRepository(db)

	// External collaborators
	var indexer vectorizer.Indexer = vectorizer.Disabled{}
	if cfg.Vectorizer.Enabled {
		indexer = vectorizer.NewHTTPIndexer(cfg.Vectorizer)
	}
	adapter := matcher.NewNameMatcher(patientRepo)

	// Services
	jwtManager := auth.NewJWTManager(cfg.JWT)
	auditSvc := service.NewAuditService(auditRepo, zlog)
	defer auditSvc.Shutdown()

	authSvc := service.NewAuthService(userRepo, jwtManager, auditSvc, zlog)
	decisionSvc := service.NewDecisionService(batchRepo, patientRepo, documentRepo, indexer, auditSvc, zlog)
	bulkSvc := service.NewBulkService(batchRepo, decisionSvc, auditSvc, cfg.Review, zlog)
	statsSvc := service.NewStatsService(batchRepo)
	searchSvc := service.NewSearchService(patientRepo)
	classifier := review.NewClassifier(cfg.Review)
	intakeSvc := service.NewIntakeService(batchRepo, adapter, classifier, decisionSvc, auditSvc, zlog)

	// HTTP
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery(), v1.RequestID(), v1.RequestLogger(zlog), v1.Metrics(collector))

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": cfg.App.Version})
	})
	engine.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	authHandler := v1.NewAuthHandler(authSvc)
	reviewHandler := v1.NewReviewHandler(batchRepo, decisionSvc, bulkSvc, statsSvc, searchSvc, intakeSvc, collector)
	v1.RegisterRoutes(engine.Group("/api/v1"), jwtManager, authHandler, reviewHandler)

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("environment", cfg.App.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		zlog.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	zlog.Info("server stopped")
	return nil
}
