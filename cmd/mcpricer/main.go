package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/mcpricing/internal/pricing/application"
	"github.com/wyfcoding/mcpricing/internal/pricing/domain"
	"github.com/wyfcoding/mcpricing/internal/pricing/infrastructure/messaging"
	"github.com/wyfcoding/mcpricing/internal/pricing/infrastructure/persistence/mysql"
	httphandler "github.com/wyfcoding/mcpricing/internal/pricing/interfaces/http"
	"github.com/wyfcoding/mcpricing/pkg/config"
	"github.com/wyfcoding/mcpricing/pkg/logger"
	"github.com/wyfcoding/mcpricing/pkg/metrics"
	"github.com/wyfcoding/mcpricing/pkg/middleware"
	"github.com/wyfcoding/mcpricing/pkg/mq"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "configs/mcpricer/config.toml", "path to config file")
	flag.Parse()

	// 1. Config
	cfg, err := config.Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("load config failed: %v", err))
	}

	// 2. Logger
	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}); err != nil {
		panic(fmt.Sprintf("init logger failed: %v", err))
	}
	ctx := context.Background()

	// 3. Database
	db, err := gorm.Open(gormmysql.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		logger.Fatal(ctx, "connect db failed", "error", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal(ctx, "get sql db failed", "error", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := db.AutoMigrate(&mysql.PricingRunPO{}); err != nil {
		logger.Fatal(ctx, "migrate db failed", "error", err)
	}

	// 4. Infrastructure
	repo := mysql.NewPricingRunRepository(db)

	var publisher domain.EventPublisher
	if cfg.Kafka.Enabled {
		producer, err := mq.NewProducer(mq.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			MaxRetries:   cfg.Kafka.MaxRetries,
			RetryBackoff: cfg.Kafka.RetryBackoff,
		})
		if err != nil {
			logger.Fatal(ctx, "create kafka producer failed", "error", err)
		}
		defer producer.Close()
		publisher = messaging.NewKafkaPublisher(producer)
	}

	// 5. Metrics
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.ServiceName)
		if err := m.Register(); err != nil {
			logger.Fatal(ctx, "register metrics failed", "error", err)
		}
		go func() {
			if err := metrics.StartHTTPServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
				logger.Error(ctx, "metrics server stopped", "error", err)
			}
		}()
	}

	// 6. Application
	engine := domain.NewEngine(cfg.Simulation.Workers)
	appService := application.NewPricingService(engine, repo, publisher, m, application.Defaults{
		Steps:    cfg.Simulation.DefaultSteps,
		Paths:    cfg.Simulation.DefaultPaths,
		MaxPaths: cfg.Simulation.MaxPaths,
	})

	// 7. HTTP
	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.GinRecoveryMiddleware())
	r.Use(middleware.GinLoggingMiddleware())
	r.Use(middleware.GinCORSMiddleware())
	if m != nil {
		r.Use(middleware.GinMetricsMiddleware(m))
	}

	handler := httphandler.NewPricingHandler(appService)
	handler.RegisterRoutes(r)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"service":   cfg.ServiceName,
			"timestamp": time.Now().Unix(),
		})
	})

	httpSrv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info(ctx, "Starting HTTP server", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "http server failed", "error", err)
		}
	}()

	// 8. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Server forced to shutdown", "error", err)
	}

	logger.Info(ctx, "Server exiting")
}
