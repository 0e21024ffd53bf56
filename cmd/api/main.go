package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/enzononato/adna-harmony-suite/internal/api/router"
	appconfig "github.com/enzononato/adna-harmony-suite/internal/config"
	"github.com/enzononato/adna-harmony-suite/internal/finance"
	"github.com/enzononato/adna-harmony-suite/internal/history"
	"github.com/enzononato/adna-harmony-suite/internal/notices"
	"github.com/enzononato/adna-harmony-suite/internal/observability/metrics"
	"github.com/enzononato/adna-harmony-suite/internal/patients"
	"github.com/enzononato/adna-harmony-suite/internal/procedures"
	"github.com/enzononato/adna-harmony-suite/internal/schedule"
	"github.com/enzononato/adna-harmony-suite/internal/users"
	"github.com/enzononato/adna-harmony-suite/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting adna-harmony-suite API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	if cfg.AuthJWTSecret == "" {
		logger.Error("AUTH_JWT_SECRET is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// The finance reporter runs its aggregate queries through database/sql.
	sqlDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open sql connection", "error", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
	}

	var presigner patients.Presigner
	if cfg.FilesBucket != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.AWSEndpointOverride != "" {
				o.BaseEndpoint = aws.String(cfg.AWSEndpointOverride)
				o.UsePathStyle = true
			}
		})
		presigner = s3.NewPresignClient(s3Client)
	}

	schedMetrics := metrics.NewSchedulingMetrics(nil)

	// Initialize stores and services
	proceduresStore := procedures.NewStore(pool)
	patientsStore := patients.NewStore(pool)
	fileStore := patients.NewFileStore(pool, presigner, cfg.FilesBucket, cfg.PresignTTL, logger)

	monthCache := schedule.NewMonthCache(redisClient, cfg.MonthCacheTTL)
	planner := schedule.NewPlanner(time.Weekday(cfg.ClinicClosedWeekday))
	scheduleStore := schedule.NewStore(pool)
	scheduleService := schedule.NewService(scheduleStore, proceduresStore, planner, monthCache, schedMetrics, logger)

	historyStore := history.NewStore(pool)
	historySyncer := history.NewSyncer(historyStore, schedMetrics, logger)
	go historySyncer.Run(ctx, cfg.HistorySyncInterval)

	noticesStore := notices.NewStore(pool)
	financeStore := finance.NewStore(pool)
	financeReporter := finance.NewReporter(sqlDB)

	usersStore := users.NewStore(pool)
	authenticator := users.NewAuthenticator(usersStore, cfg.AuthJWTSecret, cfg.TokenTTL, logger)

	// Initialize handlers
	scheduleHandler := schedule.NewHandler(scheduleService, logger)
	proceduresHandler := procedures.NewHandler(proceduresStore, logger)
	patientsHandler := patients.NewHandler(patientsStore, fileStore, logger)
	historyHandler := history.NewHandler(historyStore, historySyncer, logger)
	noticesHandler := notices.NewHandler(noticesStore, logger)
	financeHandler := finance.NewHandler(financeStore, financeReporter, logger)
	usersHandler := users.NewHandler(usersStore, authenticator, logger)

	// Setup router
	routerCfg := &router.Config{
		Logger:             logger,
		ScheduleHandler:    scheduleHandler,
		ProceduresHandler:  proceduresHandler,
		PatientsHandler:    patientsHandler,
		HistoryHandler:     historyHandler,
		NoticesHandler:     noticesHandler,
		FinanceHandler:     financeHandler,
		UsersHandler:       usersHandler,
		Authenticator:      authenticator,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSOrigins,
		LoginRate:          1,
		LoginBurst:         5,
	}
	r := router.New(routerCfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}
