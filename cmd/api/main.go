package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/erp-backend-go/internal/config"
	"github.com/cmlabs-hris/erp-backend-go/internal/domain/payroll"
	appHTTP "github.com/cmlabs-hris/erp-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/erp-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/erp-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/erp-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/erp-backend-go/internal/pkg/lock"
	"github.com/cmlabs-hris/erp-backend-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/erp-backend-go/internal/repository/postgresql"
	serviceAuth "github.com/cmlabs-hris/erp-backend-go/internal/service/auth"
	payrollService "github.com/cmlabs-hris/erp-backend-go/internal/service/payroll"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logger := appHTTP.NewLogger(cfg.App.Env, cfg.App.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MinConns: cfg.Database.MinConns,
		MaxConns: cfg.Database.MaxConns,
	})
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	appMetrics := metrics.New()
	appMetrics.Registerer().MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var locker payroll.PeriodLocker
	if cfg.Redis.Addr != "" {
		client, err := lock.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Error("connect redis", slog.Any("error", err))
			os.Exit(1)
		}
		defer client.Close()
		locker = lock.NewRedisLocker(client, cfg.Redis.LockTTL)
	} else {
		logger.Warn("REDIS_ADDR not set, payroll period lock is process local")
	}

	userRepo := postgresql.NewUserRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	periodRepo := postgresql.NewPayrollPeriodRepository(db)
	itemRepo := postgresql.NewPayrollItemRepository(db)

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		logger.Error("init jwt", slog.Any("error", err))
		os.Exit(1)
	}

	authService := serviceAuth.NewAuthService(userRepo, JWTService)
	payrollSvc := payrollService.NewPayrollService(
		postgresql.NewTransactor(db),
		periodRepo,
		itemRepo,
		employeeRepo,
		payrollService.NewCalculator(),
		locker,
		appMetrics,
	)
	payrollSvc.WithLogger(logger)

	scheduler := cron.NewScheduler(logger)
	if err := scheduler.Register(cron.StaleRunRecoveryJob(
		payrollSvc, cfg.Payroll.StaleAfter, cfg.Payroll.RecoveryInterval, logger,
	)); err != nil {
		logger.Error("register cron job", slog.Any("error", err))
		os.Exit(1)
	}
	if err := scheduler.Start(ctx); err != nil {
		logger.Error("start scheduler", slog.Any("error", err))
		os.Exit(1)
	}

	authHandler := appHTTP.NewAuthHandler(authService)
	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc)

	router := appHTTP.NewRouter(appHTTP.RouterOptions{
		Logger:            logger,
		Metrics:           appMetrics,
		CORSOrigins:       cfg.App.CORSOrigins,
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		Production:        cfg.App.Env == "production",
	}, JWTService, authHandler, payrollHandler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		scheduler.Stop()
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
