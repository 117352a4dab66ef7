package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/bugtracker/internal/api/http"
	"github.com/spec-kit/bugtracker/internal/api/http/handlers"
	"github.com/spec-kit/bugtracker/internal/auth"
	"github.com/spec-kit/bugtracker/internal/config"
	"github.com/spec-kit/bugtracker/internal/observability"
	"github.com/spec-kit/bugtracker/internal/persistence"
	"github.com/spec-kit/bugtracker/internal/repository"
	"github.com/spec-kit/bugtracker/internal/service"
	"github.com/spec-kit/bugtracker/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	txManager := repository.NewTxManager(pool)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{UserRepo: userRepo})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		Tx:         txManager,
	})
	commentService := service.NewCommentService(service.CommentDependencies{
		CommentRepo: commentRepo,
		TicketRepo:  ticketRepo,
		Tx:          txManager,
	})
	dashboardService := service.NewDashboardService(service.DashboardDependencies{
		TicketRepo: ticketRepo,
		UserRepo:   userRepo,
		Cache:      redis.Client,
	}, logger)
	sweepService := service.NewSweepService(ticketRepo, logger)

	thresholds := service.SweepThresholds{
		Resolve: cfg.Sweep.ResolveAfter(),
		Close:   cfg.Sweep.CloseAfter(),
	}
	sweepWorker := worker.NewSweepWorker(sweepService, thresholds, cfg.Sweep.Interval(), logger)
	sweepWorker.Start(ctx)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Comments:       handlers.NewCommentsHandler(commentService),
		Meta:           handlers.NewMetaHandler(dashboardService),
		Ops:            handlers.NewOpsHandler(sweepService, thresholds),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
