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

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/errgroup"

	"qr-menu/internal/config"
	"qr-menu/internal/connections/database"
	"qr-menu/internal/connections/rabbitmq"
	"qr-menu/internal/handlers"
	"qr-menu/internal/hub"
	"qr-menu/internal/logger"
	"qr-menu/internal/repository"
	"qr-menu/internal/service"
)

func main() {
	cfgPath := flag.String("config", "", "path to YAML config (default: config.yaml)")
	port := flag.Int("port", 0, "http port (overrides config)")
	flag.Parse()

	lg := logger.New("qr-menu")

	if *cfgPath == "" {
		p, err := config.Find()
		if err != nil {
			fmt.Fprintln(os.Stderr, "no config file found; pass --config")
			os.Exit(2)
		}
		*cfgPath = p
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		lg.Error("config_load_failed", err, map[string]any{"path": *cfgPath})
		os.Exit(1)
	}
	if *port != 0 {
		cfg.HTTP.Port = *port
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		lg.Error("db_connect_failed", err, nil)
		os.Exit(1)
	}
	defer pool.Close()
	lg.Info("db_connected", map[string]any{
		"host": cfg.Database.Host, "database": cfg.Database.Database,
	})

	rmq, err := rabbitmq.Dial(cfg.RabbitMQ)
	if err != nil {
		lg.Error("rabbitmq_connect_failed", err, nil)
		os.Exit(1)
	}
	defer rmq.Close()
	lg.Info("rabbitmq_connected", map[string]any{
		"host": cfg.RabbitMQ.Host, "vhost": cfg.RabbitMQ.VHost,
	})

	h := hub.New(logger.New("sync-hub"))
	bridge := hub.NewBridge(rmq, h, logger.New("hub-bridge"))

	ordersRepo := repository.NewOrdersPG(pool)
	specialsRepo := repository.NewSpecialsPG(pool)

	orderSvc := service.NewOrderService(ordersRepo, service.MultiPublisher{h, bridge}, logger.New("order-service"))
	specialSvc := service.NewSpecialService(specialsRepo, logger.New("special-service"))

	healthy := func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		if err := rmq.Ping(); err != nil {
			return fmt.Errorf("rabbitmq: %w", err)
		}
		return nil
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	handlers.New(orderSvc, specialSvc, healthy, logger.New("http")).Register(e)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return bridge.Run(gctx) })
	g.Go(func() error {
		err := e.Start(fmt.Sprintf(":%d", cfg.HTTP.Port))
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer scancel()
		return e.Shutdown(sctx)
	})

	lg.Info("service_started", map[string]any{"port": cfg.HTTP.Port})
	if err := g.Wait(); err != nil {
		lg.Error("fatal", err, nil)
		os.Exit(1)
	}
	lg.Info("graceful_shutdown", nil)
}
