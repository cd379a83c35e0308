package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/jewelmart-backend/api/routes"
	"github.com/angelmondragon/jewelmart-backend/internal/auth"
	"github.com/angelmondragon/jewelmart-backend/internal/cart"
	"github.com/angelmondragon/jewelmart-backend/internal/checkout"
	"github.com/angelmondragon/jewelmart-backend/internal/coupons"
	"github.com/angelmondragon/jewelmart-backend/internal/orders"
	"github.com/angelmondragon/jewelmart-backend/internal/products"
	"github.com/angelmondragon/jewelmart-backend/internal/users"
	"github.com/angelmondragon/jewelmart-backend/pkg/auth/session"
	"github.com/angelmondragon/jewelmart-backend/pkg/config"
	"github.com/angelmondragon/jewelmart-backend/pkg/db"
	"github.com/angelmondragon/jewelmart-backend/pkg/env"
	"github.com/angelmondragon/jewelmart-backend/pkg/logger"
	"github.com/angelmondragon/jewelmart-backend/pkg/metrics"
	"github.com/angelmondragon/jewelmart-backend/pkg/migrate"
	"github.com/angelmondragon/jewelmart-backend/pkg/outbox"
	"github.com/angelmondragon/jewelmart-backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	gdb := dbClient.DB()
	userRepo := users.NewRepository(gdb)
	productRepo := products.NewRepository(gdb)
	cartRepo := cart.NewRepository(gdb)
	orderRepo := orders.NewRepository(gdb)
	emitter := outbox.NewService(outbox.NewRepository(gdb), logg)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		return err
	}
	userService, err := users.NewService(userRepo)
	if err != nil {
		return err
	}
	productService, err := products.NewService(productRepo)
	if err != nil {
		return err
	}
	couponService, err := coupons.NewService(coupons.NewRepository(gdb))
	if err != nil {
		return err
	}
	cartService, err := cart.NewService(cartRepo, dbClient, emitter)
	if err != nil {
		return err
	}
	orderService, err := orders.NewService(orderRepo, dbClient, productRepo, emitter)
	if err != nil {
		return err
	}
	checkoutService, err := checkout.NewService(checkout.Params{
		Tx:       dbClient,
		Carts:    cartRepo,
		Products: productRepo,
		Orders:   orderRepo,
		Coupons:  couponService,
		Outbox:   emitter,
		Metrics:  metrics.NewCheckoutMetrics(reg),
		Logger:   logg,
	})
	if err != nil {
		return err
	}

	handler := routes.NewRouter(cfg, logg, routes.Dependencies{
		DB:             dbClient,
		Redis:          redisClient,
		Sessions:       sessionManager,
		Auth:           authService,
		Users:          userService,
		Products:       productService,
		Coupons:        couponService,
		Cart:           cartService,
		Checkout:       checkoutService,
		Orders:         orderService,
		HTTPMetrics:    metrics.NewHTTPMetrics(reg),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	})

	addr := ":" + env.Get(env.Port, cfg.App.Port)
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(logCtx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
