package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/neonshoplabs/neonshop-backend/api/routes"
	"github.com/neonshoplabs/neonshop-backend/internal/auth"
	"github.com/neonshoplabs/neonshop-backend/internal/cart"
	"github.com/neonshoplabs/neonshop-backend/internal/categories"
	"github.com/neonshoplabs/neonshop-backend/internal/guestcart"
	"github.com/neonshoplabs/neonshop-backend/internal/orders"
	"github.com/neonshoplabs/neonshop-backend/internal/products"
	"github.com/neonshoplabs/neonshop-backend/internal/support"
	"github.com/neonshoplabs/neonshop-backend/internal/users"
	"github.com/neonshoplabs/neonshop-backend/internal/wishlist"
	"github.com/neonshoplabs/neonshop-backend/pkg/auth/session"
	"github.com/neonshoplabs/neonshop-backend/pkg/config"
	"github.com/neonshoplabs/neonshop-backend/pkg/db"
	"github.com/neonshoplabs/neonshop-backend/pkg/logger"
	"github.com/neonshoplabs/neonshop-backend/pkg/mailer"
	"github.com/neonshoplabs/neonshop-backend/pkg/metrics"
	"github.com/neonshoplabs/neonshop-backend/pkg/migrate"
	"github.com/neonshoplabs/neonshop-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

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

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	guestStorage, err := guestcart.NewRedisStorage(redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create guest cart storage", err)
		os.Exit(1)
	}
	guestCartStore, err := guestcart.NewStore(guestcart.StoreParams{
		Storage: guestStorage,
		KeyName: cfg.GuestCart.KeyName,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create guest cart store", err)
		os.Exit(1)
	}

	mail, err := mailer.New(mailer.LogSender{Logg: logg}, cfg.Mail, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create mailer", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())
	productRepo := products.NewRepository(dbClient.DB())
	categoryRepo := categories.NewRepository(dbClient.DB())
	cartRepo := cart.NewRepository(dbClient.DB())
	wishlistRepo := wishlist.NewRepository(dbClient.DB())
	orderRepo := orders.NewRepository(dbClient.DB())
	supportRepo := support.NewRepository(dbClient.DB())

	userService, err := users.NewService(users.ServiceParams{Repo: userRepo})
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}
	productService, err := products.NewService(products.ServiceParams{Repo: productRepo})
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}
	categoryService, err := categories.NewService(categories.ServiceParams{Repo: categoryRepo})
	if err != nil {
		logg.Error(context.Background(), "failed to create category service", err)
		os.Exit(1)
	}
	cartService, err := cart.NewService(cart.ServiceParams{Repo: cartRepo, Products: productRepo})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}
	wishlistService, err := wishlist.NewService(wishlist.ServiceParams{Repo: wishlistRepo, Products: productRepo})
	if err != nil {
		logg.Error(context.Background(), "failed to create wishlist service", err)
		os.Exit(1)
	}
	orderService, err := orders.NewService(orders.ServiceParams{
		Repo:     orderRepo,
		Carts:    cartRepo,
		Products: productRepo,
		Tx:       dbClient,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}
	supportService, err := support.NewService(support.ServiceParams{Repo: supportRepo})
	if err != nil {
		logg.Error(context.Background(), "failed to create support service", err)
		os.Exit(1)
	}
	authService, err := auth.NewService(auth.ServiceParams{
		Users:     userRepo,
		Sessions:  sessionManager,
		Carts:     cartService,
		GuestCart: guestCartStore,
		Tokens:    redisClient,
		Mail:      mail,
		JWT:       cfg.JWT,
		Password:  cfg.Password,
		TokenTTLs: cfg.Tokens,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	httpMetrics := metrics.NewHTTPMetrics("api")

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			httpMetrics,
			sessionManager,
			authService,
			productService,
			categoryService,
			guestCartStore,
			cartService,
			wishlistService,
			orderService,
			supportService,
			userService,
		),
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-runCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
			os.Exit(1)
		}
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	}
}
