package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"storefront/docs"
	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/handler"
	"storefront/internal/kv"
	"storefront/internal/logging"
	"storefront/internal/metrics"
	"storefront/internal/moderation"
	"storefront/internal/realtime"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"
	"storefront/internal/view"
)

// @title Storefront API
// @version 1.0
// @description Product catalog, carts, session and token authentication, and live updates.
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg, log); err != nil {
		log.WithError(err).Error("server stopped")
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN, log)
	if err != nil {
		return fmt.Errorf("database init: %w", err)
	}
	if err := db.Migrate(gormDB, cfg.ResetDB, log); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	store, closeStore, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	// Repositories
	userRepo := repository.NewUserRepository(gormDB)
	productRepo := repository.NewProductRepository(gormDB)
	cartRepo := repository.NewCartRepository(gormDB)
	messageRepo := repository.NewMessageRepository(gormDB)

	// Auth
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	tokenStore := auth.NewTokenStore(store)
	sessions := auth.NewSessionStore(store, cfg.SessionSecret, cfg.SessionTTL)
	provider := auth.NewProvider(sessions, jwtService, tokenStore, log)

	moderator, err := moderation.New(cfg.CensoredWords(), '*')
	if err != nil {
		return fmt.Errorf("build moderator: %w", err)
	}

	// Services
	authService := service.NewAuthService(userRepo, jwtService, sessions, tokenStore)
	userService := service.NewUserService(userRepo)
	productService := service.NewProductService(productRepo)
	cartService := service.NewCartService(cartRepo, productRepo)
	chatService := service.NewChatService(messageRepo, moderator, cfg.ChatHistorySize)

	m := metrics.New()
	hub := realtime.NewHub(productService, chatService, log, m)

	renderer, err := view.New()
	if err != nil {
		return err
	}

	e := echo.New()
	e.HideBanner = true
	e.Renderer = renderer

	router.Register(e, cfg, log, provider, hub, m, router.Handlers{
		Auth: handler.NewAuthHandler(authService, provider, handler.CookieConfig{
			Secure:     cfg.CookieSecure,
			SessionTTL: cfg.SessionTTL,
			TokenTTL:   cfg.TokenTTL,
		}),
		Users:    handler.NewUserHandler(userService),
		Products: handler.NewProductHandler(productService, hub, log),
		Carts:    handler.NewCartHandler(cartService),
		Chat:     handler.NewChatHandler(chatService),
	})

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.ServerPort
		log.WithField("addr", addr).Info("server listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// openStore connects to Redis, or uses the in-process store when REDIS_ADDR=memory.
func openStore(cfg *config.Config, log *logrus.Logger) (kv.Store, func(), error) {
	if cfg.RedisAddr == "memory" {
		log.Warn("using in-process session store; sessions are lost on restart")
		mem, err := kv.NewMemory()
		if err != nil {
			return nil, nil, err
		}
		return mem, func() { mem.Close() }, nil
	}

	client := kv.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
	}
	return client, func() { client.Close() }, nil
}
