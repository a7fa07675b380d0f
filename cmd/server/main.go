package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/auth-service/internal/config"
	"github.com/iliyamo/auth-service/internal/database"
	"github.com/iliyamo/auth-service/internal/handler"
	"github.com/iliyamo/auth-service/internal/middleware"
	"github.com/iliyamo/auth-service/internal/queue"
	"github.com/iliyamo/auth-service/internal/repository"
	"github.com/iliyamo/auth-service/internal/router"
	"github.com/iliyamo/auth-service/internal/service"
	"github.com/iliyamo/auth-service/internal/token"
	"github.com/iliyamo/auth-service/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	setupLogger(cfg)

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server stopped")
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.DBMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
	}

	issuer, err := token.NewIssuer(token.Config{
		AccessSecret:  cfg.AccessSecret,
		RefreshSecret: cfg.RefreshSecret,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
		Issuer:        cfg.TokenIssuer,
	})
	if err != nil {
		return err
	}
	refreshVerifier, err := token.NewVerifier(cfg.RefreshSecret, token.KindRefresh, cfg.TokenIssuer)
	if err != nil {
		return err
	}
	accessVerifier, err := token.NewVerifier(cfg.AccessSecret, token.KindAccess, cfg.TokenIssuer)
	if err != nil {
		return err
	}

	var events service.Publisher = service.NopPublisher{}
	if cfg.EventsEnabled {
		events = service.NewAMQPPublisher(cfg.AMQPURL)
	}
	if cfg.AuditConsumer {
		consumer := queue.NewAuditConsumer(cfg.AMQPURL, "")
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("audit consumer stopped")
			}
		}()
	}

	rdb := config.NewRedisClient(ctx, config.LoadRedisConfig())
	if rdb == nil {
		log.Warn().Msg("redis unavailable; rate limiting disabled")
	} else {
		defer rdb.Close()
	}
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	svc := service.NewAuthService(
		repository.NewUserRepo(db),
		utils.NewBcryptHasher(cfg.BcryptCost),
		issuer,
		refreshVerifier,
		events,
	)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log.Logger))

	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, handler.NewAuthHandler(svc, cfg.CookieSecure), limiter, accessVerifier)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func setupLogger(cfg config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.Env == "prod" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
		return
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
}
