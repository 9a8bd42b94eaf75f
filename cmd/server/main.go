package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/doodeurim/internal/config"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/db"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/docstore"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/http/api/challenge/endpoints"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/identity"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/progress"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/session"
)

const (
	sessionIdle   = 30 * time.Minute
	sweepInterval = 5 * time.Minute
)

func main() {
	setupLogging(os.Getenv("APP_ENV"))

	cfg, err := config.Load()
	if errors.Is(err, config.ErrConfiguration) {
		log.Error().Err(err).Msg("configuration missing, serving error page only")
		serve(configErrorRouter(), envOr("SERVER_ADDRESS", config.DefaultServerAddress), nil)
		return
	}
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogging(cfg.Environment)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// initialize PostgreSQL
	conn, err := db.Init(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db init")
	}
	defer conn.Close()

	// run pending migrations
	if err := db.RunMigrations(conn, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}
	store := db.NewStore(conn)

	bus, err := InitBus(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("notification bus")
	}
	defer bus.Close()

	text, err := InitContent(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("content")
	}
	if err := cfg.Challenge.Validate(text.Days()); err != nil {
		log.Fatal().Err(err).Msg("content does not fit the challenge month")
	}

	issuer := identity.NewIssuer(cfg.JWTSecret)
	hub := session.NewHub(ctx, progress.Config{
		AppID:               cfg.AppID,
		InstanceKey:         cfg.Challenge.InstanceKey(),
		Days:                text.Days(),
		MaxDeclarationCount: cfg.Challenge.MaxDeclarationCount,
		RequirePrayer:       cfg.Challenge.RequirePrayer,
		DateGated:           cfg.Challenge.DateGated,
		Year:                cfg.Challenge.Year,
		Month:               cfg.Challenge.Month,
		Location:            cfg.Challenge.Location,
		InitialAuthToken:    cfg.InitialAuthToken,
	}, issuer, store, docstore.NewDocuments(store, bus))
	defer hub.Close()
	go sweep(ctx, hub)

	// set up gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	RegisterRoutes(r, cfg, hub, issuer, store, endpoints.Calendar{Rules: cfg.Challenge, Text: text}, LoadTemplates())

	log.Info().
		Str("app", cfg.AppID).
		Str("instance", cfg.Challenge.InstanceKey()).
		Int("days", text.Days()).
		Msg("challenge ready")
	serve(r, cfg.ServerAddress, cancel)
}

func setupLogging(env string) {
	zerolog.TimeFieldFormat = time.RFC3339
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}

// configErrorRouter makes no network calls of its own; every path gets the
// fixed error page.
func configErrorRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.SetHTMLTemplate(LoadTemplates())
	r.NoRoute(endpoints.ConfigErrorHandler())
	return r
}

func sweep(ctx context.Context, hub *session.Hub) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			hub.Sweep(sessionIdle)
		}
	}
}

// serve runs until SIGINT/SIGTERM, then shuts down within 10s.
func serve(handler http.Handler, addr string, onStop func()) {
	srv := &http.Server{Addr: addr, Handler: handler}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	if onStop != nil {
		onStop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
