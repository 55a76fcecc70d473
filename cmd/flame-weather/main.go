package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpapi "github.com/flame-software/flame-weather/internal/api/http"
	"github.com/flame-software/flame-weather/internal/app"
	"github.com/flame-software/flame-weather/internal/config"
	"github.com/flame-software/flame-weather/internal/location"
	"github.com/flame-software/flame-weather/internal/scheduler"
	"github.com/flame-software/flame-weather/internal/search"
	"github.com/flame-software/flame-weather/internal/state"
	"github.com/flame-software/flame-weather/internal/store"
	"github.com/flame-software/flame-weather/internal/weather"
	"github.com/flame-software/flame-weather/internal/widget"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Shared HTTP client for outbound calls.
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	// Widget cache, the only cross-process shared resource.
	cache, err := store.Open(cfg.CachePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open widget cache")
	}
	defer cache.Close()

	// Positioning: the static feed when configured, IP geolocation as
	// fallback. Without a static fix the provider reports unavailable and
	// resolution goes straight to the fallback.
	var sources []location.FixSource
	if !cfg.StaticFix.IsZero() {
		sources = append(sources, location.NewStaticSource(cfg.StaticFix))
	}
	provider := location.NewProvider(location.DefaultSubscribeOptions(), sources...)
	ipResolver := location.NewIPResolver(httpClient, cfg.UserAgent)
	coordinator := location.NewCoordinator(provider, ipResolver, cfg.ResolveDeadline)

	fetcher := weather.NewClient(httpClient, cfg.UserAgent)
	geocoder := search.NewOpenMeteoGeocoder(httpClient)

	st := state.New()
	a := app.New(app.Options{
		Resolver: coordinator,
		Fetcher:  fetcher,
		State:    st,
		Geocoder: geocoder,
		Debounce: cfg.Debounce,
		Lang:     cfg.Lang,
	})
	defer a.Close()

	// Background widget refresh.
	refresher := scheduler.NewRefresher(fetcher, cache, widget.LogNotifier(), a.Lang)
	sched := scheduler.New(refresher, a.RefreshTarget, cfg.RefreshInterval, online)
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}
	defer sched.Stop()

	// First resolution-and-fetch in the background so startup is not held
	// hostage by the positioning deadline.
	go a.RefreshAuto(context.Background())

	fapp := fiber.New(fiber.Config{
		AppName:               "flame-weather",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	fapp.Use(logger.New())
	fapp.Use(recover.New())

	fapp.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "flame-weather",
		})
	})

	httpapi.RegisterRoutes(fapp, a)

	go func() {
		if err := fapp.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("fiber server stopped")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := fapp.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
}

// online is the scheduler's connectivity precondition: a cheap TCP probe to a
// public resolver.
func online() bool {
	conn, err := net.DialTimeout("tcp", "1.1.1.1:53", 2*time.Second)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
