// Package scheduler re-runs the weather fetch on a fixed cadence and
// publishes the result to the widget cache.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog/log"

	"github.com/flame-software/flame-weather/internal/geo"
	"github.com/flame-software/flame-weather/internal/i18n"
	"github.com/flame-software/flame-weather/internal/store"
	"github.com/flame-software/flame-weather/internal/weather"
	"github.com/flame-software/flame-weather/internal/widget"
)

var (
	// ErrNoCoordinate means the job was scheduled without a usable target.
	// That is a configuration error, terminal, and no fetch is attempted.
	ErrNoCoordinate = errors.New("refresh scheduled without a coordinate")

	// ErrRetryable wraps transient failures (weather service hiccups); the
	// next cycle simply tries again.
	ErrRetryable = errors.New("retryable refresh failure")
)

// Refresher performs one background refresh: fetch the forecast, persist the
// widget fields, signal a redraw.
type Refresher struct {
	fetcher  weather.Fetcher
	cache    *store.WidgetCache
	notifier widget.Notifier
	lang     func() i18n.Lang
}

// NewRefresher builds a refresher. lang supplies the label language per
// cycle, following runtime switches; nil defaults to Chinese.
func NewRefresher(fetcher weather.Fetcher, cache *store.WidgetCache, notifier widget.Notifier, lang func() i18n.Lang) *Refresher {
	if lang == nil {
		lang = func() i18n.Lang { return i18n.LangZH }
	}
	return &Refresher{fetcher: fetcher, cache: cache, notifier: notifier, lang: lang}
}

// Run executes one refresh for the coordinate. A zero coordinate is terminal;
// fetch and persistence failures are retryable.
func (r *Refresher) Run(ctx context.Context, coord geo.Coordinate, locationName string) error {
	if coord.IsZero() || !coord.Valid() {
		return ErrNoCoordinate
	}

	snap, err := r.fetcher.Fetch(ctx, coord, locationName, r.lang())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRetryable, err)
	}

	if err := r.cache.PutWidgetState(ctx, snap.CurrentTemp, snap.LocationName, snap.SymbolCode); err != nil {
		return fmt.Errorf("%w: %v", ErrRetryable, err)
	}

	if err := r.notifier.Redraw(ctx); err != nil {
		log.Warn().Err(err).Msg("widget redraw signal failed")
	}
	return nil
}

// Target supplies the coordinate and display name for the next refresh. The
// app updates it when the user pins a manual location, so background cycles
// follow the active coordinate instead of a stale one.
type Target func() (geo.Coordinate, string)

// Scheduler wraps gocron around a Refresher. The job runs roughly every
// refresh interval, only while the connectivity probe reports online, and is
// registered under a fixed tag so re-scheduling replaces the previous job
// rather than duplicating it.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher *Refresher
	target    Target
	interval  time.Duration
	online    func() bool
}

const jobTag = "weather-refresh"

// New creates a Scheduler. online may be nil, meaning always online.
func New(refresher *Refresher, target Target, interval time.Duration, online func() bool) *Scheduler {
	if interval <= 0 {
		interval = 20 * time.Minute
	}
	if online == nil {
		online = func() bool { return true }
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		refresher: refresher,
		target:    target,
		interval:  interval,
		online:    online,
	}
}

// Start registers the periodic job and starts the underlying scheduler.
// Calling Start again replaces the existing job's parameters.
func (s *Scheduler) Start() error {
	// Replace, never duplicate, a job already registered under our tag.
	_ = s.scheduler.RemoveByTag(jobTag)

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 20
	}

	_, err := s.scheduler.Every(minutes).Minutes().Tag(jobTag).Do(s.runOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// runOnce is one scheduled cycle: skip while offline, otherwise refresh the
// current target.
func (s *Scheduler) runOnce() {
	if !s.online() {
		log.Debug().Msg("scheduler: offline, skipping refresh")
		return
	}

	coord, name := s.target()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := s.refresher.Run(ctx, coord, name)
	switch {
	case err == nil:
		log.Info().Str("coord", coord.Key()).Msg("scheduler: refresh completed")
	case errors.Is(err, ErrNoCoordinate):
		log.Error().Msg("scheduler: no coordinate configured, refresh is a no-op until one is set")
	default:
		log.Warn().Err(err).Msg("scheduler: refresh failed, will retry next cycle")
	}
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
