// Package app wires location resolution, place search and the weather fetch
// into one interactive flow and owns the rules between them: manual
// selections pin the coordinate, automatic refreshes respect that pin, and a
// failed fetch never wipes data already on screen.
package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/flame-software/flame-weather/internal/geo"
	"github.com/flame-software/flame-weather/internal/i18n"
	"github.com/flame-software/flame-weather/internal/location"
	"github.com/flame-software/flame-weather/internal/search"
	"github.com/flame-software/flame-weather/internal/state"
	"github.com/flame-software/flame-weather/internal/weather"
)

// Resolver is the location resolution entry point (see location.Coordinator).
type Resolver interface {
	Resolve(ctx context.Context) (geo.Coordinate, error)
	CancelInFlight()
}

// App drives the resolution-and-aggregation pipeline.
type App struct {
	resolver  Resolver
	fetcher   weather.Fetcher
	st        *state.State
	debouncer *search.Debouncer

	mu         sync.RWMutex
	lang       i18n.Lang
	autoCancel context.CancelFunc
}

// Options configures New.
type Options struct {
	Resolver Resolver
	Fetcher  weather.Fetcher
	State    *state.State
	Geocoder search.Geocoder
	Debounce time.Duration // 0 means the debouncer default
	Lang     i18n.Lang
}

func New(opts Options) *App {
	a := &App{
		resolver: opts.Resolver,
		fetcher:  opts.Fetcher,
		st:       opts.State,
		lang:     opts.Lang,
	}
	a.debouncer = search.NewDebouncer(opts.Geocoder, opts.Debounce, a.st.SetCandidates)
	return a
}

// Lang returns the active display language.
func (a *App) Lang() i18n.Lang {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lang
}

// SetLang switches the display language for subsequent fetches and statuses.
func (a *App) SetLang(lang i18n.Lang) {
	a.mu.Lock()
	a.lang = lang
	a.mu.Unlock()
}

// State exposes the presentation state for read-side consumers.
func (a *App) State() *state.State {
	return a.st
}

// Search feeds one query edit into the debouncer; results land in the state's
// candidate list asynchronously.
func (a *App) Search(query string) {
	a.debouncer.OnQueryChanged(query, a.Lang())
}

// Select pins the candidate's coordinate as the manual location and fetches
// its forecast directly, bypassing resolution: the user already supplied an
// exact coordinate. Any automatic resolution in flight is cancelled.
func (a *App) Select(ctx context.Context, c search.Candidate) {
	a.resolver.CancelInFlight()
	a.cancelAuto()
	a.debouncer.Cancel()
	a.st.SetCandidates(nil)
	a.st.SetMode(geo.ModeManual)

	lang := a.Lang()
	a.st.SetStatus(i18n.StatusText(lang, i18n.StatusLocatedVia, c.Name))

	a.fetchInto(ctx, c.Coordinate, c.Name)
}

// ResetLocation drops the manual pin and resolves automatically again.
func (a *App) ResetLocation(ctx context.Context) {
	lang := a.Lang()
	a.st.SetMode(geo.ModeAutomatic)
	a.st.SetStatus(i18n.StatusText(lang, i18n.StatusSwitchingAuto))
	a.RefreshAuto(ctx)
}

// RefreshAuto resolves a coordinate and fetches its forecast. While the user
// holds a manual location the result is discarded; the pinned coordinate
// stays active until reset.
func (a *App) RefreshAuto(ctx context.Context) {
	if a.st.Mode() == geo.ModeManual {
		return
	}

	// Register a cancel handle so a manual selection can abort this attempt
	// mid-fetch, not just mid-resolution.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.mu.Lock()
	if a.autoCancel != nil {
		a.autoCancel()
	}
	a.autoCancel = cancel
	lang := a.lang
	a.mu.Unlock()

	coord, err := a.resolver.Resolve(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		if errors.Is(err, location.ErrNoLocation) {
			a.st.SetStatus(i18n.StatusText(lang, i18n.StatusNoLocation))
		} else {
			a.st.SetStatus(i18n.StatusText(lang, i18n.StatusFetchFailed))
		}
		return
	}

	// The user may have pinned a place while resolution was running.
	if a.st.Mode() == geo.ModeManual {
		log.Debug().Str("coord", coord.Key()).Msg("discarding automatic fix, manual location active")
		return
	}

	snap, err := a.fetcher.Fetch(ctx, coord, "", lang)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		a.st.SetStatus(i18n.StatusText(lang, i18n.StatusFetchFailed))
		return
	}

	// A selection may also have landed while the fetch was in flight; the
	// state gate decides under its own lock.
	if !a.st.SetSnapshotIfAutomatic(snap, coord) {
		log.Debug().Str("coord", coord.Key()).Msg("discarding automatic snapshot, manual location active")
		return
	}
	a.st.SetStatus(i18n.StatusText(lang, i18n.StatusLocated))
}

// cancelAuto aborts any automatic refresh currently in flight.
func (a *App) cancelAuto() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.autoCancel != nil {
		a.autoCancel()
		a.autoCancel = nil
	}
}

// fetchInto fetches a snapshot for a manually selected place and publishes
// it. On failure only the status text changes; the previous snapshot
// survives.
func (a *App) fetchInto(ctx context.Context, coord geo.Coordinate, name string) bool {
	lang := a.Lang()
	snap, err := a.fetcher.Fetch(ctx, coord, name, lang)
	if err != nil {
		a.st.SetStatus(i18n.StatusText(lang, i18n.StatusFetchFailed))
		return false
	}
	a.st.SetSnapshot(snap, coord)
	return true
}

// RefreshTarget is the scheduler's view of the active coordinate: whatever
// location the snapshot currently reflects.
func (a *App) RefreshTarget() (geo.Coordinate, string) {
	coord := a.st.ActiveCoordinate()
	name := ""
	if snap := a.st.Snapshot(); snap != nil {
		name = snap.LocationName
	}
	return coord, name
}

// Close aborts any in-flight refresh and releases the debouncer's pending
// work.
func (a *App) Close() {
	a.cancelAuto()
	a.debouncer.Cancel()
}
