// Package location resolves the device position from a continuous fix feed
// with an IP-geolocation fallback.
package location

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/flame-software/flame-weather/internal/geo"
)

// ErrUnavailable is returned when no positioning source can deliver fixes,
// typically because location permission or hardware is absent. It is a
// recognized fallback trigger, not a hard failure.
var ErrUnavailable = errors.New("no positioning source available")

// SubscribeOptions bound how often a source may report.
type SubscribeOptions struct {
	MinInterval  time.Duration
	MinDistanceM float64
}

// DefaultSubscribeOptions matches the update bounds used on-device:
// at most one fix per 5 seconds and per 100 meters moved.
func DefaultSubscribeOptions() SubscribeOptions {
	return SubscribeOptions{MinInterval: 5 * time.Second, MinDistanceM: 100}
}

// FixSource is one continuous positioning feed (satellite, network, or a
// synthetic feed in tests). Start registers the callback; Stop unregisters it
// and must be safe to call when not started.
type FixSource interface {
	Name() string
	Available() bool
	Start(opts SubscribeOptions, onFix func(geo.Coordinate)) error
	Stop()
}

// Provider selects the best available fix source and tracks the most recent
// fix. Sources are tried in the order given; satellite feeds should come
// before network ones.
type Provider struct {
	sources []FixSource
	opts    SubscribeOptions

	mu     sync.Mutex
	active FixSource
	latest *geo.Coordinate
}

func NewProvider(opts SubscribeOptions, sources ...FixSource) *Provider {
	return &Provider{sources: sources, opts: opts}
}

// Start subscribes to the first available source. Every fix overwrites
// Latest and is forwarded to onFix. Returns ErrUnavailable when no source
// can deliver.
func (p *Provider) Start(onFix func(geo.Coordinate)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.active != nil {
		return nil
	}

	for _, src := range p.sources {
		if !src.Available() {
			continue
		}

		err := src.Start(p.opts, func(fix geo.Coordinate) {
			p.mu.Lock()
			f := fix
			p.latest = &f
			p.mu.Unlock()

			log.Debug().Str("source", src.Name()).Str("coord", fix.Key()).Msg("fix received")
			if onFix != nil {
				onFix(fix)
			}
		})
		if err != nil {
			log.Warn().Err(err).Str("source", src.Name()).Msg("fix source failed to start")
			continue
		}

		p.active = src
		return nil
	}

	return ErrUnavailable
}

// Stop unregisters the active source. Calling Stop when not started is a
// no-op.
func (p *Provider) Stop() {
	p.mu.Lock()
	src := p.active
	p.active = nil
	p.mu.Unlock()

	if src != nil {
		src.Stop()
	}
}

// Latest returns the most recent fix, if any arrived since Start.
func (p *Provider) Latest() (geo.Coordinate, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.latest == nil {
		return geo.Coordinate{}, false
	}
	return *p.latest, true
}
