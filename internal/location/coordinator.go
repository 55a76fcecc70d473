package location

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/flame-software/flame-weather/internal/geo"
)

// ErrNoLocation means both the fix feed and the IP fallback came up empty.
// The caller surfaces it as status text; retrying is the scheduler's job, on
// its own cadence.
var ErrNoLocation = errors.New("no location available")

// FixProvider is the continuous-fix side of resolution (see Provider).
type FixProvider interface {
	Start(onFix func(geo.Coordinate)) error
	Stop()
	Latest() (geo.Coordinate, bool)
}

// IPFallback is the single-shot fallback side (see IPResolver).
type IPFallback interface {
	Resolve(ctx context.Context) (geo.Coordinate, bool)
}

// Coordinator resolves a coordinate by racing the fix feed against a deadline
// and falling back to IP geolocation. At most one attempt is in flight per
// instance; starting a new one cancels the previous attempt.
type Coordinator struct {
	provider FixProvider
	fallback IPFallback
	deadline time.Duration

	mu      sync.Mutex
	current *attempt
}

// attempt identifies one in-flight resolution so a finished attempt only
// clears itself, never a newer one that superseded it.
type attempt struct {
	cancel context.CancelFunc
}

// NewCoordinator builds a coordinator. deadline bounds the wait for a first
// fix; 8 seconds by default.
func NewCoordinator(provider FixProvider, fallback IPFallback, deadline time.Duration) *Coordinator {
	if deadline <= 0 {
		deadline = 8 * time.Second
	}
	return &Coordinator{provider: provider, fallback: fallback, deadline: deadline}
}

// Resolve waits for a first fix until the deadline, preferring it over IP
// geolocation because positioning hardware is generally more accurate. When
// the feed is unavailable or silent past the deadline, the IP fallback's
// answer (or its absence) is final. The fix subscription is stopped on every
// exit path.
func (c *Coordinator) Resolve(ctx context.Context) (geo.Coordinate, error) {
	ctx, att := c.begin(ctx)
	defer c.end(att)

	first := make(chan geo.Coordinate, 1)
	err := c.provider.Start(func(fix geo.Coordinate) {
		select {
		case first <- fix:
		default:
		}
	})

	if err == nil {
		defer c.provider.Stop()

		timer := time.NewTimer(c.deadline)
		defer timer.Stop()

		select {
		case fix := <-first:
			log.Info().Str("coord", fix.Key()).Msg("resolved via fix feed")
			return fix, nil
		case <-ctx.Done():
			return geo.Coordinate{}, ctx.Err()
		case <-timer.C:
			log.Debug().Dur("deadline", c.deadline).Msg("no fix before deadline, trying ip fallback")
		}
	} else if !errors.Is(err, ErrUnavailable) {
		return geo.Coordinate{}, err
	}

	if coord, ok := c.fallback.Resolve(ctx); ok {
		log.Info().Str("coord", coord.Key()).Msg("resolved via ip fallback")
		return coord, nil
	}
	if ctx.Err() != nil {
		return geo.Coordinate{}, ctx.Err()
	}
	return geo.Coordinate{}, ErrNoLocation
}

// CancelInFlight aborts any resolution attempt currently running, e.g. when
// the user picks a place manually and the automatic result no longer matters.
func (c *Coordinator) CancelInFlight() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil {
		c.current.cancel()
		c.current = nil
	}
}

// begin cancels any previous attempt and registers this one.
func (c *Coordinator) begin(parent context.Context) (context.Context, *attempt) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil {
		c.current.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	att := &attempt{cancel: cancel}
	c.current = att
	return ctx, att
}

func (c *Coordinator) end(att *attempt) {
	c.mu.Lock()
	defer c.mu.Unlock()

	att.cancel()
	if c.current == att {
		c.current = nil
	}
}
