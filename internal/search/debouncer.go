package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/flame-software/flame-weather/internal/i18n"
)

// Debouncer converts a stream of query edits into rate-limited geocoding
// lookups. Each edit restarts a quiet-period timer; only when the user pauses
// does a lookup go out, and only the most recent lookup may publish its
// result. Superseded lookups are cancelled, aborting their in-flight HTTP
// request rather than just ignoring the response.
type Debouncer struct {
	geocoder Geocoder
	quiet    time.Duration
	timeout  time.Duration
	publish  func([]Candidate)

	mu       sync.Mutex
	timer    *time.Timer
	inflight context.CancelFunc
	gen      uint64
}

// NewDebouncer builds a debouncer publishing candidate lists through publish.
// quiet defaults to 500ms.
func NewDebouncer(geocoder Geocoder, quiet time.Duration, publish func([]Candidate)) *Debouncer {
	if quiet <= 0 {
		quiet = 500 * time.Millisecond
	}
	return &Debouncer{
		geocoder: geocoder,
		quiet:    quiet,
		timeout:  10 * time.Second,
		publish:  publish,
	}
}

// OnQueryChanged is called for every edit of the search text. A blank query
// clears the candidate list immediately and issues no lookup.
func (d *Debouncer) OnQueryChanged(query string, lang i18n.Lang) {
	d.mu.Lock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	gen := d.gen

	if strings.TrimSpace(query) == "" {
		if d.inflight != nil {
			d.inflight()
			d.inflight = nil
		}
		d.mu.Unlock()

		d.publish(nil)
		return
	}

	d.timer = time.AfterFunc(d.quiet, func() {
		d.lookup(gen, query, lang)
	})
	d.mu.Unlock()
}

// Cancel drops any pending timer and aborts the in-flight lookup. Used on
// shutdown and when the user selects a candidate.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.inflight != nil {
		d.inflight()
		d.inflight = nil
	}
}

func (d *Debouncer) lookup(gen uint64, query string, lang i18n.Lang) {
	d.mu.Lock()
	if gen != d.gen {
		// A newer edit arrived while the timer fired.
		d.mu.Unlock()
		return
	}
	if d.inflight != nil {
		d.inflight()
	}
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	d.inflight = cancel
	d.mu.Unlock()

	defer cancel()

	results := d.geocoder.Search(ctx, query, lang)

	d.mu.Lock()
	stale := gen != d.gen || ctx.Err() == context.Canceled
	if !stale {
		d.inflight = nil
	}
	d.mu.Unlock()

	if stale {
		return
	}
	d.publish(results)
}
