package location

import (
	"sync"
	"time"

	"github.com/flame-software/flame-weather/internal/geo"
)

// StaticSource emits a fixed coordinate on the subscription interval. It
// serves deployments where the host has no positioning hardware but a known
// mount point (a kiosk, a home server), configured through the environment.
type StaticSource struct {
	coord geo.Coordinate

	mu   sync.Mutex
	stop chan struct{}
}

func NewStaticSource(coord geo.Coordinate) *StaticSource {
	return &StaticSource{coord: coord}
}

func (s *StaticSource) Name() string { return "static" }

func (s *StaticSource) Available() bool {
	return s.coord.Valid() && !s.coord.IsZero()
}

func (s *StaticSource) Start(opts SubscribeOptions, onFix func(geo.Coordinate)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stop != nil {
		return nil
	}

	interval := opts.MinInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}

	stop := make(chan struct{})
	s.stop = stop

	go func() {
		// First fix immediately, then on the interval.
		onFix(s.coord)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				onFix(s.coord)
			}
		}
	}()

	return nil
}

func (s *StaticSource) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}
