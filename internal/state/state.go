// Package state owns the mutable presentation state: the current weather
// snapshot, status text, location mode and search candidates. All mutation
// happens by whole-value replacement under one lock; readers get copies and
// observers get change notifications, never shared mutable structures.
package state

import (
	"sync"

	"github.com/flame-software/flame-weather/internal/geo"
	"github.com/flame-software/flame-weather/internal/search"
	"github.com/flame-software/flame-weather/internal/weather"
)

// Change identifies which part of the state was replaced.
type Change int

const (
	ChangeSnapshot Change = iota
	ChangeStatus
	ChangeMode
	ChangeCandidates
)

// State is the single owner of presentation state.
type State struct {
	mu         sync.RWMutex
	snapshot   *weather.Snapshot
	status     string
	mode       geo.Mode
	coord      geo.Coordinate
	candidates []search.Candidate
	subs       []chan Change
}

func New() *State {
	return &State{}
}

// SetSnapshot replaces the snapshot wholesale together with the coordinate it
// was fetched for. A nil snapshot is ignored: a failed fetch must never clear
// data that is already on screen.
func (s *State) SetSnapshot(snap *weather.Snapshot, coord geo.Coordinate) {
	if snap == nil {
		return
	}
	s.mu.Lock()
	s.snapshot = snap
	s.coord = coord
	s.mu.Unlock()
	s.notify(ChangeSnapshot)
}

// SetSnapshotIfAutomatic publishes a snapshot from the automatic refresh
// path. While a manual location is pinned the replacement is refused, so a
// slow automatic fetch finishing after a selection cannot overwrite the
// pinned coordinate. Reports whether the snapshot was published.
func (s *State) SetSnapshotIfAutomatic(snap *weather.Snapshot, coord geo.Coordinate) bool {
	if snap == nil {
		return false
	}
	s.mu.Lock()
	if s.mode == geo.ModeManual {
		s.mu.Unlock()
		return false
	}
	s.snapshot = snap
	s.coord = coord
	s.mu.Unlock()
	s.notify(ChangeSnapshot)
	return true
}

// Snapshot returns the current snapshot, or nil if none has been produced.
func (s *State) Snapshot() *weather.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// ActiveCoordinate returns the coordinate the current snapshot belongs to.
func (s *State) ActiveCoordinate() geo.Coordinate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.coord
}

func (s *State) SetStatus(status string) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
	s.notify(ChangeStatus)
}

func (s *State) Status() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *State) SetMode(mode geo.Mode) {
	s.mu.Lock()
	s.mode = mode
	s.mu.Unlock()
	s.notify(ChangeMode)
}

func (s *State) Mode() geo.Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// SetCandidates replaces the visible search candidate list.
func (s *State) SetCandidates(cands []search.Candidate) {
	s.mu.Lock()
	s.candidates = cands
	s.mu.Unlock()
	s.notify(ChangeCandidates)
}

// Candidates returns a copy of the current candidate list.
func (s *State) Candidates() []search.Candidate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]search.Candidate, len(s.candidates))
	copy(out, s.candidates)
	return out
}

// Subscribe returns a channel receiving a Change for every replacement. Slow
// subscribers miss intermediate changes rather than blocking writers.
func (s *State) Subscribe() <-chan Change {
	ch := make(chan Change, 8)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

func (s *State) notify(c Change) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- c:
		default:
		}
	}
}
