package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/flame-software/flame-weather/internal/geo"
	"github.com/flame-software/flame-weather/internal/i18n"
	"github.com/flame-software/flame-weather/internal/location"
	"github.com/flame-software/flame-weather/internal/search"
	"github.com/flame-software/flame-weather/internal/state"
	"github.com/flame-software/flame-weather/internal/weather"
)

type stubResolver struct {
	mu        sync.Mutex
	coord     geo.Coordinate
	err       error
	cancelled int
}

func (r *stubResolver) Resolve(ctx context.Context) (geo.Coordinate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.coord, r.err
}

func (r *stubResolver) CancelInFlight() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelled++
}

type stubFetcher struct {
	mu       sync.Mutex
	err      error
	lastLang i18n.Lang
}

func (f *stubFetcher) Fetch(ctx context.Context, coord geo.Coordinate, name string, lang i18n.Lang) (*weather.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLang = lang
	if f.err != nil {
		return nil, f.err
	}
	return &weather.Snapshot{LocationName: name, CurrentTemp: "21.3°C"}, nil
}

type nopGeocoder struct{}

func (nopGeocoder) Search(ctx context.Context, query string, lang i18n.Lang) []search.Candidate {
	return nil
}

func newTestApp(resolver Resolver, fetcher weather.Fetcher) *App {
	return New(Options{
		Resolver: resolver,
		Fetcher:  fetcher,
		State:    state.New(),
		Geocoder: nopGeocoder{},
		Lang:     i18n.LangEN,
	})
}

func TestRefreshAutoPublishesSnapshot(t *testing.T) {
	coord := geo.Coordinate{Latitude: 59.91, Longitude: 10.75}
	a := newTestApp(&stubResolver{coord: coord}, &stubFetcher{})
	defer a.Close()

	a.RefreshAuto(context.Background())

	if snap := a.State().Snapshot(); snap == nil || snap.CurrentTemp != "21.3°C" {
		t.Fatalf("expected a published snapshot, got %+v", snap)
	}
	if a.State().ActiveCoordinate() != coord {
		t.Fatalf("active coordinate not updated")
	}
	if a.State().Status() != i18n.StatusText(i18n.LangEN, i18n.StatusLocated) {
		t.Fatalf("unexpected status %q", a.State().Status())
	}
}

func TestRefreshAutoRespectsManualPin(t *testing.T) {
	resolver := &stubResolver{coord: geo.Coordinate{Latitude: 1, Longitude: 1}}
	a := newTestApp(resolver, &stubFetcher{})
	defer a.Close()

	pinned := search.Candidate{
		Name:       "Oslo",
		Coordinate: geo.Coordinate{Latitude: 59.91, Longitude: 10.75},
	}
	a.Select(context.Background(), pinned)

	if a.State().Mode() != geo.ModeManual {
		t.Fatalf("expected manual mode after select")
	}
	if resolver.cancelled == 0 {
		t.Fatalf("selecting a place must cancel in-flight resolution")
	}

	a.RefreshAuto(context.Background())

	if a.State().ActiveCoordinate() != pinned.Coordinate {
		t.Fatalf("automatic refresh overwrote the manual coordinate")
	}
}

// gatedFetcher blocks automatic fetches (name == "") until released, so a
// test can interleave a manual selection with a slow automatic refresh.
type gatedFetcher struct {
	entered chan struct{}
	release chan struct{}
}

func (f *gatedFetcher) Fetch(ctx context.Context, coord geo.Coordinate, name string, lang i18n.Lang) (*weather.Snapshot, error) {
	if name == "" {
		close(f.entered)
		<-f.release
	}
	return &weather.Snapshot{LocationName: name, CurrentTemp: "21.3°C"}, nil
}

func TestManualSelectionDuringAutoFetchWins(t *testing.T) {
	fetcher := &gatedFetcher{entered: make(chan struct{}), release: make(chan struct{})}
	a := newTestApp(&stubResolver{coord: geo.Coordinate{Latitude: 1, Longitude: 2}}, fetcher)
	defer a.Close()

	done := make(chan struct{})
	go func() {
		a.RefreshAuto(context.Background())
		close(done)
	}()
	<-fetcher.entered

	pinned := search.Candidate{
		Name:       "Oslo",
		Coordinate: geo.Coordinate{Latitude: 59.91, Longitude: 10.75},
	}
	a.Select(context.Background(), pinned)

	close(fetcher.release)
	<-done

	if a.State().Mode() != geo.ModeManual {
		t.Fatalf("expected manual mode to survive the automatic refresh")
	}
	if got := a.State().ActiveCoordinate(); got != pinned.Coordinate {
		t.Fatalf("slow automatic fetch overwrote the manual pin: coordinate %v, want %v", got, pinned.Coordinate)
	}
	if snap := a.State().Snapshot(); snap == nil || snap.LocationName != "Oslo" {
		t.Fatalf("expected the selected place's snapshot, got %+v", snap)
	}
}

func TestSetLangReachesFetch(t *testing.T) {
	fetcher := &stubFetcher{}
	a := newTestApp(&stubResolver{coord: geo.Coordinate{Latitude: 1, Longitude: 2}}, fetcher)
	defer a.Close()

	a.SetLang(i18n.LangZH)
	a.RefreshAuto(context.Background())

	fetcher.mu.Lock()
	got := fetcher.lastLang
	fetcher.mu.Unlock()
	if got != i18n.LangZH {
		t.Fatalf("fetch used language %q, want %q", got, i18n.LangZH)
	}
}

func TestResetReturnsToAutomatic(t *testing.T) {
	resolver := &stubResolver{coord: geo.Coordinate{Latitude: 1, Longitude: 2}}
	a := newTestApp(resolver, &stubFetcher{})
	defer a.Close()

	a.Select(context.Background(), search.Candidate{
		Name:       "Oslo",
		Coordinate: geo.Coordinate{Latitude: 59.91, Longitude: 10.75},
	})
	a.ResetLocation(context.Background())

	if a.State().Mode() != geo.ModeAutomatic {
		t.Fatalf("expected automatic mode after reset")
	}
	if a.State().ActiveCoordinate() != resolver.coord {
		t.Fatalf("reset did not re-resolve the coordinate")
	}
}

func TestFetchFailureKeepsSnapshot(t *testing.T) {
	fetcher := &stubFetcher{}
	a := newTestApp(&stubResolver{coord: geo.Coordinate{Latitude: 1, Longitude: 2}}, fetcher)
	defer a.Close()

	a.RefreshAuto(context.Background())
	good := a.State().Snapshot()
	if good == nil {
		t.Fatalf("expected an initial snapshot")
	}

	fetcher.mu.Lock()
	fetcher.err = fmt.Errorf("upstream down")
	fetcher.mu.Unlock()

	a.RefreshAuto(context.Background())

	if a.State().Snapshot() != good {
		t.Fatalf("failed fetch replaced the good snapshot")
	}
	if a.State().Status() != i18n.StatusText(i18n.LangEN, i18n.StatusFetchFailed) {
		t.Fatalf("unexpected status %q", a.State().Status())
	}
}

func TestNoLocationSurfacesStatusOnly(t *testing.T) {
	a := newTestApp(&stubResolver{err: location.ErrNoLocation}, &stubFetcher{})
	defer a.Close()

	a.RefreshAuto(context.Background())

	if a.State().Snapshot() != nil {
		t.Fatalf("no snapshot may be published without a location")
	}
	if a.State().Status() != i18n.StatusText(i18n.LangEN, i18n.StatusNoLocation) {
		t.Fatalf("unexpected status %q", a.State().Status())
	}
}

func TestSelectFetchFailureKeepsManualMode(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("down")}
	a := newTestApp(&stubResolver{}, fetcher)
	defer a.Close()

	a.Select(context.Background(), search.Candidate{
		Name:       "Oslo",
		Coordinate: geo.Coordinate{Latitude: 59.91, Longitude: 10.75},
	})

	if a.State().Mode() != geo.ModeManual {
		t.Fatalf("fetch failure must not drop the manual pin")
	}
	if a.State().Snapshot() != nil {
		t.Fatalf("failed fetch must not fabricate a snapshot")
	}
}
