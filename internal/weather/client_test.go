package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/flame-software/flame-weather/internal/geo"
	"github.com/flame-software/flame-weather/internal/i18n"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("bad test timestamp %q: %v", s, err)
	}
	return ts
}

func entry(t *testing.T, ts string, temp float64) timeseriesEntry {
	t.Helper()
	var e timeseriesEntry
	e.Time = mustTime(t, ts)
	e.Data.Instant.Details.AirTemperature = temp
	return e
}

// The daily reduction keeps exactly one entry per future local date, only for
// noon-UTC samples, and never includes today's date.
func TestReduceDailyForecast(t *testing.T) {
	now := mustTime(t, "2025-07-14T09:00:00Z")

	series := []timeseriesEntry{
		entry(t, "2025-07-14T09:00:00Z", 21.0),
		entry(t, "2025-07-14T12:00:00Z", 24.0), // today, excluded
		entry(t, "2025-07-15T00:00:00Z", 18.0), // not noon
		entry(t, "2025-07-15T12:00:00Z", 26.0),
		entry(t, "2025-07-15T12:00:00Z", 30.0), // duplicate date, first wins
		entry(t, "2025-07-16T06:00:00Z", 19.0), // not noon
		entry(t, "2025-07-16T12:00:00Z", 22.4),
		entry(t, "2025-07-17T12:00:00Z", 27.6),
	}

	snap := reduce(series, i18n.LangEN, now, time.UTC)

	want := []DailyForecast{
		{LocalDate: "07-15", TempLabel: "26°C"},
		{LocalDate: "07-16", TempLabel: "22°C"},
		{LocalDate: "07-17", TempLabel: "28°C"},
	}
	if len(snap.Forecast) != len(want) {
		t.Fatalf("expected %d forecast days, got %d: %+v", len(want), len(snap.Forecast), snap.Forecast)
	}
	for i, w := range want {
		got := snap.Forecast[i]
		if got.LocalDate != w.LocalDate || got.TempLabel != w.TempLabel {
			t.Errorf("day %d: expected %+v, got %+v", i, w, got)
		}
	}

	seen := map[string]bool{}
	for _, day := range snap.Forecast {
		if day.LocalDate == "07-14" {
			t.Errorf("forecast contains today's date")
		}
		if seen[day.LocalDate] {
			t.Errorf("duplicate local date %s", day.LocalDate)
		}
		seen[day.LocalDate] = true
	}
}

// A day whose noon-UTC sample is missing is silently absent, not interpolated.
func TestReduceSkipsDayWithoutNoonSample(t *testing.T) {
	now := mustTime(t, "2025-07-14T09:00:00Z")

	series := []timeseriesEntry{
		entry(t, "2025-07-14T09:00:00Z", 21.0),
		entry(t, "2025-07-15T12:00:00Z", 26.0),
		entry(t, "2025-07-16T06:00:00Z", 19.0), // 07-16 has no noon entry
		entry(t, "2025-07-17T12:00:00Z", 27.0),
	}

	snap := reduce(series, i18n.LangEN, now, time.UTC)

	if len(snap.Forecast) != 2 {
		t.Fatalf("expected 2 forecast days, got %d", len(snap.Forecast))
	}
	if snap.Forecast[0].LocalDate != "07-15" || snap.Forecast[1].LocalDate != "07-17" {
		t.Fatalf("expected 07-15 and 07-17, got %+v", snap.Forecast)
	}
}

// Current conditions come from the head entry, with short-horizon symbol and
// precipitation when present and documented defaults otherwise.
func TestReduceCurrentConditions(t *testing.T) {
	now := mustTime(t, "2025-07-14T09:00:00Z")

	head := entry(t, "2025-07-14T09:00:00Z", 21.3)
	head.Data.Instant.Details.WindSpeed = 3.2
	head.Data.Next1Hours = &nextHours{}
	head.Data.Next1Hours.Summary.SymbolCode = "lightrain"
	head.Data.Next1Hours.Details.PrecipitationAmount = 0.4

	snap := reduce([]timeseriesEntry{head}, i18n.LangEN, now, time.UTC)

	if snap.CurrentTemp != "21.3°C" {
		t.Errorf("expected current temp 21.3°C, got %q", snap.CurrentTemp)
	}
	if snap.Wind != "Wind: 3.2 m/s" {
		t.Errorf("unexpected wind label %q", snap.Wind)
	}
	if snap.Precipitation != "Rain: 0.4 mm" {
		t.Errorf("unexpected precipitation label %q", snap.Precipitation)
	}
	if snap.Condition != ConditionRain {
		t.Errorf("expected rain condition, got %q", snap.Condition)
	}

	// No short-horizon block: zero precipitation, unknown condition.
	bare := reduce([]timeseriesEntry{entry(t, "2025-07-14T09:00:00Z", 10.0)}, i18n.LangEN, now, time.UTC)
	if bare.Precipitation != "Rain: 0 mm" {
		t.Errorf("unexpected default precipitation label %q", bare.Precipitation)
	}
	if bare.Condition != ConditionUnknown {
		t.Errorf("expected unknown condition, got %q", bare.Condition)
	}
}

func TestFetchScenario(t *testing.T) {
	payload := `{
		"properties": {
			"timeseries": [
				{
					"time": "2025-07-14T09:00:00Z",
					"data": {
						"instant": {"details": {"air_temperature": 21.3, "wind_speed": 3.2}},
						"next_1_hours": {"summary": {"symbol_code": "partlycloudy_day"}, "details": {"precipitation_amount": 0}}
					}
				},
				{
					"time": "2025-07-15T12:00:00Z",
					"data": {
						"instant": {"details": {"air_temperature": 26.0, "wind_speed": 2.0}},
						"next_6_hours": {"summary": {"symbol_code": "clearsky_day"}, "details": {}}
					}
				}
			]
		}
	}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Errorf("expected a User-Agent header")
		}
		if got := r.URL.Query().Get("lat"); got != "59.9139" {
			t.Errorf("expected 4-decimal lat, got %q", got)
		}
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), "flame-weather-test/1.0")
	c.baseURL = srv.URL
	c.tz = time.UTC
	c.now = func() time.Time { return mustTime(t, "2025-07-14T09:30:00Z") }

	snap, err := c.Fetch(context.Background(), geo.Coordinate{Latitude: 59.91389, Longitude: 10.75224}, "Oslo", i18n.LangEN)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snap.LocationName != "Oslo" {
		t.Errorf("expected location name Oslo, got %q", snap.LocationName)
	}
	if snap.CurrentTemp != "21.3°C" {
		t.Errorf("expected 21.3°C, got %q", snap.CurrentTemp)
	}
	if len(snap.Forecast) != 1 {
		t.Fatalf("expected one forecast day, got %+v", snap.Forecast)
	}
	day := snap.Forecast[0]
	if day.LocalDate != "07-15" || day.TempLabel != "26°C" || day.SymbolCode != "clearsky_day" {
		t.Errorf("unexpected forecast day %+v", day)
	}
}

func TestFetchFailures(t *testing.T) {
	t.Run("unparseable payload", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer srv.Close()

		c := NewClient(srv.Client(), "flame-weather-test/1.0")
		c.baseURL = srv.URL

		if _, err := c.Fetch(context.Background(), geo.Coordinate{Latitude: 1, Longitude: 1}, "", i18n.LangEN); err == nil {
			t.Fatalf("expected error for unparseable payload")
		}
	})

	t.Run("empty timeseries", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"properties": {"timeseries": []}}`))
		}))
		defer srv.Close()

		c := NewClient(srv.Client(), "flame-weather-test/1.0")
		c.baseURL = srv.URL

		if _, err := c.Fetch(context.Background(), geo.Coordinate{Latitude: 1, Longitude: 1}, "", i18n.LangEN); err == nil {
			t.Fatalf("expected error for empty timeseries")
		}
	})
}

func TestClassifySymbol(t *testing.T) {
	cases := map[string]Condition{
		"":                     ConditionUnknown,
		"clearsky_day":         ConditionClear,
		"fair_night":           ConditionFair,
		"partlycloudy_day":     ConditionCloudy,
		"lightrainshowers_day": ConditionRain,
		"heavysnow":            ConditionSnow,
		"rainandthunder":       ConditionStorm,
		"somethingbrandnew":    ConditionUnknown,
	}
	for code, want := range cases {
		if got := ClassifySymbol(code); got != want {
			t.Errorf("ClassifySymbol(%q) = %q, want %q", code, got, want)
		}
	}
}
