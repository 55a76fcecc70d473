// Package weather fetches the met.no locationforecast time series for a
// coordinate and reduces it to a display-ready snapshot: current conditions
// plus one representative entry per future calendar day.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"github.com/flame-software/flame-weather/internal/geo"
	"github.com/flame-software/flame-weather/internal/i18n"
)

// Fetcher abstracts the forecast source so the app and scheduler can be
// tested against fakes. lang selects the label language per call, so a
// runtime language switch reaches the next snapshot.
type Fetcher interface {
	Fetch(ctx context.Context, coord geo.Coordinate, locationName string, lang i18n.Lang) (*Snapshot, error)
}

// Client fetches and reduces met.no forecasts.
type Client struct {
	baseURL   string
	userAgent string
	httpCfg   HTTPClientConfig
	circuit   *gobreaker.CircuitBreaker

	// injectable clock and zone for the daily reduction
	now func() time.Time
	tz  *time.Location
}

// NewClient builds a forecast client. userAgent identifies this client to
// met.no, which requires one by usage policy.
func NewClient(client *http.Client, userAgent string) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "metno",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		baseURL:   "https://api.met.no/weatherapi/locationforecast/2.0/complete",
		userAgent: userAgent,
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      3,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: cb,
		now:     time.Now,
		tz:      time.Local,
	}
}

// Fetch issues one forecast request for the coordinate and reduces the
// returned time series. Transport failures, non-2xx statuses and unparseable
// payloads all come back as errors; the caller keeps its previous snapshot in
// that case instead of clearing it.
func (c *Client) Fetch(ctx context.Context, coord geo.Coordinate, locationName string, lang i18n.Lang) (*Snapshot, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", fmt.Sprintf("%.4f", coord.Latitude))
		values.Set("lon", fmt.Sprintf("%.4f", coord.Longitude))

		u := fmt.Sprintf("%s?%s", c.baseURL, values.Encode())
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", c.userAgent)
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		log.Warn().Err(err).Str("coord", coord.Key()).Msg("weather fetch failed")
		return nil, err
	}
	defer resp.Body.Close()

	var payload locationforecastResult
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode forecast: %w", err)
	}

	series := payload.Properties.Timeseries
	if len(series) == 0 {
		return nil, fmt.Errorf("forecast payload has empty timeseries")
	}

	snap := reduce(series, lang, c.now(), c.tz)
	snap.LocationName = locationName
	return snap, nil
}

// reduce turns the raw time series into a Snapshot.
//
// Current conditions come from the first entry; the daily forecast keeps only
// entries whose UTC time-of-day is exactly noon, one per future local date,
// first occurrence winning. Days without a noon UTC entry are silently absent
// rather than interpolated; that matches the upstream series shape we consume.
func reduce(series []timeseriesEntry, lang i18n.Lang, now time.Time, tz *time.Location) *Snapshot {
	head := series[0]

	var symbol string
	precip := 0.0
	if n1 := head.Data.Next1Hours; n1 != nil {
		symbol = n1.Summary.SymbolCode
		precip = n1.Details.PrecipitationAmount
	}

	snap := &Snapshot{
		CurrentTemp:   formatNum(head.Data.Instant.Details.AirTemperature) + "°C",
		Wind:          i18n.WindLabel(lang, formatNum(head.Data.Instant.Details.WindSpeed)),
		Precipitation: i18n.RainLabel(lang, formatNum(precip)),
		AQI:           i18n.AQILabel(lang),
		SymbolCode:    symbol,
		Condition:     ClassifySymbol(symbol),
		FetchedAt:     now.UTC(),
	}

	today := now.In(tz).Format("01-02")
	seen := make(map[string]struct{})

	for _, entry := range series {
		utc := entry.Time.UTC()
		if utc.Hour() != 12 || utc.Minute() != 0 || utc.Second() != 0 {
			continue
		}

		localDate := entry.Time.In(tz).Format("01-02")
		if localDate == today {
			continue
		}
		if _, ok := seen[localDate]; ok {
			continue
		}
		seen[localDate] = struct{}{}

		day := DailyForecast{
			LocalDate: localDate,
			TempLabel: strconv.Itoa(int(math.Round(entry.Data.Instant.Details.AirTemperature))) + "°C",
		}
		if n6 := entry.Data.Next6Hours; n6 != nil {
			day.SymbolCode = n6.Summary.SymbolCode
		}
		snap.Forecast = append(snap.Forecast, day)
	}

	return snap
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
