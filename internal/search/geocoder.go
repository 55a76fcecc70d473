// Package search turns free-text place queries into coordinate candidates,
// debouncing keystrokes and cancelling superseded lookups.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/flame-software/flame-weather/internal/geo"
	"github.com/flame-software/flame-weather/internal/i18n"
)

// Candidate is one geocoding hit offered to the user. Candidates are
// transient; nothing persists them.
type Candidate struct {
	Name       string         `json:"name"`
	Detail     string         `json:"detail"`
	Coordinate geo.Coordinate `json:"coordinate"`
}

// Geocoder resolves a free-text query to a bounded candidate list. Lookups
// are best-effort: failures yield an empty list, never an error.
type Geocoder interface {
	Search(ctx context.Context, query string, lang i18n.Lang) []Candidate
}

const defaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"

// OpenMeteoGeocoder queries the Open-Meteo geocoding API. Responses are
// cached briefly so retyping the same query does not re-issue the lookup.
type OpenMeteoGeocoder struct {
	client     *http.Client
	baseURL    string
	maxResults int
	cache      *gocache.Cache
}

func NewOpenMeteoGeocoder(client *http.Client) *OpenMeteoGeocoder {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &OpenMeteoGeocoder{
		client:     client,
		baseURL:    defaultGeocodingURL,
		maxResults: 5,
		cache:      gocache.New(10*time.Minute, 30*time.Minute),
	}
}

func (g *OpenMeteoGeocoder) Search(ctx context.Context, query string, lang i18n.Lang) []Candidate {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	cacheKey := query + "|" + string(lang)
	if hit, ok := g.cache.Get(cacheKey); ok {
		return hit.([]Candidate)
	}

	values := url.Values{}
	values.Set("name", query)
	values.Set("count", strconv.Itoa(g.maxResults))
	values.Set("language", string(lang))

	u := fmt.Sprintf("%s?%s", g.baseURL, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil
	}

	resp, err := g.client.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("query", query).Msg("geocoding request failed")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Debug().Int("status", resp.StatusCode).Str("query", query).Msg("geocoding non-ok status")
		return nil
	}

	var payload struct {
		Results []struct {
			Name      string  `json:"name"`
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
			Admin1    string  `json:"admin1"`
			Country   string  `json:"country"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		log.Debug().Err(err).Str("query", query).Msg("geocoding payload unparseable")
		return nil
	}

	candidates := make([]Candidate, 0, len(payload.Results))
	for _, r := range payload.Results {
		if len(candidates) >= g.maxResults {
			break
		}
		candidates = append(candidates, Candidate{
			Name:       r.Name,
			Detail:     joinDetail(r.Admin1, r.Country),
			Coordinate: geo.Coordinate{Latitude: r.Latitude, Longitude: r.Longitude},
		})
	}

	g.cache.SetDefault(cacheKey, candidates)
	return candidates
}

func joinDetail(parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
