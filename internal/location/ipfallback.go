package location

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/flame-software/flame-weather/internal/geo"
)

const defaultIPEndpoint = "https://freeipapi.com/api/json"

// IPResolver estimates the position from the caller's public IP address.
// IP geolocation is coarse and best-effort: one round trip, no retries, and
// every failure mode reads as "no result".
type IPResolver struct {
	client    *http.Client
	endpoint  string
	userAgent string
}

func NewIPResolver(client *http.Client, userAgent string) *IPResolver {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &IPResolver{client: client, endpoint: defaultIPEndpoint, userAgent: userAgent}
}

// Resolve performs the single lookup. The second return value is false on any
// network, status, or parse problem.
func (r *IPResolver) Resolve(ctx context.Context) (geo.Coordinate, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint, nil)
	if err != nil {
		return geo.Coordinate{}, false
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		log.Debug().Err(err).Msg("ip geolocation request failed")
		return geo.Coordinate{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Debug().Int("status", resp.StatusCode).Msg("ip geolocation non-ok status")
		return geo.Coordinate{}, false
	}

	// Both fields must be present floats; any other shape is a parse failure.
	var payload struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		log.Debug().Err(err).Msg("ip geolocation payload unparseable")
		return geo.Coordinate{}, false
	}
	if payload.Latitude == nil || payload.Longitude == nil {
		return geo.Coordinate{}, false
	}

	coord := geo.Coordinate{Latitude: *payload.Latitude, Longitude: *payload.Longitude}
	if !coord.Valid() {
		return geo.Coordinate{}, false
	}
	return coord, true
}
