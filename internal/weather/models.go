package weather

import (
	"time"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionFair    Condition = "fair"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
)

// DailyForecast is one representative sample for a future calendar day,
// keyed by the local date in MM-DD form.
type DailyForecast struct {
	LocalDate  string `json:"localDate"`
	TempLabel  string `json:"temperature"`
	SymbolCode string `json:"symbolCode,omitempty"`
}

// Snapshot is the display-ready weather view for one location. It is built
// whole and replaced whole; callers never mutate individual fields.
type Snapshot struct {
	LocationName  string          `json:"locationName"`
	CurrentTemp   string          `json:"currentTemp"`
	Wind          string          `json:"wind"`
	Precipitation string          `json:"precipitation"`
	AQI           string          `json:"aqi"`
	SymbolCode    string          `json:"symbolCode,omitempty"`
	Condition     Condition       `json:"condition"`
	Forecast      []DailyForecast `json:"forecast"`
	FetchedAt     time.Time       `json:"fetchedAt"` // always UTC
}

// locationforecastResult mirrors the met.no locationforecast/2.0 payload,
// trimmed to the fields we consume.
type locationforecastResult struct {
	Properties struct {
		Timeseries []timeseriesEntry `json:"timeseries"`
	} `json:"properties"`
}

type timeseriesEntry struct {
	Time time.Time `json:"time"`
	Data struct {
		Instant struct {
			Details struct {
				AirTemperature float64 `json:"air_temperature"`
				WindSpeed      float64 `json:"wind_speed"`
			} `json:"details"`
		} `json:"instant"`
		Next1Hours *nextHours `json:"next_1_hours,omitempty"`
		Next6Hours *nextHours `json:"next_6_hours,omitempty"`
	} `json:"data"`
}

type nextHours struct {
	Summary struct {
		SymbolCode string `json:"symbol_code"`
	} `json:"summary"`
	Details struct {
		PrecipitationAmount float64 `json:"precipitation_amount"`
	} `json:"details"`
}
