package weather

import (
	"github.com/flame-software/flame-weather/internal/common"
)

// conditionRule matches one family of met.no symbol codes. The upstream code
// space is not formally enumerated, so classification is an ordered substring
// scan with ConditionUnknown as the documented fallback.
type conditionRule struct {
	cond Condition
	subs []string
}

var conditionRules = []conditionRule{
	{ConditionStorm, []string{"thunder"}},
	{ConditionSnow, []string{"snow", "sleet"}},
	{ConditionRain, []string{"rain", "drizzle", "shower"}},
	{ConditionClear, []string{"clearsky"}},
	{ConditionFair, []string{"fair"}},
	{ConditionCloudy, []string{"cloudy", "fog"}},
}

// ClassifySymbol maps a met.no symbol code (e.g. "lightrainshowers_day")
// to a normalized Condition.
func ClassifySymbol(code string) Condition {
	if code == "" {
		return ConditionUnknown
	}
	for _, r := range conditionRules {
		if common.HasAny(code, r.subs...) {
			return r.cond
		}
	}
	return ConditionUnknown
}
