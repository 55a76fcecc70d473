// Package i18n carries the two-language (Chinese/English) strings the app and
// widget surface.
package i18n

import "strings"

// Lang is a two-letter display language code.
type Lang string

const (
	LangZH Lang = "zh"
	LangEN Lang = "en"
)

// Parse returns the language for a query/config value, defaulting to Chinese.
func Parse(s string) Lang {
	if strings.EqualFold(s, string(LangEN)) {
		return LangEN
	}
	return LangZH
}

// Status message identifiers.
type Status int

const (
	StatusWaitingPermission Status = iota
	StatusLocated
	StatusLocatedVia
	StatusSwitchingAuto
	StatusFetchFailed
	StatusNoLocation
)

var statusText = map[Status][2]string{
	StatusWaitingPermission: {"等待权限...", "Waiting for permission..."},
	StatusLocated:           {"定位成功", "Updated via GPS/IP"},
	StatusLocatedVia:        {"定位: ", "Location: "},
	StatusSwitchingAuto:     {"切换至自动定位...", "Switching to Auto..."},
	StatusFetchFailed:       {"获取天气失败", "Fetch failed"},
	StatusNoLocation:        {"无法获取位置", "No location available"},
}

// StatusText renders a status message in the given language. StatusLocatedVia
// takes the place name as its argument.
func StatusText(lang Lang, s Status, arg ...string) string {
	pair, ok := statusText[s]
	if !ok {
		return ""
	}
	txt := pair[0]
	if lang == LangEN {
		txt = pair[1]
	}
	if len(arg) > 0 {
		txt += arg[0]
	}
	return txt
}

// WindLabel formats the wind speed line, e.g. "风速: 3.2 m/s".
func WindLabel(lang Lang, speed string) string {
	if lang == LangEN {
		return "Wind: " + speed + " m/s"
	}
	return "风速: " + speed + " m/s"
}

// RainLabel formats the precipitation line, e.g. "降雨: 0.4 mm".
func RainLabel(lang Lang, amount string) string {
	if lang == LangEN {
		return "Rain: " + amount + " mm"
	}
	return "降雨: " + amount + " mm"
}

// AQILabel is a placeholder until an air-quality source is wired in.
func AQILabel(lang Lang) string {
	if lang == LangEN {
		return "AQI: N/A"
	}
	return "AQI: 暂无数据"
}

// symbolRule translates one family of met.no symbol codes. Rules are checked
// in order; the upstream code space is open-ended, so anything unmatched falls
// through to the raw code.
type symbolRule struct {
	substr string
	zh     string
	en     string
}

var symbolRules = []symbolRule{
	{"clearsky", "晴朗", "Clear"},
	{"fair", "晴间多云", "Fair"},
	{"cloudy", "阴", "Cloudy"},
	{"rain", "雨", "Rain"},
	{"snow", "雪", "Snow"},
	{"thunder", "雷阵雨", "Thunderstorm"},
}

// TranslateSymbol maps a met.no symbol code to a human-readable condition.
// An empty code reads as unknown; an unrecognized code is shown verbatim.
func TranslateSymbol(lang Lang, code string) string {
	s := strings.ToLower(code)
	if s == "" {
		if lang == LangEN {
			return "Unknown"
		}
		return "未知"
	}
	for _, r := range symbolRules {
		if strings.Contains(s, r.substr) {
			if lang == LangEN {
				return r.en
			}
			return r.zh
		}
	}
	return s
}
