package extract

import (
	"strings"
	"time"
)

var ptMonths = map[string]time.Month{
	"janeiro":   time.January,
	"fevereiro": time.February,
	"março":     time.March,
	"marco":     time.March,
	"abril":     time.April,
	"maio":      time.May,
	"junho":     time.June,
	"julho":     time.July,
	"agosto":    time.August,
	"setembro":  time.September,
	"outubro":   time.October,
	"novembro":  time.November,
	"dezembro":  time.December,
}

// ParsePresentationDate parses "DD/MM/YYYY" (optionally followed by a time)
// or "30 de julho de 2025". The bool is false when neither form matches.
func ParsePresentationDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	first := strings.Fields(s)[0]
	if parts := strings.Split(first, "/"); len(parts) == 3 {
		return buildDate(leadingInt(parts[2]), time.Month(leadingInt(parts[1])), leadingInt(parts[0]))
	}

	parts := strings.Split(lowerPT(s), " de ")
	if len(parts) < 3 {
		return time.Time{}, false
	}
	month, ok := ptMonths[strings.TrimSpace(parts[1])]
	if !ok {
		return time.Time{}, false
	}
	return buildDate(leadingInt(parts[2]), month, leadingInt(parts[0]))
}

func buildDate(year int, month time.Month, day int) (time.Time, bool) {
	if year <= 0 || month < time.January || month > time.December || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// Reject overflow such as 31/02 rolling into March
	if t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}
