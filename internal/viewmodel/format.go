package viewmodel

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	dateLayout     = "02/01/2006"
	dateTimeLayout = "02/01/2006 15:04"

	cardTagLimit     = 2
	cardPreviewRunes = 100
)

// FormatDate renders t as dd/mm/yyyy in its own location.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// FormatDateTime renders t as dd/mm/yyyy hh:mm.
func FormatDateTime(t time.Time) string {
	return t.Format(dateTimeLayout)
}

// FormatRelative describes t relative to now: minutes, hours, then days for
// the first week, the plain date after that.
func FormatRelative(now, t time.Time) string {
	d := now.Sub(t)
	minutes := int(d / time.Minute)
	hours := minutes / 60
	days := hours / 24

	switch {
	case minutes < 1:
		return "just now"
	case minutes < 60:
		return plural(minutes, "minute") + " ago"
	case hours < 24:
		return plural(hours, "hour") + " ago"
	case days < 7:
		return plural(days, "day") + " ago"
	default:
		return FormatDate(t)
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// CardTags returns the tags a list card shows: the first two, then "+N" for
// the rest.
func CardTags(tags []string) []string {
	if len(tags) <= cardTagLimit {
		return append([]string{}, tags...)
	}
	out := append([]string{}, tags[:cardTagLimit]...)
	return append(out, fmt.Sprintf("+%d", len(tags)-cardTagLimit))
}

// Preview flattens content to one line and cuts it to a card-sized excerpt.
func Preview(content string) string {
	flat := strings.Join(strings.Fields(content), " ")
	if utf8.RuneCountInString(flat) <= cardPreviewRunes {
		return flat
	}
	runes := []rune(flat)
	return string(runes[:cardPreviewRunes]) + "…"
}
