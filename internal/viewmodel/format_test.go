package viewmodel

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestFormatDate(t *testing.T) {
	ts := time.Date(2025, 3, 7, 14, 5, 0, 0, time.UTC)
	if got := FormatDate(ts); got != "07/03/2025" {
		t.Errorf("FormatDate = %q", got)
	}
	if got := FormatDateTime(ts); got != "07/03/2025 14:05" {
		t.Errorf("FormatDateTime = %q", got)
	}
}

func TestFormatRelative(t *testing.T) {
	now := time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{0, "just now"},
		{30 * time.Second, "just now"},
		{time.Minute, "1 minute ago"},
		{45 * time.Minute, "45 minutes ago"},
		{time.Hour, "1 hour ago"},
		{23 * time.Hour, "23 hours ago"},
		{24 * time.Hour, "1 day ago"},
		{6 * 24 * time.Hour, "6 days ago"},
		{7 * 24 * time.Hour, "13/03/2025"},
	}
	for _, tt := range tests {
		if got := FormatRelative(now, now.Add(-tt.ago)); got != tt.want {
			t.Errorf("FormatRelative(-%v) = %q, want %q", tt.ago, got, tt.want)
		}
	}
}

func TestFormatRelative_FutureIsJustNow(t *testing.T) {
	now := time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)
	if got := FormatRelative(now, now.Add(time.Hour)); got != "just now" {
		t.Errorf("got %q", got)
	}
}

func TestCardTags(t *testing.T) {
	tests := []struct {
		in   []string
		want []string
	}{
		{nil, []string{}},
		{[]string{"a"}, []string{"a"}},
		{[]string{"a", "b"}, []string{"a", "b"}},
		{[]string{"a", "b", "c", "d"}, []string{"a", "b", "+2"}},
	}
	for _, tt := range tests {
		if got := CardTags(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("CardTags(%v) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestPreview(t *testing.T) {
	if got := Preview("line one\n\n  line two"); got != "line one line two" {
		t.Errorf("Preview = %q", got)
	}
	long := strings.Repeat("ă", cardPreviewRunes+5)
	got := Preview(long)
	if !strings.HasSuffix(got, "…") || len([]rune(got)) != cardPreviewRunes+1 {
		t.Errorf("Preview(long) has %d runes", len([]rune(got)))
	}
}
