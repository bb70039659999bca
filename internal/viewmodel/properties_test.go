package viewmodel

import (
	"strings"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/starford/pocketnotes/internal/models"
)

func testParseTags_TrimmedAndNonEmpty(t *rapid.T) {
	field := rapid.StringMatching(`[a-z ,\t]{0,40}`).Draw(t, "field")
	tags := ParseTags(field)
	for _, tag := range tags {
		if tag == "" || tag != strings.TrimSpace(tag) || strings.Contains(tag, ",") {
			t.Fatalf("ParseTags(%q) produced %q", field, tag)
		}
	}
	again := ParseTags(JoinTags(tags))
	if strings.Join(again, "|") != strings.Join(tags, "|") {
		t.Fatalf("reparse %v != %v", again, tags)
	}
}

func TestParseTags_TrimmedAndNonEmpty(t *testing.T) {
	rapid.Check(t, testParseTags_TrimmedAndNonEmpty)
}

func testSortByUpdated_NewestFirstStable(t *rapid.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	offsets := rapid.SliceOfN(rapid.IntRange(0, 5), 0, 20).Draw(t, "offsets")
	notes := make([]models.Note, len(offsets))
	for i, off := range offsets {
		notes[i] = models.Note{ID: string(rune('a' + i)), UpdatedAt: base.Add(time.Duration(off) * time.Hour)}
	}
	pos := make(map[string]int, len(notes))
	for i, n := range notes {
		pos[n.ID] = i
	}

	SortByUpdated(notes)
	for i := 1; i < len(notes); i++ {
		prev, cur := notes[i-1], notes[i]
		if prev.UpdatedAt.Before(cur.UpdatedAt) {
			t.Fatalf("notes[%d] older than notes[%d]", i-1, i)
		}
		if prev.UpdatedAt.Equal(cur.UpdatedAt) && pos[prev.ID] > pos[cur.ID] {
			t.Fatalf("tie %s/%s reordered", prev.ID, cur.ID)
		}
	}
}

func TestSortByUpdated_NewestFirstStable(t *testing.T) {
	rapid.Check(t, testSortByUpdated_NewestFirstStable)
}
