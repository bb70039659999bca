package noterepo

import (
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/starford/pocketnotes/internal/models"
)

// encode serialises the whole collection as one JSON array.
func encode(notes []models.Note) ([]byte, error) {
	out := make([]models.Note, len(notes))
	for i, n := range notes {
		if n.Tags == nil {
			n.Tags = []string{}
		}
		out[i] = n
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode notes: %w", err)
	}
	return data, nil
}

// decode parses a stored collection. Timestamps are parsed back into
// time.Time by the JSON decoder; a value that is not a valid RFC 3339 string
// fails the whole decode.
func decode(data []byte) ([]models.Note, error) {
	var notes []models.Note
	if err := json.Unmarshal(data, &notes); err != nil {
		return nil, fmt.Errorf("decode notes: %w", err)
	}
	if notes == nil {
		notes = []models.Note{}
	}
	for i := range notes {
		if notes[i].Tags == nil {
			notes[i].Tags = []string{}
		}
	}
	return notes, nil
}
