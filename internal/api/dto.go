package api

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/pocketnotes/internal/models"
	"github.com/starford/pocketnotes/internal/viewmodel"
)

const (
	maxBodyBytes    = 1 << 20
	maxContentRunes = 100_000
	maxTagsRunes    = 2_000
)

// CreateNoteRequest is the request body for creating a note. Tags is the
// comma-separated form field.
type CreateNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Tags    string `json:"tags"`
}

// Validate checks raw field sizes before normalisation.
func (r CreateNoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.RuneLength(0, maxContentRunes)),
		validation.Field(&r.Tags, validation.RuneLength(0, maxTagsRunes)),
	)
}

// UpdateNoteRequest is the request body for a partial update. Omitted fields
// keep their stored value.
type UpdateNoteRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Tags    *string `json:"tags"`
}

// Validate checks raw field sizes of the submitted fields.
func (r UpdateNoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.RuneLength(0, maxContentRunes)),
		validation.Field(&r.Tags, validation.RuneLength(0, maxTagsRunes)),
	)
}

// NoteCard is the list-card rendering of a note.
type NoteCard struct {
	Preview string   `json:"preview"`
	Tags    []string `json:"tags"`
	Date    string   `json:"date"`
	Updated string   `json:"updated"`
}

// NoteListItem is a note plus its card rendering.
type NoteListItem struct {
	models.Note
	Card NoteCard `json:"card"`
}

// NoteListResponse wraps the sorted note list.
type NoteListResponse struct {
	Notes []NoteListItem `json:"notes"`
	Total int            `json:"total"`
}

func newListItem(n models.Note, now time.Time) NoteListItem {
	return NoteListItem{
		Note: n,
		Card: NoteCard{
			Preview: viewmodel.Preview(n.Content),
			Tags:    viewmodel.CardTags(n.Tags),
			Date:    viewmodel.FormatDateTime(n.UpdatedAt),
			Updated: viewmodel.FormatRelative(now, n.UpdatedAt),
		},
	}
}
