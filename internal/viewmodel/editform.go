package viewmodel

import (
	"strings"

	"github.com/starford/pocketnotes/internal/models"
)

// EditForm tracks an edit screen: the note as loaded and the current field
// values, so the screen can ask before discarding changes.
type EditForm struct {
	Original models.Note
	Title    string
	Content  string
	Tags     string
}

// NewEditForm seeds the form fields from n.
func NewEditForm(n models.Note) *EditForm {
	return &EditForm{
		Original: n.Clone(),
		Title:    n.Title,
		Content:  n.Content,
		Tags:     JoinTags(n.Tags),
	}
}

// Dirty reports whether any field differs from the loaded note.
func (f *EditForm) Dirty() bool {
	return f.Title != f.Original.Title ||
		f.Content != f.Original.Content ||
		f.Tags != JoinTags(f.Original.Tags)
}

// Blank reports whether both title and content are empty after trimming.
func (f *EditForm) Blank() bool {
	return Blank(f.Title, f.Content)
}

// Blank reports whether a form has neither a title nor content. Screens
// refuse to save such a form.
func Blank(title, content string) bool {
	return strings.TrimSpace(title) == "" && strings.TrimSpace(content) == ""
}

// Patch returns the full-field patch for the current values.
func (f *EditForm) Patch() (models.NotePatch, error) {
	title, content, tags := f.Title, f.Content, f.Tags
	return NewPatch(PatchFields{Title: &title, Content: &content, Tags: &tags})
}
