package viewmodel

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/pocketnotes/internal/apperr"
	"github.com/starford/pocketnotes/internal/models"
)

// UntitledTitle replaces a blank title when a note is created.
const UntitledTitle = "Untitled"

const (
	maxTitleLen = 200
	maxTagLen   = 64
)

// ParseTags splits a comma-separated tags field, trims each entry, and drops
// empty ones. Order and duplicates are kept.
func ParseTags(s string) []string {
	tags := []string{}
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// JoinTags renders tags back into the form field representation.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

// Draft is the normalised content of a create form.
type Draft struct {
	Title   string
	Content string
	Tags    []string
}

// NewDraft builds a Draft from raw form fields. Title and content are
// trimmed and a blank title becomes UntitledTitle.
func NewDraft(title, content, tagsField string) Draft {
	return Draft{
		Title:   normalizeTitle(title),
		Content: strings.TrimSpace(content),
		Tags:    ParseTags(tagsField),
	}
}

func normalizeTitle(title string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	return UntitledTitle
}

// Validate checks field lengths.
func (d Draft) Validate() error {
	return validateFields(&d.Title, &d.Tags)
}

func validateFields(title *string, tags *[]string) error {
	err := validation.Errors{
		"title": validation.Validate(*title, validation.RuneLength(0, maxTitleLen)),
		"tags": validation.Validate(*tags, validation.Each(
			validation.Required,
			validation.RuneLength(1, maxTagLen),
		)),
	}.Filter()
	if err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrInvalidInput, err)
	}
	return nil
}

// PatchFields holds the raw fields of an edit submission; nil means the field
// was not submitted.
type PatchFields struct {
	Title   *string
	Content *string
	Tags    *string
}

// NewPatch normalises raw edit fields into a NotePatch the same way NewDraft
// does for the fields that were submitted.
func NewPatch(f PatchFields) (models.NotePatch, error) {
	var p models.NotePatch
	if f.Title != nil {
		t := normalizeTitle(*f.Title)
		p.Title = &t
	}
	if f.Content != nil {
		c := strings.TrimSpace(*f.Content)
		p.Content = &c
	}
	if f.Tags != nil {
		tags := ParseTags(*f.Tags)
		p.Tags = &tags
	}

	title := ""
	if p.Title != nil {
		title = *p.Title
	}
	var tags []string
	if p.Tags != nil {
		tags = *p.Tags
	}
	if err := validateFields(&title, &tags); err != nil {
		return models.NotePatch{}, err
	}
	return p, nil
}
