// Package models defines the domain types for PocketNotes.
package models

import "time"

// Note is the single persisted entity. The JSON shape is the on-store format.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NotePatch carries the fields of a partial update. A nil field keeps the
// existing value.
type NotePatch struct {
	Title   *string   `json:"title,omitempty"`
	Content *string   `json:"content,omitempty"`
	Tags    *[]string `json:"tags,omitempty"`
}

// Apply merges the patch over n and returns the result. ID and timestamps are
// left untouched.
func (p NotePatch) Apply(n Note) Note {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.Tags != nil {
		n.Tags = append([]string{}, (*p.Tags)...)
	}
	return n
}

// Clone returns a copy of n whose tag slice does not alias the original.
func (n Note) Clone() Note {
	n.Tags = append([]string{}, n.Tags...)
	return n
}
