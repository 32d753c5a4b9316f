package domain

import (
	"time"

	"github.com/google/uuid"
)

// Document is a free-form note. Documents count against the free-tier
// document cap for as long as they exist.
type Document struct {
	ID        uuid.UUID `json:"id"`
	AccountID string    `json:"userId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateDocumentParams contains parameters for creating a document.
type CreateDocumentParams struct {
	AccountID string
	Title     string
	Content   string
	Category  string
	Tags      []string
}

// Validate checks required fields.
func (p *CreateDocumentParams) Validate(op string) error {
	if p.Title == "" {
		return Invalid(op, "Document title is required")
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return nil
}

// UpdateDocumentParams contains a partial document update.
type UpdateDocumentParams struct {
	ID        uuid.UUID
	AccountID string
	Title     *string
	Content   *string
	Category  *string
	Tags      []string // nil leaves tags unchanged
}

// Validate checks the supplied fields.
func (p *UpdateDocumentParams) Validate(op string) error {
	if p.Title != nil && *p.Title == "" {
		return Invalid(op, "Document title cannot be empty")
	}
	return nil
}

// Apply merges the update into d.
func (p *UpdateDocumentParams) Apply(d *Document) {
	if p.Title != nil {
		d.Title = *p.Title
	}
	if p.Content != nil {
		d.Content = *p.Content
	}
	if p.Category != nil {
		d.Category = *p.Category
	}
	if p.Tags != nil {
		d.Tags = p.Tags
	}
}
