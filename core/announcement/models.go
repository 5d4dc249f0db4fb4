package announcement

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

type Announcement struct {
	ID        string    `json:"id" db:"id"`
	SectionID string    `json:"section_id" db:"section_id"`
	AuthorID  string    `json:"author_id" db:"author_id"`
	Title     string    `json:"title" db:"title"`
	Body      string    `json:"body" db:"body"`
	IsPinned  bool      `json:"is_pinned" db:"is_pinned"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// NewAnnouncement contains information needed to create a new Announcement.
type NewAnnouncement struct {
	SectionID string `json:"section_id" validate:"required"`
	Title     string `json:"title" validate:"required"`
	Body      string `json:"body" validate:"required"`
	IsPinned  bool   `json:"is_pinned"`
	Notify    bool   `json:"notify"`
}

func (na *NewAnnouncement) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Body = core.CleanString(na.Body)
	return validate.Struct(na)
}

// UpdateAnnouncement defines what information may be provided to modify an existing Announcement.
type UpdateAnnouncement struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	IsPinned *bool  `json:"is_pinned"`
}

func (ua *UpdateAnnouncement) Validate(validate *validator.Validate, orig Announcement) error {
	if title := core.CleanString(ua.Title); title != "" {
		ua.Title = title
	} else {
		ua.Title = orig.Title
	}
	if body := core.CleanString(ua.Body); body != "" {
		ua.Body = body
	} else {
		ua.Body = orig.Body
	}
	if ua.IsPinned == nil {
		ua.IsPinned = &orig.IsPinned
	}
	return validate.Struct(ua)
}
