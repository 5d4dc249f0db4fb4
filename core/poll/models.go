package poll

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

type (
	Poll struct {
		ID        string    `json:"id" db:"id"`
		SectionID string    `json:"section_id" db:"section_id"`
		AuthorID  string    `json:"author_id" db:"author_id"`
		Question  string    `json:"question" db:"question"`
		Options   []Option  `json:"options" db:"-"`
		IsOpen    bool      `json:"is_open" db:"is_open"`
		CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
		UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC
	}

	Option struct {
		ID     string `json:"id" db:"id"`
		PollID string `json:"-" db:"poll_id"`
		Text   string `json:"text" db:"text"`
		Votes  int    `json:"votes" db:"votes"`
	}

	// Vote records a student's choice; one per (poll, student), last write wins.
	Vote struct {
		PollID    string    `json:"poll_id" db:"poll_id"`
		OptionID  string    `json:"option_id" db:"option_id"`
		StudentID string    `json:"student_id" db:"student_id"`
		CastAt    time.Time `json:"cast_at" db:"cast_at"` // UTC
	}
)

// NewPoll contains information needed to create a new Poll.
type NewPoll struct {
	SectionID string   `json:"section_id" validate:"required"`
	Question  string   `json:"question" validate:"required"`
	Options   []string `json:"options" validate:"required,min=2,dive,required"`
	Notify    bool     `json:"notify"`
}

func (np *NewPoll) Validate(validate *validator.Validate) error {
	np.Question = core.CleanString(np.Question)
	for i, opt := range np.Options {
		np.Options[i] = core.CleanString(opt)
	}
	return validate.Struct(np)
}
