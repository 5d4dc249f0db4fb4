package section

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

type Section struct {
	ID        string    `json:"id" db:"id"`
	Code      string    `json:"code" db:"code"`
	Name      string    `json:"name" db:"name"`
	Subject   string    `json:"subject" db:"subject"`
	TeacherID string    `json:"teacher_id" db:"teacher_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// Enrollment ties a student to a Section.
type Enrollment struct {
	SectionID  string    `json:"section_id" db:"section_id"`
	StudentID  string    `json:"student_id" db:"student_id"`
	EnrolledAt time.Time `json:"enrolled_at" db:"enrolled_at"` // UTC
}

// NewSection contains information needed to create a new Section.
type NewSection struct {
	Code    string `json:"code" validate:"required,min=3,alphanum_"`
	Name    string `json:"name" validate:"required"`
	Subject string `json:"subject"`
}

func (ns *NewSection) Validate(validate *validator.Validate) error {
	ns.Code = core.CleanString(ns.Code, true /* lower */)
	ns.Name = core.CleanString(ns.Name)
	ns.Subject = core.CleanString(ns.Subject)
	return validate.Struct(ns)
}

// UpdateSection defines what information may be provided to modify an existing Section.
type UpdateSection struct {
	Name    string `json:"name"`
	Subject string `json:"subject"`
}

func (us *UpdateSection) Validate(validate *validator.Validate, orig Section) error {
	if name := core.CleanString(us.Name); name != "" {
		us.Name = name
	} else {
		us.Name = orig.Name
	}
	if subj := core.CleanString(us.Subject); subj != "" {
		us.Subject = subj
	} else {
		us.Subject = orig.Subject
	}
	return validate.Struct(us)
}
