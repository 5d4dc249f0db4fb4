package task

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

// Task types
const (
	TypeAssignment   = "assignment"
	TypeQuiz         = "quiz"
	TypeLab          = "lab"
	TypePresentation = "presentation"
)

// Task statuses
const (
	StatusActive   = "active"
	StatusDraft    = "draft"
	StatusArchived = "archived"
)

var (
	AllTypes    = []string{TypeAssignment, TypeQuiz, TypeLab, TypePresentation}
	AllStatuses = []string{StatusActive, StatusDraft, StatusArchived}
)

type Task struct {
	ID          string    `json:"id" db:"id"`
	SectionID   string    `json:"section_id" db:"section_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Type        string    `json:"type" db:"type"`
	DueAt       time.Time `json:"due_at" db:"due_at"` // UTC
	Points      *int      `json:"points" db:"points"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"` // UTC
}

func (t *Task) IsActive() bool {
	return t.Status == StatusActive
}

// NewTask contains information needed to create a new Task.
type NewTask struct {
	SectionID   string    `json:"section_id" validate:"required"`
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	Type        string    `json:"type" validate:"required,tasktype"`
	DueAt       time.Time `json:"due_at" validate:"required"`
	Points      *int      `json:"points" validate:"omitempty,gte=0"`
	Status      string    `json:"status" validate:"omitempty,taskstatus"`
	Notify      bool      `json:"notify"`
}

func (nt *NewTask) Validate(validate *validator.Validate) error {
	nt.Title = core.CleanString(nt.Title)
	nt.Description = core.CleanString(nt.Description)
	nt.Type = core.CleanString(nt.Type, true /* lower */)
	nt.Status = core.CleanString(nt.Status, true /* lower */)
	if nt.Status == "" {
		nt.Status = StatusActive
	}
	return validate.Struct(nt)
}

// UpdateTask defines what information may be provided to modify an existing Task.
type UpdateTask struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        string    `json:"type" validate:"omitempty,tasktype"`
	DueAt       time.Time `json:"due_at"`
	Points      *int      `json:"points" validate:"omitempty,gte=0"`
	Status      string    `json:"status" validate:"omitempty,taskstatus"`
}

func (tu *UpdateTask) Validate(validate *validator.Validate, orig Task) error {
	if title := core.CleanString(tu.Title); title != "" {
		tu.Title = title
	} else {
		tu.Title = orig.Title
	}
	tu.Description = core.CleanString(tu.Description)
	if tu.Description == "" {
		tu.Description = orig.Description
	}
	if typ := core.CleanString(tu.Type, true /* lower */); typ != "" {
		tu.Type = typ
	} else {
		tu.Type = orig.Type
	}
	if tu.DueAt.IsZero() {
		tu.DueAt = orig.DueAt
	}
	if tu.Points == nil {
		tu.Points = orig.Points
	}
	if status := core.CleanString(tu.Status, true /* lower */); status != "" {
		tu.Status = status
	} else {
		tu.Status = orig.Status
	}
	return validate.Struct(tu)
}

type QueryFilter struct {
	SectionID string    `query:"section_id"`
	Types     []string  `query:"type"`
	Status    string    `query:"status"`
	DueFrom   time.Time `query:"due_from"`
	DueTo     time.Time `query:"due_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.SectionID == "" && qf.Types == nil && qf.Status == "" && qf.DueFrom.IsZero() && qf.DueTo.IsZero()
}

var (
	taskTypeTag    = "tasktype"
	taskTypeText   = "invalid task type"
	taskStatusTag  = "taskstatus"
	taskStatusText = "invalid task status"
)

// InitValidators registers this package's custom validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(taskTypeTag, oneOfValidation(AllTypes))
	core.RegisterCustomTranslation(validate, translator, taskTypeTag, taskTypeText)

	_ = validate.RegisterValidation(taskStatusTag, oneOfValidation(AllStatuses))
	core.RegisterCustomTranslation(validate, translator, taskStatusTag, taskStatusText)
}

func oneOfValidation(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		val := fl.Field().String()
		for _, a := range allowed {
			if val == a {
				return true
			}
		}
		return false
	}
}
