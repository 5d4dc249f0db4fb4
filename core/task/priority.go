package task

import (
	"math"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

// Priority is the urgency bucket a Task falls in at a given point in time.
type Priority int

const (
	PriorityLow Priority = iota + 1
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

var (
	priorityLabels = map[Priority]string{
		PriorityCritical: "Critical",
		PriorityHigh:     "High",
		PriorityMedium:   "Medium",
		PriorityLow:      "Low",
	}
	priorityColors = map[Priority]string{
		PriorityCritical: "#d32f2f",
		PriorityHigh:     "#f57c00",
		PriorityMedium:   "#fbc02d",
		PriorityLow:      "#388e3c",
	}

	errMissingDueDate = errors.New("task has no due date")
)

// Rank is the integer ordering value used for sort comparisons (4=Critical..1=Low).
func (p Priority) Rank() int { return int(p) }

func (p Priority) Label() string { return priorityLabels[p] }

func (p Priority) Color() string { return priorityColors[p] }

// Classification is the derived urgency of a Task. It is computed fresh on
// every display, never stored.
type Classification struct {
	Priority     Priority `json:"-"`
	Rank         int      `json:"rank"`
	Label        string   `json:"label"`
	Color        string   `json:"color"`
	DaysUntilDue int      `json:"days_until_due"`
}

func newClassification(p Priority, daysUntilDue int) Classification {
	return Classification{
		Priority:     p,
		Rank:         p.Rank(),
		Label:        p.Label(),
		Color:        p.Color(),
		DaysUntilDue: daysUntilDue,
	}
}

// DaysUntilDue counts the calendar distance from now to due, rounded up;
// negative means overdue.
func DaysUntilDue(due, now time.Time) int {
	return int(math.Ceil(due.Sub(now).Hours() / 24))
}

// basePriority derives the content-based priority, independent of time:
// quizzes and presentations, and anything worth more than 50 points, start High.
func basePriority(t Task) Priority {
	if t.Type == TypeQuiz || t.Type == TypePresentation {
		return PriorityHigh
	}
	var points int
	if t.Points != nil {
		points = *t.Points
	}
	if points > 50 {
		return PriorityHigh
	}
	return PriorityMedium
}

// Classify computes the urgency Classification of a Task at `now`.
// Deterministic for a given (task, now) pair.
func Classify(t Task, now time.Time) (Classification, error) {
	if t.DueAt.IsZero() {
		return Classification{}, core.NewValidationError(errMissingDueDate,
			core.FieldError{Field: "due_at", Error: errMissingDueDate.Error()})
	}

	days := DaysUntilDue(t.DueAt, now)
	base := basePriority(t)

	// time-based override, most urgent wins
	var p Priority
	switch {
	case days < 0: // overdue
		p = PriorityCritical
	case days == 0: // due today
		p = PriorityCritical
	case days == 1: // due tomorrow: only High-base tasks escalate to Critical
		if base >= PriorityHigh {
			p = PriorityCritical
		} else {
			p = PriorityHigh
		}
	case days <= 3:
		if base >= PriorityHigh {
			p = PriorityHigh
		} else {
			p = PriorityMedium
		}
	case days <= 7:
		if base >= PriorityHigh {
			p = PriorityMedium
		} else {
			p = PriorityLow
		}
	default:
		p = PriorityLow
	}

	return newClassification(p, days), nil
}

// SortByPriority orders tasks in place by descending rank; ties broken by
// ascending due date. The sort is stable and idempotent.
func SortByPriority(tasks []Task, now time.Time) error {
	ranks := make(map[string]int, len(tasks))
	for _, t := range tasks {
		c, err := Classify(t, now)
		if err != nil {
			return errors.Wrapf(err, "classifying task %s", t.ID)
		}
		ranks[t.ID] = c.Rank
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		if ranks[tasks[i].ID] != ranks[tasks[j].ID] {
			return ranks[tasks[i].ID] > ranks[tasks[j].ID]
		}
		return tasks[i].DueAt.Before(tasks[j].DueAt)
	})
	return nil
}

// NextUrgent returns the most urgent active task, or nil if none is active.
func NextUrgent(tasks []Task, now time.Time) (*Task, error) {
	active := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.IsActive() {
			active = append(active, t)
		}
	}
	if len(active) == 0 {
		return nil, nil
	}
	if err := SortByPriority(active, now); err != nil {
		return nil, err
	}
	return &active[0], nil
}
