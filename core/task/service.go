package task

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/notification"
)

var (
	// errors
	ErrNotFound = errors.New("task not found")
)

type (
	Repository interface {
		CreateTask(ctx context.Context, t Task) (Task, error)
		GetTaskByID(ctx context.Context, id string) (Task, error)
		// FilterTasks applies AND operation on available QueryFilter fields.
		FilterTasks(ctx context.Context, filter QueryFilter) ([]Task, error)
		UpdateTask(ctx context.Context, t Task) (Task, error)
		DeleteTasksByID(ctx context.Context, ids ...string) error
	}

	// RosterProvider supplies the recipient set of a section at authoring time.
	RosterProvider interface {
		Roster(ctx context.Context, sectionID string) ([]string, error)
	}

	// Notifier fans one authoring event out into per-recipient records.
	Notifier interface {
		BuildAndDispatch(ctx context.Context, event notification.Event, roster []string) (notification.Result, error)
	}

	Service struct {
		repo     Repository
		roster   RosterProvider
		notifier Notifier
		logger   core.Logger
	}
)

func NewService(repo Repository, roster RosterProvider, notifier Notifier, logger core.Logger) *Service {
	return &Service{repo: repo, roster: roster, notifier: notifier, logger: logger}
}

// Create persists the task, then fans out notifications to the section roster
// when requested. The task write and the notification batch are independent:
// a fan-out failure does not undo the task, it is logged and reflected in the
// returned Result so callers can tell "created, but notifications may not
// have been sent".
func (svc *Service) Create(ctx context.Context, nt NewTask, authorID, authorName string) (Task, notification.Result, error) {
	now := time.Now().UTC()
	t := Task{
		ID:          uuid.New().String(),
		SectionID:   nt.SectionID,
		Title:       nt.Title,
		Description: nt.Description,
		Type:        nt.Type,
		DueAt:       nt.DueAt.UTC(),
		Points:      nt.Points,
		Status:      nt.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	t, err := svc.repo.CreateTask(ctx, t)
	if err != nil {
		return Task{}, notification.Result{}, errors.Wrap(err, "creating task")
	}

	var res notification.Result
	if nt.Notify && t.IsActive() {
		res = svc.fanOut(ctx, t, authorID, authorName)
	}
	return t, res, nil
}

func (svc *Service) fanOut(ctx context.Context, t Task, authorID, authorName string) notification.Result {
	roster, err := svc.roster.Roster(ctx, t.SectionID)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("fetching roster for section %s: %v", t.SectionID, err), err)
		return notification.Result{}
	}
	res, err := svc.notifier.BuildAndDispatch(ctx, notification.Event{
		SectionID:  t.SectionID,
		AuthorID:   authorID,
		AuthorName: authorName,
		Title:      t.Title,
		Message:    t.Description,
		Type:       notification.TypeTask,
		RelatedID:  t.ID,
	}, roster)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("notifying task %s: %v", t.ID, err), err)
	}
	return res
}

func (svc *Service) GetByID(ctx context.Context, id string) (Task, error) {
	return svc.repo.GetTaskByID(ctx, id)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]Task, error) {
	return svc.repo.FilterTasks(ctx, filter)
}

// QuerySorted returns a section's tasks ordered by urgency at `now`.
func (svc *Service) QuerySorted(ctx context.Context, sectionID string, now time.Time) ([]Task, error) {
	tasks, err := svc.repo.FilterTasks(ctx, QueryFilter{SectionID: sectionID})
	if err != nil {
		return nil, err
	}
	if err = SortByPriority(tasks, now); err != nil {
		return nil, err
	}
	return tasks, nil
}

// NextUrgent returns the most urgent active task of a section, or nil.
func (svc *Service) NextUrgent(ctx context.Context, sectionID string, now time.Time) (*Task, error) {
	tasks, err := svc.repo.FilterTasks(ctx, QueryFilter{SectionID: sectionID})
	if err != nil {
		return nil, err
	}
	return NextUrgent(tasks, now)
}

func (svc *Service) Update(ctx context.Context, id string, tu UpdateTask) (Task, error) {
	t := Task{
		ID:          id,
		Title:       tu.Title,
		Description: tu.Description,
		Type:        tu.Type,
		DueAt:       tu.DueAt.UTC(),
		Points:      tu.Points,
		Status:      tu.Status,
		UpdatedAt:   time.Now().UTC(),
	}
	return svc.repo.UpdateTask(ctx, t)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteTasksByID(ctx, ids...)
}
