package poll

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
	ErrNotFound      = errors.New("poll not found")
	ErrClosed        = errors.New("poll is closed")
	ErrUnknownOption = errors.New("unknown poll option")
)

type (
	Repository interface {
		CreatePoll(ctx context.Context, p Poll) (Poll, error)
		GetPollByID(ctx context.Context, id string) (Poll, error)
		QueryPollsBySection(ctx context.Context, sectionID string) ([]Poll, error)
		UpdatePoll(ctx context.Context, p Poll) (Poll, error)
		DeletePollsByID(ctx context.Context, ids ...string) error

		// UpsertVote records or replaces the student's vote and keeps option
		// tallies consistent.
		UpsertVote(ctx context.Context, v Vote) error
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

// Create persists the poll, then fans out notifications to the section roster
// when requested. A fan-out failure does not undo the poll; it is logged and
// reflected in the returned Result.
func (svc *Service) Create(ctx context.Context, np NewPoll, authorID, authorName string) (Poll, notification.Result, error) {
	now := time.Now().UTC()
	p := Poll{
		ID:        uuid.New().String(),
		SectionID: np.SectionID,
		AuthorID:  authorID,
		Question:  np.Question,
		IsOpen:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, text := range np.Options {
		p.Options = append(p.Options, Option{
			ID:     uuid.New().String(),
			PollID: p.ID,
			Text:   text,
		})
	}
	p, err := svc.repo.CreatePoll(ctx, p)
	if err != nil {
		return Poll{}, notification.Result{}, errors.Wrap(err, "creating poll")
	}

	var res notification.Result
	if np.Notify {
		res = svc.fanOut(ctx, p, authorName)
	}
	return p, res, nil
}

func (svc *Service) fanOut(ctx context.Context, p Poll, authorName string) notification.Result {
	roster, err := svc.roster.Roster(ctx, p.SectionID)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("fetching roster for section %s: %v", p.SectionID, err), err)
		return notification.Result{}
	}
	res, err := svc.notifier.BuildAndDispatch(ctx, notification.Event{
		SectionID:  p.SectionID,
		AuthorID:   p.AuthorID,
		AuthorName: authorName,
		Title:      p.Question,
		Message:    p.Question,
		Type:       notification.TypePoll,
		RelatedID:  p.ID,
	}, roster)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("notifying poll %s: %v", p.ID, err), err)
	}
	return res
}

func (svc *Service) GetByID(ctx context.Context, id string) (Poll, error) {
	return svc.repo.GetPollByID(ctx, id)
}

func (svc *Service) QueryBySection(ctx context.Context, sectionID string) ([]Poll, error) {
	return svc.repo.QueryPollsBySection(ctx, sectionID)
}

// Vote casts or replaces a student's vote on an open poll.
func (svc *Service) Vote(ctx context.Context, pollID, optionID, studentID string) error {
	p, err := svc.repo.GetPollByID(ctx, pollID)
	if err != nil {
		return err
	}
	if !p.IsOpen {
		return ErrClosed
	}
	var known bool
	for _, opt := range p.Options {
		if opt.ID == optionID {
			known = true
			break
		}
	}
	if !known {
		return ErrUnknownOption
	}
	return svc.repo.UpsertVote(ctx, Vote{
		PollID:    pollID,
		OptionID:  optionID,
		StudentID: studentID,
		CastAt:    time.Now().UTC(),
	})
}

// Close stops further voting.
func (svc *Service) Close(ctx context.Context, id string) (Poll, error) {
	p, err := svc.repo.GetPollByID(ctx, id)
	if err != nil {
		return Poll{}, err
	}
	p.IsOpen = false
	p.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdatePoll(ctx, p)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeletePollsByID(ctx, ids...)
}
