package announcement

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
	ErrNotFound = errors.New("announcement not found")
)

type (
	Repository interface {
		CreateAnnouncement(ctx context.Context, ann Announcement) (Announcement, error)
		GetAnnouncementByID(ctx context.Context, id string) (Announcement, error)
		// QueryAnnouncementsBySection returns pinned announcements first, then newest first.
		QueryAnnouncementsBySection(ctx context.Context, sectionID string) ([]Announcement, error)
		UpdateAnnouncement(ctx context.Context, ann Announcement) (Announcement, error)
		DeleteAnnouncementsByID(ctx context.Context, ids ...string) error
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

// Create persists the announcement, then fans out notifications to the
// section roster when requested. A fan-out failure does not undo the
// announcement; it is logged and reflected in the returned Result.
func (svc *Service) Create(ctx context.Context, na NewAnnouncement, authorID, authorName string) (Announcement, notification.Result, error) {
	now := time.Now().UTC()
	ann := Announcement{
		ID:        uuid.New().String(),
		SectionID: na.SectionID,
		AuthorID:  authorID,
		Title:     na.Title,
		Body:      na.Body,
		IsPinned:  na.IsPinned,
		CreatedAt: now,
		UpdatedAt: now,
	}
	ann, err := svc.repo.CreateAnnouncement(ctx, ann)
	if err != nil {
		return Announcement{}, notification.Result{}, errors.Wrap(err, "creating announcement")
	}

	var res notification.Result
	if na.Notify {
		res = svc.fanOut(ctx, ann, authorName)
	}
	return ann, res, nil
}

func (svc *Service) fanOut(ctx context.Context, ann Announcement, authorName string) notification.Result {
	roster, err := svc.roster.Roster(ctx, ann.SectionID)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("fetching roster for section %s: %v", ann.SectionID, err), err)
		return notification.Result{}
	}
	res, err := svc.notifier.BuildAndDispatch(ctx, notification.Event{
		SectionID:  ann.SectionID,
		AuthorID:   ann.AuthorID,
		AuthorName: authorName,
		Title:      ann.Title,
		Message:    ann.Body,
		Type:       notification.TypeAnnouncement,
		RelatedID:  ann.ID,
	}, roster)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("notifying announcement %s: %v", ann.ID, err), err)
	}
	return res
}

func (svc *Service) GetByID(ctx context.Context, id string) (Announcement, error) {
	return svc.repo.GetAnnouncementByID(ctx, id)
}

func (svc *Service) QueryBySection(ctx context.Context, sectionID string) ([]Announcement, error) {
	return svc.repo.QueryAnnouncementsBySection(ctx, sectionID)
}

func (svc *Service) Update(ctx context.Context, id string, ua UpdateAnnouncement) (Announcement, error) {
	ann := Announcement{
		ID:        id,
		Title:     ua.Title,
		Body:      ua.Body,
		IsPinned:  ua.IsPinned != nil && *ua.IsPinned,
		UpdatedAt: time.Now().UTC(),
	}
	return svc.repo.UpdateAnnouncement(ctx, ann)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteAnnouncementsByID(ctx, ids...)
}
