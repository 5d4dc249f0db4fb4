package notification

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

var (
	// errors
	ErrNotFound = errors.New("notification not found")

	errMissingSection = errors.New("missing section")
	errMissingAuthor  = errors.New("missing author")
	errMissingTitle   = errors.New("missing title")
)

type (
	Repository interface {
		// CreateNotificationBatch persists all records atomically:
		// either all become visible or none do.
		CreateNotificationBatch(ctx context.Context, notifs []Notification) error
		GetNotificationByID(ctx context.Context, id string) (Notification, error)
		QueryNotificationsByRecipient(ctx context.Context, recipientID string) ([]Notification, error)
		QueryUnreadByRecipient(ctx context.Context, recipientID string) ([]Notification, error)
		QueryNotificationsByRelatedID(ctx context.Context, relatedID string) ([]Notification, error)
		MarkNotificationsRead(ctx context.Context, readAt time.Time, ids ...string) error
		DeleteNotificationsByID(ctx context.Context, ids ...string) error
	}

	// Directory resolves recipient IDs to email addresses.
	// Recipients without an address are skipped.
	Directory interface {
		QueryEmailAddresses(ctx context.Context, ids ...string) ([]mail.Address, error)
	}

	Service struct {
		repo   Repository
		push   core.PushService
		logger core.Logger

		mail core.EmailService
		dir  Directory
	}
)

func NewService(repo Repository, push core.PushService, logger core.Logger) *Service {
	return &Service{repo: repo, push: push, logger: logger}
}

// EnableEmailDigest turns on a best-effort email copy of each fan-out,
// sent Bcc to the roster members that have an address on file.
func (svc *Service) EnableEmailDigest(mailSvc core.EmailService, dir Directory) {
	svc.mail = mailSvc
	svc.dir = dir
}

func (e Event) validate() error {
	var flds []core.FieldError
	if core.CleanString(e.SectionID) == "" {
		flds = append(flds, core.FieldError{Field: "section_id", Error: errMissingSection.Error()})
	}
	if core.CleanString(e.AuthorID) == "" {
		flds = append(flds, core.FieldError{Field: "author_id", Error: errMissingAuthor.Error()})
	}
	if core.CleanString(e.Title) == "" {
		flds = append(flds, core.FieldError{Field: "title", Error: errMissingTitle.Error()})
	}
	if flds != nil {
		return core.NewValidationError(errors.New("invalid notification event"), flds...)
	}
	return nil
}

// BuildAndDispatch expands one authoring event into one notification record
// per roster member plus one author-acknowledgement record, persists them in
// a single atomic batch, then requests one best-effort push dispatch for the
// whole batch. A push failure is logged and never surfaced: the records are
// the durable source of truth, the push is only a real-time nudge. An empty
// roster is not an error; the author ack is still written.
func (svc *Service) BuildAndDispatch(ctx context.Context, event Event, roster []string) (Result, error) {
	if err := event.validate(); err != nil {
		return Result{}, err
	}

	now := time.Now().UTC()
	// truncated once, reused verbatim in every record
	truncated := core.Truncate(event.Message, MessageBudget)

	notifs := make([]Notification, 0, len(roster)+1)
	for _, recipientID := range roster {
		notifs = append(notifs, Notification{
			ID:          uuid.New().String(),
			SectionID:   event.SectionID,
			AuthorID:    event.AuthorID,
			AuthorName:  event.AuthorName,
			RecipientID: recipientID,
			Title:       event.Title,
			Message:     truncated,
			Type:        event.Type,
			RelatedID:   event.RelatedID,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	notifs = append(notifs, Notification{
		ID:          uuid.New().String(),
		SectionID:   event.SectionID,
		AuthorID:    event.AuthorID,
		AuthorName:  event.AuthorName,
		RecipientID: event.AuthorID,
		Title:       "✅ " + event.Title + " Created",
		Message:     fmt.Sprintf("%s - Shared with %d students", truncated, len(roster)),
		Type:        event.Type + createdSuffix,
		RelatedID:   event.RelatedID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})

	if err := svc.repo.CreateNotificationBatch(ctx, notifs); err != nil {
		return Result{}, errors.Wrap(err, "persisting notification batch")
	}

	res := Result{Persisted: true, Created: len(notifs)}
	if len(roster) > 0 {
		// best-effort; carries the full untruncated message
		if err := svc.push.Dispatch(ctx, core.PushMessage{
			SectionID:    event.SectionID,
			Title:        event.Title,
			Message:      event.Message,
			RecipientIDs: roster,
		}); err != nil {
			svc.logger.Warn(fmt.Sprintf("push dispatch failed for %s: %v", event.RelatedID, err), err)
		} else {
			res.Dispatched = true
		}
		svc.emailDigest(ctx, event, roster)
	}
	return res, nil
}

// emailDigest mails the untruncated message to roster members with an
// address on file. Best-effort, like the push.
func (svc *Service) emailDigest(ctx context.Context, event Event, roster []string) {
	if svc.mail == nil || svc.dir == nil {
		return
	}
	addrs, err := svc.dir.QueryEmailAddresses(ctx, roster...)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("resolving digest recipients for %s: %v", event.RelatedID, err), err)
		return
	}
	if len(addrs) == 0 {
		return
	}
	svc.mail.SendMessages(&core.EmailMessage{
		Bcc:     addrs,
		Subject: event.Title,
		Body:    event.Message,
	})
}

func (svc *Service) GetByID(ctx context.Context, id string) (Notification, error) {
	return svc.repo.GetNotificationByID(ctx, id)
}

func (svc *Service) QueryByRecipient(ctx context.Context, recipientID string) ([]Notification, error) {
	return svc.repo.QueryNotificationsByRecipient(ctx, recipientID)
}

func (svc *Service) QueryByRelatedID(ctx context.Context, relatedID string) ([]Notification, error) {
	return svc.repo.QueryNotificationsByRelatedID(ctx, relatedID)
}

// MarkRead flips a single record to read. Idempotent.
func (svc *Service) MarkRead(ctx context.Context, id string) error {
	notif, err := svc.repo.GetNotificationByID(ctx, id)
	if err != nil {
		return err
	}
	if notif.IsRead {
		return nil
	}
	return svc.repo.MarkNotificationsRead(ctx, time.Now().UTC(), id)
}

// MarkAllRead flips all of a recipient's unread records in one batch. Idempotent.
func (svc *Service) MarkAllRead(ctx context.Context, recipientID string) error {
	unread, err := svc.repo.QueryUnreadByRecipient(ctx, recipientID)
	if err != nil {
		return err
	}
	if len(unread) == 0 {
		return nil
	}
	ids := make([]string, 0, len(unread))
	for _, n := range unread {
		ids = append(ids, n.ID)
	}
	return svc.repo.MarkNotificationsRead(ctx, time.Now().UTC(), ids...)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteNotificationsByID(ctx, ids...)
}
