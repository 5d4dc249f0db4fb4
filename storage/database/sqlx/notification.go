package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/notification"
)

type notificationRepository struct {
	db *sqlx.DB
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *sqlx.DB) notification.Repository {
	return &notificationRepository{db: db}
}

// CreateNotificationBatch inserts all records in one transaction so a partial
// fan-out never becomes visible.
func (repo *notificationRepository) CreateNotificationBatch(ctx context.Context, notifs []notification.Notification) error {
	if len(notifs) == 0 {
		return nil
	}
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "starting transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	for _, notif := range notifs {
		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO notification (id, section_id, author_id, author_name, recipient_id, title, message, type, related_id, is_read, created_at, updated_at)
			VALUES (:id, :section_id, :author_id, :author_name, :recipient_id, :title, :message, :type, :related_id, :is_read, :created_at, :updated_at)`, notif)
		if err != nil {
			return errors.Wrap(err, "creating notification")
		}
	}
	return errors.Wrap(tx.Commit(), "committing notification batch")
}

func (repo *notificationRepository) GetNotificationByID(ctx context.Context, id string) (notification.Notification, error) {
	var notif notification.Notification
	err := repo.db.GetContext(ctx, &notif, `SELECT * FROM notification WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return notification.Notification{}, notification.ErrNotFound
		}
		return notification.Notification{}, errors.Wrap(err, "getting notification")
	}
	return notif, nil
}

func (repo *notificationRepository) QueryNotificationsByRecipient(ctx context.Context, recipientID string) ([]notification.Notification, error) {
	var notifs []notification.Notification
	err := repo.db.SelectContext(ctx, &notifs, `
		SELECT * FROM notification WHERE recipient_id = $1 ORDER BY created_at DESC`, recipientID)
	if err != nil {
		return nil, errors.Wrap(err, "querying notifications")
	}
	return notifs, nil
}

func (repo *notificationRepository) QueryUnreadByRecipient(ctx context.Context, recipientID string) ([]notification.Notification, error) {
	var notifs []notification.Notification
	err := repo.db.SelectContext(ctx, &notifs, `
		SELECT * FROM notification WHERE recipient_id = $1 AND NOT is_read ORDER BY created_at DESC`, recipientID)
	if err != nil {
		return nil, errors.Wrap(err, "querying unread notifications")
	}
	return notifs, nil
}

func (repo *notificationRepository) QueryNotificationsByRelatedID(ctx context.Context, relatedID string) ([]notification.Notification, error) {
	var notifs []notification.Notification
	err := repo.db.SelectContext(ctx, &notifs, `
		SELECT * FROM notification WHERE related_id = $1 ORDER BY created_at DESC`, relatedID)
	if err != nil {
		return nil, errors.Wrap(err, "querying notifications by related id")
	}
	return notifs, nil
}

func (repo *notificationRepository) MarkNotificationsRead(ctx context.Context, readAt time.Time, ids ...string) error {
	_, err := repo.db.ExecContext(ctx, `
		UPDATE notification SET is_read = TRUE, updated_at = $1 WHERE id = ANY($2)`,
		readAt, pq.StringArray(ids),
	)
	return errors.Wrap(err, "marking notifications read")
}

func (repo *notificationRepository) DeleteNotificationsByID(ctx context.Context, ids ...string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM notification WHERE id = ANY($1)`, pq.StringArray(ids))
	return errors.Wrap(err, "deleting notifications")
}
