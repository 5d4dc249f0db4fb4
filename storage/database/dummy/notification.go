package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/darasa/core/notification"
)

type notificationRepository struct {
	db *notificationTable
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *DB) notification.Repository {
	return &notificationRepository{db: db.notification}
}

func (repo *notificationRepository) query(match func(*notification.Notification) bool) []notification.Notification {
	var notifs []notification.Notification
	for _, n := range repo.db.table {
		if match(n) {
			notifs = append(notifs, *n)
		}
	}
	sort.Slice(notifs, func(i, j int) bool { return notifs[i].CreatedAt.After(notifs[j].CreatedAt) })
	return notifs
}

func (repo *notificationRepository) CreateNotificationBatch(_ context.Context, notifs []notification.Notification) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, n := range notifs {
		n := n
		repo.db.table[n.ID] = &n
	}
	return nil
}

func (repo *notificationRepository) GetNotificationByID(_ context.Context, id string) (notification.Notification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if n, ok := repo.db.table[id]; ok {
		return *n, nil
	}
	return notification.Notification{}, notification.ErrNotFound
}

func (repo *notificationRepository) QueryNotificationsByRecipient(_ context.Context, recipientID string) ([]notification.Notification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	return repo.query(func(n *notification.Notification) bool { return n.RecipientID == recipientID }), nil
}

func (repo *notificationRepository) QueryUnreadByRecipient(_ context.Context, recipientID string) ([]notification.Notification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	return repo.query(func(n *notification.Notification) bool { return n.RecipientID == recipientID && !n.IsRead }), nil
}

func (repo *notificationRepository) QueryNotificationsByRelatedID(_ context.Context, relatedID string) ([]notification.Notification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	return repo.query(func(n *notification.Notification) bool { return n.RelatedID == relatedID }), nil
}

func (repo *notificationRepository) MarkNotificationsRead(_ context.Context, readAt time.Time, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	// resolve all IDs first so a bad one cannot leave a half-flipped batch
	notifs := make([]*notification.Notification, 0, len(ids))
	for _, id := range ids {
		n, ok := repo.db.table[id]
		if !ok {
			return notification.ErrNotFound
		}
		notifs = append(notifs, n)
	}
	for _, n := range notifs {
		n.IsRead = true
		n.UpdatedAt = readAt
	}
	return nil
}

func (repo *notificationRepository) DeleteNotificationsByID(_ context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
