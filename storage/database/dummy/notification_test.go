package dummydb

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/darasa/core/notification"
)

func TestMarkNotificationsRead_unknownIDLeavesBatchUntouched(t *testing.T) {
	db, _ := Open()
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	notifs := []notification.Notification{
		{ID: "n1", SectionID: "s1", AuthorID: "a1", RecipientID: "r1", Title: "one", CreatedAt: now, UpdatedAt: now},
		{ID: "n2", SectionID: "s1", AuthorID: "a1", RecipientID: "r1", Title: "two", CreatedAt: now, UpdatedAt: now},
	}
	if err := repo.CreateNotificationBatch(ctx, notifs); err != nil {
		t.Fatalf("CreateNotificationBatch() failed: %v", err)
	}

	err := repo.MarkNotificationsRead(ctx, now, "n1", "nope", "n2")
	if err != notification.ErrNotFound {
		t.Fatalf("MarkNotificationsRead() error = %v, want ErrNotFound", err)
	}
	for _, id := range []string{"n1", "n2"} {
		n, err := repo.GetNotificationByID(ctx, id)
		if err != nil {
			t.Fatalf("GetNotificationByID(%s) failed: %v", id, err)
		}
		if n.IsRead {
			t.Errorf("notification %s flipped to read despite the failed batch", id)
		}
	}

	// a clean batch still flips everything
	if err := repo.MarkNotificationsRead(ctx, now, "n1", "n2"); err != nil {
		t.Fatalf("MarkNotificationsRead() failed: %v", err)
	}
	for _, id := range []string{"n1", "n2"} {
		if n, _ := repo.GetNotificationByID(ctx, id); !n.IsRead {
			t.Errorf("notification %s still unread", id)
		}
	}
}
