package notification

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/trezcool/darasa/core"
)

// test doubles

type fakeRepo struct {
	table     map[string]*Notification
	failBatch bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{table: make(map[string]*Notification)}
}

func (r *fakeRepo) CreateNotificationBatch(_ context.Context, notifs []Notification) error {
	if r.failBatch {
		return fmt.Errorf("batch write refused")
	}
	for _, n := range notifs {
		n := n
		r.table[n.ID] = &n
	}
	return nil
}

func (r *fakeRepo) GetNotificationByID(_ context.Context, id string) (Notification, error) {
	if n, ok := r.table[id]; ok {
		return *n, nil
	}
	return Notification{}, ErrNotFound
}

func (r *fakeRepo) QueryNotificationsByRecipient(_ context.Context, recipientID string) ([]Notification, error) {
	var notifs []Notification
	for _, n := range r.table {
		if n.RecipientID == recipientID {
			notifs = append(notifs, *n)
		}
	}
	return notifs, nil
}

func (r *fakeRepo) QueryUnreadByRecipient(ctx context.Context, recipientID string) ([]Notification, error) {
	all, _ := r.QueryNotificationsByRecipient(ctx, recipientID)
	var unread []Notification
	for _, n := range all {
		if !n.IsRead {
			unread = append(unread, n)
		}
	}
	return unread, nil
}

func (r *fakeRepo) QueryNotificationsByRelatedID(_ context.Context, relatedID string) ([]Notification, error) {
	var notifs []Notification
	for _, n := range r.table {
		if n.RelatedID == relatedID {
			notifs = append(notifs, *n)
		}
	}
	return notifs, nil
}

func (r *fakeRepo) MarkNotificationsRead(_ context.Context, readAt time.Time, ids ...string) error {
	for _, id := range ids {
		if n, ok := r.table[id]; ok {
			n.IsRead = true
			n.UpdatedAt = readAt
		}
	}
	return nil
}

func (r *fakeRepo) DeleteNotificationsByID(_ context.Context, ids ...string) error {
	for _, id := range ids {
		delete(r.table, id)
	}
	return nil
}

type pushMock struct {
	dispatched []core.PushMessage
	fail       bool
}

func (p *pushMock) Dispatch(_ context.Context, msg core.PushMessage) error {
	if p.fail {
		return fmt.Errorf("gateway unreachable")
	}
	p.dispatched = append(p.dispatched, msg)
	return nil
}

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func testEvent() Event {
	return Event{
		SectionID:  "sec-1",
		AuthorID:   "teacher-1",
		AuthorName: "Mr. Kalala",
		Title:      "Quiz 3",
		Message:    "Quiz 3 covers chapters 7 through 9",
		Type:       TypeTask,
		RelatedID:  "task-1",
	}
}

func roster(n int) []string {
	ids := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		ids = append(ids, fmt.Sprintf("student-%d", i))
	}
	return ids
}

func TestBuildAndDispatch(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	push := &pushMock{}
	svc := NewService(repo, push, nopLogger{})

	res, err := svc.BuildAndDispatch(ctx, testEvent(), roster(30))
	if err != nil {
		t.Fatalf("BuildAndDispatch() error = %v", err)
	}
	if !res.Persisted || !res.Dispatched {
		t.Errorf("BuildAndDispatch() result = %+v, want persisted and dispatched", res)
	}
	if res.Created != 31 {
		t.Errorf("BuildAndDispatch() created = %d, want 31", res.Created)
	}
	if len(repo.table) != 31 {
		t.Errorf("stored records = %d, want 31", len(repo.table))
	}

	wantMsg := core.Truncate("Quiz 3 covers chapters 7 through 9", MessageBudget)
	var acks int
	seen := make(map[string]int)
	for _, n := range repo.table {
		if n.IsRead {
			t.Errorf("record %s created already read", n.ID)
		}
		if n.IsAuthorAck() {
			acks++
			if n.RecipientID != "teacher-1" {
				t.Errorf("ack recipient = %s, want teacher-1", n.RecipientID)
			}
			if n.Type != TypeTask+"_created" {
				t.Errorf("ack type = %s, want task_created", n.Type)
			}
			if n.Title != "✅ Quiz 3 Created" {
				t.Errorf("ack title = %q", n.Title)
			}
			if want := wantMsg + " - Shared with 30 students"; n.Message != want {
				t.Errorf("ack message = %q, want %q", n.Message, want)
			}
			continue
		}
		seen[n.RecipientID]++
		// every recipient record carries the same truncated message
		if n.Message != wantMsg {
			t.Errorf("message = %q, want %q", n.Message, wantMsg)
		}
		if n.Type != TypeTask {
			t.Errorf("type = %s, want %s", n.Type, TypeTask)
		}
	}
	if acks != 1 {
		t.Errorf("author acks = %d, want 1", acks)
	}
	for _, id := range roster(30) {
		if seen[id] != 1 {
			t.Errorf("recipient %s got %d records, want 1", id, seen[id])
		}
	}

	// one push for the whole batch, with the untruncated message
	if len(push.dispatched) != 1 {
		t.Fatalf("push dispatches = %d, want 1", len(push.dispatched))
	}
	if msg := push.dispatched[0]; msg.Message != "Quiz 3 covers chapters 7 through 9" || len(msg.RecipientIDs) != 30 {
		t.Errorf("push message = %+v", msg)
	}
}

func TestBuildAndDispatchEmptyRoster(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	push := &pushMock{}
	svc := NewService(repo, push, nopLogger{})

	res, err := svc.BuildAndDispatch(ctx, testEvent(), nil)
	if err != nil {
		t.Fatalf("BuildAndDispatch() error = %v", err)
	}
	if res.Created != 1 || !res.Persisted {
		t.Errorf("BuildAndDispatch() result = %+v, want 1 author ack persisted", res)
	}
	if res.Dispatched {
		t.Error("BuildAndDispatch() dispatched a push with no recipients")
	}
	if len(push.dispatched) != 0 {
		t.Errorf("push dispatches = %d, want 0", len(push.dispatched))
	}
}

func TestBuildAndDispatchValidation(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo, &pushMock{}, nopLogger{})

	tests := []struct {
		name  string
		mut   func(*Event)
		field string
	}{
		{name: "missing section", mut: func(e *Event) { e.SectionID = "" }, field: "section_id"},
		{name: "missing author", mut: func(e *Event) { e.AuthorID = "  " }, field: "author_id"},
		{name: "missing title", mut: func(e *Event) { e.Title = "" }, field: "title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := testEvent()
			tt.mut(&event)
			_, err := svc.BuildAndDispatch(ctx, event, roster(3))
			vErr, ok := err.(*core.ValidationError)
			if !ok {
				t.Fatalf("BuildAndDispatch() error = %v, want *core.ValidationError", err)
			}
			var found bool
			for _, f := range vErr.Fields {
				if f.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("fields = %+v, want %s", vErr.Fields, tt.field)
			}
			// no side effect before validation passes
			if len(repo.table) != 0 {
				t.Errorf("stored records = %d, want 0", len(repo.table))
			}
		})
	}
}

func TestBuildAndDispatchBatchFailure(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	repo.failBatch = true
	push := &pushMock{}
	svc := NewService(repo, push, nopLogger{})

	event := testEvent()
	res, err := svc.BuildAndDispatch(ctx, event, roster(5))
	if err == nil {
		t.Fatal("BuildAndDispatch() expected error, got nil")
	}
	if res.Persisted || res.Dispatched || res.Created != 0 {
		t.Errorf("BuildAndDispatch() result = %+v, want zero", res)
	}
	// no partial fan-out
	notifs, _ := svc.QueryByRelatedID(ctx, event.RelatedID)
	if len(notifs) != 0 {
		t.Errorf("visible records after failed batch = %d, want 0", len(notifs))
	}
	// no push after a failed batch
	if len(push.dispatched) != 0 {
		t.Errorf("push dispatches = %d, want 0", len(push.dispatched))
	}
}

func TestBuildAndDispatchPushFailure(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	push := &pushMock{fail: true}
	svc := NewService(repo, push, nopLogger{})

	res, err := svc.BuildAndDispatch(ctx, testEvent(), roster(4))
	if err != nil {
		t.Fatalf("BuildAndDispatch() error = %v, push failure must not surface", err)
	}
	if !res.Persisted {
		t.Error("BuildAndDispatch() not persisted")
	}
	if res.Dispatched {
		t.Error("BuildAndDispatch() reported dispatched despite push failure")
	}
	if len(repo.table) != 5 {
		t.Errorf("stored records = %d, want 5", len(repo.table))
	}
}

func TestBuildAndDispatchTruncation(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo, &pushMock{}, nopLogger{})

	tests := []struct {
		name    string
		message string
		want    string
	}{
		{name: "short message kept", message: "short", want: "short"},
		{name: "long message cut", message: strings.Repeat("x", 200), want: strings.Repeat("x", MessageBudget) + core.Ellipsis},
		{name: "empty message", message: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := testEvent()
			event.RelatedID = "task-" + tt.name
			event.Message = tt.message
			if _, err := svc.BuildAndDispatch(ctx, event, roster(3)); err != nil {
				t.Fatalf("BuildAndDispatch() error = %v", err)
			}
			notifs, _ := svc.QueryByRelatedID(ctx, event.RelatedID)
			for _, n := range notifs {
				if n.IsAuthorAck() {
					continue
				}
				if n.Message != tt.want {
					t.Errorf("message = %q, want %q", n.Message, tt.want)
				}
			}
		})
	}
}

func TestMarkRead(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo, &pushMock{}, nopLogger{})

	if _, err := svc.BuildAndDispatch(ctx, testEvent(), roster(1)); err != nil {
		t.Fatalf("BuildAndDispatch() error = %v", err)
	}
	notifs, _ := svc.QueryByRecipient(ctx, "student-1")
	if len(notifs) != 1 {
		t.Fatalf("records = %d, want 1", len(notifs))
	}
	id := notifs[0].ID

	if err := svc.MarkRead(ctx, id); err != nil {
		t.Fatalf("MarkRead() error = %v", err)
	}
	got, _ := svc.GetByID(ctx, id)
	if !got.IsRead {
		t.Error("MarkRead() record still unread")
	}
	readAt := got.UpdatedAt

	// idempotent: second call is a no-op
	if err := svc.MarkRead(ctx, id); err != nil {
		t.Fatalf("MarkRead() second call error = %v", err)
	}
	got2, _ := svc.GetByID(ctx, id)
	if !got2.IsRead || !got2.UpdatedAt.Equal(readAt) {
		t.Errorf("MarkRead() second call changed state: %+v", got2)
	}

	if err := svc.MarkRead(ctx, "nope"); err != ErrNotFound {
		t.Errorf("MarkRead(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestMarkAllRead(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo, &pushMock{}, nopLogger{})

	// 3 unread from one event + 2 already read from another
	if _, err := svc.BuildAndDispatch(ctx, testEvent(), roster(1)); err != nil {
		t.Fatalf("BuildAndDispatch() error = %v", err)
	}
	second := testEvent()
	second.RelatedID = "task-2"
	if _, err := svc.BuildAndDispatch(ctx, second, roster(1)); err != nil {
		t.Fatalf("BuildAndDispatch() error = %v", err)
	}
	third := testEvent()
	third.RelatedID = "task-3"
	if _, err := svc.BuildAndDispatch(ctx, third, roster(1)); err != nil {
		t.Fatalf("BuildAndDispatch() error = %v", err)
	}
	pre, _ := svc.QueryByRecipient(ctx, "student-1")
	if err := svc.MarkRead(ctx, pre[0].ID); err != nil {
		t.Fatalf("MarkRead() error = %v", err)
	}

	if err := svc.MarkAllRead(ctx, "student-1"); err != nil {
		t.Fatalf("MarkAllRead() error = %v", err)
	}
	all, _ := svc.QueryByRecipient(ctx, "student-1")
	if len(all) != 3 {
		t.Fatalf("records = %d, want 3", len(all))
	}
	for _, n := range all {
		if !n.IsRead {
			t.Errorf("record %s still unread after MarkAllRead", n.ID)
		}
	}

	// idempotent: calling again with nothing unread is a no-op
	if err := svc.MarkAllRead(ctx, "student-1"); err != nil {
		t.Fatalf("MarkAllRead() second call error = %v", err)
	}
	// unknown recipient is a no-op too
	if err := svc.MarkAllRead(ctx, "student-404"); err != nil {
		t.Fatalf("MarkAllRead(unknown) error = %v", err)
	}
}
