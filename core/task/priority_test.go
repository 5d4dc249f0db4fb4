package task

import (
	"reflect"
	"testing"
	"time"

	"github.com/trezcool/darasa/core"
)

func intPtr(i int) *int { return &i }

func taskDueIn(days int, typ string, points *int) Task {
	now := time.Date(2021, 3, 15, 10, 0, 0, 0, time.UTC)
	return Task{
		ID:     "t",
		Type:   typ,
		DueAt:  now.Add(time.Duration(days) * 24 * time.Hour),
		Points: points,
		Status: StatusActive,
	}
}

func TestClassify(t *testing.T) {
	now := time.Date(2021, 3, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		task Task
		want Priority
	}{
		{name: "overdue assignment", task: taskDueIn(-2, TypeAssignment, nil), want: PriorityCritical},
		{name: "overdue lab low points", task: taskDueIn(-10, TypeLab, intPtr(5)), want: PriorityCritical},
		{name: "due today assignment 20pts", task: taskDueIn(0, TypeAssignment, intPtr(20)), want: PriorityCritical},
		{name: "due tomorrow assignment", task: taskDueIn(1, TypeAssignment, intPtr(20)), want: PriorityHigh},
		{name: "due tomorrow quiz", task: taskDueIn(1, TypeQuiz, nil), want: PriorityCritical},
		{name: "due tomorrow presentation", task: taskDueIn(1, TypePresentation, nil), want: PriorityCritical},
		{name: "due tomorrow assignment 51pts", task: taskDueIn(1, TypeAssignment, intPtr(51)), want: PriorityCritical},
		{name: "due tomorrow assignment 50pts", task: taskDueIn(1, TypeAssignment, intPtr(50)), want: PriorityHigh},
		{name: "due in 2 days quiz", task: taskDueIn(2, TypeQuiz, nil), want: PriorityHigh},
		{name: "due in 3 days lab", task: taskDueIn(3, TypeLab, intPtr(10)), want: PriorityMedium},
		{name: "due in 5 days lab 10pts", task: taskDueIn(5, TypeLab, intPtr(10)), want: PriorityLow},
		{name: "due in 5 days quiz", task: taskDueIn(5, TypeQuiz, nil), want: PriorityMedium},
		{name: "due in 7 days presentation", task: taskDueIn(7, TypePresentation, nil), want: PriorityMedium},
		{name: "due in 8 days quiz 100pts", task: taskDueIn(8, TypeQuiz, intPtr(100)), want: PriorityLow},
		{name: "due in 30 days assignment", task: taskDueIn(30, TypeAssignment, nil), want: PriorityLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.task, now)
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if got.Priority != tt.want {
				t.Errorf("Classify() = %s, want %s", got.Label, tt.want.Label())
			}
			if got.Rank != tt.want.Rank() {
				t.Errorf("Classify() rank = %d, want %d", got.Rank, tt.want.Rank())
			}
		})
	}
}

func TestClassifyMissingDueDate(t *testing.T) {
	now := time.Now().UTC()
	_, err := Classify(Task{ID: "t", Type: TypeQuiz}, now)
	if err == nil {
		t.Fatal("Classify() expected error, got nil")
	}
	if _, ok := err.(*core.ValidationError); !ok {
		t.Errorf("Classify() error = %T, want *core.ValidationError", err)
	}
}

// repeated invocation for a fixed (task, now) pair yields the identical classification
func TestClassifyDeterminism(t *testing.T) {
	now := time.Date(2021, 3, 15, 10, 0, 0, 0, time.UTC)
	tsk := taskDueIn(2, TypeQuiz, intPtr(30))

	first, err := Classify(tsk, now)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	for i := 0; i < 100; i++ {
		got, err := Classify(tsk, now)
		if err != nil {
			t.Fatalf("Classify() error = %v", err)
		}
		if !reflect.DeepEqual(got, first) {
			t.Fatalf("Classify() = %+v, want %+v", got, first)
		}
	}
}

// a task closer to its due date never ranks strictly lower than the same task further out
func TestClassifyEscalationMonotonicity(t *testing.T) {
	now := time.Date(2021, 3, 15, 10, 0, 0, 0, time.UTC)

	for _, typ := range AllTypes {
		prevRank := PriorityCritical.Rank() + 1
		for days := -3; days <= 14; days++ {
			got, err := Classify(taskDueIn(days, typ, intPtr(20)), now)
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if got.Rank > prevRank {
				t.Errorf("%s due in %d days ranks %d, higher than %d at %d days", typ, days, got.Rank, prevRank, days-1)
			}
			prevRank = got.Rank
		}
	}
}

func TestSortByPriority(t *testing.T) {
	now := time.Date(2021, 3, 15, 10, 0, 0, 0, time.UTC)

	mk := func(id string, days int, typ string) Task {
		tsk := taskDueIn(days, typ, nil)
		tsk.ID = id
		return tsk
	}
	tasks := []Task{
		mk("far", 30, TypeAssignment),      // Low
		mk("soon-quiz", 2, TypeQuiz),       // High
		mk("today", 0, TypeLab),            // Critical
		mk("overdue", -1, TypeAssignment),  // Critical (earlier due date)
		mk("midweek", 5, TypeQuiz),         // Medium
		mk("tomorrow", 1, TypeAssignment),  // High (earlier due than soon-quiz)
	}

	if err := SortByPriority(tasks, now); err != nil {
		t.Fatalf("SortByPriority() error = %v", err)
	}
	wantOrder := []string{"overdue", "today", "tomorrow", "soon-quiz", "midweek", "far"}
	for i, want := range wantOrder {
		if tasks[i].ID != want {
			t.Fatalf("SortByPriority() order = %v, want %v", taskIDs(tasks), wantOrder)
		}
	}

	// idempotent: sorting again must not change the order
	before := taskIDs(tasks)
	if err := SortByPriority(tasks, now); err != nil {
		t.Fatalf("SortByPriority() error = %v", err)
	}
	if !reflect.DeepEqual(taskIDs(tasks), before) {
		t.Errorf("SortByPriority() not idempotent: %v != %v", taskIDs(tasks), before)
	}
}

func TestNextUrgent(t *testing.T) {
	now := time.Date(2021, 3, 15, 10, 0, 0, 0, time.UTC)

	draft := taskDueIn(0, TypeQuiz, nil)
	draft.ID = "draft"
	draft.Status = StatusDraft

	active := taskDueIn(3, TypeAssignment, nil)
	active.ID = "active"

	got, err := NextUrgent([]Task{draft, active}, now)
	if err != nil {
		t.Fatalf("NextUrgent() error = %v", err)
	}
	if got == nil || got.ID != "active" {
		t.Errorf("NextUrgent() = %v, want active", got)
	}

	// no active tasks -> nil
	got, err = NextUrgent([]Task{draft}, now)
	if err != nil {
		t.Fatalf("NextUrgent() error = %v", err)
	}
	if got != nil {
		t.Errorf("NextUrgent() = %v, want nil", got)
	}
}

func taskIDs(tasks []Task) []string {
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	return ids
}
