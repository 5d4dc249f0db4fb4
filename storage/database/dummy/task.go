package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/darasa/core/task"
)

type taskRepository struct {
	db *taskTable
}

var _ task.Repository = (*taskRepository)(nil) // interface compliance check

func NewTaskRepository(db *DB) task.Repository {
	return &taskRepository{db: db.task}
}

func (repo *taskRepository) query() []task.Task {
	tasks := make([]task.Task, 0, len(repo.db.table))
	for _, t := range repo.db.table {
		tasks = append(tasks, *t)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].DueAt.Before(tasks[j].DueAt) })
	return tasks
}

func (repo *taskRepository) CreateTask(_ context.Context, t task.Task) (task.Task, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[t.ID] = &t
	return t, nil
}

func (repo *taskRepository) GetTaskByID(_ context.Context, id string) (task.Task, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if t, ok := repo.db.table[id]; ok {
		return *t, nil
	}
	return task.Task{}, task.ErrNotFound
}

func (repo *taskRepository) FilterTasks(_ context.Context, filter task.QueryFilter) ([]task.Task, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	tasks := repo.query()

	if filter.SectionID != "" {
		var filtered []task.Task
		for _, t := range tasks {
			if t.SectionID == filter.SectionID {
				filtered = append(filtered, t)
			}
		}
		tasks = filtered
	}

	if filter.Types != nil {
		var filtered []task.Task
		for _, t := range tasks {
			for _, typ := range filter.Types {
				if t.Type == typ {
					filtered = append(filtered, t)
					break
				}
			}
		}
		tasks = filtered
	}

	if filter.Status != "" {
		var filtered []task.Task
		for _, t := range tasks {
			if t.Status == filter.Status {
				filtered = append(filtered, t)
			}
		}
		tasks = filtered
	}

	if !filter.DueFrom.IsZero() {
		var filtered []task.Task
		for _, t := range tasks {
			if !t.DueAt.Before(filter.DueFrom) {
				filtered = append(filtered, t)
			}
		}
		tasks = filtered
	}

	if !filter.DueTo.IsZero() {
		var filtered []task.Task
		for _, t := range tasks {
			if !t.DueAt.After(filter.DueTo) {
				filtered = append(filtered, t)
			}
		}
		tasks = filtered
	}

	return tasks, nil
}

func (repo *taskRepository) UpdateTask(_ context.Context, t task.Task) (task.Task, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[t.ID]
	if !ok {
		return task.Task{}, task.ErrNotFound
	}
	if t.Title != "" {
		orig.Title = t.Title
	}
	if t.Description != "" {
		orig.Description = t.Description
	}
	if t.Type != "" {
		orig.Type = t.Type
	}
	if !t.DueAt.IsZero() {
		orig.DueAt = t.DueAt
	}
	if t.Points != nil {
		orig.Points = t.Points
	}
	if t.Status != "" {
		orig.Status = t.Status
	}
	if !t.UpdatedAt.IsZero() {
		orig.UpdatedAt = t.UpdatedAt
	}
	return *orig, nil
}

func (repo *taskRepository) DeleteTasksByID(_ context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
