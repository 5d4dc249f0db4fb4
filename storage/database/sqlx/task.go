package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/task"
)

type taskRepository struct {
	db *sqlx.DB
}

var _ task.Repository = (*taskRepository)(nil) // interface compliance check

func NewTaskRepository(db *sqlx.DB) task.Repository {
	return &taskRepository{db: db}
}

func (repo *taskRepository) CreateTask(ctx context.Context, t task.Task) (task.Task, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO task (id, section_id, title, description, type, due_at, points, status, created_at, updated_at)
		VALUES (:id, :section_id, :title, :description, :type, :due_at, :points, :status, :created_at, :updated_at)`, t)
	if err != nil {
		return task.Task{}, errors.Wrap(err, "creating task")
	}
	return t, nil
}

func (repo *taskRepository) GetTaskByID(ctx context.Context, id string) (task.Task, error) {
	var t task.Task
	err := repo.db.GetContext(ctx, &t, `SELECT * FROM task WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, errors.Wrap(err, "getting task")
	}
	return t, nil
}

func (repo *taskRepository) FilterTasks(ctx context.Context, filter task.QueryFilter) ([]task.Task, error) {
	query := `SELECT * FROM task`
	var conds []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.SectionID != "" {
		conds = append(conds, "section_id = "+arg(filter.SectionID))
	}
	if filter.Types != nil {
		conds = append(conds, "type = ANY("+arg(pq.StringArray(filter.Types))+")")
	}
	if filter.Status != "" {
		conds = append(conds, "status = "+arg(filter.Status))
	}
	if !filter.DueFrom.IsZero() {
		conds = append(conds, "due_at >= "+arg(filter.DueFrom))
	}
	if !filter.DueTo.IsZero() {
		conds = append(conds, "due_at <= "+arg(filter.DueTo))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY due_at ASC"

	var tasks []task.Task
	if err := repo.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering tasks")
	}
	return tasks, nil
}

func (repo *taskRepository) UpdateTask(ctx context.Context, t task.Task) (task.Task, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE task SET
			title = COALESCE(NULLIF($2, ''), title),
			description = COALESCE(NULLIF($3, ''), description),
			type = COALESCE(NULLIF($4, ''), type),
			due_at = $5,
			points = COALESCE($6, points),
			status = COALESCE(NULLIF($7, ''), status),
			updated_at = $8
		WHERE id = $1`,
		t.ID, t.Title, t.Description, t.Type, t.DueAt, t.Points, t.Status, t.UpdatedAt,
	)
	if err != nil {
		return task.Task{}, errors.Wrap(err, "updating task")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return task.Task{}, task.ErrNotFound
	}
	return repo.GetTaskByID(ctx, t.ID)
}

func (repo *taskRepository) DeleteTasksByID(ctx context.Context, ids ...string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM task WHERE id = ANY($1)`, pq.StringArray(ids))
	return errors.Wrap(err, "deleting tasks")
}
