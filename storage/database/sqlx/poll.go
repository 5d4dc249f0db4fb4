package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/poll"
)

type pollRepository struct {
	db *sqlx.DB
}

var _ poll.Repository = (*pollRepository)(nil) // interface compliance check

func NewPollRepository(db *sqlx.DB) poll.Repository {
	return &pollRepository{db: db}
}

func (repo *pollRepository) CreatePoll(ctx context.Context, p poll.Poll) (poll.Poll, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return poll.Poll{}, errors.Wrap(err, "starting transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO poll (id, section_id, author_id, question, is_open, created_at, updated_at)
		VALUES (:id, :section_id, :author_id, :question, :is_open, :created_at, :updated_at)`, p)
	if err != nil {
		return poll.Poll{}, errors.Wrap(err, "creating poll")
	}
	for _, opt := range p.Options {
		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO poll_option (id, poll_id, text, votes)
			VALUES (:id, :poll_id, :text, :votes)`, opt)
		if err != nil {
			return poll.Poll{}, errors.Wrap(err, "creating poll option")
		}
	}
	if err = tx.Commit(); err != nil {
		return poll.Poll{}, errors.Wrap(err, "committing poll")
	}
	return p, nil
}

func (repo *pollRepository) GetPollByID(ctx context.Context, id string) (poll.Poll, error) {
	var p poll.Poll
	err := repo.db.GetContext(ctx, &p, `SELECT * FROM poll WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return poll.Poll{}, poll.ErrNotFound
		}
		return poll.Poll{}, errors.Wrap(err, "getting poll")
	}
	err = repo.db.SelectContext(ctx, &p.Options, `SELECT * FROM poll_option WHERE poll_id = $1 ORDER BY id`, id)
	if err != nil {
		return poll.Poll{}, errors.Wrap(err, "getting poll options")
	}
	return p, nil
}

func (repo *pollRepository) QueryPollsBySection(ctx context.Context, sectionID string) ([]poll.Poll, error) {
	var polls []poll.Poll
	err := repo.db.SelectContext(ctx, &polls, `
		SELECT * FROM poll WHERE section_id = $1 ORDER BY created_at DESC`, sectionID)
	if err != nil {
		return nil, errors.Wrap(err, "querying polls")
	}
	if len(polls) == 0 {
		return polls, nil
	}

	ids := make([]string, len(polls))
	for i, p := range polls {
		ids[i] = p.ID
	}
	var opts []poll.Option
	err = repo.db.SelectContext(ctx, &opts, `
		SELECT * FROM poll_option WHERE poll_id = ANY($1) ORDER BY id`, pq.StringArray(ids))
	if err != nil {
		return nil, errors.Wrap(err, "querying poll options")
	}
	byPoll := make(map[string][]poll.Option, len(polls))
	for _, opt := range opts {
		byPoll[opt.PollID] = append(byPoll[opt.PollID], opt)
	}
	for i := range polls {
		polls[i].Options = byPoll[polls[i].ID]
	}
	return polls, nil
}

func (repo *pollRepository) UpdatePoll(ctx context.Context, p poll.Poll) (poll.Poll, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE poll SET
			question = COALESCE(NULLIF($2, ''), question),
			is_open = $3,
			updated_at = $4
		WHERE id = $1`,
		p.ID, p.Question, p.IsOpen, p.UpdatedAt,
	)
	if err != nil {
		return poll.Poll{}, errors.Wrap(err, "updating poll")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return poll.Poll{}, poll.ErrNotFound
	}
	return repo.GetPollByID(ctx, p.ID)
}

func (repo *pollRepository) DeletePollsByID(ctx context.Context, ids ...string) error {
	// options and votes cascade
	_, err := repo.db.ExecContext(ctx, `DELETE FROM poll WHERE id = ANY($1)`, pq.StringArray(ids))
	return errors.Wrap(err, "deleting polls")
}

func (repo *pollRepository) UpsertVote(ctx context.Context, v poll.Vote) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "starting transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO poll_vote (poll_id, option_id, student_id, cast_at)
		VALUES (:poll_id, :option_id, :student_id, :cast_at)
		ON CONFLICT (poll_id, student_id)
		DO UPDATE SET option_id = EXCLUDED.option_id, cast_at = EXCLUDED.cast_at`, v)
	if err != nil {
		return errors.Wrap(err, "upserting vote")
	}
	// recount so a replaced vote moves between options
	_, err = tx.ExecContext(ctx, `
		UPDATE poll_option SET votes = (
			SELECT count(*) FROM poll_vote WHERE poll_vote.option_id = poll_option.id
		) WHERE poll_id = $1`, v.PollID)
	if err != nil {
		return errors.Wrap(err, "updating vote tallies")
	}
	return errors.Wrap(tx.Commit(), "committing vote")
}
