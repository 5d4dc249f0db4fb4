package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/announcement"
)

type announcementRepository struct {
	db *sqlx.DB
}

var _ announcement.Repository = (*announcementRepository)(nil) // interface compliance check

func NewAnnouncementRepository(db *sqlx.DB) announcement.Repository {
	return &announcementRepository{db: db}
}

func (repo *announcementRepository) CreateAnnouncement(ctx context.Context, ann announcement.Announcement) (announcement.Announcement, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO announcement (id, section_id, author_id, title, body, is_pinned, created_at, updated_at)
		VALUES (:id, :section_id, :author_id, :title, :body, :is_pinned, :created_at, :updated_at)`, ann)
	if err != nil {
		return announcement.Announcement{}, errors.Wrap(err, "creating announcement")
	}
	return ann, nil
}

func (repo *announcementRepository) GetAnnouncementByID(ctx context.Context, id string) (announcement.Announcement, error) {
	var ann announcement.Announcement
	err := repo.db.GetContext(ctx, &ann, `SELECT * FROM announcement WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return announcement.Announcement{}, announcement.ErrNotFound
		}
		return announcement.Announcement{}, errors.Wrap(err, "getting announcement")
	}
	return ann, nil
}

func (repo *announcementRepository) QueryAnnouncementsBySection(ctx context.Context, sectionID string) ([]announcement.Announcement, error) {
	var anns []announcement.Announcement
	err := repo.db.SelectContext(ctx, &anns, `
		SELECT * FROM announcement WHERE section_id = $1
		ORDER BY is_pinned DESC, created_at DESC`, sectionID)
	if err != nil {
		return nil, errors.Wrap(err, "querying announcements")
	}
	return anns, nil
}

func (repo *announcementRepository) UpdateAnnouncement(ctx context.Context, ann announcement.Announcement) (announcement.Announcement, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE announcement SET
			title = COALESCE(NULLIF($2, ''), title),
			body = COALESCE(NULLIF($3, ''), body),
			is_pinned = $4,
			updated_at = $5
		WHERE id = $1`,
		ann.ID, ann.Title, ann.Body, ann.IsPinned, ann.UpdatedAt,
	)
	if err != nil {
		return announcement.Announcement{}, errors.Wrap(err, "updating announcement")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return announcement.Announcement{}, announcement.ErrNotFound
	}
	return repo.GetAnnouncementByID(ctx, ann.ID)
}

func (repo *announcementRepository) DeleteAnnouncementsByID(ctx context.Context, ids ...string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM announcement WHERE id = ANY($1)`, pq.StringArray(ids))
	return errors.Wrap(err, "deleting announcements")
}
