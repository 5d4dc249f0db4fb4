package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/section"
)

type sectionRepository struct {
	db *sqlx.DB
}

var _ section.Repository = (*sectionRepository)(nil) // interface compliance check

func NewSectionRepository(db *sqlx.DB) section.Repository {
	return &sectionRepository{db: db}
}

func (repo *sectionRepository) CreateSection(ctx context.Context, sec section.Section) (section.Section, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO section (id, code, name, subject, teacher_id, created_at, updated_at)
		VALUES (:id, :code, :name, :subject, :teacher_id, :created_at, :updated_at)`, sec)
	if err != nil {
		return section.Section{}, errors.Wrap(err, "creating section")
	}
	return sec, nil
}

func (repo *sectionRepository) getSection(ctx context.Context, where string, args ...interface{}) (section.Section, error) {
	var sec section.Section
	err := repo.db.GetContext(ctx, &sec, `SELECT * FROM section WHERE `+where, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return section.Section{}, section.ErrNotFound
		}
		return section.Section{}, errors.Wrap(err, "getting section")
	}
	return sec, nil
}

func (repo *sectionRepository) GetSectionByID(ctx context.Context, id string) (section.Section, error) {
	return repo.getSection(ctx, `id = $1`, id)
}

func (repo *sectionRepository) GetSectionByCode(ctx context.Context, code string) (section.Section, error) {
	return repo.getSection(ctx, `code = $1`, code)
}

func (repo *sectionRepository) QueryAllSections(ctx context.Context) ([]section.Section, error) {
	var secs []section.Section
	err := repo.db.SelectContext(ctx, &secs, `SELECT * FROM section ORDER BY created_at DESC`)
	return secs, errors.Wrap(err, "querying sections")
}

func (repo *sectionRepository) QuerySectionsByTeacher(ctx context.Context, teacherID string) ([]section.Section, error) {
	var secs []section.Section
	err := repo.db.SelectContext(ctx, &secs,
		`SELECT * FROM section WHERE teacher_id = $1 ORDER BY created_at DESC`, teacherID)
	return secs, errors.Wrap(err, "querying teacher sections")
}

func (repo *sectionRepository) QuerySectionsByStudent(ctx context.Context, studentID string) ([]section.Section, error) {
	var secs []section.Section
	err := repo.db.SelectContext(ctx, &secs, `
		SELECT s.* FROM section s
		JOIN enrollment e ON e.section_id = s.id
		WHERE e.student_id = $1
		ORDER BY s.created_at DESC`, studentID)
	return secs, errors.Wrap(err, "querying student sections")
}

func (repo *sectionRepository) UpdateSection(ctx context.Context, sec section.Section) (section.Section, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE section SET
			name = COALESCE(NULLIF($2, ''), name),
			subject = COALESCE(NULLIF($3, ''), subject),
			updated_at = $4
		WHERE id = $1`,
		sec.ID, sec.Name, sec.Subject, sec.UpdatedAt,
	)
	if err != nil {
		return section.Section{}, errors.Wrap(err, "updating section")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return section.Section{}, section.ErrNotFound
	}
	return repo.GetSectionByID(ctx, sec.ID)
}

func (repo *sectionRepository) DeleteSectionsByID(ctx context.Context, ids ...string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM section WHERE id = ANY($1)`, pq.StringArray(ids))
	return errors.Wrap(err, "deleting sections")
}

func (repo *sectionRepository) CreateEnrollment(ctx context.Context, enr section.Enrollment) error {
	res, err := repo.db.ExecContext(ctx, `
		INSERT INTO enrollment (section_id, student_id, enrolled_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (section_id, student_id) DO NOTHING`,
		enr.SectionID, enr.StudentID, enr.EnrolledAt,
	)
	if err != nil {
		return errors.Wrap(err, "creating enrollment")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return section.ErrAlreadyEnrolled
	}
	return nil
}

func (repo *sectionRepository) DeleteEnrollment(ctx context.Context, sectionID, studentID string) error {
	res, err := repo.db.ExecContext(ctx,
		`DELETE FROM enrollment WHERE section_id = $1 AND student_id = $2`, sectionID, studentID)
	if err != nil {
		return errors.Wrap(err, "deleting enrollment")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return section.ErrNotEnrolled
	}
	return nil
}

func (repo *sectionRepository) QuerySectionStudentIDs(ctx context.Context, sectionID string) ([]string, error) {
	ids := make([]string, 0)
	err := repo.db.SelectContext(ctx, &ids,
		`SELECT student_id FROM enrollment WHERE section_id = $1`, sectionID)
	return ids, errors.Wrap(err, "querying section roster")
}
