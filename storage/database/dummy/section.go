package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/darasa/core/section"
)

type sectionRepository struct {
	db *sectionTable
}

var _ section.Repository = (*sectionRepository)(nil) // interface compliance check

func NewSectionRepository(db *DB) section.Repository {
	return &sectionRepository{db: db.section}
}

func (repo *sectionRepository) query() []section.Section {
	secs := make([]section.Section, 0, len(repo.db.table))
	for _, s := range repo.db.table {
		secs = append(secs, *s)
	}
	sort.Slice(secs, func(i, j int) bool { return secs[i].CreatedAt.After(secs[j].CreatedAt) })
	return secs
}

func (repo *sectionRepository) CreateSection(_ context.Context, sec section.Section) (section.Section, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[sec.ID] = &sec
	return sec, nil
}

func (repo *sectionRepository) GetSectionByID(_ context.Context, id string) (section.Section, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sec, ok := repo.db.table[id]; ok {
		return *sec, nil
	}
	return section.Section{}, section.ErrNotFound
}

func (repo *sectionRepository) GetSectionByCode(_ context.Context, code string) (section.Section, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, sec := range repo.query() {
		if sec.Code == code {
			return sec, nil
		}
	}
	return section.Section{}, section.ErrNotFound
}

func (repo *sectionRepository) QueryAllSections(_ context.Context) ([]section.Section, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *sectionRepository) QuerySectionsByTeacher(_ context.Context, teacherID string) ([]section.Section, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var secs []section.Section
	for _, sec := range repo.query() {
		if sec.TeacherID == teacherID {
			secs = append(secs, sec)
		}
	}
	return secs, nil
}

func (repo *sectionRepository) QuerySectionsByStudent(_ context.Context, studentID string) ([]section.Section, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	enrolled := make(map[string]bool)
	for _, enr := range repo.db.enrollments {
		if enr.StudentID == studentID {
			enrolled[enr.SectionID] = true
		}
	}
	var secs []section.Section
	for _, sec := range repo.query() {
		if enrolled[sec.ID] {
			secs = append(secs, sec)
		}
	}
	return secs, nil
}

func (repo *sectionRepository) UpdateSection(_ context.Context, sec section.Section) (section.Section, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[sec.ID]
	if !ok {
		return section.Section{}, section.ErrNotFound
	}
	if sec.Name != "" {
		orig.Name = sec.Name
	}
	if sec.Subject != "" {
		orig.Subject = sec.Subject
	}
	if !sec.UpdatedAt.IsZero() {
		orig.UpdatedAt = sec.UpdatedAt
	}
	return *orig, nil
}

func (repo *sectionRepository) DeleteSectionsByID(_ context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.table, id)

		remaining := repo.db.enrollments[:0]
		for _, enr := range repo.db.enrollments {
			if enr.SectionID != id {
				remaining = append(remaining, enr)
			}
		}
		repo.db.enrollments = remaining
	}
	return nil
}

func (repo *sectionRepository) CreateEnrollment(_ context.Context, enr section.Enrollment) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[enr.SectionID]; !ok {
		return section.ErrNotFound
	}
	for _, e := range repo.db.enrollments {
		if e.SectionID == enr.SectionID && e.StudentID == enr.StudentID {
			return section.ErrAlreadyEnrolled
		}
	}
	repo.db.enrollments = append(repo.db.enrollments, enr)
	return nil
}

func (repo *sectionRepository) DeleteEnrollment(_ context.Context, sectionID, studentID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for i, e := range repo.db.enrollments {
		if e.SectionID == sectionID && e.StudentID == studentID {
			repo.db.enrollments = append(repo.db.enrollments[:i], repo.db.enrollments[i+1:]...)
			return nil
		}
	}
	return section.ErrNotEnrolled
}

func (repo *sectionRepository) QuerySectionStudentIDs(_ context.Context, sectionID string) ([]string, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	ids := make([]string, 0)
	for _, enr := range repo.db.enrollments {
		if enr.SectionID == sectionID {
			ids = append(ids, enr.StudentID)
		}
	}
	return ids, nil
}
