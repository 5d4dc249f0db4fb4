package section

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	// errors
	ErrNotFound        = errors.New("section not found")
	ErrCodeExists      = errors.New("a section with this code already exists")
	ErrNotEnrolled     = errors.New("student not enrolled in this section")
	ErrAlreadyEnrolled = errors.New("student already enrolled in this section")
)

type (
	Repository interface {
		CreateSection(ctx context.Context, sec Section) (Section, error)
		GetSectionByID(ctx context.Context, id string) (Section, error)
		GetSectionByCode(ctx context.Context, code string) (Section, error)
		QueryAllSections(ctx context.Context) ([]Section, error)
		QuerySectionsByTeacher(ctx context.Context, teacherID string) ([]Section, error)
		QuerySectionsByStudent(ctx context.Context, studentID string) ([]Section, error)
		UpdateSection(ctx context.Context, sec Section) (Section, error)
		DeleteSectionsByID(ctx context.Context, ids ...string) error

		CreateEnrollment(ctx context.Context, enr Enrollment) error
		DeleteEnrollment(ctx context.Context, sectionID, studentID string) error
		// QuerySectionStudentIDs returns the roster: the IDs of all students
		// enrolled in the section at call time, in no particular order.
		QuerySectionStudentIDs(ctx context.Context, sectionID string) ([]string, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ns NewSection, teacherID string) (Section, error) {
	if _, err := svc.repo.GetSectionByCode(ctx, ns.Code); err == nil {
		return Section{}, ErrCodeExists
	} else if errors.Cause(err) != ErrNotFound {
		return Section{}, errors.Wrap(err, "checking section code")
	}

	now := time.Now().UTC()
	sec := Section{
		ID:        uuid.New().String(),
		Code:      ns.Code,
		Name:      ns.Name,
		Subject:   ns.Subject,
		TeacherID: teacherID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateSection(ctx, sec)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Section, error) {
	return svc.repo.GetSectionByID(ctx, id)
}

func (svc *Service) GetByCode(ctx context.Context, code string) (Section, error) {
	return svc.repo.GetSectionByCode(ctx, code)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Section, error) {
	return svc.repo.QueryAllSections(ctx)
}

func (svc *Service) QueryByTeacher(ctx context.Context, teacherID string) ([]Section, error) {
	return svc.repo.QuerySectionsByTeacher(ctx, teacherID)
}

func (svc *Service) QueryByStudent(ctx context.Context, studentID string) ([]Section, error) {
	return svc.repo.QuerySectionsByStudent(ctx, studentID)
}

func (svc *Service) Update(ctx context.Context, id string, us UpdateSection) (Section, error) {
	sec := Section{
		ID:        id,
		Name:      us.Name,
		Subject:   us.Subject,
		UpdatedAt: time.Now().UTC(),
	}
	return svc.repo.UpdateSection(ctx, sec)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteSectionsByID(ctx, ids...)
}

func (svc *Service) Enroll(ctx context.Context, sectionID, studentID string) error {
	enr := Enrollment{
		SectionID:  sectionID,
		StudentID:  studentID,
		EnrolledAt: time.Now().UTC(),
	}
	return svc.repo.CreateEnrollment(ctx, enr)
}

func (svc *Service) Unenroll(ctx context.Context, sectionID, studentID string) error {
	return svc.repo.DeleteEnrollment(ctx, sectionID, studentID)
}

// Roster returns the recipient set used by notification fan-out. The returned
// snapshot is read-only input; concurrent enrollment changes are a tolerated race.
func (svc *Service) Roster(ctx context.Context, sectionID string) ([]string, error) {
	return svc.repo.QuerySectionStudentIDs(ctx, sectionID)
}
