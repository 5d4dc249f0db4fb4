package testutil

import (
	"context"
	"net/mail"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/section"
	"github.com/trezcool/darasa/core/task"
	"github.com/trezcool/darasa/core/user"
)

// NewConfig returns a ready-to-use test configuration.
func NewConfig() *core.Config {
	return &core.Config{
		Debug:            false, // production-shaped error bodies
		TestMode:         true,
		Env:              "TEST",
		Build:            "test",
		AppName:          "Darasa",
		SecretKey:        "secret",
		FrontendBaseURL:  "http://localhost:8080",
		DefaultFromEmail: mail.Address{Name: "Darasa", Address: "noreply@test.cd"},
		Server: core.ServerConfig{
			Host:                      "localhost",
			Addr:                      ":8000",
			ShutdownTimeout:           5 * time.Second,
			JWTExpirationDelta:        10 * time.Minute,
			JWTRefreshExpirationDelta: time.Hour,
		},
	}
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		ID:        uuid.New().String(),
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateSection(t *testing.T, repo section.Repository, code, name, subject, teacherID string) section.Section {
	t.Helper()

	now := time.Now().UTC()
	sec, err := repo.CreateSection(context.Background(), section.Section{
		ID:        uuid.New().String(),
		Code:      code,
		Name:      name,
		Subject:   subject,
		TeacherID: teacherID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateSection() failed: %v", err)
	}
	return sec
}

func Enroll(t *testing.T, repo section.Repository, sectionID string, studentIDs ...string) {
	t.Helper()

	for _, sid := range studentIDs {
		err := repo.CreateEnrollment(context.Background(), section.Enrollment{
			SectionID:  sectionID,
			StudentID:  sid,
			EnrolledAt: time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("Enroll() failed: %v", err)
		}
	}
}

func CreateTask(
	t *testing.T,
	repo task.Repository,
	sectionID, title, typ string,
	dueAt time.Time,
	points *int,
	status string,
) task.Task {
	t.Helper()

	now := time.Now().UTC()
	tsk, err := repo.CreateTask(context.Background(), task.Task{
		ID:        uuid.New().String(),
		SectionID: sectionID,
		Title:     title,
		Type:      typ,
		DueAt:     dueAt.UTC(),
		Points:    points,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateTask() failed: %v", err)
	}
	return tsk
}
