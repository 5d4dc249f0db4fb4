package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core/notification"
	"github.com/trezcool/darasa/core/task"
	"github.com/trezcool/darasa/core/user"
	testutil "github.com/trezcool/darasa/tests"
)

func Test_taskApi_create_fanout(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateUser(t, usrRepo, "Mr. Banza", "teach1", "teach@test.cd", "", []string{user.RoleTeacher}, true)
	s1 := testutil.CreateUser(t, usrRepo, "Student One", "studnt1", "s1@test.cd", "", []string{user.RoleStudent}, true)
	s2 := testutil.CreateUser(t, usrRepo, "Student Two", "studnt2", "s2@test.cd", "", []string{user.RoleStudent}, true)
	s3 := testutil.CreateUser(t, usrRepo, "Student Three", "studnt3", "s3@test.cd", "", []string{user.RoleStudent}, true)
	sec := testutil.CreateSection(t, secRepo, "phy101", "Physics 101", "Physics", teacher.ID)
	testutil.Enroll(t, secRepo, sec.ID, s1.ID, s2.ID, s3.ID)

	body := marchallObj(t, task.NewTask{
		SectionID:   sec.ID,
		Title:       "Midterm Quiz",
		Description: "Chapters 1 through 4, closed book.",
		Type:        task.TypeQuiz,
		DueAt:       time.Now().Add(48 * time.Hour).UTC(),
		Notify:      true,
	})
	req, rec := newAuthRequest(http.MethodPost, "/v1/tasks", getToken(t, teacher), body)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp echoapi.TaskCreateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Midterm Quiz", resp.Task.Title)
	assert.True(t, resp.Notification.Persisted)
	assert.True(t, resp.Notification.Dispatched)
	assert.Equal(t, 4, resp.Notification.Created) // 3 students + author ack

	// one record per student, truncated message
	for _, sid := range []string{s1.ID, s2.ID, s3.ID} {
		notifs, err := notifRepo.QueryNotificationsByRecipient(context.Background(), sid)
		require.NoError(t, err)
		require.Len(t, notifs, 1)
		assert.Equal(t, "Midterm Quiz", notifs[0].Title)
		assert.Equal(t, "Chapters 1...", notifs[0].Message)
		assert.Equal(t, notification.TypeTask, notifs[0].Type)
		assert.False(t, notifs[0].IsRead)
	}

	// author acknowledgement
	acks, err := notifRepo.QueryNotificationsByRecipient(context.Background(), teacher.ID)
	require.NoError(t, err)
	require.Len(t, acks, 1)
	assert.Equal(t, "✅ Midterm Quiz Created", acks[0].Title)
	assert.Equal(t, "Chapters 1... - Shared with 3 students", acks[0].Message)
	assert.True(t, acks[0].IsAuthorAck())

	// one push with the full message
	require.Len(t, pushMock.Dispatched, 1)
	assert.Equal(t, "Chapters 1 through 4, closed book.", pushMock.Dispatched[0].Message)
	assert.ElementsMatch(t, []string{s1.ID, s2.ID, s3.ID}, pushMock.Dispatched[0].RecipientIDs)
}

func Test_taskApi_create_permissions(t *testing.T) {
	app := setup(t)

	student := testutil.CreateUser(t, usrRepo, "Hero", "hero01", "hero@test.cd", "", []string{user.RoleStudent}, true)

	body := marchallObj(t, task.NewTask{
		SectionID: "some-section",
		Title:     "Nope",
		Type:      task.TypeAssignment,
		DueAt:     time.Now().Add(time.Hour),
	})

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Staff required", token: getToken(t, student),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/tasks", tt.token, body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_taskApi_queryPrioritized(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateUser(t, usrRepo, "Mr. Banza", "teach1", "teach@test.cd", "", []string{user.RoleTeacher}, true)
	sec := testutil.CreateSection(t, secRepo, "mat201", "Calculus", "Math", teacher.ID)

	now := time.Now().UTC()
	pts := 10
	far := testutil.CreateTask(t, taskRepo, sec.ID, "Far Lab", task.TypeLab, now.Add(10*24*time.Hour), &pts, task.StatusActive)
	dueToday := testutil.CreateTask(t, taskRepo, sec.ID, "Due Today", task.TypeAssignment, now.Add(-2*time.Hour), &pts, task.StatusActive)
	soonQuiz := testutil.CreateTask(t, taskRepo, sec.ID, "Soon Quiz", task.TypeQuiz, now.Add(3*24*time.Hour), &pts, task.StatusActive)

	req, rec := newAuthRequest(http.MethodGet, "/v1/tasks/prioritized?section_id="+sec.ID, getToken(t, teacher))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp []echoapi.PrioritizedTask
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 3)
	assert.Equal(t, dueToday.ID, resp[0].Task.ID)
	assert.Equal(t, "Critical", resp[0].Classification.Label)
	assert.Equal(t, soonQuiz.ID, resp[1].Task.ID)
	assert.Equal(t, "High", resp[1].Classification.Label)
	assert.Equal(t, far.ID, resp[2].Task.ID)
	assert.Equal(t, "Low", resp[2].Classification.Label)
}

func Test_taskApi_nextUrgent(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateUser(t, usrRepo, "Mr. Banza", "teach1", "teach@test.cd", "", []string{user.RoleTeacher}, true)
	sec := testutil.CreateSection(t, secRepo, "mat201", "Calculus", "Math", teacher.ID)
	token := getToken(t, teacher)

	// no active tasks yet
	req, rec := newAuthRequest(http.MethodGet, "/v1/tasks/next-urgent?section_id="+sec.ID, token)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null\n", rec.Body.String())

	now := time.Now().UTC()
	testutil.CreateTask(t, taskRepo, sec.ID, "Draft", task.TypeQuiz, now.Add(time.Hour), nil, task.StatusDraft)
	urgent := testutil.CreateTask(t, taskRepo, sec.ID, "Urgent", task.TypeAssignment, now.Add(3*time.Hour), nil, task.StatusActive)
	testutil.CreateTask(t, taskRepo, sec.ID, "Later", task.TypeAssignment, now.Add(9*24*time.Hour), nil, task.StatusActive)

	req, rec = newAuthRequest(http.MethodGet, "/v1/tasks/next-urgent?section_id="+sec.ID, token)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp echoapi.PrioritizedTask
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, urgent.ID, resp.Task.ID)
	assert.Equal(t, "High", resp.Classification.Label)
}
