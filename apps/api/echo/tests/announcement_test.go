package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core/announcement"
	"github.com/trezcool/darasa/core/user"
	emailsvc "github.com/trezcool/darasa/services/email"
	testutil "github.com/trezcool/darasa/tests"
)

func Test_announcementApi_create_fanout(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateUser(t, usrRepo, "Mr. Banza", "teach1", "teach@test.cd", "", []string{user.RoleTeacher}, true)
	s1 := testutil.CreateUser(t, usrRepo, "Student One", "studnt1", "s1@test.cd", "", []string{user.RoleStudent}, true)
	sec := testutil.CreateSection(t, secRepo, "phy101", "Physics 101", "Physics", teacher.ID)
	testutil.Enroll(t, secRepo, sec.ID, s1.ID)

	body := marchallObj(t, announcement.NewAnnouncement{
		SectionID: sec.ID,
		Title:     "Room Change",
		Body:      "We move to lab B tomorrow morning.",
		Notify:    true,
	})
	req, rec := newAuthRequest(http.MethodPost, "/v1/announcements", getToken(t, teacher), body)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var res echoapi.AnnouncementCreateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "Room Change", res.Announcement.Title)
	assert.True(t, res.Notification.Persisted)
	assert.Equal(t, 2, res.Notification.Created) // 1 student + author ack

	// the push carries the untruncated body
	require.Len(t, pushMock.Dispatched, 1)
	assert.Equal(t, "We move to lab B tomorrow morning.", pushMock.Dispatched[0].Message)

	// an email digest goes out to enrolled students with an address
	require.NotEmpty(t, emailsvc.SentMessages)
	digest := emailsvc.SentMessages[len(emailsvc.SentMessages)-1]
	assert.Equal(t, "Room Change", digest.Subject)
	assert.Equal(t, "We move to lab B tomorrow morning.", digest.Body)
	require.Len(t, digest.Bcc, 1)
	assert.Equal(t, "s1@test.cd", digest.Bcc[0].Address)
}

func Test_announcementApi_query_pinnedFirst(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateUser(t, usrRepo, "Mr. Banza", "teach1", "teach@test.cd", "", []string{user.RoleTeacher}, true)
	sec := testutil.CreateSection(t, secRepo, "phy101", "Physics 101", "Physics", teacher.ID)

	token := getToken(t, teacher)
	create := func(title string, pinned bool) {
		body := marchallObj(t, announcement.NewAnnouncement{
			SectionID: sec.ID,
			Title:     title,
			Body:      "Details on the board.",
			IsPinned:  pinned,
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/announcements", token, body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	create("Old News", false)
	create("Syllabus", true) // pinned
	create("Fresh News", false)

	req, rec := newAuthRequest(http.MethodGet, "/v1/announcements?section_id="+sec.ID, token)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var anns []announcement.Announcement
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &anns))
	require.Len(t, anns, 3)
	assert.Equal(t, "Syllabus", anns[0].Title) // pinned beats recency
	assert.Equal(t, "Fresh News", anns[1].Title)
	assert.Equal(t, "Old News", anns[2].Title)
}

func Test_announcementApi_update(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateUser(t, usrRepo, "Mr. Banza", "teach1", "teach@test.cd", "", []string{user.RoleTeacher}, true)
	sec := testutil.CreateSection(t, secRepo, "phy101", "Physics 101", "Physics", teacher.ID)

	token := getToken(t, teacher)
	body := marchallObj(t, announcement.NewAnnouncement{SectionID: sec.ID, Title: "Room Change", Body: "Lab B."})
	req, rec := newAuthRequest(http.MethodPost, "/v1/announcements", token, body)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created echoapi.AnnouncementCreateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	pinned := true
	body = marchallObj(t, announcement.UpdateAnnouncement{IsPinned: &pinned})
	req, rec = newAuthRequest(http.MethodPut, "/v1/announcements/"+created.Announcement.ID, token, body)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated announcement.Announcement
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.True(t, updated.IsPinned)
	assert.Equal(t, "Room Change", updated.Title) // untouched fields keep their values
	assert.Equal(t, "Lab B.", updated.Body)
}
