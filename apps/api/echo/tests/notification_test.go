package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core/announcement"
	"github.com/trezcool/darasa/core/notification"
	"github.com/trezcool/darasa/core/user"
	testutil "github.com/trezcool/darasa/tests"
)

func Test_notificationApi(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateUser(t, usrRepo, "Mr. Banza", "teach1", "teach@test.cd", "", []string{user.RoleTeacher}, true)
	s1 := testutil.CreateUser(t, usrRepo, "Student One", "studnt1", "s1@test.cd", "", []string{user.RoleStudent}, true)
	s2 := testutil.CreateUser(t, usrRepo, "Student Two", "studnt2", "s2@test.cd", "", []string{user.RoleStudent}, true)
	sec := testutil.CreateSection(t, secRepo, "phy101", "Physics 101", "Physics", teacher.ID)
	testutil.Enroll(t, secRepo, sec.ID, s1.ID, s2.ID)

	// fan out two announcements so each student holds two records
	for _, title := range []string{"Room Change", "Lab Cancelled"} {
		body := marchallObj(t, announcement.NewAnnouncement{
			SectionID: sec.ID,
			Title:     title,
			Body:      "Details on the board.",
			Notify:    true,
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/announcements", getToken(t, teacher), body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	s1Token := getToken(t, s1)
	list := func(token string) []notification.Notification {
		req, rec := newAuthRequest(http.MethodGet, "/v1/notifications", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var notifs []notification.Notification
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &notifs))
		return notifs
	}

	t.Run("query returns own records newest first", func(t *testing.T) {
		notifs := list(s1Token)
		require.Len(t, notifs, 2)
		assert.Equal(t, "Lab Cancelled", notifs[0].Title)
		assert.Equal(t, "Room Change", notifs[1].Title)
		for _, n := range notifs {
			assert.Equal(t, s1.ID, n.RecipientID)
			assert.False(t, n.IsRead)
		}
	})

	t.Run("author sees acknowledgements", func(t *testing.T) {
		notifs := list(getToken(t, teacher))
		require.Len(t, notifs, 2)
		for _, n := range notifs {
			assert.True(t, n.IsAuthorAck())
		}
	})

	t.Run("markRead flips a single record", func(t *testing.T) {
		notifs := list(s1Token)
		target := notifs[0]

		req, rec := newAuthRequest(http.MethodPost, "/v1/notifications/"+target.ID+"/read", s1Token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		notifs = list(s1Token)
		for _, n := range notifs {
			assert.Equal(t, n.ID == target.ID, n.IsRead)
		}

		// marking again is a no-op
		req, rec = newAuthRequest(http.MethodPost, "/v1/notifications/"+target.ID+"/read", s1Token)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("other users cannot see or read it", func(t *testing.T) {
		target := list(s1Token)[0]
		s2Token := getToken(t, s2)

		req, rec := newAuthRequest(http.MethodGet, "/v1/notifications/"+target.ID, s2Token)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		req, rec = newAuthRequest(http.MethodPost, "/v1/notifications/"+target.ID+"/read", s2Token)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("markAllRead clears the rest", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/notifications/read-all", s1Token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		for _, n := range list(s1Token) {
			assert.True(t, n.IsRead)
		}
		// s2's records are untouched
		for _, n := range list(getToken(t, s2)) {
			assert.False(t, n.IsRead)
		}
	})
}
