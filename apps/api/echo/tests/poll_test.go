package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core/poll"
	"github.com/trezcool/darasa/core/user"
	testutil "github.com/trezcool/darasa/tests"
)

func Test_pollApi_voteFlow(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateUser(t, usrRepo, "Mr. Banza", "teach1", "teach@test.cd", "", []string{user.RoleTeacher}, true)
	s1 := testutil.CreateUser(t, usrRepo, "Student One", "studnt1", "s1@test.cd", "", []string{user.RoleStudent}, true)
	s2 := testutil.CreateUser(t, usrRepo, "Student Two", "studnt2", "s2@test.cd", "", []string{user.RoleStudent}, true)
	sec := testutil.CreateSection(t, secRepo, "phy101", "Physics 101", "Physics", teacher.ID)
	testutil.Enroll(t, secRepo, sec.ID, s1.ID, s2.ID)

	// teacher creates a poll with fan-out
	body := marchallObj(t, poll.NewPoll{
		SectionID: sec.ID,
		Question:  "When should the review session be?",
		Options:   []string{"Monday", "Wednesday"},
		Notify:    true,
	})
	req, rec := newAuthRequest(http.MethodPost, "/v1/polls", getToken(t, teacher), body)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created echoapi.PollCreateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Len(t, created.Poll.Options, 2)
	assert.True(t, created.Poll.IsOpen)
	assert.Equal(t, 3, created.Notification.Created) // 2 students + author ack

	pollID := created.Poll.ID
	monday := created.Poll.Options[0].ID
	wednesday := created.Poll.Options[1].ID

	vote := func(token, optionID string) *poll.Poll {
		body := marchallObj(t, echoapi.VoteRequest{OptionID: optionID})
		req, rec := newAuthRequest(http.MethodPost, "/v1/polls/"+pollID+"/vote", token, body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var p poll.Poll
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
		return &p
	}
	tally := func(p *poll.Poll, optionID string) int {
		for _, opt := range p.Options {
			if opt.ID == optionID {
				return opt.Votes
			}
		}
		t.Fatalf("option %s not found", optionID)
		return 0
	}

	// both students vote Monday
	vote(getToken(t, s1), monday)
	p := vote(getToken(t, s2), monday)
	assert.Equal(t, 2, tally(p, monday))
	assert.Equal(t, 0, tally(p, wednesday))

	// s1 changes their mind; last write wins
	p = vote(getToken(t, s1), wednesday)
	assert.Equal(t, 1, tally(p, monday))
	assert.Equal(t, 1, tally(p, wednesday))

	// unknown option is rejected
	body = marchallObj(t, echoapi.VoteRequest{OptionID: "nope"})
	req, rec = newAuthRequest(http.MethodPost, "/v1/polls/"+pollID+"/vote", getToken(t, s1), body)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// teacher closes the poll; further votes are rejected
	req, rec = newAuthRequest(http.MethodPost, "/v1/polls/"+pollID+"/close", getToken(t, teacher))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body = marchallObj(t, echoapi.VoteRequest{OptionID: monday})
	req, rec = newAuthRequest(http.MethodPost, "/v1/polls/"+pollID+"/vote", getToken(t, s2), body)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_pollApi_create_validation(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateUser(t, usrRepo, "Mr. Banza", "teach1", "teach@test.cd", "", []string{user.RoleTeacher}, true)

	// a poll needs at least two options
	body := marchallObj(t, poll.NewPoll{
		SectionID: "some-section",
		Question:  "Lonely option?",
		Options:   []string{"Only one"},
	})
	req, rec := newAuthRequest(http.MethodPost, "/v1/polls", getToken(t, teacher), body)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// the handler returns a field-error body, it does not blow up on
	// validator.ValidationErrors
	var fldErrs map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fldErrs))
	assert.Contains(t, fldErrs, "options")
}
