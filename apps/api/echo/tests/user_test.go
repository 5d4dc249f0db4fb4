package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core/user"
	testutil "github.com/trezcool/darasa/tests"
)

func Test_userApi_login(t *testing.T) {
	app := setup(t)

	testutil.CreateUser(t, usrRepo, "Active User", "activeusr", "active@test.cd", "pa$$word", []string{user.RoleStudent}, true)
	testutil.CreateUser(t, usrRepo, "Lazy User", "lazyusr", "lazy@test.cd", "pa$$word", []string{user.RoleStudent}, false)

	tests := []struct {
		name      string
		body      []byte
		wantCode  int
		wantToken bool
	}{
		{
			name: "Valid credentials (username)", wantCode: http.StatusOK, wantToken: true,
			body: marchallObj(t, echoapi.LoginRequest{Username: "activeusr", Password: "pa$$word"}),
		},
		{
			name: "Valid credentials (email)", wantCode: http.StatusOK, wantToken: true,
			body: marchallObj(t, echoapi.LoginRequest{Username: "active@test.cd", Password: "pa$$word"}),
		},
		{
			name: "Wrong password", wantCode: http.StatusBadRequest,
			body: marchallObj(t, echoapi.LoginRequest{Username: "activeusr", Password: "nope"}),
		},
		{
			name: "Unknown user", wantCode: http.StatusBadRequest,
			body: marchallObj(t, echoapi.LoginRequest{Username: "ghost", Password: "pa$$word"}),
		},
		{
			name: "Deactivated account", wantCode: http.StatusForbidden,
			body: marchallObj(t, echoapi.LoginRequest{Username: "lazyusr", Password: "pa$$word"}),
		},
		{
			name: "Missing fields", wantCode: http.StatusBadRequest,
			body: marchallObj(t, echoapi.LoginRequest{}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			app.ServeHTTP(rec, req)

			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantToken {
				var resp echoapi.LoginResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.NotEmpty(t, resp.Token)
			}
		})
	}
}

func Test_userApi_query(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	student := testutil.CreateUser(t, usrRepo, "Hero", "hero01", "hero@test.cd", "", []string{user.RoleStudent}, true)
	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teach1", "teach@test.cd", "", []string{user.RoleTeacher}, true)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/users", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", path: "/v1/users", token: getToken(t, student),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Get all", path: "/v1/users", token: getToken(t, admin),
			wantCode: http.StatusOK, wantData: marchallList(t, admin, student, teacher),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_retrieve(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	student := testutil.CreateUser(t, usrRepo, "Hero", "hero01", "hero@test.cd", "", []string{user.RoleStudent}, true)
	other := testutil.CreateUser(t, usrRepo, "Other", "other1", "other@test.cd", "", []string{user.RoleStudent}, true)

	tests := []httpTest{
		{
			name: "Owner can retrieve self", path: "/v1/users/" + student.ID, token: getToken(t, student),
			wantCode: http.StatusOK, wantData: marchallObj(t, student),
		},
		{
			name: "Admin can retrieve anyone", path: "/v1/users/" + student.ID, token: getToken(t, admin),
			wantCode: http.StatusOK, wantData: marchallObj(t, student),
		},
		{
			name: "Non-owner gets 404", path: "/v1/users/" + student.ID, token: getToken(t, other),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
