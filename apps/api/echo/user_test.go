package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/njia/core/user"
)

func usernames(users []user.User) []string {
	unames := make([]string, 0, len(users))
	for _, usr := range users {
		unames = append(unames, usr.Username)
	}
	return unames
}

func Test_userApi_register(t *testing.T) {
	env := setup(t)

	tests := []struct {
		name     string
		body     interface{}
		wantCode int
	}{
		{
			name: "valid registration",
			body: map[string]interface{}{
				"name": "Jo Bloggs", "username": "jobloggs", "email": "jo@test.cd",
				"password": "LePass123!", "password_confirm": "LePass123!",
			},
			wantCode: http.StatusCreated,
		},
		{
			name: "password mismatch",
			body: map[string]interface{}{
				"name": "Jo Bloggs", "username": "jobloggs2", "email": "jo2@test.cd",
				"password": "LePass123!", "password_confirm": "nope",
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "weak password",
			body: map[string]interface{}{
				"name": "Jo Bloggs", "username": "jobloggs3", "email": "jo3@test.cd",
				"password": "12345678", "password_confirm": "12345678",
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "duplicate email",
			body: map[string]interface{}{
				"name": "Jo Clone", "username": "joclone", "email": "jo@test.cd",
				"password": "LePass123!", "password_confirm": "LePass123!",
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "username with whitespace",
			body: map[string]interface{}{
				"name": "Jo Bloggs", "username": "jo bloggs", "email": "jo4@test.cd",
				"password": "LePass123!", "password_confirm": "LePass123!",
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "submitted roles are discarded",
			body: map[string]interface{}{
				"name": "Sneaky", "username": "sneaky1", "email": "sneaky@test.cd",
				"password": "LePass123!", "password_confirm": "LePass123!",
				"roles": []string{user.RoleAdmin},
			},
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/register", marshallObj(t, tt.body))
			env.server.ServeHTTP(rec, req)
			checkCode(t, rec, tt.wantCode)

			if tt.wantCode == http.StatusCreated {
				var usr user.User
				decodeBody(t, rec, &usr)
				if usr.ID == "" {
					t.Error("expected a generated user id")
				}
				if !usr.IsStudent() || usr.IsAdmin() {
					t.Errorf("registered user must be a plain student; roles = %v", usr.Roles)
				}
				if usr.IsActive == nil || !*usr.IsActive {
					t.Error("registered user must be active")
				}
				if usr.CompletedModules == nil || usr.Badges == nil {
					t.Error("progress sets must be initialized empty")
				}
			}
		})
	}
}

func Test_userApi_login(t *testing.T) {
	env := setup(t)
	createUser(t, env.usrRepo, "Awe", "awe", "awe@test.cd", "LePass123!", nil, true)
	createUser(t, env.usrRepo, "Off", "gone", "gone@test.cd", "LePass123!", nil, false)

	tests := []struct {
		name     string
		body     interface{}
		wantCode int
	}{
		{name: "login with username", body: map[string]string{"username": "awe", "password": "LePass123!"}, wantCode: http.StatusOK},
		{name: "login with email", body: map[string]string{"username": "awe@test.cd", "password": "LePass123!"}, wantCode: http.StatusOK},
		{name: "wrong password", body: map[string]string{"username": "awe", "password": "nope1234"}, wantCode: http.StatusBadRequest},
		{name: "unknown user", body: map[string]string{"username": "ghost", "password": "LePass123!"}, wantCode: http.StatusBadRequest},
		{name: "deactivated account", body: map[string]string{"username": "gone", "password": "LePass123!"}, wantCode: http.StatusForbidden},
		{name: "missing fields", body: map[string]string{"username": "awe"}, wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", marshallObj(t, tt.body))
			env.server.ServeHTTP(rec, req)
			checkCode(t, rec, tt.wantCode)

			if tt.wantCode == http.StatusOK {
				var res struct {
					Token string `json:"token"`
				}
				decodeBody(t, rec, &res)
				if res.Token == "" {
					t.Error("expected a signed token")
				}
			}
		})
	}
}

func Test_userApi_updateProfile(t *testing.T) {
	env := setup(t)
	usr := createUser(t, env.usrRepo, "Awe", "awe", "awe@test.cd", "LePass123!", nil, true)
	other := createUser(t, env.usrRepo, "Other", "other1", "other@test.cd", "LePass123!", nil, true)
	admin := createUser(t, env.usrRepo, "Admin", "admin1", "admin@test.cd", "LePass123!", user.AdminRoles, true)

	body := map[string]interface{}{
		"skills":         []string{"Go", "SQL"},
		"learning_goals": []string{"backend architecture"},
		"learning_style": "visual",
		"resume_text":    "Five years of backend work.",
	}

	t.Run("auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodPut, "/v1/users/"+usr.ID+"/profile", marshallObj(t, body))
		env.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusUnauthorized)
	})

	t.Run("self can update", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/"+usr.ID+"/profile", getToken(t, usr), marshallObj(t, body))
		env.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)

		var got user.User
		decodeBody(t, rec, &got)
		if len(got.Skills) != 2 || got.LearningStyle != user.StyleVisual || got.ResumeText == "" {
			t.Errorf("profile not saved: %+v", got)
		}
	})

	t.Run("admin can update", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/"+usr.ID+"/profile", getToken(t, admin), marshallObj(t, body))
		env.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)
	})

	t.Run("foreign profile is not found", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/"+usr.ID+"/profile", getToken(t, other), marshallObj(t, body))
		env.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusNotFound)
	})

	t.Run("invalid learning style", func(t *testing.T) {
		bad := map[string]interface{}{"learning_style": "psychic"}
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/"+usr.ID+"/profile", getToken(t, usr), marshallObj(t, bad))
		env.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusBadRequest)
	})
}

func Test_userApi_query(t *testing.T) {
	env := setup(t)
	student := createUser(t, env.usrRepo, "Hero", "hero12", "hero@test.cd", "LePass123!", nil, true)
	admin := createUser(t, env.usrRepo, "Admin", "admin1", "admin@test.cd", "LePass123!", user.AdminRoles, true)

	t.Run("auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/users")
		env.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusUnauthorized)
	})

	t.Run("admin required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users", getToken(t, student))
		env.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusForbidden)
	})

	t.Run("admin gets all", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users", getToken(t, admin))
		env.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)

		var users []user.User
		decodeBody(t, rec, &users)
		assert.ElementsMatch(t, usernames(users), []string{student.Username, admin.Username})
	})

	t.Run("search filter", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users?search=hero", getToken(t, admin))
		env.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)

		var users []user.User
		decodeBody(t, rec, &users)
		if len(users) != 1 || users[0].ID != student.ID {
			t.Errorf("users = %+v; want only %s", users, student.Username)
		}
	})
}
