package echoapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/njia/core"
	"github.com/trezcool/njia/core/path"
	"github.com/trezcool/njia/core/user"
	aidummy "github.com/trezcool/njia/services/ai/dummy"
)

var (
	analysisPayload = json.RawMessage(`{
		"identified_skills": ["Go", "SQL"],
		"skill_gaps": ["Kubernetes"],
		"suggested_skills": ["Terraform"]
	}`)

	wrappedModulesPayload = json.RawMessage(`{"modules": [
		{"id": "go-basics", "title": "Go Basics", "difficulty": "beginner", "resource_links": [], "prerequisites": []},
		{"id": "go-concurrency", "title": "Go Concurrency", "difficulty": "intermediate", "resource_links": [], "prerequisites": ["go-basics"]}
	]}`)

	bareModulesPayload = json.RawMessage(`[
		{"id": "sql-101", "title": "SQL 101", "difficulty": "beginner", "resource_links": [], "prerequisites": []}
	]`)
)

func seedPath(t *testing.T, env testEnv, usr user.User, moduleIDs ...string) path.LearningPath {
	t.Helper()

	mods := make([]path.LearningModule, 0, len(moduleIDs))
	for _, id := range moduleIDs {
		mods = append(mods, path.LearningModule{ID: id, Title: strings.Title(id), Difficulty: path.DifficultyBeginner})
	}
	now := time.Now().UTC()
	p, err := env.pathRepo.CreatePath(context.Background(), path.LearningPath{
		ID:        uuid.New().String(),
		UserID:    usr.ID,
		Modules:   mods,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("seedPath() failed: %v", err)
	}
	return p
}

func Test_pathApi_generate(t *testing.T) {
	t.Run("with resume runs analysis then synthesis", func(t *testing.T) {
		env := setup(t,
			aidummy.Response{Payload: analysisPayload},
			aidummy.Response{Payload: wrappedModulesPayload},
		)
		usr := createUser(t, env.usrRepo, "Awe", "awe", "awe@test.cd", "LePass123!", nil, true)
		if _, err := env.usrSvc.UpdateProfile(context.Background(), usr.ID, user.ProfileUpdate{
			Skills:     []string{"Go"},
			ResumeText: "Five years of backend work.",
		}); err != nil {
			t.Fatalf("UpdateProfile() failed: %v", err)
		}

		req, rec := newAuthRequest(http.MethodPost, "/v1/paths/generate", getToken(t, usr))
		env.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusCreated)

		var p path.LearningPath
		decodeBody(t, rec, &p)
		if p.ID == "" || p.UserID != usr.ID {
			t.Errorf("unexpected path identity: %+v", p)
		}
		if len(p.Modules) != 2 || p.Modules[0].ID != "go-basics" {
			t.Errorf("unexpected modules: %+v", p.Modules)
		}
		if env.ai.CallCount() != 2 {
			t.Errorf("CallCount() = %d; want 2 (analysis + synthesis)", env.ai.CallCount())
		}
	})

	t.Run("without resume skips analysis", func(t *testing.T) {
		env := setup(t, aidummy.Response{Payload: bareModulesPayload})
		usr := createUser(t, env.usrRepo, "Awe", "awe", "awe@test.cd", "LePass123!", nil, true)

		req, rec := newAuthRequest(http.MethodPost, "/v1/paths/generate", getToken(t, usr))
		env.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusCreated)

		var p path.LearningPath
		decodeBody(t, rec, &p)
		if len(p.Modules) != 1 || p.Modules[0].ID != "sql-101" {
			t.Errorf("unexpected modules: %+v", p.Modules)
		}
		if env.ai.CallCount() != 1 {
			t.Errorf("CallCount() = %d; want 1 (synthesis only)", env.ai.CallCount())
		}
	})

	t.Run("regeneration keeps earlier paths", func(t *testing.T) {
		env := setup(t,
			aidummy.Response{Payload: bareModulesPayload},
			aidummy.Response{Payload: bareModulesPayload},
		)
		usr := createUser(t, env.usrRepo, "Awe", "awe", "awe@test.cd", "LePass123!", nil, true)
		token := getToken(t, usr)

		for i := 0; i < 2; i++ {
			req, rec := newAuthRequest(http.MethodPost, "/v1/paths/generate", token)
			env.server.ServeHTTP(rec, req)
			checkCode(t, rec, http.StatusCreated)
		}

		req, rec := newAuthRequest(http.MethodGet, "/v1/paths", token)
		env.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)

		var paths []path.LearningPath
		decodeBody(t, rec, &paths)
		if len(paths) != 2 {
			t.Errorf("len(paths) = %d; want 2", len(paths))
		}
	})

	t.Run("upstream format error is a 502", func(t *testing.T) {
		env := setup(t, aidummy.Response{Err: core.ErrUpstreamFormat})
		usr := createUser(t, env.usrRepo, "Awe", "awe", "awe@test.cd", "LePass123!", nil, true)

		req, rec := newAuthRequest(http.MethodPost, "/v1/paths/generate", getToken(t, usr))
		env.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusBadGateway)

		var body struct {
			Code string `json:"code"`
		}
		decodeBody(t, rec, &body)
		if body.Code != "upstream_format" {
			t.Errorf("code = %q; want %q", body.Code, "upstream_format")
		}
	})

	t.Run("upstream parse error is a 502", func(t *testing.T) {
		env := setup(t, aidummy.Response{Err: core.ErrUpstreamParse})
		usr := createUser(t, env.usrRepo, "Awe", "awe", "awe@test.cd", "LePass123!", nil, true)

		req, rec := newAuthRequest(http.MethodPost, "/v1/paths/generate", getToken(t, usr))
		env.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusBadGateway)

		var body struct {
			Code string `json:"code"`
		}
		decodeBody(t, rec, &body)
		if body.Code != "upstream_parse" {
			t.Errorf("code = %q; want %q", body.Code, "upstream_parse")
		}
	})

	t.Run("upstream timeout is a 504", func(t *testing.T) {
		env := setup(t, aidummy.Response{Err: core.ErrUpstreamTimeout})
		usr := createUser(t, env.usrRepo, "Awe", "awe", "awe@test.cd", "LePass123!", nil, true)

		req, rec := newAuthRequest(http.MethodPost, "/v1/paths/generate", getToken(t, usr))
		env.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusGatewayTimeout)

		var body struct {
			Code string `json:"code"`
		}
		decodeBody(t, rec, &body)
		if body.Code != "upstream_timeout" {
			t.Errorf("code = %q; want %q", body.Code, "upstream_timeout")
		}
	})

	t.Run("unexpected synthesis shape persists nothing", func(t *testing.T) {
		env := setup(t, aidummy.Response{Payload: json.RawMessage(`{"surprise": true}`)})
		usr := createUser(t, env.usrRepo, "Awe", "awe", "awe@test.cd", "LePass123!", nil, true)
		token := getToken(t, usr)

		req, rec := newAuthRequest(http.MethodPost, "/v1/paths/generate", token)
		env.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusBadGateway)

		req, rec = newAuthRequest(http.MethodGet, "/v1/paths", token)
		env.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)

		var paths []path.LearningPath
		decodeBody(t, rec, &paths)
		if len(paths) != 0 {
			t.Errorf("len(paths) = %d; want 0", len(paths))
		}
	})
}

func Test_pathApi_retrieveAndDestroy(t *testing.T) {
	env := setup(t)
	owner := createUser(t, env.usrRepo, "Owner", "owner1", "owner@test.cd", "LePass123!", nil, true)
	intruder := createUser(t, env.usrRepo, "Intruder", "intrud1", "intruder@test.cd", "LePass123!", nil, true)
	p := seedPath(t, env, owner, "go-basics", "go-concurrency")

	t.Run("auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/paths/"+p.ID)
		env.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusUnauthorized)
		if body := rec.Body.String(); !strings.Contains(body, errMissingToken.Error) {
			t.Errorf("unexpected body: %s", body)
		}
	})

	t.Run("owner retrieves", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/paths/"+p.ID, getToken(t, owner))
		env.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)
	})

	t.Run("foreign path is not found", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/paths/"+p.ID, getToken(t, intruder))
		env.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusNotFound)
	})

	t.Run("foreign delete is not found and keeps the path", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/paths/"+p.ID, getToken(t, intruder))
		env.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusNotFound)

		if _, err := env.pathRepo.GetPathByID(context.Background(), p.ID, owner.ID); err != nil {
			t.Errorf("path must survive a foreign delete: %v", err)
		}
	})

	t.Run("owner deletes", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/paths/"+p.ID, getToken(t, owner))
		env.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusNoContent)

		req, rec = newAuthRequest(http.MethodGet, "/v1/paths/"+p.ID, getToken(t, owner))
		env.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusNotFound)
	})
}

func Test_pathApi_progress(t *testing.T) {
	env := setup(t)
	usr := createUser(t, env.usrRepo, "Awe", "awe", "awe@test.cd", "LePass123!", nil, true)
	seedPath(t, env, usr, "m1", "m2", "m3", "capstone-project")
	token := getToken(t, usr)

	complete := func(t *testing.T, moduleID string) []string {
		t.Helper()
		body := marshallObj(t, map[string]string{"module_id": moduleID})
		req, rec := newAuthRequest(http.MethodPost, "/v1/paths/progress", token, body)
		env.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)

		var res struct {
			NewBadges []string `json:"new_badges"`
		}
		decodeBody(t, rec, &res)
		if res.NewBadges == nil {
			t.Fatal("new_badges must never be null")
		}
		return res.NewBadges
	}

	if got := complete(t, "m1"); len(got) != 0 {
		t.Errorf("first completion awarded %v; want none", got)
	}
	if got := complete(t, "m2"); len(got) != 0 {
		t.Errorf("second completion awarded %v; want none", got)
	}
	if got := complete(t, "m3"); len(got) != 1 || got[0] != user.BadgeThreeModulesComplete {
		t.Errorf("third completion awarded %v; want [%s]", got, user.BadgeThreeModulesComplete)
	}
	// repeating a completed module is a no-op and never re-awards
	if got := complete(t, "m3"); len(got) != 0 {
		t.Errorf("repeat completion awarded %v; want none", got)
	}
	if got := complete(t, "capstone-project"); len(got) != 1 || got[0] != user.BadgeCapstoneComplete {
		t.Errorf("capstone completion awarded %v; want [%s]", got, user.BadgeCapstoneComplete)
	}

	t.Run("completed is annotated on read", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/paths", token)
		env.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)

		var paths []path.LearningPath
		decodeBody(t, rec, &paths)
		if len(paths) != 1 {
			t.Fatalf("len(paths) = %d; want 1", len(paths))
		}
		for _, mod := range paths[0].Modules {
			if !mod.Completed {
				t.Errorf("module %s not annotated completed", mod.ID)
			}
		}
	})

	t.Run("missing module_id", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/paths/progress", token, marshallObj(t, map[string]string{}))
		env.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusBadRequest)
	})
}

func Test_pathApi_recommend(t *testing.T) {
	recsPayload := json.RawMessage(`[
		{"title": "Concurrency in Go", "url": "https://example.com/book", "type": "course"},
		{"title": "Go by Example", "url": "https://gobyexample.com", "type": "webzine"}
	]`)

	env := setup(t, aidummy.Response{Payload: recsPayload})
	usr := createUser(t, env.usrRepo, "Awe", "awe", "awe@test.cd", "LePass123!", nil, true)
	p := seedPath(t, env, usr, "go-concurrency")
	token := getToken(t, usr)

	t.Run("known module", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/paths/"+p.ID+"/modules/go-concurrency/recommendations", token)
		env.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)

		var recs []path.Recommendation
		decodeBody(t, rec, &recs)
		if len(recs) != 2 {
			t.Fatalf("len(recs) = %d; want 2", len(recs))
		}
		if recs[0].Type != path.RecTypeCourse {
			t.Errorf("recs[0].Type = %q; want %q", recs[0].Type, path.RecTypeCourse)
		}
		// unknown types are normalized
		if recs[1].Type != path.RecTypeOther {
			t.Errorf("recs[1].Type = %q; want %q", recs[1].Type, path.RecTypeOther)
		}
	})

	t.Run("unknown module", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/paths/"+p.ID+"/modules/nope/recommendations", token)
		env.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusNotFound)
	})
}
