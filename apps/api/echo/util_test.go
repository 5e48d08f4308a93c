package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/trezcool/njia/apps/api/echo"
	"github.com/trezcool/njia/core"
	"github.com/trezcool/njia/core/path"
	"github.com/trezcool/njia/core/user"
	aidummy "github.com/trezcool/njia/services/ai/dummy"
	emailsvc "github.com/trezcool/njia/services/email"
	dummydb "github.com/trezcool/njia/storage/database/dummy"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testLogger struct{}

func (testLogger) Debug(msg string, args ...interface{}) {}
func (testLogger) Info(msg string, args ...interface{})  {}
func (testLogger) Warn(msg string, args ...interface{})  {}
func (testLogger) Error(msg string, args ...interface{}) {}
func (testLogger) Fatal(msg string, args ...interface{}) {}

type testEnv struct {
	server   echoapi.Server
	usrRepo  user.Repository
	usrSvc   user.Service
	pathRepo path.Repository
	pathSvc  path.Service
	ai       *aidummy.Service
}

func newTestConfig() *core.Config {
	return &core.Config{
		TestMode:  true,
		Env:       "TEST",
		AppName:   "Njia",
		SecretKey: []byte("secret"),
		Server: core.ServerConfig{
			JWTExpirationDelta:        10 * time.Minute,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
		AI: core.AIConfig{
			CapstoneModuleID: "capstone-project",
		},
	}
}

func setup(t *testing.T, aiResponses ...aidummy.Response) testEnv {
	t.Helper()

	conf := newTestConfig()
	logger := testLogger{}

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	usrRepo := dummydb.NewUserRepository(db)
	pathRepo := dummydb.NewPathRepository(db)

	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc := user.NewService(usrRepo, mailSvc, conf)
	ai := aidummy.NewService(aiResponses...)
	pathSvc := path.NewService(pathRepo, usrRepo, ai, logger)

	validate := validator.New()
	translator := newTranslator(t)
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:       conf,
		Logger:     logger,
		UserSvc:    usrSvc,
		PathSvc:    pathSvc,
		Validate:   validate,
		Translator: translator,
	})
	return testEnv{
		server:   server,
		usrRepo:  usrRepo,
		usrSvc:   usrSvc,
		pathRepo: pathRepo,
		pathSvc:  pathSvc,
		ai:       ai,
	}
}

func newTranslator(t *testing.T) ut.Translator {
	t.Helper()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, ok := uni.GetTranslator("en")
	if !ok {
		t.Fatal("newTranslator() failed")
	}
	return translator
}

func createUser(t *testing.T, repo user.Repository, name, uname, email, pwd string, roles []string, isActive bool) user.User {
	t.Helper()

	usr := user.User{
		Name:             name,
		Username:         uname,
		Email:            email,
		Roles:            roles,
		Skills:           []string{},
		LearningGoals:    []string{},
		CompletedModules: []string{},
		Badges:           []string{},
		CreatedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}
	if usr.Roles == nil {
		usr.Roles = user.StudentRoles
	}
	usr.SetActive(isActive)
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := echoapi.GenerateToken(echoapi.GetUserClaims(usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

type httpErr struct {
	Error string `json:"error"`
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decodeBody() failed: %v; body: %s", err, rec.Body.String())
	}
}

func checkCode(t *testing.T, rec *httptest.ResponseRecorder, wantCode int) {
	t.Helper()
	if rec.Code != wantCode {
		t.Fatalf("failed! code = %v; wantCode %v; body: %s", rec.Code, wantCode, rec.Body.String())
	}
}
