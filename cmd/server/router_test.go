package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/tasker-api/internal/api"
	"github.com/phrazzld/tasker-api/internal/api/shared"
	"github.com/phrazzld/tasker-api/internal/config"
	"github.com/phrazzld/tasker-api/internal/events"
	"github.com/phrazzld/tasker-api/internal/mail"
	"github.com/phrazzld/tasker-api/internal/mocks"
	"github.com/phrazzld/tasker-api/internal/service"
	"github.com/phrazzld/tasker-api/internal/service/auth"
)

const testSecret = "test-secret-that-is-at-least-32-characters"

type testServer struct {
	t       *testing.T
	handler http.Handler
	users   *mocks.MemoryUserStore
	tasks   *mocks.MemoryTaskStore
	avatars *mocks.MemoryAvatarStore
	mailer  *mocks.RecordingMailer
	tokens  auth.TokenService
}

type session struct {
	user  api.UserResponse
	token string
}

func newTestServer(t *testing.T, rateLimit int) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		Server: config.ServerConfig{Port: 8080, AuthRateLimitPerMinute: rateLimit},
		Auth:   config.AuthConfig{JWTSecret: testSecret, BcryptCost: 4},
	}

	ts := &testServer{
		t:       t,
		users:   mocks.NewMemoryUserStore(),
		tasks:   mocks.NewMemoryTaskStore(),
		avatars: mocks.NewMemoryAvatarStore(),
		mailer:  &mocks.RecordingMailer{},
	}

	var err error
	ts.tokens, err = auth.NewTokenService(cfg.Auth)
	require.NoError(t, err)

	dispatcher := mail.NewDispatcher(mail.NewQueue(16, logger), ts.mailer, mail.DispatcherConfig{WorkerCount: 1}, logger)
	dispatcher.Start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		dispatcher.Stop(ctx)
	})

	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(mail.NewAccountEventHandler(dispatcher, logger))

	userService, err := service.NewUserService(service.UserServiceDeps{
		Users:   ts.users,
		Tasks:   ts.tasks,
		Avatars: ts.avatars,
		Tx:      mocks.TxRunner{},
		Tokens:  ts.tokens,
		Hasher:  auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		Emitter: emitter,
	}, logger)
	require.NoError(t, err)
	taskService, err := service.NewTaskService(ts.tasks, logger)
	require.NoError(t, err)

	app := &application{
		config:         cfg,
		logger:         logger,
		userStore:      ts.users,
		taskStore:      ts.tasks,
		avatarStore:    ts.avatars,
		tokenService:   ts.tokens,
		userService:    userService,
		taskService:    taskService,
		eventEmitter:   emitter,
		mailDispatcher: dispatcher,
	}
	ts.handler = app.setupRouter()
	return ts
}

func (ts *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	ts.t.Helper()
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = strings.NewReader(b)
		default:
			data, err := json.Marshal(b)
			require.NoError(ts.t, err)
			reader = bytes.NewReader(data)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) upload(token, filename string, data []byte) *httptest.ResponseRecorder {
	ts.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("avatar", filename)
	require.NoError(ts.t, err)
	_, err = part.Write(data)
	require.NoError(ts.t, err)
	require.NoError(ts.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/users/me/avatar", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) signUp(name, email string) session {
	ts.t.Helper()
	rec := ts.do(http.MethodPost, "/users", "", map[string]any{
		"name":     name,
		"email":    email,
		"password": "red12345!",
		"age":      30,
	})
	require.Equal(ts.t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp api.AuthResponse
	require.NoError(ts.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return session{user: resp.User, token: resp.Token}
}

func (ts *testServer) createTask(token, description string, completed bool) api.TaskResponse {
	ts.t.Helper()
	rec := ts.do(http.MethodPost, "/tasks", token, map[string]any{
		"description": description,
		"completed":   completed,
	})
	require.Equal(ts.t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp api.TaskResponse
	require.NoError(ts.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()
	var resp shared.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 40, B: 40, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, 0)
	rec := ts.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestSignUpTokenIdentifiesUser(t *testing.T) {
	ts := newTestServer(t, 0)
	s := ts.signUp("Ada", "ada@example.com")

	claims, err := ts.tokens.Verify(context.Background(), s.token)
	require.NoError(t, err)
	assert.Equal(t, s.user.ID, claims.UserID)

	rec := ts.do(http.MethodGet, "/users/me", s.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "tokens")
	assert.NotContains(t, rec.Body.String(), s.token)
}

func TestSignUpSendsWelcomeEmail(t *testing.T) {
	ts := newTestServer(t, 0)
	ts.signUp("Ada", "ada@example.com")

	require.Eventually(t, func() bool { return len(ts.mailer.Sent()) == 1 }, time.Second, 5*time.Millisecond)
	msg := ts.mailer.Sent()[0]
	assert.Equal(t, "ada@example.com", msg.To)
	assert.Equal(t, mail.WelcomeSubject, msg.Subject)
}

func TestSignUpRejections(t *testing.T) {
	ts := newTestServer(t, 0)
	ts.signUp("Ada", "ada@example.com")

	tests := []struct {
		name string
		body any
	}{
		{"duplicate email", map[string]any{"name": "Other", "email": "ADA@example.com", "password": "red12345!"}},
		{"weak password", map[string]any{"name": "Bob", "email": "bob@example.com", "password": "mypassword1"}},
		{"short password", map[string]any{"name": "Bob", "email": "bob@example.com", "password": "abc"}},
		{"bad email", map[string]any{"name": "Bob", "email": "bob", "password": "red12345!"}},
		{"negative age", map[string]any{"name": "Bob", "email": "bob@example.com", "password": "red12345!", "age": -1}},
		{"malformed json", `{"name":`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := ts.do(http.MethodPost, "/users", "", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, decodeError(t, rec).Error)
		})
	}
	assert.Equal(t, 1, ts.users.Len())
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t, 0)
	s := ts.signUp("Ada", "ada@example.com")

	rec := ts.do(http.MethodPost, "/users/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "red12345!",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp api.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, s.user.ID, resp.User.ID)
	assert.NotEqual(t, s.token, resp.Token)
	assert.Equal(t, 2, ts.users.TokenCount(s.user.ID))

	wrongPassword := ts.do(http.MethodPost, "/users/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "wrong-one!",
	})
	unknownEmail := ts.do(http.MethodPost, "/users/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "red12345!",
	})
	for _, rec := range []*httptest.ResponseRecorder{wrongPassword, unknownEmail} {
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Unable to login", decodeError(t, rec).Error)
	}
}

func TestLogoutRevokesOnlyCurrentToken(t *testing.T) {
	ts := newTestServer(t, 0)
	s := ts.signUp("Ada", "ada@example.com")

	rec := ts.do(http.MethodPost, "/users/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "red12345!",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var second api.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))

	assert.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/users/logout", s.token, nil).Code)

	rec = ts.do(http.MethodGet, "/users/me", s.token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Please authenticate.", decodeError(t, rec).Error)

	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/users/me", second.Token, nil).Code)
}

func TestLogoutAllRevokesOnlyThatUser(t *testing.T) {
	ts := newTestServer(t, 0)
	ada := ts.signUp("Ada", "ada@example.com")
	bob := ts.signUp("Bob", "bob@example.com")

	assert.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/users/logoutall", ada.token, nil).Code)

	assert.Equal(t, http.StatusUnauthorized, ts.do(http.MethodGet, "/users/me", ada.token, nil).Code)
	assert.Equal(t, 0, ts.users.TokenCount(ada.user.ID))
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/users/me", bob.token, nil).Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t, 0)
	ts.signUp("Ada", "ada@example.com")

	routes := []struct{ method, path string }{
		{http.MethodPost, "/users/logout"},
		{http.MethodPost, "/users/logoutall"},
		{http.MethodGet, "/users/me"},
		{http.MethodPatch, "/users/me"},
		{http.MethodDelete, "/users/me"},
		{http.MethodPost, "/users/me/avatar"},
		{http.MethodDelete, "/users/me/avatar"},
		{http.MethodGet, "/tasks"},
		{http.MethodPost, "/tasks"},
		{http.MethodGet, "/tasks/" + uuid.NewString()},
		{http.MethodPatch, "/tasks/" + uuid.NewString()},
		{http.MethodDelete, "/tasks/" + uuid.NewString()},
	}
	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			for _, token := range []string{"", "garbage"} {
				rec := ts.do(route.method, route.path, token, nil)
				assert.Equal(t, http.StatusUnauthorized, rec.Code)
				assert.Equal(t, "Please authenticate.", decodeError(t, rec).Error)
			}
		})
	}
}

func TestUpdateProfile(t *testing.T) {
	ts := newTestServer(t, 0)
	s := ts.signUp("Ada", "ada@example.com")

	t.Run("allowed fields", func(t *testing.T) {
		rec := ts.do(http.MethodPatch, "/users/me", s.token, `{"name":"Ada L","age":37}`)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp api.UserResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Ada L", resp.Name)
		assert.Equal(t, 37, resp.Age)
	})

	t.Run("foreign key mutates nothing", func(t *testing.T) {
		rec := ts.do(http.MethodPatch, "/users/me", s.token, `{"name":"Changed","_id":"x"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid updates!", decodeError(t, rec).Error)

		stored, err := ts.users.GetByID(context.Background(), s.user.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ada L", stored.Name)
	})

	t.Run("password change", func(t *testing.T) {
		rec := ts.do(http.MethodPatch, "/users/me", s.token, `{"password":"blue12345!"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		login := ts.do(http.MethodPost, "/users/login", "", map[string]string{
			"email":    "ada@example.com",
			"password": "blue12345!",
		})
		assert.Equal(t, http.StatusOK, login.Code)
	})
}

func TestDeleteAccountCascades(t *testing.T) {
	ts := newTestServer(t, 0)
	ada := ts.signUp("Ada", "ada@example.com")
	bob := ts.signUp("Bob", "bob@example.com")
	ts.createTask(ada.token, "one", false)
	ts.createTask(ada.token, "two", true)
	ts.createTask(bob.token, "bob's", false)
	require.Equal(t, http.StatusOK, ts.upload(ada.token, "me.png", pngBytes(t, 40, 40)).Code)

	rec := ts.do(http.MethodDelete, "/users/me", ada.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var deleted api.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &deleted))
	assert.Equal(t, ada.user.ID, deleted.ID)

	assert.Equal(t, 0, ts.tasks.CountByOwner(ada.user.ID))
	assert.Equal(t, 1, ts.tasks.CountByOwner(bob.user.ID))
	assert.Equal(t, http.StatusUnauthorized, ts.do(http.MethodGet, "/users/me", ada.token, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/users/"+ada.user.ID.String()+"/avatar", "", nil).Code)

	require.Eventually(t, func() bool {
		for _, msg := range ts.mailer.Sent() {
			if msg.Subject == mail.CancellationSubject && msg.To == "ada@example.com" {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)
}

func TestTaskOwnership(t *testing.T) {
	ts := newTestServer(t, 0)
	ada := ts.signUp("Ada", "ada@example.com")
	bob := ts.signUp("Bob", "bob@example.com")
	task := ts.createTask(ada.token, "  secret plan  ", false)
	assert.Equal(t, "secret plan", task.Description)
	assert.Equal(t, ada.user.ID, task.Owner)

	path := "/tasks/" + task.ID.String()
	tests := []struct {
		method string
		body   any
	}{
		{http.MethodGet, nil},
		{http.MethodPatch, `{"completed":true}`},
		{http.MethodDelete, nil},
	}
	for _, tc := range tests {
		t.Run(tc.method, func(t *testing.T) {
			rec := ts.do(tc.method, path, bob.token, tc.body)
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Equal(t, "Task not found", decodeError(t, rec).Error)
		})
	}

	rec := ts.do(http.MethodGet, path, ada.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got api.TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.False(t, got.Completed)
}

func TestTaskLifecycle(t *testing.T) {
	ts := newTestServer(t, 0)
	s := ts.signUp("Ada", "ada@example.com")
	task := ts.createTask(s.token, "write report", false)
	path := "/tasks/" + task.ID.String()

	rec := ts.do(http.MethodPatch, path, s.token, `{"completed":true,"description":"write the report"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated api.TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.True(t, updated.Completed)
	assert.Equal(t, "write the report", updated.Description)

	rec = ts.do(http.MethodPatch, path, s.token, `{"owner":"`+uuid.NewString()+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodDelete, path, s.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var removed api.TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &removed))
	assert.Equal(t, task.ID, removed.ID)

	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, path, s.token, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/tasks/not-a-uuid", s.token, nil).Code)
}

func TestCreateTaskValidation(t *testing.T) {
	ts := newTestServer(t, 0)
	s := ts.signUp("Ada", "ada@example.com")

	for _, body := range []string{`{"description":"   "}`, `{}`, `{"description":`} {
		rec := ts.do(http.MethodPost, "/tasks", s.token, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	assert.Equal(t, 0, ts.tasks.CountByOwner(s.user.ID))
}

func TestListTasks(t *testing.T) {
	ts := newTestServer(t, 0)
	ada := ts.signUp("Ada", "ada@example.com")
	bob := ts.signUp("Bob", "bob@example.com")
	for i := 0; i < 5; i++ {
		ts.createTask(ada.token, fmt.Sprintf("task %d", i), i%2 == 0)
	}
	ts.createTask(bob.token, "bob's done", true)

	list := func(query string) []api.TaskResponse {
		rec := ts.do(http.MethodGet, "/tasks"+query, ada.token, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp []api.TaskResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return resp
	}

	all := list("")
	assert.Len(t, all, 5)

	page := list("?completed=true&limit=2&page=1")
	assert.LessOrEqual(t, len(page), 2)
	for _, task := range page {
		assert.True(t, task.Completed)
		assert.Equal(t, ada.user.ID, task.Owner)
	}

	incomplete := list("?completed=false")
	assert.Len(t, incomplete, 2)

	sorted := list("?sortBy=description:desc")
	require.Len(t, sorted, 5)
	assert.Equal(t, "task 4", sorted[0].Description)

	rec := ts.do(http.MethodGet, "/tasks?limit=-1", ada.token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	bobRec := ts.do(http.MethodGet, "/tasks?completed=false", bob.token, nil)
	require.Equal(t, http.StatusOK, bobRec.Code)
	assert.JSONEq(t, "[]", bobRec.Body.String())
}

func TestAvatarUpload(t *testing.T) {
	ts := newTestServer(t, 0)
	s := ts.signUp("Ada", "ada@example.com")
	avatarPath := "/users/" + s.user.ID.String() + "/avatar"

	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, avatarPath, "", nil).Code)

	t.Run("rejects gif", func(t *testing.T) {
		rec := ts.upload(s.token, "me.gif", pngBytes(t, 10, 10))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects files over the limit", func(t *testing.T) {
		rec := ts.upload(s.token, "big.png", bytes.Repeat([]byte{0xAB}, 2_000_000))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects non-image content", func(t *testing.T) {
		rec := ts.upload(s.token, "fake.png", []byte("not an image"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("normalizes jpeg to 250x250 png", func(t *testing.T) {
		var buf bytes.Buffer
		src := imaging.New(600, 300, color.NRGBA{G: 180, A: 255})
		require.NoError(t, imaging.Encode(&buf, src, imaging.JPEG))

		rec := ts.upload(s.token, "photo.JPG", buf.Bytes())
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		got := ts.do(http.MethodGet, avatarPath, "", nil)
		require.Equal(t, http.StatusOK, got.Code)
		assert.Equal(t, "image/png", got.Header().Get("Content-Type"))
		cfg, format, err := image.DecodeConfig(bytes.NewReader(got.Body.Bytes()))
		require.NoError(t, err)
		assert.Equal(t, "png", format)
		assert.Equal(t, 250, cfg.Width)
		assert.Equal(t, 250, cfg.Height)

		me := ts.do(http.MethodGet, "/users/me", s.token, nil)
		var profile api.UserResponse
		require.NoError(t, json.Unmarshal(me.Body.Bytes(), &profile))
		assert.True(t, profile.HasAvatar)
	})

	t.Run("delete clears avatar", func(t *testing.T) {
		require.Equal(t, http.StatusOK, ts.do(http.MethodDelete, "/users/me/avatar", s.token, nil).Code)
		assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, avatarPath, "", nil).Code)
	})

	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/users/nope/avatar", "", nil).Code)
}

func TestAuthRoutesAreRateLimited(t *testing.T) {
	ts := newTestServer(t, 2)
	body := map[string]string{"email": "nobody@example.com", "password": "whatever1"}

	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPost, "/users/login", "", body).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPost, "/users/login", "", body).Code)

	rec := ts.do(http.MethodPost, "/users/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/health", "", nil).Code)
}

func TestErrorResponsesCarryTraceID(t *testing.T) {
	ts := newTestServer(t, 0)
	rec := ts.do(http.MethodGet, "/users/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decodeError(t, rec)
	assert.NotEmpty(t, resp.TraceID)
	assert.Equal(t, resp.TraceID, rec.Header().Get("X-Trace-ID"))
}
