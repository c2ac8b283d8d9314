package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jonathan/skillbuddy/internal/config"
	"github.com/jonathan/skillbuddy/internal/interview"
	"github.com/jonathan/skillbuddy/internal/server/ratelimit"
	"github.com/jonathan/skillbuddy/internal/service"
	"github.com/jonathan/skillbuddy/internal/store"
)

type testServer struct {
	*Server
	local *store.LocalFileStore
}

func newTestServer(t *testing.T, cfg config.ServerConfig, limiter *ratelimit.Limiter) *testServer {
	t.Helper()
	local := store.NewLocalFileStore(t.TempDir())
	st := store.NewFallbackStore(nil, local, nil)
	users := service.NewUserService(st, nil)
	hasher := &config.PasswordConfig{BcryptCost: bcrypt.MinCost}

	s, err := New(cfg, Deps{
		Users:       users,
		Interviews:  service.NewInterviewService(st, interview.DefaultCatalog(), users, nil),
		Feedback:    service.NewFeedbackService(st, users, nil),
		Credentials: service.NewCredentialService(st, hasher, users),
		JWT:         setupTestJWTService(t, 24),
		Limiter:     limiter,
		StorageMode: st.Mode(),
	})
	require.NoError(t, err)
	return &testServer{Server: s, local: local}
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (s *testServer) register(t *testing.T, email string, tempXP int) map[string]any {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/auth/register", map[string]any{
		"email": email, "password": "secret123", "firstName": "Ada", "lastName": "Lovelace", "temporaryXP": tempXP,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeBody(t, w)
}

func defaultServer(t *testing.T) *testServer {
	return newTestServer(t, config.ServerConfig{Port: 5000, AllowedOrigins: []string{"*"}}, nil)
}

func TestHealthEndpoints(t *testing.T) {
	s := defaultServer(t)

	for _, path := range []string{"/", "/health"} {
		w := s.do(t, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, w.Code)

		resp := decodeBody(t, w)
		assert.Equal(t, "healthy", resp["status"])
		assert.Equal(t, Version, resp["version"])
		assert.Equal(t, "local", resp["storage"])
		assert.Equal(t, "Skillbuddy Interview Prep API is running!", resp["message"])
		assert.NotEmpty(t, resp["features"])
	}
}

func TestUnknownRoute(t *testing.T) {
	w := defaultServer(t).do(t, http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNew_RequiresServices(t *testing.T) {
	_, err := New(config.ServerConfig{Port: 5000}, Deps{})
	assert.Error(t, err)
}

func TestRegister(t *testing.T) {
	s := defaultServer(t)

	resp := s.register(t, "ada@example.com", 75)

	assert.Equal(t, "User created successfully", resp["message"])
	assert.Equal(t, "ada_example_com", resp["user_id"])
	assert.Equal(t, float64(75), resp["xp_bonus"])
	assert.NotEmpty(t, resp["token"])
	user := resp["user_data"].(map[string]any)
	assert.Equal(t, float64(125), user["xp_points"])
	assert.Equal(t, float64(2), user["level"])
	assert.NotContains(t, user, "password_hash")
}

func TestRegister_Duplicate(t *testing.T) {
	s := defaultServer(t)
	s.register(t, "ada@example.com", 0)

	w := s.do(t, http.MethodPost, "/api/auth/register", map[string]any{"email": "ada@example.com", "password": "other"})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "User already exists", decodeBody(t, w)["error"])
}

func TestRegister_Validation(t *testing.T) {
	s := defaultServer(t)

	tests := []struct {
		name  string
		body  any
		field string
	}{
		{name: "bad email", body: map[string]any{"email": "nope", "password": "x"}, field: "email"},
		{name: "missing password", body: map[string]any{"email": "a@b.com"}, field: "password"},
		{name: "negative bonus", body: map[string]any{"email": "a@b.com", "password": "x", "temporaryXP": -5}, field: "temporaryXP"},
		{name: "bonus above cap", body: map[string]any{"email": "a@b.com", "password": "x", "temporaryXP": math.MaxInt64}, field: "temporaryXP"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/api/auth/register", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decodeBody(t, w)["error"], tt.field)
		})
	}
}

func TestInvalidBody(t *testing.T) {
	s := defaultServer(t)

	for _, path := range []string{"/api/auth/register", "/api/auth/login", "/api/profile/add-xp", "/api/interview/start", "/api/feedback/submit"} {
		w := s.do(t, http.MethodPost, path, "{not json")
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.Equal(t, msgInvalidBody, decodeBody(t, w)["error"], path)
	}
}

func TestLogin(t *testing.T) {
	s := defaultServer(t)
	s.register(t, "ada@example.com", 0)

	w := s.do(t, http.MethodPost, "/api/auth/login", map[string]any{"email": "ada@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeBody(t, w)
	assert.Equal(t, "Login successful", resp["message"])
	assert.Equal(t, "ada_example_com", resp["user_id"])
	assert.Equal(t, "ada@example.com", resp["email"])
	assert.NotEmpty(t, resp["token"])
	assert.NotContains(t, resp, "xp_bonus")
}

func TestLogin_Failures(t *testing.T) {
	s := defaultServer(t)
	s.register(t, "ada@example.com", 0)

	w := s.do(t, http.MethodPost, "/api/auth/login", map[string]any{"email": "ada@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/auth/login", map[string]any{"email": "ghost@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, msgRegisterFirst, decodeBody(t, w)["error"])

	w = s.do(t, http.MethodPost, "/api/auth/login", map[string]any{"email": "ada@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogout(t *testing.T) {
	w := defaultServer(t).do(t, http.MethodPost, "/api/auth/logout", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Logged out successfully", decodeBody(t, w)["message"])
}

func TestMe(t *testing.T) {
	s := defaultServer(t)
	token := s.register(t, "ada@example.com", 0)["token"].(string)

	w := s.do(t, http.MethodGet, "/api/user/me", nil, "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	user := decodeBody(t, w)["user"].(map[string]any)
	assert.Equal(t, "ada_example_com", user["uid"])

	w = s.do(t, http.MethodGet, "/api/user/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/user/me", nil, "Authorization", "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateProfile(t *testing.T) {
	s := defaultServer(t)
	s.register(t, "ada@example.com", 0)

	w := s.do(t, http.MethodPost, "/api/profile/update-profile", map[string]any{
		"user_id":         "ada_example_com",
		"github_profile":  "https://github.com/ada",
		"resume_uploaded": true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decodeBody(t, w)["updated_data"].(map[string]any)
	assert.Equal(t, "https://github.com/ada", updated["github_profile"])
	assert.Equal(t, "resume.pdf", updated["resume_file_name"])

	w = s.do(t, http.MethodGet, "/api/user/profile/ada_example_com", nil)
	require.Equal(t, http.StatusOK, w.Code)
	user := decodeBody(t, w)["user"].(map[string]any)
	assert.Equal(t, "https://github.com/ada", user["github_profile"])
	assert.Equal(t, true, user["resume_uploaded"])
}

func TestUpdateProfile_Errors(t *testing.T) {
	s := defaultServer(t)
	s.register(t, "ada@example.com", 0)

	w := s.do(t, http.MethodPost, "/api/profile/update-profile", map[string]any{"user_id": "ghost", "github_profile": "https://github.com/x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, msgUserNotFound, decodeBody(t, w)["error"])

	w = s.do(t, http.MethodPost, "/api/profile/update-profile", map[string]any{"user_id": "ada_example_com", "linkedin_profile": "not a url"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/profile/update-profile", map[string]any{"github_profile": "https://github.com/x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddXP(t *testing.T) {
	s := defaultServer(t)
	s.register(t, "ada@example.com", 0)

	w := s.do(t, http.MethodPost, "/api/profile/add-xp", map[string]any{"user_id": "ada_example_com", "xp_amount": 150})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeBody(t, w)
	assert.Equal(t, "XP added successfully", resp["message"])
	award := resp["xp_data"].(map[string]any)
	assert.Equal(t, float64(150), award["xp_gained"])
	assert.Equal(t, float64(200), award["total_xp"])
	assert.Equal(t, float64(2), award["current_level"])
	assert.Equal(t, true, award["level_up"])
	assert.Equal(t, service.ManualXPSource, award["source"])

	w = s.do(t, http.MethodPost, "/api/profile/add-xp", map[string]any{"user_id": "ada_example_com", "xp_amount": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/profile/add-xp", map[string]any{"user_id": "ghost", "xp_amount": 10})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddXP_AmountAboveCap(t *testing.T) {
	s := defaultServer(t)
	s.register(t, "ada@example.com", 0)

	for _, amount := range []int64{1_000_001, math.MaxInt64} {
		w := s.do(t, http.MethodPost, "/api/profile/add-xp", map[string]any{"user_id": "ada_example_com", "xp_amount": amount})
		assert.Equal(t, http.StatusBadRequest, w.Code, "amount=%d", amount)
		assert.Contains(t, decodeBody(t, w)["error"], "xp_amount")
	}

	w := s.do(t, http.MethodGet, "/api/user/profile/ada_example_com", nil)
	require.Equal(t, http.StatusOK, w.Code)
	user := decodeBody(t, w)["user"].(map[string]any)
	assert.Equal(t, float64(50), user["xp_points"])
}

func TestQuestions(t *testing.T) {
	s := defaultServer(t)

	w := s.do(t, http.MethodGet, "/api/interview/questions/SoftwareDev", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, "SoftwareDev", resp["career_path"])
	assert.Equal(t, float64(10), resp["total"])
	assert.Len(t, resp["questions"], 10)

	w = s.do(t, http.MethodGet, "/api/interview/questions/UnknownPath", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, msgInvalidPath, decodeBody(t, w)["error"])
}

func TestGuestInterviewFlow(t *testing.T) {
	s := defaultServer(t)

	w := s.do(t, http.MethodPost, "/api/interview/start", map[string]any{"career_path": "SoftwareDev"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	started := decodeBody(t, w)
	sessionID := started["session_id"].(string)
	assert.NotEmpty(t, sessionID)
	assert.Equal(t, float64(10), started["total_questions"])
	assert.Equal(t, "guest", started["session"].(map[string]any)["user_id"])

	w = s.do(t, http.MethodPost, "/api/interview/response", map[string]any{
		"session_id": sessionID, "question_id": 1, "response": "I would profile first.",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	progress := decodeBody(t, w)
	assert.Equal(t, "Response submitted successfully", progress["message"])
	assert.Equal(t, float64(1), progress["questions_answered"])
	assert.Equal(t, float64(10), progress["completion_percentage"])

	w = s.do(t, http.MethodPost, "/api/interview/end", map[string]any{"session_id": sessionID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	done := decodeBody(t, w)
	assert.Equal(t, float64(65), done["xp_earned"])
	assert.Equal(t, "completed", done["session_data"].(map[string]any)["status"])
	assert.NotContains(t, done, "xp_award")

	w = s.do(t, http.MethodPost, "/api/interview/end", map[string]any{"session_id": sessionID})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/api/interview/response", map[string]any{
		"session_id": sessionID, "question_id": 2, "response": "late",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisteredInterviewFlow(t *testing.T) {
	s := defaultServer(t)
	s.register(t, "ada@example.com", 0)

	w := s.do(t, http.MethodPost, "/api/interview/start", map[string]any{"user_id": "ada_example_com", "career_path": "SoftwareDev"})
	require.Equal(t, http.StatusCreated, w.Code)
	sessionID := decodeBody(t, w)["session_id"].(string)

	for i := 1; i <= 3; i++ {
		w = s.do(t, http.MethodPost, "/api/interview/response", map[string]any{
			"session_id": sessionID, "question_id": i, "response": "answer",
		})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w = s.do(t, http.MethodPost, "/api/interview/end", map[string]any{"session_id": sessionID})
	require.Equal(t, http.StatusOK, w.Code)
	done := decodeBody(t, w)
	assert.Equal(t, float64(95), done["xp_earned"])
	assert.Equal(t, float64(145), done["xp_award"].(map[string]any)["total_xp"])

	w = s.do(t, http.MethodGet, "/api/user/profile/ada_example_com", nil)
	require.Equal(t, http.StatusOK, w.Code)
	profile := decodeBody(t, w)
	user := profile["user"].(map[string]any)
	assert.Equal(t, float64(145), user["xp_points"])
	assert.Equal(t, float64(1), user["completed_interviews"])
	stats := profile["statistics"].(map[string]any)
	assert.Equal(t, float64(1), stats["total_sessions"])
	assert.Equal(t, float64(100), stats["completion_rate"])
	assert.Equal(t, float64(3), stats["total_questions_answered"])
	assert.Len(t, profile["recent_sessions"], 1)
}

func TestInterview_Errors(t *testing.T) {
	s := defaultServer(t)

	w := s.do(t, http.MethodPost, "/api/interview/start", map[string]any{"career_path": "UnknownPath"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/api/interview/start", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/interview/response", map[string]any{
		"session_id": "missing", "question_id": 1, "response": "x",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, msgSessionNotFound, decodeBody(t, w)["error"])

	w = s.do(t, http.MethodPost, "/api/interview/response", map[string]any{"session_id": "missing", "response": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/interview/end", map[string]any{"session_id": "missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserProfile_NotFound(t *testing.T) {
	w := defaultServer(t).do(t, http.MethodGet, "/api/user/profile/ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, msgUserNotFound, decodeBody(t, w)["error"])

	w = defaultServer(t).do(t, http.MethodGet, "/api/user/profile/a%5Cb", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, msgUserNotFound, decodeBody(t, w)["error"])
}

func TestSubmitFeedback(t *testing.T) {
	s := defaultServer(t)
	s.register(t, "ada@example.com", 0)

	w := s.do(t, http.MethodPost, "/api/feedback/submit", map[string]any{
		"user_id": "ada_example_com", "session_id": "s-1", "rating": 5, "comments": "Great practice",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decodeBody(t, w)
	assert.Equal(t, "Feedback submitted successfully", resp["message"])
	assert.Equal(t, float64(25), resp["bonus_xp"])
	assert.NotEmpty(t, resp["feedback_id"])

	w = s.do(t, http.MethodPost, "/api/feedback/submit", map[string]any{"user_id": "guest", "session_id": "s-2", "rating": 3})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, float64(0), decodeBody(t, w)["bonus_xp"])
}

func TestSubmitFeedback_RatingOutOfRange(t *testing.T) {
	s := defaultServer(t)

	w := s.do(t, http.MethodPost, "/api/feedback/submit", map[string]any{"user_id": "guest", "session_id": "s-1", "rating": 6})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody(t, w)["error"], "rating")

	raw, err := s.local.List(context.Background(), store.KindFeedback, store.Filter{}, 0)
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestRateLimit(t *testing.T) {
	limiter := ratelimit.NewLimiter(&ratelimit.Config{Enabled: true, DefaultLimit: 2, DefaultWindow: time.Minute})
	t.Cleanup(limiter.Stop)
	s := newTestServer(t, config.ServerConfig{Port: 5000}, limiter)

	for i := 0; i < 2; i++ {
		w := s.do(t, http.MethodGet, "/api/interview/questions/SoftwareDev", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := s.do(t, http.MethodGet, "/api/interview/questions/SoftwareDev", nil)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	resp := decodeBody(t, w)
	assert.Equal(t, "rate_limit_exceeded", resp["error"])
	assert.Equal(t, float64(2), resp["limit"])

	w = s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORS(t *testing.T) {
	s := defaultServer(t)

	w := s.do(t, http.MethodOptions, "/api/auth/login", nil, "Origin", "http://localhost:19006")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")

	restricted := newTestServer(t, config.ServerConfig{Port: 5000, AllowedOrigins: []string{"https://app.skillbuddy.dev"}}, nil)

	w = restricted.do(t, http.MethodGet, "/health", nil, "Origin", "https://app.skillbuddy.dev")
	assert.Equal(t, "https://app.skillbuddy.dev", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", w.Header().Get("Vary"))

	w = restricted.do(t, http.MethodGet, "/health", nil, "Origin", "https://evil.example")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestID(t *testing.T) {
	s := defaultServer(t)

	w := s.do(t, http.MethodGet, "/health", nil)
	assert.Len(t, w.Header().Get(requestIDHeader), 36)

	w = s.do(t, http.MethodGet, "/health", nil, requestIDHeader, "req-123")
	assert.Equal(t, "req-123", w.Header().Get(requestIDHeader))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "validation", err: &service.ErrValidation{Field: "rating", Message: "must be at most 5"}, status: http.StatusBadRequest},
		{name: "not found", err: &service.ErrNotFound{Kind: service.KindUser, ID: "x"}, status: http.StatusNotFound},
		{name: "invalid career path", err: service.ErrInvalidCareerPath("Chef"), status: http.StatusNotFound},
		{name: "already exists", err: &service.ErrAlreadyExists{ID: "x"}, status: http.StatusConflict},
		{name: "already completed", err: &service.ErrAlreadyCompleted{SessionID: "s"}, status: http.StatusConflict},
		{name: "credentials", err: &service.ErrInvalidCredentials{}, status: http.StatusUnauthorized},
		{name: "internal", err: &service.ErrInternal{Op: "put user", Err: errors.New("disk full")}, status: http.StatusInternalServerError},
		{name: "wrapped", err: errors.Join(errors.New("ctx"), &service.ErrNotFound{Kind: service.KindSession}), status: http.StatusNotFound},
		{name: "unknown", err: errors.New("boom"), status: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, msgInternal, publicMessage(&service.ErrInternal{Op: "put user", Err: errors.New("disk full")}))
	assert.Equal(t, msgSessionNotFound, publicMessage(&service.ErrNotFound{Kind: service.KindSession, ID: "s"}))
	assert.Equal(t, "validation error: rating - must be at most 5",
		publicMessage(&service.ErrValidation{Field: "rating", Message: "must be at most 5"}))
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	s := newTestServer(t, config.ServerConfig{Port: 5000, ShutdownTimeout: time.Second}, nil)
	s.httpServer.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
