package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Anshika-404/MockMate/internal/auth"
	"github.com/Anshika-404/MockMate/internal/call"
	"github.com/Anshika-404/MockMate/internal/config"
	"github.com/Anshika-404/MockMate/internal/feedback"
	"github.com/Anshika-404/MockMate/internal/models"
	"github.com/Anshika-404/MockMate/internal/questions"
)

const testSessionToken = "valid-session"

// --- mocks ---

type mockGateway struct {
	user       *models.User
	signUpErr  error
	signInErr  error
	signInTok  string
	signUpUser *models.User
}

func (m *mockGateway) SignUp(ctx context.Context, idToken, name, email string) (*models.User, error) {
	if m.signUpErr != nil {
		return nil, m.signUpErr
	}
	if m.signUpUser != nil {
		return m.signUpUser, nil
	}
	return &models.User{ID: "user-1", Name: name, Email: email}, nil
}

func (m *mockGateway) SignIn(ctx context.Context, email, idToken string) (string, error) {
	if m.signInErr != nil {
		return "", m.signInErr
	}
	if m.signInTok != "" {
		return m.signInTok, nil
	}
	return testSessionToken, nil
}

func (m *mockGateway) Resolve(ctx context.Context, token string) (*models.User, error) {
	if token == testSessionToken {
		return m.user, nil
	}
	return nil, nil
}

func (m *mockGateway) Destroy(ctx context.Context, token string) error { return nil }

func (m *mockGateway) SessionCookie(token string) *http.Cookie {
	return &http.Cookie{Name: "session", Value: token, Path: "/", HttpOnly: true}
}

func (m *mockGateway) ClearCookie() *http.Cookie {
	return &http.Cookie{Name: "session", Value: "", Path: "/", MaxAge: -1}
}

func (m *mockGateway) CookieName() string { return "session" }

type mockQuestionService struct {
	interview *models.Interview
	err       error
}

func (m *mockQuestionService) Generate(ctx context.Context, req models.GenerateRequest) (*models.Interview, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.interview, nil
}

type mockFeedbackService struct {
	result   feedback.Result
	found    *models.Feedback
	findErr  error
	lastCall *feedback.Params
}

func (m *mockFeedbackService) Generate(ctx context.Context, params feedback.Params) feedback.Result {
	m.lastCall = &params
	return m.result
}

func (m *mockFeedbackService) Find(ctx context.Context, interviewID, userID string) (*models.Feedback, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.found, nil
}

type mockInterviewReader struct {
	byID      map[string]*models.Interview
	yours     []*models.Interview
	available []*models.Interview
}

func (m *mockInterviewReader) GetInterview(ctx context.Context, id string) (*models.Interview, error) {
	return m.byID[id], nil
}

func (m *mockInterviewReader) ListInterviewsByUser(ctx context.Context, userID string) ([]*models.Interview, error) {
	return m.yours, nil
}

func (m *mockInterviewReader) ListAvailableInterviews(ctx context.Context, excludeUserID string, limit int) ([]*models.Interview, error) {
	return m.available, nil
}

// --- helpers ---

type testDeps struct {
	gateway    *mockGateway
	questions  *mockQuestionService
	feedback   *mockFeedbackService
	interviews *mockInterviewReader
}

func configServer() config.ServerConfig {
	return config.ServerConfig{Host: "localhost", Port: 8080}
}

func newTestServer() (*Server, *testDeps) {
	deps := &testDeps{
		gateway:    &mockGateway{user: &models.User{ID: "user-1", Name: "Ada", Email: "ada@example.com"}},
		questions:  &mockQuestionService{},
		feedback:   &mockFeedbackService{},
		interviews: &mockInterviewReader{byID: make(map[string]*models.Interview)},
	}

	srv := NewServer(
		configServer(),
		deps.gateway,
		deps.questions,
		deps.feedback,
		deps.interviews,
		call.NewRunner(nil, nil),
		call.NewRegistry(),
	)
	return srv, deps
}

func doRequest(t *testing.T, srv *Server, method, path, body string, authenticated bool) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authenticated {
		req.AddCookie(&http.Cookie{Name: "session", Value: testSessionToken})
	}

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

// --- tests ---

func TestHealth(t *testing.T) {
	srv, _ := newTestServer()
	rec := doRequest(t, srv, "GET", "/health", "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	srv, _ := newTestServer()

	paths := []struct {
		method string
		path   string
	}{
		{"GET", "/api/v1/dashboard"},
		{"GET", "/api/v1/auth/me"},
		{"GET", "/api/v1/interviews/iv-1"},
		{"GET", "/api/v1/interviews/iv-1/feedback"},
	}

	for _, p := range paths {
		rec := doRequest(t, srv, p.method, p.path, "", false)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", p.method, p.path, rec.Code)
		}
	}
}

func TestDashboard_EmptyStateHasNonNullArrays(t *testing.T) {
	srv, _ := newTestServer()

	rec := doRequest(t, srv, "GET", "/api/v1/dashboard", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			YourInterviews      []json.RawMessage `json:"your_interviews"`
			AvailableInterviews []json.RawMessage `json:"available_interviews"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}

	body := rec.Body.String()
	if strings.Contains(body, `"your_interviews":null`) {
		t.Error("your_interviews must be an empty array, not null")
	}
	if strings.Contains(body, `"available_interviews":null`) {
		t.Error("available_interviews must be an empty array, not null")
	}
}

func TestDashboard_DecoratesWithFeedback(t *testing.T) {
	srv, deps := newTestServer()
	deps.interviews.yours = []*models.Interview{{ID: "iv-1", UserID: "user-1", Role: "Backend"}}
	deps.feedback.found = &models.Feedback{ID: "fb-1", TotalScore: 88, FinalAssessment: "strong"}

	rec := doRequest(t, srv, "GET", "/api/v1/dashboard", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Data models.DashboardResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(resp.Data.YourInterviews) != 1 {
		t.Fatalf("expected 1 card, got %d", len(resp.Data.YourInterviews))
	}
	card := resp.Data.YourInterviews[0]
	if card.TotalScore == nil || *card.TotalScore != 88 {
		t.Error("card should carry the feedback total score")
	}
	if card.FinalAssessment != "strong" {
		t.Errorf("unexpected final assessment: %s", card.FinalAssessment)
	}
}

func TestGenerate_Success(t *testing.T) {
	srv, deps := newTestServer()
	deps.questions.interview = &models.Interview{
		ID:        "iv-1",
		Questions: []string{"What is Go?", "What is a channel?"},
	}

	rec := doRequest(t, srv, "POST", "/api/vapi/generate",
		`{"type":"Technical","role":"Backend","level":"Senior","techstack":"Go","amount":2,"userid":"user-1"}`, false)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Success   bool     `json:"success"`
		Questions []string `json:"questions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if !resp.Success {
		t.Error("expected success")
	}
	if len(resp.Questions) != 2 {
		t.Errorf("expected 2 questions, got %d", len(resp.Questions))
	}
}

func TestGenerate_BadAIResponse(t *testing.T) {
	srv, deps := newTestServer()
	deps.questions.err = questions.ErrBadAIResponse

	rec := doRequest(t, srv, "POST", "/api/vapi/generate",
		`{"type":"Technical","role":"Backend","level":"Senior","techstack":"Go","amount":2,"userid":"user-1"}`, false)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	var resp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.Success {
		t.Error("expected failure")
	}
	if resp.Error != "Bad AI response" {
		t.Errorf("expected error %q, got %q", "Bad AI response", resp.Error)
	}
}

func TestGenerate_NotConfigured(t *testing.T) {
	srv, deps := newTestServer()
	deps.questions.err = questions.ErrNotConfigured

	rec := doRequest(t, srv, "POST", "/api/vapi/generate",
		`{"type":"Technical","role":"Backend","level":"Senior","techstack":"Go","amount":2,"userid":"user-1"}`, false)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Missing VAPI environment variables") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestSignUp_Conflict(t *testing.T) {
	srv, deps := newTestServer()
	deps.gateway.signUpErr = auth.ErrUserExists

	rec := doRequest(t, srv, "POST", "/api/v1/auth/signup",
		`{"id_token":"tok","name":"Ada","email":"ada@example.com"}`, false)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "User already exists. Please sign in.") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestSignIn_SetsCookie(t *testing.T) {
	srv, _ := newTestServer()

	rec := doRequest(t, srv, "POST", "/api/v1/auth/signin",
		`{"email":"ada@example.com","id_token":"tok"}`, false)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	cookies := rec.Result().Cookies()
	var found bool
	for _, c := range cookies {
		if c.Name == "session" && c.Value == testSessionToken {
			found = true
		}
	}
	if !found {
		t.Error("expected session cookie in response")
	}
}

func TestSignIn_GenericFailure(t *testing.T) {
	srv, deps := newTestServer()
	deps.gateway.signInErr = auth.ErrSignInFailed

	rec := doRequest(t, srv, "POST", "/api/v1/auth/signin",
		`{"email":"ada@example.com","id_token":"bad"}`, false)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Failed to log into account. Please try again.") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestGetInterview_NotFound(t *testing.T) {
	srv, _ := newTestServer()

	rec := doRequest(t, srv, "GET", "/api/v1/interviews/missing", "", true)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGetFeedback_NotFound(t *testing.T) {
	srv, _ := newTestServer()

	rec := doRequest(t, srv, "GET", "/api/v1/interviews/iv-1/feedback", "", true)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRegenerateFeedback_UsesStoredTranscript(t *testing.T) {
	srv, deps := newTestServer()
	deps.interviews.byID["iv-1"] = &models.Interview{
		ID:         "iv-1",
		Transcript: []models.TranscriptTurn{{Role: "user", Content: "hello"}},
	}
	deps.feedback.result = feedback.Result{Success: true, FeedbackID: "fb-1"}

	rec := doRequest(t, srv, "POST", "/api/v1/interviews/iv-1/feedback", `{}`, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if deps.feedback.lastCall == nil {
		t.Fatal("feedback generation was not invoked")
	}
	if len(deps.feedback.lastCall.Transcript) != 1 {
		t.Error("stored transcript should be passed through")
	}
	if deps.feedback.lastCall.UserID != "user-1" {
		t.Errorf("unexpected user id: %s", deps.feedback.lastCall.UserID)
	}
}

func TestRegenerateFeedback_NoTranscript(t *testing.T) {
	srv, deps := newTestServer()
	deps.interviews.byID["iv-1"] = &models.Interview{ID: "iv-1"}

	rec := doRequest(t, srv, "POST", "/api/v1/interviews/iv-1/feedback", `{}`, true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRegenerateFeedback_GenerationFailure(t *testing.T) {
	srv, deps := newTestServer()
	deps.interviews.byID["iv-1"] = &models.Interview{
		ID:         "iv-1",
		Transcript: []models.TranscriptTurn{{Role: "user", Content: "hello"}},
	}
	deps.feedback.result = feedback.Result{Success: false}

	rec := doRequest(t, srv, "POST", "/api/v1/interviews/iv-1/feedback", `{}`, true)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestMe(t *testing.T) {
	srv, _ := newTestServer()

	rec := doRequest(t, srv, "GET", "/api/v1/auth/me", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Data models.User `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.Data.ID != "user-1" {
		t.Errorf("unexpected user: %+v", resp.Data)
	}
}
