package controller

import (
	"bytes"
	"context"
	"errors"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"school-chatbot-be/internal/dto"
	"school-chatbot-be/internal/pkg/logger"
	"school-chatbot-be/internal/pkg/serverutils"
	"school-chatbot-be/internal/pkg/testutil"
	"school-chatbot-be/internal/repository/memory"
	"school-chatbot-be/internal/service"
	"school-chatbot-be/pkg/admin/usage"
	"school-chatbot-be/pkg/ai/pipeline"
	"school-chatbot-be/pkg/document"
	"school-chatbot-be/pkg/rag"
	"school-chatbot-be/pkg/rag/intent"
	"school-chatbot-be/pkg/rag/session"
	"school-chatbot-be/pkg/rules"
	"school-chatbot-be/pkg/search"
	"school-chatbot-be/pkg/store"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPhone  = "(868) 555-0100"
	testEmail  = "office@school.example"
	testSecret = "test-secret"
)

type providers struct {
	llm       *testutil.FakeLLM
	embedder  *testutil.FakeEmbedder
	primary   *testutil.FakeSearch
	secondary *testutil.FakeSearch
}

func (p providers) calls() int {
	return p.llm.Calls() + p.embedder.Calls() + p.primary.Calls() + p.secondary.Calls()
}

func newTestApp(t *testing.T, p providers) *fiber.App {
	t.Helper()
	t.Setenv("SCHOOL_NAME", "Test College")
	t.Setenv("SCHOOL_PRINCIPAL", "")
	t.Setenv("SCHOOL_VICE_PRINCIPAL", "")

	log := logger.NewNopLogger()
	phraseRules, err := rules.Load("", map[string]string{"SCHOOL_PHONE": testPhone, "SCHOOL_EMAIL": testEmail})
	require.NoError(t, err)

	sessionRepo := memory.NewSessionRepository(time.Hour)
	sessions := session.NewManager(sessionRepo, 10)
	matcher := intent.NewMatcher(phraseRules, sessions, p.llm, "Test College", log)

	index := rag.NewIndex(p.embedder, log, 2, time.Second)
	_, err = index.Build(context.Background(), []store.Document{
		{Title: "Library", Content: "The library is open from 7:30am to 4pm."},
	})
	// a provider that is down leaves the index empty
	if !errors.Is(err, rag.ErrNothingEmbedded) {
		require.NoError(t, err)
	}

	tracker := usage.NewTracker(t.TempDir()+"/usage.json", map[string]usage.Limit{
		p.primary.Name():   {Daily: 10},
		p.secondary.Name(): {Daily: 10},
	}, log)

	answerer := pipeline.NewAnswerPipeline(
		pipeline.NewRAGPipeline(index, p.llm, 3, "Test College", log),
		pipeline.NewBypassPipeline(p.llm, "persona", log),
		p.primary, p.secondary,
		tracker,
		pipeline.Config{
			IrrelevantPhrases: phraseRules.IrrelevantPhrases,
			WeakPhrases:       phraseRules.WeakPhrases,
			StepTimeout:       time.Second,
			Apology:           "Sorry. Please call " + testPhone + " or email " + testEmail + ".",
		},
		log,
	)

	publisher := &nopPublisher{}
	chatbot := service.NewChatbotService(sessions, matcher, answerer, publisher, log)
	admin := service.NewAdminService(tracker, log, sessionRepo, document.NewLoader(log), index, t.TempDir())

	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware(log))
	NewHealthController(index).RegisterRoutes(app)
	api := app.Group("/api")
	NewChatbotController(chatbot).RegisterRoutes(api)
	NewAdminController(admin, testSecret).RegisterRoutes(api)
	return app
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, []byte) error { return nil }

func failingProviders() providers {
	return providers{
		llm:       testutil.FailingLLM(),
		embedder:  &testutil.FakeEmbedder{Err: testutil.ErrProviderDown},
		primary:   &testutil.FakeSearch{ProviderName: "braveSearch", Err: testutil.ErrProviderDown},
		secondary: &testutil.FakeSearch{ProviderName: "bingSearch", Err: testutil.ErrProviderDown},
	}
}

func workingProviders() providers {
	return providers{
		llm:       testutil.StaticLLM("The library is open from 7:30am to 4pm."),
		embedder:  &testutil.FakeEmbedder{Default: []float32{1, 0, 0}},
		primary:   &testutil.FakeSearch{ProviderName: "braveSearch", Results: []search.Result{{Title: "T", URL: "https://t.example", Snippet: "s"}}},
		secondary: &testutil.FakeSearch{ProviderName: "bingSearch"},
	}
}

func postChat(t *testing.T, app *fiber.App, body string) (int, map[string]string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]string{}
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return resp.StatusCode, out
}

func TestChatGreeting(t *testing.T) {
	p := workingProviders()
	app := newTestApp(t, p)

	status, body := postChat(t, app, `{"message":"hi"}`)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Hello! I'm the virtual assistant for Test College. How can I help you today?", body["reply"])
	assert.Len(t, body["sessionId"], 36)
}

func TestChatOtherSchoolMottoIsNotCanned(t *testing.T) {
	p := workingProviders()
	app := newTestApp(t, p)

	status, body := postChat(t, app, `{"message":"What is Naparima College's motto?"}`)

	assert.Equal(t, http.StatusOK, status)
	assert.NotContains(t, body["reply"], "Excellence, Duty, Truth")
	assert.Greater(t, p.llm.Calls(), 0)
}

func TestChatMottoCallsNoProvider(t *testing.T) {
	p := workingProviders()
	app := newTestApp(t, p)
	before := p.calls()

	status, body := postChat(t, app, `{"message":"What is the school motto?","sessionId":"visitor-1"}`)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "The motto of Test College is 'Excellence, Duty, Truth'.", body["reply"])
	assert.Equal(t, "visitor-1", body["sessionId"])
	assert.Equal(t, before, p.calls())
}

func TestChatFeesClarificationRepeats(t *testing.T) {
	p := workingProviders()
	app := newTestApp(t, p)

	_, first := postChat(t, app, `{"message":"fees","sessionId":"s"}`)
	_, second := postChat(t, app, `{"message":"fees","sessionId":"s"}`)

	assert.Equal(t, first["reply"], second["reply"])
	assert.Contains(t, first["reply"], "which fees")
}

func TestChatRAGAnswer(t *testing.T) {
	p := workingProviders()
	app := newTestApp(t, p)

	status, body := postChat(t, app, `{"query":"When is the library open?"}`)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "The library is open from 7:30am to 4pm.", body["reply"])
}

func TestChatAllProvidersFail(t *testing.T) {
	p := failingProviders()
	app := newTestApp(t, p)

	status, body := postChat(t, app, `{"message":"Tell me about the library"}`)

	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body["reply"], testPhone)
	assert.Contains(t, body["reply"], testEmail)
	assert.NotEmpty(t, body["sessionId"])
}

func TestChatBadRequests(t *testing.T) {
	app := newTestApp(t, workingProviders())

	tests := []struct {
		name string
		body string
	}{
		{"missing message", `{"sessionId":"abc"}`},
		{"blank message", `{"message":"   "}`},
		{"not json", `hello`},
		{"message too long", `{"message":"` + string(bytes.Repeat([]byte("a"), 2001)) + `"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := postChat(t, app, tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, workingProviders())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body dto.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, dto.HealthResponse{Status: "ok", Documents: 1}, body)
}

func signToken(t *testing.T, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "staff",
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func TestAdminRoutes(t *testing.T) {
	app := newTestApp(t, workingProviders())
	_, chat := postChat(t, app, `{"message":"hi","sessionId":"visitor-9"}`)
	require.Equal(t, "visitor-9", chat["sessionId"])

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		status int
	}{
		{"usage without token", http.MethodGet, "/api/admin/usage", "", http.StatusUnauthorized},
		{"usage with non-admin token", http.MethodGet, "/api/admin/usage", signToken(t, "viewer"), http.StatusForbidden},
		{"usage", http.MethodGet, "/api/admin/usage", signToken(t, "admin"), http.StatusOK},
		{"logs", http.MethodGet, "/api/admin/logs?limit=5", signToken(t, "admin"), http.StatusOK},
		{"logs bad level", http.MethodGet, "/api/admin/logs?level=TRACE", signToken(t, "admin"), http.StatusBadRequest},
		{"session", http.MethodGet, "/api/admin/sessions/visitor-9", signToken(t, "admin"), http.StatusOK},
		{"unknown session", http.MethodGet, "/api/admin/sessions/nobody", signToken(t, "admin"), http.StatusNotFound},
		{"reload", http.MethodPost, "/api/admin/documents/reload", signToken(t, "admin"), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
