package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/trash-scanner/internal/assistant"
	"github.com/Veraticus/trash-scanner/internal/common"
	"github.com/Veraticus/trash-scanner/internal/i18n"
	"github.com/Veraticus/trash-scanner/internal/llm"
	"github.com/Veraticus/trash-scanner/internal/model"
	"github.com/Veraticus/trash-scanner/internal/storage"
	"github.com/Veraticus/trash-scanner/internal/testutil"
)

type fakeAssistant struct {
	mu        sync.Mutex
	items     []model.WasteInfo
	questions []model.QuizQuestion
	reply     string
	err       error
	quizReq   llm.QuizRequest
	images    int
}

func (f *fakeAssistant) AnalyzeImage(_ context.Context, jpeg []byte, _ llm.Options) ([]model.WasteInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(jpeg) > 0 {
		f.images++
	}
	return f.items, f.err
}

func (f *fakeAssistant) Search(_ context.Context, _ string, _ llm.Options) ([]model.WasteInfo, error) {
	return f.items, f.err
}

func (f *fakeAssistant) GenerateQuiz(_ context.Context, req llm.QuizRequest, _ model.Language) ([]model.QuizQuestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quizReq = req
	return f.questions, f.err
}

func (f *fakeAssistant) Chat(_ context.Context, _ string, _ []model.ChatMessage, _ model.Language) (string, error) {
	return f.reply, f.err
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
}

func newTestServer(t *testing.T, store storage.Store, ai *fakeAssistant) *httptest.Server {
	t.Helper()
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	app := assistant.NewApp(store, ai, i18n.New(i18n.EmbeddedLoader{}), assistant.WithClock(clock))
	require.NoError(t, app.Load(ctx))

	srv, err := New(ctx, app, Options{}, nil)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func completedServer(t *testing.T, ai *fakeAssistant) *httptest.Server {
	t.Helper()
	db := testutil.SetupTestDBWithProfile(t, testutil.NewProfile().WithName("Sam").English().Build())
	return newTestServer(t, db.Storage, ai)
}

func do(t *testing.T, ts *httptest.Server, method, path string, body any) (*http.Response, envelope) {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.URL+path, r)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	return send(t, req)
}

func send(t *testing.T, req *http.Request) (*http.Response, envelope) {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var env envelope
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	}
	return resp, env
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 24))
	for x := range 32 {
		img.Set(x, 10, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestServer_Health(t *testing.T) {
	ts := newTestServer(t, storage.NewMemoryStorage(), &fakeAssistant{})
	resp, env := do(t, ts, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(env.Data))
}

func TestServer_Locale(t *testing.T) {
	ts := newTestServer(t, storage.NewMemoryStorage(), &fakeAssistant{})

	resp, err := http.Get(ts.URL + "/api/v1/locales/vi.json")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "vi", resp.Header.Get("Content-Language"))

	var dict map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&dict))
	assert.Contains(t, dict, "setup")

	resp2, _ := do(t, ts, http.MethodGet, "/api/v1/locales/fr.json", nil)
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}

func TestServer_RequiresSetup(t *testing.T) {
	ts := newTestServer(t, storage.NewMemoryStorage(), &fakeAssistant{})

	resp, env := do(t, ts, http.MethodPost, "/api/v1/search", map[string]string{"query": "bottle"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "error.setup", env.Code)
	assert.Equal(t, "Please finish setup first.", env.Message)
	assert.Equal(t, "en", resp.Header.Get("Content-Language"))
}

func TestServer_Setup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ts := newTestServer(t, db.Storage, &fakeAssistant{})

	t.Run("invalid date", func(t *testing.T) {
		resp, env := do(t, ts, http.MethodPost, "/api/v1/setup", map[string]string{
			"language":   "en",
			"name":       "Sam",
			"deviceType": "computer",
			"gender":     "Male",
			"salutation": "Mr",
			"dob":        "31/02/1990",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Equal(t, "setup.error.dobInvalid", env.Code)
		assert.Equal(t, "That date does not exist.", env.Message)
	})

	t.Run("unknown field", func(t *testing.T) {
		resp, env := do(t, ts, http.MethodPost, "/api/v1/setup", map[string]string{"nickname": "x"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "error.request", env.Code)
	})

	t.Run("complete", func(t *testing.T) {
		resp, env := do(t, ts, http.MethodPost, "/api/v1/setup", map[string]string{
			"language":   "en",
			"name":       "Sam",
			"deviceType": "computer",
			"gender":     "Male",
			"salutation": "Mr",
			"dob":        "01/02/1990",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var body struct {
			Profile  model.UserProfile `json:"profile"`
			Settings model.AppSettings `json:"settings"`
			Greeting string            `json:"greeting"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &body))
		assert.True(t, body.Profile.SetupComplete)
		assert.Equal(t, model.LanguageEnglish, body.Settings.Language)
		assert.Equal(t, "All set, Mr Sam!", body.Greeting)
		assert.Equal(t, "Sam", db.MustProfile().Name)
	})
}

func TestServer_Settings(t *testing.T) {
	ts := completedServer(t, &fakeAssistant{})

	resp, env := do(t, ts, http.MethodPut, "/api/v1/settings", map[string]any{"theme": "ocean", "autoScanInterval": 3000})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var s model.AppSettings
	require.NoError(t, json.Unmarshal(env.Data, &s))
	assert.Equal(t, model.Theme("ocean"), s.Theme)

	resp, env = do(t, ts, http.MethodPut, "/api/v1/settings", map[string]any{"theme": "neon"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "error.settings", env.Code)
}

func TestServer_Search(t *testing.T) {
	tests := []struct {
		name    string
		items   []model.WasteInfo
		outcome string
		message string
		dismiss bool
	}{
		{name: "results", items: []model.WasteInfo{testutil.PlasticBottle}, outcome: "results"},
		{name: "person", items: []model.WasteInfo{testutil.Person}, outcome: "compliment", message: "Hello, Ms Sam! That's a person, not trash. You look great today!"},
		{name: "nothing", outcome: "not_found", message: "We could not spot any waste. Try again with the item centered.", dismiss: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := completedServer(t, &fakeAssistant{items: tt.items})

			resp, env := do(t, ts, http.MethodPost, "/api/v1/search", map[string]string{"query": "thing"})
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var body classifyResponse
			require.NoError(t, json.Unmarshal(env.Data, &body))
			assert.Equal(t, tt.outcome, body.Outcome)
			assert.Equal(t, tt.message, body.Message)
			assert.Len(t, body.Items, len(tt.items))
			if tt.dismiss {
				assert.Equal(t, int64(5000), body.DismissAfterMs)
			} else {
				assert.Zero(t, body.DismissAfterMs)
			}
		})
	}
}

func TestServer_SearchErrors(t *testing.T) {
	ts := completedServer(t, &fakeAssistant{err: common.NewLocalizedError("error.search", errors.New("boom"))})

	resp, env := do(t, ts, http.MethodPost, "/api/v1/search", map[string]string{"query": "  "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "error.request", env.Code)

	resp, env = do(t, ts, http.MethodPost, "/api/v1/search", map[string]string{"query": "bottle"})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "error.search", env.Code)
}

func TestServer_Analyze(t *testing.T) {
	ai := &fakeAssistant{items: []model.WasteInfo{testutil.BananaPeel}}
	ts := completedServer(t, ai)

	t.Run("raw body", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/analyze", bytes.NewReader(pngBytes(t)))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "image/png")
		resp, env := send(t, req)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body classifyResponse
		require.NoError(t, json.Unmarshal(env.Data, &body))
		assert.Equal(t, "results", body.Outcome)
		require.Len(t, body.Items, 1)
		assert.Equal(t, "Banana peel", body.Items[0].WasteType)
	})

	t.Run("multipart", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("image", "photo.png")
		require.NoError(t, err)
		_, err = part.Write(pngBytes(t))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/analyze", &buf)
		require.NoError(t, err)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		resp, _ := send(t, req)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("not an image", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/analyze", strings.NewReader("hello"))
		require.NoError(t, err)
		resp, env := send(t, req)
		assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
		assert.Equal(t, "error.image", env.Code)
	})

	ai.mu.Lock()
	defer ai.mu.Unlock()
	assert.Equal(t, 2, ai.images)
}

func TestServer_Quiz(t *testing.T) {
	questions := []model.QuizQuestion{{
		ItemName:      "Aluminium can",
		QuestionText:  "Where does a can go?",
		Options:       []string{"Recycling", "Compost", "Landfill", "Hazardous"},
		CorrectAnswer: "Recycling",
		Explanation:   "Aluminium is endlessly recyclable.",
	}}
	ai := &fakeAssistant{questions: questions}
	ts := completedServer(t, ai)

	resp, env := do(t, ts, http.MethodPost, "/api/v1/quiz", map[string]string{"difficulty": "easy"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body quizResponse
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Equal(t, 600, body.DurationSeconds)
	assert.Len(t, body.Questions, 1)
	assert.Equal(t, 10, ai.quizReq.Questions)

	resp, env = do(t, ts, http.MethodPost, "/api/v1/quiz", map[string]string{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Equal(t, 900, body.DurationSeconds)
	assert.Equal(t, 15, ai.quizReq.Questions)

	resp, env = do(t, ts, http.MethodPost, "/api/v1/quiz", map[string]string{"difficulty": "insane"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "error.request", env.Code)
}

func TestServer_Chat(t *testing.T) {
	ai := &fakeAssistant{reply: "Rinse it first."}
	ts := completedServer(t, ai)

	resp, env := do(t, ts, http.MethodPost, "/api/v1/chats/", map[string]string{"item": "Plastic bottle"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created chatResponse
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.Len(t, created.Messages, 1)
	assert.Equal(t, model.RoleModel, created.Messages[0].Role)

	resp, env = do(t, ts, http.MethodPost, "/api/v1/chats/"+created.ID+"/messages", map[string]string{"text": "How?"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var chat chatResponse
	require.NoError(t, json.Unmarshal(env.Data, &chat))
	require.Len(t, chat.Messages, 3)
	assert.Equal(t, "How?", chat.Messages[1].Text)
	assert.Equal(t, "Rinse it first.", chat.Messages[2].Text)

	resp, env = do(t, ts, http.MethodPost, "/api/v1/chats/"+created.ID+"/messages", map[string]string{"text": " "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, env = do(t, ts, http.MethodGet, "/api/v1/chats/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "error.chatNotFound", env.Code)
}

func TestServer_Feedback(t *testing.T) {
	db := testutil.SetupTestDBWithProfile(t, testutil.NewProfile().English().Build())
	ts := newTestServer(t, db.Storage, &fakeAssistant{})

	resp, env := do(t, ts, http.MethodPost, "/api/v1/feedback", map[string]any{"reportedItem": testutil.PizzaBox})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "error.feedback", env.Code)

	resp, env = do(t, ts, http.MethodPost, "/api/v1/feedback", map[string]any{
		"reportedItem": testutil.PizzaBox,
		"feedbackType": []string{"recyclable"},
		"comments":     "  greasy boxes are compost here ",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var body feedbackResponse
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Equal(t, "greasy boxes are compost here", body.Feedback.Comments)
	assert.NotEmpty(t, body.Message)

	resp, env = do(t, ts, http.MethodGet, "/api/v1/feedback", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []model.Feedback
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Pizza box", list[0].ReportedItem.WasteType)
	assert.Len(t, db.MustFeedback(), 1)
}

func TestServer_Reset(t *testing.T) {
	db := testutil.SetupTestDBWithProfile(t, testutil.NewProfile().Build())
	ts := newTestServer(t, db.Storage, &fakeAssistant{})

	resp, _ := do(t, ts, http.MethodPost, "/api/v1/reset", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, env := do(t, ts, http.MethodGet, "/api/v1/profile", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var p model.UserProfile
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.False(t, p.SetupComplete)
}
