package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/trash-scanner/internal/common"
	"github.com/Veraticus/trash-scanner/internal/model"
)

type fakeClient struct {
	generateErr error
	imageErr    map[string]error
	responses   []string
	requests    []Request
	images      []string
	mu          sync.Mutex
}

func (f *fakeClient) Generate(_ context.Context, req Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.generateErr != nil {
		return "", f.generateErr
	}
	if len(f.responses) == 0 {
		return "", errors.New("no scripted response")
	}
	out := f.responses[0]
	f.responses = f.responses[1:]
	return out, nil
}

func (f *fakeClient) GenerateImage(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.images = append(f.images, prompt)
	if err := f.imageErr[prompt]; err != nil {
		return "", err
	}
	return "data:image/png;base64," + prompt, nil
}

func newTestService(t *testing.T, client Client) *Service {
	t.Helper()
	svc := NewService(client, Config{RateLimit: 1000}, WithServiceClock(clockwork.NewFakeClock()), WithShuffle(func([]model.QuizQuestion) {}))
	t.Cleanup(svc.Close)
	return svc
}

func TestService_AnalyzeImage(t *testing.T) {
	client := &fakeClient{responses: []string{`[{"wasteType":"Human","material":"Human","recyclable":"Yes","disposalInstructions":"Nice smile!","funFact":"f","imageUrl":""}]`}}
	svc := newTestService(t, client)

	items, err := svc.AnalyzeImage(context.Background(), []byte("jpeg"), Options{Language: model.LanguageEnglish, ExpertMode: true})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].IsHuman())

	req := client.requests[0]
	assert.InDelta(t, analyzeTemperature, req.Temperature, 0.0001)
	assert.True(t, req.JSON)
	assert.Equal(t, []byte("jpeg"), req.Messages[0].Image)
	assert.Contains(t, req.Messages[0].Text, "PET 1, HDPE 2")
}

func TestService_AnalyzeImageErrors(t *testing.T) {
	t.Run("transport failure", func(t *testing.T) {
		svc := newTestService(t, &fakeClient{generateErr: errors.New("connection reset")})
		_, err := svc.AnalyzeImage(context.Background(), nil, Options{Language: model.LanguageVietnamese})
		require.Error(t, err)
		assert.Equal(t, "error.analysis", common.UserErrorKey(err, ""))
		assert.ErrorIs(t, err, common.ErrClassificationFailed)
	})

	t.Run("non array", func(t *testing.T) {
		svc := newTestService(t, &fakeClient{responses: []string{`{"wasteType":"Can"}`}})
		_, err := svc.AnalyzeImage(context.Background(), nil, Options{})
		assert.ErrorIs(t, err, ErrMalformedResponse)
		assert.Equal(t, "error.analysis", common.UserErrorKey(err, ""))
	})
}

func TestService_SearchCachesResults(t *testing.T) {
	client := &fakeClient{responses: []string{`[{"wasteType":"Battery","recyclable":"Conditional","imageUrl":"https://img/b.jpg"}]`}}
	svc := newTestService(t, client)
	opts := Options{Language: model.LanguageEnglish}

	first, err := svc.Search(context.Background(), "Battery", opts)
	require.NoError(t, err)
	second, err := svc.Search(context.Background(), "  battery ", opts)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, client.requests, 1)
	assert.InDelta(t, searchTemperature, client.requests[0].Temperature, 0.0001)
	assert.Contains(t, client.requests[0].Messages[0].Text, `"Battery"`)
}

func TestService_SearchErrors(t *testing.T) {
	svc := newTestService(t, &fakeClient{responses: []string{`"nothing"`}})

	_, err := svc.Search(context.Background(), "   ", Options{})
	assert.Equal(t, "error.search", common.UserErrorKey(err, ""))

	_, err = svc.Search(context.Background(), "spoon", Options{})
	assert.ErrorIs(t, err, ErrMalformedResponse)
	assert.Equal(t, "error.search", common.UserErrorKey(err, ""))
}

func quizJSON(withImage, plain int) string {
	var parts []string
	for i := 0; i < withImage; i++ {
		parts = append(parts, fmt.Sprintf(`{"itemName":"item%d","imagePrompt":"prompt%d","questionText":"q%d","options":["a","b","c"],"correctAnswer":"a","explanation":"e"}`, i, i, i))
	}
	for i := 0; i < plain; i++ {
		parts = append(parts, fmt.Sprintf(`{"itemName":"general%d","questionText":"g%d","options":["a","b","c","d"],"correctAnswer":"d","explanation":"e"}`, i, i))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func TestService_GenerateQuiz(t *testing.T) {
	client := &fakeClient{
		responses: []string{quizJSON(5, 5)},
		imageErr:  map[string]error{"prompt2": errors.New("quota")},
	}
	svc := newTestService(t, client)

	qs, err := svc.GenerateQuiz(context.Background(), QuizRequest{Difficulty: "easy", Questions: 10, ImageQuestions: 5}, model.LanguageEnglish)
	require.NoError(t, err)
	require.Len(t, qs, 10)

	withImage := 0
	for _, q := range qs {
		if q.HasImage() {
			withImage++
			assert.Equal(t, "data:image/png;base64,"+q.ImagePrompt, q.ImageURL)
		}
	}
	assert.Equal(t, 4, withImage, "failed image degrades to no image")
	assert.Len(t, client.images, 5)
	assert.InDelta(t, quizTemperature, client.requests[0].Temperature, 0.0001)
	assert.Contains(t, client.requests[0].Messages[0].Text, "FIRST 5 questions")
}

func TestService_GenerateQuizDropsInvalid(t *testing.T) {
	bad := `[{"questionText":"q","options":["a","b","c"],"correctAnswer":"z"}]`
	svc := newTestService(t, &fakeClient{responses: []string{bad}})

	_, err := svc.GenerateQuiz(context.Background(), QuizRequest{Difficulty: "medium", Questions: 15, ImageQuestions: 7}, model.LanguageEnglish)
	assert.ErrorIs(t, err, ErrMalformedResponse)
	assert.Equal(t, "error.quiz", common.UserErrorKey(err, ""))
}

func TestService_GenerateQuizShuffles(t *testing.T) {
	shuffled := false
	svc := NewService(&fakeClient{responses: []string{quizJSON(1, 2)}}, Config{}, WithServiceClock(clockwork.NewFakeClock()), WithShuffle(func(qs []model.QuizQuestion) {
		shuffled = true
		assert.Len(t, qs, 3)
	}))
	defer svc.Close()

	_, err := svc.GenerateQuiz(context.Background(), QuizRequest{Difficulty: "easy", Questions: 3, ImageQuestions: 1}, model.LanguageVietnamese)
	require.NoError(t, err)
	assert.True(t, shuffled)
}

func TestService_Chat(t *testing.T) {
	client := &fakeClient{responses: []string{"  Rinse and recycle.  "}}
	svc := newTestService(t, client)

	history := []model.ChatMessage{
		{Role: model.RoleModel, Text: "Hi! Ask me anything about Glass jar."},
		{Role: model.RoleUser, Text: "Lids?"},
	}
	reply, err := svc.Chat(context.Background(), "Glass jar", history, model.LanguageEnglish)
	require.NoError(t, err)
	assert.Equal(t, "Rinse and recycle.", reply)

	req := client.requests[0]
	assert.Contains(t, req.System, `"Glass jar"`)
	assert.Len(t, req.Messages, 2)
	assert.False(t, req.JSON)

	failing := newTestService(t, &fakeClient{generateErr: errors.New("down")})
	_, err = failing.Chat(context.Background(), "Glass jar", history, model.LanguageEnglish)
	assert.Equal(t, "chat.error", common.UserErrorKey(err, ""))
}
