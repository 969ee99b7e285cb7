package tui

import (
	"context"
	"image"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/trash-scanner/internal/assistant"
	"github.com/Veraticus/trash-scanner/internal/i18n"
	"github.com/Veraticus/trash-scanner/internal/llm"
	"github.com/Veraticus/trash-scanner/internal/media"
	"github.com/Veraticus/trash-scanner/internal/model"
	"github.com/Veraticus/trash-scanner/internal/quiz"
	"github.com/Veraticus/trash-scanner/internal/storage"
	"github.com/Veraticus/trash-scanner/internal/testutil"
	tuitest "github.com/Veraticus/trash-scanner/internal/tui/testing"
	"github.com/Veraticus/trash-scanner/internal/tui/themes"
)

type fakeAssistant struct {
	mu        sync.Mutex
	err       error
	items     []model.WasteInfo
	questions []model.QuizQuestion
	reply     string
}

func (f *fakeAssistant) AnalyzeImage(context.Context, []byte, llm.Options) ([]model.WasteInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items, f.err
}

func (f *fakeAssistant) Search(context.Context, string, llm.Options) ([]model.WasteInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items, f.err
}

func (f *fakeAssistant) GenerateQuiz(context.Context, llm.QuizRequest, model.Language) ([]model.QuizQuestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.questions, f.err
}

func (f *fakeAssistant) Chat(context.Context, string, []model.ChatMessage, model.Language) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reply, f.err
}

type stillSource struct{}

func (stillSource) Grab(context.Context) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 16, 16)), nil
}

func (stillSource) Close() error { return nil }

var stillCamera = media.OpenerFunc(func(context.Context, media.Facing) (media.Source, error) {
	return stillSource{}, nil
})

type harness struct {
	model Model
	clock *clockwork.FakeClock
	store storage.Store
	ai    *fakeAssistant
}

func newHarness(t *testing.T, profile *model.UserProfile, ai *fakeAssistant, opts ...Option) *harness {
	t.Helper()
	ctx := context.Background()

	store := storage.NewMemoryStorage()
	if profile != nil {
		require.NoError(t, store.SaveProfile(ctx, *profile))
		s := model.DefaultSettings()
		s.Language = model.LanguageEnglish
		require.NoError(t, store.SaveSettings(ctx, s))
	}

	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	app := assistant.NewApp(store, ai, i18n.New(i18n.EmbeddedLoader{}), assistant.WithClock(clock))
	require.NoError(t, app.Load(ctx))

	m := New(ctx, app, opts...)
	h := &harness{model: m, clock: clock, store: store, ai: ai}
	t.Cleanup(func() { h.model.Close() })
	return h
}

func englishProfile() *model.UserProfile {
	p := testutil.NewProfile().English().Build()
	return &p
}

// send feeds msgs to the model and returns the command from the last one.
func (h *harness) send(t *testing.T, msgs ...tea.Msg) tea.Cmd {
	t.Helper()
	next, cmd := tuitest.Feed(h.model, msgs...)
	m, ok := next.(Model)
	require.True(t, ok)
	h.model = m
	return cmd
}

func (h *harness) typeText(t *testing.T, text string) {
	t.Helper()
	h.send(t, tuitest.Type(text)...)
}

// await reads background messages until one matches.
func await[T tea.Msg](t *testing.T, h *harness) T {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case msg := <-h.model.events:
			if v, ok := msg.(T); ok {
				return v
			}
		case <-timeout:
			var zero T
			t.Fatalf("no %T arrived", zero)
			return zero
		}
	}
}

func TestModel_StartScreen(t *testing.T) {
	fresh := newHarness(t, nil, &fakeAssistant{})
	assert.Equal(t, ScreenSetup, fresh.model.Screen())

	returning := newHarness(t, englishProfile(), &fakeAssistant{})
	assert.Equal(t, ScreenScan, returning.model.Screen())
	assert.Contains(t, returning.model.View(), "Starting camera...")
}

func TestModel_SetupFlow(t *testing.T) {
	h := newHarness(t, nil, &fakeAssistant{})

	// Language: move to English and load its dictionary.
	h.send(t, tuitest.KeyDown(), tuitest.KeyEnter())
	h.send(t, h.model.loadLocale(model.LanguageEnglish)())

	h.typeText(t, "Sam")
	h.send(t, tuitest.KeyEnter())

	// Device: computer.
	h.send(t, tuitest.KeyDown(), tuitest.KeyEnter())

	// Details: gender and salutation keep their first choice.
	h.send(t, tuitest.KeyTab())
	h.typeText(t, "31/02/1990")
	h.send(t, tuitest.KeyEnter())
	assert.Contains(t, h.model.View(), "That date does not exist.")

	for range 10 {
		h.send(t, tuitest.KeyBackspace())
	}
	h.typeText(t, "01/02/1990")
	h.send(t, tuitest.KeyEnter())
	assert.Contains(t, h.model.View(), "All set, Mr Sam!")

	h.send(t, tuitest.KeyEnter())
	require.True(t, h.model.setup.saving)
	h.send(t, h.model.completeSetup(h.model.setup.wizard)())

	assert.Equal(t, ScreenScan, h.model.Screen())
	assert.Equal(t, "All set, Mr Sam!", h.model.flash)

	stored, err := h.store.LoadProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "01/02/1990", stored.DateOfBirth)
	assert.Equal(t, model.DeviceComputer, stored.DeviceType)
}

func TestModel_SearchRouting(t *testing.T) {
	tests := []struct {
		name   string
		items  []model.WasteInfo
		screen Screen
		want   string
	}{
		{"results", []model.WasteInfo{testutil.PlasticBottle}, ScreenResult, "Plastic bottle"},
		{"compliment", []model.WasteInfo{testutil.Person}, ScreenCompliment, "Hello, Ms Lan!"},
		{"not found", nil, ScreenNotFound, "We could not spot any waste."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, englishProfile(), &fakeAssistant{items: tt.items})

			h.send(t, tuitest.KeyPress("2"))
			require.Equal(t, ScreenSearch, h.model.Screen())
			assert.True(t, h.model.scan.state.Hidden, "capture view hidden off the scanner")

			h.typeText(t, "thing")
			h.send(t, tuitest.KeyEnter())
			require.True(t, h.model.search.loading)
			h.send(t, h.model.runSearch("thing")())

			assert.Equal(t, tt.screen, h.model.Screen())
			assert.Contains(t, h.model.View(), tt.want)
		})
	}
}

func TestModel_NotFoundDismissesAfterDelay(t *testing.T) {
	h := newHarness(t, englishProfile(), &fakeAssistant{})
	h.send(t, tuitest.KeyPress("2"))
	h.send(t, searchDoneMsg{query: "thing"})
	require.Equal(t, ScreenNotFound, h.model.Screen())

	h.clock.Advance(assistant.NotFoundDelay - time.Second)
	assert.True(t, h.model.result.dismisser.Pending())

	h.clock.Advance(time.Second)
	h.send(t, await[dismissMsg](t, h))
	assert.Equal(t, ScreenSearch, h.model.Screen())
}

func TestModel_AnyKeyClosesNotFound(t *testing.T) {
	h := newHarness(t, englishProfile(), &fakeAssistant{})
	h.send(t, tuitest.KeyPress("2"), searchDoneMsg{})
	require.Equal(t, ScreenNotFound, h.model.Screen())

	h.send(t, tuitest.KeyPress("x"))
	assert.Equal(t, ScreenSearch, h.model.Screen())
	assert.False(t, h.model.result.dismisser.Pending())
}

func TestModel_ManualCapture(t *testing.T) {
	h := newHarness(t, englishProfile(), &fakeAssistant{items: []model.WasteInfo{testutil.BananaPeel}},
		WithOpener(stillCamera))
	h.send(t, h.model.startCamera()())
	require.True(t, h.model.scan.state.MediaReady)

	// Manual capture is refused in auto mode.
	h.send(t, tuitest.KeyPress("c"))
	assert.False(t, h.model.scan.state.Analyzing)

	h.send(t, tuitest.KeyPress("a"))
	require.False(t, h.model.scan.state.AutoMode)
	h.send(t, tuitest.KeyPress("c"))

	h.send(t, await[captureResultMsg](t, h))
	assert.Equal(t, ScreenResult, h.model.Screen())
	assert.NotEmpty(t, h.model.result.frame)
	assert.Contains(t, h.model.View(), "Banana peel")

	h.send(t, tuitest.KeyEsc())
	assert.Equal(t, ScreenScan, h.model.Screen())
}

func TestModel_AutoCaptureRingsBell(t *testing.T) {
	var rings atomic.Int32
	h := newHarness(t, englishProfile(), &fakeAssistant{items: []model.WasteInfo{testutil.PizzaBox}},
		WithOpener(stillCamera), WithBell(func() { rings.Add(1) }))
	h.send(t, h.model.startCamera()())

	h.clock.Advance(h.model.app.Settings().ScanInterval())
	h.send(t, await[shutterMsg](t, h))
	assert.Equal(t, int32(1), rings.Load())

	h.send(t, await[captureResultMsg](t, h))
	assert.Equal(t, ScreenResult, h.model.Screen())
}

func TestModel_QuizAnswer(t *testing.T) {
	questions := make([]model.QuizQuestion, 3)
	for i := range questions {
		questions[i] = model.QuizQuestion{
			ItemName:      "Glass jar",
			QuestionText:  "Where does a glass jar go?",
			CorrectAnswer: "Glass bin",
			Options:       []string{"Glass bin", "Compost", "Landfill", "Paper bin"},
			Explanation:   "Glass is endlessly recyclable.",
		}
	}
	h := newHarness(t, englishProfile(), &fakeAssistant{questions: questions})

	h.send(t, tuitest.KeyPress("3"))
	require.Equal(t, ScreenQuiz, h.model.Screen())
	assert.Equal(t, quiz.Medium, quiz.Difficulties()[h.model.quiz.cursor])

	h.send(t, tuitest.KeyUp(), tuitest.KeyEnter())
	require.Equal(t, quiz.PhaseLoading, h.model.quiz.snap.Phase)
	h.send(t, h.model.startQuiz(quiz.Easy)())

	snap := h.model.quiz.snap
	require.Equal(t, quiz.PhasePlaying, snap.Phase)
	assert.Equal(t, 3, snap.Total)
	assert.Equal(t, 10*time.Minute, snap.Remaining)

	h.send(t, tuitest.KeyPress("1"))
	assert.True(t, h.model.quiz.snap.Answered)
	assert.Equal(t, 1, h.model.quiz.snap.Score)
	assert.Contains(t, h.model.View(), "Glass is endlessly recyclable.")

	h.send(t, tuitest.KeyEnter())
	assert.Equal(t, 1, h.model.quiz.snap.Index)
	assert.False(t, h.model.quiz.snap.Answered)
}

func TestModel_SettingsSave(t *testing.T) {
	h := newHarness(t, englishProfile(), &fakeAssistant{})
	h.send(t, tuitest.KeyPress("s"))
	require.Equal(t, ScreenSettings, h.model.Screen())

	// Theme: default -> ocean.
	cmd := h.send(t, tuitest.KeyRight(), tuitest.KeyEnter())
	require.NotNil(t, cmd)
	h.send(t, cmd())

	assert.Equal(t, model.ThemeOcean, h.model.app.Settings().Theme)
	assert.Equal(t, themes.Ocean.Primary, h.model.theme.Primary)
	assert.Equal(t, "Settings saved.", h.model.flash)
}

func TestModel_SettingsLanguageRelocalizesProfile(t *testing.T) {
	h := newHarness(t, englishProfile(), &fakeAssistant{})
	h.send(t, tuitest.KeyPress("s"))

	cmd := h.send(t, tuitest.KeyDown(), tuitest.KeyRight())
	assert.Nil(t, cmd)
	assert.Equal(t, model.SalutationChi, h.model.settings.profile.Salutation)

	cmd = h.send(t, tuitest.KeyEnter())
	require.NotNil(t, cmd)
	h.send(t, cmd())

	assert.Equal(t, model.LanguageVietnamese, h.model.app.Settings().Language)
	assert.Equal(t, model.SalutationChi, h.model.app.Profile().Salutation)
	assert.Equal(t, model.GenderNu, h.model.app.Profile().Gender)
}

func TestModel_SettingsResetNeedsConfirmation(t *testing.T) {
	h := newHarness(t, englishProfile(), &fakeAssistant{})
	h.send(t, tuitest.KeyPress("s"))
	for range settingsRows {
		h.send(t, tuitest.KeyDown())
	}
	require.Equal(t, rowReset, h.model.settings.cursor)

	cmd := h.send(t, tuitest.KeyEnter())
	assert.Nil(t, cmd)
	assert.Contains(t, h.model.View(), "Are you sure?")

	cmd = h.send(t, tuitest.KeyEnter())
	require.NotNil(t, cmd)
	h.send(t, cmd())

	assert.Equal(t, ScreenSetup, h.model.Screen())
	assert.False(t, h.model.app.SetupComplete())
	assert.Nil(t, h.model.scan.scheduler)
}

func TestModel_Feedback(t *testing.T) {
	h := newHarness(t, englishProfile(), &fakeAssistant{})
	h.send(t, tuitest.KeyPress("2"), searchDoneMsg{items: []model.WasteInfo{testutil.PizzaBox}})
	require.Equal(t, ScreenResult, h.model.Screen())

	h.send(t, tuitest.KeyPress("f"))
	require.Equal(t, ScreenFeedback, h.model.Screen())

	// Nothing chosen.
	cmd := h.send(t, tuitest.KeyEnter())
	require.NotNil(t, cmd)
	h.send(t, cmd())
	assert.Equal(t, ScreenFeedback, h.model.Screen())
	assert.Contains(t, h.model.View(), "Choose a reason or write a comment.")

	h.send(t, tuitest.KeySpace())
	cmd = h.send(t, tuitest.KeyEnter())
	h.send(t, cmd())

	assert.Equal(t, ScreenResult, h.model.Screen())
	assert.Equal(t, "Thanks! Your feedback helps us improve.", h.model.flash)

	list, err := h.store.ListFeedback(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, []model.FeedbackReason{model.FeedbackReasons()[0]}, list[0].FeedbackType)
	assert.Equal(t, "Pizza box", list[0].ReportedItem.WasteType)
}

func TestModel_Chat(t *testing.T) {
	h := newHarness(t, englishProfile(), &fakeAssistant{reply: "Tear off the greasy lid."})
	h.send(t, tuitest.KeyPress("2"), searchDoneMsg{items: []model.WasteInfo{testutil.PizzaBox}})
	h.send(t, tuitest.KeyPress("t"))
	require.Equal(t, ScreenChat, h.model.Screen())
	assert.Contains(t, h.model.View(), "Ask me anything about Pizza box.")

	h.typeText(t, "What about the lid?")
	h.send(t, tuitest.KeyEnter())
	require.Equal(t, "What about the lid?", h.model.chat.pending)

	// A second send while waiting is ignored.
	assert.Nil(t, h.send(t, tuitest.KeyEnter()))

	h.send(t, h.model.sendChat("What about the lid?")())
	msgs := h.model.chat.conv.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, model.RoleModel, msgs[2].Role)
	assert.Empty(t, h.model.chat.pending)
	assert.Contains(t, h.model.chat.viewport.View(), "Tear off the greasy lid.")

	h.send(t, tuitest.KeyEsc())
	assert.Equal(t, ScreenResult, h.model.Screen())
}

func TestModel_HelpToggle(t *testing.T) {
	h := newHarness(t, englishProfile(), &fakeAssistant{})
	h.send(t, tuitest.KeyPress("?"))
	assert.True(t, h.model.showHelp)

	cmd := h.send(t, tuitest.KeyPress("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_LoaderRotatesWhileQuizLoads(t *testing.T) {
	questions := []model.QuizQuestion{{
		ItemName:      "Battery",
		QuestionText:  "Where do batteries go?",
		CorrectAnswer: "Collection point",
		Options:       []string{"Collection point", "Landfill", "Compost"},
		Explanation:   "Batteries leak toxic metals.",
	}}
	h := newHarness(t, englishProfile(), &fakeAssistant{questions: questions})

	h.send(t, tuitest.KeyPress("3"), tuitest.KeyEnter())
	require.Equal(t, quiz.PhaseLoading, h.model.quiz.snap.Phase)
	require.True(t, h.model.loader.steps.Running())
	require.True(t, h.model.loader.tips.Running())
	view := h.model.View()
	assert.Contains(t, view, "Picking everyday items...")
	assert.Contains(t, view, "Tip:")

	h.clock.Advance(assistant.StepInterval)
	h.send(t, await[loaderStepMsg](t, h))
	assert.Contains(t, h.model.View(), "Writing the questions...")

	h.send(t, h.model.startQuiz(quiz.Medium)())
	require.Equal(t, quiz.PhasePlaying, h.model.quiz.snap.Phase)
	assert.False(t, h.model.loader.steps.Running())
	assert.False(t, h.model.loader.tips.Running())
}

func TestModel_LoaderShowsTipWhileSearching(t *testing.T) {
	h := newHarness(t, englishProfile(), &fakeAssistant{items: []model.WasteInfo{testutil.PlasticBottle}})

	h.send(t, tuitest.KeyPress("2"))
	h.typeText(t, "bottle")
	h.send(t, tuitest.KeyEnter())
	require.True(t, h.model.loader.tips.Running())
	assert.False(t, h.model.loader.steps.Running())
	assert.Contains(t, h.model.View(), "Tip:")

	h.send(t, h.model.runSearch("bottle")())
	assert.False(t, h.model.loader.tips.Running())
}
