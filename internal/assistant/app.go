package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/Veraticus/trash-scanner/internal/chat"
	"github.com/Veraticus/trash-scanner/internal/common"
	"github.com/Veraticus/trash-scanner/internal/i18n"
	"github.com/Veraticus/trash-scanner/internal/llm"
	"github.com/Veraticus/trash-scanner/internal/model"
	"github.com/Veraticus/trash-scanner/internal/quiz"
	"github.com/Veraticus/trash-scanner/internal/service"
	"github.com/Veraticus/trash-scanner/internal/setup"
	"github.com/Veraticus/trash-scanner/internal/storage"
)

// App holds the user's profile and settings and writes every change
// through to the store.
type App struct {
	store    storage.Store
	ai       service.Assistant
	loc      *i18n.Localizer
	clock    clockwork.Clock
	logger   *slog.Logger
	profile  model.UserProfile
	settings model.AppSettings
	mu       sync.RWMutex
}

// Option configures an App.
type Option func(*App)

// WithClock sets the clock used for dates and timers.
func WithClock(c clockwork.Clock) Option {
	return func(a *App) { a.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) { a.logger = l }
}

// NewApp creates an app with default settings. Call Load to read the store.
func NewApp(store storage.Store, ai service.Assistant, loc *i18n.Localizer, opts ...Option) *App {
	a := &App{
		store:    store,
		ai:       ai,
		loc:      loc,
		clock:    clockwork.NewRealClock(),
		logger:   slog.Default(),
		settings: model.DefaultSettings(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Load reads the profile and settings. Unreadable values are logged and
// replaced with defaults; only a dictionary load failure is returned.
func (a *App) Load(ctx context.Context) error {
	profile, err := a.store.LoadProfile(ctx)
	if err == nil {
		err = profile.Validate(a.clock.Now())
	}
	switch {
	case err == nil:
		a.mu.Lock()
		a.profile = *profile
		a.mu.Unlock()
	case errors.Is(err, common.ErrNotFound):
		a.logger.Debug("no saved profile")
	default:
		a.logger.Warn("discarding saved profile", "error", err)
	}

	settings, err := a.store.LoadSettings(ctx)
	switch {
	case err == nil:
		a.mu.Lock()
		a.settings = *settings
		a.mu.Unlock()
	case errors.Is(err, common.ErrNotFound):
		a.logger.Debug("no saved settings, using defaults")
	default:
		a.logger.Warn("discarding saved settings", "error", err)
	}

	return a.loc.Load(ctx, a.Settings().Language)
}

// Localizer returns the shared localizer.
func (a *App) Localizer() *i18n.Localizer { return a.loc }

// Clock returns the app clock.
func (a *App) Clock() clockwork.Clock { return a.clock }

// Profile returns the current profile.
func (a *App) Profile() model.UserProfile {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.profile
}

// Settings returns the current settings.
func (a *App) Settings() model.AppSettings {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.settings
}

// SetupComplete reports whether onboarding has finished.
func (a *App) SetupComplete() bool {
	return a.Profile().SetupComplete
}

// Options are the classification options implied by the settings.
func (a *App) Options() llm.Options {
	s := a.Settings()
	return llm.Options{Language: s.Language, ExpertMode: s.ExpertMode}
}

// NewWizard starts onboarding in the current language.
func (a *App) NewWizard() *setup.Wizard {
	return setup.New(a.Settings().Language)
}

// CompleteSetup finishes the wizard, stores the profile and switches to the
// language chosen in the wizard.
func (a *App) CompleteSetup(ctx context.Context, w *setup.Wizard) (model.UserProfile, error) {
	p, err := w.Finish(a.clock.Now())
	if err != nil {
		return model.UserProfile{}, err
	}
	a.mu.Lock()
	a.profile = p
	a.mu.Unlock()
	a.saveProfile(ctx, p)

	s := a.Settings()
	s.Language = w.Language()
	if err := a.UpdateSettings(ctx, s); err != nil {
		return p, err
	}
	a.logger.Info("setup complete", "name", p.Name, "device", p.DeviceType, "language", s.Language)
	return p, nil
}

// UpdateProfile validates and stores a profile edited in settings.
func (a *App) UpdateProfile(ctx context.Context, p model.UserProfile) error {
	p.Name = strings.TrimSpace(p.Name)
	if err := p.Validate(a.clock.Now()); err != nil {
		return err
	}
	p = p.Localize(a.Settings().Language)
	a.mu.Lock()
	a.profile = p
	a.mu.Unlock()
	a.saveProfile(ctx, p)
	return nil
}

// UpdateSettings validates and stores settings. A language change
// re-localizes the profile and reloads the dictionary.
func (a *App) UpdateSettings(ctx context.Context, s model.AppSettings) error {
	if err := s.Validate(); err != nil {
		return common.NewLocalizedError("error.settings", err)
	}

	a.mu.Lock()
	langChanged := a.settings.Language != s.Language
	a.settings = s
	var profile model.UserProfile
	if langChanged {
		a.profile = a.profile.Localize(s.Language)
		profile = a.profile
	}
	a.mu.Unlock()

	if err := a.store.SaveSettings(ctx, s); err != nil {
		common.LogError(err, "failed to save settings", common.Fields{"theme": s.Theme})
	}
	if !langChanged {
		return nil
	}
	if profile.SetupComplete {
		a.saveProfile(ctx, profile)
	}
	return a.loc.Load(ctx, s.Language)
}

// ChangeLanguage switches the interface language.
func (a *App) ChangeLanguage(ctx context.Context, lang model.Language) error {
	s := a.Settings()
	s.Language = lang
	return a.UpdateSettings(ctx, s)
}

// Reset clears the store and returns to first-run state.
func (a *App) Reset(ctx context.Context) error {
	if err := a.store.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset store: %w", err)
	}
	a.mu.Lock()
	a.profile = model.UserProfile{}
	a.settings = model.DefaultSettings()
	a.mu.Unlock()
	a.logger.Info("app reset")
	return a.loc.Load(ctx, model.DefaultLanguage)
}

// Analyze classifies a prepared JPEG frame and routes the result.
func (a *App) Analyze(ctx context.Context, jpeg []byte) (Outcome, []model.WasteInfo, error) {
	if err := a.requireSetup(); err != nil {
		return OutcomeNotFound, nil, err
	}
	items, err := a.ai.AnalyzeImage(ctx, jpeg, a.Options())
	if err != nil {
		return OutcomeNotFound, nil, err
	}
	return Route(items), items, nil
}

// Search classifies a typed query and routes the result.
func (a *App) Search(ctx context.Context, query string) (Outcome, []model.WasteInfo, error) {
	if err := a.requireSetup(); err != nil {
		return OutcomeNotFound, nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return OutcomeNotFound, nil, common.NewLocalizedError("error.search", errors.New("empty query"))
	}
	items, err := a.ai.Search(ctx, query, a.Options())
	if err != nil {
		return OutcomeNotFound, nil, err
	}
	return Route(items), items, nil
}

// Suggestions filters the localized list of common items by query.
func (a *App) Suggestions(query string) []string {
	return Suggest(a.loc.List("search.suggestions"), query)
}

// NewConversation opens a chat about item.
func (a *App) NewConversation(item model.WasteInfo) *chat.Conversation {
	return chat.New(a.ai, a.loc, item.WasteType, chat.WithLogger(a.logger))
}

// NewGame creates a quiz game on the app clock.
func (a *App) NewGame(onChange func(quiz.Snapshot)) *quiz.Game {
	return quiz.NewGame(a.ai,
		quiz.WithClock(a.clock),
		quiz.WithLogger(a.logger),
		quiz.WithChangeHandler(onChange),
	)
}

// GenerateQuiz builds the question set for d without starting a timed game.
func (a *App) GenerateQuiz(ctx context.Context, d quiz.Difficulty) ([]model.QuizQuestion, quiz.Tier, error) {
	if err := a.requireSetup(); err != nil {
		return nil, quiz.Tier{}, err
	}
	tier := d.Tier()
	questions, err := a.ai.GenerateQuiz(ctx, llm.QuizRequest{
		Difficulty:     string(d),
		Questions:      tier.Questions,
		ImageQuestions: tier.ImageQuestions,
	}, a.Settings().Language)
	if err != nil {
		return nil, tier, err
	}
	return questions, tier, nil
}

// DefaultDifficulty is the quiz tier implied by expert mode.
func (a *App) DefaultDifficulty() quiz.Difficulty {
	return quiz.DefaultDifficulty(a.Settings().ExpertMode)
}

// SubmitFeedback records a report about item and returns it with the
// localized confirmation.
func (a *App) SubmitFeedback(ctx context.Context, item model.WasteInfo, reasons []model.FeedbackReason, comments string) (model.Feedback, string, error) {
	f := model.Feedback{
		ID:           uuid.NewString(),
		Timestamp:    a.clock.Now().UTC(),
		Comments:     strings.TrimSpace(comments),
		ReportedItem: item,
		FeedbackType: reasons,
	}
	if err := f.Validate(); err != nil {
		return model.Feedback{}, "", err
	}
	if err := a.store.AppendFeedback(ctx, f); err != nil {
		return model.Feedback{}, "", fmt.Errorf("failed to save feedback: %w", err)
	}
	a.logger.Info("feedback recorded", "id", f.ID, "item", item.WasteType, "reasons", len(reasons))
	return f, a.loc.T("feedback.success"), nil
}

// Feedback lists stored reports.
func (a *App) Feedback(ctx context.Context) ([]model.Feedback, error) {
	return a.store.ListFeedback(ctx)
}

// Greeting is the compliment title for the current profile.
func (a *App) Greeting() string {
	p := a.Profile()
	return a.loc.T("compliment.title", i18n.Vars{"salutation": p.Salutation, "name": p.Name})
}

func (a *App) requireSetup() error {
	if !a.SetupComplete() {
		return common.NewLocalizedError("error.setup", common.ErrSetupIncomplete)
	}
	return nil
}

func (a *App) saveProfile(ctx context.Context, p model.UserProfile) {
	if err := a.store.SaveProfile(ctx, p); err != nil {
		common.LogError(err, "failed to save profile", common.Fields{"name": p.Name})
	}
}
