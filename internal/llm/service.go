package llm

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/trash-scanner/internal/common"
	"github.com/Veraticus/trash-scanner/internal/model"
)

// Options are the per request user preferences.
type Options struct {
	Language   model.Language
	ExpertMode bool
}

// QuizRequest sizes a generated quiz.
type QuizRequest struct {
	Difficulty     string
	Questions      int
	ImageQuestions int
}

// Service wraps a Client with prompts, parsing, caching and rate limiting.
type Service struct {
	client  Client
	cache   *searchCache
	limiter *rateLimiter
	logger  *slog.Logger
	shuffle func([]model.QuizQuestion)
	// imageWorkers bounds concurrent image generations for one quiz.
	imageWorkers int
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	clock   clockwork.Clock
	logger  *slog.Logger
	shuffle func([]model.QuizQuestion)
}

// WithServiceClock sets the clock used by the cache and rate limiter.
func WithServiceClock(c clockwork.Clock) ServiceOption {
	return func(o *serviceOptions) { o.clock = c }
}

// WithServiceLogger sets the logger.
func WithServiceLogger(l *slog.Logger) ServiceOption {
	return func(o *serviceOptions) { o.logger = l }
}

// WithShuffle replaces the quiz shuffle.
func WithShuffle(fn func([]model.QuizQuestion)) ServiceOption {
	return func(o *serviceOptions) { o.shuffle = fn }
}

// NewService creates a service around client.
func NewService(client Client, cfg Config, opts ...ServiceOption) *Service {
	o := serviceOptions{
		logger: slog.Default(),
		shuffle: func(qs []model.QuizQuestion) {
			rand.Shuffle(len(qs), func(i, j int) { qs[i], qs[j] = qs[j], qs[i] })
		},
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Service{
		client:       client,
		cache:        newSearchCache(cfg.CacheTTL, o.clock),
		limiter:      newRateLimiter(cfg.RateLimit, o.clock),
		logger:       o.logger,
		shuffle:      o.shuffle,
		imageWorkers: 3,
	}
}

// Close stops background goroutines.
func (s *Service) Close() {
	s.cache.Close()
	s.limiter.Close()
}

func (s *Service) generate(ctx context.Context, req Request) (string, error) {
	if err := s.limiter.wait(ctx); err != nil {
		return "", err
	}
	return s.client.Generate(ctx, req)
}

// AnalyzeImage classifies every waste item in a JPEG frame. An empty slice
// means nothing was found; a single "Human" item means only a person was.
func (s *Service) AnalyzeImage(ctx context.Context, jpeg []byte, opts Options) ([]model.WasteInfo, error) {
	text, err := s.generate(ctx, Request{
		Messages:    []Message{{Role: model.RoleUser, Image: jpeg, Text: analyzePrompt(opts)}},
		Temperature: analyzeTemperature,
		JSON:        true,
		Schema:      wasteListSchema(opts.Language),
	})
	if err != nil {
		return nil, common.NewLocalizedError("error.analysis", fmt.Errorf("%w: %w", common.ErrClassificationFailed, err))
	}

	items, err := parseWasteList(text)
	if err != nil {
		s.logger.Warn("unexpected analysis response", "error", err)
		return nil, common.NewLocalizedError("error.analysis", err)
	}

	s.logger.Debug("image analyzed", "items", len(items), "expert", opts.ExpertMode, "language", opts.Language)
	return items, nil
}

// Search looks up disposal guidance for a free text query.
func (s *Service) Search(ctx context.Context, query string, opts Options) ([]model.WasteInfo, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, common.NewLocalizedError("error.search", fmt.Errorf("empty query"))
	}

	key := searchKey(query, opts)
	if items, ok := s.cache.get(key); ok {
		s.logger.Debug("search cache hit", "query", query)
		return items, nil
	}

	text, err := s.generate(ctx, Request{
		Messages:    []Message{{Role: model.RoleUser, Text: searchPrompt(query, opts)}},
		Temperature: searchTemperature,
		JSON:        true,
		Schema:      wasteListSchema(opts.Language),
	})
	if err != nil {
		return nil, common.NewLocalizedError("error.search", err)
	}

	items, err := parseWasteList(text)
	if err != nil {
		s.logger.Warn("unexpected search response", "query", query, "error", err)
		return nil, common.NewLocalizedError("error.search", err)
	}

	s.cache.set(key, items)
	return items, nil
}

// GenerateQuiz asks for req.Questions questions, renders a picture for each
// question with an image prompt and returns them shuffled. A failed picture
// leaves that question without an image.
func (s *Service) GenerateQuiz(ctx context.Context, req QuizRequest, lang model.Language) ([]model.QuizQuestion, error) {
	text, err := s.generate(ctx, Request{
		Messages:    []Message{{Role: model.RoleUser, Text: quizPrompt(req, lang)}},
		Temperature: quizTemperature,
		JSON:        true,
		Schema:      quizSchema(lang),
	})
	if err != nil {
		return nil, common.NewLocalizedError("error.quiz", err)
	}

	parsed, err := parseQuiz(text)
	if err != nil {
		return nil, common.NewLocalizedError("error.quiz", err)
	}

	var withImage, plain []model.QuizQuestion
	for i, q := range parsed {
		if err := q.Validate(); err != nil {
			s.logger.Warn("dropping invalid quiz question", "index", i, "error", err)
			continue
		}
		q.ImageURL = ""
		if strings.TrimSpace(q.ImagePrompt) != "" {
			withImage = append(withImage, q)
		} else {
			plain = append(plain, q)
		}
	}
	if len(withImage)+len(plain) == 0 {
		return nil, common.NewLocalizedError("error.quiz", fmt.Errorf("%w: no playable questions", ErrMalformedResponse))
	}

	s.renderImages(ctx, withImage)

	questions := append(withImage, plain...)
	s.shuffle(questions)
	return questions, nil
}

func (s *Service) renderImages(ctx context.Context, questions []model.QuizQuestion) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.imageWorkers)
	for i := range questions {
		g.Go(func() error {
			url, err := s.image(gctx, questions[i].ImagePrompt)
			if err != nil {
				s.logger.Warn("image generation failed", "prompt", questions[i].ImagePrompt, "error", err)
				return nil
			}
			questions[i].ImageURL = url
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Service) image(ctx context.Context, prompt string) (string, error) {
	if err := s.limiter.wait(ctx); err != nil {
		return "", err
	}
	return s.client.GenerateImage(ctx, prompt)
}

// Chat sends the whole transcript about item and returns the model's reply.
func (s *Service) Chat(ctx context.Context, item string, history []model.ChatMessage, lang model.Language) (string, error) {
	msgs := make([]Message, 0, len(history))
	for _, m := range history {
		msgs = append(msgs, Message{Role: m.Role, Text: m.Text})
	}

	reply, err := s.generate(ctx, Request{
		System:      chatSystemPrompt(item, lang),
		Messages:    msgs,
		Temperature: chatTemperature,
	})
	if err != nil {
		return "", common.NewLocalizedError("chat.error", err)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", common.NewLocalizedError("chat.error", fmt.Errorf("%w: empty reply", ErrMalformedResponse))
	}
	return reply, nil
}
