package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Veraticus/trash-scanner/internal/assistant"
	"github.com/Veraticus/trash-scanner/internal/chat"
	"github.com/Veraticus/trash-scanner/internal/i18n"
	"github.com/Veraticus/trash-scanner/internal/media"
	"github.com/Veraticus/trash-scanner/internal/model"
	"github.com/Veraticus/trash-scanner/internal/quiz"
	"github.com/Veraticus/trash-scanner/internal/setup"
)

func (s *Server) handleLocale(w http.ResponseWriter, r *http.Request) {
	lang, ok := model.ParseLanguage(chi.URLParam(r, "lang"))
	if !ok {
		s.fail(w, r, http.StatusNotFound, "error.request", nil)
		return
	}
	data, err := i18n.EmbeddedLoader{}.Raw(lang)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, "error.title", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Language", string(lang))
	_, _ = w.Write(data)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Profile())
}

func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	var p model.UserProfile
	if err := decodeJSON(w, r, &p); err != nil {
		s.fail(w, r, http.StatusBadRequest, "error.request", err)
		return
	}
	p.SetupComplete = s.app.SetupComplete()
	if err := s.app.UpdateProfile(r.Context(), p); err != nil {
		s.fail(w, r, http.StatusUnprocessableEntity, "setup.error.info", err)
		return
	}
	writeJSON(w, http.StatusOK, s.app.Profile())
}

type setupRequest struct {
	Language    model.Language   `json:"language"`
	Name        string           `json:"name"`
	DeviceType  model.DeviceType `json:"deviceType"`
	Gender      model.Gender     `json:"gender"`
	DateOfBirth string           `json:"dob"`
	Salutation  model.Salutation `json:"salutation"`
}

// handleSetup runs the whole wizard from one form submission.
func (s *Server) handleSetup(w http.ResponseWriter, r *http.Request) {
	var req setupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, http.StatusBadRequest, "error.request", err)
		return
	}
	lang := req.Language
	if !lang.Valid() {
		lang = s.language(r)
	}

	wiz := setup.New(lang)
	wiz.SetName(req.Name)
	wiz.SetDevice(req.DeviceType)
	wiz.SetGender(req.Gender)
	wiz.SetSalutation(req.Salutation)
	wiz.SetDateOfBirth(req.DateOfBirth)

	p, err := s.app.CompleteSetup(r.Context(), wiz)
	if err != nil {
		var setupErr *setup.Error
		if errors.As(err, &setupErr) {
			s.fail(w, r, http.StatusUnprocessableEntity, "", err)
			return
		}
		s.fail(w, r, http.StatusInternalServerError, "error.title", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"profile":  p,
		"settings": s.app.Settings(),
		"greeting": s.localizer(r).T("setup.confirm.title", i18n.Vars{"salutation": p.Salutation, "name": p.Name}),
	})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Settings())
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	settings := s.app.Settings()
	if err := decodeJSON(w, r, &settings); err != nil {
		s.fail(w, r, http.StatusBadRequest, "error.request", err)
		return
	}
	if err := s.app.UpdateSettings(r.Context(), settings); err != nil {
		s.fail(w, r, http.StatusUnprocessableEntity, "error.settings", err)
		return
	}
	writeJSON(w, http.StatusOK, s.app.Settings())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.app.Reset(r.Context()); err != nil {
		s.fail(w, r, http.StatusInternalServerError, "error.title", err)
		return
	}
	s.chats.clear()
	w.WriteHeader(http.StatusNoContent)
}

type classifyResponse struct {
	Outcome string            `json:"outcome"`
	Message string            `json:"message,omitempty"`
	Image   string            `json:"image,omitempty"`
	Items   []model.WasteInfo `json:"items"`
	// DismissAfterMs tells clients when to leave the not-found view.
	DismissAfterMs int64 `json:"dismissAfterMs,omitempty"`
}

func (s *Server) classified(r *http.Request, outcome assistant.Outcome, items []model.WasteInfo) classifyResponse {
	loc := s.localizer(r)
	resp := classifyResponse{Outcome: outcome.String(), Items: items}
	if resp.Items == nil {
		resp.Items = []model.WasteInfo{}
	}
	switch outcome {
	case assistant.OutcomeCompliment:
		p := s.app.Profile()
		resp.Message = loc.T("compliment.title", i18n.Vars{"salutation": p.Salutation, "name": p.Name}) +
			" " + loc.T("compliment.message")
	case assistant.OutcomeNotFound:
		resp.Message = loc.T("notFound.message")
		resp.DismissAfterMs = assistant.NotFoundDelay.Milliseconds()
	}
	return resp
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	body := r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		file, _, err := r.FormFile("image")
		if err != nil {
			s.fail(w, r, http.StatusBadRequest, "error.image", err)
			return
		}
		defer func() { _ = file.Close() }()
		body = file
	}

	frame, err := media.DecodeFrame(body)
	if err != nil {
		s.fail(w, r, http.StatusUnsupportedMediaType, "error.image", err)
		return
	}

	outcome, items, err := s.app.Analyze(r.Context(), frame)
	if err != nil {
		s.fail(w, r, http.StatusBadGateway, "error.analysis", err)
		return
	}
	writeJSON(w, http.StatusOK, s.classified(r, outcome, items))
}

type searchRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeJSON(w, r, &req); err != nil || strings.TrimSpace(req.Query) == "" {
		s.fail(w, r, http.StatusBadRequest, "error.request", err)
		return
	}
	outcome, items, err := s.app.Search(r.Context(), req.Query)
	if err != nil {
		s.fail(w, r, http.StatusBadGateway, "error.search", err)
		return
	}
	resp := s.classified(r, outcome, items)
	if len(items) > 0 {
		resp.Image = items[0].ImageURL
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	suggestions := s.app.Suggestions(r.URL.Query().Get("q"))
	if suggestions == nil {
		suggestions = []string{}
	}
	writeJSON(w, http.StatusOK, suggestions)
}

type quizRequest struct {
	Difficulty string `json:"difficulty"`
}

type quizResponse struct {
	Difficulty      quiz.Difficulty      `json:"difficulty"`
	Questions       []model.QuizQuestion `json:"questions"`
	DurationSeconds int                  `json:"durationSeconds"`
}

func (s *Server) handleQuiz(w http.ResponseWriter, r *http.Request) {
	var req quizRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, http.StatusBadRequest, "error.request", err)
		return
	}
	d := s.app.DefaultDifficulty()
	if req.Difficulty != "" {
		parsed, err := quiz.ParseDifficulty(req.Difficulty)
		if err != nil {
			s.fail(w, r, http.StatusBadRequest, "error.request", err)
			return
		}
		d = parsed
	}

	questions, tier, err := s.app.GenerateQuiz(r.Context(), d)
	if err != nil {
		s.fail(w, r, http.StatusBadGateway, "error.quiz", err)
		return
	}
	writeJSON(w, http.StatusOK, quizResponse{
		Difficulty:      d,
		Questions:       questions,
		DurationSeconds: int(tier.Duration.Seconds()),
	})
}

type chatCreateRequest struct {
	Item string `json:"item"`
}

type chatResponse struct {
	ID       string              `json:"id"`
	Item     string              `json:"item"`
	Messages []model.ChatMessage `json:"messages"`
}

func chatView(c *chat.Conversation) chatResponse {
	return chatResponse{ID: c.ID(), Item: c.Item(), Messages: c.Messages()}
}

func (s *Server) handleCreateChat(w http.ResponseWriter, r *http.Request) {
	var req chatCreateRequest
	if err := decodeJSON(w, r, &req); err != nil || strings.TrimSpace(req.Item) == "" {
		s.fail(w, r, http.StatusBadRequest, "error.request", err)
		return
	}
	c := s.app.NewConversation(model.WasteInfo{WasteType: strings.TrimSpace(req.Item)})
	s.chats.add(c)
	writeJSON(w, http.StatusCreated, chatView(c))
}

func (s *Server) handleGetChat(w http.ResponseWriter, r *http.Request) {
	c, ok := s.conversation(chi.URLParam(r, "id"))
	if !ok {
		s.fail(w, r, http.StatusNotFound, "error.chatNotFound", nil)
		return
	}
	writeJSON(w, http.StatusOK, chatView(c))
}

type chatSendRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleSendChat(w http.ResponseWriter, r *http.Request) {
	c, ok := s.conversation(chi.URLParam(r, "id"))
	if !ok {
		s.fail(w, r, http.StatusNotFound, "error.chatNotFound", nil)
		return
	}
	var req chatSendRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, http.StatusBadRequest, "error.request", err)
		return
	}

	_, err := c.Send(r.Context(), req.Text)
	switch {
	case errors.Is(err, chat.ErrBusy):
		s.fail(w, r, http.StatusConflict, "error.busy", err)
		return
	case errors.Is(err, chat.ErrEmptyMessage):
		s.fail(w, r, http.StatusBadRequest, "error.request", err)
		return
	}
	// A failed reply is already in the transcript as the localized error turn.
	writeJSON(w, http.StatusOK, chatView(c))
}

type feedbackRequest struct {
	Comments     string                 `json:"comments"`
	ReportedItem model.WasteInfo        `json:"reportedItem"`
	FeedbackType []model.FeedbackReason `json:"feedbackType"`
}

type feedbackResponse struct {
	Message  string         `json:"message"`
	Feedback model.Feedback `json:"feedback"`
}

func (s *Server) handleCreateFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, http.StatusBadRequest, "error.request", err)
		return
	}
	f, msg, err := s.app.SubmitFeedback(r.Context(), req.ReportedItem, req.FeedbackType, req.Comments)
	if err != nil {
		if errors.Is(err, model.ErrEmptyFeedback) {
			s.fail(w, r, http.StatusUnprocessableEntity, "error.feedback", err)
			return
		}
		s.fail(w, r, http.StatusUnprocessableEntity, "error.request", err)
		return
	}
	writeJSON(w, http.StatusCreated, feedbackResponse{Message: msg, Feedback: f})
}

func (s *Server) handleListFeedback(w http.ResponseWriter, r *http.Request) {
	list, err := s.app.Feedback(r.Context())
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, "error.title", err)
		return
	}
	if list == nil {
		list = []model.Feedback{}
	}
	writeJSON(w, http.StatusOK, list)
}
