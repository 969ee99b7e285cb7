// Package chat keeps the follow-up conversation about one identified item.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/Veraticus/trash-scanner/internal/i18n"
	"github.com/Veraticus/trash-scanner/internal/model"
)

var (
	// ErrBusy is returned when a message is sent while a reply is pending.
	ErrBusy = errors.New("a reply is already pending")
	// ErrEmptyMessage is returned for blank input.
	ErrEmptyMessage = errors.New("message is empty")
)

// Replier produces the model's next turn for a transcript.
type Replier interface {
	Chat(ctx context.Context, item string, history []model.ChatMessage, lang model.Language) (string, error)
}

// Conversation is an ordered transcript about a single waste item.
type Conversation struct {
	replier  Replier
	loc      *i18n.Localizer
	logger   *slog.Logger
	id       string
	item     string
	messages []model.ChatMessage
	mu       sync.Mutex
	busy     bool
}

// Option configures a Conversation.
type Option func(*Conversation)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Conversation) { c.logger = l }
}

// New starts a conversation about item, seeded with the localized greeting.
func New(replier Replier, loc *i18n.Localizer, item string, opts ...Option) *Conversation {
	c := &Conversation{
		replier: replier,
		loc:     loc,
		logger:  slog.Default(),
		id:      uuid.NewString(),
		item:    item,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.messages = []model.ChatMessage{{
		Role: model.RoleModel,
		Text: loc.T("chat.greeting", i18n.Vars{"item": item}),
	}}
	return c
}

// ID identifies the conversation in logs and the HTTP API.
func (c *Conversation) ID() string { return c.id }

// Item is the subject of the conversation.
func (c *Conversation) Item() string { return c.item }

// Busy reports whether a reply is pending.
func (c *Conversation) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Messages returns a copy of the transcript.
func (c *Conversation) Messages() []model.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

// Send appends the user's turn, asks the model once with the whole
// transcript, and appends exactly one model turn. When the call fails the
// appended turn is the localized chat.error text and the error is returned
// alongside it.
func (c *Conversation) Send(ctx context.Context, text string) (model.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.ChatMessage{}, ErrEmptyMessage
	}

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return model.ChatMessage{}, ErrBusy
	}
	c.busy = true
	c.messages = append(c.messages, model.ChatMessage{Role: model.RoleUser, Text: text})
	history := make([]model.ChatMessage, len(c.messages))
	copy(history, c.messages)
	c.mu.Unlock()

	reply, err := c.replier.Chat(ctx, c.item, history, c.loc.Language())
	if err != nil {
		c.logger.Error("chat reply failed", "conversation", c.id, "item", c.item, "error", err)
		reply = c.loc.T("chat.error")
	}
	msg := model.ChatMessage{Role: model.RoleModel, Text: reply}

	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.busy = false
	c.mu.Unlock()
	return msg, err
}
