// Package service defines the interfaces between the front ends and the
// model-backed services.
package service

import (
	"context"

	"github.com/Veraticus/trash-scanner/internal/llm"
	"github.com/Veraticus/trash-scanner/internal/model"
)

// Classifier identifies waste from a photo or a text query.
type Classifier interface {
	AnalyzeImage(ctx context.Context, jpeg []byte, opts llm.Options) ([]model.WasteInfo, error)
	Search(ctx context.Context, query string, opts llm.Options) ([]model.WasteInfo, error)
}

// QuizGenerator produces quiz questions.
type QuizGenerator interface {
	GenerateQuiz(ctx context.Context, req llm.QuizRequest, lang model.Language) ([]model.QuizQuestion, error)
}

// ChatReplier answers follow-up questions about an item.
type ChatReplier interface {
	Chat(ctx context.Context, item string, history []model.ChatMessage, lang model.Language) (string, error)
}

// Assistant is everything the front ends need from the model.
type Assistant interface {
	Classifier
	QuizGenerator
	ChatReplier
}

var _ Assistant = (*llm.Service)(nil)
