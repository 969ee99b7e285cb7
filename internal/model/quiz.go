package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// QuizQuestion is one multiple choice question.
type QuizQuestion struct {
	ItemName      string   `json:"itemName"`
	ImagePrompt   string   `json:"imagePrompt,omitempty"`
	ImageURL      string   `json:"imageUrl,omitempty"`
	QuestionText  string   `json:"questionText"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
	Options       []string `json:"options"`
}

// Option count bounds for a question.
const (
	MinQuizOptions = 3
	MaxQuizOptions = 4
)

// Validate checks that the question can be played.
func (q QuizQuestion) Validate() error {
	if strings.TrimSpace(q.QuestionText) == "" {
		return errors.New("question text is empty")
	}
	if len(q.Options) < MinQuizOptions || len(q.Options) > MaxQuizOptions {
		return fmt.Errorf("question has %d options, want %d-%d", len(q.Options), MinQuizOptions, MaxQuizOptions)
	}
	if !slices.Contains(q.Options, q.CorrectAnswer) {
		return fmt.Errorf("correct answer %q is not an option", q.CorrectAnswer)
	}
	return nil
}

// HasImage reports whether the question shows a picture.
func (q QuizQuestion) HasImage() bool {
	return q.ImageURL != ""
}
