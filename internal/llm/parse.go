package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/trash-scanner/internal/model"
)

// ErrMalformedResponse is returned when the model's output is not the
// expected JSON shape.
var ErrMalformedResponse = errors.New("malformed model response")

// parseWasteList decodes a JSON array of waste items. Anything other than an
// array, or an item without a type, is malformed.
func parseWasteList(content string) ([]model.WasteInfo, error) {
	content = cleanMarkdownWrapper(content)
	if !strings.HasPrefix(content, "[") {
		return nil, fmt.Errorf("%w: expected a JSON array", ErrMalformedResponse)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("%w: expected a JSON array: %w", ErrMalformedResponse, err)
	}

	items := make([]model.WasteInfo, 0, len(raw))
	for i, r := range raw {
		var item model.WasteInfo
		if err := json.Unmarshal(r, &item); err != nil {
			return nil, fmt.Errorf("%w: item %d: %w", ErrMalformedResponse, i, err)
		}
		item.WasteType = strings.TrimSpace(item.WasteType)
		if item.WasteType == "" {
			return nil, fmt.Errorf("%w: item %d has no wasteType", ErrMalformedResponse, i)
		}
		rec, ok := normalizeRecyclable(string(item.Recyclable))
		if !ok {
			return nil, fmt.Errorf("%w: item %d has recyclable %q", ErrMalformedResponse, i, item.Recyclable)
		}
		item.Recyclable = rec
		item.ImageURL = strings.TrimSpace(item.ImageURL)
		items = append(items, item)
	}
	return items, nil
}

func normalizeRecyclable(s string) (model.Recyclable, bool) {
	for _, r := range []model.Recyclable{model.RecyclableYes, model.RecyclableNo, model.RecyclableConditional} {
		if strings.EqualFold(strings.TrimSpace(s), string(r)) {
			return r, true
		}
	}
	return "", false
}

// parseQuiz decodes a JSON array of questions.
func parseQuiz(content string) ([]model.QuizQuestion, error) {
	content = cleanMarkdownWrapper(content)
	if !strings.HasPrefix(content, "[") {
		return nil, fmt.Errorf("%w: expected a JSON array of questions", ErrMalformedResponse)
	}

	var questions []model.QuizQuestion
	if err := json.Unmarshal([]byte(content), &questions); err != nil {
		return nil, fmt.Errorf("%w: expected a JSON array of questions: %w", ErrMalformedResponse, err)
	}
	return questions, nil
}
