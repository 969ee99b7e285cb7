package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// FeedbackReason tags what was wrong with a classification.
type FeedbackReason string

// Feedback reasons.
const (
	ReasonType         FeedbackReason = "type"
	ReasonMaterial     FeedbackReason = "material"
	ReasonRecyclable   FeedbackReason = "recyclable"
	ReasonInstructions FeedbackReason = "instructions"
	ReasonOther        FeedbackReason = "other"
)

// FeedbackReasons lists every reason in display order.
func FeedbackReasons() []FeedbackReason {
	return []FeedbackReason{ReasonType, ReasonMaterial, ReasonRecyclable, ReasonInstructions, ReasonOther}
}

// Valid reports whether r is a known reason.
func (r FeedbackReason) Valid() bool {
	for _, known := range FeedbackReasons() {
		if r == known {
			return true
		}
	}
	return false
}

// Feedback is a user report about a wrong classification. Records are append-only.
type Feedback struct {
	Timestamp    time.Time        `json:"timestamp"`
	ID           string           `json:"id"`
	Comments     string           `json:"comments"`
	ReportedItem WasteInfo        `json:"reportedItem"`
	FeedbackType []FeedbackReason `json:"feedbackType"`
}

// ErrEmptyFeedback is returned when a report has neither reasons nor comments.
var ErrEmptyFeedback = errors.New("feedback needs at least one reason or a comment")

// Validate checks a feedback record before it is stored.
func (f Feedback) Validate() error {
	if f.ID == "" {
		return errors.New("feedback id is empty")
	}
	if f.ReportedItem.WasteType == "" {
		return errors.New("feedback has no reported item")
	}
	for _, r := range f.FeedbackType {
		if !r.Valid() {
			return fmt.Errorf("unknown feedback reason %q", r)
		}
	}
	if len(f.FeedbackType) == 0 && strings.TrimSpace(f.Comments) == "" {
		return ErrEmptyFeedback
	}
	return nil
}
