package sheets

import (
	"context"
	"time"

	"github.com/Veraticus/trash-scanner/internal/model"
)

// FeedbackWriter exports feedback reports.
type FeedbackWriter interface {
	Write(ctx context.Context, feedback []model.Feedback) error
}

// FeedbackRow is one report as written to the sheet.
type FeedbackRow struct {
	Timestamp  time.Time
	ID         string
	WasteType  string
	Material   string
	Recyclable string
	Reasons    string
	Comments   string
}

// ReasonCount is one line of the reason breakdown.
type ReasonCount struct {
	Reason model.FeedbackReason
	Count  int
}
