// Package assistant ties the profile, settings, classifier and views
// together for the terminal and HTTP front ends.
package assistant

import (
	"strings"

	"github.com/Veraticus/trash-scanner/internal/model"
)

// HumanWasteType is the waste type the model returns for a person in frame.
const HumanWasteType = model.HumanWasteType

// Outcome decides which view shows a classification result.
type Outcome int

// Outcomes.
const (
	OutcomeResults Outcome = iota
	OutcomeCompliment
	OutcomeNotFound
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompliment:
		return "compliment"
	case OutcomeNotFound:
		return "not_found"
	default:
		return "results"
	}
}

// Route picks the view for items. A single human item gets the compliment
// view and an empty list the not-found view.
func Route(items []model.WasteInfo) Outcome {
	switch {
	case len(items) == 0:
		return OutcomeNotFound
	case len(items) == 1 && strings.EqualFold(items[0].WasteType, HumanWasteType):
		return OutcomeCompliment
	default:
		return OutcomeResults
	}
}
