package model

import "strings"

// Recyclable tells whether an item can go in recycling.
type Recyclable string

// Recyclable values as returned by the model.
const (
	RecyclableYes         Recyclable = "Yes"
	RecyclableNo          Recyclable = "No"
	RecyclableConditional Recyclable = "Conditional"
)

// Valid reports whether r is one of the known values.
func (r Recyclable) Valid() bool {
	return r == RecyclableYes || r == RecyclableNo || r == RecyclableConditional
}

// HumanWasteType is the literal type the classifier uses when the only thing
// in frame is a person.
const HumanWasteType = "human"

// WasteInfo is one classified item. It is never persisted except inside feedback.
type WasteInfo struct {
	WasteType            string     `json:"wasteType"`
	Material             string     `json:"material"`
	Recyclable           Recyclable `json:"recyclable"`
	DisposalInstructions string     `json:"disposalInstructions"`
	FunFact              string     `json:"funFact"`
	ImageURL             string     `json:"imageUrl,omitempty"`
}

// IsHuman reports whether the classifier tagged this item as a person.
func (w WasteInfo) IsHuman() bool {
	return strings.ToLower(w.WasteType) == HumanWasteType
}
