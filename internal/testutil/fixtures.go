package testutil

import (
	"github.com/Veraticus/trash-scanner/internal/model"
)

// Waste item fixtures shaped like real model output.
var (
	PlasticBottle = model.WasteInfo{
		WasteType:            "Plastic bottle",
		Material:             "PET",
		Recyclable:           model.RecyclableYes,
		DisposalInstructions: "Empty, rinse and crush before recycling.",
		FunFact:              "PET can be recycled into clothing fibre.",
	}
	BananaPeel = model.WasteInfo{
		WasteType:            "Banana peel",
		Material:             "Organic",
		Recyclable:           model.RecyclableNo,
		DisposalInstructions: "Compost it.",
		FunFact:              "Peels break down in a few weeks.",
	}
	PizzaBox = model.WasteInfo{
		WasteType:            "Pizza box",
		Material:             "Cardboard",
		Recyclable:           model.RecyclableConditional,
		DisposalInstructions: "Recycle only the clean parts.",
		FunFact:              "Grease ruins paper fibres.",
	}
	Person = model.WasteInfo{
		WasteType:  "Human",
		Material:   "N/A",
		Recyclable: model.RecyclableNo,
	}
)

// ProfileBuilder builds user profiles for tests.
type ProfileBuilder struct {
	p model.UserProfile
}

// NewProfile starts from a complete Vietnamese phone profile.
func NewProfile() *ProfileBuilder {
	return &ProfileBuilder{p: model.UserProfile{
		Name:          "Lan",
		DeviceType:    model.DevicePhone,
		Gender:        model.GenderNu,
		DateOfBirth:   "15/08/1995",
		Salutation:    model.SalutationChi,
		SetupComplete: true,
	}}
}

// WithName sets the name.
func (b *ProfileBuilder) WithName(name string) *ProfileBuilder {
	b.p.Name = name
	return b
}

// WithDevice sets the device type.
func (b *ProfileBuilder) WithDevice(d model.DeviceType) *ProfileBuilder {
	b.p.DeviceType = d
	return b
}

// English localizes gender and salutation to English.
func (b *ProfileBuilder) English() *ProfileBuilder {
	b.p = b.p.Localize(model.LanguageEnglish)
	return b
}

// Incomplete clears the setup flag.
func (b *ProfileBuilder) Incomplete() *ProfileBuilder {
	b.p.SetupComplete = false
	return b
}

// Build returns the profile.
func (b *ProfileBuilder) Build() model.UserProfile {
	return b.p
}
