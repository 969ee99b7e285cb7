package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DeviceType is the kind of device the scanner runs on.
type DeviceType string

// Device types.
const (
	DevicePhone    DeviceType = "phone"
	DeviceComputer DeviceType = "computer"
)

// Valid reports whether d is a known device type.
func (d DeviceType) Valid() bool {
	return d == DevicePhone || d == DeviceComputer
}

// Gender values are stored in whichever language the user picked them in.
type Gender string

// Gender values.
const (
	GenderNam    Gender = "Nam"
	GenderNu     Gender = "Nữ"
	GenderKhac   Gender = "Khác"
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

var genderPairs = [][2]Gender{
	{GenderNam, GenderMale},
	{GenderNu, GenderFemale},
	{GenderKhac, GenderOther},
}

// GendersFor returns the gender options offered in the given language.
func GendersFor(lang Language) []Gender {
	out := make([]Gender, 0, len(genderPairs))
	for _, p := range genderPairs {
		out = append(out, pick(p, lang))
	}
	return out
}

// Valid reports whether g is a known gender value in either language.
func (g Gender) Valid() bool {
	for _, p := range genderPairs {
		if g == p[0] || g == p[1] {
			return true
		}
	}
	return false
}

// Localize maps g to its equivalent in lang. Unknown values pass through.
func (g Gender) Localize(lang Language) Gender {
	for _, p := range genderPairs {
		if g == p[0] || g == p[1] {
			return pick(p, lang)
		}
	}
	return g
}

// Salutation is how the app addresses the user.
type Salutation string

// Salutation values.
const (
	SalutationAnh    Salutation = "Anh"
	SalutationChi    Salutation = "Chị"
	SalutationBan    Salutation = "Bạn"
	SalutationMr     Salutation = "Mr"
	SalutationMs     Salutation = "Ms"
	SalutationFriend Salutation = "Friend"
)

var salutationPairs = [][2]Salutation{
	{SalutationAnh, SalutationMr},
	{SalutationChi, SalutationMs},
	{SalutationBan, SalutationFriend},
}

// SalutationsFor returns the salutation options offered in the given language.
func SalutationsFor(lang Language) []Salutation {
	out := make([]Salutation, 0, len(salutationPairs))
	for _, p := range salutationPairs {
		out = append(out, pick(p, lang))
	}
	return out
}

// Valid reports whether s is a known salutation in either language.
func (s Salutation) Valid() bool {
	for _, p := range salutationPairs {
		if s == p[0] || s == p[1] {
			return true
		}
	}
	return false
}

// Localize maps s to its equivalent in lang. Unknown values pass through.
func (s Salutation) Localize(lang Language) Salutation {
	for _, p := range salutationPairs {
		if s == p[0] || s == p[1] {
			return pick(p, lang)
		}
	}
	return s
}

func pick[T any](pair [2]T, lang Language) T {
	if lang == LanguageEnglish {
		return pair[1]
	}
	return pair[0]
}

// UserProfile is the onboarding result. Field names match the stored JSON.
type UserProfile struct {
	Name          string     `json:"name"`
	DeviceType    DeviceType `json:"deviceType"`
	Gender        Gender     `json:"gender"`
	DateOfBirth   string     `json:"dob"`
	Salutation    Salutation `json:"salutation"`
	SetupComplete bool       `json:"setupComplete"`
}

// Localize re-maps gender and salutation into lang.
func (p UserProfile) Localize(lang Language) UserProfile {
	if p.Gender != "" {
		p.Gender = p.Gender.Localize(lang)
	}
	if p.Salutation != "" {
		p.Salutation = p.Salutation.Localize(lang)
	}
	return p
}

// ErrProfileIncomplete is returned when a completed profile is missing fields.
var ErrProfileIncomplete = errors.New("profile is incomplete")

// Validate checks the profile invariants. A profile that has not finished
// setup is always valid.
func (p UserProfile) Validate(now time.Time) error {
	if !p.SetupComplete {
		return nil
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is empty", ErrProfileIncomplete)
	}
	if !p.DeviceType.Valid() {
		return fmt.Errorf("%w: device type %q", ErrProfileIncomplete, p.DeviceType)
	}
	if !p.Gender.Valid() {
		return fmt.Errorf("%w: gender %q", ErrProfileIncomplete, p.Gender)
	}
	if !p.Salutation.Valid() {
		return fmt.Errorf("%w: salutation %q", ErrProfileIncomplete, p.Salutation)
	}
	if err := ValidateDateOfBirth(p.DateOfBirth, now); err != nil {
		return fmt.Errorf("%w: %w", ErrProfileIncomplete, err)
	}
	return nil
}
