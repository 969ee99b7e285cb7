// Package setup implements the five step onboarding wizard.
package setup

import (
	"errors"
	"strings"
	"time"

	"github.com/Veraticus/trash-scanner/internal/model"
)

// Step is a wizard page, numbered from 1.
type Step int

// Wizard steps.
const (
	StepLanguage Step = iota + 1
	StepName
	StepDevice
	StepDetails
	StepConfirm
)

// TotalSteps is the number of wizard pages.
const TotalSteps = int(StepConfirm)

// Error is a validation failure that carries its localization key.
type Error struct {
	err error
	key string
}

func (e *Error) Error() string { return e.key }

// Key returns the localization key describing the failure.
func (e *Error) Key() string { return e.key }

// Unwrap exposes the underlying date of birth error, if any.
func (e *Error) Unwrap() error { return e.err }

// Validation errors, one per localization key.
var (
	ErrName       = &Error{key: "setup.error.name"}
	ErrDevice     = &Error{key: "setup.error.device"}
	ErrInfo       = &Error{key: "setup.error.info"}
	ErrDOBFormat  = &Error{key: "setup.error.dobFormat", err: model.ErrDOBFormat}
	ErrDOBInvalid = &Error{key: "setup.error.dobInvalid", err: model.ErrDOBInvalid}
	ErrDOBPast    = &Error{key: "setup.error.dobPast", err: model.ErrDOBTooOld}
	ErrDOBFuture  = &Error{key: "setup.error.dobFuture", err: model.ErrDOBFuture}
)

// Wizard collects a profile across five steps. The zero value is not usable;
// call New.
type Wizard struct {
	lang    model.Language
	profile model.UserProfile
	step    Step
}

// New starts a wizard at the language step.
func New(lang model.Language) *Wizard {
	if !lang.Valid() {
		lang = model.DefaultLanguage
	}
	return &Wizard{lang: lang, step: StepLanguage}
}

// Step returns the current step.
func (w *Wizard) Step() Step { return w.step }

// Language returns the chosen language.
func (w *Wizard) Language() model.Language { return w.lang }

// Profile returns the data entered so far.
func (w *Wizard) Profile() model.UserProfile { return w.profile }

// SetLanguage changes the language and re-localizes gender and salutation.
func (w *Wizard) SetLanguage(lang model.Language) {
	if !lang.Valid() {
		return
	}
	w.lang = lang
	w.profile = w.profile.Localize(lang)
}

// SetName sets the display name.
func (w *Wizard) SetName(name string) { w.profile.Name = name }

// SetDevice sets the device type.
func (w *Wizard) SetDevice(d model.DeviceType) { w.profile.DeviceType = d }

// SetGender sets the gender, localized to the wizard language.
func (w *Wizard) SetGender(g model.Gender) { w.profile.Gender = g.Localize(w.lang) }

// SetSalutation sets the salutation, localized to the wizard language.
func (w *Wizard) SetSalutation(s model.Salutation) { w.profile.Salutation = s.Localize(w.lang) }

// SetDateOfBirth sets the raw DD/MM/YYYY text.
func (w *Wizard) SetDateOfBirth(dob string) { w.profile.DateOfBirth = dob }

// Next validates the current step and advances. On failure the step is
// unchanged and the returned *Error names the problem.
func (w *Wizard) Next(now time.Time) error {
	if err := w.validate(w.step, now); err != nil {
		return err
	}
	if w.step < StepConfirm {
		w.step++
	}
	return nil
}

// Prev goes back one step, keeping everything entered.
func (w *Wizard) Prev() {
	if w.step > StepLanguage {
		w.step--
	}
}

// Submit is the enter key: Next on steps 1-4, Finish on the last step.
// The profile is returned only when the wizard finished.
func (w *Wizard) Submit(now time.Time) (*model.UserProfile, error) {
	if w.step < StepConfirm {
		return nil, w.Next(now)
	}
	p, err := w.Finish(now)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Finish re-checks every step and returns the completed profile. If an
// earlier step fails the wizard jumps back to it.
func (w *Wizard) Finish(now time.Time) (model.UserProfile, error) {
	for s := StepLanguage; s < StepConfirm; s++ {
		if err := w.validate(s, now); err != nil {
			w.step = s
			return model.UserProfile{}, err
		}
	}
	p := w.profile
	p.Name = strings.TrimSpace(p.Name)
	p.SetupComplete = true
	return p, nil
}

func (w *Wizard) validate(step Step, now time.Time) error {
	switch step {
	case StepName:
		if strings.TrimSpace(w.profile.Name) == "" {
			return ErrName
		}
	case StepDevice:
		if !w.profile.DeviceType.Valid() {
			return ErrDevice
		}
	case StepDetails:
		p := w.profile
		if strings.TrimSpace(p.Name) == "" || p.Gender == "" || p.Salutation == "" || p.DateOfBirth == "" {
			return ErrInfo
		}
		if !p.Gender.Valid() || !p.Salutation.Valid() {
			return ErrInfo
		}
		return dobError(model.ValidateDateOfBirth(p.DateOfBirth, now))
	}
	return nil
}

func dobError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, model.ErrDOBFormat):
		return ErrDOBFormat
	case errors.Is(err, model.ErrDOBInvalid):
		return ErrDOBInvalid
	case errors.Is(err, model.ErrDOBTooOld):
		return ErrDOBPast
	case errors.Is(err, model.ErrDOBFuture):
		return ErrDOBFuture
	default:
		return ErrInfo
	}
}
