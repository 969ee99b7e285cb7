// Package storage persists the user profile, settings and feedback reports.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Veraticus/trash-scanner/internal/common"
	"github.com/Veraticus/trash-scanner/internal/model"
)

// Store is the persistence port. Missing values return common.ErrNotFound;
// values that cannot be decoded return common.ErrCorrupt.
type Store interface {
	LoadProfile(ctx context.Context) (*model.UserProfile, error)
	SaveProfile(ctx context.Context, p model.UserProfile) error
	LoadSettings(ctx context.Context) (*model.AppSettings, error)
	SaveSettings(ctx context.Context, s model.AppSettings) error
	AppendFeedback(ctx context.Context, f model.Feedback) error
	ListFeedback(ctx context.Context) ([]model.Feedback, error)
	Reset(ctx context.Context) error
	Close() error
}

// Keys under which the single-document values are stored.
const (
	KeyProfile  = "profile"
	KeySettings = "settings"
)

func encodeProfile(p model.UserProfile) ([]byte, error) {
	if err := p.Validate(time.Now()); err != nil {
		return nil, err
	}
	return json.Marshal(p)
}

// decodeProfile rejects a completed profile whose fields no longer pass
// validation, so a damaged document cannot skip setup.
func decodeProfile(data []byte) (*model.UserProfile, error) {
	var p model.UserProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: profile: %w", common.ErrCorrupt, err)
	}
	if err := p.Validate(time.Now()); err != nil {
		return nil, fmt.Errorf("%w: profile: %w", common.ErrCorrupt, err)
	}
	return &p, nil
}

func encodeSettings(s model.AppSettings) ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(s)
}

// decodeSettings overlays the stored document on the defaults so fields
// added later keep their default values.
func decodeSettings(data []byte) (*model.AppSettings, error) {
	s := model.DefaultSettings()
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: settings: %w", common.ErrCorrupt, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%w: settings: %w", common.ErrCorrupt, err)
	}
	return &s, nil
}

func encodeFeedback(f model.Feedback) ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(f)
}

func decodeFeedback(data []byte) (model.Feedback, error) {
	var f model.Feedback
	if err := json.Unmarshal(data, &f); err != nil {
		return model.Feedback{}, fmt.Errorf("%w: feedback: %w", common.ErrCorrupt, err)
	}
	return f, nil
}
