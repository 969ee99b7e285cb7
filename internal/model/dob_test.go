package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateDateOfBirth(t *testing.T) {
	now := time.Date(2025, time.June, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		wantErr error
		name    string
		dob     string
	}{
		{name: "valid", dob: "15/08/1990"},
		{name: "leap day", dob: "29/02/2024"},
		{name: "today", dob: "15/06/2025"},
		{name: "earliest allowed", dob: "01/01/1900"},
		{name: "too short", dob: "1/8/1990", wantErr: ErrDOBFormat},
		{name: "wrong separator", dob: "15-08-1990", wantErr: ErrDOBFormat},
		{name: "letters", dob: "aa/08/1990", wantErr: ErrDOBFormat},
		{name: "empty", dob: "", wantErr: ErrDOBFormat},
		{name: "february overflow", dob: "31/02/2024", wantErr: ErrDOBInvalid},
		{name: "not a leap year", dob: "29/02/2023", wantErr: ErrDOBInvalid},
		{name: "month thirteen", dob: "01/13/2000", wantErr: ErrDOBInvalid},
		{name: "day zero", dob: "00/01/2000", wantErr: ErrDOBInvalid},
		{name: "before 1900", dob: "01/01/1899", wantErr: ErrDOBTooOld},
		{name: "last day of 1899", dob: "31/12/1899", wantErr: ErrDOBTooOld},
		{name: "tomorrow", dob: "16/06/2025", wantErr: ErrDOBFuture},
		{name: "far future", dob: "01/01/2100", wantErr: ErrDOBFuture},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDateOfBirth(tt.dob, now)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseDateOfBirth_UsesNowLocation(t *testing.T) {
	loc := time.FixedZone("ICT", 7*60*60)
	now := time.Date(2025, time.June, 15, 0, 5, 0, 0, loc)

	d, err := ParseDateOfBirth("15/06/2025", now)
	assert.NoError(t, err)
	assert.Equal(t, loc, d.Location())
	assert.Equal(t, 15, d.Day())
}
