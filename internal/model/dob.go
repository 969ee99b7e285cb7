package model

import (
	"errors"
	"time"
)

// DateOfBirthLayout is the only accepted date of birth format.
const DateOfBirthLayout = "02/01/2006"

// Date of birth validation errors.
var (
	ErrDOBFormat  = errors.New("date of birth must be DD/MM/YYYY")
	ErrDOBInvalid = errors.New("date of birth is not a calendar date")
	ErrDOBTooOld  = errors.New("date of birth is before 1900")
	ErrDOBFuture  = errors.New("date of birth is in the future")
)

var earliestDOB = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// ParseDateOfBirth parses s as DD/MM/YYYY in now's location and checks that it
// lies between 1900-01-01 and the end of today.
func ParseDateOfBirth(s string, now time.Time) (time.Time, error) {
	if len(s) != 10 || s[2] != '/' || s[5] != '/' {
		return time.Time{}, ErrDOBFormat
	}
	day, ok1 := digits(s[0:2])
	month, ok2 := digits(s[3:5])
	year, ok3 := digits(s[6:10])
	if !ok1 || !ok2 || !ok3 {
		return time.Time{}, ErrDOBFormat
	}

	loc := now.Location()
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	// time.Date normalizes overflow, so 31/02 comes back as a March date.
	if d.Year() != year || int(d.Month()) != month || d.Day() != day {
		return time.Time{}, ErrDOBInvalid
	}

	if d.Before(time.Date(earliestDOB.Year(), earliestDOB.Month(), earliestDOB.Day(), 0, 0, 0, 0, loc)) {
		return time.Time{}, ErrDOBTooOld
	}
	endOfToday := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), loc)
	if d.After(endOfToday) {
		return time.Time{}, ErrDOBFuture
	}
	return d, nil
}

// ValidateDateOfBirth reports why s is not an acceptable date of birth.
func ValidateDateOfBirth(s string, now time.Time) error {
	_, err := ParseDateOfBirth(s, now)
	return err
}

func digits(s string) (int, bool) {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}
