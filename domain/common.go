package domain

import (
	"errors"
	"fmt"
	"math"
	"time"
)

const DateLayout = "2006-01-02"

var (
	MessageFailedProcessRequest = "failed to process request"
	MessageFailedBodyRequest    = "failed to parse request body"
	MessageFailedGetToken       = "failed to get token"
	MessageFailedTokenInvalid   = "failed to token invalid"

	// Error kinds. Every sentinel below wraps exactly one of them so callers
	// can branch on either the kind or the concrete cause with errors.Is.
	ErrValidation      = errors.New("validation error")
	ErrExternalService = errors.New("external service error")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")

	ErrParseUUID        = fmt.Errorf("%w: failed to parse UUID", ErrValidation)
	ErrTokenNotFound    = errors.New("failed to token not found")
	ErrTokenExpired     = errors.New("token expired")
	ErrTokenInvalid     = errors.New("token invalid")
	ErrJWTSecretMissing = errors.New("jwt secret is not configured")
	ErrUserNotFound     = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrInvalidDate      = fmt.Errorf("%w: invalid date, expected YYYY-MM-DD", ErrValidation)
)

// DateOf truncates t to its UTC calendar day. All date-only columns are
// stored in this form.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(DateOf(b).Sub(DateOf(a)).Hours() / 24)
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return DateOf(t), nil
}

func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
