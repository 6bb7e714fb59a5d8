// Package lead keeps the consultation requests users leave after a
// diagnosis, and the operator triage state over them. The ledger is small
// and append-mostly, so every mutation rewrites the full serialized list.
package lead

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// Status is the operator triage state of a lead. Deleted leads stay in the
// ledger and are filtered out of operator views.
type Status string

const (
	StatusUnconfirmed Status = "unconfirmed"
	StatusInProgress  Status = "in_progress"
	StatusDone        Status = "done"
	StatusDeleted     Status = "deleted"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusUnconfirmed, StatusInProgress, StatusDone, StatusDeleted:
		return true
	}
	return false
}

var (
	ErrInvalidPhone = errors.New("lead: invalid phone number")
	ErrEmptyRegion  = errors.New("lead: region is required")
	ErrNotFound     = errors.New("lead: not found")
)

// Lead is one consultation request.
type Lead struct {
	ID        string    `json:"id"`
	Region    string    `json:"region"`
	Phone     string    `json:"phone"`
	Message   string    `json:"message"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// phonePattern accepts Korean mobile numbers only, in display form.
var phonePattern = regexp.MustCompile(`^010-\d{3,4}-\d{4}$`)

// ValidatePhone checks the display-formatted number.
func ValidatePhone(phone string) error {
	if !phonePattern.MatchString(phone) {
		return ErrInvalidPhone
	}
	return nil
}

// FormatPhone normalizes raw input to display form as the user types:
// digits only, hyphenated 3, 3-4 or 3-4-4, capped at eleven digits.
func FormatPhone(raw string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) > 11 {
		d = d[:11]
	}
	switch {
	case len(d) <= 3:
		return d
	case len(d) <= 7:
		return d[:3] + "-" + d[3:]
	default:
		return d[:3] + "-" + d[3:7] + "-" + d[7:]
	}
}
