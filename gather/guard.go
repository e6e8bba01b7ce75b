package gather

import (
	"time"

	"github.com/pkg/errors"
)

var (
	// ErrCompleted rejects contributions to a gathering whose stored
	// status already says completed.
	ErrCompleted = errors.New("gathering has already reached its goal")

	// ErrExpired rejects contributions past the gathering deadline.
	ErrExpired = errors.New("gathering has expired")
)

// ValidateOpen reports whether g can still accept contributions. It only
// reads the stored seed status and does not re-sum contributions: a late
// contribution can land on a gathering whose derived total already passed
// its goal. That overshoot is accepted; closing it would mean locking or
// rewriting the gathering record on every contribution.
func ValidateOpen(g Gathering, now time.Time) error {
	if g.Status == StatusCompleted {
		return ErrCompleted
	}

	if endsAt, err := ParseTime(g.EndsAt); err == nil && now.After(endsAt) {
		return ErrExpired
	}

	return nil
}
