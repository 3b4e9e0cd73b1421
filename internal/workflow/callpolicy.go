// Package workflow derives client-side state for one validation pass: which
// call attempt may be made, which step is next, and the cumulative decision
// set awaiting a save. The backend stays authoritative for everything here;
// these derivations only gate the UI.
package workflow

import (
	"time"

	"github.com/sells-group/validator-cli/internal/model"
)

// MaxCallAttempts is the per-session cap on logged call attempts.
const MaxCallAttempts = 2

// CallAttempt is one logged attempt with its ordinal.
type CallAttempt struct {
	Number    int       `json:"number"`
	Timestamp time.Time `json:"timestamp"`
}

// Attempts lists the attempts already present on the session, in order.
func Attempts(s *model.ValidationSession) []CallAttempt {
	if s == nil {
		return nil
	}
	var out []CallAttempt
	if s.CallAttempt1 != nil {
		out = append(out, CallAttempt{Number: 1, Timestamp: *s.CallAttempt1})
	}
	if s.CallAttempt2 != nil {
		out = append(out, CallAttempt{Number: 2, Timestamp: *s.CallAttempt2})
	}
	return out
}

// Decision is the outcome of the call-attempt policy.
type Decision struct {
	Allowed    bool   `json:"allowed"`
	Reason     string `json:"reason,omitempty"`
	NextNumber int    `json:"next_number,omitempty"`
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// CanAttempt decides whether a new call attempt may be made at now. At most
// two attempts per session, none on weekends, and never twice on the same
// calendar day. Advisory only: the backend may still reject the attempt.
func CanAttempt(s *model.ValidationSession, now time.Time) Decision {
	if s == nil {
		return Decision{Reason: "no active validation session"}
	}

	attempts := Attempts(s)
	if len(attempts) >= MaxCallAttempts {
		return Decision{Reason: "maximum call attempts reached"}
	}

	if wd := now.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return Decision{Reason: "call attempts are not allowed on weekends"}
	}

	if len(attempts) > 0 {
		last := attempts[len(attempts)-1]
		if sameCalendarDay(last.Timestamp, now) {
			return Decision{Reason: "a call attempt was already made today"}
		}
	}

	return Decision{Allowed: true, NextNumber: len(attempts) + 1}
}
