package model

import "time"

// SessionStatus is the lifecycle state of a validation session.
type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionAbandoned  SessionStatus = "abandoned"
)

// ValidationSession ties one validator to one provider for one pass of call
// attempts and corrections. The backend owns its lifecycle; the client only
// caches the latest copy it fetched.
type ValidationSession struct {
	ID           int           `json:"id"`
	ProviderID   int           `json:"provider_id"`
	UserID       int           `json:"user_id"`
	CallAttempt1 *time.Time    `json:"call_attempt_1,omitempty"`
	CallAttempt2 *time.Time    `json:"call_attempt_2,omitempty"`
	ClosedDate   *time.Time    `json:"closed_date,omitempty"`
	Status       SessionStatus `json:"status"`
}

// ValidationPreview is the server-derived snapshot of what remains to be
// validated. The backend recomputes it on demand; the client never owns the
// authoritative copy.
type ValidationPreview struct {
	CanComplete          bool              `json:"can_complete"`
	UnvalidatedAddresses []ProviderAddress `json:"unvalidated_addresses"`
	UnvalidatedPhones    []ProviderPhone   `json:"unvalidated_phones"`
	TotalRequired        int               `json:"total_required"`
	TotalValidated       int               `json:"total_validated"`
	Message              string            `json:"message"`
}
