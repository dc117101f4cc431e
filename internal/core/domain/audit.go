package domain

import "time"

type AuditOutcome string

const (
	OutcomeAllowed         AuditOutcome = "allowed"
	OutcomeUnauthenticated AuditOutcome = "unauthenticated"
	OutcomeDenied          AuditOutcome = "denied"
	OutcomeFailed          AuditOutcome = "failed"
	OutcomePanicked        AuditOutcome = "panicked"
)

// AuditEntry describes one guarded call.
type AuditEntry struct {
	Operation string
	Method    string
	Path      string
	Caller    string
	UserID    UserID
	StartedAt time.Time
	Elapsed   time.Duration
	Outcome   AuditOutcome
	Status    int
}
