package domain

import "time"

// SessionEventKind classifies entries in the session audit trail.
type SessionEventKind string

const (
	EventLogin             SessionEventKind = "login"
	EventLogout            SessionEventKind = "logout"
	EventInactivityExpired SessionEventKind = "inactivity_expired"
	EventInvalidated       SessionEventKind = "invalidated"
	EventRestore           SessionEventKind = "restore"
)

// SessionEvent records a lifecycle transition of the operator session.
type SessionEvent struct {
	Kind       SessionEventKind `json:"kind"`
	Username   string           `json:"username"`
	Detail     string           `json:"detail,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// InvalidationNotice carries the reason the upstream API rejected the session.
// It is held until the operator acknowledges it.
type InvalidationNotice struct {
	Reason string    `json:"reason"`
	At     time.Time `json:"at"`
}
