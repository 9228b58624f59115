package domain

import "errors"

// Kind classifies a failure so callers can branch on the outcome instead of
// matching message strings. Conflict kinds (already member, already invited,
// already responded) are expected results of racing requests, not faults.
type Kind string

const (
	KindNotFound             Kind = "not_found"
	KindNotMember            Kind = "not_member"
	KindAlreadyMember        Kind = "already_member"
	KindAlreadyInvited       Kind = "already_invited"
	KindAlreadyResponded     Kind = "already_responded"
	KindNotAuthorized        Kind = "not_authorized"
	KindTeamClosed           Kind = "team_closed"
	KindOrganizerCannotLeave Kind = "organizer_cannot_leave"
	KindValidation           Kind = "validation"
	KindInfrastructure       Kind = "infrastructure"
)

// Error carries a kind alongside a human-readable message. Services return it
// across the HTTP boundary so status mapping stays out of business code.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E builds a classified error.
func E(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap classifies an underlying error, preserving it for errors.Is/As.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from an error chain. Unclassified errors are
// treated as infrastructure failures and surfaced as retryable.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInfrastructure
}
