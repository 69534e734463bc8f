package services

import (
	"errors"
	"fmt"
)

// Kind classifies a service error. Handlers map kinds to HTTP statuses.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindUnauthorized    Kind = "unauthorized"
	KindForbidden       Kind = "forbidden"
	KindExpired         Kind = "expired"
	KindAlreadyAccepted Kind = "already_accepted"
	KindUpstream        Kind = "upstream"
	KindInternal        Kind = "internal"
)

// Error is a classified failure. Message is safe to show to clients; Err
// carries the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
	Details map[string]interface{}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error with the same kind and message, so a wrapped
// sentinel still satisfies errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// wrap attaches cause to a copy of sentinel.
func wrap(sentinel *Error, cause error) *Error {
	return &Error{Kind: sentinel.Kind, Message: sentinel.Message, Err: cause}
}

// withDetail returns a copy of sentinel carrying one client-visible detail.
func withDetail(sentinel *Error, key string, value interface{}) *Error {
	return &Error{
		Kind:    sentinel.Kind,
		Message: sentinel.Message,
		Err:     sentinel.Err,
		Details: map[string]interface{}{key: value},
	}
}

func validationError(format string, args ...interface{}) *Error {
	return newError(KindValidation, fmt.Sprintf(format, args...))
}

func internalError(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: cause}
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

var (
	ErrUnauthorized = newError(KindUnauthorized, "Authentication required")
	ErrAdminOnly    = newError(KindForbidden, "Only admins can perform this action")
	ErrNoAccess     = newError(KindForbidden, "You do not have access to this resource")
	ErrNoOrg        = newError(KindForbidden, "Create an organization first")

	ErrUserNotFound         = newError(KindNotFound, "User not found")
	ErrOrganizationNotFound = newError(KindNotFound, "Organization not found")
	ErrDepartmentNotFound   = newError(KindNotFound, "Department not found")
	ErrTeamNotFound         = newError(KindNotFound, "Team not found")
	ErrObjectiveNotFound    = newError(KindNotFound, "Objective not found")
	ErrKeyResultNotFound    = newError(KindNotFound, "Key result not found")

	ErrInviteNotFound        = newError(KindNotFound, "Invalid invite link")
	ErrInviteExpired         = newError(KindExpired, "Invite has expired")
	ErrInviteAlreadyAccepted = newError(KindAlreadyAccepted, "Invite has already been accepted")
	ErrInviteRoleNotAllowed  = newError(KindValidation, "Invites can only grant MEMBER or MANAGER")
	ErrNoInviteEmails        = newError(KindValidation, "At least one email is required")
	ErrTooManyInvites        = newError(KindValidation, "Too many emails in one request")
	ErrNameRequired          = newError(KindValidation, "Name is required")

	ErrUserExists         = newError(KindConflict, "User with this email already exists")
	ErrInvitePending      = newError(KindConflict, "An invite for this email is already pending")
	ErrOrganizationExists = newError(KindConflict, "Organization already exists")
	ErrAlreadyHasOrg      = newError(KindConflict, "You already own an organization")
	ErrDepartmentNotEmpty = newError(KindConflict, "Department still has teams")
	ErrTeamNotEmpty       = newError(KindConflict, "Team still has members or objectives")
	ErrEmailTaken         = newError(KindConflict, "Email is already in use")
	ErrOwnerCannotLeave   = newError(KindConflict, "Organization owners cannot delete their profile")

	ErrInvalidOTP     = newError(KindValidation, "Invalid or expired OTP")
	ErrInvalidOTPType = newError(KindValidation, "Type must be signup, login, or forgot")
	ErrInvalidEmail   = newError(KindValidation, "Invalid email address")

	ErrEmailDelivery   = newError(KindUpstream, "Failed to send email")
	ErrAIUnavailable   = newError(KindUpstream, "Failed to generate suggestion")
	ErrAINotConfigured = newError(KindUpstream, "AI service is not configured")
)
