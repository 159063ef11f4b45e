package authcore

import (
	"context"
	"errors"
	"strings"
)

// Error is the engine's client-facing failure type. Each predeclared
// value carries a stable machine code and a fixed message, so the same
// failure class always serializes to the same bytes. Two Errors match
// under errors.Is when their codes match.
type Error struct {
	Code    string
	Message string
	Fields  []string
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Fields, ", ")
}

// Is matches by code so field-carrying copies still compare equal to
// their sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// WithFields returns a copy of the error carrying the offending field
// names. The sentinel itself is never mutated.
func (e *Error) WithFields(fields ...string) *Error {
	copied := *e
	copied.Fields = append([]string(nil), fields...)
	return &copied
}

var (
	// ErrEngineNotReady reports a Builder misuse: an Engine method was
	// called on an engine whose construction never completed.
	ErrEngineNotReady = &Error{Code: "ENGINE_NOT_READY", Message: "engine is not initialized"}

	// ErrInvalidCredentials covers unknown email and wrong password
	// identically. The true reason appears only in the audit trail.
	ErrInvalidCredentials = &Error{Code: "AUTH_INVALID_CREDENTIALS", Message: "invalid email or password"}

	// ErrTokenInvalid covers unknown, malformed, consumed, and revoked
	// tokens of every kind.
	ErrTokenInvalid = &Error{Code: "TOKEN_INVALID", Message: "token is invalid"}

	// ErrTokenExpired reports a recognized but expired refresh token.
	ErrTokenExpired = &Error{Code: "TOKEN_EXPIRED", Message: "token has expired"}

	// ErrDeviceMismatch reports a refresh attempt from a device other
	// than the one the session was issued to. Every session of the user
	// has been revoked by the time the caller sees this.
	ErrDeviceMismatch = &Error{Code: "DEVICE_MISMATCH", Message: "device verification failed"}

	// ErrSessionInvalid reports a session operation without a usable
	// session reference.
	ErrSessionInvalid = &Error{Code: "SESSION_INVALID", Message: "session is invalid"}

	// ErrEmailExists reports a signup against an email that already has
	// an account, compared case-insensitively.
	ErrEmailExists = &Error{Code: "EMAIL_EXISTS", Message: "an account with this email already exists"}

	// ErrValidation reports rejected input. Fields names the offending
	// inputs.
	ErrValidation = &Error{Code: "VALIDATION_ERROR", Message: "validation failed"}

	// ErrConsentRequired reports a signup without the mandatory consent
	// acknowledgements.
	ErrConsentRequired = &Error{Code: "CONSENT_REQUIRED", Message: "required consents were not accepted"}

	// ErrEmailService reports a failure to hand a message to the email
	// dispatcher.
	ErrEmailService = &Error{Code: "EMAIL_SERVICE_ERROR", Message: "email could not be sent"}

	// ErrUserNotFound reports an operation against an account that no
	// longer exists. Flows with enumeration-safety requirements never
	// return it; token flows may.
	ErrUserNotFound = &Error{Code: "USER_NOT_FOUND", Message: "user not found"}
)

// ErrorBody is the wire shape of a failure inside FailureResponse.
type ErrorBody struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

// FailureResponse is the uniform envelope hosts serialize for a failed
// flow. Identical inputs to FailureFrom produce identical envelopes,
// which is what keeps failure payloads byte-stable.
type FailureResponse struct {
	Success   bool      `json:"success"`
	Error     ErrorBody `json:"error"`
	RequestID string    `json:"request_id,omitempty"`
}

// FailureFrom builds the failure envelope for err, picking up the
// request ID from ctx. Non-engine errors collapse to a generic internal
// failure so nothing about the cause leaks to the client.
func FailureFrom(ctx context.Context, err error) FailureResponse {
	resp := FailureResponse{
		Error:     ErrorBody{Code: "INTERNAL_ERROR", Message: "internal error"},
		RequestID: requestIDFromContext(ctx),
	}

	var engineErr *Error
	if errors.As(err, &engineErr) {
		resp.Error = ErrorBody{
			Code:    engineErr.Code,
			Message: engineErr.Message,
			Fields:  engineErr.Fields,
		}
	}
	return resp
}
