package authcore

import (
	"context"
	"errors"
	"time"
)

const (
	auditEventSignupSuccess           = "signup_success"
	auditEventSignupFailure           = "signup_failure"
	auditEventLoginSuccess            = "login_success"
	auditEventLoginFailure            = "login_failure"
	auditEventMagicLinkRequest        = "magic_link_request"
	auditEventMagicLinkVerifySuccess  = "magic_link_verify_success"
	auditEventMagicLinkVerifyFailure  = "magic_link_verify_failure"
	auditEventPasswordResetRequest    = "password_reset_request"
	auditEventPasswordResetComplete   = "password_reset_complete"
	auditEventPasswordResetFailure    = "password_reset_failure"
	auditEventRefreshSuccess          = "refresh_success"
	auditEventRefreshFailure          = "refresh_failure"
	auditEventDeviceMismatchRevokeAll = "device_mismatch_revoke_all"
	auditEventLogoutSession           = "logout_session"
	auditEventLogoutAll               = "logout_all"
)

func auditErrorCode(err error) string {
	if err == nil {
		return ""
	}

	var engineErr *Error
	if errors.As(err, &engineErr) {
		return engineErr.Code
	}
	return "INTERNAL_ERROR"
}

// emitAudit builds and enqueues one audit event. metadataBuilder runs
// only when auditing is enabled, so flows can defer map allocation.
func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		UserID:    userID,
		IP:        clientIPFromContext(ctx),
		UserAgent: userAgentFromContext(ctx),
		RequestID: requestIDFromContext(ctx),
		Success:   success,
		ErrorCode: auditErrorCode(err),
		Metadata:  metadata,
	}

	e.audit.Emit(ctx, event)
}
