package authcore

import (
	"context"

	"github.com/halcyonbank/authcore/internal/flows"
	"github.com/halcyonbank/authcore/session"
	"github.com/halcyonbank/authcore/store"
)

const (
	// passwordResetRequestMessage mirrors the magic-link request: one
	// body for known and unknown emails alike.
	passwordResetRequestMessage = "If an account exists for that email, a password reset link has been sent."
	passwordResetDoneMessage    = "Password updated. Please sign in again."
)

// RequestPasswordReset emails a single-use reset link. The response is
// identical for known and unknown emails.
func (e *Engine) RequestPasswordReset(ctx context.Context, email string) (*MessageResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	outcome, err := flows.RunPasswordResetRequest(ctx, email, e.resetFlowDeps())
	if err != nil {
		return nil, err
	}
	return &MessageResult{Message: outcome.Message}, nil
}

// CompletePasswordReset redeems a reset token and replaces the
// password. The token burns before the credential changes, and every
// session of the user is revoked afterwards.
func (e *Engine) CompletePasswordReset(ctx context.Context, token, newPassword string) (*MessageResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	outcome, err := flows.RunPasswordResetComplete(ctx, token, newPassword, e.resetFlowDeps())
	if err != nil {
		return nil, err
	}
	return &MessageResult{Message: outcome.Message}, nil
}

func (e *Engine) resetFlowDeps() flows.ResetDeps {
	return flows.ResetDeps{
		SuccessMessage:  passwordResetRequestMessage,
		CompleteMessage: passwordResetDoneMessage,

		FindUserByEmail:    e.lookupByEmail,
		AccountStatusError: accountStatusError,
		IssueLink: func(ctx context.Context, userID string) (string, error) {
			return e.links.Issue(ctx, userID, store.KindPasswordReset, e.config.PasswordReset.TTL)
		},
		SendPasswordReset: e.email.SendPasswordReset,

		ValidatePassword: validatorFields(e.validatePassword),
		ValidationError:  validationError,
		ValidateLink:     e.validateLink(store.KindPasswordReset),
		ConsumeLink:      e.consumeLink,
		HashPassword:     e.hasher.Hash,
		UpdatePassword:   e.users.UpdatePassword,
		RevokeAllSessions: func(ctx context.Context, userID string) (int64, error) {
			return e.rotator.RevokeAll(ctx, userID, session.ReasonLogoutAll)
		},

		MetricInc: e.metricInc,
		EmitAudit: e.emitAudit,
		Warn:      e.warn,

		Metrics: flows.ResetMetrics{
			Request:            int(MetricPasswordResetRequest),
			CompleteSuccess:    int(MetricPasswordResetCompleteSuccess),
			CompleteFailure:    int(MetricPasswordResetCompleteFailure),
			SessionInvalidated: int(MetricSessionInvalidated),
		},
		Events: flows.ResetEvents{
			Request:  auditEventPasswordResetRequest,
			Complete: auditEventPasswordResetComplete,
			Failure:  auditEventPasswordResetFailure,
		},
		Errors: flows.ResetErrors{
			EngineNotReady: ErrEngineNotReady,
			EmailService:   ErrEmailService,
			TokenInvalid:   ErrTokenInvalid,
			UserNotFound:   ErrUserNotFound,
		},
	}
}
