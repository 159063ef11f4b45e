package flows

import "context"

// ResetMetrics carries metric IDs used by the password-reset flows.
type ResetMetrics struct {
	Request            int
	CompleteSuccess    int
	CompleteFailure    int
	SessionInvalidated int
}

// ResetEvents carries audit event names used by the password-reset flows.
type ResetEvents struct {
	Request  string
	Complete string
	Failure  string
}

// ResetErrors carries host-level sentinel errors used by the
// password-reset flows.
type ResetErrors struct {
	EngineNotReady error
	EmailService   error
	TokenInvalid   error
	UserNotFound   error
}

// ResetDeps captures password-reset request and complete dependencies.
type ResetDeps struct {
	SuccessMessage  string
	CompleteMessage string

	FindUserByEmail    func(ctx context.Context, email string) (UserRecord, bool, error)
	AccountStatusError func(status string) error
	IssueLink          func(ctx context.Context, userID string) (string, error)
	SendPasswordReset  func(ctx context.Context, email, token string) error

	ValidatePassword func(password string) []string
	ValidationError  func(fields []string) error
	ValidateLink     func(ctx context.Context, raw string) (LinkRecord, error)
	ConsumeLink      func(ctx context.Context, link LinkRecord) error
	HashPassword     func(password string) (string, error)
	UpdatePassword   func(ctx context.Context, userID, passwordHash string) error
	// RevokeAllSessions kills every session of the user after the
	// credential changes; a reset proves the old sessions may be hostile.
	RevokeAllSessions func(ctx context.Context, userID string) (int64, error)

	MetricInc func(int)
	EmitAudit EmitAuditFunc
	Warn      func(string, ...any)

	Metrics ResetMetrics
	Events  ResetEvents
	Errors  ResetErrors
}

// RunPasswordResetRequest executes the enumeration-safe reset request.
// Same shape as the magic-link request: one success value, returned
// from both branches.
func RunPasswordResetRequest(ctx context.Context, email string, deps ResetDeps) (*MessageOutcome, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = noopMetricInc
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = noopEmitAudit
	}
	if deps.FindUserByEmail == nil ||
		deps.AccountStatusError == nil ||
		deps.IssueLink == nil ||
		deps.SendPasswordReset == nil {
		return nil, deps.Errors.EngineNotReady
	}

	success := &MessageOutcome{Message: deps.SuccessMessage}

	user, found, err := deps.FindUserByEmail(ctx, email)
	if err != nil {
		deps.MetricInc(deps.Metrics.Request)
		deps.EmitAudit(ctx, deps.Events.Request, false, "", err, func() map[string]string {
			return map[string]string{
				"email":  email,
				"reason": "directory_error",
			}
		})
		return nil, err
	}

	if !found || deps.AccountStatusError(user.Status) != nil {
		reason := "user_not_found"
		if found {
			reason = "account_status"
		}
		deps.MetricInc(deps.Metrics.Request)
		deps.EmitAudit(ctx, deps.Events.Request, true, "", nil, func() map[string]string {
			return map[string]string{
				"email":            email,
				"enumeration_safe": "true",
				"reason":           reason,
			}
		})
		return success, nil
	}

	raw, err := deps.IssueLink(ctx, user.ID)
	if err != nil {
		deps.MetricInc(deps.Metrics.Request)
		deps.EmitAudit(ctx, deps.Events.Request, false, user.ID, err, func() map[string]string {
			return map[string]string{
				"email":  email,
				"reason": "link_issue_failed",
			}
		})
		return nil, err
	}
	if err := deps.SendPasswordReset(ctx, user.Email, raw); err != nil {
		deps.MetricInc(deps.Metrics.Request)
		deps.EmitAudit(ctx, deps.Events.Request, false, user.ID, deps.Errors.EmailService, func() map[string]string {
			return map[string]string{
				"email":  email,
				"reason": "email_dispatch_failed",
			}
		})
		return nil, deps.Errors.EmailService
	}

	deps.MetricInc(deps.Metrics.Request)
	deps.EmitAudit(ctx, deps.Events.Request, true, user.ID, nil, func() map[string]string {
		return map[string]string{
			"email": email,
		}
	})
	return success, nil
}

// RunPasswordResetComplete redeems a reset token and replaces the
// credential. The token burns before the password changes: a replayed
// link cannot touch the account twice, and the losing side of a
// concurrent redemption never reaches the update.
func RunPasswordResetComplete(ctx context.Context, raw, newPassword string, deps ResetDeps) (*MessageOutcome, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = noopMetricInc
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = noopEmitAudit
	}
	if deps.Warn == nil {
		deps.Warn = noopWarn
	}
	if deps.ValidatePassword == nil ||
		deps.ValidationError == nil ||
		deps.ValidateLink == nil ||
		deps.ConsumeLink == nil ||
		deps.HashPassword == nil ||
		deps.UpdatePassword == nil ||
		deps.RevokeAllSessions == nil {
		return nil, deps.Errors.EngineNotReady
	}

	link, err := deps.ValidateLink(ctx, raw)
	if err != nil {
		deps.MetricInc(deps.Metrics.CompleteFailure)
		deps.EmitAudit(ctx, deps.Events.Failure, false, "", err, func() map[string]string {
			return map[string]string{
				"reason": "token_rejected",
			}
		})
		return nil, err
	}

	// the token is checked first; validation only reads, so a policy
	// rejection below still leaves the link redeemable
	if fields := deps.ValidatePassword(newPassword); len(fields) > 0 {
		err := deps.ValidationError(fields)
		deps.MetricInc(deps.Metrics.CompleteFailure)
		deps.EmitAudit(ctx, deps.Events.Failure, false, link.UserID, err, func() map[string]string {
			return map[string]string{
				"reason": "password_policy",
			}
		})
		return nil, err
	}

	hash, err := deps.HashPassword(newPassword)
	if err != nil {
		deps.MetricInc(deps.Metrics.CompleteFailure)
		deps.EmitAudit(ctx, deps.Events.Failure, false, link.UserID, err, func() map[string]string {
			return map[string]string{
				"reason": "hash_error",
			}
		})
		return nil, err
	}

	if err := deps.ConsumeLink(ctx, link); err != nil {
		deps.MetricInc(deps.Metrics.CompleteFailure)
		deps.EmitAudit(ctx, deps.Events.Failure, false, link.UserID, err, func() map[string]string {
			return map[string]string{
				"reason": "token_consume_lost",
			}
		})
		return nil, err
	}

	if err := deps.UpdatePassword(ctx, link.UserID, hash); err != nil {
		deps.MetricInc(deps.Metrics.CompleteFailure)
		deps.EmitAudit(ctx, deps.Events.Failure, false, link.UserID, err, func() map[string]string {
			return map[string]string{
				"reason": "password_persistence",
			}
		})
		return nil, err
	}

	revoked, err := deps.RevokeAllSessions(ctx, link.UserID)
	if err != nil {
		// the password changed; surface the revocation failure rather
		// than report a clean reset with live sessions left behind
		deps.MetricInc(deps.Metrics.CompleteFailure)
		deps.EmitAudit(ctx, deps.Events.Failure, false, link.UserID, err, func() map[string]string {
			return map[string]string{
				"reason": "session_revocation_failed",
			}
		})
		return nil, err
	}

	deps.MetricInc(deps.Metrics.SessionInvalidated)
	deps.MetricInc(deps.Metrics.CompleteSuccess)
	deps.EmitAudit(ctx, deps.Events.Complete, true, link.UserID, nil, func() map[string]string {
		return map[string]string{
			"revoked_sessions": formatInt64(revoked),
		}
	})

	return &MessageOutcome{Message: deps.CompleteMessage}, nil
}
