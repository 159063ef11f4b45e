package flows

import "context"

// MagicLinkMetrics carries metric IDs used by the magic-link flows.
type MagicLinkMetrics struct {
	Request        int
	VerifySuccess  int
	VerifyFailure  int
	SessionCreated int
}

// MagicLinkEvents carries audit event names used by the magic-link flows.
type MagicLinkEvents struct {
	Request       string
	VerifySuccess string
	VerifyFailure string
}

// MagicLinkErrors carries host-level sentinel errors used by the
// magic-link flows.
type MagicLinkErrors struct {
	EngineNotReady error
	EmailService   error
	TokenInvalid   error
	UserNotFound   error
}

// MagicLinkDeps captures magic-link request and verify dependencies.
type MagicLinkDeps struct {
	// SuccessMessage is the one response body every request gets,
	// account or no account.
	SuccessMessage string

	FindUserByEmail    func(ctx context.Context, email string) (UserRecord, bool, error)
	AccountStatusError func(status string) error
	IssueLink          func(ctx context.Context, userID string) (string, error)
	SendMagicLink      func(ctx context.Context, email, token string) error

	ValidateLink      func(ctx context.Context, raw string) (LinkRecord, error)
	ConsumeLink       func(ctx context.Context, link LinkRecord) error
	FindUserByID      func(ctx context.Context, id string) (UserRecord, bool, error)
	MarkEmailVerified func(ctx context.Context, id string) error
	Fingerprint       func(ctx context.Context) string
	IssueTokens       func(ctx context.Context, userID, fingerprint string) (TokenPair, error)
	StampLastLogin    func(ctx context.Context, userID string) error

	MetricInc func(int)
	EmitAudit EmitAuditFunc
	Warn      func(string, ...any)

	Metrics MagicLinkMetrics
	Events  MagicLinkEvents
	Errors  MagicLinkErrors
}

// RunMagicLinkRequest executes the enumeration-safe magic-link request.
// The success value is built once and returned from both the
// account-exists and account-absent branches, so the two responses
// cannot diverge.
func RunMagicLinkRequest(ctx context.Context, email string, deps MagicLinkDeps) (*MessageOutcome, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = noopMetricInc
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = noopEmitAudit
	}
	if deps.FindUserByEmail == nil ||
		deps.AccountStatusError == nil ||
		deps.IssueLink == nil ||
		deps.SendMagicLink == nil {
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
	if err := deps.SendMagicLink(ctx, user.Email, raw); err != nil {
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

// RunMagicLinkVerify redeems a magic-link token and logs the holder in.
// The token is consumed before any side effect it authorizes.
func RunMagicLinkVerify(ctx context.Context, raw string, deps MagicLinkDeps) (*LoginOutcome, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = noopMetricInc
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = noopEmitAudit
	}
	if deps.Warn == nil {
		deps.Warn = noopWarn
	}
	if deps.Fingerprint == nil {
		deps.Fingerprint = func(context.Context) string { return "" }
	}
	if deps.ValidateLink == nil ||
		deps.ConsumeLink == nil ||
		deps.FindUserByID == nil ||
		deps.AccountStatusError == nil ||
		deps.IssueTokens == nil {
		return nil, deps.Errors.EngineNotReady
	}

	if raw == "" {
		deps.MetricInc(deps.Metrics.VerifyFailure)
		deps.EmitAudit(ctx, deps.Events.VerifyFailure, false, "", deps.Errors.TokenInvalid, nil)
		return nil, deps.Errors.TokenInvalid
	}

	link, err := deps.ValidateLink(ctx, raw)
	if err != nil {
		deps.MetricInc(deps.Metrics.VerifyFailure)
		deps.EmitAudit(ctx, deps.Events.VerifyFailure, false, "", err, func() map[string]string {
			return map[string]string{
				"reason": "token_rejected",
			}
		})
		return nil, err
	}

	if err := deps.ConsumeLink(ctx, link); err != nil {
		deps.MetricInc(deps.Metrics.VerifyFailure)
		deps.EmitAudit(ctx, deps.Events.VerifyFailure, false, link.UserID, err, func() map[string]string {
			return map[string]string{
				"reason": "token_consume_lost",
			}
		})
		return nil, err
	}

	user, found, err := deps.FindUserByID(ctx, link.UserID)
	if err != nil {
		deps.MetricInc(deps.Metrics.VerifyFailure)
		deps.EmitAudit(ctx, deps.Events.VerifyFailure, false, link.UserID, err, func() map[string]string {
			return map[string]string{
				"reason": "directory_error",
			}
		})
		return nil, err
	}
	if !found {
		deps.MetricInc(deps.Metrics.VerifyFailure)
		deps.EmitAudit(ctx, deps.Events.VerifyFailure, false, link.UserID, deps.Errors.UserNotFound, func() map[string]string {
			return map[string]string{
				"reason": "user_missing",
			}
		})
		return nil, deps.Errors.UserNotFound
	}
	if statusErr := deps.AccountStatusError(user.Status); statusErr != nil {
		deps.MetricInc(deps.Metrics.VerifyFailure)
		deps.EmitAudit(ctx, deps.Events.VerifyFailure, false, user.ID, statusErr, func() map[string]string {
			return map[string]string{
				"reason": "account_status",
				"status": user.Status,
			}
		})
		return nil, statusErr
	}

	if deps.MarkEmailVerified != nil && !user.EmailVerified {
		if err := deps.MarkEmailVerified(ctx, user.ID); err != nil {
			deps.Warn("email verification stamp failed", "user_id", user.ID)
		} else {
			user.EmailVerified = true
		}
	}

	tokens, err := deps.IssueTokens(ctx, user.ID, deps.Fingerprint(ctx))
	if err != nil {
		deps.MetricInc(deps.Metrics.VerifyFailure)
		deps.EmitAudit(ctx, deps.Events.VerifyFailure, false, user.ID, err, func() map[string]string {
			return map[string]string{
				"reason": "session_issue_failed",
			}
		})
		return nil, err
	}

	if deps.StampLastLogin != nil {
		if err := deps.StampLastLogin(ctx, user.ID); err != nil {
			deps.Warn("last login stamp failed", "user_id", user.ID)
		}
	}

	deps.MetricInc(deps.Metrics.SessionCreated)
	deps.MetricInc(deps.Metrics.VerifySuccess)
	deps.EmitAudit(ctx, deps.Events.VerifySuccess, true, user.ID, nil, nil)

	return &LoginOutcome{User: user, Tokens: tokens}, nil
}
