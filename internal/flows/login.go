package flows

import "context"

// LoginMetrics carries metric IDs used by the login flow.
type LoginMetrics struct {
	LoginSuccess   int
	LoginFailure   int
	SessionCreated int
}

// LoginEvents carries audit event names used by the login flow.
type LoginEvents struct {
	LoginSuccess string
	LoginFailure string
}

// LoginErrors carries host-level sentinel errors used by the login flow.
type LoginErrors struct {
	EngineNotReady     error
	InvalidCredentials error
}

// LoginDeps captures login dependencies.
type LoginDeps struct {
	FindUserByEmail func(ctx context.Context, email string) (UserRecord, bool, error)

	// VerifyPassword reports match only; it never explains a failure.
	VerifyPassword func(password, passwordHash string) bool
	// DummyHash is verified against when the account is unknown or has
	// no password, so every failure burns the same hashing work.
	DummyHash string

	AccountStatusError func(status string) error
	Fingerprint        func(ctx context.Context) string
	IssueTokens        func(ctx context.Context, userID, fingerprint string) (TokenPair, error)
	StampLastLogin     func(ctx context.Context, userID string) error

	MetricInc func(int)
	EmitAudit EmitAuditFunc
	Warn      func(string, ...any)

	Metrics LoginMetrics
	Events  LoginEvents
	Errors  LoginErrors
}

// RunLogin executes the password login flow. Unknown email, wrong
// password, and passwordless account all exit through one return site
// with one sentinel; only the audit metadata records which it was.
func RunLogin(ctx context.Context, email, password string, deps LoginDeps) (*LoginOutcome, error) {
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
	if deps.FindUserByEmail == nil ||
		deps.VerifyPassword == nil ||
		deps.AccountStatusError == nil ||
		deps.IssueTokens == nil {
		return nil, deps.Errors.EngineNotReady
	}

	user, found, err := deps.FindUserByEmail(ctx, email)
	if err != nil {
		deps.MetricInc(deps.Metrics.LoginFailure)
		deps.EmitAudit(ctx, deps.Events.LoginFailure, false, "", err, func() map[string]string {
			return map[string]string{
				"email":  email,
				"reason": "directory_error",
			}
		})
		return nil, err
	}

	verifyHash := deps.DummyHash
	hasPassword := found && user.PasswordHash != ""
	if hasPassword {
		verifyHash = user.PasswordHash
	}
	ok := deps.VerifyPassword(password, verifyHash)

	if !found || !hasPassword || !ok {
		reason := "password_mismatch"
		userID := user.ID
		switch {
		case !found:
			reason = "user_not_found"
			userID = ""
		case !hasPassword:
			reason = "no_password_set"
		}
		deps.MetricInc(deps.Metrics.LoginFailure)
		deps.EmitAudit(ctx, deps.Events.LoginFailure, false, userID, deps.Errors.InvalidCredentials, func() map[string]string {
			return map[string]string{
				"email":  email,
				"reason": reason,
			}
		})
		return nil, deps.Errors.InvalidCredentials
	}

	if statusErr := deps.AccountStatusError(user.Status); statusErr != nil {
		deps.MetricInc(deps.Metrics.LoginFailure)
		deps.EmitAudit(ctx, deps.Events.LoginFailure, false, user.ID, statusErr, func() map[string]string {
			return map[string]string{
				"email":  email,
				"reason": "account_status",
				"status": user.Status,
			}
		})
		return nil, statusErr
	}

	tokens, err := deps.IssueTokens(ctx, user.ID, deps.Fingerprint(ctx))
	if err != nil {
		deps.MetricInc(deps.Metrics.LoginFailure)
		deps.EmitAudit(ctx, deps.Events.LoginFailure, false, user.ID, err, func() map[string]string {
			return map[string]string{
				"email":  email,
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
	deps.MetricInc(deps.Metrics.LoginSuccess)
	deps.EmitAudit(ctx, deps.Events.LoginSuccess, true, user.ID, nil, func() map[string]string {
		return map[string]string{
			"email": email,
		}
	})

	return &LoginOutcome{User: user, Tokens: tokens}, nil
}
