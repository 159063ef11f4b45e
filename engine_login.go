package authcore

import (
	"context"

	"github.com/halcyonbank/authcore/internal/flows"
	"github.com/halcyonbank/authcore/password"
)

// Login authenticates an email + password pair and mints a session
// bound to the device fingerprint on ctx. Unknown email, wrong
// password, and passwordless account all fail with
// ErrInvalidCredentials after the same amount of hashing work.
func (e *Engine) Login(ctx context.Context, email, pass string) (*AuthResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	outcome, err := flows.RunLogin(ctx, email, pass, e.loginFlowDeps())
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		User:   flowPublicUser(outcome.User),
		Tokens: enginePair(outcome.Tokens),
	}, nil
}

func (e *Engine) loginFlowDeps() flows.LoginDeps {
	return flows.LoginDeps{
		FindUserByEmail: e.lookupByEmail,

		VerifyPassword: e.hasher.Verify,
		DummyHash:      password.DummyHash,

		AccountStatusError: accountStatusError,
		Fingerprint:        fingerprintFromContext,
		IssueTokens:        e.issueTokens,
		StampLastLogin:     e.stampLastLogin,

		MetricInc: e.metricInc,
		EmitAudit: e.emitAudit,
		Warn:      e.warn,

		Metrics: flows.LoginMetrics{
			LoginSuccess:   int(MetricLoginSuccess),
			LoginFailure:   int(MetricLoginFailure),
			SessionCreated: int(MetricSessionCreated),
		},
		Events: flows.LoginEvents{
			LoginSuccess: auditEventLoginSuccess,
			LoginFailure: auditEventLoginFailure,
		},
		Errors: flows.LoginErrors{
			EngineNotReady:     ErrEngineNotReady,
			InvalidCredentials: ErrInvalidCredentials,
		},
	}
}
