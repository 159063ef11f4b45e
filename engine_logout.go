package authcore

import (
	"context"

	"github.com/halcyonbank/authcore/internal/flows"
	"github.com/halcyonbank/authcore/session"
)

// Logout revokes the session behind refreshToken. It is idempotent: an
// empty, unknown, or already-revoked token still logs out successfully.
func (e *Engine) Logout(ctx context.Context, refreshToken string) (*MessageResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	outcome, err := flows.RunLogout(ctx, refreshToken, e.logoutFlowDeps())
	if err != nil {
		return nil, err
	}
	return &MessageResult{Message: outcome.Message}, nil
}

// LogoutAll revokes every session of the user and reports how many were
// live.
func (e *Engine) LogoutAll(ctx context.Context, userID string) (*LogoutResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	outcome, err := flows.RunLogoutAll(ctx, userID, e.logoutFlowDeps())
	if err != nil {
		return nil, err
	}
	return &LogoutResult{RevokedSessions: outcome.RevokedSessions}, nil
}

func (e *Engine) logoutFlowDeps() flows.LogoutDeps {
	return flows.LogoutDeps{
		RevokeOne: e.rotator.RevokeOne,
		RevokeAll: func(ctx context.Context, userID string) (int64, error) {
			return e.rotator.RevokeAll(ctx, userID, session.ReasonLogoutAll)
		},

		MetricInc: e.metricInc,
		EmitAudit: e.emitAudit,

		Metrics: flows.LogoutMetrics{
			Logout:             int(MetricLogout),
			LogoutAll:          int(MetricLogoutAll),
			SessionInvalidated: int(MetricSessionInvalidated),
		},
		Events: flows.LogoutEvents{
			LogoutSession: auditEventLogoutSession,
			LogoutAll:     auditEventLogoutAll,
		},
		Errors: flows.LogoutErrors{
			EngineNotReady: ErrEngineNotReady,
			SessionInvalid: ErrSessionInvalid,
		},
	}
}
