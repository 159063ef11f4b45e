package flows

import "context"

// LogoutOutcome reports a revocation operation.
type LogoutOutcome struct {
	RevokedSessions int64
}

// LogoutMetrics carries metric IDs used by the logout flows.
type LogoutMetrics struct {
	Logout             int
	LogoutAll          int
	SessionInvalidated int
}

// LogoutEvents carries audit event names used by the logout flows.
type LogoutEvents struct {
	LogoutSession string
	LogoutAll     string
}

// LogoutErrors carries host-level sentinel errors used by the logout flows.
type LogoutErrors struct {
	EngineNotReady error
	SessionInvalid error
}

// LogoutDeps captures logout dependencies.
type LogoutDeps struct {
	RevokeOne func(ctx context.Context, raw string) error
	RevokeAll func(ctx context.Context, userID string) (int64, error)

	MetricInc func(int)
	EmitAudit EmitAuditFunc

	Metrics LogoutMetrics
	Events  LogoutEvents
	Errors  LogoutErrors
}

// RunLogout revokes one session. Logout is idempotent: an empty,
// unknown, or already-revoked token still logs out successfully.
func RunLogout(ctx context.Context, raw string, deps LogoutDeps) (*MessageOutcome, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = noopMetricInc
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = noopEmitAudit
	}
	if deps.RevokeOne == nil {
		return nil, deps.Errors.EngineNotReady
	}

	if raw != "" {
		if err := deps.RevokeOne(ctx, raw); err != nil {
			deps.EmitAudit(ctx, deps.Events.LogoutSession, false, "", err, nil)
			return nil, err
		}
		deps.MetricInc(deps.Metrics.SessionInvalidated)
	}

	deps.MetricInc(deps.Metrics.Logout)
	deps.EmitAudit(ctx, deps.Events.LogoutSession, true, "", nil, nil)
	return &MessageOutcome{Message: "logged out"}, nil
}

// RunLogoutAll revokes every session of the user.
func RunLogoutAll(ctx context.Context, userID string, deps LogoutDeps) (*LogoutOutcome, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = noopMetricInc
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = noopEmitAudit
	}
	if deps.RevokeAll == nil {
		return nil, deps.Errors.EngineNotReady
	}

	if userID == "" {
		deps.EmitAudit(ctx, deps.Events.LogoutAll, false, "", deps.Errors.SessionInvalid, nil)
		return nil, deps.Errors.SessionInvalid
	}

	revoked, err := deps.RevokeAll(ctx, userID)
	if err != nil {
		deps.EmitAudit(ctx, deps.Events.LogoutAll, false, userID, err, nil)
		return nil, err
	}

	deps.MetricInc(deps.Metrics.LogoutAll)
	deps.EmitAudit(ctx, deps.Events.LogoutAll, true, userID, nil, func() map[string]string {
		return map[string]string{
			"revoked_sessions": formatInt64(revoked),
		}
	})
	return &LogoutOutcome{RevokedSessions: revoked}, nil
}
