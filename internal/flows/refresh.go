package flows

import "context"

// RefreshFailure classifies why a rotation was refused.
type RefreshFailure int

const (
	RefreshOK RefreshFailure = iota
	RefreshInvalid
	RefreshExpired
	RefreshDeviceMismatch
	RefreshInternal
)

// RotateResult is what the engine's rotation adapter reports back.
type RotateResult struct {
	Tokens          TokenPair
	UserID          string
	Failure         RefreshFailure
	RevokedSessions int64
	Err             error
}

// RefreshMetrics carries metric IDs used by the refresh flow.
type RefreshMetrics struct {
	RefreshSuccess     int
	RefreshFailure     int
	DeviceMismatch     int
	SessionCreated     int
	SessionInvalidated int
}

// RefreshEvents carries audit event names used by the refresh flow.
type RefreshEvents struct {
	RefreshSuccess string
	RefreshFailure string
	DeviceMismatch string
}

// RefreshErrors carries host-level sentinel errors used by the refresh flow.
type RefreshErrors struct {
	EngineNotReady error
	TokenInvalid   error
}

// RefreshDeps captures refresh dependencies.
type RefreshDeps struct {
	Fingerprint func(ctx context.Context) string
	Rotate      func(ctx context.Context, raw, fingerprint string) RotateResult

	MetricInc func(int)
	EmitAudit EmitAuditFunc

	Metrics RefreshMetrics
	Events  RefreshEvents
	Errors  RefreshErrors
}

// RunRefresh rotates a refresh token. A device mismatch gets its own
// audit event carrying the blast radius; every other refusal is a plain
// refresh failure.
func RunRefresh(ctx context.Context, raw string, deps RefreshDeps) (*LoginOutcome, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = noopMetricInc
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = noopEmitAudit
	}
	if deps.Fingerprint == nil {
		deps.Fingerprint = func(context.Context) string { return "" }
	}
	if deps.Rotate == nil {
		return nil, deps.Errors.EngineNotReady
	}

	if raw == "" {
		deps.MetricInc(deps.Metrics.RefreshFailure)
		deps.EmitAudit(ctx, deps.Events.RefreshFailure, false, "", deps.Errors.TokenInvalid, nil)
		return nil, deps.Errors.TokenInvalid
	}

	res := deps.Rotate(ctx, raw, deps.Fingerprint(ctx))
	switch res.Failure {
	case RefreshOK:
		deps.MetricInc(deps.Metrics.SessionInvalidated)
		deps.MetricInc(deps.Metrics.SessionCreated)
		deps.MetricInc(deps.Metrics.RefreshSuccess)
		deps.EmitAudit(ctx, deps.Events.RefreshSuccess, true, res.UserID, nil, nil)
		return &LoginOutcome{User: UserRecord{ID: res.UserID}, Tokens: res.Tokens}, nil

	case RefreshDeviceMismatch:
		deps.MetricInc(deps.Metrics.DeviceMismatch)
		deps.MetricInc(deps.Metrics.RefreshFailure)
		deps.EmitAudit(ctx, deps.Events.DeviceMismatch, false, res.UserID, res.Err, func() map[string]string {
			return map[string]string{
				"revoked_sessions": formatInt64(res.RevokedSessions),
			}
		})
		return nil, res.Err

	case RefreshInvalid, RefreshExpired:
		deps.MetricInc(deps.Metrics.RefreshFailure)
		deps.EmitAudit(ctx, deps.Events.RefreshFailure, false, res.UserID, res.Err, nil)
		return nil, res.Err

	default:
		deps.MetricInc(deps.Metrics.RefreshFailure)
		deps.EmitAudit(ctx, deps.Events.RefreshFailure, false, res.UserID, res.Err, func() map[string]string {
			return map[string]string{
				"reason": "internal",
			}
		})
		return nil, res.Err
	}
}
