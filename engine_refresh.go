package authcore

import (
	"context"
	"errors"

	"github.com/halcyonbank/authcore/internal/flows"
	"github.com/halcyonbank/authcore/session"
)

// Refresh rotates a refresh token: the presented token is revoked and a
// new pair is issued to the same device. A fingerprint mismatch revokes
// every session of the user before failing. Under concurrent
// presentation of the same token exactly one caller wins; the rest get
// ErrTokenInvalid.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	outcome, err := flows.RunRefresh(ctx, refreshToken, e.refreshFlowDeps())
	if err != nil {
		return nil, err
	}

	result := &AuthResult{
		User:   PublicUser{ID: outcome.User.ID},
		Tokens: enginePair(outcome.Tokens),
	}
	// best effort: a missing or unreadable directory record degrades the
	// projection to the bare user ID, it never fails the rotation
	user, found, lookupErr := e.lookupByID(ctx, outcome.User.ID)
	switch {
	case lookupErr != nil:
		e.warn("refresh user projection lookup failed", "user_id", outcome.User.ID, "error", lookupErr)
	case found:
		result.User = flowPublicUser(user)
	}
	return result, nil
}

func (e *Engine) refreshFlowDeps() flows.RefreshDeps {
	return flows.RefreshDeps{
		Fingerprint: fingerprintFromContext,
		Rotate:      e.rotateSession,

		MetricInc: e.metricInc,
		EmitAudit: e.emitAudit,

		Metrics: flows.RefreshMetrics{
			RefreshSuccess:     int(MetricRefreshSuccess),
			RefreshFailure:     int(MetricRefreshFailure),
			DeviceMismatch:     int(MetricDeviceMismatchRevokeAll),
			SessionCreated:     int(MetricSessionCreated),
			SessionInvalidated: int(MetricSessionInvalidated),
		},
		Events: flows.RefreshEvents{
			RefreshSuccess: auditEventRefreshSuccess,
			RefreshFailure: auditEventRefreshFailure,
			DeviceMismatch: auditEventDeviceMismatchRevokeAll,
		},
		Errors: flows.RefreshErrors{
			EngineNotReady: ErrEngineNotReady,
			TokenInvalid:   ErrTokenInvalid,
		},
	}
}

// rotateSession adapts the session rotator to the flow's result shape,
// collapsing internal sentinels to the client-facing ones.
func (e *Engine) rotateSession(ctx context.Context, raw, fingerprint string) flows.RotateResult {
	pair, err := e.rotator.Rotate(ctx, raw, fingerprint)
	if err != nil {
		var mismatch *session.DeviceMismatchError
		switch {
		case errors.As(err, &mismatch):
			return flows.RotateResult{
				Failure:         flows.RefreshDeviceMismatch,
				UserID:          mismatch.UserID,
				RevokedSessions: mismatch.Revoked,
				Err:             ErrDeviceMismatch,
			}
		case errors.Is(err, session.ErrTokenInvalid):
			return flows.RotateResult{Failure: flows.RefreshInvalid, Err: ErrTokenInvalid}
		case errors.Is(err, session.ErrTokenExpired):
			return flows.RotateResult{Failure: flows.RefreshExpired, Err: ErrTokenExpired}
		default:
			return flows.RotateResult{Failure: flows.RefreshInternal, Err: err}
		}
	}

	// recover the owner from the access token we just minted; parsing a
	// token this engine signed moments ago cannot fail
	userID, err := e.tokens.ParseAccess(pair.AccessToken)
	if err != nil {
		return flows.RotateResult{Failure: flows.RefreshInternal, Err: err}
	}

	return flows.RotateResult{Tokens: flowPair(pair), UserID: userID}
}
