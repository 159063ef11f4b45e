package authcore

import (
	"context"

	"github.com/halcyonbank/authcore/internal/flows"
	"github.com/halcyonbank/authcore/store"
)

// magicLinkRequestMessage is the one body every magic-link request
// gets, whether or not the email has an account.
const magicLinkRequestMessage = "If an account exists for that email, a sign-in link has been sent."

// RequestMagicLink emails a single-use sign-in link. The response is
// identical for known and unknown emails; only the audit trail records
// which it was.
func (e *Engine) RequestMagicLink(ctx context.Context, email string) (*MessageResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	outcome, err := flows.RunMagicLinkRequest(ctx, email, e.magicLinkFlowDeps())
	if err != nil {
		return nil, err
	}
	return &MessageResult{Message: outcome.Message}, nil
}

// VerifyMagicLink redeems a magic-link token and logs the holder in.
// The token burns before the session is minted, so a replayed link gets
// ErrTokenInvalid. Redemption also marks the email verified.
func (e *Engine) VerifyMagicLink(ctx context.Context, token string) (*AuthResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	outcome, err := flows.RunMagicLinkVerify(ctx, token, e.magicLinkFlowDeps())
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		User:   flowPublicUser(outcome.User),
		Tokens: enginePair(outcome.Tokens),
	}, nil
}

func (e *Engine) magicLinkFlowDeps() flows.MagicLinkDeps {
	return flows.MagicLinkDeps{
		SuccessMessage: magicLinkRequestMessage,

		FindUserByEmail:    e.lookupByEmail,
		AccountStatusError: accountStatusError,
		IssueLink: func(ctx context.Context, userID string) (string, error) {
			return e.links.Issue(ctx, userID, store.KindMagicLink, e.config.MagicLink.TTL)
		},
		SendMagicLink: e.email.SendMagicLink,

		ValidateLink:      e.validateLink(store.KindMagicLink),
		ConsumeLink:       e.consumeLink,
		FindUserByID:      e.lookupByID,
		MarkEmailVerified: e.users.MarkEmailVerified,
		Fingerprint:       fingerprintFromContext,
		IssueTokens:       e.issueTokens,
		StampLastLogin:    e.stampLastLogin,

		MetricInc: e.metricInc,
		EmitAudit: e.emitAudit,
		Warn:      e.warn,

		Metrics: flows.MagicLinkMetrics{
			Request:        int(MetricMagicLinkRequest),
			VerifySuccess:  int(MetricMagicLinkVerifySuccess),
			VerifyFailure:  int(MetricMagicLinkVerifyFailure),
			SessionCreated: int(MetricSessionCreated),
		},
		Events: flows.MagicLinkEvents{
			Request:       auditEventMagicLinkRequest,
			VerifySuccess: auditEventMagicLinkVerifySuccess,
			VerifyFailure: auditEventMagicLinkVerifyFailure,
		},
		Errors: flows.MagicLinkErrors{
			EngineNotReady: ErrEngineNotReady,
			EmailService:   ErrEmailService,
			TokenInvalid:   ErrTokenInvalid,
			UserNotFound:   ErrUserNotFound,
		},
	}
}
