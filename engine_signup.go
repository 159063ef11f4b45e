package authcore

import (
	"context"
	"errors"
	"time"

	"github.com/halcyonbank/authcore/internal/flows"
	"github.com/halcyonbank/authcore/store"
)

// Signup registers a new account. The email must be unused, the
// password must pass policy, and all three consents must be accepted.
// A verification link is emailed on success; its failure does not fail
// the signup.
func (e *Engine) Signup(ctx context.Context, req SignupRequest) (*SignupResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	outcome, err := flows.RunSignup(ctx, flows.SignupArgs{
		Email:                req.Email,
		Password:             req.Password,
		AcceptTerms:          req.AcceptTerms,
		AcceptPrivacy:        req.AcceptPrivacy,
		AcceptDataProcessing: req.AcceptDataProcessing,
	}, e.signupFlowDeps())
	if err != nil {
		return nil, err
	}

	return &SignupResult{
		User:                  flowPublicUser(outcome.User),
		VerificationExpiresAt: outcome.VerificationExpiresAt,
	}, nil
}

func (e *Engine) signupFlowDeps() flows.SignupDeps {
	return flows.SignupDeps{
		ValidateEmail:    validatorFields(e.validateEmail),
		ValidatePassword: validatorFields(e.validatePassword),
		ValidationError:  validationError,

		FindUserByEmail: e.lookupByEmail,
		HashPassword:    e.hasher.Hash,
		CreateUser: func(ctx context.Context, email, passwordHash string) (flows.UserRecord, error) {
			user, err := e.users.CreateUser(ctx, email, passwordHash)
			if err != nil {
				if errors.Is(err, store.ErrEmailTaken) {
					return flows.UserRecord{}, ErrEmailExists
				}
				return flows.UserRecord{}, err
			}
			return flowUser(user), nil
		},
		RecordConsents: e.recordSignupConsents,

		IssueVerification: func(ctx context.Context, userID, email string) (time.Time, error) {
			raw, err := e.links.Issue(ctx, userID, store.KindMagicLink, e.config.MagicLink.TTL)
			if err != nil {
				return time.Time{}, err
			}
			if err := e.email.SendMagicLink(ctx, email, raw); err != nil {
				return time.Time{}, err
			}
			return time.Now().Add(e.config.MagicLink.TTL), nil
		},

		MetricInc: e.metricInc,
		EmitAudit: e.emitAudit,
		Warn:      e.warn,

		Metrics: flows.SignupMetrics{
			SignupSuccess: int(MetricSignupSuccess),
			SignupFailure: int(MetricSignupFailure),
		},
		Events: flows.SignupEvents{
			SignupSuccess: auditEventSignupSuccess,
			SignupFailure: auditEventSignupFailure,
		},
		Errors: flows.SignupErrors{
			EngineNotReady:  ErrEngineNotReady,
			ConsentRequired: ErrConsentRequired,
			EmailExists:     ErrEmailExists,
		},
	}
}

func (e *Engine) recordSignupConsents(ctx context.Context, userID string) error {
	ip := clientIPFromContext(ctx)
	userAgent := userAgentFromContext(ctx)

	consents := []struct {
		kind    string
		version string
	}{
		{ConsentTerms, e.config.Consent.TermsVersion},
		{ConsentPrivacy, e.config.Consent.PrivacyVersion},
		{ConsentDataProcessing, e.config.Consent.DataProcessingVersion},
	}
	for _, c := range consents {
		if err := e.consents.CreateConsent(ctx, userID, c.kind, c.version, ip, userAgent); err != nil {
			return err
		}
	}
	return nil
}
