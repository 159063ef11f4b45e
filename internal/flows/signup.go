package flows

import (
	"context"
	"errors"
	"time"
)

// SignupArgs carries the signup inputs.
type SignupArgs struct {
	Email                string
	Password             string
	AcceptTerms          bool
	AcceptPrivacy        bool
	AcceptDataProcessing bool
}

// SignupOutcome is the successful signup result.
type SignupOutcome struct {
	User                  UserRecord
	VerificationExpiresAt time.Time
}

// SignupMetrics carries metric IDs used by the signup flow.
type SignupMetrics struct {
	SignupSuccess int
	SignupFailure int
}

// SignupEvents carries audit event names used by the signup flow.
type SignupEvents struct {
	SignupSuccess string
	SignupFailure string
}

// SignupErrors carries host-level sentinel errors used by the signup flow.
type SignupErrors struct {
	EngineNotReady  error
	ConsentRequired error
	EmailExists     error
}

// SignupDeps captures signup dependencies.
type SignupDeps struct {
	ValidateEmail    func(email string) []string
	ValidatePassword func(password string) []string
	ValidationError  func(fields []string) error

	FindUserByEmail func(ctx context.Context, email string) (UserRecord, bool, error)
	HashPassword    func(password string) (string, error)
	CreateUser      func(ctx context.Context, email, passwordHash string) (UserRecord, error)
	RecordConsents  func(ctx context.Context, userID string) error

	// IssueVerification mints and emails the verification link. Its
	// failure does not fail the signup; the account already exists.
	IssueVerification func(ctx context.Context, userID, email string) (time.Time, error)

	MetricInc func(int)
	EmitAudit EmitAuditFunc
	Warn      func(string, ...any)

	Metrics SignupMetrics
	Events  SignupEvents
	Errors  SignupErrors
}

// RunSignup executes the signup pipeline: input validation, consent
// gate, uniqueness, credential hashing, account + consent creation,
// verification email.
func RunSignup(ctx context.Context, args SignupArgs, deps SignupDeps) (*SignupOutcome, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = noopMetricInc
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = noopEmitAudit
	}
	if deps.Warn == nil {
		deps.Warn = noopWarn
	}
	if deps.ValidateEmail == nil ||
		deps.ValidatePassword == nil ||
		deps.ValidationError == nil ||
		deps.FindUserByEmail == nil ||
		deps.HashPassword == nil ||
		deps.CreateUser == nil ||
		deps.RecordConsents == nil {
		return nil, deps.Errors.EngineNotReady
	}

	fields := deps.ValidateEmail(args.Email)
	fields = append(fields, deps.ValidatePassword(args.Password)...)
	if len(fields) > 0 {
		err := deps.ValidationError(fields)
		deps.MetricInc(deps.Metrics.SignupFailure)
		deps.EmitAudit(ctx, deps.Events.SignupFailure, false, "", err, func() map[string]string {
			return map[string]string{
				"email":  args.Email,
				"reason": "validation",
			}
		})
		return nil, err
	}

	if !args.AcceptTerms || !args.AcceptPrivacy || !args.AcceptDataProcessing {
		deps.MetricInc(deps.Metrics.SignupFailure)
		deps.EmitAudit(ctx, deps.Events.SignupFailure, false, "", deps.Errors.ConsentRequired, func() map[string]string {
			return map[string]string{
				"email":  args.Email,
				"reason": "consent_missing",
			}
		})
		return nil, deps.Errors.ConsentRequired
	}

	if _, found, err := deps.FindUserByEmail(ctx, args.Email); err != nil {
		deps.MetricInc(deps.Metrics.SignupFailure)
		deps.EmitAudit(ctx, deps.Events.SignupFailure, false, "", err, func() map[string]string {
			return map[string]string{
				"email":  args.Email,
				"reason": "directory_error",
			}
		})
		return nil, err
	} else if found {
		deps.MetricInc(deps.Metrics.SignupFailure)
		deps.EmitAudit(ctx, deps.Events.SignupFailure, false, "", deps.Errors.EmailExists, func() map[string]string {
			return map[string]string{
				"email":  args.Email,
				"reason": "email_exists",
			}
		})
		return nil, deps.Errors.EmailExists
	}

	hash, err := deps.HashPassword(args.Password)
	if err != nil {
		deps.MetricInc(deps.Metrics.SignupFailure)
		deps.EmitAudit(ctx, deps.Events.SignupFailure, false, "", err, func() map[string]string {
			return map[string]string{
				"email":  args.Email,
				"reason": "hash_error",
			}
		})
		return nil, err
	}

	user, err := deps.CreateUser(ctx, args.Email, hash)
	if err != nil {
		// the pre-check above can lose to a concurrent signup; the
		// directory's uniqueness constraint is the real arbiter
		if errors.Is(err, deps.Errors.EmailExists) {
			deps.MetricInc(deps.Metrics.SignupFailure)
			deps.EmitAudit(ctx, deps.Events.SignupFailure, false, "", deps.Errors.EmailExists, func() map[string]string {
				return map[string]string{
					"email":  args.Email,
					"reason": "email_exists_race",
				}
			})
			return nil, deps.Errors.EmailExists
		}
		deps.MetricInc(deps.Metrics.SignupFailure)
		deps.EmitAudit(ctx, deps.Events.SignupFailure, false, "", err, func() map[string]string {
			return map[string]string{
				"email":  args.Email,
				"reason": "account_persistence",
			}
		})
		return nil, err
	}

	if err := deps.RecordConsents(ctx, user.ID); err != nil {
		deps.MetricInc(deps.Metrics.SignupFailure)
		deps.EmitAudit(ctx, deps.Events.SignupFailure, false, user.ID, err, func() map[string]string {
			return map[string]string{
				"reason": "consent_persistence",
			}
		})
		return nil, err
	}

	var verificationExpiresAt time.Time
	if deps.IssueVerification != nil {
		expiresAt, err := deps.IssueVerification(ctx, user.ID, user.Email)
		if err != nil {
			deps.Warn("signup verification email failed", "user_id", user.ID)
		} else {
			verificationExpiresAt = expiresAt
		}
	}

	deps.MetricInc(deps.Metrics.SignupSuccess)
	deps.EmitAudit(ctx, deps.Events.SignupSuccess, true, user.ID, nil, func() map[string]string {
		return map[string]string{
			"email": user.Email,
		}
	})

	return &SignupOutcome{User: user, VerificationExpiresAt: verificationExpiresAt}, nil
}
