package flows

import (
	"context"
	"time"
)

// ValidateMetrics carries metric IDs used by access validation.
type ValidateMetrics struct {
	ValidateSuccess int
	ValidateFailure int
	ValidateLatency int
}

// ValidateErrors carries host-level sentinel errors used by access
// validation.
type ValidateErrors struct {
	EngineNotReady error
	TokenInvalid   error
}

// ValidateDeps captures access validation dependencies. Validation is
// pure token verification: no storage round trip, no audit event, so it
// stays cheap enough to sit on every request.
type ValidateDeps struct {
	ParseAccess func(token string) (string, error)

	MetricInc     func(int)
	MetricObserve func(id int, d time.Duration)
	Now           func() time.Time

	Metrics ValidateMetrics
	Errors  ValidateErrors
}

// RunValidateAccess verifies an access token and returns the user ID it
// was issued for.
func RunValidateAccess(_ context.Context, token string, deps ValidateDeps) (string, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = noopMetricInc
	}
	if deps.MetricObserve == nil {
		deps.MetricObserve = func(int, time.Duration) {}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.ParseAccess == nil {
		return "", deps.Errors.EngineNotReady
	}

	start := deps.Now()
	userID, err := deps.ParseAccess(token)
	deps.MetricObserve(deps.Metrics.ValidateLatency, deps.Now().Sub(start))

	if err != nil {
		deps.MetricInc(deps.Metrics.ValidateFailure)
		return "", deps.Errors.TokenInvalid
	}

	deps.MetricInc(deps.Metrics.ValidateSuccess)
	return userID, nil
}
