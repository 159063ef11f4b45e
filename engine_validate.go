package authcore

import (
	"context"

	"github.com/halcyonbank/authcore/internal/flows"
)

// ValidateAccess verifies an access token and returns the user ID it
// was issued for. Every rejection is ErrTokenInvalid. Validation is
// pure signature and claim checking; it never touches storage, so it is
// cheap enough to run on every request.
func (e *Engine) ValidateAccess(ctx context.Context, accessToken string) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}

	return flows.RunValidateAccess(ctx, accessToken, flows.ValidateDeps{
		ParseAccess: e.tokens.ParseAccess,

		MetricInc:     e.metricInc,
		MetricObserve: e.metricObserve,

		Metrics: flows.ValidateMetrics{
			ValidateSuccess: int(MetricValidateSuccess),
			ValidateFailure: int(MetricValidateFailure),
			ValidateLatency: int(MetricValidateLatency),
		},
		Errors: flows.ValidateErrors{
			EngineNotReady: ErrEngineNotReady,
			TokenInvalid:   ErrTokenInvalid,
		},
	})
}
