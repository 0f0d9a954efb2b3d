package anthropic

import (
	"errors"

	sdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/sells-group/payee-cli/internal/resilience"
)

// ClassifyError maps an API error onto the resilience taxonomy by its HTTP
// status: 401/403 become AuthError, 429 becomes RateLimitError, retryable
// statuses become TransientError. Errors that are already classified, or that
// never reached the API, pass through unchanged.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	if resilience.IsAuthError(err) || resilience.IsRateLimited(err) {
		return err
	}
	var te *resilience.TransientError
	if errors.As(err, &te) {
		return err
	}

	var apierr *sdk.Error
	if errors.As(err, &apierr) {
		return resilience.ClassifyHTTPStatus(err, apierr.StatusCode)
	}
	return err
}
