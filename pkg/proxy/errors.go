package proxy

import (
	"context"
	"errors"
	"fmt"

	"mercator-hq/interviewer/pkg/providers"
	"mercator-hq/interviewer/pkg/proxy/types"
)

// HandleError converts an error to a JSON error body. Provider details are
// kept out of the message.
func HandleError(err error) *types.ErrorResponse {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.ToErrorResponse()
	}

	var (
		timeoutErr *providers.TimeoutError
		authErr    *providers.AuthError
		rateErr    *providers.RateLimitError
		provErr    *providers.ProviderError
		parseErr   *providers.ParseError
		streamErr  *providers.StreamError
	)
	switch {
	case errors.As(err, &timeoutErr), errors.Is(err, context.DeadlineExceeded):
		return types.NewGatewayTimeoutError("provider request timed out")
	case errors.As(err, &rateErr):
		return types.NewServiceUnavailableError("provider is rate limiting requests")
	case errors.As(err, &authErr):
		return types.NewBadGatewayError("provider rejected the relay credentials")
	case errors.As(err, &provErr):
		return types.NewBadGatewayError(fmt.Sprintf("provider returned status %d", provErr.StatusCode))
	case errors.As(err, &parseErr), errors.As(err, &streamErr):
		return types.NewBadGatewayError("provider stream failed")
	default:
		return types.NewServerError("An internal error occurred. Please try again later.")
	}
}
