package types

import "net/http"

// ErrorResponse is the JSON body returned for requests the relay rejects
// before any event stream is opened.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a rejected request.
type ErrorDetail struct {
	Message string `json:"message"`

	// Type is one of the ErrorType constants and selects the HTTP status.
	Type string `json:"type"`

	// Param names the offending query parameter, if any.
	Param string `json:"param,omitempty"`

	// Code is a machine-readable reason.
	Code string `json:"code,omitempty"`
}

// Error types.
const (
	ErrorTypeInvalidRequest     = "invalid_request_error"
	ErrorTypeMethodNotAllowed   = "method_not_allowed"
	ErrorTypeServerError        = "server_error"
	ErrorTypeBadGateway         = "bad_gateway"
	ErrorTypeServiceUnavailable = "service_unavailable"
	ErrorTypeGatewayTimeout     = "gateway_timeout"
)

// Error codes.
const (
	// CodeMissingField means the messages parameter is absent or empty.
	CodeMissingField = "missing_field"

	// CodeInvalidValue means a turn has an unknown or system role.
	CodeInvalidValue = "invalid_value"

	// CodeInvalidJSON means the messages parameter is not a JSON array of
	// turns.
	CodeInvalidJSON = "invalid_json"

	// CodeRequestTooLarge means the transcript has more turns than max_turns allows.
	CodeRequestTooLarge = "request_too_large"

	CodeProviderError       = "provider_error"
	CodeProviderTimeout     = "provider_timeout"
	CodeProviderUnavailable = "provider_unavailable"
	CodeInternalError       = "internal_error"
)

var statusByType = map[string]int{
	ErrorTypeInvalidRequest:     http.StatusBadRequest,
	ErrorTypeMethodNotAllowed:   http.StatusMethodNotAllowed,
	ErrorTypeBadGateway:         http.StatusBadGateway,
	ErrorTypeServiceUnavailable: http.StatusServiceUnavailable,
	ErrorTypeGatewayTimeout:     http.StatusGatewayTimeout,
}

func newError(message, errorType, param, code string) *ErrorResponse {
	return &ErrorResponse{Error: ErrorDetail{Message: message, Type: errorType, Param: param, Code: code}}
}

// NewInvalidRequestError rejects a malformed transcript (400).
func NewInvalidRequestError(message, param, code string) *ErrorResponse {
	return newError(message, ErrorTypeInvalidRequest, param, code)
}

// NewMethodNotAllowedError rejects anything but GET (405).
func NewMethodNotAllowedError(method string) *ErrorResponse {
	return newError("method "+method+" is not allowed", ErrorTypeMethodNotAllowed, "", "")
}

// NewServerError reports an internal failure (500).
func NewServerError(message string) *ErrorResponse {
	return newError(message, ErrorTypeServerError, "", CodeInternalError)
}

// NewBadGatewayError reports a provider failure (502).
func NewBadGatewayError(message string) *ErrorResponse {
	return newError(message, ErrorTypeBadGateway, "", CodeProviderError)
}

// NewServiceUnavailableError reports a throttled or unhealthy provider (503).
func NewServiceUnavailableError(message string) *ErrorResponse {
	return newError(message, ErrorTypeServiceUnavailable, "", CodeProviderUnavailable)
}

// NewGatewayTimeoutError reports a provider timeout (504).
func NewGatewayTimeoutError(message string) *ErrorResponse {
	return newError(message, ErrorTypeGatewayTimeout, "", CodeProviderTimeout)
}

// HTTPStatusCode returns the status for the error type. Unknown types map
// to 500.
func (e *ErrorDetail) HTTPStatusCode() int {
	if status, ok := statusByType[e.Type]; ok {
		return status
	}
	return http.StatusInternalServerError
}
