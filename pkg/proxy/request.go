package proxy

import (
	"encoding/json"
	"fmt"
	"net/http"

	"mercator-hq/interviewer/pkg/proxy/types"
)

const (
	// MessagesParam is the query parameter carrying the transcript.
	MessagesParam = "messages"

	// RequestIDHeader is the HTTP header for request ID propagation.
	RequestIDHeader = "X-Request-ID"
)

// ParseTranscriptQuery decodes the transcript from the messages query
// parameter. maxTurns caps the transcript length; zero means unlimited.
//
// Clients may only send user and assistant turns. The system turn is owned
// by the relay.
func ParseTranscriptQuery(r *http.Request, maxTurns int) ([]types.Turn, error) {
	query := r.URL.Query()
	if !query.Has(MessagesParam) {
		return nil, &RequestError{
			Message: "query parameter \"messages\" is required",
			Code:    types.CodeMissingField,
			Param:   MessagesParam,
		}
	}

	var turns []types.Turn
	if err := json.Unmarshal([]byte(query.Get(MessagesParam)), &turns); err != nil {
		return nil, &RequestError{
			Message: fmt.Sprintf("invalid JSON: %v", err),
			Code:    types.CodeInvalidJSON,
			Param:   MessagesParam,
		}
	}

	if maxTurns > 0 && len(turns) > maxTurns {
		return nil, &RequestError{
			Message: fmt.Sprintf("transcript has %d turns, maximum is %d", len(turns), maxTurns),
			Code:    types.CodeRequestTooLarge,
			Param:   MessagesParam,
		}
	}

	for i, t := range turns {
		switch t.Role {
		case types.RoleUser, types.RoleAssistant:
		default:
			return nil, &RequestError{
				Message: fmt.Sprintf("role %q is not allowed", t.Role),
				Code:    types.CodeInvalidValue,
				Param:   fmt.Sprintf("messages[%d].role", i),
			}
		}
	}

	return turns, nil
}

// RequestError represents a request parsing or validation error.
type RequestError struct {
	Message string
	Code    string
	Param   string
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return e.Message
}

// ToErrorResponse converts a RequestError to a 400 error body.
func (e *RequestError) ToErrorResponse() *types.ErrorResponse {
	return types.NewInvalidRequestError(e.Message, e.Param, e.Code)
}
