package httpserver

import (
	"github.com/helixir/figshare-connector/internal/domain"
)

// Request and response types for JSON serialization.

// configureRequest swaps the account token only; the API host comes from
// server configuration.
type configureRequest struct {
	Token string `json:"token" validate:"required"`
}

type subjectsResponse struct {
	Subjects []domain.Subject `json:"subjects"`
}

type operationResponse struct {
	Succeeded bool   `json:"succeeded"`
	Message   string `json:"message"`
	URL       string `json:"url,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func domainResultToResponse(r domain.OperationResult, requestID string) operationResponse {
	return operationResponse{
		Succeeded: r.Succeeded,
		Message:   r.Message,
		URL:       r.URL,
		RequestID: requestID,
	}
}
