package errors

import "net/http"

// ErrorResponse represents the canonical error envelope returned by the portal API.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Redirect  string `json:"redirect,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// Error codes shared by handlers.
const (
	CodeBadRequest      = "bad_request"
	CodeUnauthorized    = "unauthorized"
	CodeNotFound        = "not_found"
	CodeConflict        = "conflict"
	CodeTooManyRequests = "too_many_requests"
	CodeUpstream        = "upstream_failure"
	CodeInternal        = "internal"
)

// ToStatusCode maps a domain specific error code to an HTTP status for default responses.
func ToStatusCode(code string) int {
	switch code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeConflict:
		return http.StatusConflict
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
