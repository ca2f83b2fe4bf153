package utils

import "time"

// Error codes carried in ErrorResponse.Error.Code.
const (
	CodeBadRequest           = "BAD_REQUEST"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeNotFound             = "NOT_FOUND"
	CodeValidationBlocked    = "VALIDATION_BLOCKED"
	CodeValidationInProgress = "VALIDATION_IN_PROGRESS"
	CodeComplianceBlocked    = "COMPLIANCE_BLOCKED"
	CodeSubmissionFailed     = "SUBMISSION_FAILED"
	CodeInternal             = "INTERNAL_ERROR"
)

type SuccessResponse struct {
	Success bool  `json:"success"`
	Data    any   `json:"data"`
	Meta    *Meta `json:"meta,omitempty"`
}

type ErrorResponse struct {
	Success bool     `json:"success"`
	Error   APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type Meta struct {
	Timestamp time.Time `json:"timestamp"`
}

func CreateErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Success: false,
		Error: APIError{
			Code:    code,
			Message: message,
		},
	}
}

// CreateErrorResponseWithDetails attaches a machine-readable payload, such as
// the notification shown to the user, to the error.
func CreateErrorResponseWithDetails(code, message string, details any) ErrorResponse {
	resp := CreateErrorResponse(code, message)
	resp.Error.Details = details
	return resp
}

func CreateSuccessResponse(data any) SuccessResponse {
	return SuccessResponse{
		Success: true,
		Data:    data,
		Meta: &Meta{
			Timestamp: time.Now(),
		},
	}
}
