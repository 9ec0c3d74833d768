package models

import "fmt"

// Error codes used internally and in log output.
const (
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeInvalidURL    = "INVALID_URL"
	ErrCodeFetchFailed   = "FETCH_FAILED"
	ErrCodeFetchTimeout  = "FETCH_TIMEOUT"
	ErrCodeBadStatus     = "BAD_STATUS"
	ErrCodePayloadDecode = "PAYLOAD_DECODE_FAILED"
)

// DetectError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type DetectError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *DetectError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DetectError) Unwrap() error {
	return e.Err
}

// NewDetectError creates a new DetectError.
func NewDetectError(code, message string, err error) *DetectError {
	return &DetectError{Code: code, Message: message, Err: err}
}
