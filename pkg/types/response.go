package types

// SuccessEnvelope wraps every 2xx body as {"data": ...}.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// ErrorEnvelope wraps every error body as {"error": {...}}.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// APIError is the client-facing error. Retryable tells the storefront whether
// resubmitting the same cart or order can succeed; RequestID matches the
// X-Request-Id response header.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	Retryable bool   `json:"retryable"`
	RequestID string `json:"request_id,omitempty"`
}

// NewErrorEnvelope builds an envelope without details.
func NewErrorEnvelope(code, message string, retryable bool) ErrorEnvelope {
	return ErrorEnvelope{Error: APIError{Code: code, Message: message, Retryable: retryable}}
}
