package middleware

// ErrorResponse is the shape returned when a request fails inside the
// middleware chain, before a handler produced a response.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	TraceID string `json:"trace_id,omitempty"`
}
