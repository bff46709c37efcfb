package rest

// ErrorResponse is the JSON envelope returned by handlers for 4xx/5xx responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
