package main

// GenerateRequest is the body of POST /generate.
type GenerateRequest struct {
	Details map[string]any `json:"details"`
}

// GenerateResponse carries the generated announcement.
type GenerateResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is returned for every non-2xx answer.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
