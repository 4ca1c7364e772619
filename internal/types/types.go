package types

// ChatRequest is the body posted to the chat backend.
type ChatRequest struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

// ChatResponse is the backend answer. Only Reply is consumed; other fields
// the backend sends (status, timestamp, metadata) are ignored.
type ChatResponse struct {
	Reply string `json:"reply"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is served by the web host on /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}
