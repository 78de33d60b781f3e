package dto

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// HealthResponse represents the health check reply
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}
