package dto

import "time"

// ErrorResponse cuerpo de error HTTP.
// Details solo se rellena en desarrollo.
type ErrorResponse struct {
	Success   bool           `json:"success"`
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Timestamp time.Time      `json:"timestamp"`
	Details   map[string]any `json:"details,omitempty"`
}

// MessageResponse confirmación simple (ej. DELETE).
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
