package server

import "strings"

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Envelope is the uniform result contract every endpoint responds with.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// NewEnvelope builds the three-key response structure. Status is always
// lower-cased on the wire.
func NewEnvelope(message, status string, data any) Envelope {
	return Envelope{
		Status:  strings.ToLower(status),
		Message: message,
		Data:    data,
	}
}
