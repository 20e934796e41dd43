package chat

import "time"

// SessionInfo describes a live conversation without exposing its transcript.
type SessionInfo struct {
	ID        string    `json:"id"`
	Model     string    `json:"model"`
	Turns     int       `json:"turns"`
	CreatedAt time.Time `json:"createdAt"`
}
