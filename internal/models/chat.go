package models

import (
	"fmt"
	"time"
)

// DefaultSessionID is used when a chat request does not name a session.
const DefaultSessionID = "default"

// Role tags a conversation message as coming from the user or the assistant.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a session's conversation history.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id,omitempty"`
	UseMemory *bool  `json:"use_memory,omitempty"` // nil means true
}

// Validate checks required fields and fills defaults (session "default",
// memory enabled). Returns an error if the question is empty.
func (r *ChatRequest) Validate() error {
	if r.Question == "" {
		return fmt.Errorf("question cannot be empty")
	}
	if r.SessionID == "" {
		r.SessionID = DefaultSessionID
	}
	if r.UseMemory == nil {
		t := true
		r.UseMemory = &t
	}
	return nil
}

// ChatResponse is the body returned by POST /chat.
type ChatResponse struct {
	Answer    string   `json:"answer"`
	Sources   []string `json:"sources"`
	SessionID string   `json:"session_id"`
}

// ClearRequest is the body of POST /chat/clear.
type ClearRequest struct {
	SessionID string `json:"session_id,omitempty"`
}
