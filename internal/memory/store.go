// Package memory keeps per-session conversation history in process memory.
package memory

import (
	"strings"
	"sync"

	"github.com/hyperjump/kotae/internal/models"
)

// Store holds conversation history keyed by session ID. Sessions are created
// on first use and live until cleared; history survives for the lifetime of
// the process only.
type Store struct {
	window int
	budget int

	mu       sync.RWMutex
	sessions map[string]*session
}

type session struct {
	mu       sync.Mutex
	messages []models.Message
}

// NewStore creates a store. window is the number of most recent messages that
// Context renders; budget caps the rendered context length in characters.
// Non-positive values fall back to 5 and 4000.
func NewStore(window, budget int) *Store {
	if window <= 0 {
		window = 5
	}
	if budget <= 0 {
		budget = 4000
	}
	return &Store{
		window:   window,
		budget:   budget,
		sessions: make(map[string]*session),
	}
}

// Append records a message at the end of the session's history, creating the
// session if needed.
func (s *Store) Append(sessionID string, msg models.Message) {
	sess := s.getOrCreate(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.messages = append(sess.messages, msg)
}

// Messages returns a copy of the session's full history, oldest first.
func (s *Store) Messages(sessionID string) []models.Message {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	out := make([]models.Message, len(sess.messages))
	copy(out, sess.messages)
	return out
}

// Context renders the last window messages as "ROLE: content" lines, oldest
// first. The result is capped at the character budget by dropping the oldest
// lines first. Returns "" for an unknown or empty session.
func (s *Store) Context(sessionID string) string {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return ""
	}

	sess.mu.Lock()
	msgs := sess.messages
	if len(msgs) > s.window {
		msgs = msgs[len(msgs)-s.window:]
	}
	lines := make([]string, len(msgs))
	for i, msg := range msgs {
		lines[i] = strings.ToUpper(string(msg.Role)) + ": " + msg.Content
	}
	sess.mu.Unlock()

	// Drop oldest lines until the rendering fits the budget.
	for len(lines) > 0 {
		rendered := strings.Join(lines, "\n")
		if len(rendered) <= s.budget {
			return rendered
		}
		lines = lines[1:]
	}
	return ""
}

// Clear discards the session's history. Clearing an unknown session is a no-op.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// Sessions returns the number of live sessions.
func (s *Store) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Store) getOrCreate(sessionID string) *session {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		return sess
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok = s.sessions[sessionID]; ok {
		return sess
	}
	sess = &session{}
	s.sessions[sessionID] = sess
	return sess
}
