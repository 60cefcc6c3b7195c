// internal/models/session.go
package models

import "time"

// ChatSession is the per-browser-session record kept in Redis: the transcript,
// the merged customer profile and the latest recommendation window, plus
// activity bookkeeping for expiry.
type ChatSession struct {
	ID                    string                `json:"id"`
	ConversationHistory   []ConversationMessage `json:"conversationHistory"`
	CustomerInfo          CustomerProfile       `json:"customerInfo"`
	LatestRecommendations []RecommendedProduct  `json:"latestRecommendations"`

	// LastExtractedCount is the transcript length at the last extraction run,
	// used by the re-extraction trigger predicate.
	LastExtractedCount int `json:"lastExtractedCount"`

	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// IsExpired checks whether the session has passed its expiry.
func (s *ChatSession) IsExpired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// Touch updates the last activity timestamp.
func (s *ChatSession) Touch() {
	s.LastActivity = time.Now()
}
