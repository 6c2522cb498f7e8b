package storage

import "context"

//go:generate moq -out session_mock.go . SessionStorage

// Session represents the client session identity in storage.
// The token is the backend JWT obtained via Telegram initData login;
// NodeID is a stable per-device identifier generated on first login.
type Session struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Token     string `json:"token"`
	NodeID    string `json:"node_id"`
	ExpiresAt int64  `json:"expires_at"` // unix seconds
}

// SessionStorage defines interface for storing the session on client.
// Реализация — локальный key-value store, привязанный к текущей
// сессии; создается на старте и уничтожается при logout.
type SessionStorage interface {
	// SaveSession stores session data, overwriting any previous session
	SaveSession(ctx context.Context, session *Session) error

	// GetSession retrieves stored session data
	// Returns ErrSessionNotFound if no session exists
	GetSession(ctx context.Context) (*Session, error)

	// DeleteSession removes stored session data (logout)
	DeleteSession(ctx context.Context) error
}
