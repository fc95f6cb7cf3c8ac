package models

import (
	"time"

	"github.com/google/uuid"
)

// Session identifies an authenticated user for the lifetime of a login.
type Session struct {
	SessionID uuid.UUID
	User      User
	StartedAt time.Time
}

func NewSession(user User) *Session {
	return &Session{
		SessionID: uuid.New(),
		User:      user,
		StartedAt: time.Now().UTC(),
	}
}

func (s *Session) UserID() int64 {
	return s.User.UserID
}
