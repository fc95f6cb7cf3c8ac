package models

import "time"

// Chat is a two-party conversation. User1ID is always the smaller id of the pair.
type Chat struct {
	ChatID    int64     `json:"chat_id" db:"chat_id"`
	User1ID   int64     `json:"user1_id" db:"user1_id"`
	User2ID   int64     `json:"user2_id" db:"user2_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// HasMember reports whether userId is one of the chat participants.
func (c *Chat) HasMember(userId int64) bool {
	return c.User1ID == userId || c.User2ID == userId
}

// Peer returns the participant that is not userId.
func (c *Chat) Peer(userId int64) int64 {
	if c.User1ID == userId {
		return c.User2ID
	}
	return c.User1ID
}

type ChatSummary struct {
	ChatID      int64        `json:"chat_id"`
	OtherUser   User         `json:"other_user"`
	CreatedAt   time.Time    `json:"created_at"`
	LastMessage *LastMessage `json:"last_message,omitempty"`
}

type LastMessage struct {
	SenderID int64         `json:"sender_id"`
	Content  string        `json:"content"`
	SentAt   time.Time     `json:"sent_at"`
	Status   MessageStatus `json:"status"`
}

type ChatCreate struct {
	PeerID int64 `validate:"required,gt=0"`
}
