package models

import "time"

type ContentType int

const (
	ContentTypeText ContentType = 0
)

type MessageStatus int

const (
	MessageUnread MessageStatus = 0
	MessageRead   MessageStatus = 1
)

type Message struct {
	MessageID   int64         `json:"message_id" db:"message_id"`
	ChatID      int64         `json:"chat_id" db:"chat_id"`
	SenderID    int64         `json:"sender_id" db:"sender_id"`
	Content     string        `json:"content" db:"content"`
	ContentType ContentType   `json:"content_type" db:"content_type"`
	SentAt      time.Time     `json:"sent_at" db:"sent_at"`
	Status      MessageStatus `json:"status" db:"status"`
}

type MessageSend struct {
	ChatID      int64       `validate:"required,gt=0"`
	Content     string      `validate:"required"`
	ContentType ContentType `validate:"gte=0"`
}

type MessagesSelect struct {
	ChatID int64 `validate:"required,gt=0"`
	Before *time.Time
	Count  *int
}
