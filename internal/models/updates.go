package models

import "time"

type UpdateMeta struct {
	Timestamp time.Time
	Audience  []int64
}

type ChatCreated struct {
	UpdateMeta
	ChatID  int64
	Members []int64
}

type MessageSent struct {
	UpdateMeta
	MessageID   int64
	ChatID      int64
	SenderID    int64
	Content     string
	ContentType ContentType
}

type MessagesRead struct {
	UpdateMeta
	ChatID int64
	Reader int64
	Count  int64
}
