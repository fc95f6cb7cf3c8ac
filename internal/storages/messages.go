package storage

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/practice-sem-2/employee-chat/internal/models"
)

const (
	MessagesChatIdForeignKey   = "messages_chat_id_fkey"
	MessagesSenderIdForeignKey = "messages_sender_id_fkey"
)

var messageColumns = []string{
	"message_id", "chat_id", "sender_id", "content", "content_type", "sent_at", "status",
}

type MessagesStorage struct {
	db Scope
}

func NewMessagesStorage(db Scope) *MessagesStorage {
	return &MessagesStorage{
		db: db,
	}
}

// PutMessage inserts message and fills in the id and the stored sent_at and status.
func (s *MessagesStorage) PutMessage(ctx context.Context, message *models.Message) error {
	query, args, err := sq.Insert("messages").
		Columns("chat_id", "sender_id", "content", "content_type", "sent_at", "status").
		Values(message.ChatID, message.SenderID, message.Content, message.ContentType, message.SentAt, message.Status).
		Suffix("RETURNING message_id, sent_at, status").
		PlaceholderFormat(sq.Dollar).
		ToSql()

	if err != nil {
		return err
	}

	err = s.db.QueryRowxContext(ctx, query, args...).
		Scan(&message.MessageID, &message.SentAt, &message.Status)

	if GetPgxConstraintName(err) == MessagesChatIdForeignKey {
		return ErrChatNotFound
	} else if GetPgxConstraintName(err) == MessagesSenderIdForeignKey {
		return ErrUserNotFound
	} else if err != nil {
		return err
	}

	return nil
}

type SelectOptions struct {
	Limit   uint64
	OrderBy []string
}

func (s *MessagesStorage) SelectMessages(ctx context.Context, selector sq.Sqlizer, options ...SelectOptions) ([]models.Message, error) {
	option := SelectOptions{}
	if len(options) > 0 {
		option = options[0]
	}

	builder := sq.Select(messageColumns...).
		From("messages").
		Where(selector).
		PlaceholderFormat(sq.Dollar)

	if len(option.OrderBy) > 0 {
		builder = builder.OrderBy(option.OrderBy...)
	}

	if option.Limit > 0 {
		builder = builder.Limit(option.Limit)
	}

	query, args, err := builder.ToSql()

	if err != nil {
		return nil, err
	}

	messages := make([]models.Message, 0)
	err = s.db.SelectContext(ctx, &messages, query, args...)

	if err != nil {
		return nil, err
	}

	return messages, nil
}

// GetMessagesBefore returns up to count messages of the chat sent strictly
// before the given time (or all when before is nil), newest first.
func (s *MessagesStorage) GetMessagesBefore(ctx context.Context, chatId int64, before *time.Time, count uint64) ([]models.Message, error) {
	selector := sq.And{
		sq.Eq{"chat_id": chatId},
	}
	if before != nil {
		selector = append(selector, sq.Lt{"sent_at": before.UTC()})
	}
	return s.SelectMessages(ctx, selector, SelectOptions{
		Limit:   count,
		OrderBy: []string{"sent_at DESC", "message_id DESC"},
	})
}

// MarkMessagesRead flags every unread message of the chat not sent by
// readerId as read and returns how many changed.
func (s *MessagesStorage) MarkMessagesRead(ctx context.Context, chatId int64, readerId int64) (int64, error) {
	query, args, err := sq.Update("messages").
		Set("status", models.MessageRead).
		Where(sq.Eq{
			"chat_id": chatId,
			"status":  models.MessageUnread,
		}).
		Where(sq.NotEq{"sender_id": readerId}).
		PlaceholderFormat(sq.Dollar).
		ToSql()

	if err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx, query, args...)

	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}
