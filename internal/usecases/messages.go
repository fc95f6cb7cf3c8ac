package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/practice-sem-2/employee-chat/internal/models"
	storage "github.com/practice-sem-2/employee-chat/internal/storages"
	"github.com/sirupsen/logrus"
)

const (
	DefaultMessagesLimit = 50
	MaxMessagesLimit     = 500
)

type MessagesUsecase struct {
	registry storage.Registry
	validate *validator.Validate
	logger   logrus.FieldLogger
	now      func() time.Time
}

func NewMessagesUsecase(r storage.Registry, v *validator.Validate, logger logrus.FieldLogger) *MessagesUsecase {
	return &MessagesUsecase{
		registry: r,
		validate: v,
		logger:   logger,
		now:      time.Now,
	}
}

// memberChat loads the chat and checks that userId participates in it.
func memberChat(ctx context.Context, store storage.ChatsStore, chatId int64, userId int64) (*models.Chat, error) {
	chat, err := store.GetChat(ctx, chatId)
	if err != nil {
		return nil, err
	}
	if !chat.HasMember(userId) {
		return nil, ErrUserIsNotAChatMember
	}
	return chat, nil
}

func (u *MessagesUsecase) SendMessage(ctx context.Context, sender *models.Session, message models.MessageSend) (*models.Message, error) {
	if sender == nil {
		return nil, ErrAuthenticationRequired
	}
	if isBlank(message.Content) {
		return nil, fmt.Errorf("%w: message can't be empty", ErrValidation)
	}
	if err := validateStruct(u.validate, message); err != nil {
		return nil, err
	}

	var sent *models.Message
	err := u.registry.Atomic(ctx, func(r storage.Registry) error {
		chat, err := memberChat(ctx, r.GetChatsStore(), message.ChatID, sender.UserID())
		if err != nil {
			return err
		}

		msg := &models.Message{
			ChatID:      message.ChatID,
			SenderID:    sender.UserID(),
			Content:     message.Content,
			ContentType: message.ContentType,
			SentAt:      u.now().UTC(),
			Status:      models.MessageUnread,
		}
		if err = r.GetMessagesStore().PutMessage(ctx, msg); err != nil {
			return err
		}
		sent = msg

		return r.GetUpdatesStore().MessageSent(&models.MessageSent{
			UpdateMeta: models.UpdateMeta{
				Timestamp: msg.SentAt,
				Audience:  []int64{chat.User1ID, chat.User2ID},
			},
			MessageID:   msg.MessageID,
			ChatID:      msg.ChatID,
			SenderID:    msg.SenderID,
			Content:     msg.Content,
			ContentType: msg.ContentType,
		})
	})

	if err != nil {
		return nil, wrapError(err)
	}

	u.logger.WithFields(logrus.Fields{
		"user_id":    sender.UserID(),
		"session_id": sender.SessionID,
		"chat_id":    sent.ChatID,
		"message_id": sent.MessageID,
	}).Debug("message sent")
	return sent, nil
}

// GetChatMessages returns messages of the chat newest first. Before is an
// exclusive upper bound on sent_at; Count defaults to DefaultMessagesLimit.
func (u *MessagesUsecase) GetChatMessages(ctx context.Context, user *models.Session, sel models.MessagesSelect) ([]models.Message, error) {
	if user == nil {
		return nil, ErrAuthenticationRequired
	}
	if err := validateStruct(u.validate, sel); err != nil {
		return nil, err
	}

	limit := uint64(DefaultMessagesLimit)
	if sel.Count != nil && *sel.Count > 0 {
		limit = uint64(*sel.Count)
	}
	if limit > MaxMessagesLimit {
		limit = MaxMessagesLimit
	}

	var messages []models.Message
	err := u.registry.Atomic(ctx, func(r storage.Registry) error {
		_, err := memberChat(ctx, r.GetChatsStore(), sel.ChatID, user.UserID())
		if err != nil {
			return err
		}

		messages, err = r.GetMessagesStore().GetMessagesBefore(ctx, sel.ChatID, sel.Before, limit)
		return err
	})

	if err != nil {
		return nil, wrapError(err)
	}
	return messages, nil
}

// MarkMessagesAsRead marks the peer's unread messages in the chat as read and
// returns how many changed.
func (u *MessagesUsecase) MarkMessagesAsRead(ctx context.Context, reader *models.Session, chatId int64) (int64, error) {
	if reader == nil {
		return 0, ErrAuthenticationRequired
	}

	var count int64
	err := u.registry.Atomic(ctx, func(r storage.Registry) error {
		chat, err := memberChat(ctx, r.GetChatsStore(), chatId, reader.UserID())
		if err != nil {
			return err
		}

		count, err = r.GetMessagesStore().MarkMessagesRead(ctx, chatId, reader.UserID())
		if err != nil || count == 0 {
			return err
		}

		return r.GetUpdatesStore().MessagesRead(&models.MessagesRead{
			UpdateMeta: models.UpdateMeta{
				Timestamp: u.now().UTC(),
				Audience:  []int64{chat.Peer(reader.UserID())},
			},
			ChatID: chatId,
			Reader: reader.UserID(),
			Count:  count,
		})
	})

	if err != nil {
		return 0, wrapError(err)
	}
	return count, nil
}
