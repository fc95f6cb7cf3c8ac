package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/practice-sem-2/employee-chat/internal/models"
	storage "github.com/practice-sem-2/employee-chat/internal/storages"
	"github.com/sirupsen/logrus"
)

type ChatsUsecase struct {
	registry storage.Registry
	validate *validator.Validate
	logger   logrus.FieldLogger
	now      func() time.Time
}

func NewChatsUsecase(r storage.Registry, v *validator.Validate, logger logrus.FieldLogger) *ChatsUsecase {
	return &ChatsUsecase{
		registry: r,
		validate: v,
		logger:   logger,
		now:      time.Now,
	}
}

// ListAvailableUsers returns every user the session owner can start a chat with.
func (u *ChatsUsecase) ListAvailableUsers(ctx context.Context, session *models.Session) ([]models.User, error) {
	if session == nil {
		return nil, ErrAuthenticationRequired
	}

	var users []models.User
	err := u.registry.Atomic(ctx, func(r storage.Registry) (err error) {
		users, err = r.GetUsersStore().ListUsersExcept(ctx, session.UserID())
		return err
	})
	return users, wrapError(err)
}

// GetOrCreateChat returns the chat between the session owner and the peer,
// creating it on first contact.
func (u *ChatsUsecase) GetOrCreateChat(ctx context.Context, session *models.Session, chat models.ChatCreate) (*models.Chat, error) {
	if session == nil {
		return nil, ErrAuthenticationRequired
	}
	if err := validateStruct(u.validate, chat); err != nil {
		return nil, err
	}
	if chat.PeerID == session.UserID() {
		return nil, fmt.Errorf("%w: can't start a chat with yourself", ErrValidation)
	}

	var result *models.Chat
	err := u.registry.Atomic(ctx, func(r storage.Registry) error {
		now := u.now().UTC()
		c, created, err := r.GetChatsStore().GetOrCreateChat(ctx, session.UserID(), chat.PeerID, now)
		if errors.Is(err, storage.ErrUserNotFound) {
			return fmt.Errorf("%w: user %d does not exist", ErrValidation, chat.PeerID)
		} else if err != nil {
			return err
		}
		result = c

		if !created {
			return nil
		}

		members := []int64{c.User1ID, c.User2ID}
		return r.GetUpdatesStore().ChatCreated(&models.ChatCreated{
			UpdateMeta: models.UpdateMeta{
				Timestamp: now,
				Audience:  members,
			},
			ChatID:  c.ChatID,
			Members: members,
		})
	})

	if err != nil {
		return nil, wrapError(err)
	}

	u.logger.WithFields(logrus.Fields{
		"user_id":    session.UserID(),
		"session_id": session.SessionID,
		"chat_id":    result.ChatID,
	}).Debug("chat opened")
	return result, nil
}

// ListUserChats returns the chats of the session owner with a preview of the
// latest message in each.
func (u *ChatsUsecase) ListUserChats(ctx context.Context, session *models.Session) ([]models.ChatSummary, error) {
	if session == nil {
		return nil, ErrAuthenticationRequired
	}

	var chats []models.ChatSummary
	err := u.registry.Atomic(ctx, func(r storage.Registry) (err error) {
		chats, err = r.GetChatsStore().GetUserChats(ctx, session.UserID())
		return err
	})
	return chats, wrapError(err)
}
