package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/practice-sem-2/employee-chat/internal/models"
)

type AtomicFunc func(Registry) error

type Registry interface {
	Atomic(ctx context.Context, fn AtomicFunc) error
	GetUsersStore() UsersStore
	GetChatsStore() ChatsStore
	GetMessagesStore() MessagesStore
	GetUpdatesStore() UpdatesStore
}

type UsersStore interface {
	CreateUser(ctx context.Context, user *models.User) (int64, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserById(ctx context.Context, userId int64) (*models.User, error)
	UpdateLastSeen(ctx context.Context, userId int64, at time.Time) error
	ListUsersExcept(ctx context.Context, userId int64) ([]models.User, error)
}

type ChatsStore interface {
	GetOrCreateChat(ctx context.Context, userA, userB int64, at time.Time) (*models.Chat, bool, error)
	GetChat(ctx context.Context, chatId int64) (*models.Chat, error)
	UserIsMember(ctx context.Context, chatId int64, userId int64) (bool, error)
	GetUserChats(ctx context.Context, userId int64) ([]models.ChatSummary, error)
}

type MessagesStore interface {
	PutMessage(ctx context.Context, message *models.Message) error
	GetMessagesBefore(ctx context.Context, chatId int64, before *time.Time, count uint64) ([]models.Message, error)
	MarkMessagesRead(ctx context.Context, chatId int64, readerId int64) (int64, error)
}

type UpdatesStore interface {
	ChatCreated(chat *models.ChatCreated) error
	MessageSent(msg *models.MessageSent) error
	MessagesRead(read *models.MessagesRead) error
}

type DefaultRegistry struct {
	db      *sqlx.DB
	scope   Scope
	updates UpdatesStore
}

type Scope interface {
	sqlx.QueryerContext
	sqlx.ExecerContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// NewRegistry returns a registry over db. A nil updates store disables the change feed.
func NewRegistry(db *sqlx.DB, updates UpdatesStore) *DefaultRegistry {
	if updates == nil {
		updates = NopUpdatesStore{}
	}
	return &DefaultRegistry{
		db:      db,
		scope:   db,
		updates: updates,
	}
}

func (r *DefaultRegistry) Atomic(ctx context.Context, fn AtomicFunc) (err error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("rollback caused by error: \"%v\" failed: %v", err, rbErr)
			}
		} else {
			err = tx.Commit()
		}
	}()

	storage := DefaultRegistry{
		db:      r.db,
		scope:   tx,
		updates: r.updates,
	}
	err = fn(&storage)
	return err
}

func (r *DefaultRegistry) GetUsersStore() UsersStore {
	return NewUsersStorage(r.scope)
}

func (r *DefaultRegistry) GetChatsStore() ChatsStore {
	return NewChatsStorage(r.scope)
}

func (r *DefaultRegistry) GetMessagesStore() MessagesStore {
	return NewMessagesStorage(r.scope)
}

func (r *DefaultRegistry) GetUpdatesStore() UpdatesStore {
	return r.updates
}
