package usecases

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/practice-sem-2/employee-chat/internal/models"
	storage "github.com/practice-sem-2/employee-chat/internal/storages"
)

type memoryState struct {
	users    []models.User
	chats    []models.Chat
	messages []models.Message
	updates  []interface{}
	nextId   int64
}

func (s *memoryState) clone() *memoryState {
	return &memoryState{
		users:    append([]models.User(nil), s.users...),
		chats:    append([]models.Chat(nil), s.chats...),
		messages: append([]models.Message(nil), s.messages...),
		updates:  append([]interface{}(nil), s.updates...),
		nextId:   s.nextId,
	}
}

// memoryRegistry keeps every table in memory and rolls back on error.
type memoryRegistry struct {
	mu    sync.Mutex
	state *memoryState
}

func newMemoryRegistry() *memoryRegistry {
	return &memoryRegistry{state: &memoryState{}}
}

func (r *memoryRegistry) Atomic(_ context.Context, fn storage.AtomicFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := r.state.clone()
	if err := fn(r); err != nil {
		r.state = snapshot
		return err
	}
	return nil
}

func (r *memoryRegistry) GetUsersStore() storage.UsersStore       { return r }
func (r *memoryRegistry) GetChatsStore() storage.ChatsStore       { return r }
func (r *memoryRegistry) GetMessagesStore() storage.MessagesStore { return r }
func (r *memoryRegistry) GetUpdatesStore() storage.UpdatesStore   { return r }

func (r *memoryRegistry) id() int64 {
	r.state.nextId++
	return r.state.nextId
}

func (r *memoryRegistry) CreateUser(_ context.Context, user *models.User) (int64, error) {
	for _, u := range r.state.users {
		if u.Email == user.Email {
			return 0, storage.ErrEmailAlreadyExists
		}
	}
	stored := *user
	stored.UserID = r.id()
	r.state.users = append(r.state.users, stored)
	return stored.UserID, nil
}

func (r *memoryRegistry) findUser(match func(models.User) bool) (*models.User, error) {
	for i := range r.state.users {
		if match(r.state.users[i]) {
			u := r.state.users[i]
			return &u, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (r *memoryRegistry) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return r.findUser(func(u models.User) bool { return u.Email == email })
}

func (r *memoryRegistry) GetUserById(_ context.Context, userId int64) (*models.User, error) {
	return r.findUser(func(u models.User) bool { return u.UserID == userId })
}

func (r *memoryRegistry) UpdateLastSeen(_ context.Context, userId int64, at time.Time) error {
	for i := range r.state.users {
		if r.state.users[i].UserID == userId {
			r.state.users[i].LastSeen = at
			return nil
		}
	}
	return storage.ErrUserNotFound
}

func (r *memoryRegistry) ListUsersExcept(_ context.Context, userId int64) ([]models.User, error) {
	users := make([]models.User, 0)
	for _, u := range r.state.users {
		if u.UserID != userId {
			u.PasswordHash = ""
			users = append(users, u)
		}
	}
	return users, nil
}

func (r *memoryRegistry) GetOrCreateChat(ctx context.Context, userA, userB int64, at time.Time) (*models.Chat, bool, error) {
	if userA == userB {
		return nil, false, storage.ErrSameChatMembers
	}
	for _, id := range []int64{userA, userB} {
		if _, err := r.GetUserById(ctx, id); err != nil {
			return nil, false, err
		}
	}
	if userA > userB {
		userA, userB = userB, userA
	}
	for _, c := range r.state.chats {
		if c.User1ID == userA && c.User2ID == userB {
			chat := c
			return &chat, false, nil
		}
	}
	chat := models.Chat{ChatID: r.id(), User1ID: userA, User2ID: userB, CreatedAt: at}
	r.state.chats = append(r.state.chats, chat)
	return &chat, true, nil
}

func (r *memoryRegistry) GetChat(_ context.Context, chatId int64) (*models.Chat, error) {
	for _, c := range r.state.chats {
		if c.ChatID == chatId {
			chat := c
			return &chat, nil
		}
	}
	return nil, storage.ErrChatNotFound
}

func (r *memoryRegistry) UserIsMember(ctx context.Context, chatId int64, userId int64) (bool, error) {
	chat, err := r.GetChat(ctx, chatId)
	if err != nil {
		return false, err
	}
	return chat.HasMember(userId), nil
}

func (r *memoryRegistry) GetUserChats(ctx context.Context, userId int64) ([]models.ChatSummary, error) {
	chats := make([]models.ChatSummary, 0)
	for _, c := range r.state.chats {
		if !c.HasMember(userId) {
			continue
		}
		other, err := r.GetUserById(ctx, c.Peer(userId))
		if err != nil {
			return nil, err
		}
		summary := models.ChatSummary{ChatID: c.ChatID, OtherUser: *other, CreatedAt: c.CreatedAt}
		latest, _ := r.GetMessagesBefore(ctx, c.ChatID, nil, 1)
		if len(latest) > 0 {
			summary.LastMessage = &models.LastMessage{
				SenderID: latest[0].SenderID,
				Content:  latest[0].Content,
				SentAt:   latest[0].SentAt,
				Status:   latest[0].Status,
			}
		}
		chats = append(chats, summary)
	}
	return chats, nil
}

func (r *memoryRegistry) PutMessage(ctx context.Context, message *models.Message) error {
	if _, err := r.GetChat(ctx, message.ChatID); err != nil {
		return err
	}
	message.MessageID = r.id()
	r.state.messages = append(r.state.messages, *message)
	return nil
}

func (r *memoryRegistry) GetMessagesBefore(_ context.Context, chatId int64, before *time.Time, count uint64) ([]models.Message, error) {
	messages := make([]models.Message, 0)
	for _, m := range r.state.messages {
		if m.ChatID != chatId || (before != nil && !m.SentAt.Before(*before)) {
			continue
		}
		messages = append(messages, m)
	}
	sort.Slice(messages, func(i, j int) bool {
		if messages[i].SentAt.Equal(messages[j].SentAt) {
			return messages[i].MessageID > messages[j].MessageID
		}
		return messages[i].SentAt.After(messages[j].SentAt)
	})
	if count > 0 && uint64(len(messages)) > count {
		messages = messages[:count]
	}
	return messages, nil
}

func (r *memoryRegistry) MarkMessagesRead(_ context.Context, chatId int64, readerId int64) (int64, error) {
	var count int64
	for i := range r.state.messages {
		m := &r.state.messages[i]
		if m.ChatID == chatId && m.SenderID != readerId && m.Status == models.MessageUnread {
			m.Status = models.MessageRead
			count++
		}
	}
	return count, nil
}

func (r *memoryRegistry) ChatCreated(chat *models.ChatCreated) error {
	r.state.updates = append(r.state.updates, *chat)
	return nil
}

func (r *memoryRegistry) MessageSent(msg *models.MessageSent) error {
	r.state.updates = append(r.state.updates, *msg)
	return nil
}

func (r *memoryRegistry) MessagesRead(read *models.MessagesRead) error {
	r.state.updates = append(r.state.updates, *read)
	return nil
}

func (r *memoryRegistry) messageCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.state.messages)
}

func (r *memoryRegistry) updates() []interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]interface{}(nil), r.state.updates...)
}

// brokenRegistry fails every transaction the way a lost connection would.
type brokenRegistry struct {
	memoryRegistry
}

var errConnectionRefused = errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")

func (r *brokenRegistry) Atomic(context.Context, storage.AtomicFunc) error {
	return errConnectionRefused
}

// stepClock returns a time one second later on every call.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}
