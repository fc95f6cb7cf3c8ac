package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/practice-sem-2/employee-chat/internal/models"
)

var (
	ErrChatNotFound    = errors.New("chat with provided chat_id does not exist")
	ErrSameChatMembers = errors.New("chat members must be two different users")
	ErrChatRace        = errors.New("chat could not be created or found")
)

const (
	ChatsPairKey           = "chats_pair_key"
	ChatsPairOrderCheck    = "chats_pair_order_check"
	ChatsUser1IdForeignKey = "chats_user1_id_fkey"
	ChatsUser2IdForeignKey = "chats_user2_id_fkey"
)

// getOrCreateAttempts bounds the insert/select loop when a concurrent
// insert of the same pair is rolled back between our two statements.
const getOrCreateAttempts = 3

var chatColumns = []string{"chat_id", "user1_id", "user2_id", "created_at"}

type ChatsStorage struct {
	db Scope
}

func NewChatsStorage(db Scope) *ChatsStorage {
	return &ChatsStorage{
		db: db,
	}
}

func normalizePair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}

// GetOrCreateChat returns the chat of the unordered pair {userA, userB},
// creating it when absent. The returned flag reports whether it was created.
func (s *ChatsStorage) GetOrCreateChat(ctx context.Context, userA, userB int64, at time.Time) (*models.Chat, bool, error) {
	if userA == userB {
		return nil, false, ErrSameChatMembers
	}
	user1, user2 := normalizePair(userA, userB)

	for i := 0; i < getOrCreateAttempts; i++ {
		chat, err := s.insertChat(ctx, user1, user2, at)
		if err == nil {
			return chat, true, nil
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, false, err
		}

		chat, err = s.getChatByPair(ctx, user1, user2)
		if err == nil {
			return chat, false, nil
		} else if !errors.Is(err, ErrChatNotFound) {
			return nil, false, err
		}
	}

	return nil, false, ErrChatRace
}

// insertChat returns sql.ErrNoRows when the pair already has a chat.
func (s *ChatsStorage) insertChat(ctx context.Context, user1, user2 int64, at time.Time) (*models.Chat, error) {
	query, args, err := sq.Insert("chats").
		Columns("user1_id", "user2_id", "created_at").
		Values(user1, user2, at).
		Suffix("ON CONFLICT ON CONSTRAINT " + ChatsPairKey + " DO NOTHING RETURNING chat_id, user1_id, user2_id, created_at").
		PlaceholderFormat(sq.Dollar).
		ToSql()

	if err != nil {
		return nil, err
	}

	chat := models.Chat{}
	err = s.db.GetContext(ctx, &chat, query, args...)

	switch GetPgxConstraintName(err) {
	case ChatsUser1IdForeignKey, ChatsUser2IdForeignKey:
		return nil, ErrUserNotFound
	case ChatsPairOrderCheck:
		return nil, ErrSameChatMembers
	}

	if err != nil {
		return nil, err
	}
	return &chat, nil
}

func (s *ChatsStorage) getChatByPair(ctx context.Context, user1, user2 int64) (*models.Chat, error) {
	return s.getChat(ctx, sq.Eq{"user1_id": user1, "user2_id": user2})
}

func (s *ChatsStorage) GetChat(ctx context.Context, chatId int64) (*models.Chat, error) {
	return s.getChat(ctx, sq.Eq{"chat_id": chatId})
}

func (s *ChatsStorage) getChat(ctx context.Context, where sq.Eq) (*models.Chat, error) {
	query, args, err := sq.Select(chatColumns...).
		From("chats").
		Where(where).
		PlaceholderFormat(sq.Dollar).
		ToSql()

	if err != nil {
		return nil, err
	}

	chat := models.Chat{}
	err = s.db.GetContext(ctx, &chat, query, args...)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrChatNotFound
	} else if err != nil {
		return nil, err
	} else {
		return &chat, nil
	}
}

func (s *ChatsStorage) UserIsMember(ctx context.Context, chatId int64, userId int64) (bool, error) {
	chat, err := s.GetChat(ctx, chatId)
	if err != nil {
		return false, err
	}

	return chat.HasMember(userId), nil
}

// GetUserChats lists every chat of userId with the other participant and
// the latest message, most recently active first.
func (s *ChatsStorage) GetUserChats(ctx context.Context, userId int64) ([]models.ChatSummary, error) {
	query, args, err := sq.Select(
		"c.chat_id", "c.created_at",
		"u.user_id", "u.email", "u.name", "u.profile_image_url", "u.status", "u.last_seen", "u.created_at",
		"m.sender_id", "m.content", "m.sent_at", "m.status",
	).
		From("chats c").
		Join("users u ON u.user_id = CASE WHEN c.user1_id = ? THEN c.user2_id ELSE c.user1_id END", userId).
		LeftJoin("LATERAL (" +
			"SELECT sender_id, content, sent_at, status FROM messages " +
			"WHERE messages.chat_id = c.chat_id " +
			"ORDER BY sent_at DESC, message_id DESC LIMIT 1" +
			") m ON true").
		Where(sq.Or{
			sq.Eq{"c.user1_id": userId},
			sq.Eq{"c.user2_id": userId},
		}).
		OrderBy("COALESCE(m.sent_at, c.created_at) DESC", "c.chat_id DESC").
		PlaceholderFormat(sq.Dollar).
		ToSql()

	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	chats := make([]models.ChatSummary, 0)
	for rows.Next() {
		var (
			chat     models.ChatSummary
			senderId *int64
			content  *string
			sentAt   *time.Time
			status   *int
		)
		err = rows.Scan(
			&chat.ChatID, &chat.CreatedAt,
			&chat.OtherUser.UserID, &chat.OtherUser.Email, &chat.OtherUser.Name,
			&chat.OtherUser.ProfileImageURL, &chat.OtherUser.Status,
			&chat.OtherUser.LastSeen, &chat.OtherUser.CreatedAt,
			&senderId, &content, &sentAt, &status,
		)
		if err != nil {
			return nil, fmt.Errorf("can't scan chat summary: %w", err)
		}

		if senderId != nil {
			chat.LastMessage = &models.LastMessage{
				SenderID: *senderId,
				Content:  *content,
				SentAt:   *sentAt,
				Status:   models.MessageStatus(*status),
			}
		}
		chats = append(chats, chat)
	}

	return chats, rows.Err()
}
