package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/practice-sem-2/employee-chat/internal/models"
)

var (
	ErrEmailAlreadyExists = errors.New("user with provided email already exists")
	ErrUserNotFound       = errors.New("user does not exist")
)

const (
	UsersEmailKey = "users_email_key"
)

var publicUserColumns = []string{
	"user_id", "email", "name", "profile_image_url", "status", "last_seen", "created_at",
}

type UsersStorage struct {
	db Scope
}

func NewUsersStorage(db Scope) *UsersStorage {
	return &UsersStorage{
		db: db,
	}
}

// CreateUser inserts user and returns the assigned user_id.
// The email is expected to be normalized by the caller.
func (s *UsersStorage) CreateUser(ctx context.Context, user *models.User) (int64, error) {
	query, args, err := sq.Insert("users").
		Columns("email", "name", "password_hash", "profile_image_url", "status", "last_seen", "created_at").
		Values(user.Email, user.Name, user.PasswordHash, user.ProfileImageURL, user.Status, user.LastSeen, user.CreatedAt).
		Suffix("RETURNING user_id").
		PlaceholderFormat(sq.Dollar).
		ToSql()

	if err != nil {
		return 0, err
	}

	var userId int64
	err = s.db.QueryRowxContext(ctx, query, args...).Scan(&userId)

	if IsUniqueViolation(err) && GetPgxConstraintName(err) == UsersEmailKey {
		return 0, ErrEmailAlreadyExists
	} else if err != nil {
		return 0, err
	}

	return userId, nil
}

func (s *UsersStorage) getUser(ctx context.Context, where sq.Eq) (*models.User, error) {
	query, args, err := sq.Select(append(publicUserColumns, "password_hash")...).
		From("users").
		Where(where).
		PlaceholderFormat(sq.Dollar).
		ToSql()

	if err != nil {
		return nil, err
	}

	user := models.User{}
	err = s.db.GetContext(ctx, &user, query, args...)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	} else if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UsersStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, sq.Eq{"email": email})
}

func (s *UsersStorage) GetUserById(ctx context.Context, userId int64) (*models.User, error) {
	return s.getUser(ctx, sq.Eq{"user_id": userId})
}

// UpdateLastSeen returns ErrUserNotFound when no user has the given id.
func (s *UsersStorage) UpdateLastSeen(ctx context.Context, userId int64, at time.Time) error {
	query, args, err := sq.Update("users").
		Set("last_seen", at).
		Where(sq.Eq{"user_id": userId}).
		PlaceholderFormat(sq.Dollar).
		ToSql()

	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, query, args...)

	if err != nil {
		return err
	}

	count, err := res.RowsAffected()

	if err != nil {
		return err
	}

	if count == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (s *UsersStorage) ListUsersExcept(ctx context.Context, userId int64) ([]models.User, error) {
	query, args, err := sq.Select(publicUserColumns...).
		From("users").
		Where(sq.NotEq{"user_id": userId}).
		OrderBy("name", "user_id").
		PlaceholderFormat(sq.Dollar).
		ToSql()

	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0)
	err = s.db.SelectContext(ctx, &users, query, args...)

	if err != nil {
		return nil, err
	}

	return users, nil
}
