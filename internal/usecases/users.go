package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/practice-sem-2/employee-chat/internal/models"
	storage "github.com/practice-sem-2/employee-chat/internal/storages"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const maxPasswordBytes = 72

type UsersUsecase struct {
	registry storage.Registry
	validate *validator.Validate
	limiter  *LoginLimiter
	logger   logrus.FieldLogger
	now      func() time.Time
	cost     int
}

func NewUsersUsecase(r storage.Registry, v *validator.Validate, l *LoginLimiter, logger logrus.FieldLogger) *UsersUsecase {
	return &UsersUsecase{
		registry: r,
		validate: v,
		limiter:  l,
		logger:   logger,
		now:      time.Now,
		cost:     bcrypt.DefaultCost,
	}
}

// Register creates an account and returns its id.
func (u *UsersUsecase) Register(ctx context.Context, reg models.UserRegister) (int64, error) {
	reg.Email = NormalizeEmail(reg.Email)
	reg.Name = strings.TrimSpace(reg.Name)
	if isBlank(reg.Password) {
		return 0, fmt.Errorf("%w: password is required", ErrValidation)
	}
	if err := validateStruct(u.validate, reg); err != nil {
		return 0, err
	}

	// bcrypt only looks at the first 72 bytes.
	if len(reg.Password) > maxPasswordBytes {
		return 0, fmt.Errorf("%w: password is too long", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), u.cost)
	if err != nil {
		return 0, err
	}

	var userId int64
	err = u.registry.Atomic(ctx, func(r storage.Registry) error {
		now := u.now().UTC()
		userId, err = r.GetUsersStore().CreateUser(ctx, &models.User{
			Email:        reg.Email,
			Name:         reg.Name,
			PasswordHash: string(hash),
			LastSeen:     now,
			CreatedAt:    now,
		})
		return err
	})

	if err != nil {
		return 0, wrapError(err)
	}

	u.logger.WithField("user_id", userId).Info("user registered")
	return userId, nil
}

// Login checks the credentials and opens a session. A wrong password or an
// unknown email returns a nil session and a nil error.
func (u *UsersUsecase) Login(ctx context.Context, login models.UserLogin) (*models.Session, error) {
	login.Email = NormalizeEmail(login.Email)
	if isBlank(login.Password) {
		login.Password = ""
	}
	if err := validateStruct(u.validate, login); err != nil {
		return nil, err
	}

	if !u.limiter.Allow(login.Email) {
		u.logger.WithField("email", login.Email).Warn("login throttled")
		return nil, ErrTooManyAttempts
	}

	var user *models.User
	err := u.registry.Atomic(ctx, func(r storage.Registry) error {
		store := r.GetUsersStore()

		found, err := store.GetUserByEmail(ctx, login.Email)
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil
		} else if err != nil {
			return err
		}

		err = bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(login.Password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil
		} else if err != nil {
			return err
		}

		now := u.now().UTC()
		if err = store.UpdateLastSeen(ctx, found.UserID, now); err != nil {
			return err
		}
		found.LastSeen = now
		user = found
		return nil
	})

	if err != nil {
		return nil, wrapError(err)
	}

	if user == nil {
		u.logger.WithField("email", login.Email).Info("login rejected")
		return nil, nil
	}

	session := models.NewSession(*user)
	u.logger.WithFields(logrus.Fields{
		"user_id":    user.UserID,
		"session_id": session.SessionID,
	}).Info("user logged in")
	return session, nil
}

// UpdateLastSeen refreshes last_seen of the user. Unknown ids yield ErrNotFound.
func (u *UsersUsecase) UpdateLastSeen(ctx context.Context, userId int64) error {
	err := u.registry.Atomic(ctx, func(r storage.Registry) error {
		return r.GetUsersStore().UpdateLastSeen(ctx, userId, u.now().UTC())
	})
	return wrapError(err)
}
