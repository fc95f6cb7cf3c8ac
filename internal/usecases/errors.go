package usecases

import (
	"errors"
	"fmt"

	storage "github.com/practice-sem-2/employee-chat/internal/storages"
)

var (
	ErrValidation             = errors.New("invalid input")
	ErrConflict               = errors.New("conflict")
	ErrNotFound               = errors.New("not found")
	ErrStorage                = errors.New("storage failure")
	ErrTooManyAttempts        = errors.New("too many attempts, try again later")
	ErrPermissionDenied       = errors.New("user is not authorized to this action")
	ErrAuthenticationRequired = fmt.Errorf("%w: Authentication required", ErrPermissionDenied)
	ErrUserIsNotAChatMember   = fmt.Errorf("%w: User is not a chat member", ErrPermissionDenied)
)

var taxonomy = []error{
	ErrValidation,
	ErrConflict,
	ErrNotFound,
	ErrStorage,
	ErrTooManyAttempts,
	ErrPermissionDenied,
}

var errorMapper = []struct {
	from error
	to   error
}{
	{storage.ErrEmailAlreadyExists, ErrConflict},
	{storage.ErrUserNotFound, ErrNotFound},
	{storage.ErrChatNotFound, ErrNotFound},
	{storage.ErrSameChatMembers, ErrValidation},
}

// wrapError maps storage errors onto the usecase error taxonomy.
// Errors that are not recognised are reported as ErrStorage.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	for _, known := range taxonomy {
		if errors.Is(err, known) {
			return err
		}
	}

	for _, mapping := range errorMapper {
		if errors.Is(err, mapping.from) {
			return fmt.Errorf("%w: %w", mapping.to, err)
		}
	}
	return fmt.Errorf("%w: %w", ErrStorage, err)
}
