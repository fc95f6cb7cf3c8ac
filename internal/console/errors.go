package console

import (
	"context"
	"errors"

	usecase "github.com/practice-sem-2/employee-chat/internal/usecases"
)

var errorMapper = []struct {
	from error
	// text replaces the error message; empty keeps err.Error().
	text string
}{
	{usecase.ErrAuthenticationRequired, "please log in first"},
	{usecase.ErrUserIsNotAChatMember, "you are not part of this chat"},
	{usecase.ErrPermissionDenied, "you are not allowed to do that"},
	{usecase.ErrTooManyAttempts, ""},
	{usecase.ErrConflict, "a user with this email already exists"},
	{usecase.ErrValidation, ""},
	{usecase.ErrNotFound, ""},
	{context.DeadlineExceeded, "the request took too long, try again later"},
}

// describeError turns a usecase error into text that is safe to show.
func describeError(err error) string {
	for _, mapping := range errorMapper {
		if errors.Is(err, mapping.from) {
			if mapping.text == "" {
				return err.Error()
			}
			return mapping.text
		}
	}
	return "something went wrong, try again later"
}
