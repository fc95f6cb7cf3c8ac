package storage

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/practice-sem-2/employee-chat/internal/models"
)

type EmployeesStorage struct {
	db Scope
}

func NewEmployeesStorage(db Scope) *EmployeesStorage {
	return &EmployeesStorage{
		db: db,
	}
}

// RecentHires returns employees who joined on or after since, newest first.
func (s *EmployeesStorage) RecentHires(ctx context.Context, since time.Time) ([]models.Employee, error) {
	query, args, err := sq.Select("id", "full_name", "joining_date").
		From("employees").
		Where(sq.GtOrEq{"joining_date": since}).
		OrderBy("joining_date DESC", "id").
		PlaceholderFormat(sq.Dollar).
		ToSql()

	if err != nil {
		return nil, err
	}

	employees := make([]models.Employee, 0)
	err = s.db.SelectContext(ctx, &employees, query, args...)

	if err != nil {
		return nil, err
	}

	return employees, nil
}

func (s *EmployeesStorage) DatabaseTime(ctx context.Context) (time.Time, error) {
	var now time.Time
	err := s.db.GetContext(ctx, &now, "SELECT now()")
	return now, err
}
