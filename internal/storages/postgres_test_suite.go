package storage

import (
	"context"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v4/stdlib"

	"github.com/jmoiron/sqlx"
	"github.com/practice-sem-2/employee-chat/internal/models"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type PostgresTestSuite struct {
	suite.Suite
	db *sqlx.DB
	m  *migrate.Migrate
}

func (s *PostgresTestSuite) SetupSuite() {
	var err error
	viper.AutomaticEnv()
	viper.SetDefault("MIGRATIONS_DIR", "file://../../migrations")
	dbDsn := viper.GetString("DB_DSN")
	migrationsDsn := viper.GetString("MIGRATIONS_DSN")
	migrationsDir := viper.GetString("MIGRATIONS_DIR")

	if dbDsn == "" || migrationsDsn == "" {
		s.T().Skip("DB_DSN and MIGRATIONS_DSN must be set to run storage tests")
	}

	s.db, err = sqlx.Connect("pgx", dbDsn)
	require.NoError(s.T(), err, "failed to connect to database")

	s.m, err = migrate.New(migrationsDir, migrationsDsn)

	require.NoError(s.T(), err, "failed to open migrations")

	err = s.m.Up()
	if err != migrate.ErrNoChange {
		require.NoError(s.T(), err, "failed to migrate database")
	}
}

func (s *PostgresTestSuite) TearDownSuite() {
	if s.m != nil {
		_ = s.m.Down()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
}

func (s *PostgresTestSuite) TearDownTest() {
	_, err := s.db.Exec("TRUNCATE messages, chats, users, employees RESTART IDENTITY")
	require.NoError(s.T(), err, "can't teardown test")
}

func (s *PostgresTestSuite) createUser(email, name string) int64 {
	now := time.Now().UTC()
	id, err := NewUsersStorage(s.db).CreateUser(context.Background(), &models.User{
		Email:        email,
		Name:         name,
		PasswordHash: "hash",
		LastSeen:     now,
		CreatedAt:    now,
	})
	require.NoError(s.T(), err, "should create user %s", email)
	return id
}
