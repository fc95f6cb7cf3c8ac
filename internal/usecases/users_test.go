package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/practice-sem-2/employee-chat/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

type UsersUsecaseTestSuite struct {
	suite.Suite
	registry *memoryRegistry
	clock    *stepClock
	logs     *test.Hook
	users    *UsersUsecase
}

func TestUsersUsecaseTestSuite(t *testing.T) {
	suite.Run(t, &UsersUsecaseTestSuite{})
}

func newTestUsers(r *memoryRegistry, l *LoginLimiter, clock *stepClock, logger logrus.FieldLogger) *UsersUsecase {
	u := NewUsersUsecase(r, validator.New(), l, logger)
	u.now = clock.Now
	u.cost = bcrypt.MinCost
	return u
}

func (s *UsersUsecaseTestSuite) SetupTest() {
	var logger *logrus.Logger
	logger, s.logs = test.NewNullLogger()
	s.registry = newMemoryRegistry()
	s.clock = newStepClock()
	s.users = newTestUsers(s.registry, nil, s.clock, logger)
}

func (s *UsersUsecaseTestSuite) register(email, name, password string) int64 {
	id, err := s.users.Register(context.Background(), models.UserRegister{
		Email:    email,
		Name:     name,
		Password: password,
	})
	require.NoError(s.T(), err, "should register %s", email)
	return id
}

func (s *UsersUsecaseTestSuite) Test_Register() {
	id := s.register(" Alice@Example.com ", " Alice ", "s3cret")
	assert.Greater(s.T(), id, int64(0))

	user, err := s.registry.GetUserById(context.Background(), id)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "alice@example.com", user.Email, "email should be normalized")
	assert.Equal(s.T(), "Alice", user.Name)
	assert.NotEqual(s.T(), "s3cret", user.PasswordHash, "password must not be stored as is")
	assert.NoError(s.T(), bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret")))

	entry := s.logs.LastEntry()
	require.NotNil(s.T(), entry)
	assert.Equal(s.T(), id, entry.Data["user_id"])
}

func (s *UsersUsecaseTestSuite) Test_Register_CorrectErrorIfEmailExists() {
	s.register("alice@example.com", "Alice", "s3cret")

	_, err := s.users.Register(context.Background(), models.UserRegister{
		Email:    "ALICE@example.com",
		Name:     "Alice Again",
		Password: "other",
	})
	assert.ErrorIs(s.T(), err, ErrConflict)
}

func (s *UsersUsecaseTestSuite) Test_Register_CorrectErrorIfFieldIsBlank() {
	cases := []models.UserRegister{
		{Email: "", Name: "Alice", Password: "s3cret"},
		{Email: "alice@example.com", Name: "   ", Password: "s3cret"},
		{Email: "alice@example.com", Name: "Alice", Password: "   "},
		{Email: "not-an-email", Name: "Alice", Password: "s3cret"},
	}
	for _, c := range cases {
		_, err := s.users.Register(context.Background(), c)
		assert.ErrorIs(s.T(), err, ErrValidation, "input %+v", c)
	}
	assert.Empty(s.T(), s.registry.state.users, "nothing should be stored")
}

func (s *UsersUsecaseTestSuite) Test_Login() {
	id := s.register("alice@example.com", "Alice", "s3cret")

	session, err := s.users.Login(context.Background(), models.UserLogin{
		Email:    "Alice@example.com",
		Password: "s3cret",
	})
	require.NoError(s.T(), err)
	require.NotNil(s.T(), session, "correct credentials should open a session")
	assert.Equal(s.T(), id, session.UserID())
	assert.NotEqual(s.T(), session.SessionID.String(), "")

	stored, err := s.registry.GetUserById(context.Background(), id)
	require.NoError(s.T(), err)
	assert.True(s.T(), stored.LastSeen.Equal(session.User.LastSeen), "last_seen should be refreshed")
	assert.True(s.T(), stored.LastSeen.After(stored.CreatedAt))
}

func (s *UsersUsecaseTestSuite) Test_Login_NoMatch() {
	s.register("alice@example.com", "Alice", "s3cret")

	session, err := s.users.Login(context.Background(), models.UserLogin{
		Email:    "alice@example.com",
		Password: "wrong",
	})
	assert.NoError(s.T(), err, "wrong password is not an error")
	assert.Nil(s.T(), session)

	session, err = s.users.Login(context.Background(), models.UserLogin{
		Email:    "nobody@example.com",
		Password: "s3cret",
	})
	assert.NoError(s.T(), err, "unknown email is not an error")
	assert.Nil(s.T(), session)
}

func (s *UsersUsecaseTestSuite) Test_Login_CorrectErrorIfBlank() {
	_, err := s.users.Login(context.Background(), models.UserLogin{Email: "alice@example.com", Password: " "})
	assert.ErrorIs(s.T(), err, ErrValidation)
}

func (s *UsersUsecaseTestSuite) Test_Login_Throttled() {
	logger, _ := test.NewNullLogger()
	users := newTestUsers(s.registry, NewLoginLimiter(1, 1), s.clock, logger)
	login := models.UserLogin{Email: "alice@example.com", Password: "wrong"}

	session, err := users.Login(context.Background(), login)
	assert.NoError(s.T(), err)
	assert.Nil(s.T(), session)

	_, err = users.Login(context.Background(), login)
	assert.ErrorIs(s.T(), err, ErrTooManyAttempts)
}

func (s *UsersUsecaseTestSuite) Test_UpdateLastSeen() {
	id := s.register("alice@example.com", "Alice", "s3cret")
	before, _ := s.registry.GetUserById(context.Background(), id)

	assert.NoError(s.T(), s.users.UpdateLastSeen(context.Background(), id))
	after, _ := s.registry.GetUserById(context.Background(), id)
	assert.True(s.T(), after.LastSeen.After(before.LastSeen))

	err := s.users.UpdateLastSeen(context.Background(), id+100)
	assert.ErrorIs(s.T(), err, ErrNotFound)
}

func (s *UsersUsecaseTestSuite) Test_StorageFailure() {
	logger, _ := test.NewNullLogger()
	users := NewUsersUsecase(&brokenRegistry{}, validator.New(), nil, logger)
	users.cost = bcrypt.MinCost

	_, err := users.Register(context.Background(), models.UserRegister{
		Email:    "alice@example.com",
		Name:     "Alice",
		Password: "s3cret",
	})
	assert.ErrorIs(s.T(), err, ErrStorage)
	assert.ErrorIs(s.T(), err, errConnectionRefused)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err = users.Login(ctx, models.UserLogin{Email: "alice@example.com", Password: "s3cret"})
	assert.ErrorIs(s.T(), err, ErrStorage)
}
