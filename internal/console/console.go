package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/practice-sem-2/employee-chat/internal/models"
	"github.com/sirupsen/logrus"
)

type UsersService interface {
	Register(ctx context.Context, reg models.UserRegister) (int64, error)
	Login(ctx context.Context, login models.UserLogin) (*models.Session, error)
}

type ChatsService interface {
	ListAvailableUsers(ctx context.Context, session *models.Session) ([]models.User, error)
	GetOrCreateChat(ctx context.Context, session *models.Session, chat models.ChatCreate) (*models.Chat, error)
	ListUserChats(ctx context.Context, session *models.Session) ([]models.ChatSummary, error)
}

type MessagesService interface {
	SendMessage(ctx context.Context, sender *models.Session, message models.MessageSend) (*models.Message, error)
	GetChatMessages(ctx context.Context, user *models.Session, sel models.MessagesSelect) ([]models.Message, error)
	MarkMessagesAsRead(ctx context.Context, reader *models.Session, chatId int64) (int64, error)
}

type Config struct {
	// QueryTimeout bounds every call into the services. Zero disables it.
	QueryTimeout time.Duration
	Color        bool
}

var errExit = errors.New("exit requested")

// Console is the interactive menu loop over a line-oriented input.
type Console struct {
	users    UsersService
	chats    ChatsService
	messages MessagesService
	in       *bufio.Scanner
	out      io.Writer
	cfg      Config
	logger   logrus.FieldLogger
	palette  *palette
	session  *models.Session
}

func NewConsole(in io.Reader, out io.Writer, u UsersService, c ChatsService, m MessagesService, cfg Config, logger logrus.FieldLogger) *Console {
	return &Console{
		users:    u,
		chats:    c,
		messages: m,
		in:       bufio.NewScanner(in),
		out:      out,
		cfg:      cfg,
		logger:   logger,
		palette:  newPalette(cfg.Color),
	}
}

// Run shows the menus until the user exits, the input ends or ctx is done.
func (c *Console) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		c.header()

		var err error
		if c.session == nil {
			err = c.authMenu(ctx)
		} else {
			err = c.mainMenu(ctx)
		}

		if errors.Is(err, errExit) || errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return err
		}
	}
	return nil
}

func (c *Console) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.QueryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.cfg.QueryTimeout)
}

func (c *Console) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *Console) println(args ...interface{}) {
	fmt.Fprintln(c.out, args...)
}

// readLine prints prompt and returns the next input line without surrounding spaces.
func (c *Console) readLine(prompt string) (string, error) {
	c.printf("%s", prompt)
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(c.in.Text()), nil
}

func (c *Console) header() {
	c.println()
	c.println(strings.Repeat("=", 36))
	c.palette.title.Fprintln(c.out, "      EMPLOYEE CHAT SYSTEM")
	c.println(strings.Repeat("=", 36))
	if c.session != nil {
		c.printf("Logged in as: %s (%s)\n", c.session.User.Name, c.session.User.Email)
		c.println(strings.Repeat("=", 36))
	}
	c.println()
}

func (c *Console) section(title string) {
	c.println()
	c.palette.title.Fprintf(c.out, "--- %s ---\n", title)
}

func (c *Console) success(format string, args ...interface{}) {
	c.palette.success.Fprintf(c.out, "\n"+format+"\n", args...)
}

func (c *Console) warn(format string, args ...interface{}) {
	c.palette.failure.Fprintf(c.out, "\n"+format+"\n", args...)
}

// fail reports a service error to the user and logs what the user does not see.
func (c *Console) fail(action string, err error) {
	c.warn("%s: %s", action, describeError(err))
	entry := c.logger.WithError(err).WithField("action", action)
	if c.session != nil {
		entry = entry.WithFields(logrus.Fields{
			"user_id":    c.session.UserID(),
			"session_id": c.session.SessionID,
		})
	}
	entry.Warn("console action failed")
}

func (c *Console) authMenu(ctx context.Context) error {
	c.println("1. Login")
	c.println("2. Register")
	c.println("3. Exit")
	choice, err := c.readLine("\nSelect an option (1-3): ")
	if err != nil {
		return err
	}

	switch choice {
	case "1":
		return c.login(ctx)
	case "2":
		return c.register(ctx)
	case "3":
		c.println("\nGoodbye!")
		return errExit
	default:
		c.warn("Invalid option. Please try again.")
		return nil
	}
}

func (c *Console) mainMenu(ctx context.Context) error {
	c.println("1. Start New Chat")
	c.println("2. View My Chats")
	c.println("3. Send Message")
	c.println("4. View Messages")
	c.println("5. Logout")
	choice, err := c.readLine("\nSelect an option (1-5): ")
	if err != nil {
		return err
	}

	switch choice {
	case "1":
		return c.startChat(ctx)
	case "2":
		return c.viewChats(ctx)
	case "3":
		return c.sendMessage(ctx)
	case "4":
		return c.viewMessages(ctx)
	case "5":
		c.logger.WithField("session_id", c.session.SessionID).Info("user logged out")
		c.session = nil
		c.println("\nYou have been logged out.")
		return nil
	default:
		c.warn("Invalid option. Please try again.")
		return nil
	}
}
