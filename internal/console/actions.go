package console

import (
	"context"
	"strconv"
	"strings"

	"github.com/practice-sem-2/employee-chat/internal/models"
)

func (c *Console) login(ctx context.Context) error {
	c.section("USER LOGIN")
	email, err := c.readLine("Email: ")
	if err != nil {
		return err
	}
	password, err := c.readLine("Password: ")
	if err != nil {
		return err
	}

	if email == "" || password == "" {
		c.warn("Both email and password are required!")
		return nil
	}

	return c.openSession(ctx, email, password)
}

func (c *Console) openSession(ctx context.Context, email, password string) error {
	qctx, cancel := c.withTimeout(ctx)
	defer cancel()

	session, err := c.users.Login(qctx, models.UserLogin{Email: email, Password: password})
	if err != nil {
		c.fail("Login failed", err)
		return nil
	}
	if session == nil {
		c.warn("Invalid email or password!")
		return nil
	}

	c.session = session
	c.success("Login successful!")
	return nil
}

func (c *Console) register(ctx context.Context) error {
	c.section("USER REGISTRATION")
	email, err := c.readLine("Email: ")
	if err != nil {
		return err
	}
	name, err := c.readLine("Name: ")
	if err != nil {
		return err
	}
	password, err := c.readLine("Password: ")
	if err != nil {
		return err
	}

	if email == "" || name == "" || password == "" {
		c.warn("All fields are required!")
		return nil
	}

	qctx, cancel := c.withTimeout(ctx)
	defer cancel()

	_, err = c.users.Register(qctx, models.UserRegister{Email: email, Name: name, Password: password})
	if err != nil {
		c.fail("Registration failed", err)
		return nil
	}
	c.success("Registration successful!")

	return c.openSession(ctx, email, password)
}

// readId reads a positive integer, warning with invalid when the input is not one.
func (c *Console) readId(prompt, invalid string) (int64, bool, error) {
	line, err := c.readLine(prompt)
	if err != nil {
		return 0, false, err
	}
	id, err := strconv.ParseInt(line, 10, 64)
	if err != nil || id <= 0 {
		c.warn("%s", invalid)
		return 0, false, nil
	}
	return id, true, nil
}

func (c *Console) startChat(ctx context.Context) error {
	c.section("START NEW CHAT")

	qctx, cancel := c.withTimeout(ctx)
	users, err := c.chats.ListAvailableUsers(qctx, c.session)
	cancel()
	if err != nil {
		c.fail("Error loading users", err)
		return nil
	}
	if len(users) == 0 {
		c.println("\nNo other users available to chat with.")
		return nil
	}

	c.println("\nAvailable users to chat with:")
	for _, u := range users {
		c.printf("ID: %d - %s (%s)\n", u.UserID, u.Name, u.Email)
	}

	peerId, ok, err := c.readId("\nEnter the ID of the user you want to chat with: ", "Invalid user ID!")
	if err != nil || !ok {
		return err
	}

	qctx, cancel = c.withTimeout(ctx)
	defer cancel()
	chat, err := c.chats.GetOrCreateChat(qctx, c.session, models.ChatCreate{PeerID: peerId})
	if err != nil {
		c.fail("Error creating chat", err)
		return nil
	}
	c.success("Chat ready! Chat ID: %d", chat.ChatID)
	return nil
}

func (c *Console) loadChats(ctx context.Context) ([]models.ChatSummary, bool) {
	qctx, cancel := c.withTimeout(ctx)
	defer cancel()

	chats, err := c.chats.ListUserChats(qctx, c.session)
	if err != nil {
		c.fail("Error retrieving chats", err)
		return nil, false
	}
	return chats, true
}

func (c *Console) viewChats(ctx context.Context) error {
	c.section("YOUR CHATS")
	chats, ok := c.loadChats(ctx)
	if !ok {
		return nil
	}
	if len(chats) == 0 {
		c.println("\nYou don't have any chats yet.")
		return nil
	}

	c.printf("\n%-8s %-20s %-30s %s\n", "Chat ID", "With", "Last Message", "Time")
	c.println(strings.Repeat("-", 70))
	for _, chat := range chats {
		c.printf("%-8d %-20s ", chat.ChatID, chat.OtherUser.Name)
		if chat.LastMessage == nil {
			c.println("No messages yet")
			continue
		}
		c.printf("%-30s %s\n", preview(chat.LastMessage.Content), formatTime(chat.LastMessage.SentAt))
	}
	return nil
}

// pickChat lists the user's chats and reads one of them.
func (c *Console) pickChat(ctx context.Context) (*models.ChatSummary, error) {
	chats, ok := c.loadChats(ctx)
	if !ok {
		return nil, nil
	}
	if len(chats) == 0 {
		c.println("\nYou don't have any chats yet. Start a new chat first.")
		return nil, nil
	}

	c.println("\nYour available chats:")
	for _, chat := range chats {
		c.printf("Chat ID: %d - With: %s\n", chat.ChatID, chat.OtherUser.Name)
	}

	chatId, ok, err := c.readId("\nEnter Chat ID: ", "Invalid Chat ID!")
	if err != nil || !ok {
		return nil, err
	}

	for i := range chats {
		if chats[i].ChatID == chatId {
			return &chats[i], nil
		}
	}
	c.warn("Chat not found!")
	return nil, nil
}

func (c *Console) sendMessage(ctx context.Context) error {
	c.section("SEND MESSAGE")
	chat, err := c.pickChat(ctx)
	if err != nil || chat == nil {
		return err
	}

	content, err := c.readLine("\nEnter your message: ")
	if err != nil {
		return err
	}
	if content == "" {
		c.warn("Message cannot be empty!")
		return nil
	}

	qctx, cancel := c.withTimeout(ctx)
	defer cancel()
	msg, err := c.messages.SendMessage(qctx, c.session, models.MessageSend{
		ChatID:      chat.ChatID,
		Content:     content,
		ContentType: models.ContentTypeText,
	})
	if err != nil {
		c.fail("Failed to send message", err)
		return nil
	}
	c.success("Message sent successfully at %s", formatTime(msg.SentAt))
	return nil
}

func (c *Console) viewMessages(ctx context.Context) error {
	c.section("VIEW MESSAGES")
	chat, err := c.pickChat(ctx)
	if err != nil || chat == nil {
		return err
	}

	c.println("\n" + strings.Repeat("-", 40))
	c.printf("Chat with: %s\n", chat.OtherUser.Name)
	c.printf("Started on: %s\n", formatTime(chat.CreatedAt))
	if chat.LastMessage != nil {
		c.printf("Last message: %s\n", formatTime(chat.LastMessage.SentAt))
	}
	c.println(strings.Repeat("-", 40))

	qctx, cancel := c.withTimeout(ctx)
	defer cancel()

	messages, err := c.messages.GetChatMessages(qctx, c.session, models.MessagesSelect{ChatID: chat.ChatID})
	if err != nil {
		c.fail("Failed to retrieve messages", err)
		return nil
	}

	c.printf("\n%-20s %-15s %s\n", "Time", "Sender", "Message")
	c.println(strings.Repeat("-", 70))
	if len(messages) == 0 {
		c.println("No messages in this chat yet.")
	}
	for _, msg := range messages {
		sender := chat.OtherUser.Name
		if msg.SenderID == c.session.UserID() {
			sender = "You"
		}
		c.printf("%-20s %-15s %s\n", formatTime(msg.SentAt), sender, msg.Content)
	}

	if _, err = c.messages.MarkMessagesAsRead(qctx, c.session, chat.ChatID); err != nil {
		c.fail("Failed to mark messages as read", err)
	}
	return nil
}
