package storage

import (
	"strconv"
	"time"

	"github.com/Shopify/sarama"
	"github.com/practice-sem-2/employee-chat/internal/models"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	UpdateChatCreated  = "chat_created"
	UpdateMessageSent  = "message_sent"
	UpdateMessagesRead = "messages_read"
)

type UpdatesStorage struct {
	cfg      *UpdatesStoreConfig
	producer sarama.SyncProducer
}

type UpdatesStoreConfig struct {
	UpdatesTopic string
}

func NewUpdatesStore(p sarama.SyncProducer, cfg *UpdatesStoreConfig) *UpdatesStorage {
	return &UpdatesStorage{
		producer: p,
		cfg:      cfg,
	}
}

func (s *UpdatesStorage) putUpdate(topic string, chatId int64, event *structpb.Struct) error {
	bytes, err := proto.Marshal(event)
	if err != nil {
		return err
	}

	_, _, err = s.producer.SendMessage(&sarama.ProducerMessage{
		Topic:     topic,
		Key:       sarama.StringEncoder(strconv.FormatInt(chatId, 10)),
		Value:     sarama.ByteEncoder(bytes),
		Timestamp: time.Now().UTC(),
	})

	return err
}

func idsToList(ids []int64) []interface{} {
	list := make([]interface{}, len(ids))
	for i, id := range ids {
		list[i] = id
	}
	return list
}

func metaToMap(kind string, meta models.UpdateMeta) map[string]interface{} {
	return map[string]interface{}{
		"type":      kind,
		"timestamp": meta.Timestamp.UTC().Unix(),
		"audience":  idsToList(meta.Audience),
	}
}

func (s *UpdatesStorage) chatCreatedToProtobuf(chat *models.ChatCreated) (*structpb.Struct, error) {
	update := metaToMap(UpdateChatCreated, chat.UpdateMeta)
	update["chat_id"] = chat.ChatID
	update["members"] = idsToList(chat.Members)
	return structpb.NewStruct(update)
}

func (s *UpdatesStorage) messageSentToProtobuf(msg *models.MessageSent) (*structpb.Struct, error) {
	update := metaToMap(UpdateMessageSent, msg.UpdateMeta)
	update["message_id"] = msg.MessageID
	update["chat_id"] = msg.ChatID
	update["sender_id"] = msg.SenderID
	update["content"] = msg.Content
	update["content_type"] = int(msg.ContentType)
	return structpb.NewStruct(update)
}

func (s *UpdatesStorage) messagesReadToProtobuf(read *models.MessagesRead) (*structpb.Struct, error) {
	update := metaToMap(UpdateMessagesRead, read.UpdateMeta)
	update["chat_id"] = read.ChatID
	update["reader_id"] = read.Reader
	update["count"] = read.Count
	return structpb.NewStruct(update)
}

func (s *UpdatesStorage) ChatCreated(chat *models.ChatCreated) error {
	update, err := s.chatCreatedToProtobuf(chat)
	if err != nil {
		return err
	}
	return s.putUpdate(s.cfg.UpdatesTopic, chat.ChatID, update)
}

func (s *UpdatesStorage) MessageSent(msg *models.MessageSent) error {
	update, err := s.messageSentToProtobuf(msg)
	if err != nil {
		return err
	}
	return s.putUpdate(s.cfg.UpdatesTopic, msg.ChatID, update)
}

func (s *UpdatesStorage) MessagesRead(read *models.MessagesRead) error {
	update, err := s.messagesReadToProtobuf(read)
	if err != nil {
		return err
	}
	return s.putUpdate(s.cfg.UpdatesTopic, read.ChatID, update)
}

// NopUpdatesStore drops every update. Used when no brokers are configured.
type NopUpdatesStore struct{}

func (NopUpdatesStore) ChatCreated(*models.ChatCreated) error   { return nil }
func (NopUpdatesStore) MessageSent(*models.MessageSent) error   { return nil }
func (NopUpdatesStore) MessagesRead(*models.MessagesRead) error { return nil }
