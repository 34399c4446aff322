package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type mongoChatStore struct {
	chats    *mongo.Collection
	messages *mongo.Collection
}

func NewMongoChatStore(db *mongo.Database) ChatStore {
	return &mongoChatStore{
		chats:    db.Collection("chats"),
		messages: db.Collection("messages"),
	}
}

func (s *mongoChatStore) CreateChat(ctx context.Context, chat *Chat) error {
	if chat.ID == "" {
		chat.ID = uuid.NewString()
	}
	chat.CreatedAt = time.Now().Unix()
	chat.UpdatedAt = chat.CreatedAt
	_, err := s.chats.InsertOne(ctx, chat)
	return err
}

func (s *mongoChatStore) GetChat(ctx context.Context, id string) (*Chat, error) {
	var chat Chat
	err := s.chats.FindOne(ctx, bson.M{"_id": id}).Decode(&chat)
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

func (s *mongoChatStore) ListChats(ctx context.Context, userID string) ([]Chat, error) {
	cursor, err := s.chats.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.M{"updated_at": -1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var chats []Chat
	if err := cursor.All(ctx, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

func (s *mongoChatStore) DeleteChat(ctx context.Context, id string) error {
	if err := s.DeleteMessages(ctx, id); err != nil {
		return err
	}
	_, err := s.chats.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (s *mongoChatStore) CreateMessage(ctx context.Context, message *ChatMessage) error {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	message.CreatedAt = time.Now().Unix()
	_, err := s.messages.InsertOne(ctx, message)
	if err != nil {
		return err
	}
	_, err = s.chats.UpdateOne(ctx, bson.M{"_id": message.ChatID},
		bson.M{"$set": bson.M{"updated_at": message.CreatedAt}})
	return err
}

func (s *mongoChatStore) GetMessages(ctx context.Context, chatID string) ([]ChatMessage, error) {
	cursor, err := s.messages.Find(ctx, bson.M{"chat_id": chatID},
		options.Find().SetSort(bson.M{"created_at": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []ChatMessage
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (s *mongoChatStore) DeleteMessages(ctx context.Context, chatID string) error {
	_, err := s.messages.DeleteMany(ctx, bson.M{"chat_id": chatID})
	return err
}
