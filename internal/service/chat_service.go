package service

import (
	"context"
	"strings"
	"unicode/utf8"

	apperrors "storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/repository"
)

const maxMessageLength = 1000

// Censor masks unwanted words in a message.
type Censor interface {
	Censor(text string) string
}

// ChatService stores chat messages. Post returns the persisted record; callers publish
// only what Post returned.
type ChatService interface {
	Post(ctx context.Context, user, message string) (*model.ChatMessage, error)
	Recent(ctx context.Context) ([]model.ChatMessage, error)
}

type chatService struct {
	repo    repository.MessageRepository
	censor  Censor
	history int
}

// NewChatService creates a chat service. censor may be nil.
func NewChatService(repo repository.MessageRepository, censor Censor, history int) ChatService {
	return &chatService{repo: repo, censor: censor, history: history}
}

// Post validates, moderates and persists a message.
func (s *chatService) Post(ctx context.Context, user, message string) (*model.ChatMessage, error) {
	user = normalizeEmail(user)
	message = strings.TrimSpace(message)

	fields := map[string]string{}
	if user == "" {
		fields["user"] = "required"
	}
	if message == "" {
		fields["message"] = "required"
	} else if utf8.RuneCountInString(message) > maxMessageLength {
		fields["message"] = "max=1000"
	}
	if len(fields) > 0 {
		return nil, &apperrors.ValidationError{Fields: fields}
	}

	if s.censor != nil {
		message = s.censor.Censor(message)
	}

	msg := &model.ChatMessage{User: user, Message: message}
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// Recent returns the configured number of latest messages, oldest first.
func (s *chatService) Recent(ctx context.Context) ([]model.ChatMessage, error) {
	if s.history <= 0 {
		return []model.ChatMessage{}, nil
	}
	msgs, err := s.repo.ListRecent(ctx, s.history)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []model.ChatMessage{}
	}
	return msgs, nil
}
