package repository

import (
	"context"

	"gorm.io/gorm"

	"storefront/internal/model"
)

// MessageRepository is the append-only chat log.
type MessageRepository interface {
	Create(ctx context.Context, msg *model.ChatMessage) error
	ListRecent(ctx context.Context, limit int) ([]model.ChatMessage, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new chat message repository.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create appends a message. CreatedAt is assigned by GORM when zero.
func (r *messageRepository) Create(ctx context.Context, msg *model.ChatMessage) error {
	return translate("create message", r.db.WithContext(ctx).Create(msg).Error)
}

// ListRecent returns the latest limit messages, oldest first.
func (r *messageRepository) ListRecent(ctx context.Context, limit int) ([]model.ChatMessage, error) {
	var msgs []model.ChatMessage
	if err := r.db.WithContext(ctx).Order("created_at desc").Limit(limit).Find(&msgs).Error; err != nil {
		return nil, translate("list messages", err)
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}
