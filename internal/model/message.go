package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChatMessage is an append-only chat log entry. User holds the sender's email.
type ChatMessage struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	User      string    `json:"user" gorm:"size:255;not null;index"`
	Message   string    `json:"message" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

// TableName keeps the log in the "messages" collection.
func (ChatMessage) TableName() string {
	return "messages"
}

// BeforeCreate sets UUID before creating the record.
func (m *ChatMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
