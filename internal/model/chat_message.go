package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage 聊天记录表（只追加）
type ChatMessage struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`

	Content string   `gorm:"type:text;not null" json:"content"`
	Role    ChatRole `gorm:"type:varchar(20);not null" json:"role"`
	// 本条消息影响到的任务（可选）
	TaskID *string `gorm:"type:varchar(36);index" json:"taskId"`
}

func (m *ChatMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
