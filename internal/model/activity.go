package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ActivityType string

const (
	ActivityCreated      ActivityType = "created"
	ActivityUpdated      ActivityType = "updated"
	ActivityCompleted    ActivityType = "completed"
	ActivityStatusChange ActivityType = "status_change"
	ActivityComment      ActivityType = "comment"
)

// 常用的操作人标识
const (
	ActorSystem      = "system"
	ActorUser        = "user"
	ActorAIAssistant = "ai-assistant"
)

// Activity 任务操作日志（只追加，不修改不删除）
// 任务被删除后日志保留，用于审计
type Activity struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`

	TaskID      string       `gorm:"type:varchar(36);not null;index" json:"taskId"`
	Type        ActivityType `gorm:"type:varchar(20);not null" json:"type"`
	Description string       `gorm:"type:text;not null" json:"description"`
	Remarks     *string      `gorm:"type:text" json:"remarks"`
	UserID      string       `gorm:"type:varchar(100)" json:"userId"`
}

func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
