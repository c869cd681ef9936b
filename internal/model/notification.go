package model

import (
	"time"
)

const (
	NotificationTypeMention = "mention"
)

type Notification struct {
	ID        uint64    `gorm:"primaryKey"`
	UserID    uint64    `gorm:"not null;index:idx_user_id" json:"userId"` // 接收人
	Type      string    `gorm:"type:varchar(20);not null" json:"type"`
	Title     string    `gorm:"type:varchar(100);not null" json:"title"`
	Message   string    `gorm:"type:varchar(255);not null" json:"message"`
	RelatedID uint64    `gorm:"not null;default:0;index:idx_related_id" json:"relatedId"` // 关联的评论ID
	IsRead    bool      `gorm:"type:tinyint(1);not null;default:0" json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Notification) TableName() string {
	return "notifications"
}
