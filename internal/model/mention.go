package model

import (
	"time"
)

type CommentMention struct {
	ID        uint64    `gorm:"primaryKey"`
	CommentID uint64    `gorm:"not null;index:idx_comment_id" json:"commentId"`
	UserID    uint64    `gorm:"not null;index:idx_user_id" json:"userId"`
	Username  string    `gorm:"type:varchar(50);not null" json:"username"`
	Position  int       `gorm:"not null" json:"position"` // @ 在评论内容中的字节偏移
	CreatedAt time.Time `json:"createdAt"`
}

func (CommentMention) TableName() string {
	return "comment_mentions"
}
