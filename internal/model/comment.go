package model

import (
	"time"
)

type Comment struct {
	ID        uint64    `gorm:"primaryKey"`
	PostID    uint64    `gorm:"not null;index:idx_post_id" json:"postId"`
	UserID    uint64    `gorm:"not null;index:idx_user_created,priority:1" json:"userId"`
	Content   string    `gorm:"type:varchar(2000);not null" json:"content"`
	ImageURL  string    `gorm:"type:varchar(512);not null;default:''" json:"imageUrl"`
	RootID    uint64    `gorm:"not null;default:0;index:idx_root_id" json:"rootId"`   // 0表示这是一级评论
	ParentID  uint64    `gorm:"not null;default:0" json:"parentId"`                   // 0表示直接评论帖子
	CreatedAt time.Time `gorm:"index:idx_user_created,priority:2" json:"createdAt"`
}

func (Comment) TableName() string {
	return "comments"
}

// IsRoot 一级评论的 RootID 和 ParentID 同时为 0
func (c *Comment) IsRoot() bool {
	return c.RootID == 0
}
