package model

import "time"

// Friendship 好友关系，双向各存一行：(a,b) 和 (b,a) 必须成对出现
type Friendship struct {
	UserID    uint64    `gorm:"primaryKey" json:"userId"`
	FriendID  uint64    `gorm:"primaryKey;index:idx_friend_id" json:"friendId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Friendship) TableName() string {
	return "friends"
}
