package dto

// FriendDTO 好友目录条目，供 @ 自动补全使用
type FriendDTO struct {
	UserID    uint64 `json:"user_id"`
	Username  string `json:"username"`
	Nickname  string `json:"nickname"`
	AvatarURL string `json:"avatar_url"`
}
