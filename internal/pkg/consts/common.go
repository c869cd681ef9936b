package consts

import "time"

const (
	// CommentMaxLength 评论内容最大长度（按字符计）
	CommentMaxLength = 2000
	// MaxMentionCandidates 单条评论允许携带的 @ 候选上限，超出整条拒绝
	MaxMentionCandidates = 5
	// CommentRateLimit 滑动窗口内同一作者允许的评论数量
	CommentRateLimit = 10
	// CommentRateWindow 评论频控滑动窗口
	CommentRateWindow = 60 * time.Second
)

const (
	DefaultAvatarURL = "default_avatar.png"
)
