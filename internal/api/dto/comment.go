package dto

// CommentCreateReq 发布评论请求（multipart 表单部分）
type CommentCreateReq struct {
	PostID   uint64
	Content  string
	ParentID uint64

	// 附图经 handler 归一化后传入，为空表示纯文字评论
	ImageData []byte
	ImageMime string
}

// CommentCreatedDTO 发布评论响应
type CommentCreatedDTO struct {
	ID        uint64 `json:"id"`
	Content   string `json:"content"`
	ImageURL  string `json:"image_ref"`
	RootID    uint64 `json:"root_comment_id"`
	ParentID  uint64 `json:"parent_comment_id"`
	CreatedAt string `json:"created_at"`
}

// CommentDTO 评论线索返回详情，一级评论携带 replies
type CommentDTO struct {
	ID              uint64 `json:"id"`
	PostID          uint64 `json:"post_id"`
	UserID          uint64 `json:"user_id"`
	Nickname        string `json:"nickname"`
	AvatarURL       string `json:"avatar_url"`
	Content         string `json:"content"`
	ImageURL        string `json:"image_ref"`
	RootID          uint64 `json:"root_comment_id"`
	ParentID        uint64 `json:"parent_comment_id"`
	ReplyToNickname string `json:"reply_to_nickname,omitempty"`
	CreatedAt       string `json:"created_at"`

	Replies    []*CommentDTO `json:"replies,omitempty"`
	ReplyCount int64         `json:"reply_count"`
}

// CommentDeleteDTO 删除评论响应
type CommentDeleteDTO struct {
	Success      bool  `json:"success"`
	DeletedCount int64 `json:"deleted_count"`
}

// CommentCountDTO 帖子评论总数
type CommentCountDTO struct {
	PostID uint64 `json:"post_id"`
	Count  int64  `json:"count"`
}
