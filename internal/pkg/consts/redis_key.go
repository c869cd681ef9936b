package consts

const (
	PostCommentCountKey = "post:comment:count:"
	PostCommentDirtyKey = "post:comment:dirty"
	NotifyUnreadKey     = "notify:unread:count:"
)
