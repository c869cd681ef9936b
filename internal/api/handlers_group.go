package api

import "github.com/zcamb1/S-Connect-sub000/internal/api/handler"

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	CommentHandler      *handler.CommentHandler
	NotificationHandler *handler.NotificationHandler
	FriendHandler       *handler.FriendHandler
}
