package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zcamb1/S-Connect-sub000/internal/api/middleware"
	"github.com/zcamb1/S-Connect-sub000/internal/pkg/logger"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		postGroup := apiGroup.Group("/posts")
		{
			// 评论线索与总数对未登录用户可见
			authOptGroup := postGroup.Group("")
			authOptGroup.Use(middleware.AuthOptionalMiddleware())
			{
				authOptGroup.GET("/:post_id/comments", group.CommentHandler.ListComments)
				authOptGroup.GET("/:post_id/comments/count", group.CommentHandler.GetCommentCount)
			}

			authGroup := postGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.POST("/:post_id/comments", group.CommentHandler.CreateComment)
			}
		}

		commentGroup := apiGroup.Group("/comments")
		commentGroup.Use(middleware.AuthMiddleware())
		{
			commentGroup.DELETE("/:comment_id", group.CommentHandler.DeleteComment)
		}

		notificationGroup := apiGroup.Group("/notifications")
		notificationGroup.Use(middleware.AuthMiddleware())
		{
			notificationGroup.GET("", group.NotificationHandler.ListNotifications)
			notificationGroup.GET("/unread", group.NotificationHandler.GetUnreadCount)
			notificationGroup.PUT("/:notification_id/read", group.NotificationHandler.MarkAsRead)
			notificationGroup.PUT("/read-all", group.NotificationHandler.MarkAllAsRead)
		}

		friendGroup := apiGroup.Group("/friends")
		friendGroup.Use(middleware.AuthMiddleware())
		{
			friendGroup.GET("", group.FriendHandler.SearchFriends)
			friendGroup.POST("/:friend_id", group.FriendHandler.AddFriend)
			friendGroup.DELETE("/:friend_id", group.FriendHandler.RemoveFriend)
		}
	}

	return r
}
