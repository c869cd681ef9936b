package wire

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/zcamb1/S-Connect-sub000/internal/api"
	"github.com/zcamb1/S-Connect-sub000/internal/api/handler"
	"github.com/zcamb1/S-Connect-sub000/internal/job"
	"github.com/zcamb1/S-Connect-sub000/internal/pkg/cron"
	"github.com/zcamb1/S-Connect-sub000/internal/repository"
	"github.com/zcamb1/S-Connect-sub000/internal/service"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router  *gin.Engine
	DB      *gorm.DB
	CronMgr *cron.Manager
}

func BuildApplication(db *gorm.DB) (*ApplicationContainer, error) {
	commentRepo := repository.NewCommentRepo(db)
	postRepo := repository.NewPostRepo(db)
	userRepo := repository.NewUserRepo(db)
	friendRepo := repository.NewFriendRepo(db)
	notificationRepo := repository.NewNotificationRepo(db)

	commentService := service.NewCommentService(commentRepo, postRepo, userRepo, friendRepo)
	notificationService := service.NewNotificationService(notificationRepo)
	friendService := service.NewFriendService(friendRepo, userRepo)

	handlers := &api.HandlersGroup{
		CommentHandler:      handler.NewCommentHandler(commentService),
		NotificationHandler: handler.NewNotificationHandler(notificationService),
		FriendHandler:       handler.NewFriendHandler(friendService),
	}

	router := api.SetupRouter(handlers)

	commentCountJob := job.NewCommentCountJob(commentService)
	cronMgr := cron.NewCronManager(commentCountJob)

	return &ApplicationContainer{
		Router:  router,
		DB:      db,
		CronMgr: cronMgr,
	}, nil
}
