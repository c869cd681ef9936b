package job

import (
	"context"
	log "log/slog"

	"github.com/google/uuid"

	"github.com/zcamb1/S-Connect-sub000/internal/pkg/consts"
	"github.com/zcamb1/S-Connect-sub000/internal/pkg/logger"
	"github.com/zcamb1/S-Connect-sub000/internal/pkg/redis"
	"github.com/zcamb1/S-Connect-sub000/internal/pkg/util"
	"github.com/zcamb1/S-Connect-sub000/internal/service"
)

// CommentCountJob 周期性用数据库真值修正评论数缓存。
// 写路径只做失效和打脏标记，这里统一回填，避免读放大。
type CommentCountJob struct {
	commentSvc service.CommentService
}

func NewCommentCountJob(commentSvc service.CommentService) *CommentCountJob {
	return &CommentCountJob{
		commentSvc: commentSvc,
	}
}

func (s *CommentCountJob) Run() {
	traceID := "job-comment-count-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)

	processingKey := consts.PostCommentDirtyKey + ":processing"
	err := redis.Rename(ctx, consts.PostCommentDirtyKey, processingKey)
	if err != nil {
		// 脏集不存在说明这个周期没有写入
		return
	}

	tempSet, err := redis.GetSet(ctx, processingKey)
	if err != nil {
		log.ErrorContext(ctx, "get comment dirty set error", "err", err)
		return
	}

	postIDs, err := util.StrSliceToUInt64Slice(tempSet)
	if err != nil {
		log.ErrorContext(ctx, "convert comment dirty set to int slice error", "err", err)
		return
	}

	log.InfoContext(ctx, "start syncing post comment count", "count", len(postIDs))

	successCount := 0
	for _, pid := range postIDs {
		if err := s.commentSvc.SyncPostCommentCount(ctx, pid); err != nil {
			log.ErrorContext(ctx, "sync post comment count error", "pid", pid, "err", err)
			continue
		}
		successCount++
	}

	if err := redis.DeleteKey(ctx, processingKey); err != nil {
		log.ErrorContext(ctx, "delete comment processing set error", "err", err)
	}

	log.InfoContext(ctx, "sync post comment count success",
		"total_count", len(postIDs),
		"success_count", successCount)
}
