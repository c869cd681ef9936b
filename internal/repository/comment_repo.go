package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zcamb1/S-Connect-sub000/internal/model"
	"github.com/zcamb1/S-Connect-sub000/internal/pkg/consts"
)

// ErrRateLimitExceeded 频控窗口内评论数已达上限，事务内检查触发
var ErrRateLimitExceeded = errors.New("comment rate limit exceeded")

// RateLimitExceeded 判定频控窗口内已有的评论数是否已达上限
func RateLimitExceeded(recent int64) bool {
	return recent >= consts.CommentRateLimit
}

type CommentRepo interface {
	// CreateWithMentions 在一个事务内完成频控检查、评论插入、提及和通知插入。
	// 任何一步失败则整体回滚，频控超限返回 ErrRateLimitExceeded。
	CreateWithMentions(ctx context.Context, comment *model.Comment, mentions []*model.CommentMention, notifications []*model.Notification) error
	// DeleteCascade 在一个事务内删除评论及其全部依赖。
	// 返回被删除的评论行和被级联清除的提及通知接收人，供上层做计数和缓存清理。
	DeleteCascade(ctx context.Context, commentID uint64) ([]*model.Comment, []uint64, error)
	GetCommentByID(ctx context.Context, commentID uint64) (*model.Comment, error)
	ListByPostID(ctx context.Context, postID uint64) ([]*model.Comment, error)
	GetCommentCountByPostID(ctx context.Context, postID uint64) (int64, error)
}

type CommentRepoImpl struct {
	db *gorm.DB
}

func NewCommentRepo(db *gorm.DB) CommentRepo {
	return &CommentRepoImpl{db: db}
}

func (s *CommentRepoImpl) CreateWithMentions(ctx context.Context, comment *model.Comment, mentions []*model.CommentMention, notifications []*model.Notification) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 频控计数和插入必须在同一事务内求值，FOR UPDATE 阻止并发请求同时通过检查
		var recent int64
		since := time.Now().Add(-consts.CommentRateWindow)
		err := tx.Model(&model.Comment{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND created_at >= ?", comment.UserID, since).
			Count(&recent).Error
		if err != nil {
			return err
		}
		if RateLimitExceeded(recent) {
			return ErrRateLimitExceeded
		}

		if err := tx.Create(comment).Error; err != nil {
			return err
		}

		for _, m := range mentions {
			m.CommentID = comment.ID
		}
		for _, n := range notifications {
			n.RelatedID = comment.ID
		}

		if len(mentions) > 0 {
			if err := tx.Create(&mentions).Error; err != nil {
				return err
			}
		}
		if len(notifications) > 0 {
			if err := tx.Create(&notifications).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *CommentRepoImpl) DeleteCascade(ctx context.Context, commentID uint64) ([]*model.Comment, []uint64, error) {
	var deleted []*model.Comment
	var recipientIDs []uint64

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var target model.Comment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&target, commentID).Error; err != nil {
			return err
		}

		// 删除集：根评论带上名下全部回复，回复只有自己；子在前父在后
		if target.IsRoot() {
			var replies []*model.Comment
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("root_id = ?", target.ID).
				Order("created_at ASC").
				Find(&replies).Error
			if err != nil {
				return err
			}
			deleted = append(deleted, replies...)
		}
		deleted = append(deleted, &target)

		ids := make([]uint64, 0, len(deleted))
		for _, c := range deleted {
			ids = append(ids, c.ID)
		}

		// 删除前先记下提及接收人，他们的未读数缓存需要随通知一起失效
		err := tx.Model(&model.CommentMention{}).
			Where("comment_id IN ?", ids).
			Distinct().
			Pluck("user_id", &recipientIDs).Error
		if err != nil {
			return err
		}

		// 先清理提及和提及类通知，再删评论行
		if err := tx.Where("comment_id IN ?", ids).
			Delete(&model.CommentMention{}).Error; err != nil {
			return err
		}
		if err := tx.Where("type = ? AND related_id IN ?", model.NotificationTypeMention, ids).
			Delete(&model.Notification{}).Error; err != nil {
			return err
		}

		if replyCount := len(deleted) - 1; replyCount > 0 {
			if err := tx.Where("id IN ?", ids[:replyCount]).
				Delete(&model.Comment{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&model.Comment{}, target.ID).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return deleted, recipientIDs, nil
}

func (s *CommentRepoImpl) GetCommentByID(ctx context.Context, commentID uint64) (*model.Comment, error) {
	var comment model.Comment
	err := s.db.WithContext(ctx).First(&comment, commentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &comment, nil
}

// ListByPostID 返回帖子的全部评论行，排序即线索传输契约：
// 线索按根评论创建顺序，根在前，组内回复按创建时间升序。
func (s *CommentRepoImpl) ListByPostID(ctx context.Context, postID uint64) ([]*model.Comment, error) {
	var comments []*model.Comment
	err := s.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("IF(root_id = 0, id, root_id) ASC, root_id <> 0 ASC, created_at ASC, id ASC").
		Find(&comments).Error
	return comments, err
}

func (s *CommentRepoImpl) GetCommentCountByPostID(ctx context.Context, postID uint64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Comment{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}
