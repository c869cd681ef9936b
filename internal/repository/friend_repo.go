package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/zcamb1/S-Connect-sub000/internal/model"
)

type FriendRepo interface {
	GetFriendIDs(ctx context.Context, userID uint64) ([]uint64, error)
	AreFriends(ctx context.Context, userID, friendID uint64) (bool, error)
	// CreateFriendship 成对写入 (a,b) 和 (b,a)，单边存在视为数据完整性问题
	CreateFriendship(ctx context.Context, userID, friendID uint64) error
	DeleteFriendship(ctx context.Context, userID, friendID uint64) error
	SearchFriends(ctx context.Context, userID uint64, query string, limit int) ([]*model.User, error)
}

type FriendRepoImpl struct {
	db *gorm.DB
}

func NewFriendRepo(db *gorm.DB) FriendRepo {
	return &FriendRepoImpl{db: db}
}

func (s *FriendRepoImpl) GetFriendIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	var ids []uint64
	err := s.db.WithContext(ctx).Model(&model.Friendship{}).
		Where("user_id = ?", userID).
		Pluck("friend_id", &ids).Error
	return ids, err
}

func (s *FriendRepoImpl) AreFriends(ctx context.Context, userID, friendID uint64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Friendship{}).
		Where("user_id = ? AND friend_id = ?", userID, friendID).
		Count(&count).Error
	return count > 0, err
}

func (s *FriendRepoImpl) CreateFriendship(ctx context.Context, userID, friendID uint64) error {
	now := time.Now()
	edges := []*model.Friendship{
		{UserID: userID, FriendID: friendID, CreatedAt: now},
		{UserID: friendID, FriendID: userID, CreatedAt: now},
	}
	// 重复插入由复合主键拦截，冲突错误交给上层判定
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&edges).Error
	})
}

func (s *FriendRepoImpl) DeleteFriendship(ctx context.Context, userID, friendID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND friend_id = ?", userID, friendID).
			Delete(&model.Friendship{}).Error
		if err != nil {
			return err
		}
		return tx.Where("user_id = ? AND friend_id = ?", friendID, userID).
			Delete(&model.Friendship{}).Error
	})
}

// SearchFriends 好友目录检索，query 为空时返回全部好友
func (s *FriendRepoImpl) SearchFriends(ctx context.Context, userID uint64, query string, limit int) ([]*model.User, error) {
	var users []*model.User
	q := s.db.WithContext(ctx).Model(&model.User{}).
		Preload("UserDetail").
		Joins("JOIN friends ON friends.friend_id = users.id AND friends.user_id = ?", userID).
		Joins("JOIN user_detail ON user_detail.user_id = users.id").
		Where("users.is_delete = ? AND users.is_ban = ?", false, false)

	if query != "" {
		pattern := query + "%"
		q = q.Where("users.username LIKE ? OR user_detail.nickname LIKE ?", pattern, pattern)
	}

	err := q.Order("users.username ASC").Limit(limit).Find(&users).Error
	return users, err
}
