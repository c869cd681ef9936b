package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/zcamb1/S-Connect-sub000/internal/model"
)

type UserRepo interface {
	GetUserById(ctx context.Context, id uint64) (*model.User, error)
	// GetUsersByUsernames 账号目录批量解析用户名，未注册的用户名直接缺席
	GetUsersByUsernames(ctx context.Context, usernames []string) ([]*model.User, error)
	GetUserSimpleInfoByIds(ctx context.Context, ids []uint64) ([]*model.UserDetail, error)
}

type UserRepoImpl struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepo {
	return &UserRepoImpl{db: db}
}

func (s *UserRepoImpl) GetUserById(ctx context.Context, id uint64) (*model.User, error) {
	user := &model.User{}
	result := s.db.WithContext(ctx).
		Preload("UserDetail").
		First(user, id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}

	return user, nil
}

func (s *UserRepoImpl) GetUsersByUsernames(ctx context.Context, usernames []string) ([]*model.User, error) {
	if len(usernames) == 0 {
		return nil, nil
	}
	users := make([]*model.User, 0, len(usernames))
	result := s.db.WithContext(ctx).
		Where("username IN ? AND is_delete = ? AND is_ban = ?", usernames, false, false).
		Find(&users)
	if result.Error != nil {
		return nil, result.Error
	}
	return users, nil
}

func (s *UserRepoImpl) GetUserSimpleInfoByIds(ctx context.Context, ids []uint64) ([]*model.UserDetail, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	details := make([]*model.UserDetail, 0, len(ids))
	result := s.db.WithContext(ctx).
		Select("user_id", "nickname", "avatar_url").
		Where("user_id IN ?", ids).
		Find(&details)
	if result.Error != nil {
		return nil, result.Error
	}
	return details, nil
}
