package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/zcamb1/S-Connect-sub000/internal/model"
)

type NotificationRepo interface {
	ListByUserID(ctx context.Context, userID uint64, limit, offset int) ([]*model.Notification, error)
	GetByID(ctx context.Context, id uint64) (*model.Notification, error)
	GetUnreadCount(ctx context.Context, userID uint64) (int64, error)
	MarkAsRead(ctx context.Context, id uint64) error
	MarkAllAsRead(ctx context.Context, userID uint64) error
}

type NotificationRepoImpl struct {
	db *gorm.DB
}

func NewNotificationRepo(db *gorm.DB) NotificationRepo {
	return &NotificationRepoImpl{db: db}
}

func (s *NotificationRepoImpl) ListByUserID(ctx context.Context, userID uint64, limit, offset int) ([]*model.Notification, error) {
	var notifications []*model.Notification
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&notifications).Error
	return notifications, err
}

func (s *NotificationRepoImpl) GetByID(ctx context.Context, id uint64) (*model.Notification, error) {
	var notification model.Notification
	err := s.db.WithContext(ctx).First(&notification, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &notification, nil
}

func (s *NotificationRepoImpl) GetUnreadCount(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (s *NotificationRepoImpl) MarkAsRead(ctx context.Context, id uint64) error {
	return s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ?", id).
		Update("is_read", true).Error
}

func (s *NotificationRepoImpl) MarkAllAsRead(ctx context.Context, userID uint64) error {
	return s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}
