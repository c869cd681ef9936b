package service

import (
	"context"
	"strconv"
	"time"

	"github.com/jinzhu/copier"

	"github.com/zcamb1/S-Connect-sub000/internal/api/dto"
	"github.com/zcamb1/S-Connect-sub000/internal/pkg/consts"
	"github.com/zcamb1/S-Connect-sub000/internal/pkg/redis"
	"github.com/zcamb1/S-Connect-sub000/internal/repository"
)

type NotificationService interface {
	ListNotifications(ctx context.Context, userID uint64, page, size int) ([]*dto.NotificationDTO, error)
	GetUnreadCount(ctx context.Context, userID uint64) (*dto.NotificationUnreadDTO, error)
	MarkAsRead(ctx context.Context, userID, notificationID uint64) error
	MarkAllAsRead(ctx context.Context, userID uint64) error
}

type notificationServiceImpl struct {
	notificationRepo repository.NotificationRepo
}

func NewNotificationService(notificationRepo repository.NotificationRepo) NotificationService {
	return &notificationServiceImpl{notificationRepo: notificationRepo}
}

func (s *notificationServiceImpl) ListNotifications(ctx context.Context, userID uint64, page, size int) ([]*dto.NotificationDTO, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}

	rows, err := s.notificationRepo.ListByUserID(ctx, userID, size, (page-1)*size)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.NotificationDTO, 0, len(rows))
	for _, row := range rows {
		d := &dto.NotificationDTO{}
		_ = copier.Copy(d, row)
		d.CreatedAt = row.CreatedAt.UTC().Format(time.RFC3339)
		res = append(res, d)
	}
	return res, nil
}

func (s *notificationServiceImpl) GetUnreadCount(ctx context.Context, userID uint64) (*dto.NotificationUnreadDTO, error) {
	key := consts.NotifyUnreadKey + strconv.FormatUint(userID, 10)
	if count, err := redis.GetInt64(ctx, key); err == nil {
		return &dto.NotificationUnreadDTO{UnreadCount: count}, nil
	}
	count, err := s.notificationRepo.GetUnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}
	_ = redis.SetWithExpiration(ctx, key, count, countCacheExpiration)
	return &dto.NotificationUnreadDTO{UnreadCount: count}, nil
}

// MarkAsRead 标记已读，重复标记视为成功
func (s *notificationServiceImpl) MarkAsRead(ctx context.Context, userID, notificationID uint64) error {
	notification, err := s.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if notification == nil {
		return ErrNotificationNotFound
	}
	if notification.UserID != userID {
		return ErrNotificationNotFound
	}
	if notification.IsRead {
		return nil
	}
	if err := s.notificationRepo.MarkAsRead(ctx, notificationID); err != nil {
		return err
	}
	s.invalidateUnreadCache(ctx, userID)
	return nil
}

func (s *notificationServiceImpl) MarkAllAsRead(ctx context.Context, userID uint64) error {
	if err := s.notificationRepo.MarkAllAsRead(ctx, userID); err != nil {
		return err
	}
	s.invalidateUnreadCache(ctx, userID)
	return nil
}

func (s *notificationServiceImpl) invalidateUnreadCache(ctx context.Context, userID uint64) {
	_ = redis.DeleteKey(ctx, consts.NotifyUnreadKey+strconv.FormatUint(userID, 10))
}
