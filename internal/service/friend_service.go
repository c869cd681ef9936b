package service

import (
	"context"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/zcamb1/S-Connect-sub000/internal/api/dto"
	"github.com/zcamb1/S-Connect-sub000/internal/pkg/minio"
	"github.com/zcamb1/S-Connect-sub000/internal/repository"
)

type FriendService interface {
	SearchFriends(ctx context.Context, userID uint64, query string, limit int) ([]*dto.FriendDTO, error)
	AddFriend(ctx context.Context, userID, friendID uint64) error
	RemoveFriend(ctx context.Context, userID, friendID uint64) error
}

type friendServiceImpl struct {
	friendRepo repository.FriendRepo
	userRepo   repository.UserRepo
}

func NewFriendService(friendRepo repository.FriendRepo, userRepo repository.UserRepo) FriendService {
	return &friendServiceImpl{friendRepo: friendRepo, userRepo: userRepo}
}

// SearchFriends 在当前用户好友集内按用户名或昵称前缀检索，供 @ 选择器使用
func (s *friendServiceImpl) SearchFriends(ctx context.Context, userID uint64, query string, limit int) ([]*dto.FriendDTO, error) {
	if limit < 1 || limit > 50 {
		limit = 20
	}

	users, err := s.friendRepo.SearchFriends(ctx, userID, query, limit)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.FriendDTO, 0, len(users))
	for _, u := range users {
		d := &dto.FriendDTO{
			UserID:    u.ID,
			Nickname:  u.UserDetail.Nickname,
			AvatarURL: minio.GetPublicURL(u.UserDetail.AvatarURL),
		}
		if u.Username != nil {
			d.Username = *u.Username
		}
		res = append(res, d)
	}
	return res, nil
}

func (s *friendServiceImpl) AddFriend(ctx context.Context, userID, friendID uint64) error {
	if userID == friendID {
		return ErrFriendSelf
	}

	friend, err := s.userRepo.GetUserById(ctx, friendID)
	if err != nil {
		return err
	}
	if friend == nil || friend.IsDelete || friend.IsBan {
		return ErrUserNotFound
	}

	exists, err := s.friendRepo.AreFriends(ctx, userID, friendID)
	if err != nil {
		return err
	}
	if exists {
		return ErrFriendExist
	}

	// 预检查和插入之间可能有并发写入，唯一键冲突同样视为已是好友
	if err := s.friendRepo.CreateFriendship(ctx, userID, friendID); err != nil {
		if isDuplicateError(err) {
			return ErrFriendExist
		}
		return err
	}
	return nil
}

func isDuplicateError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	return false
}

func (s *friendServiceImpl) RemoveFriend(ctx context.Context, userID, friendID uint64) error {
	return s.friendRepo.DeleteFriendship(ctx, userID, friendID)
}
