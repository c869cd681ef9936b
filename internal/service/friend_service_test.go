package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zcamb1/S-Connect-sub000/internal/model"
)

func newFriendTestEnv(t *testing.T) (*fakeFriendRepo, FriendService) {
	setupTestRedis(t)
	userRepo := &fakeUserRepo{users: map[uint64]*model.User{
		1: {ID: 1, Username: ptrStr("a.user")},
		2: {ID: 2, Username: ptrStr("b.user")},
		3: {ID: 3, Username: ptrStr("banned.user"), IsBan: true},
	}}
	friendRepo := &fakeFriendRepo{friends: map[uint64][]uint64{}}
	return friendRepo, NewFriendService(friendRepo, userRepo)
}

func TestAddFriend(t *testing.T) {
	friendRepo, svc := newFriendTestEnv(t)
	ctx := context.Background()

	require.NoError(t, svc.AddFriend(ctx, 1, 2))
	ok, _ := friendRepo.AreFriends(ctx, 1, 2)
	assert.True(t, ok)
	// 好友关系双向写入
	ok, _ = friendRepo.AreFriends(ctx, 2, 1)
	assert.True(t, ok)

	assert.ErrorIs(t, svc.AddFriend(ctx, 1, 2), ErrFriendExist)
	assert.ErrorIs(t, svc.AddFriend(ctx, 1, 1), ErrFriendSelf)
	assert.ErrorIs(t, svc.AddFriend(ctx, 1, 3), ErrUserNotFound)
	assert.ErrorIs(t, svc.AddFriend(ctx, 1, 999), ErrUserNotFound)
}
