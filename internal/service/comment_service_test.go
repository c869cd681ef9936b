package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zcamb1/S-Connect-sub000/internal/api/config"
	"github.com/zcamb1/S-Connect-sub000/internal/api/dto"
	"github.com/zcamb1/S-Connect-sub000/internal/model"
	"github.com/zcamb1/S-Connect-sub000/internal/pkg/consts"
	"github.com/zcamb1/S-Connect-sub000/internal/pkg/redis"
	"github.com/zcamb1/S-Connect-sub000/internal/repository"
)

// fakeCommentRepo 内存实现，事务语义由真实仓储的集成测试覆盖
type fakeCommentRepo struct {
	comments  map[uint64]*model.Comment
	mentions  []*model.CommentMention
	notifies  []*model.Notification
	nextID    uint64
	createErr error
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[uint64]*model.Comment), nextID: 1}
}

func (f *fakeCommentRepo) CreateWithMentions(_ context.Context, comment *model.Comment, mentions []*model.CommentMention, notifications []*model.Notification) error {
	if f.createErr != nil {
		return f.createErr
	}

	// 和真实仓储相同的窗口计数语义，阈值判定共用同一函数
	var recent int64
	since := time.Now().Add(-consts.CommentRateWindow)
	for _, c := range f.comments {
		if c.UserID == comment.UserID && !c.CreatedAt.Before(since) {
			recent++
		}
	}
	if repository.RateLimitExceeded(recent) {
		return repository.ErrRateLimitExceeded
	}

	comment.ID = f.nextID
	f.nextID++
	f.comments[comment.ID] = comment
	for _, m := range mentions {
		m.CommentID = comment.ID
	}
	for _, n := range notifications {
		n.RelatedID = comment.ID
	}
	f.mentions = append(f.mentions, mentions...)
	f.notifies = append(f.notifies, notifications...)
	return nil
}

func (f *fakeCommentRepo) DeleteCascade(_ context.Context, commentID uint64) ([]*model.Comment, []uint64, error) {
	target, ok := f.comments[commentID]
	if !ok {
		return nil, nil, nil
	}
	var deleted []*model.Comment
	if target.IsRoot() {
		for _, c := range f.comments {
			if c.RootID == commentID {
				deleted = append(deleted, c)
			}
		}
	}
	deleted = append(deleted, target)

	deletedIDs := make(map[uint64]struct{}, len(deleted))
	for _, c := range deleted {
		delete(f.comments, c.ID)
		deletedIDs[c.ID] = struct{}{}
	}

	var recipientIDs []uint64
	seen := make(map[uint64]struct{})
	var kept []*model.CommentMention
	for _, m := range f.mentions {
		if _, ok := deletedIDs[m.CommentID]; !ok {
			kept = append(kept, m)
			continue
		}
		if _, dup := seen[m.UserID]; !dup {
			seen[m.UserID] = struct{}{}
			recipientIDs = append(recipientIDs, m.UserID)
		}
	}
	f.mentions = kept

	var keptNotifies []*model.Notification
	for _, n := range f.notifies {
		if _, ok := deletedIDs[n.RelatedID]; !ok {
			keptNotifies = append(keptNotifies, n)
		}
	}
	f.notifies = keptNotifies

	return deleted, recipientIDs, nil
}

func (f *fakeCommentRepo) GetCommentByID(_ context.Context, commentID uint64) (*model.Comment, error) {
	return f.comments[commentID], nil
}

// ListByPostID 模拟真实仓储的线索排序，根行先于其回复
func (f *fakeCommentRepo) ListByPostID(_ context.Context, postID uint64) ([]*model.Comment, error) {
	var res []*model.Comment
	for _, c := range f.comments {
		if c.PostID == postID {
			res = append(res, c)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		a, b := res[i], res[j]
		groupOf := func(c *model.Comment) uint64 {
			if c.IsRoot() {
				return c.ID
			}
			return c.RootID
		}
		if groupOf(a) != groupOf(b) {
			return groupOf(a) < groupOf(b)
		}
		if a.IsRoot() != b.IsRoot() {
			return a.IsRoot()
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return res, nil
}

func (f *fakeCommentRepo) GetCommentCountByPostID(_ context.Context, postID uint64) (int64, error) {
	var count int64
	for _, c := range f.comments {
		if c.PostID == postID {
			count++
		}
	}
	return count, nil
}

type fakePostRepo struct {
	posts map[uint64]*model.Post
}

func (f *fakePostRepo) GetPost(_ context.Context, id uint64) (*model.Post, error) {
	return f.posts[id], nil
}

type fakeUserRepo struct {
	users map[uint64]*model.User
}

func (f *fakeUserRepo) GetUserById(_ context.Context, id uint64) (*model.User, error) {
	return f.users[id], nil
}

func (f *fakeUserRepo) GetUsersByUsernames(_ context.Context, usernames []string) ([]*model.User, error) {
	var res []*model.User
	for _, name := range usernames {
		for _, u := range f.users {
			if u.Username != nil && *u.Username == name && !u.IsBan && !u.IsDelete {
				res = append(res, u)
			}
		}
	}
	return res, nil
}

func (f *fakeUserRepo) GetUserSimpleInfoByIds(_ context.Context, ids []uint64) ([]*model.UserDetail, error) {
	var res []*model.UserDetail
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			detail := u.UserDetail
			detail.UserID = id
			res = append(res, &detail)
		}
	}
	return res, nil
}

type fakeFriendRepo struct {
	friends map[uint64][]uint64
}

func (f *fakeFriendRepo) GetFriendIDs(_ context.Context, userID uint64) ([]uint64, error) {
	return f.friends[userID], nil
}

func (f *fakeFriendRepo) AreFriends(_ context.Context, userID, friendID uint64) (bool, error) {
	for _, id := range f.friends[userID] {
		if id == friendID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeFriendRepo) CreateFriendship(_ context.Context, userID, friendID uint64) error {
	f.friends[userID] = append(f.friends[userID], friendID)
	f.friends[friendID] = append(f.friends[friendID], userID)
	return nil
}

func (f *fakeFriendRepo) DeleteFriendship(_ context.Context, userID, friendID uint64) error {
	return nil
}

func (f *fakeFriendRepo) SearchFriends(_ context.Context, userID uint64, query string, limit int) ([]*model.User, error) {
	return nil, nil
}

func setupTestRedis(t *testing.T) {
	t.Helper()
	mr := miniredis.RunT(t)
	redis.Rdb = goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	config.Cfg = &config.Config{}
}

func ptrStr(s string) *string { return &s }

func newTestEnv(t *testing.T) (*fakeCommentRepo, *fakeUserRepo, *fakeFriendRepo, CommentService) {
	setupTestRedis(t)

	commentRepo := newFakeCommentRepo()
	postRepo := &fakePostRepo{posts: map[uint64]*model.Post{
		100: {ID: 100, UserID: 1},
	}}
	userRepo := &fakeUserRepo{users: map[uint64]*model.User{
		1: {ID: 1, Username: ptrStr("a.user"), UserDetail: model.UserDetail{Nickname: "阿明"}},
		2: {ID: 2, Username: ptrStr("b.user"), UserDetail: model.UserDetail{Nickname: "小北"}},
		3: {ID: 3, Username: ptrStr("c.user"), UserDetail: model.UserDetail{Nickname: "小川"}},
	}}
	friendRepo := &fakeFriendRepo{friends: map[uint64][]uint64{
		1: {2},
		2: {1},
	}}

	svc := NewCommentService(commentRepo, postRepo, userRepo, friendRepo)
	return commentRepo, userRepo, friendRepo, svc
}

func TestCreateCommentMentionFriendScope(t *testing.T) {
	commentRepo, _, _, svc := newTestEnv(t)

	// b.user 是好友，c.user 不是，后者静默丢弃
	res, err := svc.CreateComment(context.Background(), 1, &dto.CommentCreateReq{
		PostID:  100,
		Content: "@b.user hi @c.user",
	})
	require.NoError(t, err)
	require.NotNil(t, res)

	require.Len(t, commentRepo.mentions, 1)
	assert.Equal(t, uint64(2), commentRepo.mentions[0].UserID)
	assert.Equal(t, "b.user", commentRepo.mentions[0].Username)
	assert.Equal(t, 0, commentRepo.mentions[0].Position)

	require.Len(t, commentRepo.notifies, 1)
	assert.Equal(t, uint64(2), commentRepo.notifies[0].UserID)
	assert.Equal(t, model.NotificationTypeMention, commentRepo.notifies[0].Type)
	assert.Equal(t, res.ID, commentRepo.notifies[0].RelatedID)
	assert.Contains(t, commentRepo.notifies[0].Message, "阿明")
}

func TestCreateCommentMentionSelfDropped(t *testing.T) {
	commentRepo, _, _, svc := newTestEnv(t)

	// 好友集不含自己，@ 自己不产生提及
	_, err := svc.CreateComment(context.Background(), 1, &dto.CommentCreateReq{
		PostID:  100,
		Content: "@a.user test",
	})
	require.NoError(t, err)
	assert.Empty(t, commentRepo.mentions)
	assert.Empty(t, commentRepo.notifies)
}

func TestCreateCommentMentionLimit(t *testing.T) {
	commentRepo, _, _, svc := newTestEnv(t)

	_, err := svc.CreateComment(context.Background(), 1, &dto.CommentCreateReq{
		PostID:  100,
		Content: "@u1 @u2 @u3 @u4 @u5 @u6",
	})
	assert.ErrorIs(t, err, ErrCommentMentionLimit)
	// 整条评论拒绝，不允许部分写入
	assert.Empty(t, commentRepo.comments)
}

func TestCreateCommentValidation(t *testing.T) {
	_, _, _, svc := newTestEnv(t)
	ctx := context.Background()

	_, err := svc.CreateComment(ctx, 1, &dto.CommentCreateReq{PostID: 100, Content: ""})
	assert.ErrorIs(t, err, ErrCommentContentEmpty)

	long := make([]rune, consts.CommentMaxLength+1)
	for i := range long {
		long[i] = '长'
	}
	_, err = svc.CreateComment(ctx, 1, &dto.CommentCreateReq{PostID: 100, Content: string(long)})
	assert.ErrorIs(t, err, ErrCommentTooLong)

	_, err = svc.CreateComment(ctx, 1, &dto.CommentCreateReq{PostID: 999, Content: "hello"})
	assert.ErrorIs(t, err, ErrPostNotFound)

	_, err = svc.CreateComment(ctx, 1, &dto.CommentCreateReq{PostID: 100, Content: "hello", ParentID: 888})
	assert.ErrorIs(t, err, ErrPostCommentNotFound)
}

func TestCreateCommentParentFromOtherPost(t *testing.T) {
	commentRepo, _, _, svc := newTestEnv(t)
	commentRepo.comments[50] = &model.Comment{ID: 50, PostID: 777, UserID: 2, CreatedAt: time.Now()}
	commentRepo.nextID = 51

	_, err := svc.CreateComment(context.Background(), 1, &dto.CommentCreateReq{
		PostID:   100,
		Content:  "reply",
		ParentID: 50,
	})
	assert.ErrorIs(t, err, ErrPostCommentNotFound)
}

func TestCreateCommentReplyRootPinning(t *testing.T) {
	commentRepo, _, _, svc := newTestEnv(t)
	ctx := context.Background()

	root, err := svc.CreateComment(ctx, 1, &dto.CommentCreateReq{PostID: 100, Content: "root"})
	require.NoError(t, err)
	assert.Equal(t, uint64(0), root.RootID)
	assert.Equal(t, uint64(0), root.ParentID)

	// 回复一级评论，root 指向其 ID
	reply, err := svc.CreateComment(ctx, 1, &dto.CommentCreateReq{PostID: 100, Content: "reply", ParentID: root.ID})
	require.NoError(t, err)
	assert.Equal(t, root.ID, reply.RootID)
	assert.Equal(t, root.ID, reply.ParentID)

	// 回复二级评论，root 仍钉在线索根上，不随父级加深
	nested, err := svc.CreateComment(ctx, 1, &dto.CommentCreateReq{PostID: 100, Content: "nested", ParentID: reply.ID})
	require.NoError(t, err)
	assert.Equal(t, root.ID, nested.RootID)
	assert.Equal(t, reply.ID, nested.ParentID)

	stored := commentRepo.comments[nested.ID]
	require.NotNil(t, stored)
	assert.Equal(t, root.ID, stored.RootID)
}

func TestCreateCommentRateLimited(t *testing.T) {
	commentRepo, _, _, svc := newTestEnv(t)
	commentRepo.createErr = repository.ErrRateLimitExceeded

	_, err := svc.CreateComment(context.Background(), 1, &dto.CommentCreateReq{PostID: 100, Content: "hello"})
	assert.ErrorIs(t, err, ErrCommentRateLimited)
}

func TestCreateCommentRateLimitWindowBoundary(t *testing.T) {
	_, _, _, svc := newTestEnv(t)
	ctx := context.Background()

	// 窗口内前 10 条全部通过，第 11 条被拒
	for i := 0; i < consts.CommentRateLimit; i++ {
		_, err := svc.CreateComment(ctx, 1, &dto.CommentCreateReq{PostID: 100, Content: "hello"})
		require.NoError(t, err, "comment %d should pass", i+1)
	}
	_, err := svc.CreateComment(ctx, 1, &dto.CommentCreateReq{PostID: 100, Content: "hello"})
	assert.ErrorIs(t, err, ErrCommentRateLimited)

	// 其他作者不受影响
	_, err = svc.CreateComment(ctx, 2, &dto.CommentCreateReq{PostID: 100, Content: "hi"})
	require.NoError(t, err)
}

func TestCreateCommentRateLimitWindowExpiry(t *testing.T) {
	commentRepo, _, _, svc := newTestEnv(t)
	ctx := context.Background()

	// 窗口外的历史评论不计入频控
	old := time.Now().Add(-2 * consts.CommentRateWindow)
	for i := uint64(0); i < consts.CommentRateLimit; i++ {
		id := 1000 + i
		commentRepo.comments[id] = &model.Comment{ID: id, PostID: 100, UserID: 1, CreatedAt: old}
	}
	commentRepo.nextID = 2000

	_, err := svc.CreateComment(ctx, 1, &dto.CommentCreateReq{PostID: 100, Content: "hello"})
	require.NoError(t, err)
}

func TestDeleteCommentOwnership(t *testing.T) {
	commentRepo, _, _, svc := newTestEnv(t)
	commentRepo.comments[10] = &model.Comment{ID: 10, PostID: 100, UserID: 2, CreatedAt: time.Now()}

	_, err := svc.DeleteComment(context.Background(), 1, 10)
	assert.ErrorIs(t, err, ErrCommentNotOwner)

	_, err = svc.DeleteComment(context.Background(), 1, 999)
	assert.ErrorIs(t, err, ErrPostCommentNotFound)
}

func TestDeleteCommentCascade(t *testing.T) {
	commentRepo, _, _, svc := newTestEnv(t)
	now := time.Now()
	commentRepo.comments[10] = &model.Comment{ID: 10, PostID: 100, UserID: 1, CreatedAt: now}
	commentRepo.comments[11] = &model.Comment{ID: 11, PostID: 100, UserID: 2, RootID: 10, ParentID: 10, CreatedAt: now}
	commentRepo.comments[12] = &model.Comment{ID: 12, PostID: 100, UserID: 1, RootID: 10, ParentID: 11, CreatedAt: now}

	res, err := svc.DeleteComment(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, int64(3), res.DeletedCount)
	assert.Empty(t, commentRepo.comments)
}

func TestDeleteReplyLeavesSiblings(t *testing.T) {
	commentRepo, _, _, svc := newTestEnv(t)
	now := time.Now()
	commentRepo.comments[10] = &model.Comment{ID: 10, PostID: 100, UserID: 1, CreatedAt: now}
	commentRepo.comments[11] = &model.Comment{ID: 11, PostID: 100, UserID: 1, RootID: 10, ParentID: 10, CreatedAt: now}
	commentRepo.comments[12] = &model.Comment{ID: 12, PostID: 100, UserID: 1, RootID: 10, ParentID: 10, CreatedAt: now}

	res, err := svc.DeleteComment(context.Background(), 1, 11)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.DeletedCount)
	assert.Contains(t, commentRepo.comments, uint64(10))
	assert.Contains(t, commentRepo.comments, uint64(12))
}

func TestDeleteCommentInvalidatesUnreadCache(t *testing.T) {
	_, _, _, svc := newTestEnv(t)
	ctx := context.Background()

	created, err := svc.CreateComment(ctx, 1, &dto.CommentCreateReq{
		PostID:  100,
		Content: "@b.user hi",
	})
	require.NoError(t, err)

	// 模拟接收人在删除前读过一次未读数，缓存已回填
	key := consts.NotifyUnreadKey + "2"
	require.NoError(t, redis.SetWithExpiration(ctx, key, int64(1), time.Hour))

	_, err = svc.DeleteComment(ctx, 1, created.ID)
	require.NoError(t, err)

	// 通知被级联删除后，接收人的未读数缓存必须一并失效
	_, err = redis.GetInt64(ctx, key)
	assert.ErrorIs(t, err, goredis.Nil)
}

func TestGetCommentsByPostIDGrouping(t *testing.T) {
	commentRepo, _, _, svc := newTestEnv(t)
	now := time.Now()
	commentRepo.comments[1] = &model.Comment{ID: 1, PostID: 100, UserID: 1, Content: "first", CreatedAt: now}
	commentRepo.comments[2] = &model.Comment{ID: 2, PostID: 100, UserID: 2, Content: "reply to first", RootID: 1, ParentID: 1, CreatedAt: now.Add(time.Second)}
	commentRepo.comments[3] = &model.Comment{ID: 3, PostID: 100, UserID: 1, Content: "reply to reply", RootID: 1, ParentID: 2, CreatedAt: now.Add(2 * time.Second)}
	commentRepo.comments[4] = &model.Comment{ID: 4, PostID: 100, UserID: 2, Content: "second", CreatedAt: now.Add(3 * time.Second)}
	// 孤儿回复，根不存在，应被剔除
	commentRepo.comments[5] = &model.Comment{ID: 5, PostID: 100, UserID: 1, Content: "orphan", RootID: 999, ParentID: 999, CreatedAt: now}

	res, err := svc.GetCommentsByPostID(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, res, 2)

	byID := make(map[uint64]*dto.CommentDTO, len(res))
	for _, c := range res {
		byID[c.ID] = c
	}

	first := byID[1]
	require.NotNil(t, first)
	assert.Equal(t, int64(2), first.ReplyCount)
	require.Len(t, first.Replies, 2)
	assert.Equal(t, "阿明", first.Nickname)

	// 回复按 created_at 排在组内，标签指向被回复者昵称
	assert.Equal(t, uint64(2), first.Replies[0].ID)
	assert.Equal(t, "阿明", first.Replies[0].ReplyToNickname)
	assert.Equal(t, uint64(3), first.Replies[1].ID)
	assert.Equal(t, "小北", first.Replies[1].ReplyToNickname)

	second := byID[4]
	require.NotNil(t, second)
	assert.Equal(t, int64(0), second.ReplyCount)
	assert.Empty(t, second.Replies)
}

func TestGetPostCommentCountCache(t *testing.T) {
	commentRepo, _, _, svc := newTestEnv(t)
	ctx := context.Background()
	now := time.Now()
	commentRepo.comments[1] = &model.Comment{ID: 1, PostID: 100, UserID: 1, CreatedAt: now}
	commentRepo.comments[2] = &model.Comment{ID: 2, PostID: 100, UserID: 2, CreatedAt: now}

	count, err := svc.GetPostCommentCount(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// 绕过服务直接改库，命中缓存时仍返回旧值
	commentRepo.comments[3] = &model.Comment{ID: 3, PostID: 100, UserID: 1, CreatedAt: now}
	count, err = svc.GetPostCommentCount(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// 同步任务用真值覆盖缓存
	require.NoError(t, svc.SyncPostCommentCount(ctx, 100))
	count, err = svc.GetPostCommentCount(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
