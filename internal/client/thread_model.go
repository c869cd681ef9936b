package client

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zcamb1/S-Connect-sub000/internal/api/dto"
)

// ErrSubmitInFlight 已有一次发布在途，新的发布请求被拒绝
var ErrSubmitInFlight = errors.New("another comment submit is in flight")

// CommentAPI ThreadModel 依赖的接口子集
type CommentAPI interface {
	ListComments(ctx context.Context, postID uint64) ([]*dto.CommentDTO, error)
	CreateComment(ctx context.Context, postID uint64, content string, parentID uint64, image []byte) (*dto.CommentCreatedDTO, error)
	DeleteComment(ctx context.Context, commentID uint64) (*dto.CommentDeleteDTO, error)
}

// Entry 平铺模型中的一条评论，顺序来自服务端分组结果
type Entry struct {
	ID        uint64
	RootID    uint64
	ParentID  uint64
	UserID    uint64
	Nickname  string
	Content   string
	ImageURL  string
	CreatedAt time.Time
}

// ThreadModel 单个帖子的评论权威内存模型。
// 所有变更走 丢弃旧快照 + 全量重拉 的路径，不做增量合并，
// 服务端返回什么就展示什么，彻底避免本地状态和服务端漂移。
type ThreadModel struct {
	api    CommentAPI
	postID uint64

	mu      sync.RWMutex
	entries []*Entry

	// 本会话内自己发出的评论，用于 "刚刚" 的展示覆盖
	localCreated map[uint64]time.Time

	inFlight atomic.Bool

	now func() time.Time
}

func NewThreadModel(api CommentAPI, postID uint64) *ThreadModel {
	return &ThreadModel{
		api:          api,
		postID:       postID,
		localCreated: make(map[uint64]time.Time),
		now:          time.Now,
	}
}

// Refresh 全量重拉并替换快照
func (s *ThreadModel) Refresh(ctx context.Context) error {
	comments, err := s.api.ListComments(ctx, s.postID)
	if err != nil {
		return err
	}

	entries := make([]*Entry, 0, len(comments))
	for _, root := range comments {
		entries = append(entries, toEntry(root))
		for _, reply := range root.Replies {
			entries = append(entries, toEntry(reply))
		}
	}

	s.mu.Lock()
	s.entries = entries
	// 过了 "刚刚" 窗口的本地记录不会再被用到，顺手清掉
	now := s.now()
	for id, createdAt := range s.localCreated {
		if now.Sub(createdAt) >= time.Minute {
			delete(s.localCreated, id)
		}
	}
	s.mu.Unlock()
	return nil
}

func toEntry(c *dto.CommentDTO) *Entry {
	createdAt, _ := time.Parse(time.RFC3339, c.CreatedAt)
	return &Entry{
		ID:        c.ID,
		RootID:    c.RootID,
		ParentID:  c.ParentID,
		UserID:    c.UserID,
		Nickname:  c.Nickname,
		Content:   c.Content,
		ImageURL:  c.ImageURL,
		CreatedAt: createdAt,
	}
}

// Submit 发布一级评论
func (s *ThreadModel) Submit(ctx context.Context, content string, image []byte) (*dto.CommentCreatedDTO, error) {
	return s.submit(ctx, content, 0, image)
}

// SubmitReply 回复某条评论
func (s *ThreadModel) SubmitReply(ctx context.Context, parentID uint64, content string, image []byte) (*dto.CommentCreatedDTO, error) {
	return s.submit(ctx, content, parentID, image)
}

func (s *ThreadModel) submit(ctx context.Context, content string, parentID uint64, image []byte) (*dto.CommentCreatedDTO, error) {
	// 同一时刻至多一次在途发布，重复点击直接拒绝
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSubmitInFlight
	}
	defer s.inFlight.Store(false)

	created, err := s.api.CreateComment(ctx, s.postID, content, parentID, image)
	if err != nil {
		// 服务端拒绝对本次操作是终态，不自动重试
		return nil, err
	}

	s.mu.Lock()
	s.localCreated[created.ID] = s.now()
	s.mu.Unlock()

	if err := s.Refresh(ctx); err != nil {
		return created, err
	}
	return created, nil
}

// Delete 删除评论后全量重拉
func (s *ThreadModel) Delete(ctx context.Context, commentID uint64) (*dto.CommentDeleteDTO, error) {
	res, err := s.api.DeleteComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if err := s.Refresh(ctx); err != nil {
		return res, err
	}
	return res, nil
}

// Entries 当前快照副本
func (s *ThreadModel) Entries() []*Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]*Entry, len(s.entries))
	copy(res, s.entries)
	return res
}

// ReplyCount 按需从平铺列表推导，不存储
func (s *ThreadModel) ReplyCount(rootID uint64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, e := range s.entries {
		if e.RootID == rootID {
			count++
		}
	}
	return count
}

// ReplyingTo 返回被回复评论作者的昵称，父级不存在或是一级评论时返回空串
func (s *ThreadModel) ReplyingTo(commentID uint64) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var target *Entry
	for _, e := range s.entries {
		if e.ID == commentID {
			target = e
			break
		}
	}
	if target == nil || target.ParentID == 0 {
		return ""
	}
	for _, e := range s.entries {
		if e.ID == target.ParentID {
			return e.Nickname
		}
	}
	return ""
}

// DisplayTime 本会话 60 秒内自己发布的评论显示 "刚刚"，纯展示层覆盖
func (s *ThreadModel) DisplayTime(commentID uint64) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	if createdAt, ok := s.localCreated[commentID]; ok && now.Sub(createdAt) < time.Minute {
		return "刚刚"
	}
	for _, e := range s.entries {
		if e.ID == commentID {
			return e.CreatedAt.Local().Format("2006-01-02 15:04")
		}
	}
	return ""
}
