package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"

	"github.com/zcamb1/S-Connect-sub000/internal/api/dto"
	"github.com/zcamb1/S-Connect-sub000/internal/model"
	"github.com/zcamb1/S-Connect-sub000/internal/pkg/consts"
	"github.com/zcamb1/S-Connect-sub000/internal/pkg/minio"
	"github.com/zcamb1/S-Connect-sub000/internal/pkg/redis"
	"github.com/zcamb1/S-Connect-sub000/internal/pkg/thread"
	"github.com/zcamb1/S-Connect-sub000/internal/pkg/util"
	"github.com/zcamb1/S-Connect-sub000/internal/repository"
)

type CommentService interface {
	CreateComment(ctx context.Context, userID uint64, req *dto.CommentCreateReq) (*dto.CommentCreatedDTO, error)
	DeleteComment(ctx context.Context, userID, commentID uint64) (*dto.CommentDeleteDTO, error)
	GetCommentsByPostID(ctx context.Context, postID uint64) ([]*dto.CommentDTO, error)
	GetPostCommentCount(ctx context.Context, postID uint64) (int64, error)
	SyncPostCommentCount(ctx context.Context, postID uint64) error
}

type commentServiceImpl struct {
	commentRepo repository.CommentRepo
	postRepo    repository.PostRepo
	userRepo    repository.UserRepo
	friendRepo  repository.FriendRepo
}

const countCacheExpiration = 7 * 24 * time.Hour

func NewCommentService(
	commentRepo repository.CommentRepo,
	postRepo repository.PostRepo,
	userRepo repository.UserRepo,
	friendRepo repository.FriendRepo,
) CommentService {
	return &commentServiceImpl{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		userRepo:    userRepo,
		friendRepo:  friendRepo,
	}
}

func (s *commentServiceImpl) CreateComment(ctx context.Context, userID uint64, req *dto.CommentCreateReq) (*dto.CommentCreatedDTO, error) {
	// 校验全部通过之前不产生任何写入
	if req.Content == "" && len(req.ImageData) == 0 {
		return nil, ErrCommentContentEmpty
	}
	if utf8.RuneCountInString(req.Content) > consts.CommentMaxLength {
		return nil, ErrCommentTooLong
	}

	post, err := s.postRepo.GetPost(ctx, req.PostID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	candidates := util.ExtractMentions(req.Content)
	if len(candidates) > consts.MaxMentionCandidates {
		return nil, ErrCommentMentionLimit
	}

	var rootID, parentID uint64
	if req.ParentID > 0 {
		parent, err := s.commentRepo.GetCommentByID(ctx, req.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil || parent.PostID != req.PostID {
			return nil, ErrPostCommentNotFound
		}
		parentID = parent.ID
		rootID = thread.ResolveRootID(parent)
	}

	mentions, notifications, err := s.authorizeMentions(ctx, userID, req.Content, candidates)
	if err != nil {
		return nil, err
	}

	imageKey, err := s.uploadImage(ctx, req)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{
		PostID:    req.PostID,
		UserID:    userID,
		Content:   req.Content,
		ImageURL:  imageKey,
		RootID:    rootID,
		ParentID:  parentID,
		CreatedAt: time.Now(),
	}

	if err := s.commentRepo.CreateWithMentions(ctx, comment, mentions, notifications); err != nil {
		if imageKey != "" {
			go func() {
				_ = minio.DeleteFile(context.Background(), imageKey)
			}()
		}
		if errors.Is(err, repository.ErrRateLimitExceeded) {
			return nil, ErrCommentRateLimited
		}
		return nil, err
	}

	s.invalidateCountCache(ctx, req.PostID)
	for _, n := range notifications {
		_ = redis.DeleteKey(ctx, consts.NotifyUnreadKey+strconv.FormatUint(n.UserID, 10))
	}

	return &dto.CommentCreatedDTO{
		ID:        comment.ID,
		Content:   comment.Content,
		ImageURL:  minio.GetPublicURL(comment.ImageURL),
		RootID:    comment.RootID,
		ParentID:  comment.ParentID,
		CreatedAt: comment.CreatedAt.UTC().Format(time.RFC3339),
	}, nil
}

// authorizeMentions 把 @ 候选过滤成可落库的提及和通知。
// 解析不到账号或不在作者好友集内的候选静默丢弃，内容中的字面 @ 不受影响。
func (s *commentServiceImpl) authorizeMentions(ctx context.Context, authorID uint64, content string, candidates []util.MentionCandidate) ([]*model.CommentMention, []*model.Notification, error) {
	if len(candidates) == 0 {
		return nil, nil, nil
	}

	names := make([]string, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		if _, ok := seen[c.Username]; ok {
			continue
		}
		seen[c.Username] = struct{}{}
		names = append(names, c.Username)
	}

	users, err := s.userRepo.GetUsersByUsernames(ctx, names)
	if err != nil {
		return nil, nil, err
	}
	byName := make(map[string]*model.User, len(users))
	for _, u := range users {
		if u.Username != nil {
			byName[*u.Username] = u
		}
	}

	friendIDs, err := s.friendRepo.GetFriendIDs(ctx, authorID)
	if err != nil {
		return nil, nil, err
	}
	friendSet := make(map[uint64]struct{}, len(friendIDs))
	for _, id := range friendIDs {
		friendSet[id] = struct{}{}
	}

	author, err := s.userRepo.GetUserById(ctx, authorID)
	if err != nil {
		return nil, nil, err
	}
	if author == nil {
		return nil, nil, ErrUserNotFound
	}

	now := time.Now()
	var mentions []*model.CommentMention
	var notifications []*model.Notification
	for _, c := range candidates {
		u, ok := byName[c.Username]
		if !ok {
			continue
		}
		if _, ok := friendSet[u.ID]; !ok {
			continue
		}

		mentions = append(mentions, &model.CommentMention{
			UserID:    u.ID,
			Username:  c.Username,
			Position:  c.Position,
			CreatedAt: now,
		})
		notifications = append(notifications, &model.Notification{
			UserID:    u.ID,
			Type:      model.NotificationTypeMention,
			Title:     "新的提及",
			Message:   fmt.Sprintf("%s 在评论中提到了你：%s", author.UserDetail.Nickname, snippet(content, 50)),
			CreatedAt: now,
		})
	}
	return mentions, notifications, nil
}

func (s *commentServiceImpl) uploadImage(ctx context.Context, req *dto.CommentCreateReq) (string, error) {
	if len(req.ImageData) == 0 {
		return "", nil
	}
	objectName := time.Now().Format("2006/01/02/") + uuid.NewString() + ".jpg"
	return minio.UploadFile(ctx, objectName, bytes.NewReader(req.ImageData), int64(len(req.ImageData)), req.ImageMime)
}

func (s *commentServiceImpl) DeleteComment(ctx context.Context, userID, commentID uint64) (*dto.CommentDeleteDTO, error) {
	comment, err := s.commentRepo.GetCommentByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, ErrPostCommentNotFound
	}
	if comment.UserID != userID {
		return nil, ErrCommentNotOwner
	}

	deleted, recipientIDs, err := s.commentRepo.DeleteCascade(ctx, commentID)
	if err != nil {
		return nil, err
	}

	var imageKeys []string
	for _, c := range deleted {
		if c.ImageURL != "" {
			imageKeys = append(imageKeys, c.ImageURL)
		}
	}
	if len(imageKeys) > 0 {
		go func() {
			bgCtx := context.Background()
			for _, key := range imageKeys {
				_ = minio.DeleteFile(bgCtx, key)
			}
			log.Info("comment image resources cleaned up", "commentID", commentID, "count", len(imageKeys))
		}()
	}

	s.invalidateCountCache(ctx, comment.PostID)
	// 级联删掉的提及通知也要带走接收人的未读数缓存
	for _, uid := range recipientIDs {
		_ = redis.DeleteKey(ctx, consts.NotifyUnreadKey+strconv.FormatUint(uid, 10))
	}

	return &dto.CommentDeleteDTO{
		Success:      true,
		DeletedCount: int64(len(deleted)),
	}, nil
}

func (s *commentServiceImpl) GetCommentsByPostID(ctx context.Context, postID uint64) ([]*dto.CommentDTO, error) {
	rows, err := s.commentRepo.ListByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}

	groups, orphans := thread.BuildGroups(rows)
	if len(orphans) > 0 {
		// 回复找不到根属于数据完整性问题，剔除后不对客户端暴露
		log.WarnContext(ctx, "orphaned replies excluded from comment thread",
			"postID", postID, "commentIDs", orphans)
	}

	detailMap, err := s.loadUserDetails(ctx, rows)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint64]*model.Comment, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}

	res := make([]*dto.CommentDTO, 0, len(groups))
	for _, g := range groups {
		rootDTO := s.convertToCommentDTO(g.Root, detailMap, byID)
		rootDTO.ReplyCount = int64(len(g.Replies))

		if len(g.Replies) > 0 {
			rootDTO.Replies = make([]*dto.CommentDTO, 0, len(g.Replies))
			for _, reply := range g.Replies {
				rootDTO.Replies = append(rootDTO.Replies, s.convertToCommentDTO(reply, detailMap, byID))
			}
		}
		res = append(res, rootDTO)
	}
	return res, nil
}

func (s *commentServiceImpl) loadUserDetails(ctx context.Context, rows []*model.Comment) (map[uint64]*model.UserDetail, error) {
	idSet := make(map[uint64]struct{}, len(rows))
	ids := make([]uint64, 0, len(rows))
	for _, row := range rows {
		if _, ok := idSet[row.UserID]; ok {
			continue
		}
		idSet[row.UserID] = struct{}{}
		ids = append(ids, row.UserID)
	}

	details, err := s.userRepo.GetUserSimpleInfoByIds(ctx, ids)
	if err != nil {
		return nil, err
	}
	detailMap := make(map[uint64]*model.UserDetail, len(details))
	for _, d := range details {
		detailMap[d.UserID] = d
	}
	return detailMap, nil
}

func (s *commentServiceImpl) convertToCommentDTO(c *model.Comment, details map[uint64]*model.UserDetail, byID map[uint64]*model.Comment) *dto.CommentDTO {
	d := &dto.CommentDTO{}
	_ = copier.Copy(d, c)
	d.ImageURL = minio.GetPublicURL(c.ImageURL)
	d.CreatedAt = c.CreatedAt.UTC().Format(time.RFC3339)

	if detail, ok := details[c.UserID]; ok {
		d.Nickname = detail.Nickname
		avatar := detail.AvatarURL
		if avatar == "" {
			avatar = consts.DefaultAvatarURL
		}
		d.AvatarURL = minio.GetPublicURL(avatar)
	}

	// "回复 xx" 标签取父评论作者昵称
	if c.ParentID != 0 {
		if parent, ok := byID[c.ParentID]; ok {
			if detail, ok := details[parent.UserID]; ok {
				d.ReplyToNickname = detail.Nickname
			}
		}
	}
	return d
}

func (s *commentServiceImpl) GetPostCommentCount(ctx context.Context, postID uint64) (int64, error) {
	key := consts.PostCommentCountKey + strconv.FormatUint(postID, 10)
	count, err := redis.GetInt64(ctx, key)
	if err == nil {
		return count, nil
	}
	realCount, err := s.commentRepo.GetCommentCountByPostID(ctx, postID)
	if err != nil {
		return 0, err
	}
	_ = redis.SetWithExpiration(ctx, key, realCount, countCacheExpiration)
	return realCount, nil
}

// SyncPostCommentCount 用数据库真值覆盖缓存，由定时任务驱动
func (s *commentServiceImpl) SyncPostCommentCount(ctx context.Context, postID uint64) error {
	realCount, err := s.commentRepo.GetCommentCountByPostID(ctx, postID)
	if err != nil {
		return err
	}
	key := consts.PostCommentCountKey + strconv.FormatUint(postID, 10)
	return redis.SetWithExpiration(ctx, key, realCount, countCacheExpiration)
}

func (s *commentServiceImpl) invalidateCountCache(ctx context.Context, postID uint64) {
	key := consts.PostCommentCountKey + strconv.FormatUint(postID, 10)
	_ = redis.DeleteKey(ctx, key)
	_ = redis.SAdd(ctx, consts.PostCommentDirtyKey, strconv.FormatUint(postID, 10))
}

func snippet(content string, limit int) string {
	runes := []rune(content)
	if len(runes) <= limit {
		return content
	}
	return string(runes[:limit]) + "..."
}
