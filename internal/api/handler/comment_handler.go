package handler

import (
	log "log/slog"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/zcamb1/S-Connect-sub000/internal/api/dto"
	"github.com/zcamb1/S-Connect-sub000/internal/pkg/response"
	"github.com/zcamb1/S-Connect-sub000/internal/pkg/util"
	"github.com/zcamb1/S-Connect-sub000/internal/service"
)

type CommentHandler struct {
	commentSvc service.CommentService
}

func NewCommentHandler(commentSvc service.CommentService) *CommentHandler {
	return &CommentHandler{
		commentSvc: commentSvc,
	}
}

// CreateComment 发布评论，multipart 表单，附图可选
func (s *CommentHandler) CreateComment(c *gin.Context) {
	userID := c.GetUint64("user_id")

	postIDStr := c.Param("post_id")
	postID, err := strconv.ParseUint(postIDStr, 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	req := &dto.CommentCreateReq{
		PostID:  postID,
		Content: c.PostForm("content"),
	}

	if parentStr := c.PostForm("parent_comment_id"); parentStr != "" {
		parentID, err := strconv.ParseUint(parentStr, 10, 64)
		if err != nil {
			response.Error(c, service.ErrParamInvalid)
			return
		}
		req.ParentID = parentID
	}

	if file, err := c.FormFile("image"); err == nil {
		reader, err := file.Open()
		if err != nil {
			response.Error(c, service.ErrCommentImageInvalid)
			return
		}
		defer func() { _ = reader.Close() }()

		data, mime, err := util.NormalizeImage(reader)
		if err != nil {
			log.WarnContext(c.Request.Context(), "comment image decode failed", "err", err)
			response.Error(c, service.ErrCommentImageInvalid)
			return
		}
		req.ImageData = data
		req.ImageMime = mime
	}

	res, err := s.commentSvc.CreateComment(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// ListComments 返回帖子的完整评论线索
func (s *CommentHandler) ListComments(c *gin.Context) {
	postIDStr := c.Param("post_id")
	postID, err := strconv.ParseUint(postIDStr, 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	comments, err := s.commentSvc.GetCommentsByPostID(c.Request.Context(), postID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, comments)
}

func (s *CommentHandler) GetCommentCount(c *gin.Context) {
	postIDStr := c.Param("post_id")
	postID, err := strconv.ParseUint(postIDStr, 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	count, err := s.commentSvc.GetPostCommentCount(c.Request.Context(), postID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, &dto.CommentCountDTO{PostID: postID, Count: count})
}

func (s *CommentHandler) DeleteComment(c *gin.Context) {
	userID := c.GetUint64("user_id")

	commentIDStr := c.Param("comment_id")
	commentID, err := strconv.ParseUint(commentIDStr, 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	res, err := s.commentSvc.DeleteComment(c.Request.Context(), userID, commentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
