package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	TooManyRequests     = 429
	InternalServerError = 500
)

var (
	ErrParamInvalid         = errors.New("参数错误")
	ErrUserNotFound         = errors.New("用户不存在")
	ErrPostNotFound         = errors.New("帖子不存在")
	ErrPostCommentNotFound  = errors.New("评论不存在")
	ErrCommentContentEmpty  = errors.New("评论内容不能为空")
	ErrCommentTooLong       = errors.New("评论内容过长")
	ErrCommentMentionLimit  = errors.New("单条评论最多提及5位用户")
	ErrCommentRateLimited   = errors.New("评论太频繁，请稍后再试")
	ErrCommentNotOwner      = errors.New("只能删除自己的评论")
	ErrCommentImageInvalid  = errors.New("不支持的图片格式")
	ErrNotificationNotFound = errors.New("通知不存在")
	ErrFriendSelf           = errors.New("不能添加自己为好友")
	ErrFriendExist          = errors.New("已经是好友")
	UnauthorizedError       = errors.New("权限不足")
	UnExpectedError         = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:         BadRequest,
	ErrUserNotFound:         NotFound,
	ErrPostNotFound:         NotFound,
	ErrPostCommentNotFound:  NotFound,
	ErrCommentContentEmpty:  BadRequest,
	ErrCommentTooLong:       BadRequest,
	ErrCommentMentionLimit:  BadRequest,
	ErrCommentRateLimited:   TooManyRequests,
	ErrCommentNotOwner:      Forbidden,
	ErrCommentImageInvalid:  BadRequest,
	ErrNotificationNotFound: NotFound,
	ErrFriendSelf:           BadRequest,
	ErrFriendExist:          BadRequest,
	UnauthorizedError:       Unauthorized,
	UnExpectedError:         InternalServerError,
}
