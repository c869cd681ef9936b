package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/zcamb1/S-Connect-sub000/internal/pkg/response"
	"github.com/zcamb1/S-Connect-sub000/internal/service"
)

type FriendHandler struct {
	friendSvc service.FriendService
}

func NewFriendHandler(friendSvc service.FriendService) *FriendHandler {
	return &FriendHandler{
		friendSvc: friendSvc,
	}
}

// SearchFriends @ 选择器的好友检索，query 为空时返回好友列表前若干条
func (s *FriendHandler) SearchFriends(c *gin.Context) {
	userID := c.GetUint64("user_id")

	query := c.Query("query")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	res, err := s.friendSvc.SearchFriends(c.Request.Context(), userID, query, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *FriendHandler) AddFriend(c *gin.Context) {
	userID := c.GetUint64("user_id")

	friendIDStr := c.Param("friend_id")
	friendID, err := strconv.ParseUint(friendIDStr, 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	if err := s.friendSvc.AddFriend(c.Request.Context(), userID, friendID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *FriendHandler) RemoveFriend(c *gin.Context) {
	userID := c.GetUint64("user_id")

	friendIDStr := c.Param("friend_id")
	friendID, err := strconv.ParseUint(friendIDStr, 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	if err := s.friendSvc.RemoveFriend(c.Request.Context(), userID, friendID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
