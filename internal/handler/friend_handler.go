package handler

import (
	"net/http"
	"red-social-server/internal/common/httpx"
	"red-social-server/internal/service"

	"github.com/gin-gonic/gin"
)

// SendFriendRequest 向指定用户发送好友申请
func SendFriendRequest(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		Username string `json:"username" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误"})
		return
	}

	request, err := service.SendFriendRequest(uid, req.Username)
	if err != nil {
		httpx.WriteServiceError(c, err, "发送好友申请失败")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"request": request})
}

// ListFriendRequests 收到与发出的待处理申请
func ListFriendRequests(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	received, err := service.ReceivedFriendRequests(uid)
	if err != nil {
		httpx.WriteServiceError(c, err, "查询好友申请失败")
		return
	}
	sent, err := service.SentFriendRequests(uid)
	if err != nil {
		httpx.WriteServiceError(c, err, "查询好友申请失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": received, "sent": sent})
}

// RespondFriendRequest 接受或拒绝好友申请
func RespondFriendRequest(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	requestID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Accept *bool `json:"accept" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Accept == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误"})
		return
	}

	request, err := service.RespondFriendRequest(uid, requestID, *req.Accept)
	if err != nil {
		httpx.WriteServiceError(c, err, "处理好友申请失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": request})
}

// ListFriends 互相关注的好友列表
func ListFriends(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	friends, err := service.ListFriends(uid)
	if err != nil {
		httpx.WriteServiceError(c, err, "查询好友失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"friends": friends})
}

// Unfriend 解除好友关系
func Unfriend(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	username := c.Param("username")

	if err := service.Unfriend(uid, username); err != nil {
		httpx.WriteServiceError(c, err, "解除好友失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "已解除好友关系"})
}
