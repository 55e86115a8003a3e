package handler

import (
	"net/http"
	"red-social-server/internal/common/httpx"
	"red-social-server/internal/service"

	"github.com/gin-gonic/gin"
)

// OpenConversation 查找或创建与指定用户的会话
func OpenConversation(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		UserID uint `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误"})
		return
	}

	conv, err := service.OpenConversation(uid, req.UserID)
	if err != nil {
		httpx.WriteServiceError(c, err, "创建会话失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversation": conv})
}

// ListConversations 当前用户的会话列表
func ListConversations(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	convs, err := service.ListConversations(uid)
	if err != nil {
		httpx.WriteServiceError(c, err, "查询会话失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": convs})
}

// ListMessages 会话里最近的消息
func ListMessages(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	convID, ok := pathID(c, "id")
	if !ok {
		return
	}

	messages, err := service.ListMessages(uid, convID)
	if err != nil {
		httpx.WriteServiceError(c, err, "查询消息失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// SendMessage 在会话中发消息，可附带分享的帖子
func SendMessage(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	convID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Body         string `json:"body"`
		SharedPostID *uint  `json:"shared_post_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误"})
		return
	}

	msg, err := service.SendMessage(uid, convID, req.Body, req.SharedPostID)
	if err != nil {
		httpx.WriteServiceError(c, err, "发送消息失败")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

// SendDirect 按用户名直发消息，必要时自动创建会话
func SendDirect(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		Username     string `json:"username" binding:"required"`
		Body         string `json:"body"`
		SharedPostID *uint  `json:"shared_post_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误"})
		return
	}

	msg, err := service.SendDirect(uid, req.Username, req.Body, req.SharedPostID)
	if err != nil {
		httpx.WriteServiceError(c, err, "发送消息失败")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

// SetTyping 标记正在输入，短时间后自动过期
func SetTyping(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	convID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := service.SetTyping(uid, convID); err != nil {
		httpx.WriteServiceError(c, err, "更新输入状态失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

// GetTyping 会话中正在输入的其他用户
func GetTyping(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	convID, ok := pathID(c, "id")
	if !ok {
		return
	}

	typing, err := service.TypingUsers(uid, convID)
	if err != nil {
		httpx.WriteServiceError(c, err, "查询输入状态失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"typing": typing})
}
