package handler

import (
	"net/http"
	"red-social-server/internal/common/httpx"
	"red-social-server/internal/service"

	"github.com/gin-gonic/gin"
)

// ListNotifications 最近的通知列表
func ListNotifications(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	notifications, err := service.ListNotifications(uid)
	if err != nil {
		httpx.WriteServiceError(c, err, "查询通知失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// GetUnreadCount 未读通知数
func GetUnreadCount(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	count, err := service.UnreadNotificationCount(uid)
	if err != nil {
		httpx.WriteServiceError(c, err, "查询通知失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}

// MarkAllRead 全部标记已读
func MarkAllRead(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := service.MarkAllNotificationsRead(uid); err != nil {
		httpx.WriteServiceError(c, err, "更新通知失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "已全部标记为已读"})
}
