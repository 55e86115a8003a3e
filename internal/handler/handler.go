package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// currentUserID 从 JWT 中间件写入的上下文中取用户 ID。
// 返回 false 时已经写好了 401 响应。
func currentUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get("id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "未获取到用户信息"})
		return 0, false
	}
	uid, ok := userID.(uint)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "无效的用户ID类型"})
		return 0, false
	}
	return uid, true
}

// optionalUserID 游客接口里尝试取登录用户，取不到时返回 0。
func optionalUserID(c *gin.Context) uint {
	userID, exists := c.Get("id")
	if !exists {
		return 0
	}
	uid, _ := userID.(uint)
	return uid
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.DefaultQuery(key, "")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

// pathID 解析路径参数里的数字 ID，失败时写 400。
func pathID(c *gin.Context, name string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的 " + name})
		return 0, false
	}
	return uint(n), true
}
