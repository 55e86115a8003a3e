package handler

import (
	"net/http"
	"red-social-server/internal/common/httpx"
	"red-social-server/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	defaultFeedLimit    = 20
	defaultExploreLimit = 24
	maxPageLimit        = 50
)

func clampLimit(limit, fallback int) int {
	if limit < 1 || limit > maxPageLimit {
		return fallback
	}
	return limit
}

// GetFeed 个性化首页信息流
func GetFeed(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	page := queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	limit := clampLimit(queryInt(c, "limit", defaultFeedLimit), defaultFeedLimit)

	result, err := service.ComposeFeed(uid, page, limit)
	if err != nil {
		httpx.WriteServiceError(c, err, "获取信息流失败")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetSimpleFeed 仅关注者的时间线，按时间倒序
func GetSimpleFeed(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	page := queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	limit := clampLimit(queryInt(c, "limit", defaultFeedLimit), defaultFeedLimit)

	posts, err := service.SimpleFeed(uid, page, limit)
	if err != nil {
		httpx.WriteServiceError(c, err, "获取信息流失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// GetExplore 发现页，按 category 返回不同的候选组合
func GetExplore(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	page := queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	limit := clampLimit(queryInt(c, "limit", defaultExploreLimit), defaultExploreLimit)
	category := c.DefaultQuery("category", "")

	result, err := service.ComposeExplore(uid, page, limit, category)
	if err != nil {
		httpx.WriteServiceError(c, err, "获取发现页失败")
		return
	}
	c.JSON(http.StatusOK, result)
}
