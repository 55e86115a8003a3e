package handler

import (
	"net/http"
	"red-social-server/internal/common/httpx"
	"red-social-server/internal/service"

	"github.com/gin-gonic/gin"
)

// GetUserProfile 个人主页，游客可访问
func GetUserProfile(c *gin.Context) {
	username := c.Param("username")
	viewerID := optionalUserID(c)

	profile, err := service.GetUserProfile(username, viewerID)
	if err != nil {
		httpx.WriteServiceError(c, err, "查询用户信息失败")
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GetUserPosts 用户主页的帖子列表
func GetUserPosts(c *gin.Context) {
	username := c.Param("username")
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", defaultFeedLimit)

	posts, err := service.ListUserPosts(username, page, limit)
	if err != nil {
		httpx.WriteServiceError(c, err, "查询帖子失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// UpdateProfile 更新展示名与简介
func UpdateProfile(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		Name *string `json:"name"`
		Bio  *string `json:"bio"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误"})
		return
	}

	user, err := service.UpdateProfile(uid, req.Name, req.Bio)
	if err != nil {
		httpx.WriteServiceError(c, err, "更新资料失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "资料已更新",
		"user":    service.NewUserBrief(user),
	})
}

// UpdateProfilePhoto 上传并替换头像
func UpdateProfilePhoto(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请选择图片文件"})
		return
	}

	key, err := service.UpdateProfilePhoto(uid, file)
	if err != nil {
		httpx.WriteServiceError(c, err, "更新头像失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "头像已更新",
		"image":   key,
	})
}

// SearchUsers 按用户名或展示名搜索
func SearchUsers(c *gin.Context) {
	q := c.Query("q")
	limit := queryInt(c, "limit", defaultFeedLimit)
	viewerID := optionalUserID(c)

	users, err := service.SearchUsers(q, limit, viewerID)
	if err != nil {
		httpx.WriteServiceError(c, err, "搜索用户失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// FollowUser 关注指定用户
func FollowUser(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	username := c.Param("username")

	if err := service.FollowUser(uid, username); err != nil {
		httpx.WriteServiceError(c, err, "关注失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "已关注", "isFollowing": true})
}

// UnfollowUser 取消关注
func UnfollowUser(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	username := c.Param("username")

	if err := service.UnfollowUser(uid, username); err != nil {
		httpx.WriteServiceError(c, err, "取消关注失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "已取消关注", "isFollowing": false})
}
