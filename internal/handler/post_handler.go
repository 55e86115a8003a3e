package handler

import (
	"net/http"
	"red-social-server/internal/common/httpx"
	"red-social-server/internal/service"

	"github.com/gin-gonic/gin"
)

func GetPost(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	post, err := service.GetPost(postID)
	if err != nil {
		httpx.WriteServiceError(c, err, "查询帖子失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": service.NewPostView(post)})
}

func LikePost(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := service.LikePost(postID, uid); err != nil {
		httpx.WriteServiceError(c, err, "点赞失败")
		return
	}
	writeLikeStatus(c, postID, uid)
}

func UnlikePost(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := service.UnlikePost(postID, uid); err != nil {
		httpx.WriteServiceError(c, err, "取消点赞失败")
		return
	}
	writeLikeStatus(c, postID, uid)
}

func GetLikeStatus(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	writeLikeStatus(c, postID, uid)
}

func writeLikeStatus(c *gin.Context, postID, uid uint) {
	count, liked, err := service.LikeStatus(postID, uid)
	if err != nil {
		httpx.WriteServiceError(c, err, "查询点赞状态失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"likes": count, "liked": liked})
}

func AddComment(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Body string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "评论内容不能为空"})
		return
	}

	comment, err := service.AddComment(postID, uid, req.Body)
	if err != nil {
		httpx.WriteServiceError(c, err, "评论失败")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

func ListComments(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	comments, err := service.ListComments(postID)
	if err != nil {
		httpx.WriteServiceError(c, err, "查询评论失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

func DeleteComment(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	commentID, ok := pathID(c, "commentId")
	if !ok {
		return
	}

	if err := service.DeleteComment(commentID, uid); err != nil {
		httpx.WriteServiceError(c, err, "删除评论失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "评论已删除"})
}

// SearchPosts 按文案模糊搜索，空关键字返回最新帖子
func SearchPosts(c *gin.Context) {
	q := c.Query("q")
	limit := clampLimit(queryInt(c, "limit", defaultFeedLimit), defaultFeedLimit)

	posts, err := service.SearchPosts(q, limit)
	if err != nil {
		httpx.WriteServiceError(c, err, "搜索失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}
