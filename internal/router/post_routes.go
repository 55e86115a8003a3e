package router

import (
	"red-social-server/internal/handler"
	"red-social-server/internal/middleware"

	"github.com/gin-gonic/gin"
)

func registerPostRoutes(api *gin.RouterGroup) {
	// 帖子详情、评论列表、搜索对游客开放
	api.GET("/posts/search", handler.SearchPosts)
	api.GET("/posts/:id", handler.GetPost)
	api.GET("/posts/:id/comments", handler.ListComments)

	posts := api.Group("/posts")
	posts.Use(middleware.JWTAuth())
	posts.Use(middleware.ActiveUserCheck())

	posts.POST("/:id/like", handler.LikePost)
	posts.DELETE("/:id/like", handler.UnlikePost)
	posts.GET("/:id/like", handler.GetLikeStatus)
	posts.POST("/:id/comments", handler.AddComment)
	posts.DELETE("/:id/comments/:commentId", handler.DeleteComment)
}
