package router

import (
	"red-social-server/internal/handler"
	"red-social-server/internal/middleware"

	"github.com/gin-gonic/gin"
)

func registerUserRoutes(api *gin.RouterGroup) {
	// 个人主页与搜索对游客开放，登录后附带关注状态
	api.GET("/users/search", middleware.OptionalJWTAuth(), handler.SearchUsers)
	api.GET("/users/:username", middleware.OptionalJWTAuth(), handler.GetUserProfile)
	api.GET("/users/:username/posts", handler.GetUserPosts)

	me := api.Group("/me")
	me.Use(middleware.JWTAuth())
	me.Use(middleware.ActiveUserCheck())

	uploadLimiter := middleware.UploadRateLimit()
	uploadBodyLimit := middleware.UploadBodyLimitMiddleware()

	me.GET("", handler.Me)
	me.PATCH("/profile", handler.UpdateProfile)
	me.PATCH("/photo", uploadBodyLimit, uploadLimiter, handler.UpdateProfilePhoto)
}
