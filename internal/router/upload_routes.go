package router

import (
	"red-social-server/internal/handler"
	"red-social-server/internal/middleware"

	"github.com/gin-gonic/gin"
)

func registerUploadRoutes(api *gin.RouterGroup) {
	uploads := api.Group("/uploads")
	uploads.Use(middleware.JWTAuth())
	uploads.Use(middleware.ActiveUserCheck())

	uploadLimiter := middleware.UploadRateLimit()
	uploadBodyLimit := middleware.UploadBodyLimitMiddleware()

	uploads.POST("/local", uploadBodyLimit, uploadLimiter, handler.UploadLocal)
	uploads.GET("/transformations", handler.TransformationsInfo)

	// 变换目录的别名路径
	api.GET("/transformations/info", middleware.JWTAuth(), middleware.ActiveUserCheck(), handler.TransformationsInfo)
}
