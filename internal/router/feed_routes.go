package router

import (
	"red-social-server/internal/handler"
	"red-social-server/internal/middleware"

	"github.com/gin-gonic/gin"
)

func registerFeedRoutes(api *gin.RouterGroup) {
	feed := api.Group("")
	feed.Use(middleware.JWTAuth())
	feed.Use(middleware.ActiveUserCheck())

	feed.GET("/feed", handler.GetFeed)
	feed.GET("/feed/following", handler.GetSimpleFeed)
	feed.GET("/explore", handler.GetExplore)

	// infinite 滚动客户端使用的别名路径
	feed.GET("/feed/infinite", handler.GetFeed)
	feed.GET("/explore/infinite", handler.GetExplore)
}
