package router

import (
	"red-social-server/internal/handler"
	"red-social-server/internal/middleware"

	"github.com/gin-gonic/gin"
)

func registerSocialRoutes(api *gin.RouterGroup) {
	social := api.Group("")
	social.Use(middleware.JWTAuth())
	social.Use(middleware.ActiveUserCheck())

	social.POST("/users/:username/follow", handler.FollowUser)
	social.DELETE("/users/:username/follow", handler.UnfollowUser)

	social.POST("/friends/requests", handler.SendFriendRequest)
	social.GET("/friends/requests", handler.ListFriendRequests)
	social.POST("/friends/requests/:id/respond", handler.RespondFriendRequest)
	social.GET("/friends", handler.ListFriends)
	social.DELETE("/friends/:username", handler.Unfriend)

	social.POST("/conversations", handler.OpenConversation)
	social.GET("/conversations", handler.ListConversations)
	social.GET("/conversations/:id/messages", handler.ListMessages)
	social.POST("/conversations/:id/messages", handler.SendMessage)
	social.POST("/messages/direct", handler.SendDirect)
	social.POST("/conversations/:id/typing", handler.SetTyping)
	social.GET("/conversations/:id/typing", handler.GetTyping)

	social.GET("/notifications", handler.ListNotifications)
	social.GET("/notifications/unread", handler.GetUnreadCount)
	social.POST("/notifications/read-all", handler.MarkAllRead)
}
