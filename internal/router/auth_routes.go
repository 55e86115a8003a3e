package router

import (
	"red-social-server/internal/handler"

	"github.com/gin-gonic/gin"
)

func registerAuthRoutes(api *gin.RouterGroup, authLimiter gin.HandlerFunc) {
	api.POST("/auth/register", authLimiter, handler.Register)
	api.POST("/auth/login", authLimiter, handler.Login)

	api.GET("/auth/google/url", authLimiter, handler.GoogleAuthURL)
	api.POST("/auth/google/callback", authLimiter, handler.GoogleCallback)

	api.GET("/captcha", handler.GetCaptcha)
}
