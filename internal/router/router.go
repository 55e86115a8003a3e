package router

import (
	"red-social-server/internal/config"
	"red-social-server/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func Init(r *gin.Engine) {
	// 注册全局安全标头中间件
	r.Use(middleware.SecurityHeaders())

	corsCfg := cors.DefaultConfig()
	origins := config.Get().CORS.AllowOrigins
	if len(origins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	api := r.Group("/api")
	// 应用请求体大小限制中间件
	api.Use(middleware.BodyLimitMiddleware())

	// 认证限流：多个路由复用同一个实例，保持行为一致
	authLimiter := middleware.AuthRateLimit()

	registerAuthRoutes(api, authLimiter)
	registerUploadRoutes(api)
	registerFeedRoutes(api)
	registerPostRoutes(api)
	registerUserRoutes(api)
	registerSocialRoutes(api)
}
