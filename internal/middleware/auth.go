package middleware

import (
	"context"
	"net/http"
	"red-social-server/internal/db"
	"red-social-server/internal/model"
	"red-social-server/internal/service"
	"red-social-server/internal/utils"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	// statusCache 缓存用户激活状态，减少数据库查询
	// Key: userID (uint), Value: cachedStatus
	statusCache sync.Map
)

const statusCacheTTL = 1 * time.Minute

type cachedStatus struct {
	Active    bool
	ExpiresAt time.Time
}

// ClearUserStatusCache 清除指定用户的状态缓存
func ClearUserStatusCache(userID uint) {
	statusCache.Delete(userID)

	if redisClient := service.GetRedisClient(); redisClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		key := service.RedisKey("auth", "user_status", strconv.FormatUint(uint64(userID), 10))
		_ = redisClient.Del(ctx, key).Err()
	}
}

func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 获取请求头 Authorization
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "需要认证才能访问"})
			c.Abort()
			return
		}

		// 检查格式是否为 "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token 格式错误"})
			c.Abort()
			return
		}

		// 解析 Token
		claims, err := utils.ParseLoginToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token 无效或已过期"})
			c.Abort()
			return
		}

		c.Set("id", claims.ID)
		c.Set("username", claims.Username)
		c.Set("email", claims.Email)
		c.Next()
	}
}

// OptionalJWTAuth 尝试解析 Token 但不强制要求，未登录时照常放行。
// 用于个人主页、搜索等对游客开放但登录后有额外信息的接口。
func OptionalJWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			if claims, err := utils.ParseLoginToken(parts[1]); err == nil {
				c.Set("id", claims.ID)
				c.Set("username", claims.Username)
				c.Set("email", claims.Email)
			}
		}
		c.Next()
	}
}

// ActiveUserCheck 检查账号是否被停用
func ActiveUserCheck() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "未获取到用户信息"})
			c.Abort()
			return
		}

		uid, ok := userID.(uint)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "无效的用户ID类型"})
			c.Abort()
			return
		}

		var (
			active      bool
			statusFound bool
		)

		// 优先从 Redis 读取
		if redisClient := service.GetRedisClient(); redisClient != nil {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()

			key := service.RedisKey("auth", "user_status", strconv.FormatUint(uint64(uid), 10))
			cachedValue, err := redisClient.Get(ctx, key).Result()
			if err == nil {
				active = cachedValue == "1"
				statusFound = true
				statusCache.Store(uid, cachedStatus{
					Active:    active,
					ExpiresAt: time.Now().Add(statusCacheTTL),
				})
			}
		}

		// Redis 未命中或不可用时，回退本地内存缓存
		if !statusFound {
			if val, ok := statusCache.Load(uid); ok {
				cached, typeOk := val.(cachedStatus)
				if typeOk {
					if time.Now().Before(cached.ExpiresAt) {
						active = cached.Active
						statusFound = true
					} else {
						statusCache.Delete(uid)
					}
				}
			}
		}

		// 缓存未命中或过期时查询数据库
		if !statusFound {
			var user model.User
			if err := db.DB.Select("is_active").First(&user, uid).Error; err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "用户不存在"})
				c.Abort()
				return
			}
			active = user.IsActive

			statusCache.Store(uid, cachedStatus{
				Active:    active,
				ExpiresAt: time.Now().Add(statusCacheTTL),
			})

			if redisClient := service.GetRedisClient(); redisClient != nil {
				ctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()

				key := service.RedisKey("auth", "user_status", strconv.FormatUint(uint64(uid), 10))
				value := "0"
				if active {
					value = "1"
				}
				_ = redisClient.Set(ctx, key, value, statusCacheTTL).Err()
			}
		}

		if !active {
			c.JSON(http.StatusForbidden, gin.H{"error": "账号已被停用"})
			c.Abort()
			return
		}

		c.Next()
	}
}
