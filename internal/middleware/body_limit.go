package middleware

import (
	"fmt"
	"net/http"
	"red-social-server/internal/config"
	"strings"

	"github.com/gin-gonic/gin"
)

// BodyLimitMiddleware 限制普通接口的请求体大小
func BodyLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 上传类接口由 UploadBodyLimitMiddleware 单独限制
		path := c.Request.URL.Path
		if strings.Contains(path, "/uploads") || strings.HasSuffix(path, "/photo") {
			c.Next()
			return
		}

		maxSizeMB := config.Get().RateLimit.BodyLimitMB
		if maxSizeMB <= 0 {
			maxSizeMB = 2
		}

		maxBytes := int64(maxSizeMB) * 1024 * 1024
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)

		c.Next()
	}
}

// UploadBodyLimitMiddleware 限制上传接口的请求体大小。
// multipart 开销留 1MB 余量，精确的单文件上限在服务层校验。
func UploadBodyLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		maxSizeMB := config.Get().Upload.MaxSizeMB
		if maxSizeMB <= 0 {
			maxSizeMB = 10
		}
		maxBytes := int64(maxSizeMB+1) * 1024 * 1024

		if c.Request.ContentLength > maxBytes && c.Request.ContentLength != -1 {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("文件大小不能超过 %dMB", maxSizeMB)})
			c.Abort()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
