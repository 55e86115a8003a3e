package handler

import (
	"net/http"
	"red-social-server/internal/utils"

	"github.com/gin-gonic/gin"
)

// GetCaptcha 生成一个图形验证码
func GetCaptcha(c *gin.Context) {
	id, b64s, _, err := utils.MakeCaptcha()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "生成验证码失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"captcha_id": id,
		"image":      b64s,
	})
}
