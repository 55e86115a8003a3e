package handler

import (
	"net/http"
	"red-social-server/internal/common/httpx"
	"red-social-server/internal/config"
	"red-social-server/internal/service"
	"red-social-server/internal/utils"

	"github.com/gin-gonic/gin"
)

func Register(c *gin.Context) {
	var req struct {
		Username      string `json:"username" binding:"required"`
		Email         string `json:"email" binding:"required"`
		Name          string `json:"name"`
		Password      string `json:"password" binding:"required"`
		CaptchaID     string `json:"captcha_id"`
		CaptchaAnswer string `json:"captcha_answer"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数格式错误"})
		return
	}

	if config.Get().Captcha.Enabled {
		if !utils.VerifyCaptcha(req.CaptchaID, req.CaptchaAnswer) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "验证码错误"})
			return
		}
	}

	user, token, err := service.RegisterUser(req.Username, req.Email, req.Name, req.Password)
	if err != nil {
		httpx.WriteServiceError(c, err, "注册失败，请稍后重试")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "注册成功",
		"token":   token,
		"user":    service.NewUserBrief(user),
	})
}

func Login(c *gin.Context) {
	var req struct {
		Identifier    string `json:"identifier" binding:"required"`
		Password      string `json:"password" binding:"required"`
		CaptchaID     string `json:"captcha_id"`
		CaptchaAnswer string `json:"captcha_answer"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误"})
		return
	}

	if config.Get().Captcha.Enabled {
		if !utils.VerifyCaptcha(req.CaptchaID, req.CaptchaAnswer) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "验证码错误"})
			return
		}
	}

	user, token, err := service.LoginUser(req.Identifier, req.Password)
	if err != nil {
		httpx.WriteServiceError(c, err, "登录失败，请稍后重试")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "登录成功",
		"token":   token,
		"user":    service.NewUserBrief(user),
	})
}

// GoogleAuthURL 返回 Google 授权跳转地址
func GoogleAuthURL(c *gin.Context) {
	state := c.Query("state")
	url, err := service.GoogleAuthURL(c.Request.Context(), state)
	if err != nil {
		httpx.WriteServiceError(c, err, "Google 登录暂不可用")
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// GoogleCallback 用授权码完成 Google 登录
func GoogleCallback(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误"})
		return
	}

	user, token, err := service.LoginWithGoogle(c.Request.Context(), req.Code)
	if err != nil {
		httpx.WriteServiceError(c, err, "Google 登录失败，请稍后重试")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "登录成功",
		"token":   token,
		"user":    service.NewUserBrief(user),
	})
}

// Me 返回当前登录用户的主页信息
func Me(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	username, _ := c.Get("username")
	name, _ := username.(string)

	profile, err := service.GetUserProfile(name, uid)
	if err != nil {
		httpx.WriteServiceError(c, err, "查询用户信息失败")
		return
	}
	c.JSON(http.StatusOK, profile)
}
