package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"red-social-server/internal/common"
	"red-social-server/internal/config"
	"red-social-server/internal/db"
	"red-social-server/internal/model"
	"strings"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

var (
	googleOnce     sync.Once
	googleProvider *oidc.Provider
	googleInitErr  error
)

type googleClaims struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func googleOIDC(ctx context.Context) (*oidc.Provider, error) {
	googleOnce.Do(func() {
		cfg := config.Get()
		issuer := cfg.OAuth.GoogleIssuerURL
		if issuer == "" {
			issuer = "https://accounts.google.com"
		}
		googleProvider, googleInitErr = oidc.NewProvider(ctx, issuer)
		if googleInitErr != nil {
			log.Printf("❌ 初始化 Google OIDC Provider 失败: %v", googleInitErr)
		}
	})
	return googleProvider, googleInitErr
}

// GoogleAuthURL 生成 Google 授权跳转地址
func GoogleAuthURL(ctx context.Context, state string) (string, error) {
	provider, err := googleOIDC(ctx)
	if err != nil {
		return "", common.NewServiceError(common.ErrorCodeInternal, "Google 登录暂不可用")
	}
	cfg := config.Get()
	ocfg := oauth2.Config{
		ClientID:     cfg.OAuth.GoogleClientID,
		ClientSecret: cfg.OAuth.GoogleClientSecret,
		RedirectURL:  cfg.OAuth.GoogleRedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}
	return ocfg.AuthCodeURL(state), nil
}

// LoginWithGoogle 用授权码换取 ID Token，校验后查找或创建本地用户
func LoginWithGoogle(ctx context.Context, code string) (*model.User, string, error) {
	if code == "" {
		return nil, "", common.NewServiceError(common.ErrorCodeValidation, "缺少授权码")
	}

	provider, err := googleOIDC(ctx)
	if err != nil {
		return nil, "", common.NewServiceError(common.ErrorCodeInternal, "Google 登录暂不可用")
	}

	cfg := config.Get()
	ocfg := oauth2.Config{
		ClientID:     cfg.OAuth.GoogleClientID,
		ClientSecret: cfg.OAuth.GoogleClientSecret,
		RedirectURL:  cfg.OAuth.GoogleRedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}

	token, err := ocfg.Exchange(ctx, code)
	if err != nil {
		return nil, "", common.NewServiceError(common.ErrorCodeUnauthorized, "授权码无效")
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, "", common.NewServiceError(common.ErrorCodeUnauthorized, "缺少 ID Token")
	}

	verifier := provider.Verifier(&oidc.Config{ClientID: cfg.OAuth.GoogleClientID})
	idToken, err := verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, "", common.NewServiceError(common.ErrorCodeUnauthorized, "ID Token 校验失败")
	}

	var claims googleClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, "", common.NewServiceError(common.ErrorCodeUnauthorized, "ID Token 解析失败")
	}
	if claims.Email == "" || !claims.EmailVerified {
		return nil, "", common.NewServiceError(common.ErrorCodeForbidden, "Google 邮箱未验证")
	}

	user, err := findOrCreateGoogleUser(&claims)
	if err != nil {
		return nil, "", err
	}

	now := time.Now()
	_ = db.DB.Model(user).Update("last_login", now).Error

	jwtToken, err := issueLoginToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, jwtToken, nil
}

func findOrCreateGoogleUser(claims *googleClaims) (*model.User, error) {
	email := strings.ToLower(claims.Email)

	var user model.User
	err := db.DB.Where("google_sub = ?", claims.Sub).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "查询用户失败")
	}

	// 同邮箱的本地账号直接绑定
	err = db.DB.Where("email = ?", email).First(&user).Error
	if err == nil {
		updates := map[string]any{"google_sub": claims.Sub, "is_verified": true}
		if err := db.DB.Model(&user).Updates(updates).Error; err != nil {
			return nil, common.NewServiceError(common.ErrorCodeRetrieval, "绑定 Google 账号失败")
		}
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "查询用户失败")
	}

	name := claims.Name
	if name == "" {
		name = strings.Split(email, "@")[0]
	}
	user = model.User{
		Username:     generateGoogleUsername(email),
		Email:        email,
		Name:         name,
		ProfileImage: claims.Picture,
		GoogleSub:    claims.Sub,
		IsActive:     true,
		IsVerified:   true,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "创建用户失败")
	}
	log.Printf("✅ 通过 Google 创建新用户: %s (uid=%d)", user.Username, user.ID)
	return &user, nil
}

// generateGoogleUsername 基于邮箱前缀生成唯一用户名，冲突则追加序号
func generateGoogleUsername(email string) string {
	base := strings.Split(email, "@")[0]
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			return r
		}
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return -1
	}, base)
	if len(base) < 3 {
		base = "user_" + base
	}
	if len(base) > 24 {
		base = base[:24]
	}

	candidate := base
	for i := 1; i < 100; i++ {
		var count int64
		if err := db.DB.Model(&model.User{}).Where("username = ?", candidate).Count(&count).Error; err != nil {
			break
		}
		if count == 0 {
			return candidate
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
	return fmt.Sprintf("%s_%d", base, time.Now().UnixMilli()%100000)
}
