package service

import (
	"errors"
	"log"
	"red-social-server/internal/common"
	"red-social-server/internal/config"
	"red-social-server/internal/db"
	"red-social-server/internal/model"
	"red-social-server/internal/utils"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	// 登录失败次数达到上限后锁定账号
	maxLoginAttempts = 5
	lockDuration     = 2 * time.Hour

	bcryptCost = 12
)

// RegisterUser 注册新用户并签发登录 Token
func RegisterUser(username, email, name, password string) (*model.User, string, error) {
	if ok, msg := utils.ValidateUsername(username); !ok {
		return nil, "", common.NewServiceError(common.ErrorCodeValidation, msg)
	}
	if ok, msg := utils.ValidateEmail(email); !ok {
		return nil, "", common.NewServiceError(common.ErrorCodeValidation, msg)
	}
	if ok, msg := utils.ValidatePassword(password); !ok {
		return nil, "", common.NewServiceError(common.ErrorCodeValidation, msg)
	}
	if strings.TrimSpace(name) == "" {
		name = username
	}

	email = strings.ToLower(strings.TrimSpace(email))

	// 邮箱与用户名都要求唯一
	var count int64
	err := db.DB.Model(&model.User{}).
		Where("email = ? OR username = ?", email, username).
		Count(&count).Error
	if err != nil {
		return nil, "", common.NewServiceError(common.ErrorCodeRetrieval, "查询用户失败")
	}
	if count > 0 {
		return nil, "", common.NewServiceError(common.ErrorCodeConflict, "邮箱或用户名已被注册")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, "", common.NewServiceError(common.ErrorCodeInternal, "注册失败，请稍后重试")
	}

	user := model.User{
		Username:     username,
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		return nil, "", common.NewServiceError(common.ErrorCodeRetrieval, "注册失败，请稍后重试")
	}

	token, err := issueLoginToken(&user)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

// LoginUser identifier 可以是邮箱或用户名。
// 连续失败会累计计数并在达到上限后锁定账号一段时间。
func LoginUser(identifier, password string) (*model.User, string, error) {
	identifier = strings.TrimSpace(identifier)

	query := db.DB
	if strings.Contains(identifier, "@") {
		query = query.Where("email = ?", strings.ToLower(identifier))
	} else {
		query = query.Where("username = ?", identifier)
	}

	var user model.User
	err := query.First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", common.NewServiceError(common.ErrorCodeUnauthorized, "用户名或密码错误")
	}
	if err != nil {
		return nil, "", common.NewServiceError(common.ErrorCodeRetrieval, "查询用户失败")
	}

	if user.PasswordHash == "" {
		// OAuth 创建的账号没有密码
		return nil, "", common.NewServiceError(common.ErrorCodeUnauthorized, "用户名或密码错误")
	}

	if user.IsLocked() {
		return nil, "", common.NewServiceError(common.ErrorCodeLocked,
			"多次登录失败，账号已被临时锁定，请稍后再试")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		recordFailedLogin(&user)
		return nil, "", common.NewServiceError(common.ErrorCodeUnauthorized, "用户名或密码错误")
	}

	// 登录成功：清零失败计数并记录时间
	now := time.Now()
	updates := map[string]any{
		"failed_login_attempts": 0,
		"locked_until":          nil,
		"last_login":            now,
	}
	if err := db.DB.Model(&user).Updates(updates).Error; err != nil {
		log.Printf("⚠️ 更新登录状态失败 (uid=%d): %v", user.ID, err)
	}

	token, err := issueLoginToken(&user)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

// recordFailedLogin 失败计数，达到上限则锁定
func recordFailedLogin(user *model.User) {
	attempts := user.FailedLoginAttempts + 1
	updates := map[string]any{"failed_login_attempts": attempts}

	// 上一次锁定已过期则重新从 1 开始计数
	if user.LockedUntil != nil && user.LockedUntil.Before(time.Now()) {
		attempts = 1
		updates["failed_login_attempts"] = attempts
		updates["locked_until"] = nil
	}

	if attempts >= maxLoginAttempts {
		until := time.Now().Add(lockDuration)
		updates["locked_until"] = until
	}

	if err := db.DB.Model(user).Updates(updates).Error; err != nil {
		log.Printf("⚠️ 更新失败计数失败 (uid=%d): %v", user.ID, err)
	}
}

func issueLoginToken(user *model.User) (string, error) {
	if !user.IsActive {
		return "", common.NewServiceError(common.ErrorCodeForbidden, "该账号已被停用")
	}

	cfg := config.Get()
	token, err := utils.GenerateLoginToken(user.ID, user.Username, user.Email,
		time.Hour*time.Duration(cfg.JWT.ExpirationHours))
	if err != nil {
		return "", common.NewServiceError(common.ErrorCodeInternal, "登录失败，请稍后重试")
	}
	return token, nil
}
