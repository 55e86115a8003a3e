package model

import (
	"time"
)

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Email        string    `json:"email" gorm:"unique;not null;size:255;index"` // 入库前统一转小写
	Username     string    `json:"username" gorm:"unique;not null;size:30"`
	Name         string    `json:"name" gorm:"not null"`
	Bio          string    `json:"bio" gorm:"size:500"`
	ProfileImage string    `json:"image"`

	// 凭据信息，绝不存明文密码
	PasswordHash string `json:"-"`

	// Google OAuth
	GoogleID  string `json:"-" gorm:"index"`
	GoogleSub string `json:"-"`

	// 账号状态
	IsActive   bool `json:"is_active" gorm:"default:true"`
	IsVerified bool `json:"is_verified" gorm:"default:false"`

	// 登录安全
	FailedLoginAttempts int        `json:"-" gorm:"default:0"`
	LockedUntil         *time.Time `json:"-"`
	LastLogin           *time.Time `json:"last_login"`
}

// IsLocked 账号是否处于登录锁定期
func (u *User) IsLocked() bool {
	return u.LockedUntil != nil && u.LockedUntil.After(time.Now())
}
