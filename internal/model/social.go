package model

import "time"

// Follow 关注边，(UserID, FollowedID) 全局唯一，写入路径禁止自关注。
type Follow struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_follow_pair"`
	FollowedID uint      `json:"followed_id" gorm:"not null;uniqueIndex:idx_follow_pair;index"`
	CreatedAt  time.Time `json:"created_at"`
}

// Like 点赞边，每个 (PostID, UserID) 至多一条。
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    uint      `json:"post_id" gorm:"not null;uniqueIndex:idx_like_pair;index"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_like_pair"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment 评论不可编辑，仅作者可删。
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    uint      `json:"post_id" gorm:"not null;index"`
	UserID    uint      `json:"user_id" gorm:"not null"`
	User      User      `json:"user" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE;"`
	Body      string    `json:"body" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}
