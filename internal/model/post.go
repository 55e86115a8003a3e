package model

import "time"

type Post struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	UserID   uint   `json:"user_id" gorm:"not null;index:idx_posts_user_created"`
	User     User   `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE;"`
	Text     string `json:"text"`
	Location string `json:"location"`

	// 文件描述：原图引用与元数据。Post 必须在原图成功落盘后才能创建。
	OriginalKey string `json:"s3_key_original" gorm:"not null"`
	Mime        string `json:"mime"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	SizeBytes   int64  `json:"size_bytes"`

	Variants []Variant `json:"variants" gorm:"constraint:OnDelete:CASCADE;"`

	CreatedAt time.Time `json:"created_at" gorm:"index;index:idx_posts_user_created"`
}

// Variant 一张衍生图。Key 指向的文件保证先于记录写入。
type Variant struct {
	ID          uint   `json:"-" gorm:"primaryKey"`
	PostID      uint   `json:"-" gorm:"not null;index"`
	Kind        string `json:"kind" gorm:"not null;size:32"`
	Key         string `json:"s3_key" gorm:"not null"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	SizeBytes   int64  `json:"size_bytes"`
	Description string `json:"description"` // 仅供展示，不参与逻辑
}
