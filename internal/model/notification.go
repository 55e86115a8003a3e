package model

import "time"

// Notification 写入后除 IsRead 外不再变更；IsRead 仅允许 false→true 批量置位。
type Notification struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index:idx_notifications_user_created"` // 接收者
	Kind      string    `json:"kind" gorm:"not null;size:16"`
	ActorID   uint      `json:"actor_id"`
	Actor     User      `json:"actor" gorm:"foreignKey:ActorID;references:ID"`
	Entity    string    `json:"entity" gorm:"size:16"`
	EntityID  uint      `json:"entity_id"`
	IsRead    bool      `json:"is_read" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_notifications_user_created"`
}
