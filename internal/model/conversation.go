package model

import (
	"fmt"
	"time"
)

// Conversation 两人会话。PairKey 是无序参与者对的规范化键，
// 唯一索引保证双方同时发起首条消息时不会产生重复会话。
type Conversation struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PairKey   string    `json:"-" gorm:"unique;not null;size:64"`
	CreatedAt time.Time `json:"created_at"`
}

// ConversationPairKey 规范化无序 (a, b) 为 "小:大" 形式。
func ConversationPairKey(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

type ConversationParticipant struct {
	ID             uint         `json:"id" gorm:"primaryKey"`
	ConversationID uint         `json:"conversation_id" gorm:"not null;uniqueIndex:idx_participant_pair;index"`
	Conversation   Conversation `json:"-" gorm:"foreignKey:ConversationID;references:ID;constraint:OnDelete:CASCADE;"`
	UserID         uint         `json:"user_id" gorm:"not null;uniqueIndex:idx_participant_pair;index"`
	User           User         `json:"user" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE;"`
}

type Message struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	ConversationID uint      `json:"conversation_id" gorm:"not null;index:idx_messages_conversation_created"`
	SenderID       uint      `json:"sender_id" gorm:"not null"`
	Sender         User      `json:"sender" gorm:"foreignKey:SenderID;references:ID;constraint:OnDelete:CASCADE;"`
	Body           string    `json:"body"`
	MediaKey       string    `json:"media_s3_key"`
	SharedPostID   *uint     `json:"shared_post_id"`
	SharedPost     *Post     `json:"shared_post,omitempty" gorm:"foreignKey:SharedPostID;references:ID"`
	CreatedAt      time.Time `json:"created_at" gorm:"index:idx_messages_conversation_created"`
}
