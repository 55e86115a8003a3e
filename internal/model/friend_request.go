package model

import "time"

// FriendRequest 好友申请，(SenderID, ReceiverID) 唯一，避免重复申请。
type FriendRequest struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	SenderID    uint       `json:"sender_id" gorm:"not null;uniqueIndex:idx_friend_request_pair;index:idx_friend_request_sender_status"`
	Sender      User       `json:"sender" gorm:"foreignKey:SenderID;references:ID;constraint:OnDelete:CASCADE;"`
	ReceiverID  uint       `json:"receiver_id" gorm:"not null;uniqueIndex:idx_friend_request_pair;index:idx_friend_request_receiver_status"`
	Receiver    User       `json:"receiver" gorm:"foreignKey:ReceiverID;references:ID;constraint:OnDelete:CASCADE;"`
	Status      string     `json:"status" gorm:"not null;size:16;default:pending;index:idx_friend_request_sender_status;index:idx_friend_request_receiver_status"`
	CreatedAt   time.Time  `json:"created_at"`
	RespondedAt *time.Time `json:"responded_at"`
}
