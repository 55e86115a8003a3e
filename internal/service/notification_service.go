package service

import (
	"log"
	"red-social-server/internal/common"
	"red-social-server/internal/db"
	"red-social-server/internal/model"
)

// notify 写入一条通知。通知是尽力而为的旁路写入，失败只记录日志。
func notify(recipientID, actorID uint, kind, entity string, entityID uint) {
	if recipientID == actorID {
		return
	}

	n := model.Notification{
		UserID:   recipientID,
		Kind:     kind,
		ActorID:  actorID,
		Entity:   entity,
		EntityID: entityID,
	}
	if err := db.DB.Create(&n).Error; err != nil {
		log.Printf("⚠️ 通知写入失败 (kind=%s recipient=%d): %v", kind, recipientID, err)
	}
}

// ListNotifications 最近 50 条通知，时间倒序
func ListNotifications(uid uint) ([]model.Notification, error) {
	var list []model.Notification
	err := db.DB.Preload("Actor").
		Where("user_id = ?", uid).
		Order("created_at DESC").
		Limit(50).
		Find(&list).Error
	if err != nil {
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "查询通知失败")
	}
	return list, nil
}

// UnreadNotificationCount 未读通知数
func UnreadNotificationCount(uid uint) (int64, error) {
	var count int64
	err := db.DB.Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", uid, false).
		Count(&count).Error
	if err != nil {
		return 0, common.NewServiceError(common.ErrorCodeRetrieval, "查询通知失败")
	}
	return count, nil
}

// MarkAllNotificationsRead 批量置已读。已读标记只允许 false→true，
// 且只提供批量入口。
func MarkAllNotificationsRead(uid uint) error {
	err := db.DB.Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", uid, false).
		Update("is_read", true).Error
	if err != nil {
		return common.NewServiceError(common.ErrorCodeRetrieval, "标记已读失败")
	}
	return nil
}
