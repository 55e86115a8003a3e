package service

import (
	"errors"
	"red-social-server/internal/common"
	"red-social-server/internal/consts"
	"red-social-server/internal/db"
	"red-social-server/internal/model"
	"time"

	"gorm.io/gorm"
)

// SendFriendRequest 发起好友申请。重复的未处理申请与已成立的好友关系都会被拒绝。
func SendFriendRequest(senderID uint, username string) (*model.FriendRequest, error) {
	target, err := findUserByUsername(username)
	if err != nil {
		return nil, err
	}
	if target.ID == senderID {
		return nil, common.NewServiceError(common.ErrorCodeValidation, "不能向自己发送好友申请")
	}

	var existing model.FriendRequest
	err = db.DB.Where(
		"(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
		senderID, target.ID, target.ID, senderID,
	).Order("created_at DESC").First(&existing).Error
	if err == nil {
		switch existing.Status {
		case consts.FriendRequestPending:
			return nil, common.NewServiceError(common.ErrorCodeConflict, "已有待处理的好友申请")
		case consts.FriendRequestAccepted:
			return nil, common.NewServiceError(common.ErrorCodeConflict, "你们已经是好友了")
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "查询好友申请失败")
	}

	req := model.FriendRequest{
		SenderID:   senderID,
		ReceiverID: target.ID,
		Status:     consts.FriendRequestPending,
	}
	// 旧的已拒绝记录占用唯一索引时改为复用该行
	if existing.ID != 0 && existing.SenderID == senderID && existing.Status == consts.FriendRequestDeclined {
		updates := map[string]any{
			"status":       consts.FriendRequestPending,
			"responded_at": nil,
			"created_at":   time.Now(),
		}
		if err := db.DB.Model(&existing).Updates(updates).Error; err != nil {
			return nil, common.NewServiceError(common.ErrorCodeRetrieval, "发送好友申请失败")
		}
		req = existing
	} else if err := db.DB.Create(&req).Error; err != nil {
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "发送好友申请失败")
	}

	notify(target.ID, senderID, consts.NotificationKindFollow, consts.NotificationEntityFollow, req.ID)
	if err := db.DB.Preload("Sender").Preload("Receiver").First(&req, req.ID).Error; err != nil {
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "查询好友申请失败")
	}
	return &req, nil
}

// ReceivedFriendRequests 收到的待处理申请
func ReceivedFriendRequests(uid uint) ([]model.FriendRequest, error) {
	var reqs []model.FriendRequest
	err := db.DB.Preload("Sender").
		Where("receiver_id = ? AND status = ?", uid, consts.FriendRequestPending).
		Order("created_at DESC").Find(&reqs).Error
	if err != nil {
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "查询好友申请失败")
	}
	return reqs, nil
}

// SentFriendRequests 发出的待处理申请
func SentFriendRequests(uid uint) ([]model.FriendRequest, error) {
	var reqs []model.FriendRequest
	err := db.DB.Preload("Receiver").
		Where("sender_id = ? AND status = ?", uid, consts.FriendRequestPending).
		Order("created_at DESC").Find(&reqs).Error
	if err != nil {
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "查询好友申请失败")
	}
	return reqs, nil
}

// RespondFriendRequest 只有接收方能处理，且只能处理 pending 状态的申请。
// accept 为 true 时双方互相建立关注关系。
func RespondFriendRequest(uid, requestID uint, accept bool) (*model.FriendRequest, error) {
	var req model.FriendRequest
	if err := db.DB.First(&req, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewServiceError(common.ErrorCodeNotFound, "好友申请不存在")
		}
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "查询好友申请失败")
	}
	if req.ReceiverID != uid {
		return nil, common.NewServiceError(common.ErrorCodeForbidden, "无权处理该申请")
	}
	if req.Status != consts.FriendRequestPending {
		return nil, common.NewServiceError(common.ErrorCodeConflict, "该申请已被处理")
	}

	status := consts.FriendRequestDeclined
	if accept {
		status = consts.FriendRequestAccepted
	}
	now := time.Now()
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&req).Updates(map[string]any{
			"status":       status,
			"responded_at": now,
		}).Error; err != nil {
			return err
		}
		if accept {
			// 互相关注，已存在的边静默跳过
			for _, pair := range [][2]uint{{req.SenderID, req.ReceiverID}, {req.ReceiverID, req.SenderID}} {
				follow := model.Follow{UserID: pair[0], FollowedID: pair[1]}
				if err := tx.Where(&follow).FirstOrCreate(&follow).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "处理好友申请失败")
	}

	if accept {
		notify(req.SenderID, uid, consts.NotificationKindFollow, consts.NotificationEntityFollow, req.ID)
	}
	if err := db.DB.Preload("Sender").Preload("Receiver").First(&req, req.ID).Error; err != nil {
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "查询好友申请失败")
	}
	return &req, nil
}

// ListFriends 好友定义为互相关注的用户
func ListFriends(uid uint) ([]UserBrief, error) {
	var ids []uint
	err := db.DB.Model(&model.Follow{}).
		Where("user_id = ? AND followed_id IN (?)", uid,
			db.DB.Model(&model.Follow{}).Select("user_id").Where("followed_id = ?", uid)).
		Pluck("followed_id", &ids).Error
	if err != nil {
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "查询好友失败")
	}
	if len(ids) == 0 {
		return []UserBrief{}, nil
	}

	var users []model.User
	if err := db.DB.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "查询好友失败")
	}
	briefs := make([]UserBrief, 0, len(users))
	for i := range users {
		briefs = append(briefs, NewUserBrief(&users[i]))
	}
	return briefs, nil
}

// Unfriend 解除好友：删除双向关注边，并清理 accepted 状态的申请记录
func Unfriend(uid uint, username string) error {
	target, err := findUserByUsername(username)
	if err != nil {
		return err
	}
	return db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(
			"(user_id = ? AND followed_id = ?) OR (user_id = ? AND followed_id = ?)",
			uid, target.ID, target.ID, uid,
		).Delete(&model.Follow{}).Error; err != nil {
			return err
		}
		return tx.Where(
			"((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)) AND status = ?",
			uid, target.ID, target.ID, uid, consts.FriendRequestAccepted,
		).Delete(&model.FriendRequest{}).Error
	})
}
