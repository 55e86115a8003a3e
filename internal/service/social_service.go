package service

import (
	"errors"
	"red-social-server/internal/common"
	"red-social-server/internal/consts"
	"red-social-server/internal/db"
	"red-social-server/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowingIDs 当前用户关注的所有用户 ID
func FollowingIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := db.DB.Model(&model.Follow{}).
		Where("user_id = ?", userID).
		Pluck("followed_id", &ids).Error
	return ids, err
}

// FollowUser 关注指定用户名。重复关注幂等，不允许自关注。
func FollowUser(followerID uint, username string) error {
	target, err := findUserByUsername(username)
	if err != nil {
		return err
	}
	if target.ID == followerID {
		return common.NewServiceError(common.ErrorCodeValidation, "不能关注自己")
	}

	follow := model.Follow{UserID: followerID, FollowedID: target.ID}
	err = db.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&follow).Error
	if err != nil {
		return common.NewServiceError(common.ErrorCodeRetrieval, "关注失败")
	}

	notify(target.ID, followerID, consts.NotificationKindFollow, consts.NotificationEntityFollow, follow.ID)
	return nil
}

// UnfollowUser 取消关注，目标不存在时报 404，未关注时幂等成功。
func UnfollowUser(followerID uint, username string) error {
	target, err := findUserByUsername(username)
	if err != nil {
		return err
	}

	err = db.DB.Where("user_id = ? AND followed_id = ?", followerID, target.ID).
		Delete(&model.Follow{}).Error
	if err != nil {
		return common.NewServiceError(common.ErrorCodeRetrieval, "取消关注失败")
	}
	return nil
}

// IsFollowing follower 是否已关注 followed
func IsFollowing(followerID, followedID uint) (bool, error) {
	var count int64
	err := db.DB.Model(&model.Follow{}).
		Where("user_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error
	return count > 0, err
}

func findUserByUsername(username string) (*model.User, error) {
	var user model.User
	err := db.DB.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.NewServiceError(common.ErrorCodeNotFound, "用户不存在")
	}
	if err != nil {
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "查询用户失败")
	}
	return &user, nil
}
