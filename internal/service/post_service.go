package service

import (
	"errors"
	"red-social-server/internal/common"
	"red-social-server/internal/consts"
	"red-social-server/internal/db"
	"red-social-server/internal/model"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreatePost 基于已上传的原图创建帖子（上传与发帖分离的路径）
func CreatePost(uid uint, originalKey, mime, text, location string, width, height int, sizeBytes int64) (*model.Post, error) {
	if strings.TrimSpace(originalKey) == "" {
		return nil, common.NewServiceError(common.ErrorCodeValidation, "缺少原图引用")
	}

	post := model.Post{
		UserID:      uid,
		Text:        text,
		Location:    location,
		OriginalKey: originalKey,
		Mime:        mime,
		Width:       width,
		Height:      height,
		SizeBytes:   sizeBytes,
	}
	if err := db.DB.Create(&post).Error; err != nil {
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "发布失败")
	}
	return &post, nil
}

// GetPost 取单个帖子（带作者与衍生图）
func GetPost(postID uint) (*model.Post, error) {
	var post model.Post
	err := db.DB.Preload("User").Preload("Variants").First(&post, postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.NewServiceError(common.ErrorCodeNotFound, "帖子不存在")
	}
	if err != nil {
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "查询帖子失败")
	}
	return &post, nil
}

// LikePost 点赞。(post, user) 对唯一，重复点赞幂等。
func LikePost(postID, uid uint) error {
	post, err := GetPost(postID)
	if err != nil {
		return err
	}

	like := model.Like{PostID: postID, UserID: uid}
	err = db.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error
	if err != nil {
		return common.NewServiceError(common.ErrorCodeRetrieval, "点赞失败")
	}

	if post.UserID != uid {
		notify(post.UserID, uid, consts.NotificationKindLike, consts.NotificationEntityPost, postID)
	}
	return nil
}

// UnlikePost 取消点赞，幂等。
func UnlikePost(postID, uid uint) error {
	err := db.DB.Where("post_id = ? AND user_id = ?", postID, uid).
		Delete(&model.Like{}).Error
	if err != nil {
		return common.NewServiceError(common.ErrorCodeRetrieval, "取消点赞失败")
	}
	return nil
}

// LikeStatus 点赞数与当前用户是否已赞
func LikeStatus(postID, uid uint) (int64, bool, error) {
	var count int64
	if err := db.DB.Model(&model.Like{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		return 0, false, common.NewServiceError(common.ErrorCodeRetrieval, "查询点赞失败")
	}

	var mine int64
	err := db.DB.Model(&model.Like{}).
		Where("post_id = ? AND user_id = ?", postID, uid).
		Count(&mine).Error
	if err != nil {
		return 0, false, common.NewServiceError(common.ErrorCodeRetrieval, "查询点赞失败")
	}
	return count, mine > 0, nil
}

// AddComment 发表评论并通知作者
func AddComment(postID, uid uint, body string) (*model.Comment, error) {
	if strings.TrimSpace(body) == "" {
		return nil, common.NewServiceError(common.ErrorCodeValidation, "评论内容不能为空")
	}

	post, err := GetPost(postID)
	if err != nil {
		return nil, err
	}

	comment := model.Comment{PostID: postID, UserID: uid, Body: body}
	if err := db.DB.Create(&comment).Error; err != nil {
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "评论失败")
	}

	if post.UserID != uid {
		notify(post.UserID, uid, consts.NotificationKindComment, consts.NotificationEntityPost, postID)
	}

	// 回读以带出作者信息
	_ = db.DB.Preload("User").First(&comment, comment.ID).Error
	return &comment, nil
}

// ListComments 帖子评论，时间倒序
func ListComments(postID uint) ([]model.Comment, error) {
	var comments []model.Comment
	err := db.DB.Preload("User").
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "查询评论失败")
	}
	return comments, nil
}

// DeleteComment 仅作者可删自己的评论，幂等。
func DeleteComment(commentID, uid uint) error {
	err := db.DB.Where("id = ? AND user_id = ?", commentID, uid).
		Delete(&model.Comment{}).Error
	if err != nil {
		return common.NewServiceError(common.ErrorCodeRetrieval, "删除评论失败")
	}
	return nil
}

// SearchPosts 按文本模糊搜索；q 为空时返回全站最新帖
func SearchPosts(q string, limit int) ([]PostView, error) {
	query := db.DB.Preload("User").Preload("Variants").
		Order("created_at DESC").
		Limit(limit)
	if q != "" {
		query = query.Where("text LIKE ?", "%"+q+"%")
	}

	var posts []model.Post
	if err := query.Find(&posts).Error; err != nil {
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "搜索帖子失败")
	}

	views := make([]PostView, 0, len(posts))
	for i := range posts {
		views = append(views, NewPostView(&posts[i]))
	}
	return views, nil
}
