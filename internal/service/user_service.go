package service

import (
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"red-social-server/internal/common"
	"red-social-server/internal/config"
	"red-social-server/internal/db"
	"red-social-server/internal/model"
	"strings"
	"time"

	"gorm.io/gorm"
)

const maxProfilePhotoBytes = 5 << 20

// UserStats 用户主页上的统计数据
type UserStats struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
	Posts     int64 `json:"posts"`
}

// UserProfile 用户主页视图
type UserProfile struct {
	UserBrief
	Bio         string    `json:"bio"`
	IsVerified  bool      `json:"is_verified"`
	CreatedAt   time.Time `json:"created_at"`
	Stats       UserStats `json:"stats"`
	IsFollowing bool      `json:"isFollowing"`
	IsSelf      bool      `json:"isSelf"`
}

// GetUserProfile viewerID 为 0 表示未登录访问
func GetUserProfile(username string, viewerID uint) (*UserProfile, error) {
	user, err := findUserByUsername(username)
	if err != nil {
		return nil, err
	}

	profile := UserProfile{
		UserBrief:  NewUserBrief(user),
		Bio:        user.Bio,
		IsVerified: user.IsVerified,
		CreatedAt:  user.CreatedAt,
		IsSelf:     viewerID != 0 && viewerID == user.ID,
	}

	if err := db.DB.Model(&model.Follow{}).Where("followed_id = ?", user.ID).
		Count(&profile.Stats.Followers).Error; err != nil {
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "查询统计数据失败")
	}
	if err := db.DB.Model(&model.Follow{}).Where("user_id = ?", user.ID).
		Count(&profile.Stats.Following).Error; err != nil {
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "查询统计数据失败")
	}
	if err := db.DB.Model(&model.Post{}).Where("user_id = ?", user.ID).
		Count(&profile.Stats.Posts).Error; err != nil {
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "查询统计数据失败")
	}

	if viewerID != 0 && !profile.IsSelf {
		following, err := IsFollowing(viewerID, user.ID)
		if err != nil {
			return nil, err
		}
		profile.IsFollowing = following
	}
	return &profile, nil
}

// ListUserPosts 用户主页的帖子列表，按时间倒序
func ListUserPosts(username string, page, limit int) ([]PostView, error) {
	user, err := findUserByUsername(username)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	var posts []model.Post
	err = db.DB.Preload("User").Preload("Variants").
		Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "查询帖子失败")
	}

	views := make([]PostView, 0, len(posts))
	for i := range posts {
		views = append(views, NewPostView(&posts[i]))
	}
	return views, nil
}

// UpdateProfile 更新展示名与简介，空字符串表示不修改
func UpdateProfile(uid uint, name, bio *string) (*model.User, error) {
	var user model.User
	if err := db.DB.First(&user, uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewServiceError(common.ErrorCodeNotFound, "用户不存在")
		}
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "查询用户失败")
	}

	updates := map[string]any{}
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, common.NewServiceError(common.ErrorCodeValidation, "展示名不能为空")
		}
		if len(trimmed) > 50 {
			return nil, common.NewServiceError(common.ErrorCodeValidation, "展示名过长")
		}
		updates["name"] = trimmed
	}
	if bio != nil {
		if len(*bio) > 500 {
			return nil, common.NewServiceError(common.ErrorCodeValidation, "简介过长")
		}
		updates["bio"] = *bio
	}

	if len(updates) > 0 {
		if err := db.DB.Model(&user).Updates(updates).Error; err != nil {
			return nil, common.NewServiceError(common.ErrorCodeRetrieval, "更新资料失败")
		}
	}
	return &user, nil
}

// UpdateProfilePhoto 保存头像文件并更新用户记录，返回新的访问路径
func UpdateProfilePhoto(uid uint, file *multipart.FileHeader) (string, error) {
	if file.Size > maxProfilePhotoBytes {
		return "", common.NewServiceError(common.ErrorCodePayloadTooLarge, "头像不能超过 5MB")
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedUploadExts[ext] {
		return "", common.NewServiceError(common.ErrorCodeUnsupportedMediaType, "不支持的图片格式")
	}
	src, err := file.Open()
	if err != nil {
		return "", common.NewServiceError(common.ErrorCodeValidation, "无法打开上传的文件")
	}
	if valid, msg := validateImageContent(src, ext); !valid {
		_ = src.Close()
		return "", common.NewServiceError(common.ErrorCodeUnsupportedMediaType, msg)
	}
	_ = src.Close()

	cfg := config.Get()
	dir := filepath.Join(cfg.Storage.Root, "profiles", fmt.Sprintf("%d", uid))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", common.NewServiceError(common.ErrorCodeInternal, "创建存储目录失败")
	}

	filename := fmt.Sprintf("profile_%d%s", time.Now().UnixMilli(), ext)
	dst := filepath.Join(dir, filename)
	if err := saveMultipartFile(file, dst); err != nil {
		return "", common.NewServiceError(common.ErrorCodeInternal, "保存头像失败")
	}

	key := filepath.ToSlash(filepath.Join("profiles", fmt.Sprintf("%d", uid), filename))
	if err := db.DB.Model(&model.User{}).Where("id = ?", uid).
		Update("profile_image", key).Error; err != nil {
		return "", common.NewServiceError(common.ErrorCodeRetrieval, "更新头像失败")
	}
	return key, nil
}

// SearchUserResult 搜索结果附带关注状态
type SearchUserResult struct {
	UserBrief
	IsFollowing bool `json:"isFollowing"`
}

// SearchUsers 按用户名或展示名模糊搜索
func SearchUsers(q string, limit int, viewerID uint) ([]SearchUserResult, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []SearchUserResult{}, nil
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	pattern := "%" + q + "%"
	var users []model.User
	err := db.DB.Where("username LIKE ? OR name LIKE ?", pattern, pattern).
		Where("is_active = ?", true).
		Limit(limit).Find(&users).Error
	if err != nil {
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "搜索用户失败")
	}

	followed := map[uint]bool{}
	if viewerID != 0 && len(users) > 0 {
		ids := make([]uint, 0, len(users))
		for i := range users {
			ids = append(ids, users[i].ID)
		}
		var rows []model.Follow
		if err := db.DB.Where("user_id = ? AND followed_id IN ?", viewerID, ids).
			Find(&rows).Error; err != nil {
			return nil, common.NewServiceError(common.ErrorCodeRetrieval, "查询关注状态失败")
		}
		for i := range rows {
			followed[rows[i].FollowedID] = true
		}
	}

	results := make([]SearchUserResult, 0, len(users))
	for i := range users {
		results = append(results, SearchUserResult{
			UserBrief:   NewUserBrief(&users[i]),
			IsFollowing: followed[users[i].ID],
		})
	}
	return results, nil
}
