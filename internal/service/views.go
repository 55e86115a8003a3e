package service

import (
	"red-social-server/internal/model"
	"time"
)

// UserBrief 帖子内嵌的作者摘要
type UserBrief struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Image    string `json:"image"`
}

// FileView 帖子的文件描述
type FileView struct {
	OriginalKey string          `json:"s3_key_original"`
	Mime        string          `json:"mime"`
	Width       int             `json:"width"`
	Height      int             `json:"height"`
	SizeBytes   int64           `json:"size_bytes"`
	Variants    []model.Variant `json:"variants"`
}

// PostView 对外返回的帖子视图
type PostView struct {
	ID        uint      `json:"id"`
	User      UserBrief `json:"user"`
	Text      string    `json:"text"`
	Location  string    `json:"location,omitempty"`
	File      FileView  `json:"file"`
	CreatedAt time.Time `json:"created_at"`
}

// FeedPost 标注了候选来源的帖子，Source 仅供调用方统计
type FeedPost struct {
	PostView
	Source string `json:"source"`
}

func NewUserBrief(u *model.User) UserBrief {
	return UserBrief{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Image:    u.ProfileImage,
	}
}

func NewPostView(p *model.Post) PostView {
	variants := p.Variants
	if variants == nil {
		variants = []model.Variant{}
	}
	return PostView{
		ID:       p.ID,
		User:     NewUserBrief(&p.User),
		Text:     p.Text,
		Location: p.Location,
		File: FileView{
			OriginalKey: p.OriginalKey,
			Mime:        p.Mime,
			Width:       p.Width,
			Height:      p.Height,
			SizeBytes:   p.SizeBytes,
			Variants:    variants,
		},
		CreatedAt: p.CreatedAt,
	}
}
