package service

import (
	"red-social-server/internal/common"
	"red-social-server/internal/consts"
	"red-social-server/internal/db"
	"red-social-server/internal/model"
	"sort"
	"time"
)

// AlgorithmReport 各候选来源的实际贡献数，仅供调用方观测
type AlgorithmReport struct {
	Followed int `json:"followed,omitempty"`
	Trending int `json:"trending"`
	Recent   int `json:"recent,omitempty"`
	Random   int `json:"random"`
}

// FeedResult 一页混合 Feed
type FeedResult struct {
	Posts       []FeedPost      `json:"posts"`
	Page        int             `json:"page"`
	Limit       int             `json:"limit"`
	HasNextPage bool            `json:"hasNextPage"`
	Report      AlgorithmReport `json:"algorithm"`
}

// engagementRow 参与度打分的候选行
type engagementRow struct {
	ID           uint
	CreatedAt    time.Time
	LikeCount    int64
	CommentCount int64
}

// ComposeFeed 三路候选（关注 70% / 趋势 20% / 随机 10%）按索引轮转交错。
// 翻页仅作用于关注源；趋势与随机每次重新计算，同一页码的结果不可复现，
// 这是面向互动率的既定行为，不是缺陷。
func ComposeFeed(viewerID uint, page, limit int) (*FeedResult, error) {
	capFollowed := limit * 7 / 10
	capTrending := limit * 2 / 10
	capRandom := limit - capFollowed - capTrending

	followingIDs, err := FollowingIDs(viewerID)
	if err != nil {
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "获取关注列表失败")
	}

	// 来源 A：关注的人的帖子，按时间倒序，offset 翻页
	var followedIDs []uint
	if capFollowed > 0 && len(followingIDs) > 0 {
		err = db.DB.Model(&model.Post{}).
			Where("user_id IN ?", followingIDs).
			Order("created_at DESC").
			Offset((page - 1) * capFollowed).
			Limit(capFollowed).
			Pluck("id", &followedIDs).Error
		if err != nil {
			return nil, common.NewServiceError(common.ErrorCodeRetrieval, "获取关注内容失败")
		}
	}

	// 来源 B：24 小时内按参与度打分的趋势帖
	trendingIDs, err := trendingPostIDs(nil, 24*time.Hour, capTrending, feedEngagementScore)
	if err != nil {
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "获取趋势内容失败")
	}

	// 来源 C：全库均匀随机采样
	randomIDs, err := randomPostIDs(nil, capRandom)
	if err != nil {
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "获取随机内容失败")
	}

	views, err := loadPostViews(followedIDs, trendingIDs, randomIDs)
	if err != nil {
		return nil, err
	}

	mixed := interleave(limit,
		taggedViews(views, followedIDs, consts.FeedSourceFollowed),
		taggedViews(views, trendingIDs, consts.FeedSourceTrending),
		taggedViews(views, randomIDs, consts.FeedSourceRandom),
	)

	return &FeedResult{
		Posts:       mixed.posts,
		Page:        page,
		Limit:       limit,
		HasNextPage: mixed.preTruncation == limit,
		Report: AlgorithmReport{
			Followed: len(followedIDs),
			Trending: len(trendingIDs),
			Random:   len(randomIDs),
		},
	}, nil
}

// SimpleFeed 仅含关注内容的时间线
func SimpleFeed(viewerID uint, page, limit int) ([]PostView, error) {
	followingIDs, err := FollowingIDs(viewerID)
	if err != nil {
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "获取关注列表失败")
	}

	views := []PostView{}
	if len(followingIDs) == 0 {
		return views, nil
	}

	var posts []model.Post
	err = db.DB.Preload("User").Preload("Variants").
		Where("user_id IN ?", followingIDs).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "获取时间线失败")
	}

	for i := range posts {
		views = append(views, NewPostView(&posts[i]))
	}
	return views, nil
}

// feedEngagementScore Feed 趋势打分：likeCount - 0.1 * 帖龄小时数
func feedEngagementScore(row engagementRow, now time.Time) float64 {
	ageHours := now.Sub(row.CreatedAt).Hours()
	return float64(row.LikeCount) - 0.1*ageHours
}

// trendingPostIDs 在时间窗口内取候选并按打分函数排序。
// excludeUserIDs 为 nil 时不做作者过滤。
func trendingPostIDs(excludeUserIDs []uint, window time.Duration, maxCount int, score func(engagementRow, time.Time) float64) ([]uint, error) {
	if maxCount <= 0 {
		return nil, nil
	}

	query := db.DB.Model(&model.Post{}).
		Select("posts.id, posts.created_at, " +
			"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS like_count, " +
			"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count").
		Where("posts.created_at >= ?", time.Now().Add(-window))
	if len(excludeUserIDs) > 0 {
		query = query.Where("posts.user_id NOT IN ?", excludeUserIDs)
	}

	var rows []engagementRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	sort.SliceStable(rows, func(i, j int) bool {
		return score(rows[i], now) > score(rows[j], now)
	})

	if len(rows) > maxCount {
		rows = rows[:maxCount]
	}
	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids, nil
}

// randomPostIDs 均匀随机采样
func randomPostIDs(excludeUserIDs []uint, maxCount int) ([]uint, error) {
	if maxCount <= 0 {
		return nil, nil
	}
	query := db.DB.Model(&model.Post{}).Order(db.RandomOrderExpr()).Limit(maxCount)
	if len(excludeUserIDs) > 0 {
		query = query.Where("user_id NOT IN ?", excludeUserIDs)
	}
	var ids []uint
	if err := query.Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// loadPostViews 批量装载帖子视图，键为帖子 ID
func loadPostViews(idLists ...[]uint) (map[uint]PostView, error) {
	var all []uint
	for _, ids := range idLists {
		all = append(all, ids...)
	}
	views := make(map[uint]PostView, len(all))
	if len(all) == 0 {
		return views, nil
	}

	var posts []model.Post
	err := db.DB.Preload("User").Preload("Variants").
		Where("id IN ?", all).
		Find(&posts).Error
	if err != nil {
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "装载帖子失败")
	}

	for i := range posts {
		views[posts[i].ID] = NewPostView(&posts[i])
	}
	return views, nil
}

// taggedViews 按 ID 顺序取出视图并打上来源标签
func taggedViews(views map[uint]PostView, ids []uint, source string) []FeedPost {
	out := make([]FeedPost, 0, len(ids))
	for _, id := range ids {
		view, ok := views[id]
		if !ok {
			continue
		}
		out = append(out, FeedPost{PostView: view, Source: source})
	}
	return out
}

type interleaved struct {
	posts         []FeedPost
	preTruncation int
}

// interleave 按索引轮转交错多路候选：每轮依次取各来源的第 i 条，
// 来源耗尽即跳过，最终截断到 limit。
func interleave(limit int, sources ...[]FeedPost) interleaved {
	maxLen := 0
	for _, s := range sources {
		if len(s) > maxLen {
			maxLen = len(s)
		}
	}

	mixed := make([]FeedPost, 0, limit)
	for i := 0; i < maxLen; i++ {
		for _, s := range sources {
			if i < len(s) {
				mixed = append(mixed, s[i])
			}
		}
	}

	pre := len(mixed)
	if len(mixed) > limit {
		mixed = mixed[:limit]
	}
	return interleaved{posts: mixed, preTruncation: pre}
}
