package service

import (
	"red-social-server/internal/common"
	"red-social-server/internal/consts"
	"red-social-server/internal/db"
	"red-social-server/internal/model"
	"sort"
	"time"
)

// ExploreResult 一页发现内容
type ExploreResult struct {
	Posts       []FeedPost      `json:"posts"`
	Category    string          `json:"category"`
	Page        int             `json:"page"`
	Limit       int             `json:"limit"`
	HasNextPage bool            `json:"hasNextPage"`
	Report      AlgorithmReport `json:"algorithm"`
}

// ComposeExplore 发现页：排除自己与已关注作者的帖子。
// category 为 trending / recent / random 时为单一来源模式；
// 其余情况为 50% 最新 / 30% 趋势 / 20% 随机的混合模式。
func ComposeExplore(viewerID uint, page, limit int, category string) (*ExploreResult, error) {
	excluded, err := FollowingIDs(viewerID)
	if err != nil {
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "获取关注列表失败")
	}
	excluded = append(excluded, viewerID)

	switch category {
	case consts.ExploreCategoryTrending:
		return exploreTrending(excluded, page, limit)
	case consts.ExploreCategoryRecent:
		return exploreRecent(excluded, page, limit)
	case consts.ExploreCategoryRandom:
		return exploreRandom(excluded, limit, page)
	default:
		return exploreMixed(excluded, page, limit)
	}
}

// exploreEngagementScore 发现页趋势打分，与 Feed 的口径刻意不同：
// 2*likeCount + commentCount - 0.05 * 帖龄小时数，窗口为 3 天。
func exploreEngagementScore(row engagementRow, now time.Time) float64 {
	ageHours := now.Sub(row.CreatedAt).Hours()
	return 2*float64(row.LikeCount) + float64(row.CommentCount) - 0.05*ageHours
}

func exploreTrending(excluded []uint, page, limit int) (*ExploreResult, error) {
	// 打分排序后做 offset 翻页，窗口内全量候选参与排序
	allIDs, err := trendingPostIDs(excluded, 3*24*time.Hour, int(^uint(0)>>1), exploreEngagementScore)
	if err != nil {
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "获取趋势内容失败")
	}

	offset := (page - 1) * limit
	pageIDs := []uint{}
	if offset < len(allIDs) {
		end := offset + limit
		if end > len(allIDs) {
			end = len(allIDs)
		}
		pageIDs = allIDs[offset:end]
	}

	views, err := loadPostViews(pageIDs)
	if err != nil {
		return nil, err
	}
	posts := taggedViews(views, pageIDs, consts.FeedSourceTrending)

	return &ExploreResult{
		Posts:       posts,
		Category:    consts.ExploreCategoryTrending,
		Page:        page,
		Limit:       limit,
		HasNextPage: len(posts) == limit,
		Report:      AlgorithmReport{Trending: len(posts)},
	}, nil
}

func exploreRecent(excluded []uint, page, limit int) (*ExploreResult, error) {
	var ids []uint
	err := db.DB.Model(&model.Post{}).
		Where("user_id NOT IN ?", excluded).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "获取最新内容失败")
	}

	views, err := loadPostViews(ids)
	if err != nil {
		return nil, err
	}
	posts := taggedViews(views, ids, consts.FeedSourceRecent)

	return &ExploreResult{
		Posts:       posts,
		Category:    consts.ExploreCategoryRecent,
		Page:        page,
		Limit:       limit,
		HasNextPage: len(posts) == limit,
		Report:      AlgorithmReport{Recent: len(posts)},
	}, nil
}

func exploreRandom(excluded []uint, limit, page int) (*ExploreResult, error) {
	// 每次调用重新采样，翻页不保证去重
	ids, err := randomPostIDs(excluded, limit)
	if err != nil {
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "获取随机内容失败")
	}

	views, err := loadPostViews(ids)
	if err != nil {
		return nil, err
	}
	posts := taggedViews(views, ids, consts.FeedSourceRandom)

	return &ExploreResult{
		Posts:       posts,
		Category:    consts.ExploreCategoryRandom,
		Page:        page,
		Limit:       limit,
		HasNextPage: len(posts) == limit,
		Report:      AlgorithmReport{Random: len(posts)},
	}, nil
}

func exploreMixed(excluded []uint, page, limit int) (*ExploreResult, error) {
	capRecent := limit * 5 / 10
	capTrending := limit * 3 / 10
	capRandom := limit - capRecent - capTrending

	// 最新
	var recentIDs []uint
	if capRecent > 0 {
		err := db.DB.Model(&model.Post{}).
			Where("user_id NOT IN ?", excluded).
			Order("created_at DESC").
			Offset((page - 1) * capRecent).
			Limit(capRecent).
			Pluck("id", &recentIDs).Error
		if err != nil {
			return nil, common.NewServiceError(common.ErrorCodeRetrieval, "获取最新内容失败")
		}
	}

	// 趋势：混合模式下按 24 小时窗口内的点赞数排序
	trendingIDs, err := mixedTrendingIDs(excluded, capTrending)
	if err != nil {
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "获取趋势内容失败")
	}

	// 随机
	randomIDs, err := randomPostIDs(excluded, capRandom)
	if err != nil {
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "获取随机内容失败")
	}

	views, err := loadPostViews(recentIDs, trendingIDs, randomIDs)
	if err != nil {
		return nil, err
	}

	mixed := interleave(limit,
		taggedViews(views, recentIDs, consts.FeedSourceRecent),
		taggedViews(views, trendingIDs, consts.FeedSourceTrending),
		taggedViews(views, randomIDs, consts.FeedSourceRandom),
	)

	return &ExploreResult{
		Posts:       mixed.posts,
		Category:    consts.ExploreCategoryMixed,
		Page:        page,
		Limit:       limit,
		HasNextPage: mixed.preTruncation == limit,
		Report: AlgorithmReport{
			Recent:   len(recentIDs),
			Trending: len(trendingIDs),
			Random:   len(randomIDs),
		},
	}, nil
}

// mixedTrendingIDs 混合模式的趋势候选：24 小时窗口，按点赞数、发布时间倒序
func mixedTrendingIDs(excluded []uint, maxCount int) ([]uint, error) {
	if maxCount <= 0 {
		return nil, nil
	}

	var rows []engagementRow
	err := db.DB.Model(&model.Post{}).
		Select("posts.id, posts.created_at, "+
			"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS like_count").
		Where("posts.created_at >= ?", time.Now().Add(-24*time.Hour)).
		Where("posts.user_id NOT IN ?", excluded).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].LikeCount != rows[j].LikeCount {
			return rows[i].LikeCount > rows[j].LikeCount
		}
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
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
