package service

import (
	"testing"
	"time"

	"red-social-server/internal/consts"
	"red-social-server/internal/db"
	"red-social-server/internal/model"
)

func followUser(t *testing.T, followerID, followedID uint) {
	t.Helper()
	if err := db.DB.Create(&model.Follow{UserID: followerID, FollowedID: followedID}).Error; err != nil {
		t.Fatalf("create follow: %v", err)
	}
}

func TestComposeFeed_SourceCaps(t *testing.T) {
	setupTestDB(t)

	viewer := createTestUser(t, "viewer")
	author := createTestUser(t, "author")
	stranger := createTestUser(t, "stranger")
	followUser(t, viewer.ID, author.ID)

	// 关注的作者发 30 帖，陌生人发 30 帖，保证各来源都有充足候选
	for i := 0; i < 30; i++ {
		createTestPost(t, author.ID, "followed")
		createTestPost(t, stranger.ID, "stranger")
	}

	result, err := ComposeFeed(viewer.ID, 1, 20)
	if err != nil {
		t.Fatalf("ComposeFeed: %v", err)
	}

	// limit=20 时各来源上限为 14 / 4 / 2
	if result.Report.Followed != 14 {
		t.Fatalf("followed cap expected 14, got %d", result.Report.Followed)
	}
	if result.Report.Trending != 4 {
		t.Fatalf("trending cap expected 4, got %d", result.Report.Trending)
	}
	if result.Report.Random != 2 {
		t.Fatalf("random cap expected 2, got %d", result.Report.Random)
	}
	if len(result.Posts) != 20 {
		t.Fatalf("expected 20 posts, got %d", len(result.Posts))
	}
	if !result.HasNextPage {
		t.Fatal("expected hasNextPage with full sources")
	}
}

func TestComposeFeed_InterleavesSources(t *testing.T) {
	setupTestDB(t)

	viewer := createTestUser(t, "viewer2")
	author := createTestUser(t, "author2")
	followUser(t, viewer.ID, author.ID)

	for i := 0; i < 10; i++ {
		createTestPost(t, author.ID, "f")
	}

	result, err := ComposeFeed(viewer.ID, 1, 10)
	if err != nil {
		t.Fatalf("ComposeFeed: %v", err)
	}
	if len(result.Posts) == 0 {
		t.Fatal("expected posts")
	}

	// 交错顺序：每轮依次取 followed、trending、random 的同下标候选。
	// 本场景只有一个作者，所有帖子都同时是 followed 与 trending 候选，
	// 首位必定来自 followed 源。
	if result.Posts[0].Source != consts.FeedSourceFollowed {
		t.Fatalf("first slot expected followed, got %s", result.Posts[0].Source)
	}

	// 同一帖子可能被多个来源命中，focus 在标签存在性
	seen := map[string]bool{}
	for _, post := range result.Posts {
		seen[post.Source] = true
	}
	if !seen[consts.FeedSourceFollowed] || !seen[consts.FeedSourceTrending] {
		t.Fatalf("expected followed and trending sources, got %v", seen)
	}
}

func TestComposeFeed_EmptyDatabase(t *testing.T) {
	setupTestDB(t)
	viewer := createTestUser(t, "lonely")

	result, err := ComposeFeed(viewer.ID, 1, 20)
	if err != nil {
		t.Fatalf("ComposeFeed: %v", err)
	}
	if len(result.Posts) != 0 {
		t.Fatalf("expected empty feed, got %d", len(result.Posts))
	}
	if result.HasNextPage {
		t.Fatal("expected no next page")
	}
}

func TestComposeFeed_PaginationAdvancesFollowedSource(t *testing.T) {
	setupTestDB(t)

	viewer := createTestUser(t, "pager")
	author := createTestUser(t, "prolific")
	followUser(t, viewer.ID, author.ID)

	// 显式错开创建时间，保证排序稳定
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 40; i++ {
		post := createTestPost(t, author.ID, "post")
		ts := base.Add(time.Duration(i) * time.Minute)
		if err := db.DB.Model(post).Update("created_at", ts).Error; err != nil {
			t.Fatalf("update created_at: %v", err)
		}
	}

	page1, err := ComposeFeed(viewer.ID, 1, 20)
	if err != nil {
		t.Fatalf("page1: %v", err)
	}
	page2, err := ComposeFeed(viewer.ID, 2, 20)
	if err != nil {
		t.Fatalf("page2: %v", err)
	}

	firstFollowed := map[uint]bool{}
	for _, post := range page1.Posts {
		if post.Source == consts.FeedSourceFollowed {
			firstFollowed[post.ID] = true
		}
	}
	// 第二页的 followed 候选必须与第一页不重叠
	for _, post := range page2.Posts {
		if post.Source == consts.FeedSourceFollowed && firstFollowed[post.ID] {
			t.Fatalf("followed post %d repeated across pages", post.ID)
		}
	}
}

func TestSimpleFeed_OnlyFollowedAuthors(t *testing.T) {
	setupTestDB(t)

	viewer := createTestUser(t, "viewer3")
	friend := createTestUser(t, "friend3")
	stranger := createTestUser(t, "stranger3")
	followUser(t, viewer.ID, friend.ID)

	createTestPost(t, friend.ID, "from friend")
	createTestPost(t, stranger.ID, "from stranger")

	posts, err := SimpleFeed(viewer.ID, 1, 20)
	if err != nil {
		t.Fatalf("SimpleFeed: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("expected 1 post, got %d", len(posts))
	}
	if posts[0].User.ID != friend.ID {
		t.Fatalf("expected post from followed author, got user %d", posts[0].User.ID)
	}
}

func TestInterleave_RoundRobinOrder(t *testing.T) {
	a := []FeedPost{{PostView: PostView{ID: 1}, Source: "a"}, {PostView: PostView{ID: 2}, Source: "a"}}
	b := []FeedPost{{PostView: PostView{ID: 3}, Source: "b"}}
	c := []FeedPost{{PostView: PostView{ID: 4}, Source: "c"}, {PostView: PostView{ID: 5}, Source: "c"}, {PostView: PostView{ID: 6}, Source: "c"}}

	mixed := interleave(10, a, b, c)

	wantOrder := []uint{1, 3, 4, 2, 5, 6}
	if len(mixed.posts) != len(wantOrder) {
		t.Fatalf("expected %d posts, got %d", len(wantOrder), len(mixed.posts))
	}
	for i, id := range wantOrder {
		if mixed.posts[i].ID != id {
			t.Fatalf("slot %d expected post %d, got %d", i, id, mixed.posts[i].ID)
		}
	}
	if mixed.preTruncation != 6 {
		t.Fatalf("preTruncation expected 6, got %d", mixed.preTruncation)
	}
}

func TestInterleave_TruncatesToLimit(t *testing.T) {
	var a, b []FeedPost
	for i := 1; i <= 5; i++ {
		a = append(a, FeedPost{PostView: PostView{ID: uint(i)}, Source: "a"})
		b = append(b, FeedPost{PostView: PostView{ID: uint(i + 10)}, Source: "b"})
	}

	mixed := interleave(4, a, b)
	if len(mixed.posts) != 4 {
		t.Fatalf("expected truncation to 4, got %d", len(mixed.posts))
	}
	if mixed.preTruncation != 10 {
		t.Fatalf("preTruncation expected 10, got %d", mixed.preTruncation)
	}
}
