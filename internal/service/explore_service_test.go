package service

import (
	"testing"

	"red-social-server/internal/consts"
	"red-social-server/internal/db"
	"red-social-server/internal/model"
)

func TestComposeExplore_ExcludesSelfAndFollowed(t *testing.T) {
	setupTestDB(t)

	viewer := createTestUser(t, "explorer")
	followedAuthor := createTestUser(t, "known_author")
	newAuthor := createTestUser(t, "new_author")
	followUser(t, viewer.ID, followedAuthor.ID)

	ownPost := createTestPost(t, viewer.ID, "mine")
	followedPost := createTestPost(t, followedAuthor.ID, "known")
	freshPost := createTestPost(t, newAuthor.ID, "fresh")

	for _, category := range []string{
		consts.ExploreCategoryTrending,
		consts.ExploreCategoryRecent,
		consts.ExploreCategoryRandom,
		"", // mixed
	} {
		result, err := ComposeExplore(viewer.ID, 1, 24, category)
		if err != nil {
			t.Fatalf("ComposeExplore(%q): %v", category, err)
		}
		for _, post := range result.Posts {
			if post.ID == ownPost.ID {
				t.Fatalf("category %q returned viewer's own post", category)
			}
			if post.ID == followedPost.ID {
				t.Fatalf("category %q returned followed author's post", category)
			}
		}
		found := false
		for _, post := range result.Posts {
			if post.ID == freshPost.ID {
				found = true
			}
		}
		if !found {
			t.Fatalf("category %q should surface unfollowed author's post", category)
		}
	}
}

func TestComposeExplore_TrendingOrderedByEngagement(t *testing.T) {
	setupTestDB(t)

	viewer := createTestUser(t, "explorer2")
	author := createTestUser(t, "creator")
	fan := createTestUser(t, "fan")

	quiet := createTestPost(t, author.ID, "quiet")
	popular := createTestPost(t, author.ID, "popular")

	if err := db.DB.Create(&model.Like{PostID: popular.ID, UserID: fan.ID}).Error; err != nil {
		t.Fatalf("create like: %v", err)
	}
	if err := db.DB.Create(&model.Comment{PostID: popular.ID, UserID: fan.ID, Body: "赞"}).Error; err != nil {
		t.Fatalf("create comment: %v", err)
	}

	result, err := ComposeExplore(viewer.ID, 1, 24, consts.ExploreCategoryTrending)
	if err != nil {
		t.Fatalf("ComposeExplore trending: %v", err)
	}
	if len(result.Posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(result.Posts))
	}
	if result.Posts[0].ID != popular.ID {
		t.Fatalf("engaged post should rank first, got %d", result.Posts[0].ID)
	}
	if result.Posts[1].ID != quiet.ID {
		t.Fatalf("quiet post should rank second, got %d", result.Posts[1].ID)
	}
	if result.Category != consts.ExploreCategoryTrending {
		t.Fatalf("category mismatch: %s", result.Category)
	}
}

func TestComposeExplore_RecentPagination(t *testing.T) {
	setupTestDB(t)

	viewer := createTestUser(t, "explorer3")
	author := createTestUser(t, "poster")

	for i := 0; i < 30; i++ {
		createTestPost(t, author.ID, "p")
	}

	page1, err := ComposeExplore(viewer.ID, 1, 24, consts.ExploreCategoryRecent)
	if err != nil {
		t.Fatalf("page1: %v", err)
	}
	if len(page1.Posts) != 24 {
		t.Fatalf("expected full page of 24, got %d", len(page1.Posts))
	}
	if !page1.HasNextPage {
		t.Fatal("expected next page")
	}

	page2, err := ComposeExplore(viewer.ID, 2, 24, consts.ExploreCategoryRecent)
	if err != nil {
		t.Fatalf("page2: %v", err)
	}
	if len(page2.Posts) != 6 {
		t.Fatalf("expected 6 remaining posts, got %d", len(page2.Posts))
	}
	if page2.HasNextPage {
		t.Fatal("expected last page")
	}

	seen := map[uint]bool{}
	for _, post := range page1.Posts {
		seen[post.ID] = true
	}
	for _, post := range page2.Posts {
		if seen[post.ID] {
			t.Fatalf("post %d repeated across recent pages", post.ID)
		}
	}
}

func TestComposeExplore_MixedSourceTags(t *testing.T) {
	setupTestDB(t)

	viewer := createTestUser(t, "explorer4")
	author := createTestUser(t, "mixed_author")

	for i := 0; i < 30; i++ {
		createTestPost(t, author.ID, "m")
	}

	result, err := ComposeExplore(viewer.ID, 1, 24, "")
	if err != nil {
		t.Fatalf("ComposeExplore mixed: %v", err)
	}
	if result.Category != consts.ExploreCategoryMixed {
		t.Fatalf("expected mixed category, got %s", result.Category)
	}

	// 混合模式上限为 12 / 7 / 5 (limit=24)
	if result.Report.Recent != 12 {
		t.Fatalf("recent cap expected 12, got %d", result.Report.Recent)
	}
	if result.Report.Trending != 7 {
		t.Fatalf("trending cap expected 7, got %d", result.Report.Trending)
	}
	if result.Report.Random != 5 {
		t.Fatalf("random cap expected 5, got %d", result.Report.Random)
	}

	for _, post := range result.Posts {
		switch post.Source {
		case consts.FeedSourceRecent, consts.FeedSourceTrending, consts.FeedSourceRandom:
		default:
			t.Fatalf("unexpected source tag %q", post.Source)
		}
	}
}
