package service

import (
	"testing"

	"red-social-server/internal/common"
)

func TestGetUserProfile_StatsAndFollowState(t *testing.T) {
	setupTestDB(t)

	star := createTestUser(t, "star")
	fan := createTestUser(t, "star_fan")
	followUser(t, fan.ID, star.ID)
	createTestPost(t, star.ID, "p1")
	createTestPost(t, star.ID, "p2")

	// 游客视角
	profile, err := GetUserProfile("star", 0)
	if err != nil {
		t.Fatalf("GetUserProfile: %v", err)
	}
	if profile.Stats.Followers != 1 || profile.Stats.Following != 0 || profile.Stats.Posts != 2 {
		t.Fatalf("stats mismatch: %+v", profile.Stats)
	}
	if profile.IsFollowing || profile.IsSelf {
		t.Fatal("guest view must not carry follow state")
	}

	// 粉丝视角
	profile, err = GetUserProfile("star", fan.ID)
	if err != nil {
		t.Fatalf("GetUserProfile as fan: %v", err)
	}
	if !profile.IsFollowing {
		t.Fatal("fan should see isFollowing=true")
	}

	// 本人视角
	profile, err = GetUserProfile("star", star.ID)
	if err != nil {
		t.Fatalf("GetUserProfile self: %v", err)
	}
	if !profile.IsSelf || profile.IsFollowing {
		t.Fatalf("self view mismatch: isSelf=%v isFollowing=%v", profile.IsSelf, profile.IsFollowing)
	}

	_, err = GetUserProfile("missing_user", 0)
	if serviceErr, ok := common.AsServiceError(err); !ok || serviceErr.Code != common.ErrorCodeNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestUpdateProfile_PartialUpdates(t *testing.T) {
	setupTestDB(t)

	user := createTestUser(t, "editable")

	newName := "新名字"
	updated, err := UpdateProfile(user.ID, &newName, nil)
	if err != nil {
		t.Fatalf("UpdateProfile name: %v", err)
	}
	if updated.Name != "新名字" {
		t.Fatalf("name not updated: %s", updated.Name)
	}

	newBio := "记录生活"
	updated, err = UpdateProfile(user.ID, nil, &newBio)
	if err != nil {
		t.Fatalf("UpdateProfile bio: %v", err)
	}
	if updated.Bio != "记录生活" {
		t.Fatalf("bio not updated: %s", updated.Bio)
	}
	if updated.Name != "新名字" {
		t.Fatalf("nil field must not reset name, got %s", updated.Name)
	}

	empty := "   "
	_, err = UpdateProfile(user.ID, &empty, nil)
	if serviceErr, ok := common.AsServiceError(err); !ok || serviceErr.Code != common.ErrorCodeValidation {
		t.Fatalf("expected validation_error for blank name, got %v", err)
	}
}

func TestSearchUsers_FollowEnrichment(t *testing.T) {
	setupTestDB(t)

	viewer := createTestUser(t, "search_viewer")
	createTestUser(t, "search_one")
	target := createTestUser(t, "search_two")
	followUser(t, viewer.ID, target.ID)

	results, err := SearchUsers("search_", 20, viewer.ID)
	if err != nil {
		t.Fatalf("SearchUsers: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(results))
	}
	for _, r := range results {
		if r.Username == "search_two" && !r.IsFollowing {
			t.Fatal("followed user should be marked isFollowing")
		}
		if r.Username == "search_one" && r.IsFollowing {
			t.Fatal("unfollowed user must not be marked isFollowing")
		}
	}

	// 空关键字直接返回空集
	results, err = SearchUsers("   ", 20, viewer.ID)
	if err != nil {
		t.Fatalf("SearchUsers blank: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("blank query should return nothing, got %d", len(results))
	}
}

func TestListUserPosts_Ordering(t *testing.T) {
	setupTestDB(t)

	author := createTestUser(t, "chronic_poster")
	for i := 0; i < 5; i++ {
		createTestPost(t, author.ID, "p")
	}

	posts, err := ListUserPosts("chronic_poster", 1, 3)
	if err != nil {
		t.Fatalf("ListUserPosts: %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("expected page of 3, got %d", len(posts))
	}

	rest, err := ListUserPosts("chronic_poster", 2, 3)
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if len(rest) != 2 {
		t.Fatalf("expected 2 remaining, got %d", len(rest))
	}
}
