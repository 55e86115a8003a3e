package service

import (
	"os"
	"testing"

	"red-social-server/internal/config"
	"red-social-server/internal/db"
	"red-social-server/internal/model"
	"red-social-server/internal/testutils"

	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb := testutils.SetupDB(t)
	config.InitConfig(t.TempDir())
	return gdb
}

// setupTestStorage 把工作目录切到临时目录，使相对的 storage 根落在测试沙箱里
func setupTestStorage(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldwd) })
	return tmp
}

func createTestUser(t *testing.T, username string) *model.User {
	t.Helper()
	user := model.User{
		Username: username,
		Email:    username + "@example.com",
		Name:     username,
		IsActive: true,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return &user
}

func createTestPost(t *testing.T, uid uint, text string) *model.Post {
	t.Helper()
	post := model.Post{
		UserID:      uid,
		Text:        text,
		OriginalKey: "originals/test/" + text + ".jpg",
		Mime:        "image/jpeg",
		Width:       800,
		Height:      600,
		SizeBytes:   1024,
	}
	if err := db.DB.Create(&post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	return &post
}
