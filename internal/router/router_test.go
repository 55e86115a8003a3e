package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"red-social-server/internal/config"
	"red-social-server/internal/testutils"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupEngine(t *testing.T) *gin.Engine {
	t.Helper()
	testutils.SetupDB(t)
	config.InitConfig(t.TempDir())

	// 上传会写 storage/ 目录，切到临时目录避免污染工作区
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	tmp := t.TempDir()
	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	r := gin.New()
	Init(r)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	resp := map[string]any{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func registerUser(t *testing.T, r *gin.Engine, username string) string {
	t.Helper()
	w, resp := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"name":     username,
		"password": "Str0ngPass!",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("注册失败: %d %s", w.Code, w.Body.String())
	}
	token, _ := resp["token"].(string)
	if token == "" {
		t.Fatal("注册响应缺少 token")
	}
	return token
}

// 测试内容：验证核心 API 路由被正确注册。
func TestInit_RegistersCoreRoutes(t *testing.T) {
	r := setupEngine(t)

	type wantRoute struct {
		method string
		path   string
	}
	wants := []wantRoute{
		{method: "POST", path: "/api/auth/register"},
		{method: "POST", path: "/api/auth/login"},
		{method: "GET", path: "/api/auth/google/url"},
		{method: "GET", path: "/api/captcha"},
		{method: "POST", path: "/api/uploads/local"},
		{method: "GET", path: "/api/uploads/transformations"},
		{method: "GET", path: "/api/feed"},
		{method: "GET", path: "/api/feed/following"},
		{method: "GET", path: "/api/feed/infinite"},
		{method: "GET", path: "/api/explore"},
		{method: "GET", path: "/api/explore/infinite"},
		{method: "GET", path: "/api/transformations/info"},
		{method: "GET", path: "/api/posts/:id"},
		{method: "POST", path: "/api/posts/:id/like"},
		{method: "POST", path: "/api/posts/:id/comments"},
		{method: "GET", path: "/api/users/:username"},
		{method: "POST", path: "/api/users/:username/follow"},
		{method: "GET", path: "/api/me"},
		{method: "PATCH", path: "/api/me/profile"},
		{method: "POST", path: "/api/friends/requests"},
		{method: "GET", path: "/api/conversations"},
		{method: "POST", path: "/api/messages/direct"},
		{method: "GET", path: "/api/notifications"},
	}

	have := make(map[string]bool)
	for _, route := range r.Routes() {
		have[route.Method+" "+route.Path] = true
	}

	for _, w := range wants {
		if !have[w.method+" "+w.path] {
			t.Fatalf("缺少路由: %s %s", w.method, w.path)
		}
	}
}

func TestInfiniteAliases_ServeSameHandlers(t *testing.T) {
	r := setupEngine(t)
	token := registerUser(t, r, "scroller")

	for _, path := range []string{
		"/api/feed/infinite?page=1&limit=10",
		"/api/explore/infinite?page=1&limit=10",
		"/api/transformations/info",
	} {
		w, _ := doJSON(t, r, http.MethodGet, path, token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("%s 应返回 200，得到 %d: %s", path, w.Code, w.Body.String())
		}
	}

	// 别名同样要求登录
	w, _ := doJSON(t, r, http.MethodGet, "/api/feed/infinite", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("未登录访问别名应返回 401，得到 %d", w.Code)
	}
}

func TestAuthFlow_RegisterLoginMe(t *testing.T) {
	r := setupEngine(t)
	registerUser(t, r, "flow_user")

	// 登录
	w, resp := doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"identifier": "flow_user",
		"password":   "Str0ngPass!",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("登录失败: %d %s", w.Code, w.Body.String())
	}
	token, _ := resp["token"].(string)
	if token == "" {
		t.Fatal("登录响应缺少 token")
	}

	// 拿登录 token 查自己的主页
	w, resp = doJSON(t, r, http.MethodGet, "/api/me", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("/api/me 失败: %d %s", w.Code, w.Body.String())
	}
	if resp["username"] != "flow_user" {
		t.Fatalf("主页信息不正确: %s", w.Body.String())
	}
	if _, ok := resp["stats"]; !ok {
		t.Fatalf("主页缺少统计信息: %s", w.Body.String())
	}

	// 密码错误
	w, _ = doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"identifier": "flow_user",
		"password":   "WrongPass1!",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("错误密码应返回 401，得到 %d", w.Code)
	}

	// 未登录访问受保护接口
	w, _ = doJSON(t, r, http.MethodGet, "/api/me", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("无 token 应返回 401，得到 %d", w.Code)
	}
}

func TestUploadLocal_EndToEnd(t *testing.T) {
	r := setupEngine(t)
	token := registerUser(t, r, "uploader")

	body, contentType := testutils.MultipartBody(t, "image", "photo.jpg", "image/jpeg", testutils.JPEGBytes(t, 640, 480), map[string]string{
		"text":     "周末的公园",
		"location": "北京",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/uploads/local", bytes.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("上传应返回 201，得到 %d: %s", w.Code, w.Body.String())
	}

	resp := map[string]any{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("响应解析失败: %v", err)
	}
	if success, _ := resp["success"].(bool); !success {
		t.Fatalf("响应缺少 success: %s", w.Body.String())
	}
	post, _ := resp["post"].(map[string]any)
	if post == nil {
		t.Fatalf("响应缺少 post: %s", w.Body.String())
	}
	if post["text"] != "周末的公园" {
		t.Fatalf("post.text 不匹配: %v", post["text"])
	}

	// 原图落盘
	matches, err := filepath.Glob("storage/originals/*/*.jpg")
	if err != nil || len(matches) != 1 {
		t.Fatalf("期望 1 个原图文件，得到 %v (%v)", matches, err)
	}

	// 未登录上传被拒
	req = httptest.NewRequest(http.MethodPost, "/api/uploads/local", bytes.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("未登录上传应返回 401，得到 %d", w.Code)
	}
}

func TestUploadLocal_RejectsNonImage(t *testing.T) {
	r := setupEngine(t)
	token := registerUser(t, r, "uploader2")

	body, contentType := testutils.MultipartBody(t, "image", "notes.txt", "text/plain", []byte("not an image"), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/uploads/local", bytes.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("非图片应返回 415，得到 %d: %s", w.Code, w.Body.String())
	}
}
