package handler

import (
	"net/http"
	"red-social-server/internal/common/httpx"
	"red-social-server/internal/service"

	"github.com/gin-gonic/gin"
)

// UploadLocal 接收 multipart 上传并走完整的图片摄取管线。
// 成功时返回新建的帖子，衍生图可能因部分失败而少于目录定义的数量。
func UploadLocal(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请选择图片文件"})
		return
	}

	text := c.PostForm("text")
	location := c.PostForm("location")

	post, err := service.IngestImage(file, uid, text, location)
	if err != nil {
		httpx.WriteServiceError(c, err, "上传失败，请稍后重试")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "上传成功",
		"post":    service.NewPostView(post),
	})
}

// TransformationsInfo 衍生图目录：客户端据此得知能请求哪些变体
func TransformationsInfo(c *gin.Context) {
	catalog := service.VariantCatalog()
	kinds := make([]gin.H, 0, len(catalog))
	for _, t := range catalog {
		kinds = append(kinds, gin.H{
			"kind":        t.Kind,
			"description": t.Description,
		})
	}
	c.JSON(http.StatusOK, gin.H{"transformations": kinds})
}
