package service

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"red-social-server/internal/common"
	"red-social-server/internal/config"
	"red-social-server/internal/db"
	"red-social-server/internal/model"
	"red-social-server/internal/utils"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"gorm.io/gorm"

	// 注册 WebP 解码器
	_ "golang.org/x/image/webp"
)

// 允许的上传类型。声明的 Content-Type 与扩展名必须同时命中。
var (
	allowedUploadExts = map[string]bool{
		".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true,
	}
	allowedUploadMimes = map[string]bool{
		"image/jpeg": true, "image/jpg": true, "image/png": true,
		"image/webp": true, "image/gif": true,
	}
	extToMime = map[string]string{
		".jpg": "image/jpeg", ".jpeg": "image/jpeg", ".png": "image/png",
		".webp": "image/webp", ".gif": "image/gif",
	}
)

// ValidateUpload 上传前置校验：大小、类型、扩展名、真实内容。
// 任何拒绝都发生在写入之前。
func ValidateUpload(file *multipart.FileHeader) (string, error) {
	cfg := config.Get()
	maxSizeMB := cfg.Upload.MaxSizeMB
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	if file.Size > int64(maxSizeMB)*1024*1024 {
		return "", common.NewServiceError(common.ErrorCodePayloadTooLarge,
			fmt.Sprintf("文件大小不能超过 %dMB", maxSizeMB))
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedUploadExts[ext] {
		return ext, common.NewServiceError(common.ErrorCodeUnsupportedMediaType,
			"只允许上传 JPG、PNG、WebP、GIF 图片")
	}

	declared := strings.ToLower(strings.TrimSpace(strings.Split(file.Header.Get("Content-Type"), ";")[0]))
	if declared != "" && !allowedUploadMimes[declared] {
		return ext, common.NewServiceError(common.ErrorCodeUnsupportedMediaType,
			"不支持的 Content-Type: "+declared)
	}

	src, err := file.Open()
	if err != nil {
		return ext, common.NewServiceError(common.ErrorCodeValidation, "无法打开上传的文件")
	}
	defer func() { _ = src.Close() }()

	if valid, msg := validateImageContent(src, ext); !valid {
		return ext, common.NewServiceError(common.ErrorCodeUnsupportedMediaType, msg)
	}

	return ext, nil
}

// IngestImage 上传核心流程：校验 → 保存原图 → 尺寸门限 → 派生衍生图 → 落库。
// 派生阶段是部分成功语义：单个衍生图失败仅记录日志并跳过，调用方必须容忍
// 结果中的衍生图少于目录定义的数量。
func IngestImage(file *multipart.FileHeader, uid uint, text, location string) (*model.Post, error) {
	ext, err := ValidateUpload(file)
	if err != nil {
		return nil, err
	}

	cfg := config.Get()
	storageRoot := cfg.Storage.Root
	if storageRoot == "" {
		storageRoot = "storage"
	}

	// 原图路径：originals/{uid}/{毫秒时间戳}_{随机后缀}{扩展名}
	filename := fmt.Sprintf("%d_%s%s", time.Now().UnixMilli(), uuid.New().String()[:8], ext)
	originalDir := filepath.Join(storageRoot, "originals", fmt.Sprint(uid))
	if err := os.MkdirAll(originalDir, 0755); err != nil {
		log.Printf("MkdirAll error: %v\n", err)
		return nil, common.NewServiceError(common.ErrorCodeInternal, "系统错误: 无法创建存储目录")
	}
	originalPath := filepath.Join(originalDir, filename)

	if err := saveMultipartFile(file, originalPath); err != nil {
		log.Printf("保存原图失败: %v\n", err)
		return nil, common.NewServiceError(common.ErrorCodeInternal, "文件保存失败")
	}

	// 解码并校验最小尺寸；不合格时删除已写入的原图再返回错误
	img, err := imaging.Open(originalPath)
	if err != nil {
		_ = os.Remove(originalPath)
		return nil, common.NewServiceError(common.ErrorCodeUnsupportedMediaType, "图片解码失败")
	}

	width := img.Bounds().Dx()
	height := img.Bounds().Dy()
	minDim := cfg.Upload.MinDimension
	if minDim <= 0 {
		minDim = 100
	}
	if width < minDim || height < minDim {
		_ = os.Remove(originalPath)
		return nil, common.NewServiceError(common.ErrorCodeInvalidDimensions,
			fmt.Sprintf("图片宽高不得小于 %dx%d 像素", minDim, minDim))
	}

	originalKey := filepath.ToSlash(filepath.Join("originals", fmt.Sprint(uid), filename))
	variants := deriveVariants(img, storageRoot, uid, filename)
	log.Printf("✅ 已为 %s 生成 %d 个衍生图", originalKey, len(variants))

	post := model.Post{
		UserID:      uid,
		Text:        text,
		Location:    location,
		OriginalKey: originalKey,
		Mime:        extToMime[ext],
		Width:       width,
		Height:      height,
		SizeBytes:   file.Size,
		Variants:    variants,
	}

	// 记录创建失败时不回收已写入的文件（接受孤儿文件，见 DESIGN.md）
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&post).Error
	})
	if err != nil {
		log.Printf("发布记录创建失败: %v\n", err)
		return nil, common.NewServiceError(common.ErrorCodeRetrieval, "系统错误: 数据库记录失败")
	}

	return &post, nil
}

// deriveVariants 按目录顺序逐个派生。单项失败只记录日志并跳过，不中断整批。
func deriveVariants(src image.Image, storageRoot string, uid uint, originalFilename string) []model.Variant {
	// 衍生图统一转存为 .jpg，沿用原图的基础文件名
	baseName := strings.TrimSuffix(originalFilename, filepath.Ext(originalFilename)) + ".jpg"

	var created []model.Variant
	for _, transform := range VariantCatalog() {
		variant, err := deriveOne(src, transform, storageRoot, uid, baseName)
		if err != nil {
			log.Printf("❌ 衍生图 %s 生成失败: %v", transform.Kind, err)
			continue
		}
		created = append(created, *variant)
	}
	return created
}

func deriveOne(src image.Image, transform VariantTransform, storageRoot string, uid uint, baseName string) (*model.Variant, error) {
	out := transform.Apply(src)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.JPEG, imaging.JPEGQuality(transform.Quality)); err != nil {
		return nil, fmt.Errorf("编码失败: %w", err)
	}

	variantDir := filepath.Join(storageRoot, "variants", transform.Kind, fmt.Sprint(uid))
	if err := os.MkdirAll(variantDir, 0755); err != nil {
		return nil, fmt.Errorf("创建目录失败: %w", err)
	}

	outputPath := filepath.Join(variantDir, baseName)
	if err := os.WriteFile(outputPath, buf.Bytes(), 0644); err != nil {
		return nil, fmt.Errorf("写入失败: %w", err)
	}

	return &model.Variant{
		Kind:        transform.Kind,
		Key:         filepath.ToSlash(filepath.Join("variants", transform.Kind, fmt.Sprint(uid), baseName)),
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
		SizeBytes:   int64(buf.Len()),
		Description: transform.Description,
	}, nil
}

func saveMultipartFile(file *multipart.FileHeader, dst string) error {
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	_, err = io.Copy(out, src)
	return err
}

// validateImageContent 通过魔数嗅探校验文件真实类型与扩展名一致。
func validateImageContent(reader io.ReadSeeker, ext string) (bool, string) {
	return utils.ValidateImageContent(reader, ext)
}
