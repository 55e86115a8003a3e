package service

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// VariantTransform 一条衍生图规则。目录顺序即派生顺序。
type VariantTransform struct {
	Kind        string
	Description string
	Quality     int
	Apply       func(image.Image) *image.NRGBA
}

const (
	thumbJPEGQuality   = 75
	variantJPEGQuality = 85
)

// VariantCatalog 固定的衍生图目录。尺寸与质量常量不可更改，
// 否则与既有存量资源不兼容。
func VariantCatalog() []VariantTransform {
	return []VariantTransform{
		// 标准尺寸
		{
			Kind:        "thumb",
			Description: "256x256 方形缩略图",
			Quality:     thumbJPEGQuality,
			Apply: func(src image.Image) *image.NRGBA {
				return imaging.Fill(src, 256, 256, imaging.Center, imaging.Lanczos)
			},
		},
		{
			Kind:        "medium",
			Description: "中等尺寸，最大宽度 1024px",
			Quality:     variantJPEGQuality,
			Apply:       widthBounded(1024),
		},
		{
			Kind:        "large",
			Description: "大尺寸，最大宽度 2048px",
			Quality:     variantJPEGQuality,
			Apply:       widthBounded(2048),
		},
		{
			Kind:        "small",
			Description: "小尺寸，最大宽度 512px",
			Quality:     variantJPEGQuality,
			Apply:       widthBounded(512),
		},

		// 艺术效果
		{
			Kind:        "bw",
			Description: "黑白，带伽马微调",
			Quality:     variantJPEGQuality,
			Apply: func(src image.Image) *image.NRGBA {
				out := imaging.Grayscale(src)
				out = imaging.AdjustGamma(out, 1.1)
				return imaging.AdjustBrightness(out, 5)
			},
		},
		{
			Kind:        "sepia",
			Description: "复古棕褐色调",
			Quality:     variantJPEGQuality,
			Apply: func(src image.Image) *image.NRGBA {
				out := imaging.Grayscale(src)
				out = tint(out, 255, 240, 205)
				return imaging.AdjustSaturation(out, -40)
			},
		},
		{
			Kind:        "vintage",
			Description: "复古暖色调",
			Quality:     variantJPEGQuality,
			Apply: func(src image.Image) *image.NRGBA {
				out := imaging.AdjustBrightness(src, -10)
				out = imaging.AdjustSaturation(out, -30)
				out = tint(out, 255, 245, 220)
				return imaging.AdjustGamma(out, 1.2)
			},
		},

		// 画质增强
		{
			Kind:        "enhanced",
			Description: "提升亮度与饱和度",
			Quality:     variantJPEGQuality,
			Apply: func(src image.Image) *image.NRGBA {
				out := imaging.AdjustBrightness(src, 10)
				out = imaging.AdjustSaturation(out, 20)
				return imaging.Sharpen(out, 1.0)
			},
		},
		{
			Kind:        "contrast",
			Description: "高对比度，带伽马回调",
			Quality:     variantJPEGQuality,
			Apply: func(src image.Image) *image.NRGBA {
				out := imaging.AdjustContrast(src, 30)
				return imaging.AdjustGamma(out, 0.9)
			},
		},
		{
			Kind:        "soft",
			Description: "柔和虚化",
			Quality:     variantJPEGQuality,
			Apply: func(src image.Image) *image.NRGBA {
				out := imaging.AdjustBrightness(src, 5)
				out = imaging.AdjustSaturation(out, -20)
				return imaging.Blur(out, 0.5)
			},
		},

		// 色温效果
		{
			Kind:        "cool",
			Description: "冷蓝色调",
			Quality:     variantJPEGQuality,
			Apply: func(src image.Image) *image.NRGBA {
				out := tint(src, 200, 220, 255)
				return imaging.AdjustSaturation(out, 10)
			},
		},
		{
			Kind:        "warm",
			Description: "暖金色调",
			Quality:     variantJPEGQuality,
			Apply: func(src image.Image) *image.NRGBA {
				out := tint(src, 255, 235, 200)
				return imaging.AdjustSaturation(out, 10)
			},
		},

		// 固定比例
		{
			Kind:        "square",
			Description: "800x800 方形裁剪",
			Quality:     variantJPEGQuality,
			Apply: func(src image.Image) *image.NRGBA {
				return imaging.Fill(src, 800, 800, imaging.Center, imaging.Lanczos)
			},
		},
	}
}

// widthBounded 等比缩放到目标宽度，不放大。
func widthBounded(maxWidth int) func(image.Image) *image.NRGBA {
	return func(src image.Image) *image.NRGBA {
		if src.Bounds().Dx() <= maxWidth {
			return imaging.Clone(src)
		}
		return imaging.Resize(src, maxWidth, 0, imaging.Lanczos)
	}
}

// tint 按给定 RGB 比例对每个通道做乘性着色（255 表示该通道不变）。
func tint(src image.Image, r, g, b float64) *image.NRGBA {
	return imaging.AdjustFunc(src, func(c color.NRGBA) color.NRGBA {
		c.R = clampChannel(float64(c.R) * r / 255.0)
		c.G = clampChannel(float64(c.G) * g / 255.0)
		c.B = clampChannel(float64(c.B) * b / 255.0)
		return c
	})
}

func clampChannel(v float64) uint8 {
	return uint8(math.Min(math.Max(v, 0), 255))
}
