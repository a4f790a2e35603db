package pwa

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"sync"

	"golang.org/x/image/vector"
)

// ErrIconSize 表示请求了不支持的图标尺寸。
var ErrIconSize = errors.New("unsupported icon size")

const (
	minIconSize = 16
	maxIconSize = 1024
)

type iconKey struct {
	size     int
	maskable bool
}

var (
	iconMu    sync.Mutex
	iconCache = map[iconKey][]byte{}
)

// Icon 返回指定尺寸的 PNG 图标，结果按尺寸缓存。
// maskable 图标铺满画布，普通图标绘制圆角底板。
func Icon(size int, maskable bool) ([]byte, error) {
	if size < minIconSize || size > maxIconSize {
		return nil, fmt.Errorf("%w: %d", ErrIconSize, size)
	}
	key := iconKey{size: size, maskable: maskable}

	iconMu.Lock()
	defer iconMu.Unlock()
	if cached, ok := iconCache[key]; ok {
		return cached, nil
	}

	img := rasterize(size, maskable)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode icon: %w", err)
	}
	iconCache[key] = buf.Bytes()
	return iconCache[key], nil
}

func rasterize(size int, maskable bool) *image.RGBA {
	s := float32(size)
	dst := image.NewRGBA(image.Rect(0, 0, size, size))

	bg := vector.NewRasterizer(size, size)
	if maskable {
		bg.MoveTo(0, 0)
		bg.LineTo(s, 0)
		bg.LineTo(s, s)
		bg.LineTo(0, s)
		bg.ClosePath()
	} else {
		roundedRect(bg, 0, 0, s, s, s*0.2)
	}
	bg.Draw(dst, dst.Bounds(), image.NewUniform(parseHex(ThemeColor)), image.Point{})

	// 心形，maskable 图标需要留出安全区
	scale := s * 0.55
	if maskable {
		scale = s * 0.42
	}
	heart := vector.NewRasterizer(size, size)
	cx, cy := s/2, s/2+scale*0.05
	heart.MoveTo(cx, cy+scale*0.42)
	heart.CubeTo(cx-scale*0.62, cy, cx-scale*0.5, cy-scale*0.5, cx, cy-scale*0.22)
	heart.CubeTo(cx+scale*0.5, cy-scale*0.5, cx+scale*0.62, cy, cx, cy+scale*0.42)
	heart.ClosePath()
	heart.DrawOp = draw.Over
	heart.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{})

	return dst
}

func roundedRect(r *vector.Rasterizer, x0, y0, x1, y1, radius float32) {
	r.MoveTo(x0+radius, y0)
	r.LineTo(x1-radius, y0)
	r.QuadTo(x1, y0, x1, y0+radius)
	r.LineTo(x1, y1-radius)
	r.QuadTo(x1, y1, x1-radius, y1)
	r.LineTo(x0+radius, y1)
	r.QuadTo(x0, y1, x0, y1-radius)
	r.LineTo(x0, y0+radius)
	r.QuadTo(x0, y0, x0+radius, y0)
	r.ClosePath()
}

func parseHex(hex string) color.RGBA {
	var r, g, b uint8
	if _, err := fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{A: 0xff}
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}
