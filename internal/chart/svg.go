// Package chart renders statistics as standalone SVG documents so the pages
// work without a client-side charting library.
package chart

import (
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/tictracker/internal/service"
)

// MaxLegendKeys 是图例最多显示的项目数。
const MaxLegendKeys = 8

// Options 控制画布尺寸。
type Options struct {
	Width  int
	Height int
}

type margin struct{ top, right, bottom, left float64 }

var defaultMargin = margin{top: 40, right: 40, bottom: 60, left: 40}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 640
	}
	if o.Height <= 0 {
		o.Height = 300
	}
	return o
}

// Render 根据图表类型输出 SVG。
func Render(data service.ChartData, opts Options) (string, error) {
	opts = opts.withDefaults()
	if data.Empty {
		return renderEmpty(data.EmptyMessage, opts), nil
	}

	switch data.Type {
	case service.ChartStacked:
		return renderStacked(data, opts), nil
	case service.ChartBar:
		return renderBar(data, opts), nil
	case service.ChartPie:
		return renderPie(data, opts), nil
	case service.ChartCombo:
		return renderCombo(data, opts), nil
	case service.ChartGrowth:
		return renderGrowth(data, opts), nil
	}
	return "", fmt.Errorf("%w: %q", service.ErrInvalidChartType, data.Type)
}

type canvas struct {
	b    strings.Builder
	opts Options
	m    margin
}

func newCanvas(opts Options, m margin) *canvas {
	c := &canvas{opts: opts, m: m}
	fmt.Fprintf(&c.b, `<svg xmlns="http://www.w3.org/2000/svg" width="100%%" viewBox="0 0 %d %d" font-family="sans-serif" font-size="11">`, opts.Width, opts.Height)
	return c
}

func (c *canvas) innerWidth() float64  { return float64(c.opts.Width) - c.m.left - c.m.right }
func (c *canvas) innerHeight() float64 { return float64(c.opts.Height) - c.m.top - c.m.bottom }

func (c *canvas) rect(x, y, w, h float64, fill, title string) {
	fmt.Fprintf(&c.b, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s">`, x, y, math.Max(w, 0), math.Max(h, 0), attr(fill))
	if title != "" {
		fmt.Fprintf(&c.b, `<title>%s</title>`, html.EscapeString(title))
	}
	c.b.WriteString(`</rect>`)
}

func (c *canvas) text(x, y float64, anchor, fill, content string, extra string) {
	fmt.Fprintf(&c.b, `<text x="%.2f" y="%.2f" text-anchor="%s" fill="%s"%s>%s</text>`, x, y, anchor, attr(fill), extra, html.EscapeString(content))
}

func (c *canvas) line(x1, y1, x2, y2 float64, stroke string) {
	fmt.Fprintf(&c.b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s"/>`, x1, y1, x2, y2, attr(stroke))
}

func (c *canvas) polyline(points [][2]float64, stroke string) {
	if len(points) == 0 {
		return
	}
	parts := make([]string, 0, len(points))
	for _, p := range points {
		parts = append(parts, fmt.Sprintf("%.2f,%.2f", p[0], p[1]))
	}
	fmt.Fprintf(&c.b, `<polyline points="%s" fill="none" stroke="%s" stroke-width="2"/>`, strings.Join(parts, " "), attr(stroke))
	for _, p := range points {
		fmt.Fprintf(&c.b, `<circle cx="%.2f" cy="%.2f" r="3" fill="%s"/>`, p[0], p[1], attr(stroke))
	}
}

// yAxis 绘制左侧（或右侧）刻度，返回使用的最大值。
func (c *canvas) yAxis(highest float64, right bool, color string) float64 {
	top := niceCeil(highest)
	x := c.m.left
	anchor := "end"
	offset := -6.0
	if right {
		x = c.m.left + c.innerWidth()
		anchor = "start"
		offset = 6
	}
	c.line(x, c.m.top, x, c.m.top+c.innerHeight(), "#9CA3AF")
	const ticks = 4
	for i := 0; i <= ticks; i++ {
		v := top * float64(i) / ticks
		y := c.m.top + c.innerHeight() - c.innerHeight()*float64(i)/ticks
		c.text(x+offset, y+4, anchor, color, formatNumber(v), "")
	}
	return top
}

// xLabels 绘制日期标签，天数较多时间隔显示。
func (c *canvas) xLabels(labels []string) {
	if len(labels) == 0 {
		return
	}
	baseY := c.m.top + c.innerHeight()
	c.line(c.m.left, baseY, c.m.left+c.innerWidth(), baseY, "#9CA3AF")
	step := 1
	if len(labels) > 10 {
		step = int(math.Ceil(float64(len(labels)) / 10))
	}
	band := c.innerWidth() / float64(len(labels))
	for i := 0; i < len(labels); i += step {
		x := c.m.left + band*(float64(i)+0.5)
		c.text(x, baseY+8, "end", "#4B5563", shortDate(labels[i]), fmt.Sprintf(` transform="rotate(-45 %.2f %.2f)" dy="0.7em"`, x, baseY+8))
	}
}

func (c *canvas) legend(keys []string, colors map[string]string) {
	if len(keys) > MaxLegendKeys {
		keys = keys[:MaxLegendKeys]
	}
	x := c.m.left
	for _, key := range keys {
		c.rect(x, 10, 12, 12, colors[key], "")
		c.text(x+16, 20, "start", "#374151", key, "")
		x += 24 + float64(len([]rune(key)))*11
	}
}

func (c *canvas) String() string {
	c.b.WriteString(`</svg>`)
	return c.b.String()
}

func renderEmpty(message string, opts Options) string {
	if message == "" {
		message = "此期間沒有資料可供顯示。"
	}
	c := newCanvas(opts, defaultMargin)
	c.text(float64(opts.Width)/2, float64(opts.Height)/2, "middle", "#6B7280", message, ` font-size="13"`)
	return c.String()
}

func niceCeil(v float64) float64 {
	if v <= 0 {
		return 1
	}
	exp := math.Pow(10, math.Floor(math.Log10(v)))
	for _, f := range []float64{1, 2, 2.5, 5, 10} {
		if f*exp >= v {
			return f * exp
		}
	}
	return 10 * exp
}

func formatNumber(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}

// shortDate 将 YYYY-MM-DD 缩短为 MM/DD。
func shortDate(date string) string {
	if len(date) == len("2006-01-02") {
		return date[5:7] + "/" + date[8:]
	}
	return date
}

func attr(v string) string {
	return html.EscapeString(v)
}
