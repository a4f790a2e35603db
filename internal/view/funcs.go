package view

import (
	"fmt"
	"html/template"
	"math"
	"slices"
	"time"

	"github.com/tictracker/internal/catalog"
	"github.com/tictracker/internal/db"
	"github.com/tictracker/internal/locale"
	"github.com/tictracker/internal/service"
)

// FuncMap 返回页面模板使用的辅助函数，loc 决定时间显示的时区。
func FuncMap(loc *time.Location) template.FuncMap {
	if loc == nil {
		loc = time.Local
	}
	return template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"hasCategory": func(list []catalog.Category, category catalog.Category) bool {
			return slices.Contains(list, category)
		},
		"chartLabel": ChartLabel,
		"categoryIcon": func(category string) template.HTML {
			cfg, ok := catalog.ConfigFor(catalog.Category(category))
			if !ok {
				return ""
			}
			return template.HTML(cfg.Icon)
		},
		"categoryColor": func(category string) string {
			return catalog.HexColor(catalog.Category(category))
		},
		"categoryClass": func(category string) string {
			cfg, ok := catalog.ConfigFor(catalog.Category(category))
			if !ok {
				return "border-gray-300"
			}
			return cfg.Color + " " + cfg.LightColor
		},
		"emotionColor": catalog.EmotionColor,
		"clock": func(ms int64) string {
			return time.UnixMilli(ms).In(loc).Format("15:04")
		},
		"dateTimeLocal": func(ms int64) string {
			return time.UnixMilli(ms).In(loc).Format("2006-01-02T15:04")
		},
		"weatherLine": WeatherLine,
		"label":       locale.Label,
		"svg": func(s string) template.HTML {
			return template.HTML(s)
		},
		"oneDecimal": func(v float64) string {
			return fmt.Sprintf("%.1f", v)
		},
		"deref": func(v *float64) float64 {
			if v == nil {
				return 0
			}
			return *v
		},
	}
}

// WeatherLine 格式化每日资讯：📍 地点 | 图标 温度°C 描述。
func WeatherLine(info *db.DailyInfo) string {
	if info == nil {
		return ""
	}
	return fmt.Sprintf("📍 %s | %s %d°C %s", info.Location, info.WeatherIcon, int(math.Round(info.Temperature)), info.WeatherDescription)
}

var chartLabels = map[service.ChartType]string{
	service.ChartStacked: "趨勢圖",
	service.ChartPie:     "分佈圖",
	service.ChartCombo:   "氣溫",
	service.ChartBar:     "總計圖",
	service.ChartGrowth:  "成長曲線",
}

// ChartLabel 返回图表类型的按钮文字。
func ChartLabel(language string, t service.ChartType) string {
	if label, ok := chartLabels[t]; ok {
		return locale.Label(language, label)
	}
	return string(t)
}
