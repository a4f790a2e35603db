// Package catalog holds the fixed diary configuration: categories, their display
// attributes, the built-in sub-category groups and the small lookup tables used by
// the charts (emotion colours, BMI bands, weather codes).
package catalog

import "strings"

// Category 是日志条目的顶层分类。
type Category string

const (
	CategoryDiet       Category = "飲食"
	CategoryHealth     Category = "健康"
	CategoryMedication Category = "用藥"
	CategoryBehavior   Category = "行為"
	CategoryEvent      Category = "事件"
	CategoryMood       Category = "情緒"
)

// CategoryConfig 描述分类的展示属性。
type CategoryConfig struct {
	Category   Category `json:"category"`
	Icon       string   `json:"icon"`
	Color      string   `json:"color"`
	LightColor string   `json:"light_color"`
	HexColor   string   `json:"hex_color"`
}

var categoryConfigs = []CategoryConfig{
	{Category: CategoryDiet, Color: "border-cyan-500", LightColor: "bg-cyan-50", HexColor: "#06b6d4", Icon: `<svg xmlns="http://www.w3.org/2000/svg" class="w-6 h-6" fill="none" viewBox="0 0 24 24" stroke-width="1.5" stroke="currentColor"><path stroke-linecap="round" stroke-linejoin="round" d="M21 15.75a2.25 2.25 0 0 1-2.25 2.25H5.25A2.25 2.25 0 0 1 3 15.75V11.25a2.25 2.25 0 0 1 2.25-2.25h13.5A2.25 2.25 0 0 1 21 11.25v4.5Z" /><path stroke-linecap="round" stroke-linejoin="round" d="M12 9V5.25M9 9V5.25M15 9V5.25M8.25 9h7.5" /></svg>`},
	{Category: CategoryHealth, Color: "border-cyan-500", LightColor: "bg-cyan-50", HexColor: "#06b6d4", Icon: `<svg xmlns="http://www.w3.org/2000/svg" class="w-6 h-6" fill="none" viewBox="0 0 24 24" stroke-width="1.5" stroke="currentColor"><path stroke-linecap="round" stroke-linejoin="round" d="M21 8.25c0-2.485-2.099-4.5-4.688-4.5-1.935 0-3.597 1.126-4.312 2.733-.715-1.607-2.377-2.733-4.313-2.733C5.1 3.75 3 5.765 3 8.25c0 7.22 9 12 9 12s9-4.78 9-12Z" /></svg>`},
	{Category: CategoryMedication, Color: "border-red-500", LightColor: "bg-red-50", HexColor: "#FF3B30", Icon: `<svg xmlns="http://www.w3.org/2000/svg" class="w-6 h-6" fill="none" viewBox="0 0 24 24" stroke-width="1.5" stroke="currentColor"><path stroke-linecap="round" stroke-linejoin="round" d="M12 9.75 14.25 12m0 0 2.25 2.25M14.25 12l2.25-2.25M14.25 12 12 14.25m-2.58 4.92-2.25-2.25m0 0a3.375 3.375 0 0 1-4.773-4.773 3.375 3.375 0 0 1 4.774 4.774ZM21 12a9 9 0 1 1-18 0 9 9 0 0 1 18 0Z" /></svg>`},
	{Category: CategoryBehavior, Color: "border-blue-500", LightColor: "bg-blue-50", HexColor: "#007AFF", Icon: `<svg xmlns="http://www.w3.org/2000/svg" class="w-6 h-6" fill="none" viewBox="0 0 24 24" stroke-width="1.5" stroke="currentColor"><path stroke-linecap="round" stroke-linejoin="round" d="M15.75 6a3.75 3.75 0 1 1-7.5 0 3.75 3.75 0 0 1 7.5 0ZM4.5 20.25a7.5 7.5 0 0 1 15 0" /></svg>`},
	{Category: CategoryEvent, Color: "border-yellow-500", LightColor: "bg-yellow-50", HexColor: "#FF9500", Icon: `<svg xmlns="http://www.w3.org/2000/svg" class="w-6 h-6" fill="none" viewBox="0 0 24 24" stroke-width="1.5" stroke="currentColor"><path stroke-linecap="round" stroke-linejoin="round" d="M6.75 3v2.25M17.25 3v2.25M3 18.75V7.5a2.25 2.25 0 0 1 2.25-2.25h13.5A2.25 2.25 0 0 1 21 7.5v11.25m-18 0A2.25 2.25 0 0 0 5.25 21h13.5A2.25 2.25 0 0 0 21 18.75m-18 0h18" /></svg>`},
	{Category: CategoryMood, Color: "border-purple-500", LightColor: "bg-purple-50", HexColor: "#AF52DE", Icon: `<svg xmlns="http://www.w3.org/2000/svg" class="w-6 h-6" fill="none" viewBox="0 0 24 24" stroke-width="1.5" stroke="currentColor"><path stroke-linecap="round" stroke-linejoin="round" d="M14.828 14.828a4.06 4.06 0 0 1-5.656 0M9 10.5h.008v.008H9v-.008Zm6 0h.008v.008H15v-.008Z" /><path stroke-linecap="round" stroke-linejoin="round" d="M21 12a9 9 0 1 1-18 0 9 9 0 0 1 18 0Z" /></svg>`},
}

var categoryLookup = func() map[Category]CategoryConfig {
	lookup := make(map[Category]CategoryConfig, len(categoryConfigs))
	for _, cfg := range categoryConfigs {
		lookup[cfg.Category] = cfg
	}
	return lookup
}()

// Categories 按固定顺序返回全部分类。
func Categories() []Category {
	out := make([]Category, 0, len(categoryConfigs))
	for _, cfg := range categoryConfigs {
		out = append(out, cfg.Category)
	}
	return out
}

// Configs 返回分类配置的副本。
func Configs() []CategoryConfig {
	out := make([]CategoryConfig, len(categoryConfigs))
	copy(out, categoryConfigs)
	return out
}

// ConfigFor 查找分类配置。
func ConfigFor(category Category) (CategoryConfig, bool) {
	cfg, ok := categoryLookup[category]
	return cfg, ok
}

// ParseCategory 校验并规范化分类名称。
func ParseCategory(raw string) (Category, bool) {
	c := Category(strings.TrimSpace(raw))
	_, ok := categoryLookup[c]
	return c, ok
}

// ValidCategory reports whether raw names one of the fixed categories.
func ValidCategory(raw string) bool {
	_, ok := ParseCategory(raw)
	return ok
}

// HexColor returns the category colour, or a neutral grey for unknown names.
func HexColor(category Category) string {
	if cfg, ok := categoryLookup[category]; ok {
		return cfg.HexColor
	}
	return "#6B7280"
}
