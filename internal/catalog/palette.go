package catalog

import (
	"math"
	"strings"
)

type emotionColor struct {
	Label string
	Color string
}

var emotionColors = []emotionColor{
	{Label: "開心 😊", Color: "#FBBF24"},
	{Label: "平靜 🙂", Color: "#2DD4BF"},
	{Label: "難過 😢", Color: "#60A5FA"},
	{Label: "生氣 😠", Color: "#F87171"},
	{Label: "焦慮 😟", Color: "#A78BFA"},
	{Label: "興奮/亢奮 😄", Color: "#F97316"},
	{Label: "疲倦 😴", Color: "#94A3B8"},
	{Label: "無聊 😑", Color: "#64748B"},
}

// DefaultEmotionColor 用于无法识别的情绪。
const DefaultEmotionColor = "#BDBDBD"

// Tableau10 是非情绪单分类图表使用的配色。
var Tableau10 = []string{
	"#4e79a7", "#f28e2c", "#e15759", "#76b7b2", "#59a14f",
	"#edc949", "#af7aa1", "#ff9da7", "#9c755f", "#bab0ab",
}

// EmotionColor 根据情绪核心词（首个空格前的文字）匹配颜色。
func EmotionColor(label string) string {
	core, _, _ := strings.Cut(strings.TrimSpace(label), " ")
	if core == "" {
		return DefaultEmotionColor
	}
	for _, ec := range emotionColors {
		if strings.HasPrefix(ec.Label, core) {
			return ec.Color
		}
	}
	return DefaultEmotionColor
}

// EmotionShortLabel 去掉情绪标签中的表情符号。
func EmotionShortLabel(label string) string {
	core, _, _ := strings.Cut(strings.TrimSpace(label), " ")
	return core
}

// BMIBand 描述 BMI 区间及显示颜色。
type BMIBand struct {
	Category string `json:"category"`
	Color    string `json:"color"`
}

// BMI 计算身体质量指数，身高单位厘米、体重单位公斤；数据不足时返回 0。
func BMI(heightCM, weightKG float64) float64 {
	if heightCM <= 0 || weightKG <= 0 {
		return 0
	}
	m := heightCM / 100
	return weightKG / (m * m)
}

// BMICategory 依照国健署成人标准划分 BMI。
func BMICategory(bmi float64) BMIBand {
	switch {
	case math.IsNaN(bmi) || bmi <= 0:
		return BMIBand{Category: "無法計算", Color: "#6B7280"}
	case bmi < 18.5:
		return BMIBand{Category: "體重過輕", Color: "#3B82F6"}
	case bmi < 24:
		return BMIBand{Category: "正常範圍", Color: "#22C55E"}
	case bmi < 27:
		return BMIBand{Category: "體重過重", Color: "#F97316"}
	default:
		return BMIBand{Category: "肥胖", Color: "#EF4444"}
	}
}

// WeatherInfo 是天气代码的图标与描述。
type WeatherInfo struct {
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

// WeatherDisplay 将 WMO 天气代码映射为图标与中文描述。
func WeatherDisplay(code int) WeatherInfo {
	switch code {
	case 0:
		return WeatherInfo{Icon: "☀️", Description: "晴天"}
	case 1:
		return WeatherInfo{Icon: "🌤️", Description: "大致晴朗"}
	case 2:
		return WeatherInfo{Icon: "⛅️", Description: "多雲"}
	case 3:
		return WeatherInfo{Icon: "☁️", Description: "陰天"}
	case 45, 48:
		return WeatherInfo{Icon: "🌫️", Description: "有霧"}
	case 51, 53, 55, 56, 57:
		return WeatherInfo{Icon: "💧", Description: "毛毛雨"}
	case 61, 63, 65, 66, 67:
		return WeatherInfo{Icon: "🌧️", Description: "下雨"}
	case 71, 73, 75, 77:
		return WeatherInfo{Icon: "❄️", Description: "下雪"}
	case 80, 81, 82:
		return WeatherInfo{Icon: "🌦️", Description: "陣雨"}
	case 85, 86:
		return WeatherInfo{Icon: "🌨️", Description: "陣雪"}
	case 95, 96, 99:
		return WeatherInfo{Icon: "⛈️", Description: "雷雨"}
	default:
		return WeatherInfo{Icon: "🌡️", Description: "未知"}
	}
}
