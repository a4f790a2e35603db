package chart

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tictracker/internal/catalog"
	"github.com/tictracker/internal/service"
)

func fptr(v float64) *float64 { return &v }

func TestRenderEmptyShowsPlaceholder(t *testing.T) {
	svg, err := Render(service.ChartData{Type: service.ChartBar, Empty: true, EmptyMessage: "此期間沒有資料可供顯示。"}, Options{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(svg, "<svg"))
	assert.Contains(t, svg, "此期間沒有資料可供顯示。")
}

func TestRenderStackedLimitsLegend(t *testing.T) {
	keys := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
	colors := map[string]string{}
	values := map[string]int{}
	for i, k := range keys {
		colors[k] = catalog.Tableau10[i]
		values[k] = 1
	}
	data := service.ChartData{
		Type:   service.ChartStacked,
		Keys:   keys,
		Colors: colors,
		Rows:   []service.DayRow{{Date: "2024-05-01", Values: values, Total: len(keys)}, {Date: "2024-05-02", Values: map[string]int{}}},
	}

	svg, err := Render(data, Options{Width: 800})
	require.NoError(t, err)
	assert.Contains(t, svg, ">h</text>")
	assert.NotContains(t, svg, ">i</text>", "legend shows at most 8 keys")
	assert.Equal(t, len(keys), strings.Count(svg, "<title>2024-05-01"))
	assert.True(t, strings.HasSuffix(svg, "</svg>"))
}

func TestRenderPieAndCombo(t *testing.T) {
	pie := service.ChartData{
		Type:       service.ChartPie,
		Categories: []catalog.Category{catalog.CategoryMood},
		Keys:       []string{"開心 😊", "難過 😢"},
		Colors:     map[string]string{"開心 😊": "#FBBF24", "難過 😢": "#60A5FA"},
		Slices:     []service.PieSlice{{Name: "開心 😊", Value: 3}, {Name: "難過 😢", Value: 1}},
	}
	svg, err := Render(pie, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(svg, "<path"))
	assert.Contains(t, svg, "(75%)")

	combo := service.ChartData{
		Type:       service.ChartCombo,
		Categories: []catalog.Category{catalog.CategoryBehavior},
		Rows: []service.DayRow{
			{Date: "2024-05-01", Total: 2, Temperature: fptr(25)},
			{Date: "2024-05-02", Total: 0},
			{Date: "2024-05-03", Total: 4, Temperature: fptr(28.5)},
		},
	}
	svg, err = Render(combo, Options{})
	require.NoError(t, err)
	assert.Contains(t, svg, "<polyline")
	assert.Contains(t, svg, "#007AFF")
	assert.Contains(t, svg, "05/03")
}

func TestRenderGrowthAndUnknownType(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	data := service.ChartData{
		Type:   service.ChartGrowth,
		Keys:   []string{"身高 (cm)", "體重 (kg)"},
		Colors: map[string]string{"身高 (cm)": "#3b82f6", "體重 (kg)": "#ef4444"},
		Points: []service.GrowthPoint{
			{Timestamp: start, Height: fptr(120), Weight: fptr(24)},
			{Timestamp: start + 86400000*180, Height: fptr(124)},
		},
	}
	svg, err := Render(data, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(svg, "<polyline"))

	_, err = Render(service.ChartData{Type: "radar"}, Options{})
	assert.ErrorIs(t, err, service.ErrInvalidChartType)
}
