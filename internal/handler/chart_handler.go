package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tictracker/internal/catalog"
	"github.com/tictracker/internal/chart"
	"github.com/tictracker/internal/service"
)

// chartRequest 从查询参数解析图表请求；未指定类型时按首个分类选择默认图表。
func (a *API) chartRequest(c *gin.Context) (service.ChartRequest, error) {
	categories, err := parseCategories(c.QueryArray("category"))
	if err != nil {
		return service.ChartRequest{}, err
	}
	period, err := parsePeriod(c.Query("period"))
	if err != nil {
		return service.ChartRequest{}, err
	}

	req := service.ChartRequest{Categories: categories, Period: period, Now: a.now()}
	raw := strings.TrimSpace(c.Query("type"))
	if raw == "" {
		first := catalog.CategoryBehavior
		if len(categories) > 0 {
			first = categories[0]
		}
		req.Type = service.DefaultChartType(first)
		return req, nil
	}
	req.Type, err = service.ParseChartType(raw)
	return req, err
}

// GetChart 返回图表数据 JSON。
func (a *API) GetChart(c *gin.Context) {
	req, err := a.chartRequest(c)
	if err != nil {
		a.respondServiceError(c, err, "產生圖表失敗")
		return
	}
	data, err := a.stats.Chart(req)
	if err != nil {
		a.respondServiceError(c, err, "產生圖表失敗")
		return
	}
	c.JSON(http.StatusOK, gin.H{"chart": data})
}

// GetChartSVG 返回渲染好的 SVG 图表。
func (a *API) GetChartSVG(c *gin.Context) {
	req, err := a.chartRequest(c)
	if err != nil {
		a.respondServiceError(c, err, "產生圖表失敗")
		return
	}
	data, err := a.stats.Chart(req)
	if err != nil {
		a.respondServiceError(c, err, "產生圖表失敗")
		return
	}

	opts := chart.Options{}
	if w, err := strconv.Atoi(c.Query("width")); err == nil {
		opts.Width = w
	}
	if h, err := strconv.Atoi(c.Query("height")); err == nil {
		opts.Height = h
	}
	svg, err := chart.Render(data, opts)
	if err != nil {
		a.respondServiceError(c, err, "產生圖表失敗")
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/svg+xml; charset=utf-8", []byte(svg))
}
