package handler

import (
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tictracker/internal/catalog"
	"github.com/tictracker/internal/chart"
	"github.com/tictracker/internal/db"
	"github.com/tictracker/internal/service"
)

// ShowLog 渲染某一天的日志列表，默认今日。
func (a *API) ShowLog(c *gin.Context) {
	today := a.now().In(a.loc)
	day := today
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		parsed, err := time.ParseInLocation(service.DateLayout, raw, a.loc)
		if err != nil {
			a.renderHTML(c, http.StatusBadRequest, "log.html", gin.H{
				"page":  "log",
				"title": "日誌",
				"error": "日期格式錯誤",
				"date":  today.Format(service.DateLayout),
			})
			return
		}
		day = parsed
	}
	date := day.Format(service.DateLayout)

	entries, err := a.entries.List(service.EntryFilter{Date: date})
	if err != nil {
		c.Error(err)
		a.renderHTML(c, http.StatusInternalServerError, "log.html", gin.H{
			"page":  "log",
			"title": "日誌",
			"error": "讀取紀錄失敗，請稍後再試",
			"date":  date,
		})
		return
	}

	var dailyInfo *db.DailyInfo
	if info, err := a.daily.Get(date); err == nil {
		dailyInfo = info
	} else if !errors.Is(err, service.ErrDailyInfoNotFound) {
		c.Error(err)
	}

	todayKey := today.Format(service.DateLayout)
	a.renderHTML(c, http.StatusOK, "log.html", gin.H{
		"page":       "log",
		"title":      "日誌",
		"date":       date,
		"isToday":    date == todayKey,
		"prevDate":   day.AddDate(0, 0, -1).Format(service.DateLayout),
		"nextDate":   day.AddDate(0, 0, 1).Format(service.DateLayout),
		"canForward": date < todayKey,
		"entries":    entries,
		"dailyInfo":  dailyInfo,
		"categories": catalog.Configs(),
	})
}

// ShowAdd 渲染新增/编辑页面：分类卡片以及所选分类的分组与项目。
func (a *API) ShowAdd(c *gin.Context) {
	data := gin.H{
		"page":            "add",
		"category":        "",
		"title":           "新增紀錄",
		"categories":      catalog.Configs(),
		"mealTypes":       catalog.MealTypes,
		"defaultDateTime": a.now().In(a.loc).Format("2006-01-02T15:04"),
		"today":           a.now().In(a.loc).Format(service.DateLayout),
		"sleepGroup":      catalog.GroupSleep,
	}

	categoryRaw := strings.TrimSpace(c.Query("category"))
	if id := strings.TrimSpace(c.Query("id")); id != "" {
		entry, err := a.entries.Get(id)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, service.ErrEntryNotFound) {
				status = http.StatusNotFound
			}
			data["error"] = "找不到此紀錄"
			a.renderHTML(c, status, "add.html", data)
			return
		}
		data["title"] = "編輯紀錄"
		data["editing"] = entry
		data["defaultDateTime"] = entry.Time().In(a.loc).Format("2006-01-02T15:04")
		if categoryRaw == "" {
			categoryRaw = entry.Category
		}
	}

	if category, ok := catalog.ParseCategory(categoryRaw); ok {
		groups, err := a.items.Groups(category)
		if err != nil {
			c.Error(err)
			data["error"] = "讀取分類失敗"
			a.renderHTML(c, http.StatusInternalServerError, "add.html", data)
			return
		}
		data["category"] = string(category)
		data["groups"] = groups
		data["isDiet"] = category == catalog.CategoryDiet
	}

	a.renderHTML(c, http.StatusOK, "add.html", data)
}

// ShowStats 渲染统计页：图表、基本资料与 AI 分析入口。
func (a *API) ShowStats(c *gin.Context) {
	selected, err := parseCategories(c.QueryArray("category"))
	if err != nil || len(selected) == 0 {
		selected = []catalog.Category{catalog.CategoryBehavior}
	}
	period, err := parsePeriod(c.Query("period"))
	if err != nil || !slices.Contains(service.Periods, period) {
		period = service.Periods[0]
	}
	chartType := service.DefaultChartType(selected[0])
	if raw := strings.TrimSpace(c.Query("type")); raw != "" {
		if parsed, err := service.ParseChartType(raw); err == nil && parsed != service.ChartGrowth {
			chartType = parsed
		}
	}

	data := gin.H{
		"page":       "stats",
		"title":      "統計分析",
		"categories": catalog.Configs(),
		"selected":   selected,
		"period":     period,
		"periods":    service.Periods,
		"chartType":  chartType,
		"chartTypes": service.ChartTypesFor(selected[0]),
	}

	now := a.now()
	if svg, err := a.renderChart(service.ChartRequest{Type: chartType, Categories: selected, Period: period, Now: now}); err != nil {
		if _, message, ok := a.localizeError(c, err); ok {
			data["chartError"] = message
		} else {
			c.Error(err)
			data["chartError"] = "產生圖表失敗"
		}
	} else {
		data["chartSVG"] = svg
	}
	if svg, err := a.renderChart(service.ChartRequest{Type: service.ChartGrowth, Now: now}); err == nil {
		data["growthSVG"] = svg
	}

	summary, err := a.basicInfo.Summary()
	if err != nil {
		c.Error(err)
	}
	history, err := a.basicInfo.History()
	if err != nil {
		c.Error(err)
	}
	data["basicInfo"] = summary
	data["history"] = history

	a.renderHTML(c, http.StatusOK, "stats.html", data)
}

func (a *API) renderChart(req service.ChartRequest) (string, error) {
	chartData, err := a.stats.Chart(req)
	if err != nil {
		return "", err
	}
	return chart.Render(chartData, chart.Options{})
}
