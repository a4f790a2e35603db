package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tictracker/internal/catalog"
	"github.com/tictracker/internal/locale"
	"github.com/tictracker/internal/service"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

type errorMapping struct {
	target  error
	status  int
	chinese string
	english string
}

var serviceErrorMappings = []errorMapping{
	{service.ErrEntryNotFound, http.StatusNotFound, "找不到此紀錄", "Entry not found"},
	{service.ErrEntryContentEmpty, http.StatusBadRequest, "請輸入紀錄內容", "Content is required"},
	{service.ErrInvalidCategory, http.StatusBadRequest, "無效的類別", "Invalid category"},
	{service.ErrInvalidDate, http.StatusBadRequest, "日期格式錯誤", "Invalid date"},
	{service.ErrGroupNameEmpty, http.StatusBadRequest, "請輸入分類名稱", "Group name is required"},
	{service.ErrGroupExists, http.StatusConflict, "此分類已存在", "Group already exists"},
	{service.ErrGroupNotFound, http.StatusNotFound, "找不到此分類", "Group not found"},
	{service.ErrGroupReadOnly, http.StatusForbidden, "內建分類無法修改", "Built-in groups cannot be modified"},
	{service.ErrItemNameEmpty, http.StatusBadRequest, "請輸入項目名稱", "Item name is required"},
	{service.ErrItemExists, http.StatusConflict, "此項目已存在", "Item already exists"},
	{service.ErrItemNotFound, http.StatusNotFound, "找不到此項目", "Item not found"},
	{service.ErrItemReadOnly, http.StatusForbidden, "內建項目無法修改", "Built-in items cannot be modified"},
	{service.ErrDailyInfoNotFound, http.StatusNotFound, "尚未取得當日資訊", "No daily info for this date"},
	{service.ErrDailyInfoUnavailable, http.StatusNotFound, "僅能取得今日的地點與天氣", "Weather is only fetched for today"},
	{service.ErrCoordinatesRequired, http.StatusBadRequest, "需要定位座標", "Coordinates are required"},
	{service.ErrHistoryNotFound, http.StatusNotFound, "找不到此筆歷史紀錄", "History record not found"},
	{service.ErrChartUnsupported, http.StatusBadRequest, "此類別不支援該圖表", "Chart type not available for this category"},
	{service.ErrInvalidChartType, http.StatusBadRequest, "無效的圖表類型", "Invalid chart type"},
	{service.ErrInvalidPeriod, http.StatusBadRequest, "無效的統計區間", "Invalid period"},
	{service.ErrNoCategory, http.StatusBadRequest, "請至少選擇一個類別", "Select at least one category"},
	{service.ErrNotEnoughEntries, http.StatusUnprocessableEntity, "此期間沒有足夠的資料可供 AI 分析 (至少需要 5 筆記錄)。", "Not enough entries in this period for AI analysis (at least 5 required)."},
	{service.ErrAIAPIKeyMissing, http.StatusBadRequest, "請先設定 AI API Key", "Please configure an AI API key"},
	{catalog.ErrInvalidSleepTime, http.StatusBadRequest, "睡眠時間格式錯誤", "Invalid sleep time"},
}

// respondServiceError 将服务层哨兵错误映射为状态码与本地化提示，未知错误返回 500。
func (a *API) respondServiceError(c *gin.Context, err error, fallback string) {
	if status, message, ok := a.localizeError(c, err); ok {
		respondError(c, status, message)
		return
	}
	c.Error(err)
	respondError(c, http.StatusInternalServerError, fallback)
}

func (a *API) localizeError(c *gin.Context, err error) (int, string, bool) {
	language := a.requestLocale(c).Language
	for _, m := range serviceErrorMappings {
		if errors.Is(err, m.target) {
			return m.status, locale.Pick(language, m.english, m.chinese), true
		}
	}
	return 0, "", false
}

// parseCategories 支持 ?category=a&category=b 以及逗号分隔的写法。
func parseCategories(values []string) ([]catalog.Category, error) {
	out := make([]catalog.Category, 0, len(values))
	for _, raw := range values {
		for _, part := range strings.Split(raw, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			category, ok := catalog.ParseCategory(trimmed)
			if !ok {
				return nil, service.ErrInvalidCategory
			}
			out = append(out, category)
		}
	}
	return out, nil
}

func parsePeriod(raw string) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return service.Periods[0], nil
	}
	period, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, service.ErrInvalidPeriod
	}
	return period, nil
}

// parseTimestamp 接受毫秒时间戳或 datetime-local 格式（按配置时区解释）。
func (a *API) parseTimestamp(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, nil
	}
	if ms, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return time.UnixMilli(ms), nil
	}
	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02T15:04:05", time.RFC3339} {
		if t, err := time.ParseInLocation(layout, trimmed, a.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, service.ErrInvalidDate
}

func parseInt64Param(c *gin.Context, key string) (int64, error) {
	return strconv.ParseInt(c.Param(key), 10, 64)
}
