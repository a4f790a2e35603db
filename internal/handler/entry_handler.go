package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tictracker/internal/catalog"
	"github.com/tictracker/internal/db"
	"github.com/tictracker/internal/service"
)

type sleepRequest struct {
	Date     string `json:"date"`
	Bedtime  string `json:"bedtime"`
	Waketime string `json:"waketime"`
}

type entryRequest struct {
	Timestamp int64         `json:"timestamp"`
	DateTime  string        `json:"datetime"`
	Category  string        `json:"category"`
	Content   string        `json:"content"`
	Meal      string        `json:"meal"`
	Items     []string      `json:"items"`
	Sleep     *sleepRequest `json:"sleep"`
}

// toEntryInput 组装条目：睡眠按就寝/起床时间生成，否则优先使用 content，其次拼接选中的项目。
func (a *API) toEntryInput(r entryRequest) (service.EntryInput, error) {
	input := service.EntryInput{Category: r.Category, Content: r.Content}

	if r.Sleep != nil {
		content, wake, err := catalog.ComposeSleep(r.Sleep.Date, r.Sleep.Bedtime, r.Sleep.Waketime, a.loc)
		if err != nil {
			return input, err
		}
		input.Content = content
		input.Timestamp = wake
		return input, nil
	}

	if strings.TrimSpace(input.Content) == "" && len(r.Items) > 0 {
		input.Content = catalog.ComposeContent(r.Meal, r.Items)
	}

	if r.Timestamp > 0 {
		input.Timestamp = time.UnixMilli(r.Timestamp)
		return input, nil
	}
	ts, err := a.parseTimestamp(r.DateTime)
	if err != nil {
		return input, err
	}
	input.Timestamp = ts
	return input, nil
}

func entryPayload(e db.Entry) gin.H {
	return gin.H{
		"id":        e.ID,
		"timestamp": e.Timestamp,
		"category":  e.Category,
		"content":   e.Content,
	}
}

func entriesPayload(entries []db.Entry) []gin.H {
	out := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryPayload(e))
	}
	return out
}

// ListEntries 按日期/分类返回条目，始终按时间倒序。
func (a *API) ListEntries(c *gin.Context) {
	categories, err := parseCategories(c.QueryArray("category"))
	if err != nil {
		a.respondServiceError(c, err, "讀取紀錄失敗")
		return
	}

	filter := service.EntryFilter{
		Categories: categories,
		Date:       strings.TrimSpace(c.Query("date")),
	}
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			respondError(c, http.StatusBadRequest, "limit 參數無效")
			return
		}
		filter.Limit = limit
	}

	entries, err := a.entries.List(filter)
	if err != nil {
		a.respondServiceError(c, err, "讀取紀錄失敗")
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entriesPayload(entries)})
}

// GetEntry 返回单条记录。
func (a *API) GetEntry(c *gin.Context) {
	entry, err := a.entries.Get(c.Param("id"))
	if err != nil {
		a.respondServiceError(c, err, "讀取紀錄失敗")
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry": entryPayload(*entry)})
}

// CreateEntry 新增一条记录。
func (a *API) CreateEntry(c *gin.Context) {
	var payload entryRequest
	if !bindJSON(c, &payload, "請填寫完整的紀錄資料") {
		return
	}

	input, err := a.toEntryInput(payload)
	if err != nil {
		a.respondServiceError(c, err, "新增紀錄失敗")
		return
	}

	entry, err := a.entries.Add(input)
	if err != nil {
		a.respondServiceError(c, err, "新增紀錄失敗")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"entry": entryPayload(*entry)})
}

// UpdateEntry 以整条替换的方式更新记录。
func (a *API) UpdateEntry(c *gin.Context) {
	var payload entryRequest
	if !bindJSON(c, &payload, "請填寫完整的紀錄資料") {
		return
	}

	input, err := a.toEntryInput(payload)
	if err != nil {
		a.respondServiceError(c, err, "更新紀錄失敗")
		return
	}

	entry, err := a.entries.Update(c.Param("id"), input)
	if err != nil {
		a.respondServiceError(c, err, "更新紀錄失敗")
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry": entryPayload(*entry)})
}

// DeleteEntry 删除记录。
func (a *API) DeleteEntry(c *gin.Context) {
	if err := a.entries.Delete(c.Param("id")); err != nil {
		a.respondServiceError(c, err, "刪除紀錄失敗")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "紀錄已刪除"})
}
