package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tictracker/internal/catalog"
	"github.com/tictracker/internal/locale"
	"github.com/tictracker/internal/service"
)

type nameRequest struct {
	Name string `json:"name"`
}

func categoryParam(c *gin.Context) (catalog.Category, bool) {
	return catalog.ParseCategory(strings.TrimSpace(c.Param("category")))
}

// ListCategories 返回固定分类配置以及各分类可用的图表类型。
func (a *API) ListCategories(c *gin.Context) {
	language := a.requestLocale(c).Language
	configs := catalog.Configs()
	out := make([]gin.H, 0, len(configs))
	for _, cfg := range configs {
		out = append(out, gin.H{
			"category":     cfg.Category,
			"label":        locale.Label(language, string(cfg.Category)),
			"icon":         cfg.Icon,
			"color":        cfg.Color,
			"lightColor":   cfg.LightColor,
			"hexColor":     cfg.HexColor,
			"defaultChart": service.DefaultChartType(cfg.Category),
			"charts":       service.ChartTypesFor(cfg.Category),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"categories": out,
		"mealTypes":  catalog.MealTypes,
		"periods":    service.Periods,
	})
}

// ListGroups 返回内置与自定义合并后的分组。
func (a *API) ListGroups(c *gin.Context) {
	category, ok := categoryParam(c)
	if !ok {
		a.respondServiceError(c, service.ErrInvalidCategory, "讀取分類失敗")
		return
	}
	groups, err := a.items.Groups(category)
	if err != nil {
		a.respondServiceError(c, err, "讀取分類失敗")
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category, "groups": groups})
}

// ListCustomItems 返回全部自定义覆盖层，结构与备份格式一致。
func (a *API) ListCustomItems(c *gin.Context) {
	groups, err := a.items.AllCustom()
	if err != nil {
		a.respondServiceError(c, err, "讀取自訂項目失敗")
		return
	}
	out := make(map[string][]catalog.Group)
	for _, g := range groups {
		out[g.Category] = append(out[g.Category], catalog.Group{Name: g.Name, Items: g.Items})
	}
	c.JSON(http.StatusOK, gin.H{"customItems": out})
}

// CreateGroup 新增自定义分组。
func (a *API) CreateGroup(c *gin.Context) {
	category, ok := categoryParam(c)
	if !ok {
		a.respondServiceError(c, service.ErrInvalidCategory, "新增分類失敗")
		return
	}
	var payload nameRequest
	if !bindJSON(c, &payload, "請輸入分類名稱") {
		return
	}
	group, err := a.items.AddGroup(category, payload.Name)
	if err != nil {
		a.respondServiceError(c, err, "新增分類失敗")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"group": gin.H{"name": group.Name, "items": group.Items}})
}

// RenameGroup 重命名自定义分组。
func (a *API) RenameGroup(c *gin.Context) {
	category, ok := categoryParam(c)
	if !ok {
		a.respondServiceError(c, service.ErrInvalidCategory, "更新分類失敗")
		return
	}
	var payload nameRequest
	if !bindJSON(c, &payload, "請輸入分類名稱") {
		return
	}
	if err := a.items.RenameGroup(category, c.Param("group"), payload.Name); err != nil {
		a.respondServiceError(c, err, "更新分類失敗")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "分類已更新"})
}

// DeleteGroup 删除自定义分组。
func (a *API) DeleteGroup(c *gin.Context) {
	category, ok := categoryParam(c)
	if !ok {
		a.respondServiceError(c, service.ErrInvalidCategory, "刪除分類失敗")
		return
	}
	if err := a.items.DeleteGroup(category, c.Param("group")); err != nil {
		a.respondServiceError(c, err, "刪除分類失敗")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "分類已刪除"})
}

// CreateItem 向分组追加项目，内置分组会生成覆盖层。
func (a *API) CreateItem(c *gin.Context) {
	category, ok := categoryParam(c)
	if !ok {
		a.respondServiceError(c, service.ErrInvalidCategory, "新增項目失敗")
		return
	}
	var payload nameRequest
	if !bindJSON(c, &payload, "請輸入項目名稱") {
		return
	}
	if err := a.items.AddItem(category, c.Param("group"), payload.Name); err != nil {
		a.respondServiceError(c, err, "新增項目失敗")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "項目已新增"})
}

// RenameItem 重命名自定义项目。
func (a *API) RenameItem(c *gin.Context) {
	category, ok := categoryParam(c)
	if !ok {
		a.respondServiceError(c, service.ErrInvalidCategory, "更新項目失敗")
		return
	}
	var payload nameRequest
	if !bindJSON(c, &payload, "請輸入項目名稱") {
		return
	}
	if err := a.items.RenameItem(category, c.Param("group"), c.Param("item"), payload.Name); err != nil {
		a.respondServiceError(c, err, "更新項目失敗")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "項目已更新"})
}

// DeleteItem 删除自定义项目。
func (a *API) DeleteItem(c *gin.Context) {
	category, ok := categoryParam(c)
	if !ok {
		a.respondServiceError(c, service.ErrInvalidCategory, "刪除項目失敗")
		return
	}
	if err := a.items.DeleteItem(category, c.Param("group"), c.Param("item")); err != nil {
		a.respondServiceError(c, err, "刪除項目失敗")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "項目已刪除"})
}
