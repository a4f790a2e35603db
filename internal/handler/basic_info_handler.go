package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tictracker/internal/db"
	"github.com/tictracker/internal/service"
)

type basicInfoRequest struct {
	Age    *float64 `json:"age"`
	Height *float64 `json:"height"`
	Weight *float64 `json:"weight"`
	Adding bool     `json:"adding"`
}

func (r basicInfoRequest) info() service.BasicInfo {
	return service.BasicInfo{Age: r.Age, Height: r.Height, Weight: r.Weight}
}

func historyPayload(records []db.BasicInfoRecord) []gin.H {
	out := make([]gin.H, 0, len(records))
	for _, r := range records {
		out = append(out, gin.H{
			"timestamp": r.Timestamp,
			"age":       r.Age,
			"height":    r.Height,
			"weight":    r.Weight,
		})
	}
	return out
}

// GetBasicInfo 返回当前基本资料与 BMI。
func (a *API) GetBasicInfo(c *gin.Context) {
	summary, err := a.basicInfo.Summary()
	if err != nil {
		a.respondServiceError(c, err, "讀取基本資料失敗")
		return
	}
	c.JSON(http.StatusOK, gin.H{"basicInfo": summary})
}

// UpdateBasicInfo 更新基本资料，adding 为 true 时总是追加一条历史。
func (a *API) UpdateBasicInfo(c *gin.Context) {
	var payload basicInfoRequest
	if !bindJSON(c, &payload, "請填寫基本資料") {
		return
	}
	if _, err := a.basicInfo.Update(payload.info(), payload.Adding); err != nil {
		a.respondServiceError(c, err, "儲存基本資料失敗")
		return
	}
	summary, err := a.basicInfo.Summary()
	if err != nil {
		a.respondServiceError(c, err, "讀取基本資料失敗")
		return
	}
	c.JSON(http.StatusOK, gin.H{"basicInfo": summary, "message": "基本資料已更新"})
}

// ListBasicInfoHistory 返回按时间升序的历史记录。
func (a *API) ListBasicInfoHistory(c *gin.Context) {
	records, err := a.basicInfo.History()
	if err != nil {
		a.respondServiceError(c, err, "讀取歷史紀錄失敗")
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": historyPayload(records)})
}

// UpdateBasicInfoHistory 修改某条历史记录。
func (a *API) UpdateBasicInfoHistory(c *gin.Context) {
	timestamp, err := parseInt64Param(c, "timestamp")
	if err != nil {
		respondError(c, http.StatusBadRequest, "無效的時間戳")
		return
	}
	var payload basicInfoRequest
	if !bindJSON(c, &payload, "請填寫基本資料") {
		return
	}
	record, err := a.basicInfo.UpdateHistory(timestamp, payload.info())
	if err != nil {
		a.respondServiceError(c, err, "更新歷史紀錄失敗")
		return
	}
	c.JSON(http.StatusOK, gin.H{"record": historyPayload([]db.BasicInfoRecord{*record})[0]})
}

// DeleteBasicInfoHistory 删除某条历史记录。
func (a *API) DeleteBasicInfoHistory(c *gin.Context) {
	timestamp, err := parseInt64Param(c, "timestamp")
	if err != nil {
		respondError(c, http.StatusBadRequest, "無效的時間戳")
		return
	}
	if err := a.basicInfo.DeleteHistory(timestamp); err != nil {
		a.respondServiceError(c, err, "刪除歷史紀錄失敗")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "歷史紀錄已刪除"})
}
