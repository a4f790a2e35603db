package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tictracker/internal/service"
)

// ExportBackup 以附件形式下载全部数据。
func (a *API) ExportBackup(c *gin.Context) {
	backup, err := a.backup.Export()
	if err != nil {
		a.respondServiceError(c, err, "匯出資料失敗")
		return
	}
	filename := fmt.Sprintf("tic-tracker-backup-%s.json", a.now().In(a.loc).Format(service.DateLayout))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.JSON(http.StatusOK, backup)
}

// ImportBackup 导入备份；replace=true 时先清空现有数据。
func (a *API) ImportBackup(c *gin.Context) {
	replace, _ := strconv.ParseBool(c.Query("replace"))

	stats, err := a.backup.ReadJSON(c.Request.Body, replace)
	if err != nil {
		c.Error(err)
		respondError(c, http.StatusBadRequest, "匯入資料失敗，請確認檔案格式")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "資料已匯入", "imported": stats})
}
