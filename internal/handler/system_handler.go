package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tictracker/internal/service"
)

// HealthCheck 提供部署平台与监控系统使用的健康检查端点。
func (a *API) HealthCheck(c *gin.Context) {
	sqlDB, err := a.db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "database handle unavailable",
		})
		return
	}

	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "database unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"database":    "up",
		"subscribers": a.broker.Subscribers(),
	})
}

type systemSettingsRequest struct {
	SiteName         string  `json:"siteName"`
	ChildName        string  `json:"childName"`
	AIProvider       string  `json:"aiProvider"`
	GeminiAPIKey     *string `json:"geminiApiKey"`
	OpenAIAPIKey     *string `json:"openaiApiKey"`
	DeepSeekAPIKey   *string `json:"deepseekApiKey"`
	AIAnalysisPrompt string  `json:"aiAnalysisPrompt"`
}

type aiTestRequest struct {
	Provider string `json:"provider"`
	APIKey   string `json:"apiKey"`
}

// GetSystemSettings 返回当前系统设置，API Key 以掩码形式返回。
func (a *API) GetSystemSettings(c *gin.Context) {
	settings, err := a.system.GetSettings()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "取得系統設定失敗")
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": systemSettingsPayload(settings)})
}

// UpdateSystemSettings 保存系统设置。
func (a *API) UpdateSystemSettings(c *gin.Context) {
	var payload systemSettingsRequest
	if !bindJSON(c, &payload, "請填寫完整的系統設定") {
		return
	}

	settings, err := a.system.UpdateSettings(payload.toInput())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "儲存系統設定失敗")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "系統設定已儲存",
		"settings": systemSettingsPayload(settings),
	})
}

func (r systemSettingsRequest) toInput() service.SystemSettingsInput {
	return service.SystemSettingsInput{
		SiteName:         r.SiteName,
		ChildName:        r.ChildName,
		AIProvider:       r.AIProvider,
		GeminiAPIKey:     r.GeminiAPIKey,
		OpenAIAPIKey:     r.OpenAIAPIKey,
		DeepSeekAPIKey:   r.DeepSeekAPIKey,
		AIAnalysisPrompt: r.AIAnalysisPrompt,
	}
}

func systemSettingsPayload(settings service.SystemSettings) gin.H {
	masked := settings.Masked()
	return gin.H{
		"siteName":         masked.SiteName,
		"childName":        masked.ChildName,
		"aiProvider":       masked.AIProvider,
		"geminiApiKey":     masked.GeminiAPIKey,
		"openaiApiKey":     masked.OpenAIAPIKey,
		"deepseekApiKey":   masked.DeepSeekAPIKey,
		"aiAnalysisPrompt": masked.AIAnalysisPrompt,
	}
}

// TestAIConnection 测试不同 AI 平台 API Key 的连通性。
func (a *API) TestAIConnection(c *gin.Context) {
	var payload aiTestRequest
	if !bindJSON(c, &payload, "請填寫有效的 AI 設定") {
		return
	}

	if err := a.system.TestAIConnection(c.Request.Context(), payload.Provider, payload.APIKey); err != nil {
		switch {
		case errors.Is(err, service.ErrAIAPIKeyMissing):
			respondError(c, http.StatusBadRequest, "請填寫有效的 AI API Key")
		default:
			respondError(c, http.StatusBadGateway, err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "AI 介面連線正常"})
}
