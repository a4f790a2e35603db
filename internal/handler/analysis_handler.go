package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tictracker/internal/catalog"
	"github.com/tictracker/internal/locale"
	"github.com/tictracker/internal/service"
	"github.com/tictracker/internal/view"
	"go.uber.org/zap"
)

type analysisRequest struct {
	Period   int    `json:"period"`
	Category string `json:"category"`
}

// AnalyzeEntries 请求 AI 分析一段时间内的日志，并返回经过清洗的 HTML。
func (a *API) AnalyzeEntries(c *gin.Context) {
	var payload analysisRequest
	if !bindJSON(c, &payload, "請選擇分析區間") {
		return
	}
	if payload.Period == 0 {
		payload.Period = service.Periods[0]
	}
	category := catalog.CategoryBehavior
	if payload.Category != "" {
		parsed, ok := catalog.ParseCategory(payload.Category)
		if !ok {
			a.respondServiceError(c, service.ErrInvalidCategory, "AI 分析失敗")
			return
		}
		category = parsed
	}

	language := a.requestLocale(c).Language
	result, err := a.analyzer.Analyze(c.Request.Context(), service.AnalysisInput{
		Period:   payload.Period,
		Category: category,
		Now:      a.now(),
		Language: language,
	})
	if err != nil {
		if errors.Is(err, service.ErrNotEnoughEntries) || errors.Is(err, service.ErrAIAPIKeyMissing) ||
			errors.Is(err, service.ErrInvalidCategory) {
			a.respondServiceError(c, err, "AI 分析失敗")
			return
		}
		a.logger.Warn("analysis request failed", zap.Error(err))
		respondError(c, http.StatusBadGateway, locale.Pick(language, "AI analysis failed: ", "AI 分析失敗：")+err.Error())
		return
	}

	html, err := view.RenderMarkdown(result.Markdown)
	if err != nil {
		a.respondServiceError(c, err, "AI 分析結果轉換失敗")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"markdown":         result.Markdown,
		"html":             string(html),
		"provider":         result.Provider,
		"entryCount":       result.EntryCount,
		"promptTokens":     result.PromptTokens,
		"completionTokens": result.CompletionTokens,
	})
}
