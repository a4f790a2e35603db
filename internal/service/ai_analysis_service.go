package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tictracker/internal/catalog"
	"go.uber.org/zap"
)

// MinAnalysisEntries 是触发 AI 分析所需的最少条目数。
const MinAnalysisEntries = 5

// ErrNotEnoughEntries 在区间内条目不足时返回
var ErrNotEnoughEntries = errors.New("此期間沒有足夠的資料可供 AI 分析 (至少需要 5 筆記錄)。")

const (
	defaultGeminiAnalysisModel   = "gemini-2.5-flash"
	defaultOpenAIAnalysisModel   = "gpt-4o-mini"
	defaultDeepSeekAnalysisModel = "deepseek-chat"
	defaultAnalysisTemperature   = 0.4
	analysisTimestampLayout      = "2006-01-02 15:04"
)

// AnalysisInput 描述一次 AI 分析请求。
type AnalysisInput struct {
	Period   int
	Category catalog.Category
	Now      time.Time
	Language string
}

// AnalysisResult 返回模型生成的 markdown 分析。
type AnalysisResult struct {
	Markdown         string `json:"markdown"`
	Provider         string `json:"provider"`
	EntryCount       int    `json:"entry_count"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
}

// Analyzer 定义日志分析能力，便于在 handler 中注入不同实现。
type Analyzer interface {
	Analyze(ctx context.Context, input AnalysisInput) (AnalysisResult, error)
}

type analysisEntry struct {
	Timestamp string `json:"timestamp"`
	Category  string `json:"category"`
	Content   string `json:"content"`
}

// AIAnalysisService 基于大模型接口分析一段时间内的日志。
type AIAnalysisService struct {
	entries *EntryService
	client  *aiChatClient
	logger  *zap.Logger
}

// NewAIAnalysisService 构造默认的 AIAnalysisService。
func NewAIAnalysisService(entries *EntryService, settings *SystemSettingService, logger *zap.Logger) *AIAnalysisService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AIAnalysisService{
		entries: entries,
		client:  newAIChatClient(settings, defaultGeminiAnalysisModel, defaultOpenAIAnalysisModel, defaultDeepSeekAnalysisModel),
		logger:  logger,
	}
}

// SetHTTPClient 覆盖 OpenAI 兼容接口使用的 HTTP 客户端，主要用于测试。
func (s *AIAnalysisService) SetHTTPClient(client httpDoer) {
	s.client.SetHTTPClient(client)
}

// SetOpenAIBaseURL 覆盖默认的 OpenAI API 地址。
func (s *AIAnalysisService) SetOpenAIBaseURL(base string) {
	s.client.SetOpenAIBaseURL(base)
}

// SetDeepSeekBaseURL 覆盖默认的 DeepSeek API 地址。
func (s *AIAnalysisService) SetDeepSeekBaseURL(base string) {
	s.client.SetDeepSeekBaseURL(base)
}

// SetGeminiModel 指定 Gemini 分析所使用的模型名称。
func (s *AIAnalysisService) SetGeminiModel(model string) {
	s.client.SetGeminiModel(model)
}

// Analyze 收集 [Now-Period 当天零点, Now] 的全部条目并请求模型分析。
func (s *AIAnalysisService) Analyze(ctx context.Context, input AnalysisInput) (AnalysisResult, error) {
	if input.Now.IsZero() {
		input.Now = time.Now()
	}
	if input.Period <= 0 {
		input.Period = Periods[0]
	}
	if input.Category == "" {
		input.Category = catalog.CategoryBehavior
	}
	if !catalog.ValidCategory(string(input.Category)) {
		return AnalysisResult{}, fmt.Errorf("%w: %q", ErrInvalidCategory, input.Category)
	}

	loc := s.entries.Location()
	local := input.Now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day()-input.Period, 0, 0, 0, 0, loc)

	entries, err := s.entries.Between(start, local)
	if err != nil {
		return AnalysisResult{}, err
	}
	if len(entries) < MinAnalysisEntries {
		return AnalysisResult{}, ErrNotEnoughEntries
	}

	formatted := make([]analysisEntry, 0, len(entries))
	for _, e := range entries {
		formatted = append(formatted, analysisEntry{
			Timestamp: e.Time().In(loc).Format(analysisTimestampLayout),
			Category:  e.Category,
			Content:   e.Content,
		})
	}
	payload, err := json.Marshal(formatted)
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("构造日志数据失败: %w", err)
	}

	settings, err := s.client.settings.GetSettings()
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("读取系统设置失败: %w", err)
	}

	systemPrompt := strings.TrimSpace(settings.AIAnalysisPrompt)
	if systemPrompt == "" {
		systemPrompt = defaultAnalysisSystemPrompt(input.Language)
	}
	userPrompt := buildAnalysisPrompt(input.Language, settings.ChildName, input.Period, input.Category, string(payload))
	logAIExchange(s.logger, "ANALYSIS", "prompt", userPrompt)

	result, err := s.client.callWithSettings(ctx, settings, aiChatRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Temperature:  defaultAnalysisTemperature,
	})
	if err != nil {
		s.logger.Warn("ai analysis failed", zap.String("provider", settings.AIProvider), zap.Error(err))
		return AnalysisResult{}, err
	}
	logAIExchange(s.logger, "ANALYSIS", "response", result.Content)

	return AnalysisResult{
		Markdown:         strings.TrimSpace(result.Content),
		Provider:         settings.AIProvider,
		EntryCount:       len(entries),
		PromptTokens:     result.PromptTokens,
		CompletionTokens: result.CompletionTokens,
	}, nil
}

func defaultAnalysisSystemPrompt(language string) string {
	if isEnglish(language) {
		return "You are a professional AI assistant for analysing tic disorder diaries. Your goal is to help parents identify potential patterns and triggers from their daily logs. Be supportive and clear, and never give medical advice. Keep the analysis concise and easy to understand."
	}
	return "您是一位專業的抽動症日誌分析AI助理。您的目標是根據家長記錄的日常日誌，幫助他們識別潛在的模式和觸發因素。請以支持、清晰且非醫療建議的語氣提供見解。請務必使用繁體中文輸出。您的分析應簡潔易懂。"
}

func buildAnalysisPrompt(language, childName string, period int, category catalog.Category, entriesJSON string) string {
	var b strings.Builder
	if isEnglish(language) {
		subject := "my child"
		if name := strings.TrimSpace(childName); name != "" {
			subject = name
		}
		fmt.Fprintf(&b, "These are the diary entries of %s over the past %d days. The '行為' (behavior) category records tic-related behaviors.\n\n", subject, period)
		fmt.Fprintf(&b, "Diary data (JSON):\n%s\n\n", entriesJSON)
		fmt.Fprintf(&b, "Please provide a brief analysis focused on the selected category \"%s\".\n", category)
		fmt.Fprintf(&b, "1.  **Trend summary:** Briefly summarise the frequency and types of entries in \"%s\".\n", category)
		fmt.Fprintf(&b, "2.  **Potential correlations:** Identify whether entries in \"%s\" appear to co-occur with tic behaviors ('行為'). For example, do certain foods, events or moods seem to coincide with more tics?\n", category)
		b.WriteString("3.  **Things to observe:** Suggest specific things the parent could watch more closely. Present them as observations, not medical advice.\n\n")
		b.WriteString("Format the reply clearly using markdown (e.g. **bold** for key words).")
		return b.String()
	}

	subject := "我孩子"
	if name := strings.TrimSpace(childName); name != "" {
		subject = name
	}
	fmt.Fprintf(&b, "這是%s在過去 %d 天的日誌資料。'行為' 類別記錄了與抽動相關的行為。\n\n", subject, period)
	fmt.Fprintf(&b, "日誌資料 (JSON):\n%s\n\n", entriesJSON)
	fmt.Fprintf(&b, "請根據以上資料，提供一份簡要分析，並側重於使用者當前選擇的「%s」類別。\n", category)
	fmt.Fprintf(&b, "1.  **趨勢總結：** 簡要總結「%s」類別中條目的頻率和類型。\n", category)
	fmt.Fprintf(&b, "2.  **潛在關聯：** 識別「%s」類別的條目與抽動行為（'行為'類別）之間是否存在任何潛在的關聯性。例如，某些食物、事件或情緒是否似乎與抽動增加同時發生？\n", category)
	b.WriteString("3.  **觀察建議：** 根據分析，提出家長可以多加注意觀察的具體事項。請將這些建議作為觀察建議，而非醫療建議。\n\n")
	b.WriteString("請清晰地格式化您的回覆，使用 markdown 語法 (例如用 **粗體** 強調關鍵字)。")
	return b.String()
}

func isEnglish(language string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(language)), "en")
}
