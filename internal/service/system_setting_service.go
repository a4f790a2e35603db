package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tictracker/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// AIProviderGemini 表示使用 Google Gemini 能力。
	AIProviderGemini = "gemini"
	// AIProviderOpenAI 表示使用 OpenAI 能力。
	AIProviderOpenAI = "openai"
	// AIProviderDeepSeek 表示使用 DeepSeek 能力。
	AIProviderDeepSeek = "deepseek"

	// DefaultSiteName 是未设置站点名称时的回退值。
	DefaultSiteName = "抽動症日誌"
)

var supportedAIProviders = []string{AIProviderGemini, AIProviderOpenAI, AIProviderDeepSeek}

// SystemSettings 描述可配置的系统信息。
type SystemSettings struct {
	SiteName         string `json:"site_name"`
	ChildName        string `json:"child_name"`
	AIProvider       string `json:"ai_provider"`
	GeminiAPIKey     string `json:"gemini_api_key"`
	OpenAIAPIKey     string `json:"openai_api_key"`
	DeepSeekAPIKey   string `json:"deepseek_api_key"`
	AIAnalysisPrompt string `json:"ai_analysis_prompt"`
}

// Masked 返回隐藏 API Key 的副本，用于返回给前端。
func (s SystemSettings) Masked() SystemSettings {
	s.GeminiAPIKey = maskKey(s.GeminiAPIKey)
	s.OpenAIAPIKey = maskKey(s.OpenAIAPIKey)
	s.DeepSeekAPIKey = maskKey(s.DeepSeekAPIKey)
	return s
}

// ErrAIAPIKeyMissing 表示未提供必需的 AI 平台 API Key。
var ErrAIAPIKeyMissing = errors.New("api key is required")

// SystemSettingsInput 用于更新系统设置。Key 字段为 nil 时保留原值。
type SystemSettingsInput struct {
	SiteName         string
	ChildName        string
	AIProvider       string
	GeminiAPIKey     *string
	OpenAIAPIKey     *string
	DeepSeekAPIKey   *string
	AIAnalysisPrompt string
}

// SystemSettingService 提供系统设置的读取与更新能力。
type SystemSettingService struct {
	db              *gorm.DB
	broker          *Broker
	httpClient      httpDoer
	geminiBaseURL   string
	openAIBaseURL   string
	deepSeekBaseURL string
	envGeminiKey    string
}

// NewSystemSettingService 构造 SystemSettingService。
func NewSystemSettingService(gdb *gorm.DB, broker *Broker) *SystemSettingService {
	return &SystemSettingService{
		db:              gdb,
		broker:          broker,
		httpClient:      &http.Client{Timeout: 10 * time.Second},
		geminiBaseURL:   "https://generativelanguage.googleapis.com/v1beta",
		openAIBaseURL:   "https://api.openai.com/v1",
		deepSeekBaseURL: "https://api.deepseek.com/v1",
	}
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

var settingKeys = []string{
	db.SettingKeySiteName,
	db.SettingKeyChildName,
	db.SettingKeyAIProvider,
	db.SettingKeyGeminiAPIKey,
	db.SettingKeyOpenAIAPIKey,
	db.SettingKeyDeepSeekAPIKey,
	db.SettingKeyAIAnalysisPrompt,
}

// SetEnvGeminiKey 设置来自环境变量的 Gemini Key，数据库未保存时作为回退。
func (s *SystemSettingService) SetEnvGeminiKey(key string) {
	s.envGeminiKey = strings.TrimSpace(key)
}

// GetSettings 读取系统设置，如未设置将返回默认值。
func (s *SystemSettingService) GetSettings() (SystemSettings, error) {
	result := SystemSettings{SiteName: DefaultSiteName, AIProvider: AIProviderGemini}

	var records []db.SystemSetting
	if err := s.db.Where("key IN ?", settingKeys).Find(&records).Error; err != nil {
		return result, fmt.Errorf("load system settings: %w", err)
	}

	for _, record := range records {
		switch record.Key {
		case db.SettingKeySiteName:
			if strings.TrimSpace(record.Value) != "" {
				result.SiteName = record.Value
			}
		case db.SettingKeyChildName:
			result.ChildName = record.Value
		case db.SettingKeyAIProvider:
			if provider := normalizeAIProvider(record.Value); provider != "" {
				result.AIProvider = provider
			}
		case db.SettingKeyGeminiAPIKey:
			result.GeminiAPIKey = record.Value
		case db.SettingKeyOpenAIAPIKey:
			result.OpenAIAPIKey = record.Value
		case db.SettingKeyDeepSeekAPIKey:
			result.DeepSeekAPIKey = record.Value
		case db.SettingKeyAIAnalysisPrompt:
			result.AIAnalysisPrompt = record.Value
		}
	}

	if strings.TrimSpace(result.GeminiAPIKey) == "" {
		result.GeminiAPIKey = s.envGeminiKey
	}

	return result, nil
}

// UpdateSettings 保存系统设置，未填写站点名称时回退默认值。
func (s *SystemSettingService) UpdateSettings(input SystemSettingsInput) (SystemSettings, error) {
	provider := normalizeAIProvider(input.AIProvider)
	if provider == "" {
		provider = AIProviderGemini
	}

	values := map[string]string{
		db.SettingKeySiteName:         strings.TrimSpace(input.SiteName),
		db.SettingKeyChildName:        strings.TrimSpace(input.ChildName),
		db.SettingKeyAIProvider:       provider,
		db.SettingKeyAIAnalysisPrompt: strings.TrimSpace(input.AIAnalysisPrompt),
	}
	if values[db.SettingKeySiteName] == "" {
		values[db.SettingKeySiteName] = DefaultSiteName
	}
	if input.GeminiAPIKey != nil {
		values[db.SettingKeyGeminiAPIKey] = strings.TrimSpace(*input.GeminiAPIKey)
	}
	if input.OpenAIAPIKey != nil {
		values[db.SettingKeyOpenAIAPIKey] = strings.TrimSpace(*input.OpenAIAPIKey)
	}
	if input.DeepSeekAPIKey != nil {
		values[db.SettingKeyDeepSeekAPIKey] = strings.TrimSpace(*input.DeepSeekAPIKey)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, key := range settingKeys {
			value, ok := values[key]
			if !ok {
				continue
			}
			if err := upsertSetting(tx, key, value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return SystemSettings{}, fmt.Errorf("update system settings: %w", err)
	}

	s.broker.publish(SlotSettings, "update", "")
	return s.GetSettings()
}

func upsertSetting(tx *gorm.DB, key, value string) error {
	setting := db.SystemSetting{Key: key, Value: value}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&setting).Error; err != nil {
		return fmt.Errorf("upsert setting %s: %w", key, err)
	}
	return nil
}

// SetHTTPClient 替换用于访问第三方服务的 HTTP 客户端，主要面向测试场景。
func (s *SystemSettingService) SetHTTPClient(client httpDoer) {
	if client == nil {
		s.httpClient = &http.Client{Timeout: 10 * time.Second}
		return
	}
	s.httpClient = client
}

// SetGeminiBaseURL 覆盖 Gemini REST 基础地址。
func (s *SystemSettingService) SetGeminiBaseURL(base string) {
	s.geminiBaseURL = strings.TrimRight(strings.TrimSpace(base), "/")
}

// SetOpenAIBaseURL 覆盖 OpenAI API 的基础地址，便于测试或自定义代理。
func (s *SystemSettingService) SetOpenAIBaseURL(base string) {
	s.openAIBaseURL = strings.TrimRight(strings.TrimSpace(base), "/")
}

// SetDeepSeekBaseURL 覆盖 DeepSeek API 的基础地址，便于测试或自定义代理。
func (s *SystemSettingService) SetDeepSeekBaseURL(base string) {
	s.deepSeekBaseURL = strings.TrimRight(strings.TrimSpace(base), "/")
}

// TestAIConnection 调用指定 AI 平台的模型列表接口验证 API Key 的有效性。
func (s *SystemSettingService) TestAIConnection(ctx context.Context, provider, apiKey string) error {
	key := strings.TrimSpace(apiKey)
	if key == "" {
		return ErrAIAPIKeyMissing
	}

	prov := normalizeAIProvider(provider)
	if prov == "" {
		prov = AIProviderGemini
	}

	client := s.httpClient
	if client == nil {
		client = http.DefaultClient
	}

	var (
		endpoint string
		label    string
		bearer   bool
	)
	switch prov {
	case AIProviderDeepSeek:
		endpoint, label, bearer = s.deepSeekBaseURL+"/models", "DeepSeek", true
	case AIProviderOpenAI:
		endpoint, label, bearer = s.openAIBaseURL+"/models", "OpenAI", true
	default:
		endpoint, label = s.geminiBaseURL+"/models?key="+url.QueryEscape(key), "Gemini"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", strings.ToLower(label), err)
	}
	if bearer {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	req.Header.Set("User-Agent", "tictracker-admin/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("请求 %s 接口失败: %w", label, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		msg := strings.TrimSpace(string(body))
		if msg != "" {
			return fmt.Errorf("%s 返回错误：%s (%s)", label, resp.Status, msg)
		}
		return fmt.Errorf("%s 返回错误：%s", label, resp.Status)
	}

	return nil
}

func normalizeAIProvider(provider string) string {
	trimmed := strings.ToLower(strings.TrimSpace(provider))
	for _, candidate := range supportedAIProviders {
		if trimmed == candidate {
			return candidate
		}
	}
	return ""
}

func maskKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
