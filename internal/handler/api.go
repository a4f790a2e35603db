package handler

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tictracker/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options 汇总构造 API 所需的运行参数。
type Options struct {
	Location     *time.Location
	CacheVersion int
	AuthRequired bool
	GeminiAPIKey string
	Logger       *zap.Logger
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db        *gorm.DB
	broker    *service.Broker
	entries   *service.EntryService
	items     *service.CustomItemService
	daily     *service.DailyInfoService
	basicInfo *service.BasicInfoService
	stats     *service.StatsService
	system    *service.SystemSettingService
	analyzer  service.Analyzer
	backup    *service.BackupService
	logger    *zap.Logger
	loc       *time.Location
	now       func() time.Time

	cacheVersion int
	authRequired bool
}

type siteViewModel struct {
	Name      string
	ChildName string
}

const siteSettingsContextKey = "__site_settings"

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, broker *service.Broker, opts Options) *API {
	if broker == nil {
		broker = service.NewBroker()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}

	entries := service.NewEntryService(gdb, broker, opts.Location)
	daily := service.NewDailyInfoService(gdb, broker, opts.Location, opts.Logger.Named("daily"))
	basicInfo := service.NewBasicInfoService(gdb, broker)
	systemService := service.NewSystemSettingService(gdb, broker)
	systemService.SetEnvGeminiKey(opts.GeminiAPIKey)

	return &API{
		db:           gdb,
		broker:       broker,
		entries:      entries,
		items:        service.NewCustomItemService(gdb, broker),
		daily:        daily,
		basicInfo:    basicInfo,
		stats:        service.NewStatsService(entries, daily, basicInfo),
		system:       systemService,
		analyzer:     service.NewAIAnalysisService(entries, systemService, opts.Logger.Named("ai")),
		backup:       service.NewBackupService(gdb, broker),
		logger:       opts.Logger,
		loc:          opts.Location,
		now:          time.Now,
		cacheVersion: opts.CacheVersion,
		authRequired: opts.AuthRequired,
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}

// Broker 返回状态变更广播器。
func (a *API) Broker() *service.Broker {
	return a.broker
}

// Location 返回页面展示使用的时区。
func (a *API) Location() *time.Location {
	return a.loc
}

// SetAnalyzer 替换 AI 分析实现，主要用于测试。
func (a *API) SetAnalyzer(analyzer service.Analyzer) {
	if analyzer != nil {
		a.analyzer = analyzer
	}
}

// DailyInfo 暴露每日资讯服务，便于测试替换第三方接口地址。
func (a *API) DailyInfo() *service.DailyInfoService {
	return a.daily
}

func (a *API) siteSettings(c *gin.Context) siteViewModel {
	if cached, exists := c.Get(siteSettingsContextKey); exists {
		if view, ok := cached.(siteViewModel); ok {
			return view
		}
	}

	settings, err := a.system.GetSettings()
	if err != nil {
		c.Error(err)
	}

	view := siteViewModel{
		Name:      strings.TrimSpace(settings.SiteName),
		ChildName: strings.TrimSpace(settings.ChildName),
	}
	if view.Name == "" {
		view.Name = service.DefaultSiteName
	}

	c.Set(siteSettingsContextKey, view)
	return view
}

func (a *API) renderHTML(c *gin.Context, status int, template string, data gin.H) {
	view := a.siteSettings(c)
	pref := a.requestLocale(c)

	payload := gin.H{}
	for key, value := range data {
		payload[key] = value
	}

	if _, exists := payload["siteName"]; !exists {
		payload["siteName"] = view.Name
	}
	if _, exists := payload["childName"]; !exists {
		payload["childName"] = view.ChildName
	}
	if _, exists := payload["language"]; !exists {
		payload["language"] = pref.Language
	}
	if _, exists := payload["htmlLang"]; !exists {
		payload["htmlLang"] = pref.HTMLLang
	}
	if _, exists := payload["languageSwitch"]; !exists {
		payload["languageSwitch"] = buildLanguageSwitch(c)
	}
	if title, ok := payload["title"].(string); ok {
		payload["title"] = localizeFixedTitle(pref.Language, title)
	}
	if _, exists := payload["page"]; !exists {
		payload["page"] = ""
	}
	payload["authRequired"] = a.authRequired

	c.HTML(status, template, payload)
}
