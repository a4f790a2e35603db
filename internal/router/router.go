package router

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/tictracker/internal/db"
	"github.com/tictracker/internal/handler"
	"github.com/tictracker/internal/logging"
	"github.com/tictracker/internal/service"
	"github.com/tictracker/internal/view"
	"github.com/tictracker/web"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options 控制路由的运行参数。
type Options struct {
	SessionSecret string
	Location      *time.Location
	CacheVersion  int
	AuthRequired  bool
	GeminiAPIKey  string
	Logger        *zap.Logger
	Broker        *service.Broker
}

// SetupRouter 配置 Gin 引擎和路由，gdb 为 nil 时使用全局连接。
func SetupRouter(gdb *gorm.DB, opts Options) (*gin.Engine, *handler.API, error) {
	if gdb == nil {
		gdb = db.DB
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.SessionSecret == "" {
		opts.SessionSecret = "tictracker-dev-secret"
	}

	api := handler.NewAPI(gdb, opts.Broker, handler.Options{
		Location:     opts.Location,
		CacheVersion: opts.CacheVersion,
		AuthRequired: opts.AuthRequired,
		GeminiAPIKey: opts.GeminiAPIKey,
		Logger:       opts.Logger,
	})

	r := gin.New()
	r.Use(gin.Recovery(), logging.GinMiddleware(opts.Logger.Named("http")))

	// 配置会话中间件
	store := cookie.NewStore([]byte(opts.SessionSecret))
	store.Options(sessions.Options{Path: "/", MaxAge: 30 * 24 * 3600, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions("tictracker_session", store))

	// 加载模板并添加自定义函数
	funcs := view.FuncMap(opts.Location)
	funcs["relativeTime"] = func(ms int64) string {
		if ms == 0 {
			return ""
		}
		return formatRelativeTime(time.Now(), time.UnixMilli(ms))
	}
	tmpl, err := template.New("").Funcs(funcs).ParseFS(web.Templates, "templates/*.html")
	if err != nil {
		return nil, nil, fmt.Errorf("parse templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	// 静态文件服务
	static, err := fs.Sub(web.Static, "static")
	if err != nil {
		return nil, nil, fmt.Errorf("static assets: %w", err)
	}
	r.StaticFS("/static", http.FS(static))

	r.GET("/healthz", api.HealthCheck)
	r.GET("/manifest.json", api.Manifest)
	r.GET("/sw.js", api.ServiceWorker)
	r.GET("/icons/:file", api.Icon)

	pages := r.Group("")
	pages.Use(api.LocaleMiddleware())
	{
		pages.GET("/login", api.ShowLoginPage)
		pages.POST("/login", api.Login)
		pages.GET("/logout", api.Logout)

		auth := pages.Group("")
		auth.Use(api.AuthRequired())
		{
			auth.GET("/", api.ShowLog)
			auth.GET("/add", api.ShowAdd)
			auth.GET("/stats", api.ShowStats)
		}
	}

	apiGroup := r.Group("/api")
	apiGroup.Use(api.LocaleMiddleware(), api.AuthRequired())
	{
		apiGroup.GET("/events", api.StreamEvents)

		apiGroup.GET("/entries", api.ListEntries)
		apiGroup.POST("/entries", api.CreateEntry)
		apiGroup.GET("/entries/:id", api.GetEntry)
		apiGroup.PUT("/entries/:id", api.UpdateEntry)
		apiGroup.DELETE("/entries/:id", api.DeleteEntry)

		apiGroup.GET("/categories", api.ListCategories)
		apiGroup.GET("/categories/:category/groups", api.ListGroups)
		apiGroup.POST("/categories/:category/groups", api.CreateGroup)
		apiGroup.PUT("/categories/:category/groups/:group", api.RenameGroup)
		apiGroup.DELETE("/categories/:category/groups/:group", api.DeleteGroup)
		apiGroup.POST("/categories/:category/groups/:group/items", api.CreateItem)
		apiGroup.PUT("/categories/:category/groups/:group/items/:item", api.RenameItem)
		apiGroup.DELETE("/categories/:category/groups/:group/items/:item", api.DeleteItem)
		apiGroup.GET("/custom-items", api.ListCustomItems)

		apiGroup.GET("/daily-info", api.GetDailyInfo)
		apiGroup.POST("/daily-info/resolve", api.ResolveDailyInfo)
		apiGroup.PUT("/daily-info/:date", api.SetDailyInfo)

		apiGroup.GET("/basic-info", api.GetBasicInfo)
		apiGroup.PUT("/basic-info", api.UpdateBasicInfo)
		apiGroup.GET("/basic-info/history", api.ListBasicInfoHistory)
		apiGroup.PUT("/basic-info/history/:timestamp", api.UpdateBasicInfoHistory)
		apiGroup.DELETE("/basic-info/history/:timestamp", api.DeleteBasicInfoHistory)

		apiGroup.GET("/charts", api.GetChart)
		apiGroup.GET("/charts.svg", api.GetChartSVG)
		apiGroup.POST("/analysis", api.AnalyzeEntries)

		apiGroup.GET("/settings", api.GetSystemSettings)
		apiGroup.PUT("/settings", api.UpdateSystemSettings)
		apiGroup.POST("/settings/ai/test", api.TestAIConnection)

		apiGroup.GET("/backup", api.ExportBackup)
		apiGroup.POST("/backup", api.ImportBackup)
	}

	return r, api, nil
}

// NewServer 包装 HTTP 服务。Shutdown 不会取消进行中的请求，
// 因此在关闭时通知 broker，让 SSE 长连接结束。
func NewServer(addr string, handler http.Handler, broker *service.Broker) *http.Server {
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	if broker != nil {
		srv.RegisterOnShutdown(broker.Close)
	}
	return srv
}

// formatRelativeTime 以繁体中文描述 t 距 now 的时间。
func formatRelativeTime(now, t time.Time) string {
	if t.IsZero() {
		return ""
	}
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "剛剛"
	case diff < time.Hour:
		return fmt.Sprintf("%d分鐘前", int(diff/time.Minute))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%d小時前", int(diff/time.Hour))
	case diff < 30*24*time.Hour:
		return fmt.Sprintf("%d天前", int(diff/(24*time.Hour)))
	case diff < 365*24*time.Hour:
		return fmt.Sprintf("%d個月前", int(diff/(30*24*time.Hour)))
	default:
		return fmt.Sprintf("%d年前", int(diff/(365*24*time.Hour)))
	}
}
