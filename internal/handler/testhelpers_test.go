package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/tictracker/internal/db"
	"github.com/tictracker/internal/service"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var taipei = time.FixedZone("TPE", 8*3600)

// fixedNow 是测试中 API 使用的当前时间：2024-05-10 12:00 (UTC+8)。
var fixedNow = time.Date(2024, 5, 10, 12, 0, 0, 0, taipei)

type stubHTMLRender struct {
	last *stubHTMLInstance
}

type stubHTMLInstance struct {
	name string
	data interface{}
}

func (r *stubHTMLRender) Instance(name string, data interface{}) render.Render {
	r.last = &stubHTMLInstance{name: name, data: data}
	return r.last
}

func (r *stubHTMLInstance) Render(http.ResponseWriter) error {
	return nil
}

func (r *stubHTMLInstance) WriteContentType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
}

func setupTestAPI(t *testing.T, opts Options) *API {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	if opts.Location == nil {
		opts.Location = taipei
	}
	if opts.CacheVersion == 0 {
		opts.CacheVersion = 8
	}
	api := NewAPI(gdb, nil, opts)
	api.now = func() time.Time { return fixedNow }
	return api
}

// newTestEngine 按生产路由的结构注册 handler，附带会话与语言中间件。
func newTestEngine(api *API) (*gin.Engine, *stubHTMLRender) {
	r := gin.New()
	htmlRender := &stubHTMLRender{}
	r.HTMLRender = htmlRender
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))
	r.Use(api.LocaleMiddleware())

	r.GET("/manifest.json", api.Manifest)
	r.GET("/sw.js", api.ServiceWorker)
	r.GET("/icons/:file", api.Icon)
	r.GET("/login", api.ShowLoginPage)
	r.POST("/login", api.Login)

	auth := r.Group("")
	auth.Use(api.AuthRequired())
	auth.GET("/", api.ShowLog)
	auth.GET("/add", api.ShowAdd)
	auth.GET("/stats", api.ShowStats)

	g := r.Group("/api")
	g.Use(api.AuthRequired())
	g.GET("/events", api.StreamEvents)
	g.GET("/entries", api.ListEntries)
	g.POST("/entries", api.CreateEntry)
	g.GET("/entries/:id", api.GetEntry)
	g.PUT("/entries/:id", api.UpdateEntry)
	g.DELETE("/entries/:id", api.DeleteEntry)
	g.GET("/categories", api.ListCategories)
	g.GET("/categories/:category/groups", api.ListGroups)
	g.POST("/categories/:category/groups", api.CreateGroup)
	g.PUT("/categories/:category/groups/:group", api.RenameGroup)
	g.DELETE("/categories/:category/groups/:group", api.DeleteGroup)
	g.POST("/categories/:category/groups/:group/items", api.CreateItem)
	g.PUT("/categories/:category/groups/:group/items/:item", api.RenameItem)
	g.DELETE("/categories/:category/groups/:group/items/:item", api.DeleteItem)
	g.GET("/custom-items", api.ListCustomItems)
	g.GET("/daily-info", api.GetDailyInfo)
	g.POST("/daily-info/resolve", api.ResolveDailyInfo)
	g.PUT("/daily-info/:date", api.SetDailyInfo)
	g.GET("/basic-info", api.GetBasicInfo)
	g.PUT("/basic-info", api.UpdateBasicInfo)
	g.GET("/basic-info/history", api.ListBasicInfoHistory)
	g.PUT("/basic-info/history/:timestamp", api.UpdateBasicInfoHistory)
	g.DELETE("/basic-info/history/:timestamp", api.DeleteBasicInfoHistory)
	g.GET("/charts", api.GetChart)
	g.GET("/charts.svg", api.GetChartSVG)
	g.POST("/analysis", api.AnalyzeEntries)
	g.GET("/settings", api.GetSystemSettings)
	g.PUT("/settings", api.UpdateSystemSettings)
	g.GET("/backup", api.ExportBackup)
	g.POST("/backup", api.ImportBackup)
	return r, htmlRender
}

func doJSON(t *testing.T, h http.Handler, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func millis(year int, month time.Month, day, hour, minute int) int64 {
	return time.Date(year, month, day, hour, minute, 0, 0, taipei).UnixMilli()
}

func entryInput(category, content string) service.EntryInput {
	return service.EntryInput{Category: category, Content: content, Timestamp: fixedNow}
}
