package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tictracker/internal/pwa"
)

// Manifest 返回 Web App Manifest，名称取自系统设置。
func (a *API) Manifest(c *gin.Context) {
	site := a.siteSettings(c)
	pref := a.requestLocale(c)
	c.Header("Content-Type", "application/manifest+json; charset=utf-8")
	c.JSON(http.StatusOK, pwa.NewManifest(site.Name, pref.Language))
}

// ServiceWorker 返回按缓存版本生成的 service worker。
func (a *API) ServiceWorker(c *gin.Context) {
	script, err := pwa.ServiceWorker(a.cacheVersion)
	if err != nil {
		c.Error(err)
		c.String(http.StatusInternalServerError, "service worker unavailable")
		return
	}
	c.Header("Cache-Control", "no-cache")
	c.Header("Service-Worker-Allowed", "/")
	c.Data(http.StatusOK, "application/javascript; charset=utf-8", script)
}

// Icon 返回 PNG 图标，文件名形如 icon-192.png 或 icon-maskable-512.png。
func (a *API) Icon(c *gin.Context) {
	size, maskable, ok := parseIconName(c.Param("file"))
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	raw, err := pwa.Icon(size, maskable)
	if err != nil {
		if errors.Is(err, pwa.ErrIconSize) {
			c.Status(http.StatusNotFound)
			return
		}
		c.Error(err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Header("Cache-Control", "public, max-age=604800")
	c.Data(http.StatusOK, "image/png", raw)
}

func parseIconName(name string) (int, bool, bool) {
	base, found := strings.CutSuffix(name, ".png")
	if !found {
		return 0, false, false
	}
	base, found = strings.CutPrefix(base, "icon-")
	if !found {
		return 0, false, false
	}
	maskable := false
	if rest, ok := strings.CutPrefix(base, "maskable-"); ok {
		maskable = true
		base = rest
	}
	size, err := strconv.Atoi(base)
	if err != nil {
		return 0, false, false
	}
	return size, maskable, true
}
