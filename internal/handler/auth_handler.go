package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/tictracker/internal/db"
	"go.uber.org/zap"
)

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// ShowLoginPage 渲染登录页面
func (a *API) ShowLoginPage(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "login.html", gin.H{
		"page":  "login",
		"title": "登入",
		"next":  safeNext(c.Query("next")),
	})
}

// Login 校验账号密码并写入会话，表单提交时重定向，JSON 请求返回结果。
func (a *API) Login(c *gin.Context) {
	var payload loginRequest
	if err := c.ShouldBind(&payload); err != nil {
		a.loginFailed(c, http.StatusBadRequest, "請輸入帳號與密碼")
		return
	}

	user, err := db.Authenticate(a.db, payload.Username, payload.Password)
	if err != nil {
		a.logger.Info("login rejected", zap.String("username", strings.TrimSpace(payload.Username)))
		a.loginFailed(c, http.StatusUnauthorized, "帳號或密碼錯誤")
		return
	}

	// 设置会话
	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Set("username", user.Username)
	if err := session.Save(); err != nil {
		a.loginFailed(c, http.StatusInternalServerError, "會話儲存失敗")
		return
	}

	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"message": "登入成功", "username": user.Username})
		return
	}
	c.Redirect(http.StatusFound, safeNext(c.PostForm("next")))
}

func (a *API) loginFailed(c *gin.Context, status int, message string) {
	if wantsJSON(c) {
		respondError(c, status, message)
		return
	}
	a.renderHTML(c, status, "login.html", gin.H{
		"page":  "login",
		"title": "登入",
		"error": message,
		"next":  safeNext(c.PostForm("next")),
	})
}

// Logout 处理用户登出
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Redirect(http.StatusFound, "/login")
}

// AuthRequired 在启用登录保护时校验会话；API 请求返回 401，页面请求跳转登录页。
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.authRequired {
			c.Next()
			return
		}
		session := sessions.Default(c)
		if session.Get("user_id") == nil {
			if strings.HasPrefix(c.Request.URL.Path, "/api/") {
				respondError(c, http.StatusUnauthorized, "請先登入")
				c.Abort()
				return
			}
			c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Content-Type"), "application/json") ||
		strings.Contains(c.GetHeader("Accept"), "application/json")
}

// safeNext 只允许站内相对路径，避免开放重定向。
func safeNext(next string) string {
	next = strings.TrimSpace(next)
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/"
	}
	return next
}
