package handler

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
)

const eventHeartbeat = 25 * time.Second

// StreamEvents 通过 SSE 推送状态变更，页面收到后重新渲染。
func (a *API) StreamEvents(c *gin.Context) {
	changes, cancel := a.broker.Subscribe()
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ticker := time.NewTicker(eventHeartbeat)
	defer ticker.Stop()

	ctx := c.Request.Context()
	done := a.broker.Done()
	c.SSEvent("ready", gin.H{"at": a.now().UnixMilli()})
	c.Writer.Flush()

	c.Stream(func(io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-done:
			return false
		case change, ok := <-changes:
			if !ok {
				return false
			}
			c.SSEvent("change", change)
			return true
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"at": a.now().UnixMilli()})
			return true
		}
	})
}
