// Package web embeds the page templates and static assets served by the router.
package web

import "embed"

// Templates 包含全部页面模板。
//
//go:embed templates/*.html
var Templates embed.FS

// Static 包含样式与脚本。
//
//go:embed static
var Static embed.FS
