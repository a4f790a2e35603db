// Package pwa serves the installable-app assets: the web manifest, the generated
// service worker and the rasterised launcher icons.
package pwa

import "fmt"

const (
	ThemeColor      = "#06b6d4"
	BackgroundColor = "#f9fafb"
)

// IconSizes 列出 manifest 中声明的图标尺寸。
var IconSizes = []int{192, 512}

// ManifestIcon 对应 manifest.json 中的 icons 项。
type ManifestIcon struct {
	Src     string `json:"src"`
	Sizes   string `json:"sizes"`
	Type    string `json:"type"`
	Purpose string `json:"purpose,omitempty"`
}

// Manifest 是 Web App Manifest 的子集。
type Manifest struct {
	Name            string         `json:"name"`
	ShortName       string         `json:"short_name"`
	Description     string         `json:"description"`
	StartURL        string         `json:"start_url"`
	Scope           string         `json:"scope"`
	Display         string         `json:"display"`
	Orientation     string         `json:"orientation"`
	Lang            string         `json:"lang"`
	ThemeColor      string         `json:"theme_color"`
	BackgroundColor string         `json:"background_color"`
	Icons           []ManifestIcon `json:"icons"`
}

// NewManifest 以站点名构造 manifest，name 为空时使用默认名称。
func NewManifest(name, lang string) Manifest {
	if name == "" {
		name = "抽動症日誌"
	}
	if lang == "" {
		lang = "zh-TW"
	}
	icons := make([]ManifestIcon, 0, len(IconSizes)+1)
	for _, size := range IconSizes {
		icons = append(icons, ManifestIcon{
			Src:   IconPath(size, false),
			Sizes: fmt.Sprintf("%dx%d", size, size),
			Type:  "image/png",
		})
	}
	icons = append(icons, ManifestIcon{
		Src:     IconPath(512, true),
		Sizes:   "512x512",
		Type:    "image/png",
		Purpose: "maskable",
	})
	return Manifest{
		Name:            name,
		ShortName:       shortName(name),
		Description:     "記錄飲食、健康、用藥、行為、事件與情緒的日誌",
		StartURL:        "/",
		Scope:           "/",
		Display:         "standalone",
		Orientation:     "portrait",
		Lang:            lang,
		ThemeColor:      ThemeColor,
		BackgroundColor: BackgroundColor,
		Icons:           icons,
	}
}

// IconPath 返回图标的访问路径。
func IconPath(size int, maskable bool) string {
	if maskable {
		return fmt.Sprintf("/icons/icon-maskable-%d.png", size)
	}
	return fmt.Sprintf("/icons/icon-%d.png", size)
}

func shortName(name string) string {
	runes := []rune(name)
	if len(runes) <= 12 {
		return name
	}
	return string(runes[:12])
}
