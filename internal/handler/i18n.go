package handler

import "github.com/tictracker/internal/locale"

var fixedTitleMap = map[string]string{
	"日誌":   "Log",
	"新增紀錄": "Add Entry",
	"統計分析": "Statistics",
	"編輯紀錄": "Edit Entry",
	"登入":   "Sign In",
	"系統設定": "Settings",
}

func localizeFixedTitle(language, title string) string {
	if title == "" {
		return title
	}
	normalized := locale.NormalizeLanguage(language)
	if normalized == locale.LanguageEnglish {
		if mapped, ok := fixedTitleMap[title]; ok {
			return mapped
		}
		return title
	}
	for key, value := range fixedTitleMap {
		if value == title {
			return key
		}
	}
	return title
}
