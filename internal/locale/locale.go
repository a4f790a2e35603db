package locale

import "strings"

const (
	LanguageChinese = "zh-TW"
	LanguageEnglish = "en"
)

// Preference 描述一次请求解析出的语言设置。
type Preference struct {
	Language string
	Locale   string
	HTMLLang string
	// AcceptLanguage 用于转发给第三方服务（如逆地理编码）。
	AcceptLanguage string
}

func NormalizeLanguage(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "zh") || trimmed == "tw" {
		return LanguageChinese
	}
	if strings.HasPrefix(trimmed, "en") {
		return LanguageEnglish
	}
	return ""
}

// LanguageFromAcceptLanguage 按 Accept-Language 中首个可识别的语言返回。
func LanguageFromAcceptLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag, _, _ := strings.Cut(part, ";")
		if lang := NormalizeLanguage(tag); lang != "" {
			return lang
		}
	}
	return ""
}

func PreferenceForLanguage(language string) Preference {
	normalized := NormalizeLanguage(language)
	if normalized == LanguageEnglish {
		return Preference{Language: LanguageEnglish, Locale: "en_US", HTMLLang: "en", AcceptLanguage: "en"}
	}
	return Preference{Language: LanguageChinese, Locale: "zh_TW", HTMLLang: "zh-Hant-TW", AcceptLanguage: "zh-TW"}
}
