package locale

import "testing"

func TestNormalizeLanguage(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{input: "zh", want: LanguageChinese},
		{input: "zh-TW", want: LanguageChinese},
		{input: "ZH_hant", want: LanguageChinese},
		{input: "en", want: LanguageEnglish},
		{input: "en-US", want: LanguageEnglish},
		{input: "fr", want: ""},
		{input: "", want: ""},
	}

	for _, tc := range cases {
		if got := NormalizeLanguage(tc.input); got != tc.want {
			t.Fatalf("NormalizeLanguage(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestLanguageFromAcceptLanguage(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{input: "zh-TW,zh;q=0.9", want: LanguageChinese},
		{input: "en-US,en;q=0.9", want: LanguageEnglish},
		{input: "fr-FR,en;q=0.5", want: LanguageEnglish},
		{input: "fr-FR,fr;q=0.9", want: ""},
		{input: "", want: ""},
	}

	for _, tc := range cases {
		if got := LanguageFromAcceptLanguage(tc.input); got != tc.want {
			t.Fatalf("LanguageFromAcceptLanguage(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestPreferenceForLanguage(t *testing.T) {
	pref := PreferenceForLanguage("en")
	if pref.Language != LanguageEnglish || pref.AcceptLanguage != "en" {
		t.Fatalf("unexpected english preference %#v", pref)
	}

	fallback := PreferenceForLanguage("")
	if fallback.Language != LanguageChinese {
		t.Fatalf("expected fallback language %q, got %q", LanguageChinese, fallback.Language)
	}
	if fallback.AcceptLanguage != "zh-TW" {
		t.Fatalf("expected zh-TW accept language, got %q", fallback.AcceptLanguage)
	}
}

func TestPickAndLabel(t *testing.T) {
	if got := Pick("en", "english", "chinese"); got != "english" {
		t.Fatalf("Pick(en) = %q, want %q", got, "english")
	}
	if got := Pick("fr", "english", "chinese"); got != "chinese" {
		t.Fatalf("Pick(fr) = %q, want %q", got, "chinese")
	}
	if got := Label("en", "行為"); got != "Behavior" {
		t.Fatalf("Label(en, 行為) = %q", got)
	}
	if got := Label("zh-TW", "行為"); got != "行為" {
		t.Fatalf("Label(zh-TW, 行為) = %q", got)
	}
	if got := Label("en", "未收錄"); got != "未收錄" {
		t.Fatalf("unknown labels should pass through, got %q", got)
	}
}
