package handler

import "testing"

func TestLocalizeFixedTitle(t *testing.T) {
	tests := []struct {
		name     string
		language string
		input    string
		want     string
	}{
		{
			name:     "zh to en",
			language: "en",
			input:    "統計分析",
			want:     "Statistics",
		},
		{
			name:     "en to zh",
			language: "zh-TW",
			input:    "Add Entry",
			want:     "新增紀錄",
		},
		{
			name:     "unknown stays",
			language: "en",
			input:    "Custom Title",
			want:     "Custom Title",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := localizeFixedTitle(tc.language, tc.input)
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
