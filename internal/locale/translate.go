package locale

// Pick returns the text matching the request language, defaulting to Traditional Chinese.
func Pick(language, english, chinese string) string {
	if NormalizeLanguage(language) == LanguageEnglish {
		if english != "" {
			return english
		}
		return chinese
	}
	if chinese != "" {
		return chinese
	}
	return english
}

var englishLabels = map[string]string{
	"飲食":     "Diet",
	"健康":     "Health",
	"用藥":     "Medication",
	"行為":     "Behavior",
	"事件":     "Event",
	"情緒":     "Mood",
	"日誌":     "Log",
	"新增紀錄":   "Add Entry",
	"統計分析":   "Statistics",
	"登入":     "Sign in",
	"趨勢圖":    "Trend",
	"分佈圖":    "Distribution",
	"氣溫":     "Temperature",
	"總計圖":    "Totals",
	"成長曲線":   "Growth",
	"前一天":    "Previous day",
	"後一天":    "Next day",
	"今天":     "Today",
	"儲存":     "Save",
	"刪除":     "Delete",
	"編輯":     "Edit",
	"取消":     "Cancel",
	"登出":     "Sign out",
	"帳號":     "Username",
	"密碼":     "Password",
	"時間":     "Time",
	"內容":     "Content",
	"餐別":     "Meal",
	"睡眠":     "Sleep",
	"就寢時間":   "Bedtime",
	"起床時間":   "Wake time",
	"新增分類":   "New group",
	"新增項目":   "New item",
	"基本資料":   "Basic info",
	"年齡":     "Age",
	"身高":     "Height",
	"體重":     "Weight",
	"新增一筆":   "Add record",
	"歷史紀錄":   "History",
	"AI 分析":  "AI analysis",
	"開始分析":   "Analyze",
	"統計區間":   "Period",
	"天":      "days",
	"今天沒有紀錄": "No entries for this day",
	"系統設定":   "Settings",
	"孩子名稱":   "Child's name",
	"測試連線":   "Test connection",
	"匯出資料":   "Export data",
	"匯入資料":   "Import data",
}

// Label 返回固定界面文字在指定语言下的显示值，未收录的文字原样返回。
func Label(language, chinese string) string {
	if NormalizeLanguage(language) != LanguageEnglish {
		return chinese
	}
	if english, ok := englishLabels[chinese]; ok {
		return english
	}
	return chinese
}
