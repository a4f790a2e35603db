package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const itemSeparator = ", "

var contentPrefixPattern = regexp.MustCompile(`^[^:]+:\s*`)

// ErrInvalidSleepTime 表示就寝或起床时间格式无效。
var ErrInvalidSleepTime = errors.New("invalid sleep time")

// ParseItems 拆分条目内容中的项目列表。
// 餐别等 "前缀: " 会被去除；睡眠记录整体计为一个项目。
func ParseItems(content string) []string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil
	}
	if IsSleepContent(trimmed) {
		return []string{GroupSleep}
	}

	body := contentPrefixPattern.ReplaceAllString(trimmed, "")
	parts := strings.Split(body, itemSeparator)
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if item := strings.TrimSpace(part); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// ItemCount 返回条目内容包含的项目数。
func ItemCount(content string) int {
	return len(ParseItems(content))
}

// SplitMeal 拆出飲食条目的餐别前缀，没有合法前缀时 meal 为空。
func SplitMeal(content string) (meal, rest string) {
	trimmed := strings.TrimSpace(content)
	head, tail, found := strings.Cut(trimmed, ":")
	if !found {
		return "", trimmed
	}
	head = strings.TrimSpace(head)
	if !IsMealType(head) {
		return "", trimmed
	}
	return head, strings.TrimSpace(tail)
}

// ComposeContent 将选中的项目拼接为条目内容，飲食可带餐别前缀。
func ComposeContent(meal string, items []string) string {
	cleaned := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		cleaned = append(cleaned, item)
	}
	if len(cleaned) == 0 {
		return ""
	}
	joined := strings.Join(cleaned, itemSeparator)
	if meal = strings.TrimSpace(meal); meal != "" && IsMealType(meal) {
		return meal + ": " + joined
	}
	return joined
}

// IsSleepContent reports whether content was produced by ComposeSleep.
func IsSleepContent(content string) bool {
	return strings.HasPrefix(strings.TrimSpace(content), GroupSleep+" ")
}

// ComposeSleep 根据日期与就寝/起床时间生成睡眠记录。
// 起床早于就寝时视为前一晚就寝；返回的时间戳为起床时刻。
func ComposeSleep(date, bedtime, waketime string, loc *time.Location) (string, time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	wake, err := time.ParseInLocation("2006-01-02 15:04", date+" "+waketime, loc)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: waketime %q", ErrInvalidSleepTime, waketime)
	}
	bed, err := time.ParseInLocation("2006-01-02 15:04", date+" "+bedtime, loc)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: bedtime %q", ErrInvalidSleepTime, bedtime)
	}
	if wake.Before(bed) {
		bed = bed.AddDate(0, 0, -1)
	}

	duration := wake.Sub(bed)
	hours := int(duration / time.Hour)
	minutes := int((duration % time.Hour).Round(time.Minute) / time.Minute)

	content := fmt.Sprintf("%s %d小時%d分鐘 (%s - %s)", GroupSleep, hours, minutes, bedtime, waketime)
	return content, wake, nil
}
