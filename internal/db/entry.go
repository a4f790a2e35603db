package db

import "time"

// Entry 是一条日志记录。
// Timestamp 为毫秒级 Unix 时间戳，列表始终按其倒序展示。
type Entry struct {
	ID        string `gorm:"primaryKey;size:64"`
	Timestamp int64  `gorm:"index;not null"`
	Category  string `gorm:"size:16;index;not null"`
	Content   string `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Time 将毫秒时间戳转换为 time.Time。
func (e Entry) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}
