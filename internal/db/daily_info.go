package db

import "time"

// DailyInfo 缓存某一天的地点与天气快照，每天只抓取一次。
type DailyInfo struct {
	Date               string `gorm:"primaryKey;size:10"`
	Location           string
	Latitude           float64
	Longitude          float64
	Temperature        float64
	WeatherCode        int
	WeatherIcon        string
	WeatherDescription string
	FetchedAt          time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
