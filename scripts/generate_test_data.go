package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/tictracker/internal/catalog"
	"github.com/tictracker/internal/config"
	"github.com/tictracker/internal/db"
	"github.com/tictracker/internal/service"
	"gorm.io/gorm"
)

// demoStats 汇总写入的示例数据数量
type demoStats struct {
	Entries     int
	DailyInfo   int
	HistoryRows int
	Groups      int
}

var demoTowns = []string{"台北市 大安區", "台北市 信義區", "新北市 板橋區"}

var demoWeatherCodes = []int{0, 1, 2, 3, 61, 80}

// 测试数据生成器
func main() {
	days := flag.Int("days", 30, "產生最近幾天的示例資料")
	seed := flag.Int64("seed", 42, "隨機種子")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("設定讀取失敗:", err)
	}
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatal("資料庫初始化失敗:", err)
	}

	fmt.Println("開始產生示例資料...")

	if err := db.EnsureUser(db.DB, "admin", "admin123"); err != nil {
		log.Fatal("建立示例帳號失敗:", err)
	}

	stats, err := seedDemoData(db.DB, time.Now(), *days, cfg.Location(), rand.New(rand.NewSource(*seed)))
	if err != nil {
		log.Fatal("產生示例資料失敗:", err)
	}

	fmt.Println("示例資料產生完成！")
	fmt.Println("帳號: admin (密碼: admin123)")
	fmt.Printf("紀錄: %d 筆，每日資訊: %d 天，成長紀錄: %d 筆\n", stats.Entries, stats.DailyInfo, stats.HistoryRows)
}

// seedDemoData 为最近 days 天生成示例条目；已有条目时跳过。
func seedDemoData(gdb *gorm.DB, now time.Time, days int, loc *time.Location, rng *rand.Rand) (demoStats, error) {
	var stats demoStats

	var count int64
	if err := gdb.Model(&db.Entry{}).Count(&count).Error; err != nil {
		return stats, err
	}
	if count > 0 {
		fmt.Println("紀錄已存在，跳過產生")
		return stats, nil
	}

	entries := service.NewEntryService(gdb, nil, loc)
	daily := service.NewDailyInfoService(gdb, nil, loc, nil)
	items := service.NewCustomItemService(gdb, nil)

	if _, err := items.AddGroup(catalog.CategoryEvent, "才藝課"); err != nil {
		return stats, err
	}
	for _, item := range []string{"鋼琴", "游泳課"} {
		if err := items.AddItem(catalog.CategoryEvent, "才藝課", item); err != nil {
			return stats, err
		}
	}
	stats.Groups = 1

	today := now.In(loc)
	for offset := days - 1; offset >= 0; offset-- {
		day := time.Date(today.Year(), today.Month(), today.Day()-offset, 0, 0, 0, 0, loc)
		date := day.Format(service.DateLayout)

		for _, input := range demoDay(day, rng) {
			if _, err := entries.Add(input); err != nil {
				return stats, fmt.Errorf("seed %s: %w", date, err)
			}
			stats.Entries++
		}

		code := demoWeatherCodes[rng.Intn(len(demoWeatherCodes))]
		if _, err := daily.Set(date, service.DailyInfoInput{
			Location:    demoTowns[rng.Intn(len(demoTowns))],
			Latitude:    25.03,
			Longitude:   121.56,
			Temperature: 18 + float64(rng.Intn(140))/10,
			WeatherCode: code,
		}); err != nil {
			return stats, err
		}
		stats.DailyInfo++
	}

	// 每 30 天一笔成长纪录
	height, weight := 118.0, 22.0
	for offset := days - 1; offset >= 0; offset -= 30 {
		ts := time.Date(today.Year(), today.Month(), today.Day()-offset, 20, 0, 0, 0, loc)
		age, h, w := 8.0, height, weight
		record := db.BasicInfoRecord{Timestamp: ts.UnixMilli(), Age: &age, Height: &h, Weight: &w}
		if err := gdb.Create(&record).Error; err != nil {
			return stats, err
		}
		stats.HistoryRows++
		height += 0.6
		weight += 0.3
	}
	return stats, nil
}

// demoDay 生成一天的条目：三餐、睡眠、心情与若干抽动。
func demoDay(day time.Time, rng *rand.Rand) []service.EntryInput {
	at := func(hour, minute int) time.Time {
		return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
	}

	var out []service.EntryInput

	if content, wake, err := catalog.ComposeSleep(day.Format(service.DateLayout), "21:30", fmt.Sprintf("06:%02d", 30+rng.Intn(30)), day.Location()); err == nil {
		out = append(out, service.EntryInput{Timestamp: wake, Category: string(catalog.CategoryHealth), Content: content})
	}

	diet := catalog.DefaultGroups(catalog.CategoryDiet)
	for i, meal := range []string{"早餐", "中餐", "晚餐"} {
		picks := []string{pick(diet[0].Items, rng), pick(diet[2].Items, rng), pick(diet[1].Items, rng)}
		out = append(out, service.EntryInput{
			Timestamp: at(7+i*5, 15),
			Category:  string(catalog.CategoryDiet),
			Content:   catalog.ComposeContent(meal, picks),
		})
	}

	behavior := catalog.DefaultGroups(catalog.CategoryBehavior)
	for i := 0; i < 1+rng.Intn(4); i++ {
		group := behavior[rng.Intn(len(behavior))]
		out = append(out, service.EntryInput{
			Timestamp: at(9+rng.Intn(11), rng.Intn(60)),
			Category:  string(catalog.CategoryBehavior),
			Content:   catalog.ComposeContent("", []string{pick(group.Items, rng)}),
		})
	}

	mood := catalog.DefaultGroups(catalog.CategoryMood)[0]
	out = append(out, service.EntryInput{
		Timestamp: at(20, 30),
		Category:  string(catalog.CategoryMood),
		Content:   pick(mood.Items, rng),
	})

	if rng.Intn(3) == 0 {
		out = append(out, service.EntryInput{
			Timestamp: at(16, 0),
			Category:  string(catalog.CategoryEvent),
			Content:   "鋼琴",
		})
	}
	return out
}

func pick(items []string, rng *rand.Rand) string {
	return items[rng.Intn(len(items))]
}
