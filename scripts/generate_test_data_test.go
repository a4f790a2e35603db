package main

import (
	"math/rand"
	"testing"
	"time"

	"github.com/tictracker/internal/catalog"
	"github.com/tictracker/internal/db"
	"github.com/tictracker/internal/service"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDemoSeedTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file:demo-seed?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func TestSeedDemoDataCoversEveryDay(t *testing.T) {
	gdb := setupDemoSeedTestDB(t)
	loc := time.FixedZone("TPE", 8*3600)
	now := time.Date(2024, 5, 10, 22, 0, 0, 0, loc)

	stats, err := seedDemoData(gdb, now, 14, loc, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("seedDemoData returned error: %v", err)
	}
	if stats.DailyInfo != 14 || stats.HistoryRows != 1 || stats.Groups != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	entries := service.NewEntryService(gdb, nil, loc)
	for offset := 0; offset < 14; offset++ {
		date := now.AddDate(0, 0, -offset).Format(service.DateLayout)
		list, err := entries.List(service.EntryFilter{Date: date})
		if err != nil {
			t.Fatalf("list %s: %v", date, err)
		}
		// 睡眠、三餐、心情与至少一次抽动
		if len(list) < 6 {
			t.Fatalf("expected at least 6 entries on %s, got %d", date, len(list))
		}
		for _, e := range list {
			if !catalog.ValidCategory(e.Category) {
				t.Fatalf("seeded invalid category %q", e.Category)
			}
		}
	}

	again, err := seedDemoData(gdb, now, 14, loc, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("second seed returned error: %v", err)
	}
	if again.Entries != 0 {
		t.Fatalf("expected second run to skip, got %+v", again)
	}
}
