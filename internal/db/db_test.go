package db

import (
	"path/filepath"
	"testing"

	"gorm.io/gorm/logger"
)

func TestOpenCreatesParentDirAndMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "diary.db")

	gdb, err := Open(path, logger.Default.LogMode(logger.Silent))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	for _, model := range Models() {
		if !gdb.Migrator().HasTable(model) {
			t.Fatalf("expected table for %T", model)
		}
	}

	group := CustomGroup{Category: "飲食", Name: "宵夜", Items: []string{"泡麵", "鹽酥雞"}}
	if err := gdb.Create(&group).Error; err != nil {
		t.Fatalf("failed to create group: %v", err)
	}
	var loaded CustomGroup
	if err := gdb.First(&loaded, group.ID).Error; err != nil {
		t.Fatalf("failed to reload group: %v", err)
	}
	if len(loaded.Items) != 2 || loaded.Items[1] != "鹽酥雞" {
		t.Fatalf("items should round-trip through json serializer, got %v", loaded.Items)
	}
}

func TestAuthenticate(t *testing.T) {
	gdb, err := Open("file:auth-test?mode=memory&cache=shared", logger.Default.LogMode(logger.Silent))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}

	if err := EnsureUser(gdb, "parent", "secret"); err != nil {
		t.Fatalf("EnsureUser returned error: %v", err)
	}
	if _, err := Authenticate(gdb, "parent", "secret"); err != nil {
		t.Fatalf("expected valid credentials, got %v", err)
	}
	if _, err := Authenticate(gdb, "parent", "wrong"); err == nil {
		t.Fatal("expected wrong password to fail")
	}

	if err := SetPassword(gdb, "parent", "changed"); err != nil {
		t.Fatalf("SetPassword returned error: %v", err)
	}
	if _, err := Authenticate(gdb, "parent", "changed"); err != nil {
		t.Fatalf("expected new password to work, got %v", err)
	}
}
