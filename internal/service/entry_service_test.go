package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tictracker/internal/catalog"
)

var taipei = time.FixedZone("TPE", 8*3600)

func TestEntryServiceAddListOrder(t *testing.T) {
	gdb := setupTestDB(t)
	broker := NewBroker()
	var changes []Change
	broker.OnChange(func(c Change) { changes = append(changes, c) })

	svc := NewEntryService(gdb, broker, taipei)
	base := time.Date(2024, 5, 2, 9, 0, 0, 0, taipei)

	_, err := svc.Add(EntryInput{Timestamp: base, Category: "行為", Content: "眨眼, 聳肩"})
	require.NoError(t, err)
	latest, err := svc.Add(EntryInput{Timestamp: base.Add(2 * time.Hour), Category: "飲食", Content: "  中餐: 白飯  "})
	require.NoError(t, err)
	_, err = svc.Add(EntryInput{Timestamp: base.AddDate(0, 0, -1), Category: "情緒", Content: "開心 😊"})
	require.NoError(t, err)

	entries, err := svc.List(EntryFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, latest.ID, entries[0].ID)
	assert.Equal(t, "中餐: 白飯", entries[0].Content)
	for i := 1; i < len(entries); i++ {
		assert.GreaterOrEqual(t, entries[i-1].Timestamp, entries[i].Timestamp)
	}

	day, err := svc.List(EntryFilter{Date: "2024-05-02"})
	require.NoError(t, err)
	assert.Len(t, day, 2)

	behavior, err := svc.List(EntryFilter{Categories: []catalog.Category{catalog.CategoryBehavior}})
	require.NoError(t, err)
	require.Len(t, behavior, 1)
	assert.Equal(t, "眨眼, 聳肩", behavior[0].Content)

	assert.Len(t, changes, 3)
	assert.Equal(t, SlotEntries, changes[0].Slot)
}

func TestEntryServiceValidation(t *testing.T) {
	gdb := setupTestDB(t)
	svc := NewEntryService(gdb, nil, taipei)

	_, err := svc.Add(EntryInput{Category: "行為", Content: "   "})
	assert.ErrorIs(t, err, ErrEntryContentEmpty)

	_, err = svc.Add(EntryInput{Category: "睡覺", Content: "x"})
	assert.ErrorIs(t, err, ErrInvalidCategory)

	_, err = svc.List(EntryFilter{Date: "05/02/2024"})
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestEntryServiceUpdateAndDelete(t *testing.T) {
	gdb := setupTestDB(t)
	svc := NewEntryService(gdb, NewBroker(), taipei)

	entry, err := svc.Add(EntryInput{Category: "事件", Content: "上學"})
	require.NoError(t, err)
	assert.NotZero(t, entry.Timestamp)

	ts := time.Date(2024, 1, 1, 8, 0, 0, 0, taipei)
	updated, err := svc.Update(entry.ID, EntryInput{Timestamp: ts, Category: "健康", Content: "運動"})
	require.NoError(t, err)
	assert.Equal(t, ts.UnixMilli(), updated.Timestamp)

	reloaded, err := svc.Get(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "健康", reloaded.Category)
	assert.Equal(t, "運動", reloaded.Content)

	require.NoError(t, svc.Delete(entry.ID))
	if err := svc.Delete(entry.ID); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
	_, err = svc.Update(entry.ID, EntryInput{Category: "健康", Content: "運動"})
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestEntryServiceUpdateKeepsTimestampWhenOmitted(t *testing.T) {
	gdb := setupTestDB(t)
	svc := NewEntryService(gdb, nil, taipei)
	svc.now = func() time.Time { return time.Date(2026, 10, 19, 11, 30, 0, 0, taipei) }

	original := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	entry, err := svc.Add(EntryInput{Timestamp: original, Category: "行為", Content: "眨眼"})
	require.NoError(t, err)

	updated, err := svc.Update(entry.ID, EntryInput{Category: "行為", Content: "眨眼, 聳肩"})
	require.NoError(t, err)
	assert.Equal(t, original.UnixMilli(), updated.Timestamp)

	reloaded, err := svc.Get(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, original.UnixMilli(), reloaded.Timestamp)
	assert.Equal(t, "眨眼, 聳肩", reloaded.Content)
}
