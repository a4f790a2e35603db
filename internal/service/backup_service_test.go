package service

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tictracker/internal/catalog"
)

const browserDump = `{
  "tic-tracker-entries": [
    {"id": "1714550400000-0.42", "timestamp": 1714550400000, "category": "行為", "content": "眨眼, 聳肩"},
    {"id": "1714636800000-0.17", "timestamp": 1714636800000, "category": "飲食", "content": "早餐: 白飯"},
    {"id": "bad", "timestamp": 1714636800000, "category": "未知", "content": "x"}
  ],
  "tic-tracker-custom-items": {"飲食": [{"name": "宵夜", "items": ["泡麵", "泡麵"]}], "行為": []},
  "tic-tracker-daily-info": {"2024-05-02": {"location": "台北市", "weather": {"temp": 26.1, "description": "多雲", "icon": "⛅️", "code": 2}}},
  "tic-tracker-basic-info": {"age": 8, "height": 121, "weight": 24},
  "tic-tracker-basic-info-history": [
    {"timestamp": 1714636800000, "age": 8, "height": 121, "weight": 24},
    {"timestamp": 1704067200000, "age": 7, "height": 118}
  ]
}`

func TestBackupImportBrowserDump(t *testing.T) {
	gdb := setupTestDB(t)
	broker := NewBroker()
	changes := 0
	broker.OnChange(func(Change) { changes++ })
	backup := NewBackupService(gdb, broker)

	stats, err := backup.ReadJSON(strings.NewReader(browserDump), false)
	require.NoError(t, err)
	assert.Equal(t, ImportStats{Entries: 2, Groups: 1, DailyInfo: 1, HistoryRows: 2}, stats)
	assert.Equal(t, 5, changes)

	entries := NewEntryService(gdb, nil, taipei)
	list, err := entries.List(EntryFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "1714636800000-0.17", list[0].ID)

	groups, err := NewCustomItemService(gdb, nil).Groups(catalog.CategoryDiet)
	require.NoError(t, err)
	late := findGroup(t, groups, "宵夜")
	assert.Len(t, late.Items, 1)

	basic := NewBasicInfoService(gdb, nil)
	current, err := basic.Current()
	require.NoError(t, err)
	assert.Equal(t, 121.0, *current.Height)
}

func TestBackupExportRoundTripWithReplace(t *testing.T) {
	gdb := setupTestDB(t)
	backup := NewBackupService(gdb, nil)
	_, err := backup.ReadJSON(strings.NewReader(browserDump), false)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, backup.WriteJSON(&buf))
	assert.Contains(t, buf.String(), `"tic-tracker-entries"`)
	assert.Contains(t, buf.String(), `"tic-tracker-basic-info-history"`)

	entries := NewEntryService(gdb, nil, taipei)
	_, err = entries.Add(EntryInput{Timestamp: time.Now(), Category: "事件", Content: "上學"})
	require.NoError(t, err)

	stats, err := backup.ReadJSON(&buf, true)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Entries)

	total, err := entries.Count()
	require.NoError(t, err)
	assert.EqualValues(t, 2, total, "replace import drops rows not present in the backup")

	exported, err := backup.Export()
	require.NoError(t, err)
	assert.Equal(t, "台北市", exported.DailyInfo["2024-05-02"].Location)
	require.Len(t, exported.BasicInfoHistory, 2)
	assert.Less(t, exported.BasicInfoHistory[0].Timestamp, exported.BasicInfoHistory[1].Timestamp)
	assert.Equal(t, 121.0, *exported.BasicInfo.Height)
}

func TestBackupImportStringEncodedLocalStorage(t *testing.T) {
	gdb := setupTestDB(t)
	backup := NewBackupService(gdb, nil)

	// JSON.stringify(localStorage) 的结果：每个槽位都是字符串
	dump := map[string]string{
		"tic-tracker-entries":            `[{"id":"1714550400000-0.42","timestamp":1714550400000,"category":"行為","content":"眨眼, 聳肩"}]`,
		"tic-tracker-custom-items":       `{"飲食":[{"name":"宵夜","items":["泡麵"]}]}`,
		"tic-tracker-daily-info":         `{"2024-05-02":{"location":"台北市","weather":{"temp":26.1,"description":"多雲","icon":"⛅️","code":2}}}`,
		"tic-tracker-basic-info":         `{"age":8,"height":121,"weight":24}`,
		"tic-tracker-basic-info-history": `[{"timestamp":1714636800000,"age":8,"height":121,"weight":24}]`,
		"unrelated-key":                  "hello",
	}
	raw, err := json.Marshal(dump)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"tic-tracker-entries":"[`)

	stats, err := backup.ReadJSON(bytes.NewReader(raw), false)
	require.NoError(t, err)
	assert.Equal(t, ImportStats{Entries: 1, Groups: 1, DailyInfo: 1, HistoryRows: 1}, stats)

	list, err := NewEntryService(gdb, nil, taipei).List(EntryFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "眨眼, 聳肩", list[0].Content)
}

func TestDecodeBackupRejectsBrokenStringSlot(t *testing.T) {
	_, err := DecodeBackup(strings.NewReader(`{"tic-tracker-entries":"[{\"id\":"}`))
	assert.Error(t, err)
}
