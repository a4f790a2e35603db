package service

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tictracker/internal/catalog"
	"github.com/tictracker/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BackupEntry 是备份中的一条日志。
type BackupEntry struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"`
	Category  string `json:"category"`
	Content   string `json:"content"`
}

// BackupWeather 是备份中每日资讯的天气部分。
type BackupWeather struct {
	Temp        float64 `json:"temp"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	Code        int     `json:"code"`
}

// BackupDailyInfo 是备份中某一天的地点与天气。
type BackupDailyInfo struct {
	Location string        `json:"location"`
	Weather  BackupWeather `json:"weather"`
}

// BackupHistory 是备份中的一条基本资料历史。
type BackupHistory struct {
	Timestamp int64    `json:"timestamp"`
	Age       *float64 `json:"age,omitempty"`
	Height    *float64 `json:"height,omitempty"`
	Weight    *float64 `json:"weight,omitempty"`
}

// Backup 使用与浏览器 localStorage 相同的键保存五个数据槽。
type Backup struct {
	Entries          []BackupEntry                        `json:"tic-tracker-entries"`
	CustomItems      map[catalog.Category][]catalog.Group `json:"tic-tracker-custom-items"`
	DailyInfo        map[string]BackupDailyInfo           `json:"tic-tracker-daily-info"`
	BasicInfo        BasicInfo                            `json:"tic-tracker-basic-info"`
	BasicInfoHistory []BackupHistory                      `json:"tic-tracker-basic-info-history"`
}

var backupSlotKeys = []string{
	"tic-tracker-entries",
	"tic-tracker-custom-items",
	"tic-tracker-daily-info",
	"tic-tracker-basic-info",
	"tic-tracker-basic-info-history",
}

// ImportStats 汇总一次导入写入的记录数。
type ImportStats struct {
	Entries     int `json:"entries"`
	Groups      int `json:"groups"`
	DailyInfo   int `json:"daily_info"`
	HistoryRows int `json:"history_rows"`
}

// BackupService 负责全部数据的导出与导入。
type BackupService struct {
	db     *gorm.DB
	broker *Broker
	now    func() time.Time
}

// NewBackupService 构造 BackupService
func NewBackupService(gdb *gorm.DB, broker *Broker) *BackupService {
	return &BackupService{db: gdb, broker: broker, now: time.Now}
}

// Export 导出全部数据槽。
func (s *BackupService) Export() (Backup, error) {
	backup := Backup{
		Entries:          []BackupEntry{},
		CustomItems:      make(map[catalog.Category][]catalog.Group),
		DailyInfo:        make(map[string]BackupDailyInfo),
		BasicInfoHistory: []BackupHistory{},
	}

	var entries []db.Entry
	if err := s.db.Order("timestamp DESC").Order("id DESC").Find(&entries).Error; err != nil {
		return Backup{}, fmt.Errorf("export entries: %w", err)
	}
	for _, e := range entries {
		backup.Entries = append(backup.Entries, BackupEntry{ID: e.ID, Timestamp: e.Timestamp, Category: e.Category, Content: e.Content})
	}

	for _, c := range catalog.Categories() {
		backup.CustomItems[c] = []catalog.Group{}
	}
	var groups []db.CustomGroup
	if err := s.db.Order("position ASC").Order("id ASC").Find(&groups).Error; err != nil {
		return Backup{}, fmt.Errorf("export custom items: %w", err)
	}
	for _, g := range groups {
		c := catalog.Category(g.Category)
		backup.CustomItems[c] = append(backup.CustomItems[c], catalog.Group{Name: g.Name, Items: slices.Clone(g.Items)})
	}

	var infos []db.DailyInfo
	if err := s.db.Order("date ASC").Find(&infos).Error; err != nil {
		return Backup{}, fmt.Errorf("export daily info: %w", err)
	}
	for _, info := range infos {
		backup.DailyInfo[info.Date] = BackupDailyInfo{
			Location: info.Location,
			Weather: BackupWeather{
				Temp:        info.Temperature,
				Description: info.WeatherDescription,
				Icon:        info.WeatherIcon,
				Code:        info.WeatherCode,
			},
		}
	}

	var history []db.BasicInfoRecord
	if err := s.db.Order("timestamp ASC").Find(&history).Error; err != nil {
		return Backup{}, fmt.Errorf("export basic info history: %w", err)
	}
	for _, h := range history {
		backup.BasicInfoHistory = append(backup.BasicInfoHistory, BackupHistory{Timestamp: h.Timestamp, Age: h.Age, Height: h.Height, Weight: h.Weight})
	}
	if n := len(history); n > 0 {
		backup.BasicInfo = recordToInfo(history[n-1])
	}

	return backup, nil
}

// WriteJSON 将导出结果写为缩进 JSON。
func (s *BackupService) WriteJSON(w io.Writer) error {
	backup, err := s.Export()
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(backup)
}

// ReadJSON 解析备份 JSON 并导入。
func (s *BackupService) ReadJSON(r io.Reader, replace bool) (ImportStats, error) {
	backup, err := DecodeBackup(r)
	if err != nil {
		return ImportStats{}, err
	}
	return s.Import(backup, replace)
}

// DecodeBackup 解析导出文件或浏览器 localStorage 转储。
// localStorage 的值都是字符串，槽位值为 JSON 字符串时先解出其中的文档。
func DecodeBackup(r io.Reader) (Backup, error) {
	var slots map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&slots); err != nil {
		return Backup{}, fmt.Errorf("decode backup: %w", err)
	}

	for key, raw := range slots {
		if !slices.Contains(backupSlotKeys, key) {
			delete(slots, key)
			continue
		}
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 || trimmed[0] != '"' {
			continue
		}
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err != nil {
			return Backup{}, fmt.Errorf("decode backup slot %s: %w", key, err)
		}
		if strings.TrimSpace(inner) == "" {
			delete(slots, key)
			continue
		}
		if !json.Valid([]byte(inner)) {
			return Backup{}, fmt.Errorf("decode backup slot %s: invalid JSON", key)
		}
		slots[key] = json.RawMessage(inner)
	}

	normalized, err := json.Marshal(slots)
	if err != nil {
		return Backup{}, fmt.Errorf("decode backup: %w", err)
	}
	var backup Backup
	if err := json.Unmarshal(normalized, &backup); err != nil {
		return Backup{}, fmt.Errorf("decode backup: %w", err)
	}
	return backup, nil
}

// Import 在一个事务内恢复数据。replace 为 true 时先清空现有数据，否则按主键合并。
func (s *BackupService) Import(backup Backup, replace bool) (ImportStats, error) {
	var stats ImportStats

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if replace {
			for _, model := range []any{&db.Entry{}, &db.CustomGroup{}, &db.DailyInfo{}, &db.BasicInfoRecord{}} {
				if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(model).Error; err != nil {
					return fmt.Errorf("clear %T: %w", model, err)
				}
			}
		}

		for _, e := range backup.Entries {
			category, ok := catalog.ParseCategory(e.Category)
			content := strings.TrimSpace(e.Content)
			if !ok || content == "" {
				continue
			}
			id := strings.TrimSpace(e.ID)
			if id == "" {
				id = uuid.NewString()
			}
			entry := db.Entry{ID: id, Timestamp: e.Timestamp, Category: string(category), Content: content}
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&entry).Error; err != nil {
				return fmt.Errorf("import entry %s: %w", id, err)
			}
			stats.Entries++
		}

		for _, category := range catalog.Categories() {
			for i, g := range backup.CustomItems[category] {
				name := strings.TrimSpace(g.Name)
				if name == "" {
					continue
				}
				group := db.CustomGroup{Category: string(category), Name: name, Items: dedupe(g.Items), Position: i + 1}
				if err := tx.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "category"}, {Name: "name"}},
					DoUpdates: clause.AssignmentColumns([]string{"items", "position", "updated_at"}),
				}).Create(&group).Error; err != nil {
					return fmt.Errorf("import group %s: %w", name, err)
				}
				stats.Groups++
			}
		}

		for date, info := range backup.DailyInfo {
			if _, err := time.Parse(DateLayout, date); err != nil {
				continue
			}
			display := catalog.WeatherDisplay(info.Weather.Code)
			row := db.DailyInfo{
				Date:               date,
				Location:           info.Location,
				Temperature:        info.Weather.Temp,
				WeatherCode:        info.Weather.Code,
				WeatherIcon:        display.Icon,
				WeatherDescription: display.Description,
				FetchedAt:          s.now(),
			}
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
				return fmt.Errorf("import daily info %s: %w", date, err)
			}
			stats.DailyInfo++
		}

		history := slices.Clone(backup.BasicInfoHistory)
		if len(history) == 0 && backup.BasicInfo.HasData() {
			history = append(history, BackupHistory{
				Timestamp: s.now().UnixMilli(),
				Age:       backup.BasicInfo.Age,
				Height:    backup.BasicInfo.Height,
				Weight:    backup.BasicInfo.Weight,
			})
		}
		slices.SortFunc(history, func(a, b BackupHistory) int { return cmp.Compare(a.Timestamp, b.Timestamp) })
		for _, h := range history {
			record := db.BasicInfoRecord{Timestamp: h.Timestamp, Age: h.Age, Height: h.Height, Weight: h.Weight}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "timestamp"}},
				DoUpdates: clause.AssignmentColumns([]string{"age", "height", "weight"}),
			}).Create(&record).Error; err != nil {
				return fmt.Errorf("import basic info history: %w", err)
			}
			stats.HistoryRows++
		}
		return nil
	})
	if err != nil {
		return ImportStats{}, err
	}

	for _, slot := range []Slot{SlotEntries, SlotCustomItems, SlotDailyInfo, SlotBasicInfo, SlotBasicInfoHistory} {
		s.broker.publish(slot, "import", "")
	}
	return stats, nil
}

func dedupe(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" && !slices.Contains(out, item) {
			out = append(out, item)
		}
	}
	return out
}
