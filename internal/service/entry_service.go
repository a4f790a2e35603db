package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tictracker/internal/catalog"
	"github.com/tictracker/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrEntryNotFound 在指定条目不存在时返回
	ErrEntryNotFound = errors.New("entry not found")
	// ErrEntryContentEmpty 在条目内容为空时返回
	ErrEntryContentEmpty = errors.New("entry content is empty")
	// ErrInvalidCategory 在分类不属于固定枚举时返回
	ErrInvalidCategory = errors.New("invalid category")
	// ErrInvalidDate 在日期不是 YYYY-MM-DD 时返回
	ErrInvalidDate = errors.New("invalid date")
)

// DateLayout 是按天分组时使用的日期格式。
const DateLayout = "2006-01-02"

// EntryService 负责日志条目的增删改查，每次变更都会通知 Broker。
type EntryService struct {
	db     *gorm.DB
	broker *Broker
	loc    *time.Location
	now    func() time.Time
}

// EntryInput 定义创建/更新条目时可配置字段
type EntryInput struct {
	Timestamp time.Time
	Category  string
	Content   string
}

// EntryFilter 描述列表过滤条件
type EntryFilter struct {
	Categories []catalog.Category
	// Date 为 YYYY-MM-DD，按配置时区取当天
	Date  string
	Start time.Time
	End   time.Time
	Limit int
}

// NewEntryService 构造 EntryService，loc 为 nil 时使用本地时区。
func NewEntryService(gdb *gorm.DB, broker *Broker, loc *time.Location) *EntryService {
	if loc == nil {
		loc = time.Local
	}
	return &EntryService{db: gdb, broker: broker, loc: loc, now: time.Now}
}

// Location 返回按天分组所用的时区。
func (s *EntryService) Location() *time.Location {
	return s.loc
}

// Add 新增条目，时间戳为零值时使用当前时间。
func (s *EntryService) Add(input EntryInput) (*db.Entry, error) {
	entry := db.Entry{ID: uuid.NewString()}
	if err := s.apply(&entry, input); err != nil {
		return nil, err
	}

	if err := s.db.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("create entry: %w", err)
	}

	s.broker.publish(SlotEntries, "add", entry.ID)
	return &entry, nil
}

// Update 以整条替换的方式更新条目，未提供时间戳时保留原时间。
func (s *EntryService) Update(id string, input EntryInput) (*db.Entry, error) {
	entry, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if err := s.apply(entry, input); err != nil {
		return nil, err
	}

	if err := s.db.Model(entry).Select("timestamp", "category", "content", "updated_at").Updates(entry).Error; err != nil {
		return nil, fmt.Errorf("update entry: %w", err)
	}

	s.broker.publish(SlotEntries, "update", entry.ID)
	return entry, nil
}

// Delete 删除条目
func (s *EntryService) Delete(id string) error {
	result := s.db.Where("id = ?", strings.TrimSpace(id)).Delete(&db.Entry{})
	if result.Error != nil {
		return fmt.Errorf("delete entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrEntryNotFound
	}

	s.broker.publish(SlotEntries, "delete", id)
	return nil
}

// Get 根据 ID 获取条目
func (s *EntryService) Get(id string) (*db.Entry, error) {
	var entry db.Entry
	if err := s.db.First(&entry, "id = ?", strings.TrimSpace(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return &entry, nil
}

// List 返回按时间倒序排列的条目
func (s *EntryService) List(filter EntryFilter) ([]db.Entry, error) {
	query := s.db.Model(&db.Entry{})

	if len(filter.Categories) > 0 {
		query = query.Where("category IN ?", categoryStrings(filter.Categories))
	}

	start, end := filter.Start, filter.End
	if date := strings.TrimSpace(filter.Date); date != "" {
		day, err := time.ParseInLocation(DateLayout, date, s.loc)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDate, date)
		}
		start, end = day, day.AddDate(0, 0, 1).Add(-time.Millisecond)
	}
	if !start.IsZero() {
		query = query.Where("timestamp >= ?", start.UnixMilli())
	}
	if !end.IsZero() {
		query = query.Where("timestamp <= ?", end.UnixMilli())
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var entries []db.Entry
	if err := query.Order("timestamp DESC").Order("id DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

// Between 返回 [start, end] 内的条目，可按分类过滤。
func (s *EntryService) Between(start, end time.Time, categories ...catalog.Category) ([]db.Entry, error) {
	return s.List(EntryFilter{Categories: categories, Start: start, End: end})
}

// Count 返回条目总数。
func (s *EntryService) Count() (int64, error) {
	var total int64
	if err := s.db.Model(&db.Entry{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return total, nil
}

// DateKey 返回时间在配置时区下的 YYYY-MM-DD。
func (s *EntryService) DateKey(t time.Time) string {
	return t.In(s.loc).Format(DateLayout)
}

func (s *EntryService) apply(entry *db.Entry, input EntryInput) error {
	category, ok := catalog.ParseCategory(input.Category)
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, input.Category)
	}

	content := strings.TrimSpace(input.Content)
	if content == "" {
		return ErrEntryContentEmpty
	}

	// 更新时未提供时间则保留原时间
	switch {
	case !input.Timestamp.IsZero():
		entry.Timestamp = input.Timestamp.UnixMilli()
	case entry.Timestamp == 0:
		entry.Timestamp = s.now().UnixMilli()
	}
	entry.Category = string(category)
	entry.Content = content
	return nil
}

func categoryStrings(categories []catalog.Category) []string {
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		out = append(out, string(c))
	}
	return out
}
