package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/tictracker/internal/catalog"
	"github.com/tictracker/internal/db"
	"gorm.io/gorm"
)

// ErrHistoryNotFound 在基本资料历史记录不存在时返回
var ErrHistoryNotFound = errors.New("basic info history entry not found")

// BasicInfo 是年龄/身高/体重，缺失的字段为 nil。
type BasicInfo struct {
	Age    *float64 `json:"age"`
	Height *float64 `json:"height"`
	Weight *float64 `json:"weight"`
}

// HasData reports whether any field is set.
func (b BasicInfo) HasData() bool {
	return b.Age != nil || b.Height != nil || b.Weight != nil
}

// BasicInfoSummary 是统计页展示的当前资料与 BMI。
type BasicInfoSummary struct {
	BasicInfo
	BMI       float64         `json:"bmi"`
	BMIBand   catalog.BMIBand `json:"bmi_band"`
	UpdatedAt int64           `json:"updated_at,omitempty"`
}

// BasicInfoService 维护基本资料历史；最新一条历史即为当前资料。
type BasicInfoService struct {
	db     *gorm.DB
	broker *Broker
	now    func() time.Time
}

// NewBasicInfoService 构造 BasicInfoService
func NewBasicInfoService(gdb *gorm.DB, broker *Broker) *BasicInfoService {
	return &BasicInfoService{db: gdb, broker: broker, now: time.Now}
}

// Current 返回最新的基本资料，没有历史时返回零值。
func (s *BasicInfoService) Current() (BasicInfo, error) {
	latest, err := s.latest(s.db)
	if err != nil || latest == nil {
		return BasicInfo{}, err
	}
	return recordToInfo(*latest), nil
}

// History 按时间升序返回全部历史
func (s *BasicInfoService) History() ([]db.BasicInfoRecord, error) {
	var records []db.BasicInfoRecord
	if err := s.db.Order("timestamp ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list basic info history: %w", err)
	}
	return records, nil
}

// Update 更新基本资料。adding 为 false 时以传入字段覆盖当前资料；
// 新增模式或数值有变化且至少有一个字段时追加一条历史。
func (s *BasicInfoService) Update(info BasicInfo, adding bool) (BasicInfo, error) {
	var result BasicInfo
	appended := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		latest, err := s.latest(tx)
		if err != nil {
			return err
		}

		next := info
		if !adding && latest != nil {
			next = mergeBasicInfo(recordToInfo(*latest), info)
		}
		result = next

		changed := latest == nil || !sameBasicInfo(recordToInfo(*latest), next)
		if !(adding || changed) || !next.HasData() {
			return nil
		}

		ts := s.now().UnixMilli()
		if latest != nil && ts <= latest.Timestamp {
			ts = latest.Timestamp + 1
		}
		record := db.BasicInfoRecord{Timestamp: ts, Age: next.Age, Height: next.Height, Weight: next.Weight}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("append basic info history: %w", err)
		}
		appended = true
		return nil
	})
	if err != nil {
		return BasicInfo{}, err
	}

	s.broker.publish(SlotBasicInfo, "update", "")
	if appended {
		s.broker.publish(SlotBasicInfoHistory, "append", "")
	}
	return result, nil
}

// UpdateHistory 以补丁方式修改某条历史记录
func (s *BasicInfoService) UpdateHistory(timestamp int64, patch BasicInfo) (*db.BasicInfoRecord, error) {
	var record db.BasicInfoRecord
	if err := s.db.Where("timestamp = ?", timestamp).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHistoryNotFound
		}
		return nil, fmt.Errorf("get basic info history: %w", err)
	}

	merged := mergeBasicInfo(recordToInfo(record), patch)
	record.Age, record.Height, record.Weight = merged.Age, merged.Height, merged.Weight
	if err := s.db.Model(&record).Select("age", "height", "weight").Updates(&record).Error; err != nil {
		return nil, fmt.Errorf("update basic info history: %w", err)
	}

	s.broker.publish(SlotBasicInfoHistory, "update", fmt.Sprint(timestamp))
	return &record, nil
}

// DeleteHistory 删除某条历史记录，当前资料随之回落到上一条。
func (s *BasicInfoService) DeleteHistory(timestamp int64) error {
	result := s.db.Where("timestamp = ?", timestamp).Delete(&db.BasicInfoRecord{})
	if result.Error != nil {
		return fmt.Errorf("delete basic info history: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrHistoryNotFound
	}

	s.broker.publish(SlotBasicInfoHistory, "delete", fmt.Sprint(timestamp))
	return nil
}

// Summary 返回当前资料及 BMI 分级
func (s *BasicInfoService) Summary() (BasicInfoSummary, error) {
	latest, err := s.latest(s.db)
	if err != nil {
		return BasicInfoSummary{}, err
	}
	if latest == nil {
		return BasicInfoSummary{BMIBand: catalog.BMICategory(0)}, nil
	}

	info := recordToInfo(*latest)
	bmi := catalog.BMI(deref(info.Height), deref(info.Weight))
	return BasicInfoSummary{
		BasicInfo: info,
		BMI:       bmi,
		BMIBand:   catalog.BMICategory(bmi),
		UpdatedAt: latest.Timestamp,
	}, nil
}

func (s *BasicInfoService) latest(tx *gorm.DB) (*db.BasicInfoRecord, error) {
	var record db.BasicInfoRecord
	err := tx.Order("timestamp DESC").Limit(1).Find(&record).Error
	if err != nil {
		return nil, fmt.Errorf("load latest basic info: %w", err)
	}
	if record.ID == 0 {
		return nil, nil
	}
	return &record, nil
}

func recordToInfo(r db.BasicInfoRecord) BasicInfo {
	return BasicInfo{Age: r.Age, Height: r.Height, Weight: r.Weight}
}

func mergeBasicInfo(base, patch BasicInfo) BasicInfo {
	if patch.Age != nil {
		base.Age = patch.Age
	}
	if patch.Height != nil {
		base.Height = patch.Height
	}
	if patch.Weight != nil {
		base.Weight = patch.Weight
	}
	return base
}

func sameBasicInfo(a, b BasicInfo) bool {
	return equalPtr(a.Age, b.Age) && equalPtr(a.Height, b.Height) && equalPtr(a.Weight, b.Weight)
}

func equalPtr(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
