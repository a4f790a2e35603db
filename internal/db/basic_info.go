package db

// BasicInfoRecord 是一次年龄/身高/体重快照；最新一条即当前基本资料。
type BasicInfoRecord struct {
	ID        uint  `gorm:"primaryKey"`
	Timestamp int64 `gorm:"uniqueIndex;not null"`
	Age       *float64
	Height    *float64
	Weight    *float64
}

// HasData reports whether any of the measurements is present.
func (r BasicInfoRecord) HasData() bool {
	return r.Age != nil || r.Height != nil || r.Weight != nil
}
