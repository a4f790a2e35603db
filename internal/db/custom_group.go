package db

import "gorm.io/gorm"

// CustomGroup 保存用户自定义的子分类及其项目。
// 与内置分组同名时视为对内置分组的追加项目。
type CustomGroup struct {
	gorm.Model
	Category string   `gorm:"size:16;not null;uniqueIndex:idx_custom_group_name"`
	Name     string   `gorm:"size:100;not null;uniqueIndex:idx_custom_group_name"`
	Items    []string `gorm:"serializer:json"`
	Position int
}
