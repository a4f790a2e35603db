package service

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/tictracker/internal/catalog"
	"github.com/tictracker/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrGroupNameEmpty 在分组名称为空时返回
	ErrGroupNameEmpty = errors.New("group name is empty")
	// ErrGroupExists 在分组名称重复时返回
	ErrGroupExists = errors.New("group already exists")
	// ErrGroupNotFound 在分组不存在时返回
	ErrGroupNotFound = errors.New("group not found")
	// ErrGroupReadOnly 在尝试修改内置分组时返回
	ErrGroupReadOnly = errors.New("built-in group cannot be modified")
	// ErrItemNameEmpty 在项目名称为空时返回
	ErrItemNameEmpty = errors.New("item name is empty")
	// ErrItemExists 在同组项目重复时返回
	ErrItemExists = errors.New("item already exists")
	// ErrItemNotFound 在项目不存在时返回
	ErrItemNotFound = errors.New("item not found")
	// ErrItemReadOnly 在尝试修改内置项目时返回
	ErrItemReadOnly = errors.New("built-in item cannot be modified")
)

// GroupItem 是合并后分组中的一个项目。
type GroupItem struct {
	Name   string `json:"name"`
	Custom bool   `json:"custom"`
}

// GroupView 是内置分组与自定义分组合并后的展示结构。
type GroupView struct {
	Name   string      `json:"name"`
	Custom bool        `json:"custom"`
	Items  []GroupItem `json:"items"`
}

// CustomItemService 管理子分类的自定义覆盖层。
// 与内置分组同名的自定义记录只保存追加项目；其余记录为完全自定义的分组。
type CustomItemService struct {
	db     *gorm.DB
	broker *Broker
}

// NewCustomItemService 构造 CustomItemService
func NewCustomItemService(gdb *gorm.DB, broker *Broker) *CustomItemService {
	return &CustomItemService{db: gdb, broker: broker}
}

// Groups 返回分类下合并后的分组：内置分组在前（项目排序），自定义分组按创建顺序在后。
func (s *CustomItemService) Groups(category catalog.Category) ([]GroupView, error) {
	if !catalog.ValidCategory(string(category)) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}

	overlay, err := s.overlay(category)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]db.CustomGroup, len(overlay))
	for _, g := range overlay {
		byName[g.Name] = g
	}

	defaults := catalog.DefaultGroups(category)
	views := make([]GroupView, 0, len(defaults)+len(overlay))
	for _, g := range defaults {
		items := slices.Clone(g.Items)
		slices.Sort(items)
		view := GroupView{Name: g.Name, Items: make([]GroupItem, 0, len(items))}
		for _, item := range items {
			view.Items = append(view.Items, GroupItem{Name: item})
		}
		if extra, ok := byName[g.Name]; ok {
			for _, item := range extra.Items {
				view.Items = append(view.Items, GroupItem{Name: item, Custom: true})
			}
		}
		views = append(views, view)
	}

	for _, g := range overlay {
		if catalog.IsDefaultGroup(category, g.Name) {
			continue
		}
		view := GroupView{Name: g.Name, Custom: true, Items: make([]GroupItem, 0, len(g.Items))}
		for _, item := range g.Items {
			view.Items = append(view.Items, GroupItem{Name: item, Custom: true})
		}
		views = append(views, view)
	}
	return views, nil
}

// AllCustom 返回全部自定义记录，用于备份。
func (s *CustomItemService) AllCustom() ([]db.CustomGroup, error) {
	var groups []db.CustomGroup
	if err := s.db.Order("category ASC").Order("position ASC").Order("id ASC").Find(&groups).Error; err != nil {
		return nil, fmt.Errorf("list custom groups: %w", err)
	}
	return groups, nil
}

// AddGroup 新增完全自定义的分组。
func (s *CustomItemService) AddGroup(category catalog.Category, name string) (*db.CustomGroup, error) {
	if !catalog.ValidCategory(string(category)) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrGroupNameEmpty
	}
	if catalog.IsDefaultGroup(category, name) {
		return nil, ErrGroupExists
	}

	group := db.CustomGroup{Category: string(category), Name: name, Items: []string{}}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.find(tx, category, name); err == nil {
			return ErrGroupExists
		} else if !errors.Is(err, ErrGroupNotFound) {
			return err
		}
		return s.create(tx, &group)
	})
	if err != nil {
		return nil, wrapGroupErr("add group", err)
	}

	s.broker.publish(SlotCustomItems, "add-group", name)
	return &group, nil
}

// RenameGroup 重命名自定义分组；内置分组只读。
func (s *CustomItemService) RenameGroup(category catalog.Category, oldName, newName string) error {
	oldName = strings.TrimSpace(oldName)
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return ErrGroupNameEmpty
	}
	if catalog.IsDefaultGroup(category, oldName) {
		return ErrGroupReadOnly
	}
	if oldName == newName {
		return nil
	}
	if catalog.IsDefaultGroup(category, newName) {
		return ErrGroupExists
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		group, err := s.find(tx, category, oldName)
		if err != nil {
			return err
		}
		if _, err := s.find(tx, category, newName); err == nil {
			return ErrGroupExists
		} else if !errors.Is(err, ErrGroupNotFound) {
			return err
		}
		return tx.Model(group).Update("name", newName).Error
	})
	if err != nil {
		return wrapGroupErr("rename group", err)
	}

	s.broker.publish(SlotCustomItems, "rename-group", newName)
	return nil
}

// DeleteGroup 删除自定义分组及其全部项目。
func (s *CustomItemService) DeleteGroup(category catalog.Category, name string) error {
	name = strings.TrimSpace(name)
	if catalog.IsDefaultGroup(category, name) {
		return ErrGroupReadOnly
	}

	group, err := s.find(s.db, category, name)
	if err != nil {
		return err
	}
	if err := s.db.Unscoped().Delete(group).Error; err != nil {
		return fmt.Errorf("delete group: %w", err)
	}

	s.broker.publish(SlotCustomItems, "delete-group", name)
	return nil
}

// AddItem 向分组追加项目；内置分组首次追加时会创建覆盖记录。
func (s *CustomItemService) AddItem(category catalog.Category, groupName, item string) error {
	groupName = strings.TrimSpace(groupName)
	item = strings.TrimSpace(item)
	if item == "" {
		return ErrItemNameEmpty
	}
	if !catalog.ValidCategory(string(category)) {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
	if category == catalog.CategoryHealth && groupName == catalog.GroupSleep {
		return ErrGroupReadOnly
	}

	defaultGroup, isDefault := catalog.DefaultGroup(category, groupName)
	if isDefault && slices.Contains(defaultGroup.Items, item) {
		return ErrItemExists
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		group, err := s.find(tx, category, groupName)
		switch {
		case errors.Is(err, ErrGroupNotFound) && isDefault:
			overlay := db.CustomGroup{Category: string(category), Name: groupName, Items: []string{item}}
			return s.create(tx, &overlay)
		case err != nil:
			return err
		}

		if slices.Contains(group.Items, item) {
			return ErrItemExists
		}
		group.Items = append(group.Items, item)
		return tx.Model(group).Select("items").Updates(group).Error
	})
	if err != nil {
		return wrapGroupErr("add item", err)
	}

	s.broker.publish(SlotCustomItems, "add-item", item)
	return nil
}

// RenameItem 重命名自定义项目
func (s *CustomItemService) RenameItem(category catalog.Category, groupName, oldItem, newItem string) error {
	oldItem = strings.TrimSpace(oldItem)
	newItem = strings.TrimSpace(newItem)
	if newItem == "" {
		return ErrItemNameEmpty
	}
	if defaultGroup, ok := catalog.DefaultGroup(category, groupName); ok {
		if slices.Contains(defaultGroup.Items, oldItem) {
			return ErrItemReadOnly
		}
		if slices.Contains(defaultGroup.Items, newItem) {
			return ErrItemExists
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		group, err := s.find(tx, category, strings.TrimSpace(groupName))
		if err != nil {
			return err
		}
		idx := slices.Index(group.Items, oldItem)
		if idx < 0 {
			return ErrItemNotFound
		}
		if oldItem != newItem && slices.Contains(group.Items, newItem) {
			return ErrItemExists
		}
		group.Items[idx] = newItem
		return tx.Model(group).Select("items").Updates(group).Error
	})
	if err != nil {
		return wrapGroupErr("rename item", err)
	}

	s.broker.publish(SlotCustomItems, "rename-item", newItem)
	return nil
}

// DeleteItem 删除自定义项目
func (s *CustomItemService) DeleteItem(category catalog.Category, groupName, item string) error {
	item = strings.TrimSpace(item)
	if defaultGroup, ok := catalog.DefaultGroup(category, groupName); ok && slices.Contains(defaultGroup.Items, item) {
		return ErrItemReadOnly
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		group, err := s.find(tx, category, strings.TrimSpace(groupName))
		if err != nil {
			return err
		}
		idx := slices.Index(group.Items, item)
		if idx < 0 {
			return ErrItemNotFound
		}
		group.Items = slices.Delete(group.Items, idx, idx+1)
		return tx.Model(group).Select("items").Updates(group).Error
	})
	if err != nil {
		return wrapGroupErr("delete item", err)
	}

	s.broker.publish(SlotCustomItems, "delete-item", item)
	return nil
}

func (s *CustomItemService) overlay(category catalog.Category) ([]db.CustomGroup, error) {
	var groups []db.CustomGroup
	if err := s.db.Where("category = ?", string(category)).Order("position ASC").Order("id ASC").Find(&groups).Error; err != nil {
		return nil, fmt.Errorf("list custom groups: %w", err)
	}
	return groups, nil
}

func (s *CustomItemService) find(tx *gorm.DB, category catalog.Category, name string) (*db.CustomGroup, error) {
	var group db.CustomGroup
	if err := tx.Where("category = ? AND name = ?", string(category), name).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("find group: %w", err)
	}
	return &group, nil
}

func (s *CustomItemService) create(tx *gorm.DB, group *db.CustomGroup) error {
	var maxPosition int
	if err := tx.Model(&db.CustomGroup{}).
		Where("category = ?", group.Category).
		Select("COALESCE(MAX(position), 0)").
		Scan(&maxPosition).Error; err != nil {
		return fmt.Errorf("load group position: %w", err)
	}
	group.Position = maxPosition + 1
	// 并发写入同名分组时由唯一索引兜底
	result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(group)
	if result.Error != nil {
		return fmt.Errorf("create group: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrGroupExists
	}
	return nil
}

func wrapGroupErr(op string, err error) error {
	for _, sentinel := range []error{ErrGroupNotFound, ErrGroupExists, ErrItemExists, ErrItemNotFound} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
