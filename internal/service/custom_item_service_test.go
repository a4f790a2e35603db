package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tictracker/internal/catalog"
	"github.com/tictracker/internal/db"
)

func findGroup(t *testing.T, groups []GroupView, name string) GroupView {
	t.Helper()
	for _, g := range groups {
		if g.Name == name {
			return g
		}
	}
	t.Fatalf("group %q not found in %v", name, groups)
	return GroupView{}
}

func TestCustomItemServiceOverlay(t *testing.T) {
	gdb := setupTestDB(t)
	broker := NewBroker()
	published := 0
	broker.OnChange(func(Change) { published++ })
	svc := NewCustomItemService(gdb, broker)

	require.NoError(t, svc.AddItem(catalog.CategoryDiet, "水果", "奇異果"))
	_, err := svc.AddGroup(catalog.CategoryDiet, "宵夜")
	require.NoError(t, err)
	require.NoError(t, svc.AddItem(catalog.CategoryDiet, "宵夜", "泡麵"))

	groups, err := svc.Groups(catalog.CategoryDiet)
	require.NoError(t, err)
	assert.Equal(t, "主食", groups[0].Name)
	assert.Equal(t, "宵夜", groups[len(groups)-1].Name)
	assert.True(t, groups[len(groups)-1].Custom)

	fruit := findGroup(t, groups, "水果")
	assert.False(t, fruit.Custom)
	last := fruit.Items[len(fruit.Items)-1]
	assert.Equal(t, GroupItem{Name: "奇異果", Custom: true}, last)
	for i := 1; i < len(fruit.Items)-1; i++ {
		assert.LessOrEqual(t, fruit.Items[i-1].Name, fruit.Items[i].Name, "default items should be sorted")
	}

	assert.Equal(t, 3, published)
}

func TestCustomItemServiceRejectsDuplicatesAndReadOnly(t *testing.T) {
	gdb := setupTestDB(t)
	svc := NewCustomItemService(gdb, nil)

	_, err := svc.AddGroup(catalog.CategoryDiet, "水果")
	assert.ErrorIs(t, err, ErrGroupExists)
	_, err = svc.AddGroup(catalog.CategoryDiet, "  ")
	assert.ErrorIs(t, err, ErrGroupNameEmpty)

	_, err = svc.AddGroup(catalog.CategoryEvent, "旅行")
	require.NoError(t, err)
	_, err = svc.AddGroup(catalog.CategoryEvent, "旅行")
	assert.ErrorIs(t, err, ErrGroupExists)

	assert.ErrorIs(t, svc.AddItem(catalog.CategoryDiet, "水果", "蘋果"), ErrItemExists)
	require.NoError(t, svc.AddItem(catalog.CategoryEvent, "旅行", "露營"))
	assert.ErrorIs(t, svc.AddItem(catalog.CategoryEvent, "旅行", "露營"), ErrItemExists)
	assert.ErrorIs(t, svc.AddItem(catalog.CategoryEvent, "不存在", "x"), ErrGroupNotFound)

	assert.ErrorIs(t, svc.DeleteGroup(catalog.CategoryDiet, "水果"), ErrGroupReadOnly)
	assert.ErrorIs(t, svc.RenameGroup(catalog.CategoryDiet, "水果", "水果類"), ErrGroupReadOnly)
	assert.ErrorIs(t, svc.DeleteItem(catalog.CategoryDiet, "水果", "蘋果"), ErrItemReadOnly)
	assert.ErrorIs(t, svc.RenameItem(catalog.CategoryDiet, "水果", "蘋果", "青蘋果"), ErrItemReadOnly)
}

func TestCustomItemServiceRenameAndDelete(t *testing.T) {
	gdb := setupTestDB(t)
	svc := NewCustomItemService(gdb, nil)

	_, err := svc.AddGroup(catalog.CategoryBehavior, "其他")
	require.NoError(t, err)
	require.NoError(t, svc.AddItem(catalog.CategoryBehavior, "其他", "咬指甲"))
	require.NoError(t, svc.RenameItem(catalog.CategoryBehavior, "其他", "咬指甲", "咬嘴唇"))
	require.NoError(t, svc.RenameGroup(catalog.CategoryBehavior, "其他", "習慣"))

	groups, err := svc.Groups(catalog.CategoryBehavior)
	require.NoError(t, err)
	habits := findGroup(t, groups, "習慣")
	require.Len(t, habits.Items, 1)
	assert.Equal(t, "咬嘴唇", habits.Items[0].Name)

	require.NoError(t, svc.DeleteItem(catalog.CategoryBehavior, "習慣", "咬嘴唇"))
	assert.ErrorIs(t, svc.DeleteItem(catalog.CategoryBehavior, "習慣", "咬嘴唇"), ErrItemNotFound)

	require.NoError(t, svc.DeleteGroup(catalog.CategoryBehavior, "習慣"))
	groups, err = svc.Groups(catalog.CategoryBehavior)
	require.NoError(t, err)
	assert.Len(t, groups, len(catalog.DefaultGroups(catalog.CategoryBehavior)))

	_, err = svc.AddGroup(catalog.CategoryBehavior, "習慣")
	assert.NoError(t, err, "deleted group names must be reusable")
}

func TestCustomItemServiceCreateMapsUniqueConflict(t *testing.T) {
	gdb := setupTestDB(t)
	svc := NewCustomItemService(gdb, nil)

	_, err := svc.AddGroup(catalog.CategoryEvent, "旅行")
	require.NoError(t, err)

	// 另一个请求在存在性检查之后抢先写入同名分组
	dup := db.CustomGroup{Category: string(catalog.CategoryEvent), Name: "旅行", Items: []string{}}
	err = svc.create(gdb, &dup)
	assert.ErrorIs(t, err, ErrGroupExists)

	groups, err := svc.Groups(catalog.CategoryEvent)
	require.NoError(t, err)
	count := 0
	for _, g := range groups {
		if g.Name == "旅行" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
