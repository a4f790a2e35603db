package catalog

import "slices"

// Group 是分类下的一组可选项目。
type Group struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

const (
	// GroupSleep 是健康分类中按就寝/起床时间录入的特殊分组。
	GroupSleep = "睡眠"
)

// MealTypes 为飲食条目可选的餐别前缀。
var MealTypes = []string{"早餐", "中餐", "晚餐", "點心"}

var defaultGroups = map[Category][]Group{
	CategoryDiet: {
		{Name: "主食", Items: []string{"白飯", "麵條", "麵包", "燕麥", "地瓜", "水餃"}},
		{Name: "蔬菜", Items: []string{"菠菜", "高麗菜", "青江菜", "花椰菜", "胡蘿蔔", "番茄"}},
		{Name: "肉類/蛋白質", Items: []string{"雞肉", "豬肉", "牛肉", "魚肉", "蛋", "豆製品"}},
		{Name: "水果", Items: []string{"蘋果", "香蕉", "橘子", "芭樂", "西瓜", "葡萄"}},
		{Name: "飲品", Items: []string{"牛奶", "豆漿", "含糖飲料", "咖啡因飲品", "果汁"}},
		{Name: "零食/加工品", Items: []string{"餅乾", "糖果", "巧克力", "炸物", "冰淇淋"}},
		{Name: "常見過敏原", Items: []string{}},
	},
	CategoryHealth: {
		{Name: GroupSleep, Items: []string{}},
		{Name: "螢幕時間", Items: []string{}},
		{Name: "運動", Items: []string{"跑步", "游泳", "騎自行車", "散步", "打球"}},
		{Name: "身體狀況", Items: []string{"精神好", "疲倦", "頭痛", "肚子痛", "便秘", "過敏", "感冒", "發燒"}},
	},
	CategoryMedication: {
		{Name: "常規藥物", Items: []string{"利妥能", "安立復"}},
		{Name: "保健補劑", Items: []string{"綜合維他命", "維他命B群", "魚油", "鎂"}},
		{Name: "臨時藥物", Items: []string{"止痛藥", "過敏藥", "鎮定劑"}},
	},
	CategoryEvent: {
		{Name: "學校/學習", Items: []string{"上學", "放學", "寫功課", "考試", "被稱讚", "被責備"}},
		{Name: "家庭/日常", Items: []string{"看電視", "玩電玩", "戶外活動", "親子互動", "手足衝突"}},
		{Name: "特殊場合", Items: []string{"看醫生", "家庭聚餐", "生日派對", "親友來訪", "長途旅行"}},
		{Name: "環境", Items: []string{"天氣變化", "吵雜環境", "人多擁擠"}},
	},
	CategoryBehavior: {
		{Name: "動作抽動", Items: []string{"眨眼", "聳肩", "甩頭", "噘嘴", "做鬼臉", "肚子用力"}},
		{Name: "聲音抽動", Items: []string{"清喉嚨", "咳嗽", "吸鼻子", "尖叫", "嗯嗯聲", "學動物叫"}},
		{Name: "複雜抽動", Items: []string{"模仿他人", "重複字句", "觸摸東西", "寫字重描"}},
	},
	CategoryMood: {
		{Name: "今日心情", Items: []string{"開心 😊", "平靜 🙂", "難過 😢", "生氣 😠", "焦慮 😟", "興奮/亢奮 😄", "疲倦 😴", "無聊 😑"}},
	},
}

// DefaultGroups 返回分类的内置分组副本，调用方可自由修改。
func DefaultGroups(category Category) []Group {
	groups := defaultGroups[category]
	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		out = append(out, Group{Name: g.Name, Items: slices.Clone(g.Items)})
	}
	return out
}

// DefaultGroup 查找指定名称的内置分组。
func DefaultGroup(category Category, name string) (Group, bool) {
	for _, g := range defaultGroups[category] {
		if g.Name == name {
			return Group{Name: g.Name, Items: slices.Clone(g.Items)}, true
		}
	}
	return Group{}, false
}

// IsDefaultGroup reports whether name is a built-in group of category.
func IsDefaultGroup(category Category, name string) bool {
	_, ok := DefaultGroup(category, name)
	return ok
}

// IsMealType 判断是否为合法餐别。
func IsMealType(value string) bool {
	return slices.Contains(MealTypes, value)
}
