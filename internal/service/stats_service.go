package service

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/tictracker/internal/catalog"
	"github.com/tictracker/internal/db"
)

// ChartType 是统计页支持的图表类型。
type ChartType string

const (
	ChartStacked ChartType = "stacked"
	ChartBar     ChartType = "bar"
	ChartPie     ChartType = "pie"
	ChartCombo   ChartType = "combo"
	ChartGrowth  ChartType = "growth"
)

var (
	// ErrChartUnsupported 在分类不支持所选图表时返回（情緒不提供 combo）
	ErrChartUnsupported = errors.New("chart type not supported for category")
	// ErrInvalidChartType 在图表类型未知时返回
	ErrInvalidChartType = errors.New("invalid chart type")
	// ErrInvalidPeriod 在统计区间不是 7/30/90 天时返回
	ErrInvalidPeriod = errors.New("invalid period")
	// ErrNoCategory 在图表需要分类但未选择时返回
	ErrNoCategory = errors.New("at least one category is required")
)

// Periods 是可选的统计天数。
var Periods = []int{7, 30, 90}

const (
	emptyPeriodMessage  = "此期間沒有資料可供分析。"
	emptyDisplayMessage = "此期間沒有資料可供顯示。"
	emptyGrowthMessage  = "沒有足夠的歷史資料可繪製趨勢圖 (至少需要 2 筆記錄)。"
)

// ChartRequest 描述一次图表查询。
type ChartRequest struct {
	Type       ChartType
	Categories []catalog.Category
	Period     int
	Now        time.Time
}

// DayRow 是按天聚合的一行数据。
type DayRow struct {
	Date        string         `json:"date"`
	Values      map[string]int `json:"values,omitempty"`
	Total       int            `json:"total"`
	Temperature *float64       `json:"temperature,omitempty"`
}

// PieSlice 是饼图中的一块。
type PieSlice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// GrowthPoint 是成长曲线上的一点。
type GrowthPoint struct {
	Timestamp int64    `json:"timestamp"`
	Height    *float64 `json:"height,omitempty"`
	Weight    *float64 `json:"weight,omitempty"`
}

// ChartData 是渲染图表所需的全部数据。
type ChartData struct {
	Type         ChartType          `json:"type"`
	Categories   []catalog.Category `json:"categories"`
	Period       int                `json:"period"`
	Start        time.Time          `json:"start"`
	End          time.Time          `json:"end"`
	Keys         []string           `json:"keys,omitempty"`
	Colors       map[string]string  `json:"colors,omitempty"`
	Rows         []DayRow           `json:"rows,omitempty"`
	Slices       []PieSlice         `json:"slices,omitempty"`
	Points       []GrowthPoint      `json:"points,omitempty"`
	Empty        bool               `json:"empty"`
	EmptyMessage string             `json:"empty_message,omitempty"`
}

// StatsService 基于条目、每日资讯与基本资料计算图表数据。
type StatsService struct {
	entries   *EntryService
	daily     *DailyInfoService
	basicInfo *BasicInfoService
	loc       *time.Location
}

// NewStatsService 构造 StatsService
func NewStatsService(entries *EntryService, daily *DailyInfoService, basicInfo *BasicInfoService) *StatsService {
	return &StatsService{entries: entries, daily: daily, basicInfo: basicInfo, loc: entries.Location()}
}

// DefaultChartType 返回切换到该分类时默认显示的图表。
func DefaultChartType(category catalog.Category) ChartType {
	switch category {
	case catalog.CategoryBehavior:
		return ChartCombo
	case catalog.CategoryMood:
		return ChartPie
	default:
		return ChartStacked
	}
}

// ChartTypesFor 返回分类可选的图表类型，情緒不提供 combo。
func ChartTypesFor(category catalog.Category) []ChartType {
	types := []ChartType{ChartStacked, ChartBar, ChartPie, ChartCombo}
	if category == catalog.CategoryMood {
		types = slices.DeleteFunc(types, func(t ChartType) bool { return t == ChartCombo })
	}
	return types
}

// ParseChartType 校验图表类型
func ParseChartType(raw string) (ChartType, error) {
	switch t := ChartType(raw); t {
	case ChartStacked, ChartBar, ChartPie, ChartCombo, ChartGrowth:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidChartType, raw)
}

// Window 返回统计区间：起点为 Now 往前 period-1 天的零点，终点为 Now。
func (s *StatsService) Window(now time.Time, period int) (time.Time, time.Time) {
	local := now.In(s.loc)
	start := time.Date(local.Year(), local.Month(), local.Day()-period+1, 0, 0, 0, 0, s.loc)
	return start, local
}

// Chart 计算图表数据。非 stacked 图表只使用第一个分类。
func (s *StatsService) Chart(req ChartRequest) (ChartData, error) {
	if req.Now.IsZero() {
		req.Now = time.Now()
	}
	if req.Period == 0 {
		req.Period = Periods[0]
	}
	if !slices.Contains(Periods, req.Period) {
		return ChartData{}, fmt.Errorf("%w: %d", ErrInvalidPeriod, req.Period)
	}
	if _, err := ParseChartType(string(req.Type)); err != nil {
		return ChartData{}, err
	}

	if req.Type == ChartGrowth {
		return s.growth(req)
	}

	if len(req.Categories) == 0 {
		return ChartData{}, ErrNoCategory
	}
	for _, c := range req.Categories {
		if !catalog.ValidCategory(string(c)) {
			return ChartData{}, fmt.Errorf("%w: %q", ErrInvalidCategory, c)
		}
	}
	if req.Type != ChartStacked {
		req.Categories = req.Categories[:1]
	}
	if req.Type == ChartCombo && req.Categories[0] == catalog.CategoryMood {
		return ChartData{}, ErrChartUnsupported
	}

	start, end := s.Window(req.Now, req.Period)
	entries, err := s.entries.Between(start, end, req.Categories...)
	if err != nil {
		return ChartData{}, err
	}

	data := ChartData{
		Type:       req.Type,
		Categories: req.Categories,
		Period:     req.Period,
		Start:      start,
		End:        end,
	}

	switch {
	case req.Type == ChartStacked && len(req.Categories) > 1:
		s.stackedByCategory(&data, entries)
	case req.Type == ChartStacked:
		s.stackedByItem(&data, entries)
	case req.Type == ChartBar:
		s.bar(&data, entries)
	case req.Type == ChartPie:
		s.pie(&data, entries)
	case req.Type == ChartCombo:
		if err := s.combo(&data, entries); err != nil {
			return ChartData{}, err
		}
	}
	return data, nil
}

func (s *StatsService) days(start, end time.Time) []string {
	var out []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, d.Format(DateLayout))
	}
	return out
}

func (s *StatsService) stackedByCategory(data *ChartData, entries []db.Entry) {
	perDay := make(map[string]map[string]int)
	for _, e := range entries {
		day := s.entries.DateKey(e.Time())
		if perDay[day] == nil {
			perDay[day] = make(map[string]int)
		}
		perDay[day][e.Category] += catalog.ItemCount(e.Content)
	}

	data.Keys = categoryStrings(data.Categories)
	data.Colors = make(map[string]string, len(data.Keys))
	for _, c := range data.Categories {
		data.Colors[string(c)] = catalog.HexColor(c)
	}
	data.Rows = s.stackRows(data, perDay)
	data.markEmpty(emptyPeriodMessage)
}

func (s *StatsService) stackedByItem(data *ChartData, entries []db.Entry) {
	perDay := make(map[string]map[string]int)
	keys := make(map[string]struct{})
	for _, e := range entries {
		day := s.entries.DateKey(e.Time())
		if perDay[day] == nil {
			perDay[day] = make(map[string]int)
		}
		for _, item := range catalog.ParseItems(e.Content) {
			keys[item] = struct{}{}
			perDay[day][item]++
		}
	}

	data.Keys = sortedKeys(keys)
	data.Colors = itemColors(data.Categories[0], data.Keys)
	data.Rows = s.stackRows(data, perDay)
	data.markEmpty(emptyPeriodMessage)
}

func (s *StatsService) stackRows(data *ChartData, perDay map[string]map[string]int) []DayRow {
	days := s.days(data.Start, data.End)
	rows := make([]DayRow, 0, len(days))
	for _, day := range days {
		row := DayRow{Date: day, Values: make(map[string]int, len(data.Keys))}
		for _, key := range data.Keys {
			count := perDay[day][key]
			row.Values[key] = count
			row.Total += count
		}
		rows = append(rows, row)
	}
	return rows
}

func (s *StatsService) bar(data *ChartData, entries []db.Entry) {
	perDay := make(map[string]int)
	for _, e := range entries {
		perDay[s.entries.DateKey(e.Time())] += catalog.ItemCount(e.Content)
	}
	for _, day := range s.days(data.Start, data.End) {
		data.Rows = append(data.Rows, DayRow{Date: day, Total: perDay[day]})
	}
	data.Colors = map[string]string{string(data.Categories[0]): catalog.HexColor(data.Categories[0])}
	data.markEmpty(emptyDisplayMessage)
}

func (s *StatsService) pie(data *ChartData, entries []db.Entry) {
	counts := make(map[string]int)
	for _, e := range entries {
		for _, item := range catalog.ParseItems(e.Content) {
			counts[item]++
		}
	}
	for name, value := range counts {
		data.Slices = append(data.Slices, PieSlice{Name: name, Value: value})
	}
	slices.SortFunc(data.Slices, func(a, b PieSlice) int {
		if c := cmp.Compare(b.Value, a.Value); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	for _, slice := range data.Slices {
		data.Keys = append(data.Keys, slice.Name)
	}
	data.Colors = itemColors(data.Categories[0], data.Keys)
	if len(data.Slices) == 0 {
		data.Empty = true
		data.EmptyMessage = emptyDisplayMessage
	}
}

func (s *StatsService) combo(data *ChartData, entries []db.Entry) error {
	perDay := make(map[string]int)
	for _, e := range entries {
		perDay[s.entries.DateKey(e.Time())] += catalog.ItemCount(e.Content)
	}

	days := s.days(data.Start, data.End)
	temps := make(map[string]float64)
	if s.daily != nil && len(days) > 0 {
		infos, err := s.daily.List(days[0], days[len(days)-1])
		if err != nil {
			return err
		}
		for _, info := range infos {
			temps[info.Date] = info.Temperature
		}
	}

	for _, day := range days {
		row := DayRow{Date: day, Total: perDay[day]}
		if t, ok := temps[day]; ok {
			row.Temperature = &t
		}
		data.Rows = append(data.Rows, row)
	}
	data.Colors = map[string]string{string(data.Categories[0]): catalog.HexColor(data.Categories[0])}
	data.markEmpty(emptyDisplayMessage)
	return nil
}

func (s *StatsService) growth(req ChartRequest) (ChartData, error) {
	data := ChartData{Type: ChartGrowth, Period: req.Period, End: req.Now.In(s.loc)}
	if s.basicInfo == nil {
		data.Empty, data.EmptyMessage = true, emptyGrowthMessage
		return data, nil
	}

	history, err := s.basicInfo.History()
	if err != nil {
		return ChartData{}, err
	}
	for _, record := range history {
		if deref(record.Height) > 0 || deref(record.Weight) > 0 {
			data.Points = append(data.Points, GrowthPoint{Timestamp: record.Timestamp, Height: record.Height, Weight: record.Weight})
		}
	}
	data.Keys = []string{"身高 (cm)", "體重 (kg)"}
	data.Colors = map[string]string{"身高 (cm)": "#3b82f6", "體重 (kg)": "#ef4444"}
	if len(data.Points) < 2 {
		data.Empty, data.EmptyMessage = true, emptyGrowthMessage
	}
	if len(data.Points) > 0 {
		data.Start = time.UnixMilli(data.Points[0].Timestamp).In(s.loc)
	}
	return data, nil
}

func (d *ChartData) markEmpty(message string) {
	for _, row := range d.Rows {
		if row.Total > 0 {
			return
		}
	}
	d.Empty = true
	d.EmptyMessage = message
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// itemColors 情緒使用情绪色板，其余分类循环使用 Tableau10。
func itemColors(category catalog.Category, keys []string) map[string]string {
	colors := make(map[string]string, len(keys))
	for i, key := range keys {
		if category == catalog.CategoryMood {
			colors[key] = catalog.EmotionColor(key)
			continue
		}
		colors[key] = catalog.Tableau10[i%len(catalog.Tableau10)]
	}
	return colors
}
