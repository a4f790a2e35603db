package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tictracker/internal/catalog"
	"github.com/tictracker/internal/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrDailyInfoNotFound 在指定日期没有缓存时返回
	ErrDailyInfoNotFound = errors.New("daily info not found")
	// ErrDailyInfoUnavailable 在非今日且无缓存时返回，历史天气不会补抓
	ErrDailyInfoUnavailable = errors.New("daily info is only fetched for today")
	// ErrCoordinatesRequired 在需要抓取但未提供坐标时返回
	ErrCoordinatesRequired = errors.New("coordinates are required")
)

// DailyInfoInput 用于手动写入每日资讯。
type DailyInfoInput struct {
	Location    string
	Latitude    float64
	Longitude   float64
	Temperature float64
	WeatherCode int
}

// ResolveInput 描述一次“取得今日地点与天气”的请求。
// GeoErrorCode 非零时表示浏览器端定位失败，直接转换为 GeolocationError。
type ResolveInput struct {
	Date            string
	Coords          *Coordinates
	GeoErrorCode    int
	GeoErrorMessage string
	Language        string
}

// DailyInfoService 负责每日地点与天气快照，每天只抓取一次。
type DailyInfoService struct {
	db     *gorm.DB
	broker *Broker
	loc    *time.Location
	client *weatherClient
	logger *zap.Logger
	now    func() time.Time
}

// NewDailyInfoService 构造 DailyInfoService
func NewDailyInfoService(gdb *gorm.DB, broker *Broker, loc *time.Location, logger *zap.Logger) *DailyInfoService {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DailyInfoService{
		db:     gdb,
		broker: broker,
		loc:    loc,
		client: newWeatherClient(),
		logger: logger,
		now:    time.Now,
	}
}

// SetHTTPClient 替换访问第三方服务的 HTTP 客户端，主要面向测试场景。
func (s *DailyInfoService) SetHTTPClient(client httpDoer) {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	s.client.http = client
}

// SetGeocodeBaseURL 覆盖 nominatim 地址。
func (s *DailyInfoService) SetGeocodeBaseURL(base string) {
	s.client.geocodeBase = strings.TrimRight(strings.TrimSpace(base), "/")
}

// SetForecastBaseURL 覆盖 open-meteo 地址。
func (s *DailyInfoService) SetForecastBaseURL(base string) {
	s.client.forecastBase = strings.TrimRight(strings.TrimSpace(base), "/")
}

// Today 返回配置时区下今天的日期键。
func (s *DailyInfoService) Today() string {
	return s.now().In(s.loc).Format(DateLayout)
}

// Get 返回指定日期的缓存
func (s *DailyInfoService) Get(date string) (*db.DailyInfo, error) {
	date, err := s.normalizeDate(date)
	if err != nil {
		return nil, err
	}

	var info db.DailyInfo
	if err := s.db.First(&info, "date = ?", date).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDailyInfoNotFound
		}
		return nil, fmt.Errorf("get daily info: %w", err)
	}
	return &info, nil
}

// Set 写入或覆盖指定日期的快照
func (s *DailyInfoService) Set(date string, input DailyInfoInput) (*db.DailyInfo, error) {
	date, err := s.normalizeDate(date)
	if err != nil {
		return nil, err
	}

	location := strings.TrimSpace(input.Location)
	if location == "" {
		location = unknownLocation
	}
	display := catalog.WeatherDisplay(input.WeatherCode)
	info := db.DailyInfo{
		Date:               date,
		Location:           location,
		Latitude:           input.Latitude,
		Longitude:          input.Longitude,
		Temperature:        input.Temperature,
		WeatherCode:        input.WeatherCode,
		WeatherIcon:        display.Icon,
		WeatherDescription: display.Description,
		FetchedAt:          s.now(),
	}

	if err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"location", "latitude", "longitude", "temperature",
			"weather_code", "weather_icon", "weather_description", "fetched_at", "updated_at",
		}),
	}).Create(&info).Error; err != nil {
		return nil, fmt.Errorf("upsert daily info: %w", err)
	}

	s.broker.publish(SlotDailyInfo, "set", date)
	return &info, nil
}

// List 返回 [start, end] 日期区间内的快照，按日期升序。
func (s *DailyInfoService) List(start, end string) ([]db.DailyInfo, error) {
	query := s.db.Model(&db.DailyInfo{})
	if start != "" {
		query = query.Where("date >= ?", start)
	}
	if end != "" {
		query = query.Where("date <= ?", end)
	}

	var infos []db.DailyInfo
	if err := query.Order("date ASC").Find(&infos).Error; err != nil {
		return nil, fmt.Errorf("list daily info: %w", err)
	}
	return infos, nil
}

// Resolve 返回指定日期的快照；仅今日在无缓存时才会抓取地点与天气。
func (s *DailyInfoService) Resolve(ctx context.Context, input ResolveInput) (*db.DailyInfo, error) {
	date := strings.TrimSpace(input.Date)
	if date == "" {
		date = s.Today()
	}

	cached, err := s.Get(date)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, ErrDailyInfoNotFound) {
		return nil, err
	}

	if date != s.Today() {
		return nil, ErrDailyInfoUnavailable
	}
	if input.GeoErrorCode != 0 {
		return nil, &GeolocationError{Code: input.GeoErrorCode, Message: input.GeoErrorMessage}
	}
	if input.Coords == nil {
		return nil, ErrCoordinatesRequired
	}

	location, weather, err := s.client.Lookup(ctx, *input.Coords, input.Language)
	if err != nil {
		s.logger.Warn("daily info lookup failed",
			zap.String("date", date),
			zap.Error(err),
		)
		return nil, err
	}

	return s.Set(date, DailyInfoInput{
		Location:    location,
		Latitude:    input.Coords.Latitude,
		Longitude:   input.Coords.Longitude,
		Temperature: weather.Temperature,
		WeatherCode: weather.Code,
	})
}

func (s *DailyInfoService) normalizeDate(date string) (string, error) {
	date = strings.TrimSpace(date)
	if _, err := time.ParseInLocation(DateLayout, date, s.loc); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return date, nil
}
