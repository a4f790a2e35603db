package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	defaultNominatimBaseURL = "https://nominatim.openstreetmap.org"
	defaultOpenMeteoBaseURL = "https://api.open-meteo.com/v1"
	unknownLocation         = "未知地點"
)

var (
	// ErrLocationMissingAddress 在逆地理编码结果缺少地址时返回
	ErrLocationMissingAddress = errors.New("無法從座標解析地點，請稍後再試")
	// ErrWeatherMalformed 在天气数据格式不正确时返回
	ErrWeatherMalformed = errors.New("天氣資料格式不正確，請稍後再試")
	// ErrNetwork 表示网络连接失败
	ErrNetwork = errors.New("network failure")
)

// GeolocationError 是浏览器定位失败时回传的错误码（1 权限、2 不可用、3 逾时）。
type GeolocationError struct {
	Code    int
	Message string
}

func (e *GeolocationError) Error() string {
	return fmt.Sprintf("geolocation error %d: %s", e.Code, e.Message)
}

// ServiceError 表示地点或天气服务返回了错误。
// Raw 为 true 时是服务在响应体里给出的说明，原样展示。
type ServiceError struct {
	Service string
	Detail  string
	Raw     bool
}

func (e *ServiceError) Error() string {
	if e.Raw {
		return e.Detail
	}
	return fmt.Sprintf("%s服務錯誤: %s", e.Service, e.Detail)
}

// Coordinates 是经纬度坐标。
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CurrentWeather 是 open-meteo 当前天气的精简结果。
type CurrentWeather struct {
	Temperature float64
	Code        int
}

type nominatimResponse struct {
	Error   string `json:"error"`
	Address *struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
	} `json:"address"`
}

type openMeteoResponse struct {
	Error   bool   `json:"error"`
	Reason  string `json:"reason"`
	Current *struct {
		Temperature *float64 `json:"temperature_2m"`
		WeatherCode *int     `json:"weather_code"`
	} `json:"current"`
}

// weatherClient 调用 nominatim 与 open-meteo。
type weatherClient struct {
	http         httpDoer
	geocodeBase  string
	forecastBase string
	userAgent    string
}

func newWeatherClient() *weatherClient {
	return &weatherClient{
		http:         &http.Client{Timeout: 15 * time.Second},
		geocodeBase:  defaultNominatimBaseURL,
		forecastBase: defaultOpenMeteoBaseURL,
		userAgent:    "tictracker/1.0",
	}
}

// Lookup 并行获取地点名称与当前天气。两者都失败时优先返回地点错误。
func (c *weatherClient) Lookup(ctx context.Context, coords Coordinates, lang string) (string, CurrentWeather, error) {
	var (
		location   string
		weather    CurrentWeather
		geoErr     error
		weatherErr error
		g          errgroup.Group
	)

	g.Go(func() error {
		location, geoErr = c.ReverseGeocode(ctx, coords, lang)
		return nil
	})
	g.Go(func() error {
		weather, weatherErr = c.Current(ctx, coords)
		return nil
	})
	_ = g.Wait()

	if geoErr != nil {
		return "", CurrentWeather{}, geoErr
	}
	if weatherErr != nil {
		return "", CurrentWeather{}, weatherErr
	}
	return location, weather, nil
}

// ReverseGeocode 返回 city / town / village 之一，均缺失时为“未知地點”。
func (c *weatherClient) ReverseGeocode(ctx context.Context, coords Coordinates, lang string) (string, error) {
	if strings.TrimSpace(lang) == "" {
		lang = "zh-TW"
	}
	query := url.Values{}
	query.Set("format", "json")
	query.Set("lat", formatCoord(coords.Latitude))
	query.Set("lon", formatCoord(coords.Longitude))
	query.Set("accept-language", lang)

	body, err := c.get(ctx, "地點", strings.TrimRight(c.geocodeBase, "/")+"/reverse?"+query.Encode())
	if err != nil {
		return "", err
	}

	var payload nominatimResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", &ServiceError{Service: "地點", Detail: err.Error()}
	}
	if payload.Error != "" {
		return "", &ServiceError{Service: "地點", Detail: payload.Error, Raw: true}
	}
	if payload.Address == nil {
		return "", ErrLocationMissingAddress
	}

	for _, candidate := range []string{payload.Address.City, payload.Address.Town, payload.Address.Village} {
		if name := strings.TrimSpace(candidate); name != "" {
			return name, nil
		}
	}
	return unknownLocation, nil
}

// Current 返回当前气温与 WMO 天气代码。
func (c *weatherClient) Current(ctx context.Context, coords Coordinates) (CurrentWeather, error) {
	query := url.Values{}
	query.Set("latitude", formatCoord(coords.Latitude))
	query.Set("longitude", formatCoord(coords.Longitude))
	query.Set("current", "temperature_2m,weather_code")

	body, err := c.get(ctx, "天氣", strings.TrimRight(c.forecastBase, "/")+"/forecast?"+query.Encode())
	if err != nil {
		return CurrentWeather{}, err
	}

	var payload openMeteoResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return CurrentWeather{}, ErrWeatherMalformed
	}
	if payload.Error && payload.Reason != "" {
		return CurrentWeather{}, &ServiceError{Service: "天氣", Detail: payload.Reason, Raw: true}
	}
	if payload.Current == nil || payload.Current.Temperature == nil || payload.Current.WeatherCode == nil {
		return CurrentWeather{}, ErrWeatherMalformed
	}
	return CurrentWeather{Temperature: *payload.Current.Temperature, Code: *payload.Current.WeatherCode}, nil
}

func (c *weatherClient) get(ctx context.Context, service, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("创建%s请求失败: %w", service, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	client := c.http
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		detail := strings.TrimSpace(string(body))
		if detail == "" {
			detail = "Status: " + strconv.Itoa(resp.StatusCode)
		}
		return nil, &ServiceError{Service: service, Detail: detail}
	}
	return body, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FriendlyMessage 将地点/天气相关错误转换为可展示给用户的提示。
func FriendlyMessage(err error) string {
	if err == nil {
		return ""
	}

	var geoErr *GeolocationError
	if errors.As(err, &geoErr) {
		switch geoErr.Code {
		case 1:
			return "請開啟定位權限以取得天氣資訊"
		case 2:
			return "暫時無法取得您的位置"
		case 3:
			return "取得位置資訊逾時"
		default:
			return fmt.Sprintf("定位錯誤 (%d): %s", geoErr.Code, geoErr.Message)
		}
	}

	var netErr net.Error
	if errors.Is(err, ErrNetwork) || errors.As(err, &netErr) {
		return "網路連線失敗，請檢查您的網路連線。"
	}

	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Error()
	}
	if errors.Is(err, ErrLocationMissingAddress) || errors.Is(err, ErrWeatherMalformed) {
		return unwrapSentinel(err)
	}
	return "無法取得地點與天氣資訊，請稍後再試。"
}

func unwrapSentinel(err error) string {
	for _, sentinel := range []error{ErrLocationMissingAddress, ErrWeatherMalformed} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
