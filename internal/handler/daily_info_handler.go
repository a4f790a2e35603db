package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tictracker/internal/db"
	"github.com/tictracker/internal/service"
)

type resolveDailyInfoRequest struct {
	Date            string   `json:"date"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	GeoErrorCode    int      `json:"geoErrorCode"`
	GeoErrorMessage string   `json:"geoErrorMessage"`
}

type dailyInfoRequest struct {
	Location    string  `json:"location"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Temperature float64 `json:"temperature"`
	WeatherCode int     `json:"weatherCode"`
}

func dailyInfoPayload(info db.DailyInfo) gin.H {
	return gin.H{
		"date":     info.Date,
		"location": info.Location,
		"weather": gin.H{
			"temp":        info.Temperature,
			"description": info.WeatherDescription,
			"icon":        info.WeatherIcon,
			"code":        info.WeatherCode,
		},
		"fetchedAt": info.FetchedAt,
	}
}

// GetDailyInfo 返回某日缓存的地点与天气，默认今日。
func (a *API) GetDailyInfo(c *gin.Context) {
	date := strings.TrimSpace(c.Query("date"))
	if date == "" {
		date = a.daily.Today()
	}
	info, err := a.daily.Get(date)
	if err != nil {
		a.respondServiceError(c, err, "讀取每日資訊失敗")
		return
	}
	c.JSON(http.StatusOK, gin.H{"dailyInfo": dailyInfoPayload(*info)})
}

// ResolveDailyInfo 在今日无缓存时根据浏览器提供的坐标抓取地点与天气。
func (a *API) ResolveDailyInfo(c *gin.Context) {
	var payload resolveDailyInfoRequest
	if !bindJSON(c, &payload, "請提供定位資訊") {
		return
	}

	input := service.ResolveInput{
		Date:            payload.Date,
		GeoErrorCode:    payload.GeoErrorCode,
		GeoErrorMessage: payload.GeoErrorMessage,
		Language:        a.requestLocale(c).AcceptLanguage,
	}
	if payload.Latitude != nil && payload.Longitude != nil {
		input.Coords = &service.Coordinates{Latitude: *payload.Latitude, Longitude: *payload.Longitude}
	}

	info, err := a.daily.Resolve(c.Request.Context(), input)
	if err != nil {
		a.respondLookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dailyInfo": dailyInfoPayload(*info)})
}

// SetDailyInfo 手动写入某日的地点与天气。
func (a *API) SetDailyInfo(c *gin.Context) {
	var payload dailyInfoRequest
	if !bindJSON(c, &payload, "請填寫完整的每日資訊") {
		return
	}
	info, err := a.daily.Set(c.Param("date"), service.DailyInfoInput{
		Location:    payload.Location,
		Latitude:    payload.Latitude,
		Longitude:   payload.Longitude,
		Temperature: payload.Temperature,
		WeatherCode: payload.WeatherCode,
	})
	if err != nil {
		a.respondServiceError(c, err, "儲存每日資訊失敗")
		return
	}
	c.JSON(http.StatusOK, gin.H{"dailyInfo": dailyInfoPayload(*info)})
}

func (a *API) respondLookupError(c *gin.Context, err error) {
	var geoErr *service.GeolocationError
	switch {
	case errors.Is(err, service.ErrDailyInfoUnavailable),
		errors.Is(err, service.ErrCoordinatesRequired),
		errors.Is(err, service.ErrInvalidDate):
		a.respondServiceError(c, err, "取得每日資訊失敗")
	case errors.As(err, &geoErr):
		respondError(c, http.StatusBadRequest, service.FriendlyMessage(err))
	default:
		c.Error(err)
		respondError(c, http.StatusBadGateway, service.FriendlyMessage(err))
	}
}
