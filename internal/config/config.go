package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr    string `yaml:"listen_addr"`
	Port          string `yaml:"port"`
	DatabasePath  string `yaml:"database_path"`
	SessionSecret string `yaml:"session_secret"`
	GinMode       string `yaml:"gin_mode"`
	Timezone      string `yaml:"timezone"`
	CacheVersion  int    `yaml:"cache_version"`
	AuthRequired  bool   `yaml:"auth_required"`
	GeminiAPIKey  string `yaml:"gemini_api_key"`
	LogLevel      string `yaml:"log_level"`
	AdminUserName string `yaml:"admin_user_name"`
	AdminPassword string `yaml:"admin_password"`
}

const (
	defaultPort         = "8080"
	defaultDatabasePath = "tictracker.db"
	defaultTimezone     = "Asia/Taipei"
	defaultCacheVersion = 8
)

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
// 若设置了 CONFIG_FILE，则先读取 YAML 文件，再由环境变量覆盖。
func Load() (AppConfig, error) {
	cfg := AppConfig{}

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		fileCfg, err := LoadFile(path)
		if err != nil {
			return AppConfig{}, err
		}
		cfg = fileCfg
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	return cfg, nil
}

// LoadFile 读取 YAML 配置文件，不做默认值填充。
func LoadFile(path string) (AppConfig, error) {
	var cfg AppConfig
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *AppConfig) {
	setString(&cfg.Port, "PORT")
	setString(&cfg.ListenAddr, "LISTEN_ADDR")
	setString(&cfg.DatabasePath, "DATABASE_PATH")
	setString(&cfg.SessionSecret, "SESSION_SECRET")
	setString(&cfg.GinMode, "GIN_MODE")
	setString(&cfg.Timezone, "TIMEZONE")
	setString(&cfg.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.AdminUserName, "ADMIN_USER_NAME")
	setString(&cfg.AdminPassword, "ADMIN_PASSWORD")

	if raw := strings.TrimSpace(os.Getenv("CACHE_VERSION")); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			cfg.CacheVersion = v
		}
	}
	if raw := strings.TrimSpace(os.Getenv("AUTH_REQUIRED")); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			cfg.AuthRequired = v
		}
	}
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = fmt.Sprintf(":%s", cfg.Port)
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = defaultDatabasePath
	}
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = "tictracker-dev-secret"
	}
	if cfg.GinMode == "" {
		cfg.GinMode = "release"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = defaultTimezone
	}
	if cfg.CacheVersion <= 0 {
		cfg.CacheVersion = defaultCacheVersion
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// Location 解析配置中的时区，无法识别时回退到本地时区。
func (c AppConfig) Location() *time.Location {
	if strings.TrimSpace(c.Timezone) == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Validate 检查互相依赖的配置项。
func (c AppConfig) Validate() error {
	if c.AuthRequired && (c.AdminUserName == "" || c.AdminPassword == "") {
		return errors.New("auth_required needs admin_user_name and admin_password")
	}
	return nil
}
