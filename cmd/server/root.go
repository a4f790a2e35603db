package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tictracker/internal/config"
	"github.com/tictracker/internal/db"
	"github.com/tictracker/internal/logging"
	"go.uber.org/zap"
)

var (
	configFile string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "tictracker",
	Short: "抽動症日誌：記錄飲食、健康、用藥、行為、事件與情緒",
	Long: `tictracker 提供日誌網站與資料維護指令。
不帶子指令時等同於 serve。`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, args)
	},
}

// Execute 执行根命令，供 main 调用。
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML 設定檔路徑 (亦可用 CONFIG_FILE)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日誌等級: debug, info, warn, error")

	rootCmd.AddCommand(serveCmd, exportCmd, importCmd, createUserCmd)
}

// loadConfig 读取配置，命令行参数优先于环境变量与配置文件。
func loadConfig() (config.AppConfig, error) {
	if configFile != "" {
		if err := os.Setenv("CONFIG_FILE", configFile); err != nil {
			return config.AppConfig{}, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

// bootstrap 加载配置、构造 logger 并打开数据库。
func bootstrap() (config.AppConfig, *zap.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return cfg, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return cfg, nil, fmt.Errorf("build logger: %w", err)
	}
	if err := db.Init(cfg.DatabasePath); err != nil {
		return cfg, logger, fmt.Errorf("initialize database: %w", err)
	}
	return cfg, logger, nil
}
