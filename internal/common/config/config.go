package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config 应用配置
type Config struct {
	App     AppConfig     `json:"app"`
	API     APIConfig     `json:"api"`
	Payment PaymentConfig `json:"payment"`
	Consul  ConsulConfig  `json:"consul"`
	Jaeger  JaegerConfig  `json:"jaeger"`
	Prefs   PrefsConfig   `json:"prefs"`
	Log     LogConfig     `json:"log"`
}

// AppConfig 应用级配置
type AppConfig struct {
	Name            string `json:"name"`             // 应用名称（tracer service name）
	DefaultLanguage string `json:"default_language"` // 默认语言
}

// APIConfig 远端 REST API 配置
type APIConfig struct {
	BaseURL        string `json:"base_url"`        // API 根地址
	TimeoutSeconds int    `json:"timeout_seconds"` // 单请求超时
	MaxFailures    int    `json:"max_failures"`    // 熔断触发失败次数
	ResetSeconds   int    `json:"reset_seconds"`   // 熔断重置时间
	SearchWindow   int    `json:"search_window"`   // 车牌搜索限流窗口（秒）
	SearchMax      int    `json:"search_max"`      // 窗口内最大远端搜索次数
}

// PaymentConfig 支付网关配置
type PaymentConfig struct {
	GatewayKey string `json:"gateway_key"` // 网关密钥
	Currency   string `json:"currency"`
}

// ConsulConfig Consul配置（可选的远端配置源）
type ConsulConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
	Key  string `json:"key"` // KV 配置键，空表示不启用
}

// JaegerConfig Jaeger配置
type JaegerConfig struct {
	Endpoint string  `json:"endpoint"`
	Sampler  float64 `json:"sampler"` // 采样率 0.0-1.0
}

// PrefsConfig 本地偏好存储配置
type PrefsConfig struct {
	Path string `json:"path"` // 偏好文件路径
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, text
	Output string `json:"output"` // stdout, file
	Path   string `json:"path"`   // 日志文件路径
}

var (
	globalConfig *Config
	configOnce   sync.Once
)

// LoadConfig 加载配置：JSON 文件 → .env/环境变量覆盖 → 缺省值。
func LoadConfig(configPath string) (*Config, error) {
	var err error
	configOnce.Do(func() {
		globalConfig = defaultConfig()

		// 配置文件不存在时直接用默认配置
		if _, statErr := os.Stat(configPath); os.IsNotExist(statErr) {
			logrus.Warnf("Config file not found: %s, using default config", configPath)
		} else {
			data, readErr := os.ReadFile(configPath)
			if readErr != nil {
				err = fmt.Errorf("failed to read config file: %w", readErr)
				return
			}
			if unmarshalErr := json.Unmarshal(data, globalConfig); unmarshalErr != nil {
				err = fmt.Errorf("failed to parse config file: %w", unmarshalErr)
				return
			}
		}

		applyEnvOverrides(globalConfig)
	})

	if err != nil {
		return nil, err
	}
	return globalConfig, nil
}

// applyEnvOverrides 用环境变量覆盖敏感项，.env 文件优先加载（不存在则忽略）。
func applyEnvOverrides(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("GARAGELINK_API_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("GARAGELINK_GATEWAY_KEY"); v != "" {
		cfg.Payment.GatewayKey = v
	}
	if v := os.Getenv("GARAGELINK_PREFS_PATH"); v != "" {
		cfg.Prefs.Path = v
	}
	if v := os.Getenv("GARAGELINK_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("GARAGELINK_API_TIMEOUT"); v != "" {
		if sec, convErr := strconv.Atoi(v); convErr == nil && sec > 0 {
			cfg.API.TimeoutSeconds = sec
		}
	}
}

// GetConfig 获取全局配置
func GetConfig() *Config {
	if globalConfig == nil {
		return defaultConfig()
	}
	return globalConfig
}

// defaultConfig 默认配置（开发环境）
func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:            "garage-app",
			DefaultLanguage: "en",
		},
		API: APIConfig{
			BaseURL:        "http://localhost:8000/api",
			TimeoutSeconds: 15,
			MaxFailures:    5,
			ResetSeconds:   30,
			SearchWindow:   1,
			SearchMax:      10,
		},
		Payment: PaymentConfig{
			GatewayKey: "",
			Currency:   "inr",
		},
		Consul: ConsulConfig{
			Host: "localhost",
			Port: 8500,
			Key:  "",
		},
		Jaeger: JaegerConfig{
			Endpoint: "localhost:6831",
			Sampler:  1.0,
		},
		Prefs: PrefsConfig{
			Path: "data/prefs.json",
		},
		Log: LogConfig{
			Level:  "debug",
			Format: "text",
			Output: "stdout",
			Path:   "logs/app.log",
		},
	}
}
