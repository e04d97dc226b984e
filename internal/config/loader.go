package config

import (
	"fmt"
	"path"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// EnvOverrideKey 允许部署环境在不修改配置文件的前提下切换运行模式。
const EnvOverrideKey = "SSR_GATEWAY_ENV"

// Load 读取并解析 TOML 配置文件，同时注入默认值与校验逻辑。
func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.toml"
	}

	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)
	if err := v.BindEnv("Env", EnvOverrideKey); err != nil {
		return nil, fmt.Errorf("绑定环境变量失败: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置失败: %w", err)
	}

	if err := rejectEntryLevelEnv(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(durationDecodeHook())); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	applyGlobalDefaults(&cfg.Global)
	applyHTTPClientDefaults(&cfg.HTTPClient)
	for i := range cfg.Entries {
		applyEntryDefaults(&cfg.Entries[i])
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	absStorage, err := filepath.Abs(cfg.Global.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("无法解析缓存目录: %w", err)
	}
	cfg.Global.StoragePath = absStorage

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ListenPort", 5000)
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogFilePath", "")
	v.SetDefault("LogMaxSize", 100)
	v.SetDefault("LogMaxBackups", 10)
	v.SetDefault("LogCompress", true)
	v.SetDefault("Env", EnvDevelopment)
	v.SetDefault("StoragePath", "./storage")
	v.SetDefault("CacheTTL", 3600)
	v.SetDefault("EnvVariables", []string{})
	v.SetDefault("HTTPClient.Timeout", "30s")
}

func applyGlobalDefaults(g *GlobalConfig) {
	if g.ListenPort == 0 {
		g.ListenPort = 5000
	}
	if g.CacheTTL.DurationValue() == 0 {
		g.CacheTTL = Duration(time.Hour)
	}
	g.Env = strings.ToLower(strings.TrimSpace(g.Env))
	if g.Env == "" {
		g.Env = EnvDevelopment
	}
}

func applyHTTPClientDefaults(h *HTTPClientConfig) {
	if h.Timeout.DurationValue() == 0 {
		h.Timeout = Duration(30 * time.Second)
	}
	h.BaseURL = strings.TrimRight(strings.TrimSpace(h.BaseURL), "/")
}

func applyEntryDefaults(e *EntryConfig) {
	e.Key = strings.ToLower(strings.TrimSpace(e.Key))
	if trimmed := strings.TrimSpace(e.Path); trimmed != "" {
		e.Path = path.Clean("/" + trimmed)
	}
	if strings.TrimSpace(e.Name) == "" {
		e.Name = e.Key
	}
	if e.HTTPClient != nil {
		e.HTTPClient.BaseURL = strings.TrimRight(strings.TrimSpace(e.HTTPClient.BaseURL), "/")
	}
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(Duration(0))

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			if v == "" {
				return Duration(0), nil
			}
			if parsed, err := time.ParseDuration(v); err == nil {
				return Duration(parsed), nil
			}
			if seconds, err := strconv.ParseFloat(v, 64); err == nil {
				return Duration(time.Duration(seconds * float64(time.Second))), nil
			}
			return nil, fmt.Errorf("无法解析 Duration 字段: %s", v)
		case int:
			return Duration(time.Duration(v) * time.Second), nil
		case int64:
			return Duration(time.Duration(v) * time.Second), nil
		case float64:
			return Duration(time.Duration(v * float64(time.Second))), nil
		case time.Duration:
			return Duration(v), nil
		case Duration:
			return v, nil
		default:
			return nil, fmt.Errorf("不支持的 Duration 类型: %T", v)
		}
	}
}

// rejectEntryLevelEnv 拒绝在 Entry 内声明运行模式：生产标志必须全局唯一。
func rejectEntryLevelEnv(v *viper.Viper) error {
	raw := v.Get("Entry")
	entries, ok := raw.([]interface{})
	if !ok {
		return nil
	}

	for idx, entry := range entries {
		m, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		for key := range m {
			if !strings.EqualFold(key, "Env") {
				continue
			}
			name := fmt.Sprintf("#%d", idx)
			if rawKey, ok := m["key"].(string); ok && rawKey != "" {
				name = rawKey
			} else if rawKey, ok := m["Key"].(string); ok && rawKey != "" {
				name = rawKey
			}
			return newFieldError(entryField(name, "Env"), "不支持按 Entry 配置，请使用全局 Env")
		}
	}

	return nil
}
