package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration 提供更灵活的反序列化能力，同时兼容纯秒整数与 Go Duration 字符串。
type Duration time.Duration

// UnmarshalText 使 Viper 可以识别诸如 "30s"、"5m" 或纯数字秒值等配置写法。
func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*d = Duration(0)
		return nil
	}

	if seconds, err := time.ParseDuration(raw); err == nil {
		*d = Duration(seconds)
		return nil
	}

	if intVal, err := parseInt(raw); err == nil {
		*d = Duration(time.Duration(intVal) * time.Second)
		return nil
	}

	return fmt.Errorf("invalid duration value: %s", raw)
}

// DurationValue 返回真实的 time.Duration，便于调用方计算。
func (d Duration) DurationValue() time.Duration {
	return time.Duration(d)
}

// parseInt 支持十进制或 0x 前缀的十六进制字符串解析。
func parseInt(value string) (int64, error) {
	if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "0X") {
		return strconv.ParseInt(value, 0, 64)
	}
	return strconv.ParseInt(value, 10, 64)
}

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// GlobalConfig 描述进程级运行参数，所有请求共享同一份只读副本。
type GlobalConfig struct {
	ListenPort    int      `mapstructure:"ListenPort"`
	LogLevel      string   `mapstructure:"LogLevel"`
	LogFilePath   string   `mapstructure:"LogFilePath"`
	LogMaxSize    int      `mapstructure:"LogMaxSize"`
	LogMaxBackups int      `mapstructure:"LogMaxBackups"`
	LogCompress   bool     `mapstructure:"LogCompress"`
	Env           string   `mapstructure:"Env"`
	StoragePath   string   `mapstructure:"StoragePath"`
	CacheTTL      Duration `mapstructure:"CacheTTL"`
	EnvVariables  []string `mapstructure:"EnvVariables"`
}

// HTTPClientConfig 对应渲染期间数据客户端的默认参数，Entry 可整体覆盖。
type HTTPClientConfig struct {
	BaseURL        string            `mapstructure:"BaseURL"`
	Timeout        Duration          `mapstructure:"Timeout"`
	Headers        map[string]string `mapstructure:"Headers"`
	ForwardHeaders []string          `mapstructure:"ForwardHeaders"`
}

// IsZero 表示该段配置是否完全留空，留空时调用方应回退到默认值。
func (h *HTTPClientConfig) IsZero() bool {
	if h == nil {
		return true
	}
	return h.BaseURL == "" &&
		h.Timeout == 0 &&
		len(h.Headers) == 0 &&
		len(h.ForwardHeaders) == 0
}

// AssetGroup 描述单个 Entry 需要注入页面的脚本与样式。
type AssetGroup struct {
	JS  []string `mapstructure:"JS"`
	CSS []string `mapstructure:"CSS"`
}

// AssetsConfig 汇总静态资源前缀与各 Entry 的资源清单。
type AssetsConfig struct {
	PublicPath string                `mapstructure:"PublicPath"`
	Entries    map[string]AssetGroup `mapstructure:"Entries"`
	LoadJS     map[string]string     `mapstructure:"LoadJS"`
}

// EntryConfig 声明一个应用入口挂载的路径前缀，以及它的可选覆盖项。
type EntryConfig struct {
	Key        string            `mapstructure:"Key"`
	Path       string            `mapstructure:"Path"`
	Name       string            `mapstructure:"Name"`
	HTTPClient *HTTPClientConfig `mapstructure:"HTTPClient"`
}

// Config 是 TOML 文件映射的整体结构。
type Config struct {
	Global       GlobalConfig      `mapstructure:",squash"`
	HTTPClient   HTTPClientConfig  `mapstructure:"HTTPClient"`
	EntryWrapper map[string]string `mapstructure:"EntryWrapper"`
	Assets       AssetsConfig      `mapstructure:"Assets"`
	Entries      []EntryConfig     `mapstructure:"Entry"`
}

// IsProduction 只在启动时读取一次，用于决定是否启用渲染结果缓存。
func (c *Config) IsProduction() bool {
	if c == nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(c.Global.Env), EnvProduction)
}

// EntryKeys 返回配置中声明的 Entry 键，供日志字段使用。
func EntryKeys(entries []EntryConfig) []string {
	if len(entries) == 0 {
		return nil
	}
	result := make([]string, len(entries))
	for i, entry := range entries {
		result[i] = fmt.Sprintf("%s:%s", entry.Key, entry.Path)
	}
	return result
}
