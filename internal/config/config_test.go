package config

import (
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	cfgPath := testConfigPath(t, "valid.toml")

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	if cfg.Global.CacheTTL.DurationValue() != 10*time.Minute {
		t.Fatalf("CacheTTL 应解析为 10m，得到 %s", cfg.Global.CacheTTL.DurationValue())
	}
	if cfg.Global.Env != EnvDevelopment {
		t.Fatalf("默认应为 development，得到 %s", cfg.Global.Env)
	}
	if cfg.IsProduction() {
		t.Fatalf("development 不应视为生产模式")
	}
	if cfg.HTTPClient.BaseURL != "https://api.example.com" {
		t.Fatalf("BaseURL 应去除末尾斜杠，得到 %s", cfg.HTTPClient.BaseURL)
	}
	if cfg.HTTPClient.Timeout.DurationValue() != 5*time.Second {
		t.Fatalf("Timeout 解析错误: %s", cfg.HTTPClient.Timeout.DurationValue())
	}
	if len(cfg.Entries) != 2 {
		t.Fatalf("应解析出 2 个 Entry，得到 %d", len(cfg.Entries))
	}
	if cfg.Entries[0].Key != "main" || cfg.Entries[0].Name != "main" {
		t.Fatalf("Entry Key 应统一小写并补全 Name: %+v", cfg.Entries[0])
	}
	if cfg.Entries[1].Path != "/admin" {
		t.Fatalf("Entry Path 应被规范化，得到 %s", cfg.Entries[1].Path)
	}
	if cfg.Entries[0].HTTPClient != nil {
		t.Fatalf("未声明覆盖的 Entry 不应携带 HTTPClient")
	}
	if cfg.Entries[1].HTTPClient == nil || cfg.Entries[1].HTTPClient.BaseURL != "https://admin-api.example.com" {
		t.Fatalf("Entry 级 HTTPClient 覆盖未生效")
	}
	if group, ok := cfg.Assets.Entries["main"]; !ok || len(group.JS) != 1 {
		t.Fatalf("Assets 解析错误: %+v", cfg.Assets)
	}
}

func TestValidateRejectsMissingEntryKey(t *testing.T) {
	cfgPath := testConfigPath(t, "missing.toml")

	if _, err := Load(cfgPath); err == nil {
		t.Fatalf("不合法的配置应返回错误")
	}
}

func TestLoadProductionMode(t *testing.T) {
	cfg, err := Load(testConfigPath(t, "production.toml"))
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	if !cfg.IsProduction() {
		t.Fatalf("Env=production 应启用生产模式")
	}
}

func TestEnvOverrideTakesPrecedence(t *testing.T) {
	t.Setenv(EnvOverrideKey, "production")

	cfg, err := Load(testConfigPath(t, "valid.toml"))
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	if !cfg.IsProduction() {
		t.Fatalf("环境变量应覆盖配置文件中的 Env")
	}
}

func TestValidateEnforcesListenPortRange(t *testing.T) {
	cfg := validConfig()
	cfg.Global.ListenPort = 70000
	if err := cfg.Validate(); err == nil {
		t.Fatalf("ListenPort 超出范围应当报错")
	}
}

func TestEnvValidation(t *testing.T) {
	testCases := []struct {
		name      string
		env       string
		shouldErr bool
	}{
		{"development ok", "development", false},
		{"production ok", "production", false},
		{"test ok", "test", false},
		{"unknown", "staging", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Global.Env = tc.env
			err := cfg.Validate()
			if tc.shouldErr && err == nil {
				t.Fatalf("expected error for env %q", tc.env)
			}
			if !tc.shouldErr && err != nil {
				t.Fatalf("unexpected error for env %q: %v", tc.env, err)
			}
		})
	}
}

func TestValidateRejectsDuplicateEntries(t *testing.T) {
	cfg := validConfig()
	cfg.Entries = append(cfg.Entries, EntryConfig{Key: "main", Path: "/other"})
	if err := cfg.Validate(); err == nil {
		t.Fatalf("重复的 Entry Key 应报错")
	}

	cfg = validConfig()
	cfg.Entries = append(cfg.Entries, EntryConfig{Key: "other", Path: "/"})
	if err := cfg.Validate(); err == nil {
		t.Fatalf("重复的 Entry Path 应报错")
	}
}

func TestValidateRejectsBadBaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.Entries[0].HTTPClient = &HTTPClientConfig{BaseURL: "ftp://api.local"}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("非 http/https BaseURL 应报错")
	}
}

func TestHTTPClientConfigIsZero(t *testing.T) {
	var nilCfg *HTTPClientConfig
	if !nilCfg.IsZero() {
		t.Fatalf("nil 配置应视为空")
	}
	if !(&HTTPClientConfig{}).IsZero() {
		t.Fatalf("空结构应视为空")
	}
	if (&HTTPClientConfig{Headers: map[string]string{"a": "b"}}).IsZero() {
		t.Fatalf("携带 Headers 的配置不应视为空")
	}
}

func validConfig() *Config {
	return &Config{
		Global: GlobalConfig{
			ListenPort:  5000,
			StoragePath: "./data",
			CacheTTL:    Duration(time.Hour),
			Env:         EnvDevelopment,
		},
		HTTPClient: HTTPClientConfig{Timeout: Duration(time.Second)},
		Entries: []EntryConfig{
			{Key: "main", Path: "/", Name: "Main"},
		},
	}
}
