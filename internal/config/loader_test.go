package config

import "testing"

func TestLoadFailsWithMissingFields(t *testing.T) {
	if _, err := Load(testConfigPath(t, "missing.toml")); err == nil {
		t.Fatalf("缺失字段的配置应返回错误")
	}
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	cfg := `
LogLevel = "info"
StoragePath = "./data"
CacheTTL = "boom"

[[Entry]]
Key = "main"
Path = "/"
`
	path := writeTempConfig(t, cfg)
	if _, err := Load(path); err == nil {
		t.Fatalf("无效 Duration 应失败")
	}
}

func TestLoadRejectsEntryLevelEnv(t *testing.T) {
	cfg := `
StoragePath = "./data"

[[Entry]]
Key = "main"
Path = "/"
Env = "production"
`
	path := writeTempConfig(t, cfg)
	_, err := Load(path)
	if err == nil {
		t.Fatalf("Entry 级 Env 应被拒绝")
	}
	if _, ok := err.(FieldError); !ok {
		t.Fatalf("应返回 FieldError，得到 %T", err)
	}
}

func TestLoadAllowsEmptyEntries(t *testing.T) {
	path := writeTempConfig(t, `StoragePath = "./data"`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("未声明 Entry 时应使用内置入口: %v", err)
	}
	if len(cfg.Entries) != 0 {
		t.Fatalf("不应凭空生成 Entry")
	}
}
