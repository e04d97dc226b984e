package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

var supportedEnvs = map[string]struct{}{
	EnvDevelopment: {},
	EnvProduction:  {},
	EnvTest:        {},
}

// Validate 针对语义级别做进一步校验，防止非法配置启动服务。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	g := c.Global
	if g.ListenPort <= 0 || g.ListenPort > 65535 {
		return newFieldError("Global.ListenPort", "必须在 1-65535")
	}
	if g.StoragePath == "" {
		return newFieldError("Global.StoragePath", "不能为空")
	}
	if g.CacheTTL.DurationValue() <= 0 {
		return newFieldError("Global.CacheTTL", "必须大于 0")
	}
	if _, ok := supportedEnvs[strings.ToLower(strings.TrimSpace(g.Env))]; !ok {
		return newFieldError("Global.Env", "仅支持 development|production|test")
	}
	for _, name := range g.EnvVariables {
		if strings.TrimSpace(name) == "" {
			return newFieldError("Global.EnvVariables", "不能包含空变量名")
		}
	}

	if err := validateHTTPClient(c.HTTPClient, false); err != nil {
		return fmt.Errorf("HTTPClient: %w", err)
	}

	seenKeys := map[string]struct{}{}
	seenPaths := map[string]struct{}{}
	for i := range c.Entries {
		entry := &c.Entries[i]
		if entry.Key == "" {
			return newFieldError("Entry[].Key", "不能为空")
		}
		if _, exists := seenKeys[entry.Key]; exists {
			return newFieldError(entryField(entry.Key, "Key"), "重复")
		}
		seenKeys[entry.Key] = struct{}{}

		if !strings.HasPrefix(entry.Path, "/") {
			return newFieldError(entryField(entry.Key, "Path"), "必须以 / 开头")
		}
		if _, exists := seenPaths[entry.Path]; exists {
			return newFieldError(entryField(entry.Key, "Path"), "与其它 Entry 重复")
		}
		seenPaths[entry.Path] = struct{}{}

		if entry.HTTPClient != nil {
			if err := validateHTTPClient(*entry.HTTPClient, true); err != nil {
				return fmt.Errorf("%s: %w", entryField(entry.Key, "HTTPClient"), err)
			}
		}
	}

	return nil
}

func validateHTTPClient(h HTTPClientConfig, override bool) error {
	if h.Timeout.DurationValue() < 0 {
		return errors.New("Timeout 不能为负数")
	}
	if !override && h.Timeout.DurationValue() > 10*time.Minute {
		return errors.New("Timeout 不应超过 10m")
	}
	if h.BaseURL != "" {
		if err := validateBaseURL(h.BaseURL); err != nil {
			return err
		}
	}
	for _, name := range h.ForwardHeaders {
		if strings.TrimSpace(name) == "" {
			return errors.New("ForwardHeaders 不能包含空值")
		}
	}
	return nil
}

func validateBaseURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("仅支持 http/https，BaseURL: %s", raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("BaseURL 缺少 Host: %s", raw)
	}
	return nil
}
