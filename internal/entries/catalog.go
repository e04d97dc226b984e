package entries

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"go.uber.org/multierr"

	"github.com/any-hub/ssr-gateway/internal/config"
	"github.com/any-hub/ssr-gateway/internal/httpclient"
	"github.com/any-hub/ssr-gateway/internal/store"
)

// Mount 是入口在 Catalog 中的挂载信息，也是诊断接口输出的内容。
type Mount struct {
	Key        string
	Name       string
	Path       string
	Definition Definition
	Options    EntryOptions
}

// Catalog 按路径前缀查找入口。构造后只读，可被并发请求共享。
type Catalog struct {
	mounts  []*Mount // 按路径长度降序，便于最长前缀匹配
	ordered []*Mount
}

// NewCatalog 将代码注册的入口与配置文件中的 [[Entry]] 合并。
// 配置未声明任何入口时，所有已注册入口按各自默认路径挂载。
func NewCatalog(cfg *config.Config, defs []Definition) (*Catalog, error) {
	byKey := make(map[string]Definition, len(defs))
	for _, def := range defs {
		byKey[normalizeKey(def.Key)] = def
	}

	var mounts []*Mount
	var err error
	if cfg != nil && len(cfg.Entries) > 0 {
		for _, entryCfg := range cfg.Entries {
			def, ok := byKey[normalizeKey(entryCfg.Key)]
			if !ok {
				err = multierr.Append(err, fmt.Errorf("entry %s: not registered", entryCfg.Key))
				continue
			}
			mounts = append(mounts, buildMount(def, entryCfg))
		}
	} else {
		for _, def := range defs {
			mounts = append(mounts, buildMount(def, config.EntryConfig{}))
		}
	}

	seen := map[string]string{}
	for _, m := range mounts {
		if m.Definition.Routes == nil {
			err = multierr.Append(err, fmt.Errorf("entry %s: routes factory is required", m.Key))
		} else if verr := probeRoutes(m.Definition); verr != nil {
			err = multierr.Append(err, fmt.Errorf("entry %s: %w", m.Key, verr))
		}
		if other, exists := seen[m.Path]; exists {
			err = multierr.Append(err, fmt.Errorf("entry %s: path %s already used by %s", m.Key, m.Path, other))
			continue
		}
		seen[m.Path] = m.Key
	}
	if err != nil {
		return nil, err
	}

	catalog := &Catalog{
		ordered: mounts,
		mounts:  append([]*Mount(nil), mounts...),
	}
	sort.SliceStable(catalog.mounts, func(i, j int) bool {
		return len(catalog.mounts[i].Path) > len(catalog.mounts[j].Path)
	})
	return catalog, nil
}

// probeRoutes 用一次性的 store 构建路由表并校验，数据客户端为空。
func probeRoutes(def Definition) error {
	reducers := def.Reducers
	st := store.New(nil, func() store.Reducers { return reducers }, nil, nil, false, nil)
	return def.Routes(st, nil).Validate()
}

func buildMount(def Definition, entryCfg config.EntryConfig) *Mount {
	mountPath := entryCfg.Path
	if mountPath == "" {
		mountPath = def.Path
	}
	mountPath = path.Clean("/" + mountPath)

	name := entryCfg.Name
	if name == "" || name == entryCfg.Key {
		if def.Name != "" {
			name = def.Name
		}
	}
	if name == "" {
		name = def.Key
	}

	opts := EntryOptions{
		HTTPClient:   def.HTTPClient,
		ReduxOptions: def.ReduxOptions,
	}
	if !entryCfg.HTTPClient.IsZero() {
		opts.HTTPClient = httpclient.OptionsFromConfig(entryCfg.HTTPClient)
	}

	return &Mount{
		Key:        normalizeKey(def.Key),
		Name:       name,
		Path:       mountPath,
		Definition: def,
		Options:    opts,
	}
}

// Resolve 以最长路径前缀（按段对齐）选出入口，并返回一份深拷贝的 AppConfig，
// 请求内对其的修改不会影响 Catalog 或其他请求。
func (c *Catalog) Resolve(requestPath string) (*AppConfig, error) {
	if c == nil {
		return nil, ErrNoEntry
	}
	clean := path.Clean("/" + requestPath)
	for _, m := range c.mounts {
		if !mounted(m.Path, clean) {
			continue
		}
		return &AppConfig{
			Component: m.Definition.Component,
			Name:      m.Name,
			Key:       m.Key,
			Config:    m.Options.clone(),
			Reducers:  m.Definition.Reducers.Clone(),
			Routes:    m.Definition.Routes,
		}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNoEntry, clean)
}

// List 返回按配置顺序排列的挂载信息副本。
func (c *Catalog) List() []Mount {
	if c == nil || len(c.ordered) == 0 {
		return nil
	}
	result := make([]Mount, len(c.ordered))
	for i, m := range c.ordered {
		result[i] = *m
	}
	return result
}

func mounted(prefix, requestPath string) bool {
	if prefix == "/" || prefix == requestPath {
		return true
	}
	return strings.HasPrefix(requestPath, prefix+"/")
}
