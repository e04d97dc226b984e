package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/any-hub/ssr-gateway/internal/config"
)

// sharedTransport 由所有请求级客户端共用，连接池因此跨请求复用。
var sharedTransport = &http.Transport{
	Proxy:                 http.ProxyFromEnvironment,
	MaxIdleConns:          100,
	MaxIdleConnsPerHost:   100,
	IdleConnTimeout:       90 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ExpectContinueTimeout: 1 * time.Second,
	ForceAttemptHTTP2:     true,
	DialContext: (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
}

const defaultTimeout = 30 * time.Second

// Options 描述渲染期间数据客户端的行为。
type Options struct {
	BaseURL        string
	Timeout        time.Duration
	Headers        map[string]string
	ForwardHeaders []string
}

// Empty 表示选项是否完全留空；空选项不会覆盖调用方提供的默认值。
func (o *Options) Empty() bool {
	if o == nil {
		return true
	}
	return o.BaseURL == "" && o.Timeout == 0 && len(o.Headers) == 0 && len(o.ForwardHeaders) == 0
}

// Clone 返回深拷贝，Headers 与 ForwardHeaders 不与原值共享。
func (o *Options) Clone() *Options {
	if o == nil {
		return nil
	}
	clone := *o
	if o.Headers != nil {
		clone.Headers = maps.Clone(o.Headers)
	}
	if o.ForwardHeaders != nil {
		clone.ForwardHeaders = slices.Clone(o.ForwardHeaders)
	}
	return &clone
}

// OptionsFromConfig 将 TOML 中的 HTTPClient 段转换为运行时选项。
func OptionsFromConfig(cfg *config.HTTPClientConfig) *Options {
	if cfg.IsZero() {
		return &Options{}
	}
	headers := make(map[string]string, len(cfg.Headers))
	for k, v := range cfg.Headers {
		headers[k] = v
	}
	return &Options{
		BaseURL:        cfg.BaseURL,
		Timeout:        cfg.Timeout.DurationValue(),
		Headers:        headers,
		ForwardHeaders: append([]string(nil), cfg.ForwardHeaders...),
	}
}

// IncomingRequest 是数据客户端需要读取的入站请求视图。
type IncomingRequest interface {
	Get(key string) string
}

// OutgoingResponse 是数据客户端回写 Set-Cookie 所需的响应视图。
type OutgoingResponse interface {
	Append(key, value string)
}

// Client 绑定单个请求：转发入站 Cookie 与指定头，并把上游 Set-Cookie 回写给浏览器。
type Client struct {
	http    *http.Client
	opts    Options
	forward http.Header
	res     OutgoingResponse
}

// New 为当前请求构建数据客户端，opts 为空时使用零值选项。
func New(opts *Options, req IncomingRequest, res OutgoingResponse) *Client {
	resolved := Options{}
	if opts != nil {
		resolved = *opts
	}
	timeout := resolved.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	forward := http.Header{}
	if req != nil {
		if cookie := req.Get("Cookie"); cookie != "" {
			forward.Set("Cookie", cookie)
		}
		for _, name := range resolved.ForwardHeaders {
			if isHopByHopHeader(name) {
				continue
			}
			if value := req.Get(name); value != "" {
				forward.Set(name, value)
			}
		}
	}

	return &Client{
		http: &http.Client{
			Timeout:   timeout,
			Transport: sharedTransport,
		},
		opts:    resolved,
		forward: forward,
		res:     res,
	}
}

// Options 返回客户端生效的选项副本。
func (c *Client) Options() Options {
	return c.opts
}

// Do 发送请求：相对地址基于 BaseURL 解析，并注入默认头与转发头。
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if req.URL != nil && !req.URL.IsAbs() && c.opts.BaseURL != "" {
		base, err := url.Parse(c.opts.BaseURL + "/")
		if err != nil {
			return nil, fmt.Errorf("parse base url: %w", err)
		}
		req.URL = base.ResolveReference(&url.URL{
			Path:     strings.TrimPrefix(req.URL.Path, "/"),
			RawQuery: req.URL.RawQuery,
		})
		req.Host = req.URL.Host
	}
	for key, value := range c.opts.Headers {
		if req.Header.Get(key) == "" {
			req.Header.Set(key, value)
		}
	}
	CopyHeaders(req.Header, c.forward)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if c.res != nil {
		for _, cookie := range resp.Header.Values("Set-Cookie") {
			c.res.Append("Set-Cookie", cookie)
		}
	}
	return resp, nil
}

// Get 以 GET 请求 path（相对 BaseURL 或绝对地址）。
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

// GetJSON 请求 path 并将 2xx 响应体解码到 out。
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	resp, err := c.Get(ctx, path)
	if err != nil {
		return err
	}
	defer func() {
		// 读尽响应体，连接才能回到连接池
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("GET %s: unexpected status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// hopByHopHeaders 定义 RFC 7230 中禁止代理转发的头部。
var hopByHopHeaders = map[string]struct{}{
	"Connection":          {},
	"Keep-Alive":          {},
	"Proxy-Authenticate":  {},
	"Proxy-Authorization": {},
	"Te":                  {},
	"Trailer":             {},
	"Transfer-Encoding":   {},
	"Upgrade":             {},
	"Proxy-Connection":    {}, // 非标准字段，但部分代理仍使用
}

// CopyHeaders 将 src 中允许透传的头复制到 dst，自动忽略 hop-by-hop 字段。
func CopyHeaders(dst, src http.Header) {
	for key, values := range src {
		if isHopByHopHeader(key) {
			continue
		}
		for _, value := range values {
			dst.Add(key, value)
		}
	}
}

func isHopByHopHeader(key string) bool {
	_, ok := hopByHopHeaders[textproto.CanonicalMIMEHeaderKey(key)]
	return ok
}
