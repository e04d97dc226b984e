package render

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/a-h/templ"
)

// DefaultBody 把正文放进 id="main" 的容器，config 中的键值以 data-* 属性输出。
func DefaultBody(html string, config map[string]string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<div id="main"`)
		keys := make([]string, 0, len(config))
		for k := range config {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, ` data-%s="%s"`, templ.EscapeString(k), templ.EscapeString(config[k]))
		}
		b.WriteString(">")
		b.WriteString(html)
		b.WriteString("</div>")
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// DefaultBodyWrapper 输出 <html> 文档骨架。
func DefaultBodyWrapper(doc DocumentProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<html><head><meta charset="utf-8">`)
		if doc.AppName != "" {
			b.WriteString("<title>" + templ.EscapeString(doc.AppName) + "</title>")
		}
		for _, tag := range doc.Head {
			b.WriteString(tag)
		}
		if len(doc.Head) == 0 {
			for _, tag := range styleTags(doc.Styles) {
				b.WriteString(tag)
			}
		}
		b.WriteString("</head><body>")
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		if doc.Body != nil {
			if err := doc.Body.Render(ctx, w); err != nil {
				return err
			}
		}

		b.Reset()
		if doc.EnvScript != "" {
			b.WriteString("<script>" + doc.EnvScript + "</script>")
		}
		if doc.LoadJS != "" {
			b.WriteString("<script>" + doc.LoadJS + "</script>")
		}
		for _, src := range doc.Scripts {
			fmt.Fprintf(&b, `<script src="%s"></script>`, templ.EscapeString(src))
		}
		b.WriteString("</body></html>")
		_, err := io.WriteString(w, b.String())
		return err
	})
}
