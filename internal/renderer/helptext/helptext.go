// Package helptext 向运维日志输出排障提示。
package helptext

import "github.com/sirupsen/logrus"

// Missing404Text 在路由表没有命中任何路由（且未声明兜底路由）时输出。
var Missing404Text = []string{
	"No route matched the request path and the route table has no catch-all route.",
	`Add a route with Path "*" to render a custom not-found page.`,
	"The gateway answered with a bare 404 for this request.",
}

// Show 逐行输出提示，logger 为空时忽略。
func Show(text []string, logger *logrus.Logger) {
	if logger == nil {
		return
	}
	entry := logger.WithField("action", "help")
	for _, line := range text {
		entry.Warn(line)
	}
}
