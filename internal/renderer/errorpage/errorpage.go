// Package errorpage 是默认的错误响应方。
package errorpage

import (
	"fmt"
	"net/http"

	"github.com/a-h/templ"
)

// Response 是输出错误页所需的响应视图。
type Response interface {
	Set(key, value string)
	Status(code int)
	SendString(body string) error
}

const productionPage = `<!DOCTYPE html><html><head><meta charset="utf-8"><title>Internal Server Error</title></head>` +
	`<body><h1>Internal Server Error</h1><p>Something went wrong while rendering this page.</p></body></html>`

// Respond 输出 500 页面：生产模式只给出通用文案，其他模式附带转义后的错误详情。
func Respond(production bool, res Response, err error) error {
	res.Set("Content-Type", "text/html; charset=utf-8")
	res.Set("Cache-Control", "no-store")
	res.Status(http.StatusInternalServerError)
	if production || err == nil {
		return res.SendString(productionPage)
	}
	detail := templ.EscapeString(fmt.Sprintf("%+v", err))
	return res.SendString(`<!DOCTYPE html><html><head><meta charset="utf-8"><title>Render Error</title></head>` +
		`<body><h1>Render Error</h1><pre>` + detail + `</pre></body></html>`)
}
