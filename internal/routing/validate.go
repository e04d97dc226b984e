package routing

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// ErrInvalidRoute 表示路由声明不合法。
var ErrInvalidRoute = errors.New("invalid route")

// Validate 检查整张路由表，一次性返回所有问题。
func (t Table) Validate() error {
	return validateRoutes(t, "")
}

func validateRoutes(routes []Route, parent string) error {
	var err error
	for i := range routes {
		r := &routes[i]
		full := strings.TrimRight(parent, "/") + "/" + strings.Trim(r.Path, "/")
		parts := splitPath(r.Path)
		for idx, part := range parts {
			if part == "*" && idx != len(parts)-1 {
				err = multierr.Append(err, fmt.Errorf("%w: %s: catch-all must be the last segment", ErrInvalidRoute, full))
			}
			if part == ":" {
				err = multierr.Append(err, fmt.Errorf("%w: %s: empty parameter name", ErrInvalidRoute, full))
			}
		}
		if r.Component == nil && r.Redirect == "" && len(r.Children) == 0 {
			err = multierr.Append(err, fmt.Errorf("%w: %s: needs a component, redirect or children", ErrInvalidRoute, full))
		}
		if r.Status != 0 && (r.Status < 100 || r.Status > 599) {
			err = multierr.Append(err, fmt.Errorf("%w: %s: status %d out of range", ErrInvalidRoute, full, r.Status))
		}
		if r.CacheTTL < 0 {
			err = multierr.Append(err, fmt.Errorf("%w: %s: negative cache ttl", ErrInvalidRoute, full))
		}
		err = multierr.Append(err, validateRoutes(r.Children, full))
	}
	return err
}
