package store

import "github.com/any-hub/ssr-gateway/internal/httpclient"

// ThunkAction 是异步 action：可以多次 dispatch，并使用请求级数据客户端取数。
type ThunkAction func(dispatch Dispatch, getState func() map[string]any, client *httpclient.Client) error

// Thunk 返回默认的异步 action middleware。
func Thunk() Middleware {
	return func(s *Store) func(next Dispatch) Dispatch {
		return func(next Dispatch) Dispatch {
			return func(action any) error {
				switch fn := action.(type) {
				case ThunkAction:
					return fn(s.Dispatch, s.GetState, s.client)
				case func(Dispatch, func() map[string]any, *httpclient.Client) error:
					return fn(s.Dispatch, s.GetState, s.client)
				default:
					return next(action)
				}
			}
		}
	}
}
