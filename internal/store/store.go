// Package store 提供每个请求独享的状态容器：reducer 计算状态、middleware 链包装 dispatch。
package store

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/any-hub/ssr-gateway/internal/httpclient"
)

// Action 是一次状态变更的描述。
type Action struct {
	Type    string
	Payload any
}

// Reducer 根据当前 slice 状态与 action 计算新状态；state 初次为 nil。
type Reducer func(state any, action Action) any

// Reducers 以 slice 名称组织 reducer。
type Reducers map[string]Reducer

// Dispatch 向 store 发送 action；middleware 可以接受 Action 之外的值（例如 ThunkAction）。
type Dispatch func(action any) error

// Middleware 包装下一层 dispatch。
type Middleware func(s *Store) func(next Dispatch) Dispatch

// Options 描述 store 使用的 middleware 列表与异步 action middleware。
type Options struct {
	Middlewares []Middleware
	Thunk       Middleware
}

// Clone 复制 Options，Middlewares 切片不与原值共享。
func (o *Options) Clone() *Options {
	if o == nil {
		return nil
	}
	clone := *o
	if o.Middlewares != nil {
		clone.Middlewares = slices.Clone(o.Middlewares)
	}
	return &clone
}

// Clone 返回 reducer 表的浅层副本，增删 slice 不影响原表。
func (r Reducers) Clone() Reducers {
	if r == nil {
		return nil
	}
	return maps.Clone(r)
}

// SubscribeFn 由热更新宿主提供：当 reducer 源码变化时回调 onChange。
type SubscribeFn func(onChange func())

// ErrUnknownAction 表示 dispatch 收到了无法处理的值。
var ErrUnknownAction = errors.New("store: unsupported action value")

// initAction 在创建和替换 reducer 时派发，用于让各 slice 生成初始状态。
const initAction = "@@store/INIT"

// Store 不在请求之间共享。
type Store struct {
	mu       sync.RWMutex
	state    map[string]any
	reducers Reducers
	load     func() Reducers
	client   *httpclient.Client
	dispatch Dispatch
	devMode  bool
}

// New 创建一个新的请求级 store。
//
// reducers 为惰性访问器：热更新时会被重新调用以获取最新 reducer。
// subscribe 仅在宿主支持热更新时传入，nil 表示不订阅。
func New(
	client *httpclient.Client,
	reducers func() Reducers,
	middlewares []Middleware,
	subscribe SubscribeFn,
	devMode bool,
	thunk Middleware,
) *Store {
	s := &Store{
		state:   map[string]any{},
		load:    reducers,
		client:  client,
		devMode: devMode,
	}
	s.setReducers(s.loadReducers())

	chain := make([]Middleware, 0, len(middlewares)+1)
	if thunk != nil {
		chain = append(chain, thunk)
	}
	chain = append(chain, middlewares...)

	dispatch := Dispatch(s.baseDispatch)
	for i := len(chain) - 1; i >= 0; i-- {
		if chain[i] == nil {
			continue
		}
		dispatch = chain[i](s)(dispatch)
	}
	s.dispatch = dispatch

	if subscribe != nil {
		subscribe(func() {
			s.ReplaceReducers(s.loadReducers())
		})
	}
	return s
}

// Dispatch 通过 middleware 链派发 action。
func (s *Store) Dispatch(action any) error {
	return s.dispatch(action)
}

// GetState 返回状态快照，调用方不应修改其中的引用值。
func (s *Store) GetState() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make(map[string]any, len(s.state))
	for k, v := range s.state {
		snapshot[k] = v
	}
	return snapshot
}

// Slice 返回单个 slice 的状态。
func (s *Store) Slice(name string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.state[name]
	return v, ok
}

// HTTPClient 返回与当前请求绑定的数据客户端。
func (s *Store) HTTPClient() *httpclient.Client {
	return s.client
}

// DevMode 表示 store 是否运行在热更新宿主下。
func (s *Store) DevMode() bool {
	return s.devMode
}

// ReplaceReducers 替换 reducer 并重新派发初始化 action，保留已有 slice 状态。
func (s *Store) ReplaceReducers(reducers Reducers) {
	s.setReducers(reducers)
}

func (s *Store) loadReducers() Reducers {
	if s.load == nil {
		return nil
	}
	return s.load()
}

func (s *Store) setReducers(reducers Reducers) {
	merged := Reducers{renderSlice: renderReducer}
	for name, reducer := range reducers {
		if reducer != nil {
			merged[name] = reducer
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reducers = merged
	s.reduceLocked(Action{Type: initAction})
}

func (s *Store) baseDispatch(action any) error {
	a, ok := action.(Action)
	if !ok {
		if p, isPtr := action.(*Action); isPtr && p != nil {
			a = *p
		} else {
			return fmt.Errorf("%w: %T", ErrUnknownAction, action)
		}
	}
	if a.Type == "" {
		return fmt.Errorf("%w: empty action type", ErrUnknownAction)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reduceLocked(a)
	return nil
}

func (s *Store) reduceLocked(action Action) {
	for name, reducer := range s.reducers {
		s.state[name] = reducer(s.state[name], action)
	}
}
