package store

const (
	renderSlice         = "_render"
	actionSetStatusCode = "@@render/SET_STATUS_CODE"
)

// RenderState 记录渲染过程中由业务代码决定的响应属性。
type RenderState struct {
	StatusCode int
}

func renderReducer(state any, action Action) any {
	current, _ := state.(RenderState)
	if action.Type == actionSetStatusCode {
		if code, ok := action.Payload.(int); ok {
			current.StatusCode = code
		}
	}
	return current
}

// SetStatusCode 构造设置响应状态码的 action，常在 on-enter 回调中派发。
func SetStatusCode(code int) Action {
	return Action{Type: actionSetStatusCode, Payload: code}
}

// StatusCode 返回 store 中记录的状态码，未设置时返回 0。
func (s *Store) StatusCode() int {
	v, ok := s.Slice(renderSlice)
	if !ok {
		return 0
	}
	state, _ := v.(RenderState)
	return state.StatusCode
}
