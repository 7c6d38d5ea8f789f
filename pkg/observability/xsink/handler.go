package xsink

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// slog 扩展级别，与 slog.LevelDebug/Info/Warn/Error 组成八级。
const (
	SlogLevelNotice    = slog.Level(2)
	SlogLevelCritical  = slog.Level(12)
	SlogLevelAlert     = slog.Level(16)
	SlogLevelEmergency = slog.Level(20)
)

// 从属性中提升为记录字段的键
const (
	KeyRequestID = "request_id"
	KeyComponent = "component"
)

// SlogLevel 返回 l 对应的 slog 级别。
func SlogLevel(l Level) slog.Level {
	switch l {
	case LevelEmergency:
		return SlogLevelEmergency
	case LevelAlert:
		return SlogLevelAlert
	case LevelCritical:
		return SlogLevelCritical
	case LevelError:
		return slog.LevelError
	case LevelWarning:
		return slog.LevelWarn
	case LevelNotice:
		return SlogLevelNotice
	case LevelInfo:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// LevelFromSlog 将 slog 级别归入八级中不高于它的最近一级。
func LevelFromSlog(l slog.Level) Level {
	switch {
	case l >= SlogLevelEmergency:
		return LevelEmergency
	case l >= SlogLevelAlert:
		return LevelAlert
	case l >= SlogLevelCritical:
		return LevelCritical
	case l >= slog.LevelError:
		return LevelError
	case l >= slog.LevelWarn:
		return LevelWarning
	case l >= SlogLevelNotice:
		return LevelNotice
	case l >= slog.LevelInfo:
		return LevelInfo
	default:
		return LevelDebug
	}
}

// HandlerOptions slog 桥接选项
type HandlerOptions struct {
	// Component 记录未携带 component 属性时使用的组件名
	Component string

	// Level 最低级别，nil 表示 slog.LevelDebug
	Level slog.Leveler
}

// Handler 将 slog 记录转写到 [Sink] 的 slog.Handler。
//
// 属性写入 Record.Data，分组嵌套为子 map；顶层的 request_id 和 component
// 属性提升为 Record.RequestID 和 Record.Component。
type Handler struct {
	sink      Sink
	component string
	level     slog.Leveler
	data      map[string]any
	groups    []string
}

var _ slog.Handler = (*Handler)(nil)

// NewHandler 创建 slog 桥接 Handler，opts 可为 nil。
func NewHandler(sink Sink, opts *HandlerOptions) *Handler {
	h := &Handler{sink: sink, level: slog.LevelDebug}
	if opts != nil {
		h.component = opts.Component
		if opts.Level != nil {
			h.level = opts.Level
		}
	}
	return h
}

// Enabled 实现 slog.Handler。
func (h *Handler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

// Handle 实现 slog.Handler，Sink 的错误原样返回。
func (h *Handler) Handle(ctx context.Context, rec slog.Record) error {
	data := copyData(h.data)
	rec.Attrs(func(a slog.Attr) bool {
		addAttr(data, h.groups, a)
		return true
	})

	r := Record{
		CreatedAt: rec.Time,
		Level:     LevelFromSlog(rec.Level),
		Component: h.component,
		Message:   rec.Message,
	}
	if v, ok := data[KeyRequestID]; ok {
		r.RequestID = fmt.Sprint(v)
		delete(data, KeyRequestID)
	}
	if v, ok := data[KeyComponent]; ok {
		r.Component = fmt.Sprint(v)
		delete(data, KeyComponent)
	}
	if len(data) > 0 {
		r.Data = data
	}
	return h.sink.WriteLog(ctx, r)
}

// WithAttrs 实现 slog.Handler。
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	h2 := h.clone()
	h2.data = copyData(h.data)
	for _, a := range attrs {
		addAttr(h2.data, h.groups, a)
	}
	return h2
}

// WithGroup 实现 slog.Handler。
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := h.clone()
	h2.groups = append(h.groups[:len(h.groups):len(h.groups)], name)
	return h2
}

func (h *Handler) clone() *Handler {
	h2 := *h
	return &h2
}

// addAttr 将 a 写入 data 中 groups 指定的子 map，空分组不创建
func addAttr(data map[string]any, groups []string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		if len(attrs) == 0 {
			return
		}
		sub := groups
		if a.Key != "" {
			sub = append(groups[:len(groups):len(groups)], a.Key)
		}
		for _, ga := range attrs {
			addAttr(data, sub, ga)
		}
		return
	}

	m := data
	for _, g := range groups {
		next, ok := m[g].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[g] = next
		}
		m = next
	}
	m[a.Key] = attrValue(a.Value)
}

func attrValue(v slog.Value) any {
	switch v.Kind() {
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339Nano)
	default:
		return v.Any()
	}
}

// copyData 深拷贝嵌套的 map[string]any
func copyData(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for k, v := range src {
		if m, ok := v.(map[string]any); ok {
			dst[k] = copyData(m)
			continue
		}
		dst[k] = v
	}
	return dst
}
