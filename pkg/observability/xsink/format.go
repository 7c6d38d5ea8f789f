package xsink

import (
	"fmt"
	"strings"
	"time"

	"github.com/omeyang/xlogsink/pkg/util/xjson"
)

// FormatLine 将记录格式化为一行文本（以换行结尾）：
//
//	<RFC1123Z 时间> [<级别>] request="<RequestID>" component="<Component>": <Message> <data>
//
// data 为 "- " 加元数据的 JSON；元数据为空且 ignoreEmpty 为 true 时 data 为空，
// 此时行尾保留消息后的一个空格。元数据中的 error 值按 "%+v" 转为文本。
func FormatLine(r Record, ignoreEmpty bool) ([]byte, error) {
	if !r.Level.Valid() {
		return nil, newError(CodeUnknownLevel, "format", fmt.Errorf("%w: %d", ErrUnknownLevel, int(r.Level)))
	}
	created := r.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	var data string
	if len(r.Data) > 0 || !ignoreEmpty {
		js, err := xjson.Compact(normalizeData(r.Data))
		if err != nil {
			return nil, newError(CodeWriteFailed, "format", fmt.Errorf("%w: %w", ErrWriteFailed, err))
		}
		data = "- " + js
	}

	var b strings.Builder
	b.Grow(64 + len(r.RequestID) + len(r.Component) + len(r.Message) + len(data))
	b.WriteString(created.Format(time.RFC1123Z))
	b.WriteString(" [")
	b.WriteString(r.Level.String())
	b.WriteString(`] request="`)
	b.WriteString(r.RequestID)
	b.WriteString(`" component="`)
	b.WriteString(r.Component)
	b.WriteString(`": `)
	b.WriteString(r.Message)
	b.WriteByte(' ')
	b.WriteString(data)
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

// normalizeData 复制元数据，将 error 值替换为文本，不修改调用方的 map
func normalizeData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case error:
		return fmt.Sprintf("%+v", val)
	case map[string]any:
		return normalizeData(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return v
	}
}
