package xjson

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Compact 将 v 序列化为单行 JSON 字符串。
//
// 与 json.Marshal 的区别：'<'、'>'、'&' 原样输出，结尾没有换行。
func Compact(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("%w: %w", ErrMarshal, err)
	}
	// Encoder 总是追加一个换行
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// Pretty 将任意值序列化为格式化的 JSON 字符串。
// 序列化失败时返回 "<marshal error: ...>"。
func Pretty(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("<marshal error: %v>", err)
	}
	return string(data)
}
