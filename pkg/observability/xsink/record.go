package xsink

import "time"

// Record 一条日志记录。
type Record struct {
	// CreatedAt 记录时间，零值时由 Sink 使用当前时间
	CreatedAt time.Time

	// Level 日志级别
	Level Level

	// RequestID 请求标识
	RequestID string

	// Component 产生日志的组件
	Component string

	// Message 日志消息
	Message string

	// Data 结构化元数据，其中的 error 值在序列化前转为文本
	Data map[string]any
}
