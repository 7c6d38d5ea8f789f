package xlog

import (
	"context"
	"log/slog"
)

// Logger 日志接口，方法只接受 slog.Attr
type Logger interface {
	Debug(ctx context.Context, msg string, attrs ...slog.Attr)
	Info(ctx context.Context, msg string, attrs ...slog.Attr)
	Warn(ctx context.Context, msg string, attrs ...slog.Attr)
	Error(ctx context.Context, msg string, attrs ...slog.Attr)

	// Log 以指定级别记录，如 LevelNotice、LevelCritical
	Log(ctx context.Context, level Level, msg string, attrs ...slog.Attr)

	// With 返回带额外属性的派生 Logger，与父级共享级别
	With(attrs ...slog.Attr) Logger

	// WithGroup 返回带分组的派生 Logger
	WithGroup(name string) Logger
}

// Leveler 级别控制接口
type Leveler interface {
	// SetLevel 动态设置日志级别，对所有派生 logger 生效
	SetLevel(level Level)

	// GetLevel 获取当前日志级别
	GetLevel() Level

	// Enabled 检查指定级别是否启用
	Enabled(ctx context.Context, level Level) bool

	// ErrorCount 返回写入失败的累计次数
	ErrorCount() uint64
}

// LoggerWithLevel 组合接口，由 Build 返回
type LoggerWithLevel interface {
	Logger
	Leveler
}
