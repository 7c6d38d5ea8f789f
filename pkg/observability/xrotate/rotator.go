package xrotate

import "io"

// 编译时断言：Rotator 接口是 io.WriteCloser 的超集
var _ io.WriteCloser = (Rotator)(nil)

// Rotator 日志轮转器接口
//
// 隐式实现 [io.WriteCloser]，可直接作为 slog handler 或 xsink 的输出目标。
// 所有实现都必须是并发安全的。
//
// 约定：
//   - Close 后调用 Write 或 Rotate 返回 [ErrClosed]
//   - 重复 Close 返回 [ErrClosed]
//   - Rotate 可以在任意时刻调用
type Rotator interface {
	// Write 写入日志数据，触发轮转条件时先轮转再写入
	Write(p []byte) (n int, err error)

	// Close 关闭轮转器，释放文件句柄
	Close() error

	// Rotate 手动触发轮转
	Rotate() error
}

// FileNamer 由能报告当前活跃文件的轮转器实现。
// 按日期轮转的实现在首次写入前返回空字符串。
type FileNamer interface {
	CurrentFile() string
}
