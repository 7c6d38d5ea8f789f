// Package xlog 基于 log/slog 的结构化日志库，用于命令行工具自身的诊断输出。
//
// 使用 Builder 创建：
//
//	logger, cleanup, err := xlog.New().
//		SetLevelString("debug").
//		SetFormat("json").
//		Build()
//	defer cleanup()
//
// 可选项：SetOutput、SetRotation（按大小轮转的文件）、SetHandler（任意 slog.Handler，
// 例如 xsink.NewHandler 把诊断日志写入格式化文件）、SetReplaceAttr、SetOnError。
//
// Handler 写入失败不会返回给调用方，而是计入 ErrorCount 并通知 SetOnError 设置的回调。
//
// 级别为 LevelDebug(-4)、LevelInfo(0)、LevelWarn(4)、LevelError(8)，
// 派生 logger 共享父级的级别，SetLevel 对所有派生 logger 生效。
package xlog
