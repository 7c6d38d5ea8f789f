// Package observability 提供日志与可观测性相关的子包。
//
// 子包列表：
//   - xsink: 按日期轮转的格式化文件日志 Sink，多个 Sink 按路径共享文件
//   - xrotate: 日志文件轮转（按日期 file-rotatelogs，按大小 lumberjack）
//   - xlog: 结构化日志，基于 log/slog，可通过 xsink 的 slog 桥接写入文件
//   - xmetrics: 统一观测接口及 OpenTelemetry 实现
package observability
