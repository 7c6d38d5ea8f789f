// Package xsink 提供按日期轮转的格式化文件日志 Sink。
//
// # 行格式
//
// 每条记录写成一行：
//
//	Fri, 16 Oct 2026 12:00:00 +0000 [ERROR] request="r1" component="c1": boom - {"foo":"bar"}
//
// 元数据为空且 IgnoreEmptyData 为 true 时省略 "- {...}" 部分。元数据中的 error
// 值在序列化前转为文本。
//
// # 路径
//
// 未配置 LogFile 时，在 VarDir/log/ 下派生一个由安装密钥决定的稳定文件名，
// 见 [DefaultLogFile]。相对路径基于 BaseDir 解析，不允许越出该目录。
//
// 按日期轮转时实际写入的文件为：
//
//	<dir>/YYYY/MM/YYYY-MM-DD-<name>   // DateSubfolder=true
//	<dir>/YYYY-MM-DD-<name>           // DateSubfolder=false
//
// 保留 MaxFiles 个文件（含当前文件），更旧的在轮转时删除。
//
// # 共享
//
// 同一进程内指向同一路径的多个 Sink 通过 [Registry] 共享一个轮转器，写入在该
// 路径上串行执行。每个 Sink 持有一个引用，最后一个 Sink 关闭时文件才被关闭：
//
//	reg := xsink.NewRegistry()
//	a, _ := xsink.New(reg, cfg, env)
//	b, _ := xsink.New(reg, cfg, env) // 与 a 共享
//	a.Close()                        // b 仍可写入
//
// # 错误
//
// 所有错误都是 [*Error]，携带稳定的错误码，配合 [CodeOf] 和 errors.Is 使用。
// 配置错误在 [New] 时返回，未知级别和 I/O 错误在 WriteLog 时返回。
//
// # slog
//
// [NewHandler] 把 Sink 包装为 slog.Handler，slog 级别映射到八个级别。
package xsink
