// Package xrotate 提供日志文件轮转功能。
//
// Rotator 接口定义了轮转器的核心行为（Write/Close/Rotate），所有实现并发安全。
//
// # 当前实现
//
//   - [NewDaily]: 基于 file-rotatelogs 的按日期轮转，文件名带日期戳，按数量保留
//   - [NewLumberjack]: 基于 lumberjack v2 的按大小轮转
//
// # 按日期轮转的文件布局
//
// 以 /var/app/log/app.log 为例，启用日期子目录（默认）时：
//
//	/var/app/log/2026/10/2026-10-16-app.log
//
// 关闭日期子目录时：
//
//	/var/app/log/2026-10-16-app.log
//
// 跨日后的第一次 Write 先删除超出保留数量的最旧文件，再切换到新文件写入。
// 保留数量包含当前活跃文件和 Rotate 产生的带序号文件，删除在 Write 返回前完成。
//
// # 扩展新实现
//
//  1. 创建新文件实现 Rotator 接口
//  2. 定义独立的 Config 和 Option
//  3. 提供独立的构造函数
//  4. 不修改 Rotator 接口
package xrotate
