// Package xjson 提供 JSON 序列化工具函数。
//
//   - [Compact]: 单行 JSON，不转义 HTML 字符，不带结尾换行，用于日志行内嵌数据
//   - [Pretty]: 缩进格式化输出，用于命令行展示和调试，失败时返回
//     "<marshal error: ...>" 标记字符串（非合法 JSON）
//
// map 的键按字典序输出（[encoding/json] 默认行为），同一输入的输出稳定。
package xjson
