// Package util 提供通用工具相关的子包。
//
// 子包列表：
//   - xfile: 路径规范化、基准目录内安全拼接、父目录创建
//   - xjson: 不转义 HTML 的单行 JSON 与格式化 JSON
package util
