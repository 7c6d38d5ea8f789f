// Package xconf 提供配置加载和解析功能，基于 koanf 实现。
//
// xconf 只负责文件/字节数据的加载和反序列化，不做默认值注入和字段校验，
// 这些由使用方（如 xsink.LoadConfig）在 Unmarshal 前后完成。
// 配置在加载后不可变，不提供热重载。
//
// # 支持的格式
//
//   - YAML（默认，推荐）：.yaml, .yml
//   - JSON：.json
//
// # Unmarshal
//
// Unmarshal 使用 mapstructure 反序列化，允许弱类型转换（如 "31" 转为 31）。
// 目标结构体中已有的字段值在配置缺少对应键时保持不变，可先填入默认值再 Unmarshal：
//
//	cfg := xsink.DefaultConfig()
//	if err := c.Unmarshal("xsink", &cfg); err != nil { ... }
package xconf
