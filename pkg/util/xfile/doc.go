// Package xfile 提供日志路径相关的文件系统工具。
//
//   - SanitizePath: 规范化文件路径，拒绝空路径、空字节、相对路径穿越和目录路径
//   - SafeJoin: 将相对路径拼接到基准目录，结果保证仍在基准目录内
//   - EnsureDir: 创建文件的父目录
//
// 路径穿越检测按路径段精确匹配，只有 ".." 作为独立路径段时才被拒绝，
// "app..2024.log"、"..config" 之类的文件名是合法的：
//
//	SafeJoin("/var/www", "var/log/app.log") // "/var/www/var/log/app.log"
//	SafeJoin("/var/www", "../etc/passwd")   // ErrPathTraversal
//
// 预定义错误变量支持 [errors.Is] 判断。
package xfile
