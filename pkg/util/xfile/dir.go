package xfile

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultDirPerm 默认目录权限（所有者 rwx，组 r-x，其他无）
const DefaultDirPerm = 0750

// EnsureDir 确保文件的父目录存在，已存在时不修改其权限
//
// 底层使用 os.MkdirAll，会跟随符号链接。不可信输入应先经
// [SanitizePath] 或 [SafeJoin] 校验。
func EnsureDir(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename is required: %w", ErrEmptyPath)
	}
	if containsNullByte(filename) {
		return fmt.Errorf("filename contains null byte: %w", ErrNullByte)
	}
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, DefaultDirPerm)
}
