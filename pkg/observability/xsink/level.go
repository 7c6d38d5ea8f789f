package xsink

import (
	"fmt"
	"strconv"
	"strings"
)

// Level 日志级别，数值越小越严重。
type Level int

// 八个级别，编号与 syslog 一致。
const (
	LevelEmergency Level = iota
	LevelAlert
	LevelCritical
	LevelError
	LevelWarning
	LevelNotice
	LevelInfo
	LevelDebug
)

var levelNames = [...]string{
	LevelEmergency: "EMERGENCY",
	LevelAlert:     "ALERT",
	LevelCritical:  "CRITICAL",
	LevelError:     "ERROR",
	LevelWarning:   "WARNING",
	LevelNotice:    "NOTICE",
	LevelInfo:      "INFO",
	LevelDebug:     "DEBUG",
}

// levelSeverities 各级别对应的文件日志严重度
var levelSeverities = [...]int{
	LevelEmergency: 600,
	LevelAlert:     550,
	LevelCritical:  500,
	LevelError:     400,
	LevelWarning:   300,
	LevelNotice:    250,
	LevelInfo:      200,
	LevelDebug:     100,
}

// Valid 报告 l 是否为已知级别。
func (l Level) Valid() bool {
	return l >= LevelEmergency && l <= LevelDebug
}

// String 返回大写级别名，未知级别返回 "Level(n)"。
func (l Level) String() string {
	if !l.Valid() {
		return "Level(" + strconv.Itoa(int(l)) + ")"
	}
	return levelNames[l]
}

// Severity 返回级别对应的严重度（DEBUG=100 … EMERGENCY=600）。
func (l Level) Severity() (int, error) {
	if !l.Valid() {
		return 0, newError(CodeUnknownLevel, "severity", fmt.Errorf("%w: %d", ErrUnknownLevel, int(l)))
	}
	return levelSeverities[l], nil
}

// Enabled 报告级别为 l 的记录在阈值 threshold 下是否需要写入。
func (l Level) Enabled(threshold Level) bool {
	return l <= threshold
}

// ParseLevel 解析级别名，大小写不敏感，"warn" 等同于 "warning"。
func ParseLevel(s string) (Level, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "WARN" {
		return LevelWarning, nil
	}
	for i, n := range levelNames {
		if n == name {
			return Level(i), nil
		}
	}
	return 0, newError(CodeUnknownLevel, "parse level", fmt.Errorf("%w: %q", ErrUnknownLevel, s))
}
