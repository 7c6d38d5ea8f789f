package xsink

import (
	"errors"
	"strconv"
)

// Code 稳定的错误码，写入日志或上报监控时可直接使用。
type Code int

// 错误码。数值对外公开，发布后不再变更。
const (
	// CodeInvalidLogFile 日志路径为空或无法解析。
	CodeInvalidLogFile Code = 1444374805

	// CodeInvalidConfig 配置字段取值非法。
	CodeInvalidConfig Code = 1444374806

	// CodeWriteFailed 格式化或追加写入失败。
	CodeWriteFailed Code = 1345036335

	// CodeUnknownLevel 记录的级别不在八个已知级别内。
	CodeUnknownLevel Code = 1345036336

	// CodeClosed Sink 已关闭。
	CodeClosed Code = 1345036337
)

var (
	// ErrInvalidLogFile 表示日志路径为空、包含非法字符、越出基准目录或协议不受支持。
	ErrInvalidLogFile = errors.New("xsink: invalid log file path")

	// ErrNoVarDir 未配置日志路径且 VarDir 为空，无法派生默认路径。
	ErrNoVarDir = errors.New("xsink: no log file configured and var dir is empty")

	// ErrInvalidConfig 表示配置取值非法。
	ErrInvalidConfig = errors.New("xsink: invalid config")

	// ErrNilRegistry 表示未传入 Registry。
	ErrNilRegistry = errors.New("xsink: nil registry")

	// ErrUnknownLevel 表示未知的日志级别。
	ErrUnknownLevel = errors.New("xsink: unknown level")

	// ErrWriteFailed 表示写入日志文件失败。
	ErrWriteFailed = errors.New("xsink: write failed")

	// ErrClosed 表示 Sink 已关闭。
	ErrClosed = errors.New("xsink: sink closed")

	// ErrReleased 表示 Handle 已释放。
	ErrReleased = errors.New("xsink: handle released")
)

// Error 携带错误码的错误。
//
// 使用 [errors.Is] 判断具体原因，使用 [CodeOf] 取错误码：
//
//	if xsink.CodeOf(err) == xsink.CodeInvalidLogFile { ... }
type Error struct {
	// Code 错误码
	Code Code
	// Op 出错的操作，如 "resolve"、"write"
	Op string
	// Err 底层错误
	Err error
}

func newError(code Code, op string, err error) *Error {
	return &Error{Code: code, Op: op, Err: err}
}

func (e *Error) Error() string {
	msg := "xsink: " + e.Op
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg + " (code " + strconv.Itoa(int(e.Code)) + ")"
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf 返回 err 链中第一个 [*Error] 的错误码，没有时返回 0。
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}
