package xsink

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/omeyang/xlogsink/pkg/observability/xmetrics"
	"github.com/omeyang/xlogsink/pkg/observability/xrotate"
)

const (
	componentName  = "xsink"
	operationWrite = "write_log"
)

// Sink 日志写入能力。
type Sink interface {
	// WriteLog 同步写入一条记录，失败时返回携带错误码的错误。
	WriteLog(ctx context.Context, r Record) error
}

// Option Sink 选项函数
type Option func(*options)

type options struct {
	observer xmetrics.Observer
	clock    func() time.Time
}

// WithObserver 设置观测器，每次写入产生一个跨度。
func WithObserver(o xmetrics.Observer) Option {
	return func(opts *options) {
		opts.observer = o
	}
}

// WithClock 设置时钟，用于补全记录时间和决定按日期轮转的边界。
//
// 同一路径上的 Sink 共享第一个 Sink 创建的轮转器，轮转时钟也以它为准。
func WithClock(now func() time.Time) Option {
	return func(opts *options) {
		opts.clock = now
	}
}

// FileSink 写入按日期（或大小）轮转文件的 Sink。
type FileSink struct {
	cfg       Config
	logFile   string
	threshold Level
	handle    *Handle
	observer  xmetrics.Observer
	now       func() time.Time
	closed    atomic.Bool
}

var _ Sink = (*FileSink)(nil)

// New 创建 FileSink。
//
// 日志路径由 [LogFilePath] 得到。
// 路径解析失败、配置非法或轮转器无法创建时返回错误，不会延迟到首次写入。
// 相同路径的 Sink 通过 reg 共享轮转器，配置以第一个创建者为准。
func New(reg *Registry, cfg Config, env Environment, opts ...Option) (*FileSink, error) {
	if reg == nil {
		return nil, newError(CodeInvalidConfig, "new", ErrNilRegistry)
	}
	o := options{observer: xmetrics.NoopObserver{}, clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.clock == nil {
		o.clock = time.Now
	}
	if o.observer == nil {
		o.observer = xmetrics.NoopObserver{}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	threshold, err := cfg.threshold()
	if err != nil {
		return nil, newError(CodeInvalidConfig, "new", err)
	}

	logFile, err := LogFilePath(cfg, env)
	if err != nil {
		return nil, err
	}

	handle, err := reg.Acquire(logFile, func() (xrotate.Rotator, error) {
		return openRotator(logFile, cfg, o.clock)
	})
	if err != nil {
		return nil, newError(CodeInvalidLogFile, "open", fmt.Errorf("%w %q: %w", ErrInvalidLogFile, logFile, err))
	}

	return &FileSink{
		cfg:       cfg,
		logFile:   logFile,
		threshold: threshold,
		handle:    handle,
		observer:  o.observer,
		now:       o.clock,
	}, nil
}

func openRotator(path string, cfg Config, clock func() time.Time) (xrotate.Rotator, error) {
	if cfg.Rotation == RotationSize {
		return xrotate.NewLumberjack(path,
			xrotate.WithMaxSize(cfg.MaxSizeMB),
			xrotate.WithMaxBackups(cfg.MaxFiles-1),
			xrotate.WithCompress(cfg.Compress),
			xrotate.WithLocalTime(true),
		)
	}
	return xrotate.NewDaily(path,
		xrotate.WithMaxFiles(cfg.MaxFiles),
		xrotate.WithDateSubfolder(cfg.DateSubfolder),
		xrotate.WithClock(clock),
	)
}

// WriteLog 格式化并追加一条记录。
//
// 未知级别返回 [ErrUnknownLevel]；低于 MinLevel 的记录直接丢弃并返回 nil；
// 追加失败返回 [ErrWriteFailed]，关闭后返回 [ErrClosed]。
func (s *FileSink) WriteLog(ctx context.Context, r Record) (err error) {
	if s.closed.Load() {
		return newError(CodeClosed, "write", ErrClosed)
	}
	if !r.Level.Valid() {
		return newError(CodeUnknownLevel, "write", fmt.Errorf("%w: %d", ErrUnknownLevel, int(r.Level)))
	}
	if !r.Level.Enabled(s.threshold) {
		return nil
	}

	_, span := xmetrics.Start(ctx, s.observer, xmetrics.SpanOptions{
		Component: componentName,
		Operation: operationWrite,
		Kind:      xmetrics.KindClient,
		Attrs: []xmetrics.Attr{
			xmetrics.String("level", r.Level.String()),
			xmetrics.String("log_file", s.logFile),
		},
	})
	defer func() { span.End(xmetrics.Result{Err: err}) }()

	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}
	line, err := FormatLine(r, s.cfg.IgnoreEmptyData)
	if err != nil {
		return err
	}
	if _, werr := s.handle.Write(line); werr != nil {
		if errors.Is(werr, ErrReleased) || errors.Is(werr, xrotate.ErrClosed) {
			return newError(CodeClosed, "write", ErrClosed)
		}
		return newError(CodeWriteFailed, "write", fmt.Errorf("%w: %s: %w", ErrWriteFailed, s.logFile, werr))
	}
	return nil
}

// Rotate 手动轮转当前路径的文件。
func (s *FileSink) Rotate() error {
	if s.closed.Load() {
		return newError(CodeClosed, "rotate", ErrClosed)
	}
	if err := s.handle.Rotate(); err != nil {
		if errors.Is(err, ErrReleased) || errors.Is(err, xrotate.ErrClosed) {
			return newError(CodeClosed, "rotate", ErrClosed)
		}
		return newError(CodeWriteFailed, "rotate", fmt.Errorf("%w: %w", ErrWriteFailed, err))
	}
	return nil
}

// Close 释放共享轮转器的引用，重复调用返回 [ErrClosed]。
func (s *FileSink) Close() error {
	if s.closed.Swap(true) {
		return newError(CodeClosed, "close", ErrClosed)
	}
	if err := s.handle.Release(); err != nil {
		return newError(CodeWriteFailed, "close", err)
	}
	return nil
}

// LogFile 返回解析后的日志路径。
func (s *FileSink) LogFile() string {
	return s.logFile
}

// CurrentFile 返回当前写入的文件，按日期轮转时首次写入前为空。
func (s *FileSink) CurrentFile() string {
	return s.handle.CurrentFile()
}

// Config 返回创建时的配置。
func (s *FileSink) Config() Config {
	return s.cfg
}
