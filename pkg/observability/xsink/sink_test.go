package xsink

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xlogsink/pkg/observability/xmetrics"
)

// testClock 可手动推进的时钟
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func day(d int) time.Time {
	return time.Date(2026, time.October, d, 12, 0, 0, 0, time.UTC)
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func newTestSink(t *testing.T, reg *Registry, cfg Config, opts ...Option) (*FileSink, string) {
	t.Helper()
	dir := t.TempDir()
	if cfg.LogFile == "" {
		cfg.LogFile = "app.log"
	}
	s, err := New(reg, cfg, Environment{BaseDir: dir}, opts...)
	require.NoError(t, err)
	return s, dir
}

func TestFileSinkWritesDatedFile(t *testing.T) {
	clock := &testClock{now: day(16)}
	s, dir := newTestSink(t, NewRegistry(), DefaultConfig(), WithClock(clock.Now))
	defer func() { assert.NoError(t, s.Close()) }()

	assert.Equal(t, filepath.Join(dir, "app.log"), s.LogFile())

	require.NoError(t, s.WriteLog(context.Background(), Record{
		CreatedAt: day(16),
		Level:     LevelError,
		RequestID: "r1",
		Component: "c1",
		Message:   "boom",
	}))
	require.NoError(t, s.WriteLog(context.Background(), Record{
		Level:     LevelInfo,
		RequestID: "r2",
		Component: "c1",
		Message:   "hello",
		Data:      map[string]any{"foo": "bar"},
	}))

	want := filepath.Join(dir, "2026", "10", "2026-10-16-app.log")
	assert.Equal(t, want, s.CurrentFile())

	lines := readLines(t, want)
	require.Len(t, lines, 2)
	assert.Equal(t, `Fri, 16 Oct 2026 12:00:00 +0000 [ERROR] request="r1" component="c1": boom `, lines[0])
	// 零值时间由时钟补全
	assert.Equal(t, `Fri, 16 Oct 2026 12:00:00 +0000 [INFO] request="r2" component="c1": hello - {"foo":"bar"}`, lines[1])
}

func TestFileSinkWithoutDateSubfolder(t *testing.T) {
	clock := &testClock{now: day(16)}
	cfg := DefaultConfig()
	cfg.DateSubfolder = false
	s, dir := newTestSink(t, NewRegistry(), cfg, WithClock(clock.Now))
	defer func() { assert.NoError(t, s.Close()) }()

	require.NoError(t, s.WriteLog(context.Background(), Record{Level: LevelInfo, Message: "m"}))
	assert.FileExists(t, filepath.Join(dir, "2026-10-16-app.log"))
}

func TestFileSinkRotatesAndPrunes(t *testing.T) {
	clock := &testClock{now: day(14)}
	cfg := DefaultConfig()
	cfg.MaxFiles = 2
	s, dir := newTestSink(t, NewRegistry(), cfg, WithClock(clock.Now))
	defer func() { assert.NoError(t, s.Close()) }()

	fileFor := func(d int) string {
		return filepath.Join(dir, "2026", "10", fmt.Sprintf("2026-10-%02d-app.log", d))
	}

	for _, d := range []int{14, 15, 16} {
		clock.Set(day(d))
		require.NoError(t, s.WriteLog(context.Background(), Record{Level: LevelInfo, Message: "day"}))
		assert.Equal(t, fileFor(d), s.CurrentFile())
	}

	// WriteLog 返回时旧文件已删除
	assert.NoFileExists(t, fileFor(14))
	assert.FileExists(t, fileFor(15))
	assert.FileExists(t, fileFor(16))
}

func TestFileSinkPrunesRotatedFiles(t *testing.T) {
	clock := &testClock{now: day(14)}
	cfg := DefaultConfig()
	cfg.MaxFiles = 2
	s, dir := newTestSink(t, NewRegistry(), cfg, WithClock(clock.Now))
	defer func() { assert.NoError(t, s.Close()) }()

	oct := filepath.Join(dir, "2026", "10")
	require.NoError(t, s.WriteLog(context.Background(), Record{Level: LevelInfo, Message: "first"}))
	require.NoError(t, s.Rotate())
	require.NoError(t, s.WriteLog(context.Background(), Record{Level: LevelInfo, Message: "second"}))
	assert.FileExists(t, filepath.Join(oct, "2026-10-14-app.log.1"))

	for _, d := range []int{15, 16, 17} {
		clock.Set(day(d))
		require.NoError(t, s.WriteLog(context.Background(), Record{Level: LevelInfo, Message: "day"}))
	}

	entries, err := os.ReadDir(oct)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"2026-10-16-app.log", "2026-10-17-app.log"}, names)
}

func TestFileSinkRotatesAcrossMonthAndYear(t *testing.T) {
	start := time.Date(2026, time.December, 30, 23, 0, 0, 0, time.UTC)
	clock := &testClock{now: start}
	cfg := DefaultConfig()
	cfg.MaxFiles = 2
	s, dir := newTestSink(t, NewRegistry(), cfg, WithClock(clock.Now))
	defer func() { assert.NoError(t, s.Close()) }()

	for _, d := range []int{0, 1, 2} {
		clock.Set(start.AddDate(0, 0, d))
		require.NoError(t, s.WriteLog(context.Background(), Record{Level: LevelNotice, Message: "tick"}))
	}

	active := filepath.Join(dir, "2027", "01", "2027-01-01-app.log")
	assert.Equal(t, active, s.CurrentFile())
	assert.Equal(t, []string{`Fri, 01 Jan 2027 23:00:00 +0000 [NOTICE] request="" component="": tick `}, readLines(t, active))
	assert.NoFileExists(t, filepath.Join(dir, "2026", "12", "2026-12-30-app.log"))
	assert.FileExists(t, filepath.Join(dir, "2026", "12", "2026-12-31-app.log"))
}

func TestFileSinkDefaultPath(t *testing.T) {
	varDir := t.TempDir()
	cfg := DefaultConfig()
	cfg.LogFileInfix = "api"
	s, err := New(NewRegistry(), cfg, Environment{VarDir: varDir, Secret: "topsecret"})
	require.NoError(t, err)
	defer func() { assert.NoError(t, s.Close()) }()

	assert.Equal(t, filepath.Join(varDir, "log", "monolog_api_1d8d222b56.log"), s.LogFile())
}

func TestNewErrors(t *testing.T) {
	_, err := New(nil, DefaultConfig(), Environment{})
	assert.ErrorIs(t, err, ErrNilRegistry)

	_, err = New(NewRegistry(), DefaultConfig(), Environment{})
	assert.ErrorIs(t, err, ErrInvalidLogFile, "无路径也无 VarDir")
	assert.Equal(t, CodeInvalidLogFile, CodeOf(err))

	cfg := DefaultConfig()
	cfg.LogFile = "../outside.log"
	_, err = New(NewRegistry(), cfg, Environment{BaseDir: t.TempDir()})
	assert.ErrorIs(t, err, ErrInvalidLogFile)
	assert.Equal(t, CodeInvalidLogFile, CodeOf(err))

	cfg = DefaultConfig()
	cfg.LogFile = "app%d.log"
	_, err = New(NewRegistry(), cfg, Environment{BaseDir: t.TempDir()})
	assert.ErrorIs(t, err, ErrInvalidLogFile, "轮转器创建失败")

	cfg = DefaultConfig()
	cfg.MaxFiles = -1
	_, err = New(NewRegistry(), cfg, Environment{BaseDir: t.TempDir()})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestFileSinkUnknownLevel(t *testing.T) {
	s, _ := newTestSink(t, NewRegistry(), DefaultConfig())
	defer func() { assert.NoError(t, s.Close()) }()

	err := s.WriteLog(context.Background(), Record{Level: Level(42), Message: "m"})
	assert.ErrorIs(t, err, ErrUnknownLevel)
	assert.Equal(t, CodeUnknownLevel, CodeOf(err))
	assert.Empty(t, s.CurrentFile(), "不应写入任何内容")
}

func TestFileSinkMinLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinLevel = "warning"
	s, _ := newTestSink(t, NewRegistry(), cfg)
	defer func() { assert.NoError(t, s.Close()) }()

	require.NoError(t, s.WriteLog(context.Background(), Record{Level: LevelInfo, Message: "dropped"}))
	assert.Empty(t, s.CurrentFile())

	require.NoError(t, s.WriteLog(context.Background(), Record{Level: LevelWarning, Message: "kept"}))
	lines := readLines(t, s.CurrentFile())
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "[WARNING]")
}

func TestFileSinksShareHandle(t *testing.T) {
	reg := NewRegistry()
	dir := t.TempDir()
	env := Environment{BaseDir: dir}
	cfg := DefaultConfig()
	cfg.LogFile = "shared.log"

	a, err := New(reg, cfg, env)
	require.NoError(t, err)
	b, err := New(reg, cfg, env)
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Len())
	assert.Equal(t, 2, reg.Refs(a.LogFile()))

	require.NoError(t, a.WriteLog(context.Background(), Record{Level: LevelInfo, Message: "from a"}))
	require.NoError(t, a.Close())
	assert.Equal(t, 1, reg.Refs(a.LogFile()))

	require.NoError(t, b.WriteLog(context.Background(), Record{Level: LevelInfo, Message: "from b"}))
	lines := readLines(t, b.CurrentFile())
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "from a")
	assert.Contains(t, lines[1], "from b")

	require.NoError(t, b.Close())
	assert.Equal(t, 0, reg.Len())
}

func TestFileSinkClose(t *testing.T) {
	s, _ := newTestSink(t, NewRegistry(), DefaultConfig())
	require.NoError(t, s.Close())

	err := s.Close()
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, CodeClosed, CodeOf(err))

	err = s.WriteLog(context.Background(), Record{Level: LevelInfo, Message: "late"})
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Rotate(), ErrClosed)
}

func TestFileSinkWriteFailure(t *testing.T) {
	reg := NewRegistry()
	diskFull := errors.New("disk full")
	calls := 0
	h, err := reg.Acquire("/srv/app/app.log", openMem(&memRotator{writeErr: diskFull}, &calls))
	require.NoError(t, err)
	defer func() { assert.NoError(t, h.Release()) }()

	cfg := DefaultConfig()
	cfg.LogFile = "/srv/app/app.log"
	obs := &recordingObserver{}
	s, err := New(reg, cfg, Environment{}, WithObserver(obs))
	require.NoError(t, err)
	defer func() { assert.NoError(t, s.Close()) }()

	err = s.WriteLog(context.Background(), Record{Level: LevelAlert, Message: "m"})
	assert.ErrorIs(t, err, ErrWriteFailed)
	assert.ErrorIs(t, err, diskFull)
	assert.Equal(t, CodeWriteFailed, CodeOf(err))

	require.Len(t, obs.results, 1)
	assert.ErrorIs(t, obs.results[0].Err, diskFull)
	assert.Equal(t, "write_log", obs.opts[0].Operation)
}

func TestFileSinkWriteAfterRotatorClosed(t *testing.T) {
	reg := NewRegistry()
	rot := &memRotator{}
	calls := 0
	h, err := reg.Acquire("/srv/app/app.log", openMem(rot, &calls))
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.LogFile = "/srv/app/app.log"
	s, err := New(reg, cfg, Environment{})
	require.NoError(t, err)

	// 另一个持有者关闭轮转器与本次写入交错
	require.NoError(t, rot.Close())
	err = s.WriteLog(context.Background(), Record{Level: LevelInfo, Message: "m"})
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, CodeClosed, CodeOf(err))

	require.NoError(t, s.Close())
	require.NoError(t, h.Release())
}

func TestFileSinkRotate(t *testing.T) {
	clock := &testClock{now: day(16)}
	s, dir := newTestSink(t, NewRegistry(), DefaultConfig(), WithClock(clock.Now))
	defer func() { assert.NoError(t, s.Close()) }()

	require.NoError(t, s.WriteLog(context.Background(), Record{Level: LevelInfo, Message: "first"}))
	require.NoError(t, s.Rotate())
	require.NoError(t, s.WriteLog(context.Background(), Record{Level: LevelInfo, Message: "second"}))

	base := filepath.Join(dir, "2026", "10", "2026-10-16-app.log")
	assert.Equal(t, base+".1", s.CurrentFile())
	assert.Contains(t, readLines(t, base)[0], "first")
	assert.Contains(t, readLines(t, base+".1")[0], "second")
}

func TestFileSinkSizeRotation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rotation = RotationSize
	cfg.MaxFiles = 3
	cfg.MaxSizeMB = 1
	s, dir := newTestSink(t, NewRegistry(), cfg)
	defer func() { assert.NoError(t, s.Close()) }()

	require.NoError(t, s.WriteLog(context.Background(), Record{Level: LevelInfo, Message: "m"}))
	assert.Equal(t, filepath.Join(dir, "app.log"), s.CurrentFile())
	assert.Len(t, readLines(t, s.CurrentFile()), 1)
}

func TestFileSinkConcurrentWrites(t *testing.T) {
	reg := NewRegistry()
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.LogFile = "concurrent.log"
	clock := &testClock{now: day(16)}

	var sinks []*FileSink
	for range 2 {
		s, err := New(reg, cfg, Environment{BaseDir: dir}, WithClock(clock.Now))
		require.NoError(t, err)
		sinks = append(sinks, s)
	}

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(s *FileSink) {
			defer wg.Done()
			for range 50 {
				assert.NoError(t, s.WriteLog(context.Background(), Record{
					Level:   LevelInfo,
					Message: "concurrent",
					Data:    map[string]any{"n": 1},
				}))
			}
		}(sinks[i%2])
	}
	wg.Wait()

	lines := readLines(t, sinks[0].CurrentFile())
	assert.Len(t, lines, 400)
	for _, l := range lines {
		assert.True(t, strings.HasSuffix(l, `: concurrent - {"n":1}`), l)
	}
	for _, s := range sinks {
		require.NoError(t, s.Close())
	}
}

// recordingObserver 记录跨度参数和结果
type recordingObserver struct {
	mu      sync.Mutex
	opts    []xmetrics.SpanOptions
	results []xmetrics.Result
}

func (o *recordingObserver) Start(ctx context.Context, opts xmetrics.SpanOptions) (context.Context, xmetrics.Span) {
	o.mu.Lock()
	o.opts = append(o.opts, opts)
	o.mu.Unlock()
	return ctx, recordingSpan{o}
}

type recordingSpan struct{ o *recordingObserver }

func (s recordingSpan) End(r xmetrics.Result) {
	s.o.mu.Lock()
	s.o.results = append(s.o.results, r)
	s.o.mu.Unlock()
}
