package xrotate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/omeyang/xlogsink/pkg/util/xfile"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
)

const (
	// DefaultMaxFiles 按日期轮转默认保留的文件数量（含活跃文件）
	DefaultMaxFiles = 31

	// DefaultDateSubfolder 默认按 年/月 组织子目录
	DefaultDateSubfolder = true

	// maxFiles 保留文件数量上限
	maxFiles = 1024

	// dailyRotationTime 日期轮转周期
	dailyRotationTime = 24 * time.Hour
)

// dailyConfig 按日期轮转的配置
type dailyConfig struct {
	// MaxFiles 保留的文件数量，包含当前活跃文件，超出时删除最旧的
	MaxFiles int

	// DateSubfolder 为 true 时文件放在 YYYY/MM/ 子目录下
	DateSubfolder bool

	// Now 轮转使用的时钟，nil 表示 time.Now
	Now func() time.Time
}

// DailyOption 按日期轮转的配置选项函数
type DailyOption func(*dailyConfig)

// WithMaxFiles 设置保留的文件数量（含活跃文件）
func WithMaxFiles(n int) DailyOption {
	return func(c *dailyConfig) {
		c.MaxFiles = n
	}
}

// WithDateSubfolder 设置是否使用 YYYY/MM/ 子目录
func WithDateSubfolder(enable bool) DailyOption {
	return func(c *dailyConfig) {
		c.DateSubfolder = enable
	}
}

// WithClock 设置轮转时钟
//
// 日期边界按时钟返回时间所在的时区计算。测试中可注入固定时钟模拟跨日。
func WithClock(now func() time.Time) DailyOption {
	return func(c *dailyConfig) {
		c.Now = now
	}
}

// clockFunc 将函数适配为 rotatelogs.Clock
type clockFunc func() time.Time

func (f clockFunc) Now() time.Time { return f() }

// dailyRotator 基于 file-rotatelogs 的 Rotator 实现
//
// rotatelogs 负责按日期切换文件；超出保留数量的旧文件由 prune 在写入前同步删除，
// 手动轮转产生的带序号文件（.1、.2 ...）一并计入保留数量。
type dailyRotator struct {
	mu   sync.Mutex
	logs *rotatelogs.RotateLogs

	dir           string
	dateSubfolder bool
	pattern       string
	nameRe        *regexp.Regexp
	maxFiles      int
	now           func() time.Time

	// activeDay 最近一次清理时对应的当日文件，变化时触发清理
	activeDay string
	closed    atomic.Bool
}

// NewDaily 创建按日期轮转的轮转器
//
// filename 是逻辑文件路径，实际写入的文件名由日期戳和 filename 的文件名部分组成，
// 见包文档。父目录（含日期子目录）在打开文件时自动创建。
func NewDaily(filename string, opts ...DailyOption) (Rotator, error) {
	if filename == "" {
		return nil, ErrEmptyFilename
	}

	cfg := dailyConfig{
		MaxFiles:      DefaultMaxFiles,
		DateSubfolder: DefaultDateSubfolder,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.MaxFiles <= 0 || cfg.MaxFiles > maxFiles {
		return nil, fmt.Errorf("%w: got %d, want 1~%d", ErrInvalidMaxFiles, cfg.MaxFiles, maxFiles)
	}

	safePath, err := xfile.SanitizePath(filename)
	if err != nil {
		return nil, err
	}
	// '%' 会被当作 strftime 指令解析
	if strings.ContainsRune(safePath, '%') {
		return nil, fmt.Errorf("%w: %q contains '%%'", ErrInvalidFilename, safePath)
	}
	if err := xfile.EnsureDir(safePath); err != nil {
		return nil, err
	}

	pattern := DailyPattern(safePath, cfg.DateSubfolder)

	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	logs, err := rotatelogs.New(pattern,
		rotatelogs.WithClock(clockFunc(now)),
		rotatelogs.WithRotationTime(dailyRotationTime),
		rotatelogs.WithRotationCount(uint(cfg.MaxFiles)),
	)
	if err != nil {
		return nil, fmt.Errorf("xrotate: create daily rotator: %w", err)
	}

	dir, name := filepath.Split(safePath)
	return &dailyRotator{
		logs:          logs,
		dir:           filepath.Clean(dir),
		dateSubfolder: cfg.DateSubfolder,
		pattern:       pattern,
		nameRe:        regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})-` + regexp.QuoteMeta(name) + `(?:\.(\d+))?$`),
		maxFiles:      cfg.MaxFiles,
		now:           now,
	}, nil
}

// DailyPattern 返回 filename 对应的 strftime 文件名模式
//
//	DailyPattern("/var/log/app.log", true)  // "/var/log/%Y/%m/%Y-%m-%d-app.log"
//	DailyPattern("/var/log/app.log", false) // "/var/log/%Y-%m-%d-app.log"
func DailyPattern(filename string, dateSubfolder bool) string {
	dir, name := filepath.Split(filename)
	if dateSubfolder {
		return filepath.Join(dir, "%Y", "%m", "%Y-%m-%d-"+name)
	}
	return filepath.Join(dir, "%Y-%m-%d-"+name)
}

// Write 实现 io.Writer 接口
//
// 日期变化时先删除超出保留数量的旧文件，再由 rotatelogs 切换到新文件写入 p。
// 删除失败时不写入并返回 [ErrPrune]，下次写入会重试。
func (r *dailyRotator) Write(p []byte) (int, error) {
	if r.closed.Load() {
		return 0, ErrClosed
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	// Close 可能在等待锁期间完成，rotatelogs 关闭后再写会重新打开文件
	if r.closed.Load() {
		return 0, ErrClosed
	}

	if active := r.fileFor(r.now()); active != r.activeDay {
		if err := r.prune(active); err != nil {
			return 0, err
		}
		r.activeDay = active
	}

	n, err := r.logs.Write(p)
	if err != nil && r.closed.Load() {
		return n, ErrClosed
	}
	return n, err
}

// Close 关闭当前文件，重复调用返回 [ErrClosed]
//
// rotatelogs 关闭后再次 Write 会重新打开文件，因此以 closed 标记为准。
func (r *dailyRotator) Close() error {
	if r.closed.Swap(true) {
		return ErrClosed
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.logs.Close()
}

// Rotate 手动触发轮转
//
// 同一天内手动轮转会生成带序号的文件（如 2026-10-16-app.log.1），
// 轮转后按新的活跃文件清理旧文件。
func (r *dailyRotator) Rotate() error {
	if r.closed.Load() {
		return ErrClosed
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed.Load() {
		return ErrClosed
	}

	if err := r.logs.Rotate(); err != nil {
		if r.closed.Load() {
			return ErrClosed
		}
		return err
	}
	r.activeDay = r.fileFor(r.now())
	return r.prune(r.logs.CurrentFileName())
}

// CurrentFile 返回当前活跃文件路径，首次写入前为空
func (r *dailyRotator) CurrentFile() string {
	return r.logs.CurrentFileName()
}

// fileFor 返回 t 当日的基础文件名，与 rotatelogs 生成的文件名一致
func (r *dailyRotator) fileFor(t time.Time) string {
	return strings.NewReplacer(
		"%Y", t.Format("2006"),
		"%m", t.Format("01"),
		"%d", t.Format("02"),
	).Replace(r.pattern)
}

// logFile 目录中一个属于本轮转器的文件
type logFile struct {
	path string
	date string
	seq  int
}

// prune 保留 active 与最新的 maxFiles-1 个其他文件，按日期和序号从旧到新删除其余文件。
// active 尚不存在时同样计入保留数量。
func (r *dailyRotator) prune(active string) error {
	files, err := r.listFiles()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPrune, err)
	}

	others := files[:0]
	for _, f := range files {
		if f.path != active {
			others = append(others, f)
		}
	}
	keep := r.maxFiles - 1
	if len(others) <= keep {
		return nil
	}

	var errs []error
	for _, f := range others[:len(others)-keep] {
		if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrPrune, err)
	}
	return nil
}

var (
	yearDirRe  = regexp.MustCompile(`^\d{4}$`)
	monthDirRe = regexp.MustCompile(`^\d{2}$`)
)

// listFiles 列出所有按日期命名的文件（含带序号的文件），按日期、序号升序
func (r *dailyRotator) listFiles() ([]logFile, error) {
	dirs := []string{r.dir}
	if r.dateSubfolder {
		years, err := subdirs(r.dir, yearDirRe)
		if err != nil {
			return nil, err
		}
		dirs = dirs[:0]
		for _, y := range years {
			months, err := subdirs(y, monthDirRe)
			if err != nil {
				return nil, err
			}
			dirs = append(dirs, months...)
		}
	}

	var files []logFile
	for _, dir := range dirs {
		entries, err := readDir(dir)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			m := r.nameRe.FindStringSubmatch(e.Name())
			if m == nil {
				continue
			}
			f := logFile{path: filepath.Join(dir, e.Name()), date: m[1]}
			if m[2] != "" {
				f.seq, _ = strconv.Atoi(m[2])
			}
			files = append(files, f)
		}
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].date != files[j].date {
			return files[i].date < files[j].date
		}
		return files[i].seq < files[j].seq
	})
	return files, nil
}

// subdirs 返回 dir 下名称匹配 re 的子目录
func subdirs(dir string, re *regexp.Regexp) ([]string, error) {
	entries, err := readDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() && re.MatchString(e.Name()) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out, nil
}

// readDir 目录不存在时返回空列表
func readDir(dir string) ([]os.DirEntry, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return entries, err
}
