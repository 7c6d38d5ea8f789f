package xsink

import (
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"

	"github.com/omeyang/xlogsink/pkg/observability/xrotate"
)

// registryShards 分片数量，必须是 2 的幂
const registryShards = 16

// Registry 按解析后的路径共享轮转器。
//
// 同一路径的多个 Sink 共用一个轮转器，写入和轮转在该路径上串行执行；
// 最后一个持有者释放时关闭轮转器。Registry 由调用方创建并注入，零值不可用。
type Registry struct {
	shards [registryShards]registryShard
}

type registryShard struct {
	mu      sync.Mutex
	entries map[string]*registryEntry
}

type registryEntry struct {
	path string
	// mu 串行化写入、轮转与关闭
	mu      sync.Mutex
	rotator xrotate.Rotator
	refs    int
}

// NewRegistry 创建空的 Registry。
func NewRegistry() *Registry {
	r := &Registry{}
	for i := range r.shards {
		r.shards[i].entries = make(map[string]*registryEntry)
	}
	return r
}

func (r *Registry) shard(path string) *registryShard {
	return &r.shards[xxhash.Sum64String(path)&(registryShards-1)]
}

// Acquire 获取 path 对应的共享句柄。
//
// path 首次被获取时调用 open 创建轮转器；open 失败时不登记任何条目。
// 之后的调用复用同一轮转器并增加引用计数，不再调用 open。
func (r *Registry) Acquire(path string, open func() (xrotate.Rotator, error)) (*Handle, error) {
	s := r.shard(path)
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[path]; ok {
		e.refs++
		return &Handle{reg: r, entry: e}, nil
	}

	rot, err := open()
	if err != nil {
		return nil, err
	}
	e := &registryEntry{path: path, rotator: rot, refs: 1}
	s.entries[path] = e
	return &Handle{reg: r, entry: e}, nil
}

// Len 返回当前打开的路径数量。
func (r *Registry) Len() int {
	n := 0
	for i := range r.shards {
		s := &r.shards[i]
		s.mu.Lock()
		n += len(s.entries)
		s.mu.Unlock()
	}
	return n
}

// Refs 返回 path 当前的引用计数，未打开时为 0。
func (r *Registry) Refs(path string) int {
	s := r.shard(path)
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[path]; ok {
		return e.refs
	}
	return 0
}

// Handle 对共享轮转器的一次引用。
type Handle struct {
	reg      *Registry
	entry    *registryEntry
	released atomic.Bool
}

// Path 返回句柄对应的路径。
func (h *Handle) Path() string {
	return h.entry.path
}

// Write 追加 p，同一路径上的写入互斥。
func (h *Handle) Write(p []byte) (int, error) {
	if h.released.Load() {
		return 0, ErrReleased
	}
	h.entry.mu.Lock()
	defer h.entry.mu.Unlock()
	return h.entry.rotator.Write(p)
}

// Rotate 手动触发轮转。
func (h *Handle) Rotate() error {
	if h.released.Load() {
		return ErrReleased
	}
	h.entry.mu.Lock()
	defer h.entry.mu.Unlock()
	return h.entry.rotator.Rotate()
}

// CurrentFile 返回轮转器当前写入的文件，轮转器不提供时返回空串。
func (h *Handle) CurrentFile() string {
	fn, ok := h.entry.rotator.(xrotate.FileNamer)
	if !ok {
		return ""
	}
	h.entry.mu.Lock()
	defer h.entry.mu.Unlock()
	return fn.CurrentFile()
}

// Release 释放引用，引用计数归零时关闭轮转器并返回关闭错误。
// 重复调用返回 [ErrReleased]。
func (h *Handle) Release() error {
	if h.released.Swap(true) {
		return ErrReleased
	}

	// 关闭完成前持有分片锁，同一路径的 Acquire 不会在旧轮转器关闭前打开新的
	s := h.reg.shard(h.entry.path)
	s.mu.Lock()
	defer s.mu.Unlock()
	h.entry.refs--
	if h.entry.refs > 0 {
		return nil
	}
	delete(s.entries, h.entry.path)

	h.entry.mu.Lock()
	defer h.entry.mu.Unlock()
	return h.entry.rotator.Close()
}
