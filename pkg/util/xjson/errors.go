package xjson

import "errors"

// ErrMarshal 表示序列化失败，原始错误通过 %w 链保留。
var ErrMarshal = errors.New("xjson: marshal failed")
