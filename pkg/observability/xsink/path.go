package xsink

import (
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // 仅用于派生稳定的文件名令牌
	"encoding/hex"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/omeyang/xlogsink/pkg/util/xfile"
)

const (
	// defaultLogFileTemplate 默认日志文件模板，%s 替换为令牌
	defaultLogFileTemplate = "/log/monolog_%s.log"

	// defaultLogFileSalt 与安装密钥拼接作为 HMAC 密钥
	defaultLogFileSalt = "defaultLogFile"

	// tokenLength 令牌长度（十六进制字符）
	tokenLength = 10
)

// Environment 宿主安装环境。
type Environment struct {
	// BaseDir 安装根目录，相对日志路径基于它解析
	BaseDir string

	// VarDir 可变数据目录，默认日志文件位于其下的 log/
	VarDir string

	// Secret 安装密钥，参与默认文件名的派生
	Secret string
}

// DefaultLogFile 返回 env 下的默认日志文件路径。
//
// 令牌取 HMAC-SHA1(Secret+"defaultLogFile", 模板) 的前 10 个十六进制字符，
// 同一安装、同一中缀得到的路径总是相同：
//
//	DefaultLogFile(env, "")    // <VarDir>/log/monolog_<token>.log
//	DefaultLogFile(env, "api") // <VarDir>/log/monolog_api_<token>.log
func DefaultLogFile(env Environment, infix string) string {
	mac := hmac.New(sha1.New, []byte(env.Secret+defaultLogFileSalt))
	mac.Write([]byte(defaultLogFileTemplate))
	part := hex.EncodeToString(mac.Sum(nil))[:tokenLength]
	if infix != "" {
		part = infix + "_" + part
	}
	return strings.TrimRight(env.VarDir, "/") + fmt.Sprintf(defaultLogFileTemplate, part)
}

// LogFilePath 返回 cfg 在 env 下实际写入的日志路径。
//
// cfg.LogFile 为空时使用 [DefaultLogFile] 派生，此时 env.VarDir 不能为空；
// 结果经 [ResolveLogFile] 解析。失败时返回 [ErrInvalidLogFile]，
// 缺少 VarDir 时同时匹配 [ErrNoVarDir]。
func LogFilePath(cfg Config, env Environment) (string, error) {
	p := cfg.LogFile
	if p == "" {
		if env.VarDir == "" {
			return "", newError(CodeInvalidLogFile, "resolve",
				fmt.Errorf("%w: %w", ErrInvalidLogFile, ErrNoVarDir))
		}
		p = DefaultLogFile(env, cfg.LogFileInfix)
	}
	return ResolveLogFile(env, p)
}

// ResolveLogFile 将配置的日志路径解析为绝对文件路径。
//
//   - file:// URI 取其路径部分，其他协议不受支持
//   - 绝对路径规范化后使用
//   - 相对路径拼接到 env.BaseDir，不允许越出该目录
//
// 失败时返回错误码为 [CodeInvalidLogFile] 的错误。
func ResolveLogFile(env Environment, p string) (string, error) {
	resolved, err := resolveLogFile(env, strings.TrimSpace(p))
	if err != nil {
		return "", newError(CodeInvalidLogFile, "resolve", fmt.Errorf("%w %q: %w", ErrInvalidLogFile, p, err))
	}
	return resolved, nil
}

func resolveLogFile(env Environment, p string) (string, error) {
	if p == "" {
		return "", xfile.ErrEmptyPath
	}
	if strings.Contains(p, "://") {
		u, err := url.Parse(p)
		if err != nil {
			return "", err
		}
		if u.Scheme != "file" {
			return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
		}
		if u.Host != "" && u.Host != "localhost" {
			return "", fmt.Errorf("unsupported host %q", u.Host)
		}
		if !filepath.IsAbs(u.Path) {
			return "", fmt.Errorf("file uri path %q is not absolute", u.Path)
		}
		return xfile.SanitizePath(u.Path)
	}
	if filepath.IsAbs(p) {
		return xfile.SanitizePath(p)
	}
	// "." 之类规范化后不含文件名的相对路径会解析为 BaseDir 本身
	rel, err := xfile.SanitizePath(p)
	if err != nil {
		return "", err
	}
	return xfile.SafeJoin(env.BaseDir, rel)
}
