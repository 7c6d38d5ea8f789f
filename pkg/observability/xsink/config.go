package xsink

import (
	"fmt"

	"github.com/omeyang/xlogsink/pkg/config/xconf"
)

// 轮转方式
const (
	// RotationDaily 按日期轮转（默认）
	RotationDaily = "daily"

	// RotationSize 按大小轮转
	RotationSize = "size"
)

// 默认配置值
const (
	DefaultMaxFiles  = 31
	DefaultMaxSizeMB = 100
	DefaultMinLevel  = "debug"

	maxFilesLimit  = 1024
	maxSizeMBLimit = 10240
)

// Config Sink 配置，创建 Sink 后不可变。
type Config struct {
	// LogFile 日志文件路径；为空时由 [DefaultLogFile] 派生。
	// 相对路径相对于 Environment.BaseDir 解析，也接受 file:// URI。
	LogFile string `koanf:"logFile" json:"logFile"`

	// LogFileInfix 派生默认路径时加在令牌前的中缀
	LogFileInfix string `koanf:"logFileInfix" json:"logFileInfix"`

	// MaxFiles 保留的文件数量，包含当前写入的文件
	MaxFiles int `koanf:"maxFiles" json:"maxFiles"`

	// DateSubfolder 为 true 时按日期轮转的文件放在 YYYY/MM/ 子目录下
	DateSubfolder bool `koanf:"dateSubfolder" json:"dateSubfolder"`

	// IgnoreEmptyData 为 true 时元数据为空的记录不输出 "- {}"
	IgnoreEmptyData bool `koanf:"ignoreEmptyData" json:"ignoreEmptyData"`

	// Rotation 轮转方式：daily 或 size
	Rotation string `koanf:"rotation" json:"rotation"`

	// MaxSizeMB 按大小轮转时单个文件的上限
	MaxSizeMB int `koanf:"maxSizeMB" json:"maxSizeMB"`

	// Compress 按大小轮转时是否 gzip 压缩旧文件
	Compress bool `koanf:"compress" json:"compress"`

	// MinLevel 最低写入级别，低于该级别的记录被丢弃
	MinLevel string `koanf:"minLevel" json:"minLevel"`
}

// DefaultConfig 返回默认配置。
func DefaultConfig() Config {
	return Config{
		MaxFiles:        DefaultMaxFiles,
		DateSubfolder:   true,
		IgnoreEmptyData: true,
		Rotation:        RotationDaily,
		MaxSizeMB:       DefaultMaxSizeMB,
		MinLevel:        DefaultMinLevel,
	}
}

// Validate 校验配置取值，不检查路径。
func (c Config) Validate() error {
	switch c.Rotation {
	case RotationDaily:
		if c.MaxFiles < 1 || c.MaxFiles > maxFilesLimit {
			return invalidConfig("maxFiles must be 1~%d, got %d", maxFilesLimit, c.MaxFiles)
		}
	case RotationSize:
		// 按大小轮转至少保留一个备份
		if c.MaxFiles < 2 || c.MaxFiles > maxFilesLimit {
			return invalidConfig("maxFiles must be 2~%d for size rotation, got %d", maxFilesLimit, c.MaxFiles)
		}
		if c.MaxSizeMB < 1 || c.MaxSizeMB > maxSizeMBLimit {
			return invalidConfig("maxSizeMB must be 1~%d, got %d", maxSizeMBLimit, c.MaxSizeMB)
		}
	default:
		return invalidConfig("unknown rotation %q", c.Rotation)
	}
	if _, err := c.threshold(); err != nil {
		return invalidConfig("minLevel: %v", err)
	}
	return nil
}

// threshold 返回 MinLevel 对应的级别，空值视为 debug
func (c Config) threshold() (Level, error) {
	if c.MinLevel == "" {
		return LevelDebug, nil
	}
	return ParseLevel(c.MinLevel)
}

func invalidConfig(format string, args ...any) error {
	return newError(CodeInvalidConfig, "validate", fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...)))
}

// LoadConfig 从 key 对应的配置节加载 Sink 配置。
//
// 未出现的字段保持默认值，加载后执行 [Config.Validate]。
//
//	cfg, err := xconf.New("app.yaml")
//	sinkCfg, err := xsink.LoadConfig(cfg, "xsink")
func LoadConfig(src xconf.Config, key string) (Config, error) {
	c := DefaultConfig()
	if src == nil {
		return c, nil
	}
	if err := src.Unmarshal(key, &c); err != nil {
		return Config{}, newError(CodeInvalidConfig, "load config", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}
