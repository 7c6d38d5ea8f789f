package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/omeyang/xlogsink/pkg/config/xconf"
	"github.com/omeyang/xlogsink/pkg/observability/xlog"
	"github.com/omeyang/xlogsink/pkg/observability/xmetrics"
	"github.com/omeyang/xlogsink/pkg/observability/xsink"
	"github.com/omeyang/xlogsink/pkg/util/xjson"
)

// configSection 配置文件中 Sink 配置所在的节
const configSection = "xsink"

// 创建所有子命令。
func createCommands() []*cli.Command {
	return []*cli.Command{
		createPathCommand(),
		createConfigCommand(),
		createWriteCommand(),
	}
}

// createPathCommand 创建 path 子命令。
func createPathCommand() *cli.Command {
	return &cli.Command{
		Name:         "path",
		Usage:        "打印解析后的日志文件路径",
		OnUsageError: onUsageError,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			p, err := xsink.LogFilePath(cfg, environment(cmd))
			if err != nil {
				return pathError(err)
			}
			_, err = fmt.Fprintln(cmd.Root().Writer, p)
			return err
		},
	}
}

// createConfigCommand 创建 config 子命令。
func createConfigCommand() *cli.Command {
	return &cli.Command{
		Name:         "config",
		Usage:        "以 JSON 打印生效的配置",
		OnUsageError: onUsageError,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.Root().Writer, xjson.Pretty(cfg))
			return err
		},
	}
}

// createWriteCommand 创建 write 子命令。
func createWriteCommand() *cli.Command {
	return &cli.Command{
		Name:         "write",
		Usage:        "写入一条日志记录",
		ArgsUsage:    "<message>",
		OnUsageError: onUsageError,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "level",
				Aliases: []string{"l"},
				Usage:   "级别 (emergency/alert/critical/error/warning/notice/info/debug)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "request-id",
				Usage: "请求标识，为空时生成 UUID",
			},
			&cli.StringFlag{
				Name:  "component",
				Usage: "组件名",
				Value: "xsinkctl",
			},
			&cli.StringSliceFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "元数据 key=value，可重复",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cmdWrite(ctx, cmd)
		},
	}
}

func cmdWrite(ctx context.Context, cmd *cli.Command) error {
	msg := strings.Join(cmd.Args().Slice(), " ")
	if msg == "" {
		return usageErrorf("缺少日志消息")
	}
	level, err := xsink.ParseLevel(cmd.String("level"))
	if err != nil {
		return usageErrorf("无效级别 %q", cmd.String("level"))
	}
	data, err := parseData(cmd.StringSlice("data"))
	if err != nil {
		return err
	}
	requestID := cmd.String("request-id")
	if requestID == "" {
		requestID = uuid.NewString()
	}

	logger, cleanup, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = cleanup() }()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	observer, err := xmetrics.NewOTelObserver(xmetrics.WithInstrumentationName("xsinkctl"))
	if err != nil {
		return err
	}

	sink, err := xsink.New(xsink.NewRegistry(), cfg, environment(cmd), xsink.WithObserver(observer))
	if err != nil {
		return pathError(err)
	}
	logger.Debug(ctx, "sink opened",
		slog.String("log_file", sink.LogFile()),
		slog.String("rotation", cfg.Rotation),
	)

	writeErr := sink.WriteLog(ctx, xsink.Record{
		Level:     level,
		RequestID: requestID,
		Component: cmd.String("component"),
		Message:   msg,
		Data:      data,
	})
	current := sink.CurrentFile()
	if err := sink.Close(); err != nil && writeErr == nil {
		writeErr = err
	}
	if writeErr != nil {
		logger.Error(ctx, "write failed",
			slog.String("log_file", sink.LogFile()),
			slog.Int("code", int(xsink.CodeOf(writeErr))),
		)
		return writeErr
	}

	if current == "" {
		// 低于 minLevel 被丢弃
		logger.Info(ctx, "record dropped by minLevel", slog.String("level", level.String()))
		return nil
	}
	_, err = fmt.Fprintln(cmd.Root().Writer, current)
	return err
}

// loadConfig 读取 --config 指定的文件，未指定时使用默认配置
func loadConfig(cmd *cli.Command) (xsink.Config, error) {
	path := cmd.String("config")
	if path == "" {
		return xsink.DefaultConfig(), nil
	}
	src, err := xconf.New(path)
	if err != nil {
		return xsink.Config{}, err
	}
	return xsink.LoadConfig(src, configSection)
}

func environment(cmd *cli.Command) xsink.Environment {
	return xsink.Environment{
		BaseDir: cmd.String("base-dir"),
		VarDir:  cmd.String("var-dir"),
		Secret:  cmd.String("secret"),
	}
}

// pathError 缺少 --var-dir 属于参数错误，其余路径错误原样返回
func pathError(err error) error {
	if errors.Is(err, xsink.ErrNoVarDir) {
		return usageErrorf("未配置 logFile 时必须指定 --var-dir")
	}
	return err
}

// parseData 解析 key=value 列表，重复的 key 以最后一个为准
func parseData(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	data := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, usageErrorf("无效的 --data %q，应为 key=value", pair)
		}
		data[k] = v
	}
	return data, nil
}

func newLogger(cmd *cli.Command) (xlog.LoggerWithLevel, func() error, error) {
	logger, cleanup, err := xlog.New().
		SetOutput(cmd.Root().ErrWriter).
		SetLevelString(cmd.String("log-level")).
		SetFormat(cmd.String("log-format")).
		Build()
	if err != nil {
		return nil, nil, usageErrorf("%v", err)
	}
	return logger, cleanup, nil
}
