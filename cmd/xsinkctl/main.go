// xsinkctl 是 xsink 文件日志 Sink 的命令行工具。
//
// 用法:
//
//	xsinkctl [全局选项] <命令> [命令参数]
//
// 全局选项:
//
//	-c, --config    配置文件（.yaml/.yml/.json），读取其中的 xsink 节
//	--base-dir      安装根目录，相对日志路径基于它解析 (env: XSINK_BASE_DIR)
//	--var-dir       可变数据目录，默认日志文件位于其下 (env: XSINK_VAR_DIR)
//	--secret        安装密钥，参与默认文件名派生 (env: XSINK_SECRET)
//	--log-level     诊断日志级别 (默认: warn)
//	--log-format    诊断日志格式 text/json (默认: text)
//
// 命令:
//
//	path            打印解析后的日志文件路径
//	config          以 JSON 打印生效的配置
//	write <msg>     写入一条记录并打印写入的文件
//
// 退出码:
//
//	0: 成功
//	1: 执行失败（路径无法解析、写入失败等）
//	2: 参数错误
//
// 示例:
//
//	xsinkctl --var-dir /srv/app/var --secret s3cr3t path
//	xsinkctl -c app.yaml config
//	xsinkctl --base-dir /srv/app write --level error --data order=42 "payment failed"
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

// 版本信息，通过 -ldflags "-X main.Version=..." 注入
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run 执行命令并返回退出码。
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	app := createApp(stdout, stderr)
	if err := app.Run(ctx, args); err != nil {
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(stderr, "参数错误: %v\n", usageErr)
			return 2
		}
		fmt.Fprintf(stderr, "错误: %v\n", err)
		return 1
	}
	return 0
}

// usageError 参数错误，对应退出码 2。
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usageErrorf(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// onUsageError 将 flag 解析错误转为 usageError
func onUsageError(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return &usageError{msg: err.Error()}
}

// createApp 创建 CLI 应用。
func createApp(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "xsinkctl",
		Usage:     "xsink 文件日志命令行工具",
		Version:   fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径（.yaml/.yml/.json）",
				Sources: cli.EnvVars("XSINK_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "base-dir",
				Usage:   "安装根目录",
				Sources: cli.EnvVars("XSINK_BASE_DIR"),
			},
			&cli.StringFlag{
				Name:    "var-dir",
				Usage:   "可变数据目录",
				Sources: cli.EnvVars("XSINK_VAR_DIR"),
			},
			&cli.StringFlag{
				Name:    "secret",
				Usage:   "安装密钥",
				Sources: cli.EnvVars("XSINK_SECRET"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "诊断日志级别 (debug/info/warn/error)",
				Value: "warn",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "诊断日志格式 (text/json)",
				Value: "text",
			},
		},
		Commands:     createCommands(),
		OnUsageError: onUsageError,
		// 退出码由 run 统一映射，不让 urfave/cli 调用 os.Exit
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
}
