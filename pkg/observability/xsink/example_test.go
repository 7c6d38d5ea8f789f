package xsink_test

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/omeyang/xlogsink/pkg/observability/xsink"
)

func ExampleDefaultLogFile() {
	env := xsink.Environment{VarDir: "/srv/app/var", Secret: "topsecret"}

	fmt.Println(xsink.DefaultLogFile(env, ""))
	fmt.Println(xsink.DefaultLogFile(env, "api"))
	// Output:
	// /srv/app/var/log/monolog_1d8d222b56.log
	// /srv/app/var/log/monolog_api_1d8d222b56.log
}

func ExampleNew() {
	dir, err := os.MkdirTemp("", "xsink-example")
	if err != nil {
		fmt.Println(err)
		return
	}
	defer os.RemoveAll(dir)

	clock := func() time.Time { return time.Date(2026, time.October, 16, 9, 30, 0, 0, time.UTC) }
	cfg := xsink.DefaultConfig()
	cfg.LogFile = "app.log"

	sink, err := xsink.New(xsink.NewRegistry(), cfg, xsink.Environment{BaseDir: dir}, xsink.WithClock(clock))
	if err != nil {
		fmt.Println(err)
		return
	}

	err = sink.WriteLog(context.Background(), xsink.Record{
		Level:     xsink.LevelWarning,
		RequestID: "req-1",
		Component: "billing",
		Message:   "quota almost exhausted",
		Data:      map[string]any{"used": 93},
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	current := sink.CurrentFile()
	_ = sink.Close()

	rel, _ := filepath.Rel(dir, current)
	fmt.Println(filepath.ToSlash(rel))
	data, _ := os.ReadFile(current)
	fmt.Print(string(data))
	// Output:
	// 2026/10/2026-10-16-app.log
	// Fri, 16 Oct 2026 09:30:00 +0000 [WARNING] request="req-1" component="billing": quota almost exhausted - {"used":93}
}

// stdoutSink 打印记录字段的 Sink
type stdoutSink struct{}

func (stdoutSink) WriteLog(_ context.Context, r xsink.Record) error {
	fmt.Printf("[%s] request=%q component=%q: %s %v\n", r.Level, r.RequestID, r.Component, r.Message, r.Data)
	return nil
}

func ExampleNewHandler() {
	logger := slog.New(xsink.NewHandler(stdoutSink{}, &xsink.HandlerOptions{Component: "api"}))

	logger.Log(context.Background(), xsink.SlogLevelNotice, "user login",
		slog.String(xsink.KeyRequestID, "r-7"),
		slog.String("user", "alice"),
	)
	// Output:
	// [NOTICE] request="r-7" component="api": user login map[user:alice]
}
