package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), append([]string{"xsinkctl"}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestPathCommand(t *testing.T) {
	code, out, _ := runCLI(t, "--var-dir", "/srv/app/var", "--secret", "topsecret", "path")
	assert.Equal(t, 0, code)
	assert.Equal(t, "/srv/app/var/log/monolog_1d8d222b56.log\n", out)
}

func TestPathCommandFromEnv(t *testing.T) {
	t.Setenv("XSINK_VAR_DIR", "/srv/app/var")
	t.Setenv("XSINK_SECRET", "topsecret")

	code, out, _ := runCLI(t, "path")
	assert.Equal(t, 0, code)
	assert.Equal(t, "/srv/app/var/log/monolog_1d8d222b56.log\n", out)
}

func TestPathCommandFromConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "app.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("xsink:\n  logFile: var/log/app.log\n"), 0o600))

	code, out, _ := runCLI(t, "-c", cfgPath, "--base-dir", "/srv/app", "path")
	assert.Equal(t, 0, code)
	assert.Equal(t, "/srv/app/var/log/app.log\n", out)
}

func TestPathCommandErrors(t *testing.T) {
	code, _, errOut := runCLI(t, "path")
	assert.Equal(t, 2, code, "缺少 --var-dir")
	assert.Contains(t, errOut, "--var-dir")

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "app.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"xsink":{"logFile":"../escape.log"}}`), 0o600))
	code, _, errOut = runCLI(t, "-c", cfgPath, "--base-dir", dir, "path")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "1444374805")
}

func TestConfigCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "app.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("xsink:\n  maxFiles: 7\n  minLevel: notice\n"), 0o600))

	code, out, _ := runCLI(t, "--config", cfgPath, "config")
	require.Equal(t, 0, code)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.InDelta(t, 7, got["maxFiles"], 0)
	assert.Equal(t, "notice", got["minLevel"])
	assert.Equal(t, true, got["dateSubfolder"])
	assert.Equal(t, "daily", got["rotation"])
}

func TestConfigCommandInvalidFile(t *testing.T) {
	code, _, _ := runCLI(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "config")
	assert.Equal(t, 1, code)

	code, _, _ = runCLI(t, "--config", "app.toml", "config")
	assert.Equal(t, 1, code)
}

func TestWriteCommand(t *testing.T) {
	dir := t.TempDir()
	code, out, errOut := runCLI(t,
		"--var-dir", dir, "--secret", "topsecret",
		"write", "--level", "error", "--request-id", "r1", "--component", "c1",
		"--data", "foo=bar", "boom",
	)
	require.Equal(t, 0, code, errOut)

	current := strings.TrimSpace(out)
	assert.True(t, strings.HasPrefix(current, filepath.Join(dir, "log")+string(filepath.Separator)), current)
	assert.True(t, strings.HasSuffix(current, "-monolog_1d8d222b56.log"), current)

	data, err := os.ReadFile(current)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), ` [ERROR] request="r1" component="c1": boom - {"foo":"bar"}`+"\n"), string(data))
}

func TestWriteCommandGeneratesRequestID(t *testing.T) {
	dir := t.TempDir()
	code, out, errOut := runCLI(t, "--var-dir", dir, "write", "hello", "world")
	require.Equal(t, 0, code, errOut)

	data, err := os.ReadFile(strings.TrimSpace(out))
	require.NoError(t, err)
	line := string(data)
	assert.Contains(t, line, `component="xsinkctl": hello world `)

	start := strings.Index(line, `request="`) + len(`request="`)
	end := strings.Index(line[start:], `"`)
	require.Positive(t, end)
	_, err = uuid.Parse(line[start : start+end])
	assert.NoError(t, err)
}

func TestWriteCommandDropsBelowMinLevel(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "app.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("xsink:\n  logFile: app.log\n  minLevel: error\n"), 0o600))

	code, out, _ := runCLI(t, "-c", cfgPath, "--base-dir", dir, "write", "--level", "debug", "quiet")
	assert.Equal(t, 0, code)
	assert.Empty(t, out)
}

func TestWriteCommandDebugLog(t *testing.T) {
	dir := t.TempDir()
	code, _, errOut := runCLI(t, "--var-dir", dir, "--log-level", "debug", "--log-format", "json", "write", "m")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, errOut, `"msg":"sink opened"`)
}

func TestWriteCommandUsageErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		args []string
	}{
		{"缺少消息", []string{"--base-dir", dir, "write"}},
		{"无效级别", []string{"--base-dir", dir, "write", "--level", "loud", "m"}},
		{"无效元数据", []string{"--base-dir", dir, "write", "--data", "novalue", "m"}},
		{"无效诊断级别", []string{"--base-dir", dir, "--log-level", "loud", "write", "m"}},
		{"未知 flag", []string{"--no-such-flag", "path"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, _ := runCLI(t, tt.args...)
			assert.Equal(t, 2, code)
		})
	}
}

func TestParseData(t *testing.T) {
	data, err := parseData(nil)
	require.NoError(t, err)
	assert.Nil(t, data)

	data, err = parseData([]string{"a=1", "b=x=y", "a=2"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": "2", "b": "x=y"}, data)

	_, err = parseData([]string{"=v"})
	assert.Error(t, err)
}
