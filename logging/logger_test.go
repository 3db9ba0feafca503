package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitJSONToFile(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "pgl.log")
	var console bytes.Buffer
	Init(Options{Level: "debug", Format: "json", File: fpath, Writer: &console})

	WithComponent("testcomp").Info("hello world", slog.String("k", "v"))

	b, err := os.ReadFile(fpath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	scanner := bufio.NewScanner(bytes.NewReader(b))
	var last string
	for scanner.Scan() {
		if s := strings.TrimSpace(scanner.Text()); s != "" {
			last = s
		}
	}
	if last == "" {
		t.Fatalf("no log lines found")
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(last), &m); err != nil {
		t.Fatalf("unmarshal json log: %v", err)
	}
	if m["app"] != "pagelayout" || m["component"] != "testcomp" || m["k"] != "v" || m["msg"] != "hello world" {
		t.Fatalf("unexpected record: %v", m)
	}
	if !strings.Contains(console.String(), `"msg":"hello world"`) {
		t.Fatalf("console output missing record: %s", console.String())
	}
}

func TestConsoleFormatsAndFilters(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "warn", Format: "console", Writer: &buf})

	l := WithComponent("layout")
	l.Info("should be filtered")
	l.Warn("跳过无效的布局条目", "item", "line", "err", "missing end")

	out := buf.String()
	if strings.Contains(out, "should be filtered") {
		t.Fatalf("info record should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "level=WRN msg=跳过无效的布局条目") {
		t.Fatalf("missing level/message: %s", out)
	}
	if !strings.Contains(out, "component=layout") || !strings.Contains(out, `err="missing end"`) {
		t.Fatalf("missing attrs: %s", out)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("PGL_LOG_LEVEL", "debug")
	t.Setenv("PGL_LOG_FORMAT", "json")
	t.Setenv("PGL_LOG_SOURCE", "true")
	opts := ApplyEnv(Options{Level: "info", Format: "console"})
	if opts.Level != "debug" || opts.Format != "json" || !opts.AddSource {
		t.Fatalf("env overrides not applied: %+v", opts)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARNING": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
