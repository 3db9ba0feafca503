// Package logging 提供基于 slog 的统一日志入口：控制台（文本或 JSON）输出，
// 可选的 lumberjack 滚动文件，以及 PGL_* 环境变量覆盖。
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Options 控制日志初始化，也可以通过环境变量提供：
//   - PGL_LOG_LEVEL=debug|info|warn|error
//   - PGL_LOG_FORMAT=console|json
//   - PGL_LOG_FILE=<path>（启用滚动文件）
//   - PGL_LOG_SOURCE=true|false
//
// 缺省为 info 级别、console 格式、不输出源码位置。
type Options struct {
	Level     string    `yaml:"level"`
	Format    string    `yaml:"format"` // "console" 或 "json"
	AddSource bool      `yaml:"source"`
	File      string    `yaml:"file"`
	Writer    io.Writer `yaml:"-"` // 控制台输出目标，为空时为 os.Stderr
}

var (
	defaultLoggerMu sync.RWMutex
	defaultLogger   *slog.Logger
)

// L returns the process logger, initializing it from the environment on first use.
func L() *slog.Logger {
	defaultLoggerMu.RLock()
	l := defaultLogger
	defaultLoggerMu.RUnlock()
	if l != nil {
		return l
	}
	Init(FromEnv())
	defaultLoggerMu.RLock()
	l = defaultLogger
	defaultLoggerMu.RUnlock()
	return l
}

// Init configures the process logger and slog.Default. When File is set the
// records are also written to a rotating log file in the same format.
func Init(opts Options) *slog.Logger {
	hopts := &slog.HandlerOptions{Level: parseLevel(opts.Level), AddSource: opts.AddSource}
	out := opts.Writer
	if out == nil {
		out = os.Stderr
	}
	if strings.TrimSpace(opts.File) != "" {
		out = io.MultiWriter(out, &lj.Logger{Filename: opts.File, MaxSize: 10, MaxBackups: 3, MaxAge: 28, Compress: true})
	}

	var h slog.Handler
	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		h = slog.NewJSONHandler(out, hopts)
	} else {
		hopts.ReplaceAttr = consoleAttr
		h = slog.NewTextHandler(out, hopts)
	}
	logger := slog.New(h).With(slog.String("app", "pagelayout"))

	defaultLoggerMu.Lock()
	defaultLogger = logger
	defaultLoggerMu.Unlock()
	slog.SetDefault(logger)
	return logger
}

// FromEnv builds Options from PGL_* environment variables.
func FromEnv() Options {
	return ApplyEnv(Options{Level: "info", Format: "console"})
}

// ApplyEnv overrides fields of opts with any PGL_LOG_* variables that are set.
func ApplyEnv(opts Options) Options {
	if v := os.Getenv("PGL_LOG_LEVEL"); v != "" {
		opts.Level = v
	}
	if v := os.Getenv("PGL_LOG_FORMAT"); v != "" {
		opts.Format = v
	}
	if v := os.Getenv("PGL_LOG_FILE"); v != "" {
		opts.File = v
	}
	if v := os.Getenv("PGL_LOG_SOURCE"); v != "" {
		opts.AddSource = strings.EqualFold(v, "true") || v == "1"
	}
	return opts
}

// WithComponent returns a logger with the component attribute pre-set.
func WithComponent(name string) *slog.Logger { return L().With(slog.String("component", name)) }

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// consoleAttr 缩短控制台输出：秒级时间戳与三字母级别。
func consoleAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}
	switch a.Key {
	case slog.TimeKey:
		if t, ok := a.Value.Any().(time.Time); ok {
			a.Value = slog.StringValue(t.Format(time.RFC3339))
		}
	case slog.LevelKey:
		if l, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(levelString(l))
		}
	}
	return a
}

func levelString(l slog.Level) string {
	switch l {
	case slog.LevelDebug:
		return "DBG"
	case slog.LevelInfo:
		return "INF"
	case slog.LevelWarn:
		return "WRN"
	case slog.LevelError:
		return "ERR"
	default:
		return l.String()
	}
}
