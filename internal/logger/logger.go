// 包 logger：生成器与服务共用的结构化日志；按进程组件打标签，生成阶段统一以 stage_done 事件计时
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

var current atomic.Pointer[slog.Logger]

// Config：日志配置，零值等价于 info 级文本输出到标准错误
type Config struct {
	Level     string
	Format    string
	Component string
	Out       io.Writer
}

// ConfigFromEnv：读取 LOG_LEVEL / LOG_FORMAT
func ConfigFromEnv(component string) Config {
	return Config{
		Level:     os.Getenv("LOG_LEVEL"),
		Format:    os.Getenv("LOG_FORMAT"),
		Component: component,
	}
}

// New：按配置构建日志器；Component 非空时每条记录带 component 字段
func New(c Config) *slog.Logger {
	out := c.Out
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(c.Level)}
	var h slog.Handler
	if strings.EqualFold(c.Format, "json") {
		h = slog.NewJSONHandler(out, opts)
	} else {
		h = slog.NewTextHandler(out, opts)
	}
	l := slog.New(h)
	if c.Component != "" {
		l = l.With("component", c.Component)
	}
	return l
}

// ParseLevel：未识别的取值回退到 info
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Setup：以环境变量配置进程级日志器并返回
// 约束：标准输出留给 CLI 的结果文本，日志只写标准错误
func Setup(component string) *slog.Logger {
	return Use(New(ConfigFromEnv(component)))
}

// Use：替换进程级日志器，返回新值；测试借此捕获输出
func Use(l *slog.Logger) *slog.Logger {
	current.Store(l)
	return l
}

// L：进程级日志器，未初始化时按环境变量懒加载
func L() *slog.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	l := New(ConfigFromEnv(""))
	if current.CompareAndSwap(nil, l) {
		return l
	}
	return current.Load()
}

// Stage：生成阶段计时器
type Stage struct {
	l     *slog.Logger
	name  string
	start time.Time
}

// StartStage：l 为 nil 时使用进程级日志器
func StartStage(l *slog.Logger, name string) *Stage {
	if l == nil {
		l = L()
	}
	return &Stage{l: l, name: name, start: time.Now()}
}

// Done：输出 stage_done 事件并返回耗时，附加字段随事件一起输出
func (s *Stage) Done(attrs ...any) time.Duration {
	d := time.Since(s.start)
	args := append([]any{"stage", s.name, "duration_ms", d.Milliseconds()}, attrs...)
	s.l.Info("stage_done", args...)
	return d
}
