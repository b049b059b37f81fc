package internal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARNING
	ERROR
	SUCCESS
)

var levelColors = map[LogLevel]string{
	DEBUG:   "\033[90m",
	INFO:    "\033[36m",
	WARNING: "\033[33m",
	ERROR:   "\033[31m",
	SUCCESS: "\033[32m",
}

const colorReset = "\033[0m"

type Logger struct {
	mu     sync.Mutex
	level  LogLevel
	writer io.Writer
	color  bool
	now    func() time.Time
}

var (
	defaultLogger *Logger
	once          sync.Once
)

func NewLogger(out io.Writer, level LogLevel) *Logger {
	return &Logger{
		level:  level,
		writer: out,
		color:  isTerminal(out),
		now:    time.Now,
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// ParseLevel maps LOG_LEVEL values to a level. Unknown values fall back to INFO.
func ParseLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARNING
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

func InitDefaultLogger(level LogLevel) {
	once.Do(func() {
		defaultLogger = NewLogger(os.Stdout, level)
	})
}

func GetDefaultLogger() *Logger {
	if defaultLogger == nil {
		InitDefaultLogger(INFO)
	}
	return defaultLogger
}

func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *Logger) logInternal(level LogLevel, levelStr, format string, v ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	timestamp := l.now().Format(time.DateTime)
	msg := strings.TrimRight(fmt.Sprintf(format, v...), "\n")
	if l.color {
		levelStr = levelColors[level] + levelStr + colorReset
	}
	logEntry := fmt.Sprintf("%s [%s] %s\n", timestamp, levelStr, msg)

	_, _ = l.writer.Write([]byte(logEntry))
}

func (l *Logger) Debug(format string, v ...any) {
	l.logInternal(DEBUG, "DEBUG", format, v...)
}

func (l *Logger) Info(format string, v ...any) {
	l.logInternal(INFO, "INFO", format, v...)
}

func (l *Logger) Warn(format string, v ...any) {
	l.logInternal(WARNING, "WARNING", format, v...)
}

func (l *Logger) Error(format string, v ...any) {
	l.logInternal(ERROR, "ERROR", format, v...)
}

func (l *Logger) Success(format string, v ...any) {
	l.logInternal(SUCCESS, "SUCCESS", format, v...)
}

func Debug(format string, v ...any) {
	GetDefaultLogger().Debug(format, v...)
}

func Info(format string, v ...any) {
	GetDefaultLogger().Info(format, v...)
}

func Warn(format string, v ...any) {
	GetDefaultLogger().Warn(format, v...)
}

func Error(format string, v ...any) {
	GetDefaultLogger().Error(format, v...)
}

func Success(format string, v ...any) {
	GetDefaultLogger().Success(format, v...)
}
