package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu    sync.RWMutex
	base  *zap.Logger
	sugar *zap.SugaredLogger
)

// Init builds the process logger. An empty filename logs to stdout only;
// otherwise output goes to both stdout and the file, appending.
func Init(level string, filename string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Development = false
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if filename != "" {
		cfg.OutputPaths = append(cfg.OutputPaths, filename)
	}

	l, err := cfg.Build()
	if err != nil {
		return err
	}
	Replace(l)
	return nil
}

// Replace swaps the global logger and returns a func restoring the previous one.
func Replace(l *zap.Logger) func() {
	mu.Lock()
	defer mu.Unlock()
	prevBase, prevSugar := base, sugar
	base, sugar = l, l.Sugar()
	return func() {
		mu.Lock()
		defer mu.Unlock()
		base, sugar = prevBase, prevSugar
	}
}

// L returns the structured logger.
func L() *zap.Logger {
	get()
	mu.RLock()
	defer mu.RUnlock()
	return base
}

func get() *zap.SugaredLogger {
	mu.RLock()
	s := sugar
	mu.RUnlock()
	if s != nil {
		return s
	}
	// Fallback when Init was never called, e.g. in library use.
	mu.Lock()
	defer mu.Unlock()
	if sugar == nil {
		enc := zap.NewDevelopmentEncoderConfig()
		enc.EncodeTime = zapcore.ISO8601TimeEncoder
		core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.Lock(os.Stdout), zapcore.InfoLevel)
		base = zap.New(core)
		sugar = base.Sugar()
	}
	return sugar
}

// Sync flushes buffered entries.
func Sync() {
	_ = get().Sync()
}

func Debugf(format string, v ...interface{}) {
	get().Debugf(format, v...)
}

func Info(format string, v ...interface{}) {
	get().Infof(format, v...)
}

func Infof(format string, v ...interface{}) {
	Info(format, v...)
}

func Warn(format string, v ...interface{}) {
	get().Warnf(format, v...)
}

func Warnf(format string, v ...interface{}) {
	Warn(format, v...)
}

func Error(format string, v ...interface{}) {
	get().Errorf(format, v...)
}

func Errorf(format string, v ...interface{}) {
	Error(format, v...)
}
