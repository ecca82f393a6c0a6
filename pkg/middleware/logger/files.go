package logger

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	dirMu  sync.Mutex
	logDir = "log"
)

// SetLogDir overrides the log directory. Call before the first logger is
// built (the access logger is created lazily on first request).
func SetLogDir(dir string) {
	if dir == "" {
		return
	}
	dirMu.Lock()
	logDir = dir
	dirMu.Unlock()
}

func ensureLogDir() string {
	dirMu.Lock()
	dir := logDir
	dirMu.Unlock()
	_ = os.MkdirAll(dir, 0o755)
	return dir
}

func NewLog(n string) *zap.Logger {
	dir := ensureLogDir()

	cfg := zap.NewProductionEncoderConfig()
	cfg.MessageKey = zapcore.OmitKey

	console := zapcore.Lock(os.Stdout)

	w := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(dir, n),
		MaxSize:    50, // MB
		MaxBackups: 3,
		MaxAge:     7, // days
	})

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(cfg), w, zap.InfoLevel),
		zapcore.NewCore(zapcore.NewJSONEncoder(cfg), console, zap.InfoLevel),
	)
	return zap.New(core)
}

// access logger is built on first use so SetLogDir can run beforehand.
var (
	accessMu     sync.Mutex
	accessLogger *zap.Logger
)

func httpAccessLogger() *zap.Logger {
	accessMu.Lock()
	defer accessMu.Unlock()
	if accessLogger == nil {
		accessLogger = NewLog("http-access.log")
	}
	return accessLogger
}

// SetAccessLogger lets tests/CLIs override the access logger (optional).
func SetAccessLogger(l *zap.Logger) {
	if l != nil {
		accessMu.Lock()
		accessLogger = l
		accessMu.Unlock()
	}
}
