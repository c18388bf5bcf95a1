package logger

import (
	"io"
	"log"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/xiebiao/bookshelf/internal/infrastructure/config"
)

// New 根据配置构建zap日志
// - format=json输出JSON（ts为ISO8601），否则输出彩色控制台格式
// - output为文件路径时额外写入lumberjack切割文件
// 返回的cleanup在退出前调用，刷新缓冲
func New(cfg config.LogConfig) (*zap.Logger, func()) {
	var lvl zapcore.Level
	if err := lvl.Set(cfg.Level); err != nil {
		lvl = zapcore.InfoLevel
	}

	json := cfg.Format == "json"
	enc := newEncoder(json)

	cores := []zapcore.Core{
		zapcore.NewCore(enc, zapcore.AddSync(os.Stdout), lvl),
	}

	if out := strings.TrimSpace(cfg.Output); out != "" && out != "stdout" {
		rotator := &lumberjack.Logger{
			Filename:   out,
			MaxSize:    max(1, cfg.MaxSizeMB),
			MaxBackups: max(0, cfg.MaxBackups),
			MaxAge:     max(0, cfg.MaxAgeDays),
			Compress:   cfg.Compress,
		}
		// 文件固定用JSON，便于采集
		cores = append(cores, zapcore.NewCore(newEncoder(true), zapcore.AddSync(rotWriter{rotator}), lvl))
	}

	core := zapcore.NewSamplerWithOptions(zapcore.NewTee(cores...), time.Second, 100, 100)

	var opts []zap.Option
	if cfg.EnableCaller {
		opts = append(opts, zap.AddCaller())
	}
	if !json {
		opts = append(opts, zap.Development())
	}

	l := zap.New(core, opts...)
	return l, func() { _ = l.Sync() }
}

func newEncoder(json bool) zapcore.Encoder {
	if json {
		cfg := zap.NewProductionEncoderConfig()
		cfg.TimeKey = "ts"
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncodeCaller = zapcore.ShortCallerEncoder
		return zapcore.NewJSONEncoder(cfg)
	}
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

// rotWriter lumberjack自行落盘，Sync无需操作
type rotWriter struct{ *lumberjack.Logger }

func (w rotWriter) Sync() error { return nil }

// StdLogger 把zap桥接成标准库*log.Logger（GORM日志使用）
func StdLogger(l *zap.Logger, level zapcore.Level) *log.Logger {
	std, err := zap.NewStdLogAt(l, level)
	if err != nil {
		return zap.NewStdLog(l)
	}
	return std
}

// Writer 把zap包装成io.Writer，例如gin的DefaultErrorWriter
func Writer(l *zap.Logger, level zapcore.Level) io.Writer {
	return &zapWriter{l: l, level: level}
}

type zapWriter struct {
	l     *zap.Logger
	level zapcore.Level
}

func (w *zapWriter) Write(p []byte) (int, error) {
	msg := strings.TrimRight(string(p), "\r\n")
	if ce := w.l.Check(w.level, msg); ce != nil {
		ce.Write()
	}
	return len(p), nil
}
