package logging

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// zapLogger adapts a *zap.Logger to Logger. The level is held in an
// AtomicLevel shared by derived loggers.
type zapLogger struct {
	logger *zap.Logger
	level  zap.AtomicLevel
}

// NewZapLogger wraps logger. The wrapper filters by its own level on top of
// the level logger was built with.
func NewZapLogger(logger *zap.Logger) Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &zapLogger{
		logger: logger,
		level:  zap.NewAtomicLevelAt(zapcore.DebugLevel),
	}
}

// NewZapProduction builds a JSON zap logger at level writing to stderr
func NewZapProduction(level Level) (Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(toZapLevel(level))
	z, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	l := NewZapLogger(z)
	l.SetLevel(level)
	return l, nil
}

// NewZapDevelopment builds a console zap logger at level writing to stderr
func NewZapDevelopment(level Level) (Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(toZapLevel(level))
	z, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	l := NewZapLogger(z)
	l.SetLevel(level)
	return l, nil
}

func (l *zapLogger) Debug(msg string, fields ...Field) { l.write(DebugLevel, msg, fields) }
func (l *zapLogger) Info(msg string, fields ...Field)  { l.write(InfoLevel, msg, fields) }
func (l *zapLogger) Warn(msg string, fields ...Field)  { l.write(WarnLevel, msg, fields) }
func (l *zapLogger) Error(msg string, fields ...Field) { l.write(ErrorLevel, msg, fields) }

func (l *zapLogger) write(level Level, msg string, fields []Field) {
	zl := toZapLevel(level)
	if !l.level.Enabled(zl) {
		return
	}
	if ce := l.logger.Check(zl, msg); ce != nil {
		ce.Write(toZapFields(fields)...)
	}
}

func (l *zapLogger) WithFields(fields ...Field) Logger {
	return &zapLogger{
		logger: l.logger.With(toZapFields(fields)...),
		level:  l.level,
	}
}

func (l *zapLogger) WithContext(ctx context.Context) Logger {
	return l.WithFields(contextFields(ctx)...)
}

func (l *zapLogger) WithError(err error) Logger {
	return l.WithFields(errorFields(err)...)
}

func (l *zapLogger) SetLevel(level Level) {
	l.level.SetLevel(toZapLevel(level))
}

func (l *zapLogger) GetLevel() Level {
	return fromZapLevel(l.level.Level())
}

// Sync flushes buffered entries
func (l *zapLogger) Sync() error {
	return l.logger.Sync()
}

func toZapFields(fields []Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		if err, ok := f.Value.(error); ok && f.Key == "error" {
			out = append(out, zap.Error(err))
			continue
		}
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}

func toZapLevel(level Level) zapcore.Level {
	switch level {
	case DebugLevel:
		return zapcore.DebugLevel
	case InfoLevel:
		return zapcore.InfoLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.FatalLevel
	}
}

func fromZapLevel(level zapcore.Level) Level {
	switch level {
	case zapcore.DebugLevel:
		return DebugLevel
	case zapcore.InfoLevel:
		return InfoLevel
	case zapcore.WarnLevel:
		return WarnLevel
	case zapcore.ErrorLevel:
		return ErrorLevel
	default:
		return OffLevel
	}
}
