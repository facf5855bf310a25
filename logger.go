package clickhouse

import (
	"fmt"

	"go.uber.org/zap"
)

type LogLevel int

const (
	LogLevelNone LogLevel = iota
	LogLevelDev
	LogLevelProd
)

type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type zapLogger struct {
	l *zap.SugaredLogger
}

func newZapLogger(env LogLevel) (*zapLogger, error) {
	switch env {
	case LogLevelNone:
		return nopLogger(), nil
	case LogLevelDev:
		l, err := zap.NewDevelopmentConfig().Build()
		if err != nil {
			return nil, err
		}
		return &zapLogger{l.Sugar()}, nil
	case LogLevelProd:
		l, err := zap.NewProductionConfig().Build()
		if err != nil {
			return nil, err
		}
		return &zapLogger{l.Sugar()}, nil
	}
	return nil, fmt.Errorf("log level should be one of LogLevelNone, LogLevelDev or LogLevelProd")
}

func nopLogger() *zapLogger {
	return &zapLogger{zap.NewNop().Sugar()}
}

// NewLogger wraps an existing zap logger.
func NewLogger(l *zap.Logger) Logger {
	return &zapLogger{l.Sugar()}
}

func (z *zapLogger) Debugf(format string, args ...any) {
	z.l.Debugf(format, args...)
}

func (z *zapLogger) Infof(format string, args ...any) {
	z.l.Infof(format, args...)
}

func (z *zapLogger) Warnf(format string, args ...any) {
	z.l.Warnf(format, args...)
}

func (z *zapLogger) Errorf(format string, args ...any) {
	z.l.Errorf(format, args...)
}

// queryLabel names a query in log lines, with its id when there is one.
func queryLabel(id string) string {
	if id == "" {
		return "query"
	}
	return "query " + id
}
