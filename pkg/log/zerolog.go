package log

import (
	"context"
	"os"
	"sync"

	cerrors "github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	stablerrors "github.com/YuminosukeSato/stabl/pkg/errors"
)

// zerologLogger adapts a zerolog.Logger to the Logger interface.
type zerologLogger struct {
	logger zerolog.Logger
}

// zerologProvider is the default LoggerProvider backed by zerolog.
type zerologProvider struct {
	mu    sync.RWMutex
	root  zerolog.Logger
	level zerolog.Level
}

var (
	defaultProvider *zerologProvider
	providerOnce    sync.Once
)

// provider returns the process-wide default provider, initializing it on
// first use and routing library warnings through it.
func provider() *zerologProvider {
	providerOnce.Do(func() {
		root := zerolog.New(os.Stderr).With().Timestamp().Logger()
		defaultProvider = &zerologProvider{
			root:  root,
			level: zerolog.InfoLevel,
		}

		// Route errors.Warn through the structured logger.
		stablerrors.SetZerologWarnFunc(func(warning error) {
			l := defaultProvider.GetLoggerWithName("warnings")
			l.Warn(warning.Error(), ErrAttrKey, warning)
		})
	})
	return defaultProvider
}

// GetLogger returns the default structured logger.
func GetLogger() Logger {
	return provider().GetLogger()
}

// GetLoggerWithName returns a logger tagged with a component name.
func GetLoggerWithName(name string) Logger {
	return provider().GetLoggerWithName(name)
}

// SetLevel sets the minimum level for the default provider.
func SetLevel(level Level) {
	provider().SetLevel(level)
}

// GetLogger implements LoggerProvider.
func (p *zerologProvider) GetLogger() Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return &zerologLogger{logger: p.root.Level(p.level)}
}

// GetLoggerWithName implements LoggerProvider.
func (p *zerologProvider) GetLoggerWithName(name string) Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	l := p.root.Level(p.level).With().Str(ComponentKey, name).Logger()
	return &zerologLogger{logger: l}
}

// SetLevel implements LoggerProvider.
func (p *zerologProvider) SetLevel(level Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = toZerologLevel(level)
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// Debug implements Logger.
func (z *zerologLogger) Debug(msg string, fields ...any) {
	z.emit(z.logger.Debug(), msg, fields)
}

// Info implements Logger.
func (z *zerologLogger) Info(msg string, fields ...any) {
	z.emit(z.logger.Info(), msg, fields)
}

// Warn implements Logger.
func (z *zerologLogger) Warn(msg string, fields ...any) {
	z.emit(z.logger.Warn(), msg, fields)
}

// Error implements Logger.
func (z *zerologLogger) Error(msg string, fields ...any) {
	z.emit(z.logger.Error(), msg, fields)
}

// With implements Logger.
func (z *zerologLogger) With(fields ...any) Logger {
	ctx := z.logger.With()
	for k, v := range pairs(fields) {
		ctx = ctx.Interface(k, v)
	}
	return &zerologLogger{logger: ctx.Logger()}
}

// Enabled implements Logger.
func (z *zerologLogger) Enabled(_ context.Context, level Level) bool {
	return toZerologLevel(level) >= z.logger.GetLevel()
}

// emit writes one event, expanding error values into message plus stack trace.
func (z *zerologLogger) emit(e *zerolog.Event, msg string, fields []any) {
	for k, v := range pairs(fields) {
		if err, ok := v.(error); ok {
			e = e.AnErr(k, err)
			if trace := extractStacktrace(err); trace != "" {
				e = e.Str(StacktraceAttrKey, trace)
			}
			continue
		}
		e = e.Interface(k, v)
	}
	e.Msg(msg)
}

// pairs converts an alternating key-value slice into a map, skipping
// malformed entries rather than failing.
func pairs(fields []any) map[string]any {
	out := make(map[string]any, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		out[key] = fields[i+1]
	}
	return out
}

// extractStacktrace pulls the stack trace recorded by cockroachdb/errors.
func extractStacktrace(err error) string {
	safeDetails := cerrors.GetSafeDetails(err).SafeDetails
	if len(safeDetails) > 0 {
		return safeDetails[0]
	}
	return ""
}
