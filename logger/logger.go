package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps a zerolog logger with the component fields of the crawler
type Logger struct {
	logger zerolog.Logger
}

// Fields represents log fields
type Fields map[string]interface{}

var (
	// Default is the default logger instance
	Default *Logger
)

// Init initializes the default logger from LOG_LEVEL and PFLANZEN_ENVIRONMENT.
// Production runs log JSON lines, everything else a console format.
func Init() {
	level := getLogLevel()

	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(level)

	var output io.Writer = zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	}
	if isProduction() {
		output = os.Stderr
	}

	Default = New(zerolog.New(output).With().Timestamp().Logger())

	Default.Debug().
		Str("level", level.String()).
		Msg("Logger initialized")
}

func isProduction() bool {
	return os.Getenv("PFLANZEN_ENVIRONMENT") == "production"
}

// getLogLevel returns the log level from environment variable
func getLogLevel() zerolog.Level {
	levelStr := os.Getenv("LOG_LEVEL")
	if levelStr == "" {
		if isProduction() {
			return zerolog.InfoLevel
		}
		return zerolog.DebugLevel
	}

	level, err := zerolog.ParseLevel(levelStr)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// New wraps an existing zerolog logger
func New(l zerolog.Logger) *Logger {
	return &Logger{logger: l}
}

// WithFields creates a new logger with fields
func (l *Logger) WithFields(fields Fields) *Logger {
	ctx := l.logger.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return &Logger{logger: ctx.Logger()}
}

// WithField creates a new logger with a single string field
func (l *Logger) WithField(key, value string) *Logger {
	return &Logger{logger: l.logger.With().Str(key, value).Logger()}
}

func (l *Logger) Debug() *zerolog.Event { return l.logger.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.logger.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.logger.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.logger.Error() }
func (l *Logger) Fatal() *zerolog.Event { return l.logger.Fatal() }

// Debug logs a printf-style debug message on the default logger
func Debug(format string, v ...interface{}) {
	ensure()
	Default.Debug().Msgf(format, v...)
}

// Info logs a printf-style info message on the default logger
func Info(format string, v ...interface{}) {
	ensure()
	Default.Info().Msgf(format, v...)
}

func ensure() {
	if Default == nil {
		Init()
	}
}

// IsDebugEnabled reports whether debug events would be written
func IsDebugEnabled() bool {
	ensure()
	return Default.logger.GetLevel() <= zerolog.DebugLevel && zerolog.GlobalLevel() <= zerolog.DebugLevel
}

// ForCrawler creates a logger for the crawl of one category
func ForCrawler(category string) *Logger {
	ensure()
	return Default.WithFields(Fields{"component": "crawler", "category": category})
}

// ForFetcher creates a logger for the page fetcher
func ForFetcher() *Logger {
	ensure()
	return Default.WithField("component", "fetcher")
}

// ForExporter creates a logger for the CSV exporter
func ForExporter() *Logger {
	ensure()
	return Default.WithField("component", "exporter")
}

// ForWorker creates a logger for the worker
func ForWorker() *Logger {
	ensure()
	return Default.WithField("component", "worker")
}

// ForPublisher creates a logger for the publisher
func ForPublisher() *Logger {
	ensure()
	return Default.WithField("component", "publisher")
}

// ForCache creates a logger for the page cache
func ForCache() *Logger {
	ensure()
	return Default.WithField("component", "cache")
}

// LogError logs err on the default logger under a component name
func LogError(component string, err error, format string, v ...interface{}) {
	ensure()
	Default.Error().
		Str("component", component).
		Err(err).
		Msg(fmt.Sprintf(format, v...))
}
