package logger

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
)

// Logger type is interface for available logging methods.
type Logger interface {
	Trace(...interface{})
	Debug(...interface{})
	Info(...interface{})
	Warn(...interface{})
	Error(...interface{})
	Panic(...interface{})
	Fatal(...interface{})
}

// LoggerImpl is a struct that extends sirupsen/logrus.
type LoggerImpl struct {
	Logger         *log.Entry
	Service        string
	LogLevelStr    string
	PrintStackDump bool
}

// NewLogger will create a new logger implementation that writes text to stderr.
// An invalid level is reported and causes exit(1).
func NewLogger(serviceName string, level string, stackDumpOnPanic bool) *LoggerImpl {
	log.SetOutput(os.Stderr)
	logLevel, err := log.ParseLevel(level)
	if err != nil {
		fmt.Println("Error setting up logging: ", err)
		os.Exit(1)
	}
	log.SetLevel(logLevel)
	logger := log.WithFields(log.Fields{
		"service": serviceName,
	})
	return &LoggerImpl{Logger: logger, Service: serviceName, LogLevelStr: level, PrintStackDump: stackDumpOnPanic}
}

// NewJsonLogger is like NewLogger but emits JSON lines, which suits 12factor and Lambda mode where
// output goes to a log collector instead of a terminal.
func NewJsonLogger(serviceName string, level string, stackDumpOnPanic bool) *LoggerImpl {
	l := NewLogger(serviceName, level, stackDumpOnPanic)
	log.SetFormatter(&log.JSONFormatter{})
	return l
}

// WithRunId returns a copy of the logger whose entries carry the given run id.
func (l *LoggerImpl) WithRunId(runId string) *LoggerImpl {
	c := *l
	c.Logger = l.Logger.WithField("runId", runId)
	return &c
}

// Trace log.
func (l *LoggerImpl) Trace(message ...interface{}) {
	l.Logger.Trace(message...)
}

// Debug log.
func (l *LoggerImpl) Debug(message ...interface{}) {
	l.Logger.Debug(message...)
}

// Info log.
func (l *LoggerImpl) Info(message ...interface{}) {
	l.Logger.Info(message...)
}

// Warn log.
func (l *LoggerImpl) Warn(message ...interface{}) {
	l.Logger.Warn(message...)
}

// Error (with stack trace in trace mode or when PrintStackDump is set).
func (l *LoggerImpl) Error(message ...interface{}) {
	if l.PrintStackDump || l.LogLevelStr == "trace" {
		l.Logger.WithField("stackTrace", fmt.Sprintf("%s", debug.Stack())).Error(message...)
		return
	}
	l.Logger.Error(message...)
}

// Panic logs with a stack dump in debug|trace mode or if the user explicitly sets PrintStackDump.
// Otherwise it logs the message and exits without a stack dump.
func (l *LoggerImpl) Panic(message ...interface{}) {
	switch {
	case l.PrintStackDump && (l.LogLevelStr == "debug" || l.LogLevelStr == "trace"):
		l.Logger.WithField("stackTrace", fmt.Sprintf("%s", debug.Stack())).Panic(message...)
	case l.PrintStackDump:
		l.Logger.Panic(message...)
	default:
		l.Logger.Fatal(message...)
	}
}

// Fatal (with stack trace in debug mode).
// This causes exit(1) without a stack dump by default.
// Call Panic() to get a stack dump instead.
func (l *LoggerImpl) Fatal(message ...interface{}) {
	if l.LogLevelStr == "debug" || l.LogLevelStr == "trace" {
		l.Logger.WithField("stackTrace", fmt.Sprintf("%s", debug.Stack())).Fatal(message...)
	} else {
		l.Logger.Fatal(message...)
	}
}

// SetOutput will set the log output to the Writer supplied.
func (l *LoggerImpl) SetOutput(writer io.Writer) {
	log.SetOutput(writer)
}

// ValidateLevel returns an error if level is not a known log level.
func ValidateLevel(level string) error {
	_, err := log.ParseLevel(level)
	return err
}
