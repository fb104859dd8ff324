package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

type Level int

const (
	DEBUG Level = iota
	INFO
	ERROR
)

// ParseLevel maps a level name to a Level, case-insensitively. Unknown names map to INFO.
func ParseLevel(level string) Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return DEBUG
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

type Logger struct {
	level       Level
	infoLogger  *log.Logger
	errorLogger *log.Logger
	debugLogger *log.Logger
}

// New creates a logger writing info and debug to stdout and errors to stderr
func New(level string) *Logger {
	return newLogger(level, os.Stdout, os.Stderr)
}

// NewWithWriter creates a logger sending every level to w
func NewWithWriter(level string, w io.Writer) *Logger {
	return newLogger(level, w, w)
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	return NewWithWriter("ERROR", io.Discard)
}

func newLogger(level string, out, errOut io.Writer) *Logger {
	return &Logger{
		level:       ParseLevel(level),
		infoLogger:  log.New(out, "[INFO] ", log.Ldate|log.Ltime|log.Lshortfile),
		errorLogger: log.New(errOut, "[ERROR] ", log.Ldate|log.Ltime|log.Lshortfile),
		debugLogger: log.New(out, "[DEBUG] ", log.Ldate|log.Ltime|log.Lshortfile),
	}
}

func (l *Logger) log(level Level, logger *log.Logger, format string, v ...interface{}) {
	if level >= l.level {
		logger.Output(3, fmt.Sprintf(format, v...))
	}
}

func (l *Logger) Info(format string, v ...interface{}) {
	l.log(INFO, l.infoLogger, format, v...)
}

func (l *Logger) Error(format string, v ...interface{}) {
	l.log(ERROR, l.errorLogger, format, v...)
}

func (l *Logger) Debug(format string, v ...interface{}) {
	l.log(DEBUG, l.debugLogger, format, v...)
}
