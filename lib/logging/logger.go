package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Logger writes leveled, colored messages to a single writer. Writes
// are synchronous so report lines keep their emission order.
type Logger struct {
	Level  int
	writer io.Writer
}

// NewLogger creates a new logger with log level, writing to w
// (os.Stdout when w is nil).
func NewLogger(w io.Writer, level int) *Logger {
	if w == nil {
		w = os.Stdout
	}
	return &Logger{
		Level:  level,
		writer: w,
	}
}

func (l *Logger) helper(format string, a []interface{}, msgColor *color.Color) {
	msg := fmt.Sprintf(format, a...)
	if msgColor != nil {
		msg = msgColor.Sprintf(format, a...)
	}
	fmt.Fprintf(l.writer, "%s\n", msg)
}

func (l *Logger) Debug(format string, a ...interface{}) {
	if l.Level >= 3 {
		l.helper(format, a, color.New(color.FgBlue, color.Italic))
	}
}

func (l *Logger) Info(format string, a ...interface{}) {
	if l.Level >= 2 {
		l.helper(format, a, nil)
	}
}

func (l *Logger) Warning(format string, a ...interface{}) {
	if l.Level >= 1 {
		l.helper(format, a, color.New(color.FgHiYellow))
	}
}

// Msg prints a message regardless of log level
func (l *Logger) Msg(format string, a ...interface{}) {
	l.helper(format, a, nil)
}

// Success prints a success message in green and bold font, regardless of log level
func (l *Logger) Success(format string, a ...interface{}) {
	l.helper(format, a, color.New(color.FgHiGreen, color.Bold))
}

// Error prints an error message in red and bold font, regardless of log level
func (l *Logger) Error(format string, a ...interface{}) {
	l.helper(format, a, color.New(color.FgHiRed, color.Bold))
}

func (l *Logger) SetDebugLevel(level int) {
	l.Level = level
}
