package logging

import (
	"io"
	"os"
)

var logger = NewLogger(os.Stdout, 2)

// SetOutput redirects the default logger, mainly for tests. A nil
// writer restores stdout.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	logger.writer = w
}

func SetDebugLevel(level int) {
	logger.SetDebugLevel(level)
}

func Printf(format string, a ...interface{}) {
	logger.Msg(format, a...)
}

func Successf(format string, a ...interface{}) {
	logger.Success(format, a...)
}

func Infof(format string, a ...interface{}) {
	logger.Info(format, a...)
}

func Debugf(format string, a ...interface{}) {
	logger.Debug(format, a...)
}

func Warningf(format string, a ...interface{}) {
	logger.Warning(format, a...)
}

func Errorf(format string, a ...interface{}) {
	logger.Error(format, a...)
}
