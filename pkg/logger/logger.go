package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

var (
	verboseMode bool
	debugLogger *log.Logger
	errorLogger *log.Logger
)

func init() {
	SetOutput(os.Stderr)
}

// SetOutput redirects the loggers. Stdout is left to the reports so it
// stays parseable.
func SetOutput(w io.Writer) {
	debugLogger = log.New(w, "", 0)
	errorLogger = log.New(w, "ERROR: ", 0)
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(verbose bool) {
	verboseMode = verbose
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	return verboseMode
}

func getTimestamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

// Debugf logs a formatted debug message if verbose mode is enabled.
// Includes a timestamp.
func Debugf(format string, v ...interface{}) {
	if verboseMode {
		debugLogger.Printf("[%s] DEBUG: %s", getTimestamp(), fmt.Sprintf(format, v...))
	}
}

// Errorf logs a formatted error message.
func Errorf(format string, v ...interface{}) {
	errorLogger.Printf(format, v...)
}
