package logging

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/fatih/color"
)

// currentLevel is the minimum level at which messages are actually emitted. It
// is set once at startup (from the NFD2NFC_LOG_LEVEL environment variable or
// via SetLevel) and applies to all loggers in the hierarchy.
var currentLevel = LevelInfo

// init performs global initialization.
func init() {
	// Allow the log level to be overridden by the environment.
	if name := os.Getenv("NFD2NFC_LOG_LEVEL"); name != "" {
		if level, ok := NameToLevel(name); ok {
			currentLevel = level
		}
	}
}

// SetLevel sets the minimum level at which messages are emitted. It is not
// safe to call concurrently with logging operations and should be invoked
// during process initialization.
func SetLevel(level Level) {
	currentLevel = level
}

// SetOutput redirects log output to the specified writer. Like SetLevel, it
// should be invoked during process initialization.
func SetOutput(output io.Writer) {
	log.SetOutput(output)
}

// writer is an io.Writer that splits its input stream into lines and writes
// those lines to an underlying logger.
type writer struct {
	// callback is the logging callback.
	callback func(string)
	// buffer is any incomplete line fragment left over from a previous write.
	buffer []byte
}

// trimCarriageReturn trims any single trailing carriage return from the end of
// a byte slice.
func trimCarriageReturn(buffer []byte) []byte {
	if len(buffer) > 0 && buffer[len(buffer)-1] == '\r' {
		return buffer[:len(buffer)-1]
	}
	return buffer
}

// Write implements io.Writer.Write.
func (w *writer) Write(buffer []byte) (int, error) {
	// Append the data to our internal buffer.
	w.buffer = append(w.buffer, buffer...)

	// Process all complete lines in the buffer.
	var processed int
	remaining := w.buffer
	for {
		index := bytes.IndexByte(remaining, '\n')
		if index == -1 {
			break
		}
		w.callback(string(trimCarriageReturn(remaining[:index])))
		processed += index + 1
		remaining = remaining[index+1:]
	}

	// If we managed to process bytes, then truncate our internal buffer.
	if processed > 0 {
		leftover := len(w.buffer) - processed
		if leftover > 0 {
			copy(w.buffer[:leftover], w.buffer[processed:])
		}
		w.buffer = w.buffer[:leftover]
	}

	// Done.
	return len(buffer), nil
}

// Logger is the main logger type. It has the novel property that it still
// functions if nil, but it doesn't log anything. It is designed to use the
// standard logger provided by the log package, so it respects any flags or
// output set for that logger. It is safe for concurrent usage.
type Logger struct {
	// prefix is any prefix specified for the logger.
	prefix string
}

// RootLogger is the root logger from which all other loggers derive.
var RootLogger = &Logger{}

// Sublogger creates a new sublogger with the specified name.
func (l *Logger) Sublogger(name string) *Logger {
	// If the logger is nil, then the sublogger will be as well.
	if l == nil {
		return nil
	}

	// Compute the new prefix.
	prefix := name
	if l.prefix != "" {
		prefix = l.prefix + "." + name
	}

	// Create the new logger.
	return &Logger{
		prefix: prefix,
	}
}

// output is the internal logging method.
func (l *Logger) output(calldepth int, line string) {
	// Add a prefix if necessary.
	if l.prefix != "" {
		line = fmt.Sprintf("[%s] %s", l.prefix, line)
	}

	// Log.
	log.Output(calldepth, line)
}

// Info logs information with semantics equivalent to fmt.Print.
func (l *Logger) Info(v ...interface{}) {
	if l != nil && currentLevel >= LevelInfo {
		l.output(3, fmt.Sprint(v...))
	}
}

// Infof logs information with semantics equivalent to fmt.Printf.
func (l *Logger) Infof(format string, v ...interface{}) {
	if l != nil && currentLevel >= LevelInfo {
		l.output(3, fmt.Sprintf(format, v...))
	}
}

// Debug logs debugging information with semantics equivalent to fmt.Print.
func (l *Logger) Debug(v ...interface{}) {
	if l != nil && currentLevel >= LevelDebug {
		l.output(3, fmt.Sprint(v...))
	}
}

// Debugf logs debugging information with semantics equivalent to fmt.Printf.
func (l *Logger) Debugf(format string, v ...interface{}) {
	if l != nil && currentLevel >= LevelDebug {
		l.output(3, fmt.Sprintf(format, v...))
	}
}

// Warn logs error information with a warning prefix and yellow color.
func (l *Logger) Warn(err error) {
	if l != nil && currentLevel >= LevelWarn {
		l.output(3, color.YellowString("Warning: %v", err))
	}
}

// Warnf logs a formatted warning message with yellow color.
func (l *Logger) Warnf(format string, v ...interface{}) {
	if l != nil && currentLevel >= LevelWarn {
		l.output(3, color.YellowString("Warning: "+format, v...))
	}
}

// Error logs error information with an error prefix and red color.
func (l *Logger) Error(err error) {
	if l != nil && currentLevel >= LevelError {
		l.output(3, color.RedString("Error: %v", err))
	}
}

// Errorf logs a formatted error message with red color.
func (l *Logger) Errorf(format string, v ...interface{}) {
	if l != nil && currentLevel >= LevelError {
		l.output(3, color.RedString("Error: "+format, v...))
	}
}

// Writer returns an io.Writer that writes lines at info level.
func (l *Logger) Writer() io.Writer {
	// If the logger is nil, then we can just discard input since it won't be
	// logged anyway. This saves us the overhead of scanning lines.
	if l == nil {
		return io.Discard
	}

	// Create the writer.
	return &writer{
		callback: func(s string) {
			l.Info(s)
		},
	}
}
