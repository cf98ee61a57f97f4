package daemon

import (
	"io"

	"github.com/pkg/errors"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// logMaximumSize is the size, in megabytes, at which the daemon log file
	// is rotated.
	logMaximumSize = 10
	// logMaximumBackups is the number of rotated daemon log files to retain.
	logMaximumBackups = 2
)

// NewLogWriter creates a size-rotated writer for daemon log output. Rotation
// keeps long-running daemons from growing their log without bound.
func NewLogWriter() (io.WriteCloser, error) {
	logPath, err := subpath(logName)
	if err != nil {
		return nil, errors.Wrap(err, "unable to compute daemon log path")
	}
	return &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaximumSize,
		MaxBackups: logMaximumBackups,
	}, nil
}
