// Package ipc provides the local endpoint transport used for daemon control.
package ipc

import (
	"time"
)

// RecommendedDialTimeout is the recommended timeout to use when dialing the
// daemon's IPC endpoint.
const RecommendedDialTimeout = 1 * time.Second
