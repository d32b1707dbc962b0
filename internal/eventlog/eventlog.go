// Package eventlog appends auth and notification events to log/events.log when LOGGING=true.
package eventlog

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Levels
const (
	Debug   = "debug"
	Info    = "info"
	Warning = "warning"
	Error   = "error"
)

// Statuses
const (
	Success = "Success"
	Fail    = "Fail"
)

// Kinds
const (
	KindRegister    = "Register"
	KindVerify      = "Verify"
	KindResend      = "Resend"
	KindLogin       = "Login"
	KindLogout      = "Logout"
	KindApplication = "Application"
	KindEmail       = "Email"
)

var (
	loggingEnv = os.Getenv("LOGGING")
	logDir     = "log"
	mu         sync.Mutex
)

// Record appends an event to log/events.log.
// Fields: timestamp (RFC3339) | level | kind | status | identifier? | message?
// Failures to write are ignored.
func Record(level string, kind string, status string, identifier string, message string) {
	if !strings.EqualFold(loggingEnv, "true") {
		return
	}

	mu.Lock()
	defer mu.Unlock()

	if err := os.MkdirAll(logDir, 0o750); err != nil {
		return
	}
	f, err := os.OpenFile(filepath.Join(logDir, "events.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return
	}
	defer func() { _ = f.Close() }()

	ts := time.Now().UTC().Format(time.RFC3339)
	parts := []string{ts, level, kind, status}
	if identifier != "" {
		parts = append(parts, identifier)
	}
	if message != "" {
		parts = append(parts, strings.ReplaceAll(message, "\n", " "))
	}

	_, _ = f.WriteString(strings.Join(parts, " | ") + "\n")
}
