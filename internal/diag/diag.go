// Package diag is the resolution pipeline's diagnostics sink. It plays
// the role gofem/inp/logging.go plays for the finite-element solver:
// a single place warnings and non-fatal errors are recorded so the CLI
// facade can render them at the end of a run (spec.md §7).
package diag

import (
	"fmt"
	"log"
	"os"
	"sync"
)

// Sink accumulates warnings raised during resolution. Quadric-signature
// fallbacks and FILL per-element bounding-box failures are routed
// through Warn rather than aborting the run.
type Sink struct {
	mu       sync.Mutex
	warnings []string
	logger   *log.Logger
}

// New builds a Sink writing to w (typically a log file opened once at
// startup, mirroring inp.InitLogFile).
func New(w *os.File) *Sink {
	if w == nil {
		w = os.Stderr
	}
	return &Sink{logger: log.New(w, "", log.LstdFlags)}
}

// Warn records a non-fatal diagnostic. It never stops the caller.
func (s *Sink) Warn(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	s.mu.Lock()
	s.warnings = append(s.warnings, msg)
	s.mu.Unlock()
	s.logger.Printf("WARN: %s", msg)
}

// LogErr logs err (if non-nil) under msg and reports whether the
// caller should stop, matching the LogErr(err, msg) idiom of
// gofem/inp/logging.go.
func (s *Sink) LogErr(err error, msg string) (stop bool) {
	if err == nil {
		return false
	}
	s.logger.Printf("ERROR: %s: %v", msg, err)
	return true
}

// Warnings returns a snapshot of accumulated warnings.
func (s *Sink) Warnings() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.warnings))
	copy(out, s.warnings)
	return out
}
