package rectify

import (
	"fmt"
	"os"
	"path/filepath"
)

// logger writes plain-text progress lines to stderr, and optionally mirrors
// them to a log file under Options.DebugDir. This mirrors the teacher's
// debug-print convention (internal/via/boundary.go: fmt.Printf calls gated
// by a debug directory/bool) rather than pulling in a structured-logging
// library the teacher itself never uses.
type logger struct {
	debugDir string
	file     *os.File
}

func newLogger(debugDir string) *logger {
	l := &logger{debugDir: debugDir}
	if debugDir != "" {
		if err := os.MkdirAll(debugDir, 0o755); err == nil {
			f, err := os.Create(filepath.Join(debugDir, "rectify.log"))
			if err == nil {
				l.file = f
			}
		}
	}
	return l
}

func (l *logger) Printf(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, line)
	if l.file != nil {
		fmt.Fprintln(l.file, line)
	}
}

func (l *logger) Close() {
	if l.file != nil {
		l.file.Close()
	}
}
