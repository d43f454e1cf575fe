// Package logging wraps logrus with the caller-tagged single-line
// formatter the rest of this server expects.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger. Configure it once via Init before
// spawning any connection handlers.
var Log = logrus.New()

// CallerFormatter renders one line per entry: timestamp, level,
// caller, message.
type CallerFormatter struct{}

// Format implements logrus.Formatter.
func (CallerFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	timestamp := entry.Time.Format("15:04:05 2006-01-02")
	level := strings.ToUpper(entry.Level.String())
	if len(level) > 4 {
		level = level[:4]
	}
	return []byte(fmt.Sprintf("[%s] [%s] (%s) %s\n", timestamp, level, caller(), entry.Message)), nil
}

func caller() string {
	for i := 2; i < 20; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		if strings.Contains(file, "/logrus/") || strings.Contains(file, "logging.go") {
			continue
		}
		fn := runtime.FuncForPC(pc)
		name := "unknown"
		if fn != nil {
			name = fn.Name()
		}
		return fmt.Sprintf("%s:%s:%d", filepath.Base(file), name, line)
	}
	return "unknown:unknown:0"
}

// Init configures the level and output destination. An empty level
// defaults to "info".
func Init(level string, debug bool) error {
	Log.SetFormatter(CallerFormatter{})
	Log.SetOutput(os.Stderr)
	if debug {
		level = "debug"
	}
	if level == "" {
		level = "info"
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	Log.SetLevel(parsed)
	return nil
}
