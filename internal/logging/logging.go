package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	mu      sync.Mutex
	logFile *os.File
	debug   bool
)

// Init routes the standard logger to stderr and, when logPath is set, to an append-mode log file.
func Init(logPath string) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}

	var writers []io.Writer
	writers = append(writers, os.Stderr)

	if logPath != "" {
		if dir := filepath.Dir(logPath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		logFile = file
		writers = append(writers, logFile)
	}

	log.SetOutput(io.MultiWriter(writers...))
	return nil
}

func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	log.SetOutput(os.Stderr)
	err := logFile.Close()
	logFile = nil
	return err
}

// SetDebug toggles Debugf output.
func SetDebug(enabled bool) {
	mu.Lock()
	debug = enabled
	mu.Unlock()
}

func debugEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return debug
}

// LogEvent logs a formatted event unconditionally.
func LogEvent(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Println(msg)
}

// Debugf logs only when debug output is enabled.
func Debugf(format string, args ...any) {
	if !debugEnabled() {
		return
	}
	log.Println("[DEBUG] " + fmt.Sprintf(format, args...))
}

// LogScanEvent records something that happened while scanning one file of a configuration.
func LogScanEvent(level, dir, file, event string, detail any) {
	msg := buildScanMessage(level, dir, file, event, detail)
	log.Println(msg)
}

func buildScanMessage(level, dir, file, event string, detail any) string {
	lvl := strings.TrimSpace(level)
	if lvl != "" {
		lvl = strings.ToUpper(lvl)
	}
	dirValue := strings.TrimSpace(dir)
	if dirValue == "" {
		dirValue = "unknown"
	}
	fileValue := strings.TrimSpace(file)
	if fileValue == "" {
		fileValue = "unknown"
	}
	parts := []string{fmt.Sprintf("[%s]", lvl)}
	parts = append(parts, fmt.Sprintf("dir=%s", dirValue))
	parts = append(parts, fmt.Sprintf("file=%s", fileValue))
	if event = strings.TrimSpace(event); event != "" {
		parts = append(parts, fmt.Sprintf("event=%s", event))
	}
	parts = append(parts, fmt.Sprintf("detail=%s", formatDetail(detail)))
	return strings.Join(parts, " ")
}

func formatDetail(detail any) string {
	switch v := detail.(type) {
	case nil:
		return "null"
	case error:
		return v.Error()
	case string:
		if strings.TrimSpace(v) == "" {
			return `""`
		}
		return v
	case []byte:
		if len(v) == 0 {
			return "[]"
		}
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}
