package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

var (
	debugLogger *log.Logger
	logFile     io.Closer
	mu          sync.Mutex
	isSetup     bool
)

// SetupLogger opens the debug log file. Later calls are no-ops until CloseLogger.
func SetupLogger(logFilePath string) error {
	mu.Lock()
	defer mu.Unlock()

	if isSetup {
		return nil
	}

	f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	setOutputLocked(f, f)
	return nil
}

// SetOutput sends debug logging to w instead of a file
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	if isSetup {
		closeLocked()
	}
	setOutputLocked(w, nil)
}

func setOutputLocked(w io.Writer, closer io.Closer) {
	debugLogger = log.New(w, "", log.LstdFlags)
	logFile = closer
	debugLogger.Printf("--- DupeFinder Debug Log Started at %s ---\n", time.Now().Format(time.RFC3339))
	isSetup = true
}

// CloseLogger closes the log file and disables debug logging
func CloseLogger() {
	mu.Lock()
	defer mu.Unlock()

	if isSetup {
		closeLocked()
	}
}

func closeLocked() {
	debugLogger.Printf("--- DupeFinder Debug Log Closed at %s ---\n", time.Now().Format(time.RFC3339))
	if logFile != nil {
		logFile.Close()
	}
	debugLogger = nil
	logFile = nil
	isSetup = false
}

// Enabled reports whether debug logging is active
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()

	return isSetup
}

// LogInfo logs an information message, falling back to the standard logger
func LogInfo(format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	if debugLogger != nil {
		debugLogger.Printf("INFO: "+format, args...)
	} else {
		log.Printf("INFO: "+format, args...)
	}
}

// DebugLog logs a message if debug mode is enabled
func DebugLog(format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	if debugLogger != nil {
		debugLogger.Printf(format, args...)
	}
}

// LogError logs an error message
func LogError(format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	if debugLogger != nil {
		debugLogger.Printf("ERROR: "+format, args...)
	}
}

// LogWarning logs a warning message
func LogWarning(format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	if debugLogger != nil {
		debugLogger.Printf("WARNING: "+format, args...)
	}
}

// LogGroupingRun logs the outcome of one grouping run
func LogGroupingRun(assets, sets, duplicates int, elapsed time.Duration) {
	mu.Lock()
	defer mu.Unlock()

	if debugLogger != nil {
		debugLogger.Printf("GROUPED: %d assets into %d duplicate sets (%d duplicates) in %v", assets, sets, duplicates, elapsed)
	}
}

// LogAssetImported logs when a manifest entry is imported
func LogAssetImported(path string, success bool, errMsg string) {
	mu.Lock()
	defer mu.Unlock()

	if debugLogger != nil {
		if success {
			debugLogger.Printf("IMPORTED: %s", path)
		} else {
			debugLogger.Printf("FAILED: %s - Error: %s", path, errMsg)
		}
	}
}
