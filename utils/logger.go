// utils/logger.go
package utils

import (
	"fmt"
	"log"
)

// Global verbose flag
var Verbose = true

// Global silent flag, used by tests to suppress log output
var silent = false

// LogInfo logs an info message
func LogInfo(format string, args ...interface{}) {
	if silent {
		return
	}
	log.Printf("[INFO] "+format, args...)
}

// LogDebug logs a debug message if verbose mode is enabled
func LogDebug(format string, args ...interface{}) {
	if silent || !Verbose {
		return
	}
	log.Printf("[DEBUG] "+format, args...)
}

// LogError logs an error message
func LogError(format string, args ...interface{}) {
	if silent {
		return
	}
	log.Printf("[ERROR] "+format, args...)
}

// SetVerbose sets the verbose logging mode
func SetVerbose(v bool) {
	Verbose = v
}

// GetVerbose returns the current verbose logging mode
func GetVerbose() bool {
	return Verbose
}

// SetSilent disables all log output; intended for tests
func SetSilent(s bool) {
	silent = s
}

// PrintStartupMessage prints a formatted startup message
func PrintStartupMessage(apiPort int, wsPort int) {
	fmt.Println("---------------------------------------------------")
	fmt.Printf("| Block Ledger Node Started                        |\n")
	fmt.Printf("| API: %-42s |\n", fmt.Sprintf("HTTP Server (:%d)", apiPort))
	fmt.Printf("| Replication: %-34s |\n", fmt.Sprintf("WebSocket (:%d)", wsPort))
	fmt.Println("---------------------------------------------------")
}
