package signalhandler

import (
	"os"
	"os/signal"
	"runtime"
	"syscall"
)

// SetupHandler runs cleanup and exits when SIGINT or SIGTERM arrives, so an
// interrupted import or grouping run still closes the catalog and the debug log.
// The returned function stops signal handling.
func SetupHandler(cleanup func()) func() {
	// Create a channel to receive OS signals
	sigChan := make(chan os.Signal, 1)
	stop := make(chan struct{})

	// Register for specific signals
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Handle signals in a separate goroutine
	go func() {
		select {
		case <-sigChan:
			if cleanup != nil {
				cleanup()
			}
			// 128 + SIGINT, as shells report an interrupted command
			os.Exit(130)
		case <-stop:
		}
	}()

	return func() {
		signal.Stop(sigChan)
		close(stop)
	}
}

// GetOptimalProcs returns the default worker count for grouping and import when
// --workers is not given. It sizes worker pools only and leaves GOMAXPROCS alone.
func GetOptimalProcs() int {
	numCPU := runtime.NumCPU()

	// three quarters of the CPUs, at least one
	maxProcs := (numCPU * 3) / 4
	if maxProcs < 1 {
		maxProcs = 1
	}

	return maxProcs
}

// GetMaxProcs clamps a requested worker count to the CPUs available.
// Values below 1 select GetOptimalProcs.
func GetMaxProcs(requested int) int {
	if requested < 1 {
		return GetOptimalProcs()
	}
	if numCPU := runtime.NumCPU(); requested > numCPU {
		return numCPU
	}
	return requested
}
