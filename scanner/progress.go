package scanner

import (
	"fmt"
	"io"
	"time"

	"dupefinder/logging"
)

// NewProgressTracker starts consuming results and reporting progress to out
func NewProgressTracker(total int, out io.Writer, resultsChan chan ProcessEntryResult) *ProgressTracker {
	tracker := &ProgressTracker{
		ticker:   time.NewTicker(500 * time.Millisecond),
		done:     make(chan bool),
		finished: make(chan struct{}),
		total:    total,
		out:      out,
	}

	// Start progress display goroutine
	go tracker.displayProgress()

	// Start result processor goroutine
	go tracker.processResults(resultsChan)

	return tracker
}

// displayProgress shows the progress periodically
func (p *ProgressTracker) displayProgress() {
	for {
		select {
		case <-p.done:
			return
		case <-p.ticker.C:
			p.mu.Lock()
			if p.errors > 0 {
				fmt.Fprintf(p.out, "\rProgress: %d/%d (Errors: %d, Videos: %d)", p.processed, p.total, p.errors, p.videos)
			} else {
				fmt.Fprintf(p.out, "\rProgress: %d/%d (Videos: %d)", p.processed, p.total, p.videos)
			}
			p.mu.Unlock()
		}
	}
}

// processResults updates the tracker state until resultsChan is closed
func (p *ProgressTracker) processResults(resultsChan chan ProcessEntryResult) {
	defer close(p.finished)

	for result := range resultsChan {
		p.mu.Lock()
		p.processed++

		if !result.Success {
			p.errors++
			if result.Error != nil {
				logging.LogAssetImported(result.Path, false, result.Error.Error())
			}
		} else {
			if result.IsVideo {
				p.videos++
			}
			logging.LogAssetImported(result.Path, true, "")
		}

		p.mu.Unlock()
	}
}

// Stop waits for the remaining results and ends progress reporting.
// resultsChan must be closed first.
func (p *ProgressTracker) Stop() {
	<-p.finished
	p.ticker.Stop()
	p.done <- true
}

// Counts returns processed entries, errors and videos
func (p *ProgressTracker) Counts() (processed, errors, videos int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.processed, p.errors, p.videos
}

// PrintStartupInfo displays information about the import before starting
func PrintStartupInfo(out io.Writer, m *Manifest, options ImportOptions) {
	fmt.Fprintf(out, "Starting catalog import...\nManifest entries to process: %d\n", len(m.Assets))
	fmt.Fprintf(out, "Force rewrite mode: %v\n", options.ForceRewrite)

	if m.Root != "" {
		fmt.Fprintf(out, "Manifest root: %s\n", m.Root)
	}

	if options.DebugMode {
		fmt.Fprintf(out, "Debug mode: enabled\n")
		logging.DebugLog("Importing %d manifest entries from %s", len(m.Assets), options.ManifestPath)
	}
}

// PrintCompletionStats displays statistics after import completion
func PrintCompletionStats(out io.Writer, stats *ImportStats, options ImportOptions) {
	if options.DebugMode {
		logging.DebugLog("Import completed in %v. Entries: %d, Valid: %d, Errors: %d, Videos: %d, Stored: %d",
			stats.Duration, stats.Entries, stats.Valid, stats.Errors, stats.Videos, stats.Stored)
	}

	fmt.Fprintln(out, "\nImport complete.")
	fmt.Fprintf(out, "Imported %d of %d entries in %v (%d videos).\n",
		stats.Valid, stats.Entries, stats.Duration.Round(time.Millisecond), stats.Videos)
	fmt.Fprintf(out, "Stored %d new or rewritten assets; catalog now holds %d assets.\n", stats.Stored, stats.Catalog)

	if stats.Errors > 0 {
		fmt.Fprintf(out, "Encountered %d invalid entries during import.\n", stats.Errors)
		fmt.Fprintln(out, "Check the log file for details.")
	}
}
