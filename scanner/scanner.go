package scanner

import (
	"database/sql"
	"io"
	"os"
	"path"
	"runtime"
	"sync"
	"time"

	"dupefinder/logging"
	"dupefinder/types"
)

// ImportManifest reads the manifest named in options, validates its entries in
// parallel, merges them with the stored catalog and rewrites the catalog in
// discovery order
func ImportManifest(db *sql.DB, options ImportOptions) (*ImportStats, error) {
	out := options.Output
	if out == nil {
		out = os.Stdout
	}

	m, err := LoadManifest(options.ManifestPath)
	if err != nil {
		return nil, err
	}

	PrintStartupInfo(out, m, options)

	startTime := time.Now()
	assets, tracker := convertEntries(m, options, out)

	stats := &ImportStats{Entries: len(m.Assets), Valid: len(assets)}
	_, stats.Errors, stats.Videos = tracker.Counts()

	merged, err := mergeWithCatalog(db, assets)
	if err != nil {
		return nil, err
	}

	stats.Stored, err = storeCatalog(db, merged, options)
	if err != nil {
		return nil, err
	}
	stats.Catalog = len(merged)
	stats.Duration = time.Since(startTime)

	PrintCompletionStats(out, stats, options)
	return stats, nil
}

// convertEntries converts every manifest entry on a bounded set of goroutines.
// Valid assets keep manifest order; a repeated identity keeps its first entry.
func convertEntries(m *Manifest, options ImportOptions, out io.Writer) ([]types.Asset, *ProgressTracker) {
	maxWorkers := options.MaxWorkers
	if maxWorkers < 1 {
		maxWorkers = runtime.NumCPU()
	}

	var wg sync.WaitGroup
	resultsChan := make(chan ProcessEntryResult, 100)
	semaphore := make(chan struct{}, maxWorkers) // Limit concurrent goroutines
	converted := make([]*types.Asset, len(m.Assets))

	tracker := NewProgressTracker(len(m.Assets), out, resultsChan)

	for i, entry := range m.Assets {
		wg.Add(1)
		// Acquire semaphore
		semaphore <- struct{}{}

		go func(i int, entry ManifestEntry) {
			defer wg.Done()
			defer func() { <-semaphore }() // Release semaphore when done

			result := ProcessEntryResult{Index: i, Path: path.Join(entry.Folder, entry.File)}
			asset, err := entry.ToAsset(m.Root)
			if err != nil {
				result.Error = err
			} else {
				result.Success = true
				result.Path = asset.FullPath()
				result.IsVideo = asset.IsVideo
				converted[i] = &asset
			}
			resultsChan <- result
		}(i, entry)
	}

	// Wait for all conversions to complete
	wg.Wait()
	close(resultsChan)
	tracker.Stop()

	seen := make(map[types.AssetKey]bool, len(converted))
	assets := make([]types.Asset, 0, len(converted))
	for _, a := range converted {
		if a == nil {
			continue
		}
		if seen[a.Key()] {
			logging.LogWarning("Manifest lists %s more than once, keeping the first entry", a.Key())
			continue
		}
		seen[a.Key()] = true
		assets = append(assets, *a)
	}
	return assets, tracker
}
