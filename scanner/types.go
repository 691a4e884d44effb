package scanner

import (
	"io"
	"sync"
	"time"

	"dupefinder/types"
)

// ImportOptions defines the options for importing a manifest
type ImportOptions struct {
	ManifestPath string
	ForceRewrite bool
	DebugMode    bool
	MaxWorkers   int       // Optional worker limit
	Output       io.Writer // Progress output, os.Stdout when nil
}

// ManifestEntry is one file as reported by the hashing tool
type ManifestEntry struct {
	Folder    string         `yaml:"folder"`
	File      string         `yaml:"file"`
	Video     *bool          `yaml:"video"` // classified by extension when absent
	Width     int            `yaml:"width"`
	Height    int            `yaml:"height"`
	Rotation  types.Rotation `yaml:"rotation"`
	ExactHash string         `yaml:"exact_hash"`
	DHash     string         `yaml:"dhash"`
	PHash     string         `yaml:"phash"`
}

// Manifest is the document the hashing tool writes. Relative entry folders
// are resolved against Root.
type Manifest struct {
	Root   string          `yaml:"root"`
	Assets []ManifestEntry `yaml:"assets"`
}

// ProcessEntryResult holds the result of converting one manifest entry
type ProcessEntryResult struct {
	Index   int
	Path    string
	Success bool
	Error   error
	IsVideo bool
}

// ImportStats summarizes one import
type ImportStats struct {
	Entries  int
	Valid    int
	Videos   int
	Errors   int
	Stored   int
	Catalog  int
	Duration time.Duration
}

// ProgressTracker tracks progress of the import operation
type ProgressTracker struct {
	processed int
	errors    int
	videos    int
	total     int
	out       io.Writer
	ticker    *time.Ticker
	done      chan bool
	finished  chan struct{}
	mu        sync.Mutex
}
