package policy

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the similarity policy switches. It is fixed for one grouping run.
type Config struct {
	// UseExactHash makes exact-hash equality the only similarity test
	UseExactHash bool `yaml:"use_exact_hash"`

	UseDHash bool `yaml:"use_dhash"`
	UsePHash bool `yaml:"use_phash"`

	// DetectThumbnails also pairs an image with a drastically smaller rendition of it
	// whose pHash falls outside PHashThreshold but inside ThumbnailPHashThreshold
	DetectThumbnails bool `yaml:"detect_thumbnails"`

	// AnalyzeVideos lets videos take part through their first-frame fingerprints
	AnalyzeVideos bool `yaml:"analyze_videos"`

	// A method matches when its distance is strictly below its threshold (bits)
	DHashThreshold          int `yaml:"dhash_threshold"`
	PHashThreshold          int `yaml:"phash_threshold"`
	ThumbnailPHashThreshold int `yaml:"thumbnail_phash_threshold"`

	// ThumbnailMaxScale is the largest ratio between the thumbnail's longest side
	// and the original's longest side
	ThumbnailMaxScale float64 `yaml:"thumbnail_max_scale"`

	// AspectTolerance is the relative aspect ratio difference a thumbnail may have
	AspectTolerance float64 `yaml:"aspect_tolerance"`
}

// DefaultConfig returns the default policy: exact hash only, videos skipped
func DefaultConfig() Config {
	return Config{
		UseExactHash:            true,
		DHashThreshold:          10,
		PHashThreshold:          12,
		ThumbnailPHashThreshold: 24,
		ThumbnailMaxScale:       0.25,
		AspectTolerance:         0.1,
	}
}

// HasMethod reports whether at least one similarity method is enabled
func (c Config) HasMethod() bool {
	return c.UseExactHash || c.UseDHash || c.UsePHash
}

// Validate checks that a grouping decision is possible under the configuration
func (c Config) Validate() error {
	if !c.HasMethod() {
		return &ConfigError{Field: "modes", Message: "no similarity method enabled (exact hash, dHash and pHash are all off)"}
	}
	if c.DHashThreshold <= 0 {
		return &ConfigError{Field: "dhash_threshold", Message: fmt.Sprintf("must be positive (got %d)", c.DHashThreshold)}
	}
	if c.PHashThreshold <= 0 {
		return &ConfigError{Field: "phash_threshold", Message: fmt.Sprintf("must be positive (got %d)", c.PHashThreshold)}
	}
	if c.ThumbnailPHashThreshold < c.PHashThreshold {
		return &ConfigError{
			Field:   "thumbnail_phash_threshold",
			Message: fmt.Sprintf("must not be below phash_threshold (got %d < %d)", c.ThumbnailPHashThreshold, c.PHashThreshold),
		}
	}
	if c.ThumbnailMaxScale <= 0 || c.ThumbnailMaxScale > 1 {
		return &ConfigError{Field: "thumbnail_max_scale", Message: fmt.Sprintf("must be in (0, 1] (got %.2f)", c.ThumbnailMaxScale)}
	}
	if c.AspectTolerance < 0 || c.AspectTolerance >= 1 {
		return &ConfigError{Field: "aspect_tolerance", Message: fmt.Sprintf("must be in [0, 1) (got %.2f)", c.AspectTolerance)}
	}
	return nil
}

// String returns a human-readable representation of the config
func (c Config) String() string {
	return fmt.Sprintf(
		"Config{Exact: %t, DHash: %t (<%d), PHash: %t (<%d), Thumbnails: %t (<%d, scale %.2f), Videos: %t}",
		c.UseExactHash, c.UseDHash, c.DHashThreshold, c.UsePHash, c.PHashThreshold,
		c.DetectThumbnails, c.ThumbnailPHashThreshold, c.ThumbnailMaxScale, c.AnalyzeVideos,
	)
}

// LoadConfig reads a YAML policy file. Keys missing from the file keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading policy file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing policy YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ConfigFromEnv applies DUPEFINDER_* environment overrides on top of base
//
// Environment variables:
//   - DUPEFINDER_EXACT_HASH, DUPEFINDER_DHASH, DUPEFINDER_PHASH: enable a method
//   - DUPEFINDER_THUMBNAILS: thumbnail detection
//   - DUPEFINDER_VIDEOS: analyze videos
//   - DUPEFINDER_DHASH_THRESHOLD, DUPEFINDER_PHASH_THRESHOLD: method thresholds in bits
func ConfigFromEnv(base Config) (Config, error) {
	cfg := base

	bools := []struct {
		key  string
		dest *bool
	}{
		{"DUPEFINDER_EXACT_HASH", &cfg.UseExactHash},
		{"DUPEFINDER_DHASH", &cfg.UseDHash},
		{"DUPEFINDER_PHASH", &cfg.UsePHash},
		{"DUPEFINDER_THUMBNAILS", &cfg.DetectThumbnails},
		{"DUPEFINDER_VIDEOS", &cfg.AnalyzeVideos},
	}
	for _, b := range bools {
		if err := parseEnvBool(b.key, b.dest); err != nil {
			return base, err
		}
	}

	if err := parseEnvInt("DUPEFINDER_DHASH_THRESHOLD", &cfg.DHashThreshold); err != nil {
		return base, err
	}
	if err := parseEnvInt("DUPEFINDER_PHASH_THRESHOLD", &cfg.PHashThreshold); err != nil {
		return base, err
	}

	return cfg, nil
}

func parseEnvBool(key string, dest *bool) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

func parseEnvInt(key string, dest *int) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}
