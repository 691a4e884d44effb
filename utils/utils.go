package utils

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// GetDefaultDatabasePath returns the default path for the catalog database.
// DUPEFINDER_DB wins over the location next to the executable.
func GetDefaultDatabasePath() string {
	if env := os.Getenv("DUPEFINDER_DB"); env != "" {
		return env
	}

	exePath, err := os.Executable()
	if err != nil {
		// Fallback to current directory if executable path can't be determined
		return "catalog.db"
	}

	return filepath.Join(filepath.Dir(exePath), "catalog.db")
}

// HashModes holds the similarity methods named on the command line
type HashModes struct {
	Exact bool
	DHash bool
	PHash bool
}

// ParseModes parses a comma separated list of hash modes ("exact,dhash,phash")
func ParseModes(value string) (HashModes, error) {
	var modes HashModes

	for _, part := range strings.Split(value, ",") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "":
			continue
		case "exact", "md5", "sha":
			modes.Exact = true
		case "dhash", "difference":
			modes.DHash = true
		case "phash", "perceptual":
			modes.PHash = true
		default:
			return HashModes{}, fmt.Errorf("unknown hash mode '%s' (expected exact, dhash or phash)", part)
		}
	}

	if !modes.Exact && !modes.DHash && !modes.PHash {
		return HashModes{}, fmt.Errorf("no hash mode in '%s'", value)
	}
	return modes, nil
}

// NormalizePath converts a folder path to the canonical form used for identity
// and prefix matching: forward slashes, NFC, cleaned, no trailing slash.
func NormalizePath(p string) string {
	if strings.TrimSpace(p) == "" {
		return ""
	}

	p = strings.ReplaceAll(p, "\\", "/")
	p = norm.NFC.String(p)

	// path.Clean would fold the UNC "//server/share" prefix into a single slash
	if strings.HasPrefix(p, "//") {
		return "//" + strings.TrimPrefix(path.Clean("/"+strings.TrimLeft(p, "/")), "/")
	}

	cleaned := path.Clean(p)
	if hasVolume(cleaned) && len(cleaned) == 2 {
		// "C:" alone means the drive root
		return cleaned + "/"
	}
	return cleaned
}

// IsAbsolutePath reports whether a normalized path is rooted (Unix root, drive letter or UNC share)
func IsAbsolutePath(p string) bool {
	return strings.HasPrefix(p, "/") || hasVolume(p)
}

// IsWithin reports whether child equals parent or lies below it. Both paths must be normalized.
func IsWithin(child, parent string) bool {
	if child == parent {
		return true
	}
	if strings.HasSuffix(parent, "/") {
		// roots such as "/" and "C:/" already end with the separator
		return strings.HasPrefix(child, parent)
	}
	return strings.HasPrefix(child, parent+"/")
}

// PathSegments splits a normalized path into its non-empty segments
func PathSegments(p string) []string {
	var segments []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

func hasVolume(p string) bool {
	if len(p) < 2 || p[1] != ':' {
		return false
	}
	c := p[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
