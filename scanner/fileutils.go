package scanner

import (
	"path/filepath"
	"strings"
)

// IsImageFile checks if a file extension belongs to an image file
func IsImageFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp", ".heic", ".heif":
		return true
	case ".tif", ".tiff":
		return true
	default:
		return IsRawFormat(path)
	}
}

// IsVideoFile checks if a file extension belongs to a video file
func IsVideoFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".mp4", ".m4v", ".mov", ".avi", ".mkv", ".wmv", ".mts", ".m2ts", ".3gp", ".webm":
		return true
	default:
		return false
	}
}

// IsRawFormat checks if a file is in RAW format
func IsRawFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedRawFormats() {
		if ext == format {
			return true
		}
	}
	return false
}

// IsMediaFile checks if a file can be cataloged at all
func IsMediaFile(path string) bool {
	return IsImageFile(path) || IsVideoFile(path)
}

// GetFileFormat returns the lowercase file extension without the dot
func GetFileFormat(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

// SupportedRawFormats returns a list of supported RAW formats
func SupportedRawFormats() []string {
	return []string{".dng", ".raf", ".arw", ".nef", ".cr2", ".cr3", ".nrw", ".srf", ".orf", ".rw2", ".pef", ".raw"}
}
