package types

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"dupefinder/utils"
)

// Rotation is the rotation declared in an asset's metadata, in degrees
type Rotation int

const (
	Rotate0   Rotation = 0
	Rotate90  Rotation = 90
	Rotate180 Rotation = 180
	Rotate270 Rotation = 270
)

// Valid reports whether r is one of the four quarter turns
func (r Rotation) Valid() bool {
	switch r {
	case Rotate0, Rotate90, Rotate180, Rotate270:
		return true
	}
	return false
}

// Sideways reports whether the rotation swaps width and height
func (r Rotation) Sideways() bool {
	return r == Rotate90 || r == Rotate270
}

// AssetKey identifies an asset: a folder and a file name unique within it
type AssetKey struct {
	Folder   string
	FileName string
}

func (k AssetKey) String() string {
	return path.Join(k.Folder, k.FileName)
}

// Asset holds one cataloged media file and its precomputed fingerprints.
// Empty fingerprint strings mean the hash was never computed.
type Asset struct {
	FolderPath string
	FileName   string
	IsVideo    bool
	Width      int
	Height     int
	Rotation   Rotation
	ExactHash  string
	DHash      string
	PHash      string
}

// Key returns the identity of the asset
func (a Asset) Key() AssetKey {
	return AssetKey{Folder: utils.NormalizePath(a.FolderPath), FileName: a.FileName}
}

// FullPath returns the folder path joined with the file name
func (a Asset) FullPath() string {
	return a.Key().String()
}

// OrientedSize returns width and height as displayed, after the declared rotation
func (a Asset) OrientedSize() (int, int) {
	if a.Rotation.Sideways() {
		return a.Height, a.Width
	}
	return a.Width, a.Height
}

func (a Asset) String() string {
	return fmt.Sprintf("%s (%dx%d)", a.FullPath(), a.Width, a.Height)
}

// DuplicateSet is an ordered group of at least two similar assets
type DuplicateSet []Asset

// Contains reports whether the set holds an asset with the given key
func (s DuplicateSet) Contains(key AssetKey) bool {
	return s.IndexOf(key) >= 0
}

// IndexOf returns the position of the asset with the given key, or -1
func (s DuplicateSet) IndexOf(key AssetKey) int {
	for i, a := range s {
		if a.Key() == key {
			return i
		}
	}
	return -1
}

// Catalog exposes the cataloged assets in discovery order
type Catalog interface {
	Assets() []Asset
}

// Snapshot is an in-memory Catalog
type Snapshot []Asset

func (s Snapshot) Assets() []Asset {
	return s
}

// SortDiscoveryOrder returns a copy of assets in discovery order: a folder's own
// files by name, then its sub-folders in name order, depth first.
func SortDiscoveryOrder(assets []Asset) []Asset {
	sorted := make([]Asset, len(assets))
	copy(sorted, assets)

	sort.SliceStable(sorted, func(i, j int) bool {
		return CompareDiscovery(sorted[i], sorted[j]) < 0
	})
	return sorted
}

// CompareDiscovery orders two assets by their position in a folder traversal
func CompareDiscovery(a, b Asset) int {
	fa := utils.PathSegments(utils.NormalizePath(a.FolderPath))
	fb := utils.PathSegments(utils.NormalizePath(b.FolderPath))

	i := 0
	for i < len(fa) && i < len(fb) && fa[i] == fb[i] {
		i++
	}

	switch {
	case i == len(fa) && i == len(fb):
		return strings.Compare(a.FileName, b.FileName)
	case i == len(fa):
		// a sits in an ancestor of b's folder; files come before sub-folders
		return -1
	case i == len(fb):
		return 1
	default:
		return strings.Compare(fa[i], fb[i])
	}
}
