package scanner

import (
	"fmt"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"dupefinder/fingerprint"
	"dupefinder/types"
	"dupefinder/utils"
)

// LoadManifest reads a hashing manifest from disk
func LoadManifest(manifestPath string) (*Manifest, error) {
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read manifest %s: %w", manifestPath, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("cannot parse manifest %s: %w", manifestPath, err)
	}
	return &m, nil
}

// ToAsset validates an entry and converts it to a catalog asset. Fingerprints are
// stored in canonical lowercase hex.
func (e ManifestEntry) ToAsset(root string) (types.Asset, error) {
	name := strings.TrimSpace(e.File)
	if name == "" {
		return types.Asset{}, fmt.Errorf("missing file name")
	}
	if strings.ContainsAny(name, `/\`) {
		return types.Asset{}, fmt.Errorf("file name %q contains a path separator", name)
	}

	folder := resolveFolder(root, e.Folder)
	if folder == "" {
		return types.Asset{}, fmt.Errorf("missing folder for %s", name)
	}

	if !e.Rotation.Valid() {
		return types.Asset{}, fmt.Errorf("invalid rotation %d for %s", e.Rotation, name)
	}
	if e.Width < 0 || e.Height < 0 {
		return types.Asset{}, fmt.Errorf("invalid size %dx%d for %s", e.Width, e.Height, name)
	}

	isVideo := IsVideoFile(name)
	if e.Video != nil {
		isVideo = *e.Video
	} else if !IsMediaFile(name) {
		return types.Asset{}, fmt.Errorf("unsupported file type %q", GetFileFormat(name))
	}

	dhash, err := canonicalFingerprint(e.DHash)
	if err != nil {
		return types.Asset{}, fmt.Errorf("invalid dhash for %s: %w", name, err)
	}
	phash, err := canonicalFingerprint(e.PHash)
	if err != nil {
		return types.Asset{}, fmt.Errorf("invalid phash for %s: %w", name, err)
	}

	return types.Asset{
		FolderPath: folder,
		FileName:   name,
		IsVideo:    isVideo,
		Width:      e.Width,
		Height:     e.Height,
		Rotation:   e.Rotation,
		ExactHash:  strings.ToLower(strings.TrimSpace(e.ExactHash)),
		DHash:      dhash,
		PHash:      phash,
	}, nil
}

func resolveFolder(root, folder string) string {
	folder = utils.NormalizePath(folder)
	root = utils.NormalizePath(root)
	if root == "" || utils.IsAbsolutePath(folder) {
		return folder
	}
	if folder == "" || folder == "." {
		return root
	}
	return utils.NormalizePath(path.Join(root, folder))
}

func canonicalFingerprint(hex string) (string, error) {
	if strings.TrimSpace(hex) == "" {
		return "", nil
	}
	f, err := fingerprint.Decode(strings.TrimSpace(hex))
	if err != nil {
		return "", err
	}
	return f.String(), nil
}
