package scanner

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dupefinder/database"
	"dupefinder/types"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "manifest.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestFileClassification(t *testing.T) {
	assert.True(t, IsImageFile("a.JPG"))
	assert.True(t, IsImageFile("raw.cr3"))
	assert.True(t, IsImageFile("scan.tiff"))
	assert.False(t, IsImageFile("clip.mp4"))

	assert.True(t, IsVideoFile("Video 1.MOV"))
	assert.True(t, IsVideoFile("clip.mp4"))
	assert.False(t, IsVideoFile("a.jpg"))

	assert.True(t, IsRawFormat("x.NEF"))
	assert.False(t, IsMediaFile("notes.txt"))
	assert.Equal(t, "jpeg", GetFileFormat("/p/A.JPEG"))
}

func TestToAsset(t *testing.T) {
	yes := true
	no := false

	tests := []struct {
		name    string
		entry   ManifestEntry
		root    string
		want    types.Asset
		wantErr bool
	}{
		{
			name:  "absolute folder",
			entry: ManifestEntry{Folder: `C:\Photos\`, File: "a.jpg", ExactHash: " ABC ", PHash: "0xFF00"},
			root:  "/ignored",
			want:  types.Asset{FolderPath: "C:/Photos", FileName: "a.jpg", ExactHash: "abc", PHash: "ff00"},
		},
		{
			name:  "relative folder under root",
			entry: ManifestEntry{Folder: "NewFolder1", File: "a.jpg", Width: 10, Height: 20, Rotation: types.Rotate270},
			root:  "/library",
			want:  types.Asset{FolderPath: "/library/NewFolder1", FileName: "a.jpg", Width: 10, Height: 20, Rotation: types.Rotate270},
		},
		{
			name:  "root folder",
			entry: ManifestEntry{File: "a.jpg"},
			root:  "/library",
			want:  types.Asset{FolderPath: "/library", FileName: "a.jpg"},
		},
		{
			name:  "video by extension",
			entry: ManifestEntry{Folder: "/v", File: "clip.mp4"},
			want:  types.Asset{FolderPath: "/v", FileName: "clip.mp4", IsVideo: true},
		},
		{
			name:  "explicit video flag wins",
			entry: ManifestEntry{Folder: "/v", File: "clip.mp4", Video: &no},
			want:  types.Asset{FolderPath: "/v", FileName: "clip.mp4"},
		},
		{
			name:  "explicit flag allows unknown extension",
			entry: ManifestEntry{Folder: "/v", File: "clip.bin", Video: &yes},
			want:  types.Asset{FolderPath: "/v", FileName: "clip.bin", IsVideo: true},
		},
		{name: "missing file", entry: ManifestEntry{Folder: "/p"}, wantErr: true},
		{name: "separator in file", entry: ManifestEntry{Folder: "/p", File: "sub/a.jpg"}, wantErr: true},
		{name: "missing folder", entry: ManifestEntry{File: "a.jpg"}, wantErr: true},
		{name: "bad rotation", entry: ManifestEntry{Folder: "/p", File: "a.jpg", Rotation: 45}, wantErr: true},
		{name: "negative size", entry: ManifestEntry{Folder: "/p", File: "a.jpg", Width: -1}, wantErr: true},
		{name: "unsupported type", entry: ManifestEntry{Folder: "/p", File: "notes.txt"}, wantErr: true},
		{name: "bad dhash", entry: ManifestEntry{Folder: "/p", File: "a.jpg", DHash: "xyz"}, wantErr: true},
		{name: "bad phash", entry: ManifestEntry{Folder: "/p", File: "a.jpg", PHash: "12g4"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.entry.ToAsset(tt.root)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadManifest(t *testing.T) {
	p := writeManifest(t, `root: /library
assets:
  - folder: NewFolder1
    file: Image 1.jpg
    width: 1600
    height: 1200
    exact_hash: abc
  - file: Video 1.mp4
    video: true
`)
	m, err := LoadManifest(p)
	require.NoError(t, err)
	assert.Equal(t, "/library", m.Root)
	require.Len(t, m.Assets, 2)
	assert.Nil(t, m.Assets[0].Video)
	require.NotNil(t, m.Assets[1].Video)
	assert.True(t, *m.Assets[1].Video)

	_, err = LoadManifest(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadManifest(writeManifest(t, "assets: [oops"))
	assert.Error(t, err)
}

func TestImportManifest(t *testing.T) {
	db, err := database.InitDatabase(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	defer db.Close()

	p := writeManifest(t, `root: /library
assets:
  - folder: NewFolder2
    file: Image 1_duplicate.jpg
    exact_hash: h1
  - folder: NewFolder1
    file: Image 1.jpg
    exact_hash: h1
  - file: Image 1.jpg
    exact_hash: h1
  - file: Video 1.mp4
    exact_hash: v1
  - file: notes.txt
  - file: Image 1.jpg
    exact_hash: other
`)

	var out bytes.Buffer
	stats, err := ImportManifest(db, ImportOptions{ManifestPath: p, MaxWorkers: 2, Output: &out})
	require.NoError(t, err)

	assert.Equal(t, 6, stats.Entries)
	assert.Equal(t, 4, stats.Valid)
	assert.Equal(t, 1, stats.Errors)
	assert.Equal(t, 1, stats.Videos)
	assert.Equal(t, 4, stats.Stored)
	assert.Equal(t, 4, stats.Catalog)
	assert.Contains(t, out.String(), "Import complete.")
	assert.Contains(t, out.String(), "Encountered 1 invalid entries")

	catalog, err := database.LoadCatalog(db)
	require.NoError(t, err)
	var paths []string
	for _, a := range catalog {
		paths = append(paths, a.FullPath())
	}
	assert.Equal(t, []string{
		"/library/Image 1.jpg",
		"/library/Video 1.mp4",
		"/library/NewFolder1/Image 1.jpg",
		"/library/NewFolder2/Image 1_duplicate.jpg",
	}, paths)
	assert.Equal(t, "h1", catalog[0].ExactHash, "the first entry for an identity wins")
	assert.True(t, catalog[1].IsVideo)
}

func TestImportManifestMergesWithCatalog(t *testing.T) {
	db, err := database.InitDatabase(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	defer db.Close()

	first := writeManifest(t, `assets:
  - folder: /library/B
    file: b.jpg
    exact_hash: old
`)
	_, err = ImportManifest(db, ImportOptions{ManifestPath: first, Output: io.Discard})
	require.NoError(t, err)

	second := writeManifest(t, `assets:
  - folder: /library/A
    file: a.jpg
  - folder: /library/B
    file: b.jpg
    exact_hash: new
`)
	stats, err := ImportManifest(db, ImportOptions{ManifestPath: second, Output: io.Discard})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Stored)
	assert.Equal(t, 2, stats.Catalog)

	catalog, err := database.LoadCatalog(db)
	require.NoError(t, err)
	require.Len(t, catalog, 2)
	assert.Equal(t, "/library/A/a.jpg", catalog[0].FullPath())
	assert.Equal(t, "old", catalog[1].ExactHash, "stored fingerprints are kept without force")

	_, err = ImportManifest(db, ImportOptions{ManifestPath: second, ForceRewrite: true, Output: io.Discard})
	require.NoError(t, err)
	catalog, err = database.LoadCatalog(db)
	require.NoError(t, err)
	assert.Equal(t, "new", catalog[1].ExactHash)
}

func TestImportManifestMissingFile(t *testing.T) {
	db, err := database.InitDatabase(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	defer db.Close()

	_, err = ImportManifest(db, ImportOptions{ManifestPath: filepath.Join(t.TempDir(), "nope.yaml"), Output: io.Discard})
	assert.Error(t, err)
}
