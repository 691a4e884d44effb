package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"dupefinder/logging"
	"dupefinder/types"
	"dupefinder/utils"
)

// ErrRunNotFound is returned when a run ID names no stored grouping run
var ErrRunNotFound = errors.New("grouping run not found")

// InitDatabase initializes and returns a database connection
func InitDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Create tables if they don't exist
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS folders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT NOT NULL UNIQUE
	);
	CREATE TABLE IF NOT EXISTS assets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		folder_id INTEGER NOT NULL REFERENCES folders(id),
		file_name TEXT NOT NULL,
		discovery_rank INTEGER NOT NULL,
		is_video INTEGER NOT NULL DEFAULT 0,
		width INTEGER,
		height INTEGER,
		rotation INTEGER NOT NULL DEFAULT 0,
		exact_hash TEXT,
		dhash TEXT,
		phash TEXT,
		imported_at TEXT,
		UNIQUE(folder_id, file_name)
	);
	CREATE TABLE IF NOT EXISTS grouping_runs (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		config TEXT,
		sets INTEGER,
		duplicates INTEGER
	);
	CREATE TABLE IF NOT EXISTS duplicate_sets (
		run_id TEXT NOT NULL REFERENCES grouping_runs(id),
		set_index INTEGER NOT NULL,
		position INTEGER NOT NULL,
		asset_id INTEGER NOT NULL REFERENCES assets(id),
		PRIMARY KEY(run_id, set_index, position)
	);
	CREATE INDEX IF NOT EXISTS idx_rank ON assets(discovery_rank);
	CREATE INDEX IF NOT EXISTS idx_exact_hash ON assets(exact_hash);`

	_, err = db.Exec(createTableSQL)
	if err != nil {
		db.Close()
		return nil, err
	}

	// Catalogs written before rotation metadata was imported lack the column
	var hasRotationColumn bool
	err = db.QueryRow("SELECT COUNT(*) FROM pragma_table_info('assets') WHERE name='rotation'").Scan(&hasRotationColumn)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("error checking for rotation column: %w", err)
	}

	if !hasRotationColumn {
		_, err = db.Exec("ALTER TABLE assets ADD COLUMN rotation INTEGER NOT NULL DEFAULT 0;")
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("error adding rotation column: %w", err)
		}
		logging.DebugLog("Added 'rotation' column to database schema")
	}

	return db, nil
}

// OpenDatabase opens an existing database connection
func OpenDatabase(dbPath string) (*sql.DB, error) {
	return sql.Open("sqlite3", dbPath)
}

// CheckAssetExists checks if an asset is already cataloged
func CheckAssetExists(db *sql.DB, key types.AssetKey) (bool, error) {
	var count int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM assets a JOIN folders f ON f.id = a.folder_id
		WHERE f.path = ? AND a.file_name = ?`, key.Folder, key.FileName).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("database error for %s: %w", key, err)
	}
	return count > 0, nil
}

// StoreCatalog writes assets in one transaction and makes their order the catalog's
// discovery order. Existing rows keep their fingerprints unless forceRewrite is set.
// It returns the number of rows inserted or rewritten.
func StoreCatalog(db *sql.DB, assets []types.Asset, forceRewrite bool) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("cannot start transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Format(time.RFC3339)

	// Prepare statement to avoid SQL injection
	var stmt *sql.Stmt
	if forceRewrite {
		stmt, err = tx.Prepare(`
			INSERT INTO assets (
				folder_id, file_name, discovery_rank, is_video, width, height, rotation, exact_hash, dhash, phash, imported_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(folder_id, file_name) DO UPDATE SET
				discovery_rank = excluded.discovery_rank,
				is_video = excluded.is_video,
				width = excluded.width,
				height = excluded.height,
				rotation = excluded.rotation,
				exact_hash = excluded.exact_hash,
				dhash = excluded.dhash,
				phash = excluded.phash,
				imported_at = excluded.imported_at
		`)
	} else {
		stmt, err = tx.Prepare(`
			INSERT OR IGNORE INTO assets (
				folder_id, file_name, discovery_rank, is_video, width, height, rotation, exact_hash, dhash, phash, imported_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
	}
	if err != nil {
		return 0, fmt.Errorf("cannot prepare statement: %w", err)
	}
	defer stmt.Close()

	rankStmt, err := tx.Prepare("UPDATE assets SET discovery_rank = ? WHERE folder_id = ? AND file_name = ?")
	if err != nil {
		return 0, fmt.Errorf("cannot prepare statement: %w", err)
	}
	defer rankStmt.Close()

	folders := make(map[string]int64)
	stored := 0
	for rank, a := range assets {
		key := a.Key()
		folderID, ok := folders[key.Folder]
		if !ok {
			folderID, err = ensureFolder(tx, key.Folder)
			if err != nil {
				return 0, err
			}
			folders[key.Folder] = folderID
		}

		res, err := stmt.Exec(folderID, key.FileName, rank, a.IsVideo, a.Width, a.Height, int(a.Rotation),
			a.ExactHash, a.DHash, a.PHash, now)
		if err != nil {
			return 0, fmt.Errorf("cannot insert data for %s: %w", key, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			stored++
			continue
		}

		if _, err := rankStmt.Exec(rank, folderID, key.FileName); err != nil {
			return 0, fmt.Errorf("cannot update rank for %s: %w", key, err)
		}
		logging.DebugLog("Keeping cataloged fingerprints for %s", key)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("cannot commit catalog: %w", err)
	}
	return stored, nil
}

func ensureFolder(tx *sql.Tx, folder string) (int64, error) {
	if _, err := tx.Exec("INSERT OR IGNORE INTO folders (path) VALUES (?)", folder); err != nil {
		return 0, fmt.Errorf("cannot insert folder %s: %w", folder, err)
	}
	var id int64
	if err := tx.QueryRow("SELECT id FROM folders WHERE path = ?", folder).Scan(&id); err != nil {
		return 0, fmt.Errorf("cannot find folder %s: %w", folder, err)
	}
	return id, nil
}

// LoadCatalog returns every cataloged asset in discovery order
func LoadCatalog(db *sql.DB) (types.Snapshot, error) {
	rows, err := db.Query(`
		SELECT f.path, a.file_name, a.is_video, a.width, a.height, a.rotation,
			COALESCE(a.exact_hash, ''), COALESCE(a.dhash, ''), COALESCE(a.phash, '')
		FROM assets a JOIN folders f ON f.id = a.folder_id
		ORDER BY a.discovery_rank, a.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}
	defer rows.Close()

	catalog := types.Snapshot{}
	for rows.Next() {
		var a types.Asset
		var width, height sql.NullInt64
		var rotation int
		if err := rows.Scan(&a.FolderPath, &a.FileName, &a.IsVideo, &width, &height, &rotation,
			&a.ExactHash, &a.DHash, &a.PHash); err != nil {
			return nil, fmt.Errorf("failed to read catalog row: %w", err)
		}
		a.Width = int(width.Int64)
		a.Height = int(height.Int64)
		a.Rotation = types.Rotation(rotation)
		catalog = append(catalog, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return catalog, nil
}

// RunInfo describes one persisted grouping run
type RunInfo struct {
	ID         string
	CreatedAt  string
	Config     string
	Sets       int
	Duplicates int
}

// StoreRun persists the duplicate sets of one grouping run under a new run ID.
// Every member must already be cataloged.
func StoreRun(db *sql.DB, sets []types.DuplicateSet, config string) (string, error) {
	runID := uuid.New().String()

	tx, err := db.Begin()
	if err != nil {
		return "", fmt.Errorf("cannot start transaction: %w", err)
	}
	defer tx.Rollback()

	duplicates := 0
	for _, set := range sets {
		duplicates += len(set) - 1
	}

	_, err = tx.Exec("INSERT INTO grouping_runs (id, created_at, config, sets, duplicates) VALUES (?, ?, ?, ?, ?)",
		runID, time.Now().Format(time.RFC3339Nano), config, len(sets), duplicates)
	if err != nil {
		return "", fmt.Errorf("cannot insert run %s: %w", runID, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO duplicate_sets (run_id, set_index, position, asset_id)
		SELECT ?, ?, ?, a.id FROM assets a JOIN folders f ON f.id = a.folder_id
		WHERE f.path = ? AND a.file_name = ?`)
	if err != nil {
		return "", fmt.Errorf("cannot prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, set := range sets {
		for pos, a := range set {
			key := a.Key()
			res, err := stmt.Exec(runID, i, pos, key.Folder, key.FileName)
			if err != nil {
				return "", fmt.Errorf("cannot store set member %s: %w", key, err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return "", fmt.Errorf("asset %s is not in the catalog", key)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("cannot commit run %s: %w", runID, err)
	}
	logging.DebugLog("Stored grouping run %s: %d sets, %d duplicates", runID, len(sets), duplicates)
	return runID, nil
}

// LatestRun returns the most recently stored run, or nil when none exists
func LatestRun(db *sql.DB) (*RunInfo, error) {
	var run RunInfo
	err := db.QueryRow(`
		SELECT id, created_at, COALESCE(config, ''), sets, duplicates FROM grouping_runs
		ORDER BY rowid DESC LIMIT 1`).Scan(&run.ID, &run.CreatedAt, &run.Config, &run.Sets, &run.Duplicates)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	return &run, nil
}

// LoadRun returns the duplicate sets stored under runID in their original order.
// A run that found no duplicates loads as no sets; an unknown ID is ErrRunNotFound.
func LoadRun(db *sql.DB, runID string) ([]types.DuplicateSet, error) {
	var known int
	if err := db.QueryRow(`SELECT COUNT(*) FROM grouping_runs WHERE id = ?`, runID).Scan(&known); err != nil {
		return nil, fmt.Errorf("failed to query run %s: %w", runID, err)
	}
	if known == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	rows, err := db.Query(`
		SELECT d.set_index, f.path, a.file_name, a.is_video, a.width, a.height, a.rotation,
			COALESCE(a.exact_hash, ''), COALESCE(a.dhash, ''), COALESCE(a.phash, '')
		FROM duplicate_sets d
		JOIN assets a ON a.id = d.asset_id
		JOIN folders f ON f.id = a.folder_id
		WHERE d.run_id = ?
		ORDER BY d.set_index, d.position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run %s: %w", runID, err)
	}
	defer rows.Close()

	var sets []types.DuplicateSet
	current := -1
	for rows.Next() {
		var setIndex, rotation int
		var width, height sql.NullInt64
		var a types.Asset
		if err := rows.Scan(&setIndex, &a.FolderPath, &a.FileName, &a.IsVideo, &width, &height, &rotation,
			&a.ExactHash, &a.DHash, &a.PHash); err != nil {
			return nil, fmt.Errorf("failed to read run row: %w", err)
		}
		a.Width = int(width.Int64)
		a.Height = int(height.Int64)
		a.Rotation = types.Rotation(rotation)

		if setIndex != current {
			sets = append(sets, types.DuplicateSet{})
			current = setIndex
		}
		sets[len(sets)-1] = append(sets[len(sets)-1], a)
	}
	return sets, rows.Err()
}

// CatalogStats contains statistics about the catalog
type CatalogStats struct {
	TotalAssets       int
	Folders           int
	Videos            int
	WithExactHash     int
	WithDHash         int
	WithPHash         int
	UniqueExactHashes int
	Runs              int
}

// GetCatalogStats retrieves statistics about the cataloged assets, optionally
// restricted to one folder sub-tree
func GetCatalogStats(db *sql.DB, folderPrefix string) (*CatalogStats, error) {
	var stats CatalogStats

	where := ""
	var args []interface{}
	if prefix := utils.NormalizePath(folderPrefix); prefix != "" {
		below := prefix
		if !strings.HasSuffix(below, "/") {
			below += "/"
		}
		// substr keeps the match case-sensitive, unlike LIKE
		where = "WHERE f.path = ? OR substr(f.path, 1, ?) = ?"
		args = append(args, prefix, utf8.RuneCountInString(below), below)
	}

	err := db.QueryRow(`
		SELECT COUNT(*),
			COUNT(DISTINCT a.folder_id),
			COALESCE(SUM(a.is_video), 0),
			COUNT(NULLIF(a.exact_hash, '')),
			COUNT(NULLIF(a.dhash, '')),
			COUNT(NULLIF(a.phash, '')),
			COUNT(DISTINCT NULLIF(a.exact_hash, ''))
		FROM assets a JOIN folders f ON f.id = a.folder_id `+where, args...).Scan(
		&stats.TotalAssets, &stats.Folders, &stats.Videos,
		&stats.WithExactHash, &stats.WithDHash, &stats.WithPHash, &stats.UniqueExactHashes)
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog stats: %w", err)
	}

	err = db.QueryRow("SELECT COUNT(*) FROM grouping_runs").Scan(&stats.Runs)
	if err != nil {
		return nil, fmt.Errorf("failed to count runs: %w", err)
	}

	return &stats, nil
}
