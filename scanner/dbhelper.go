package scanner

import (
	"database/sql"
	"fmt"

	"dupefinder/database"
	"dupefinder/logging"
	"dupefinder/types"
)

// mergeWithCatalog combines the stored catalog with newly imported assets and
// returns the result in discovery order. An imported asset takes the place of a
// stored one with the same identity, but storeCatalog only overwrites the stored
// fingerprints under ForceRewrite; otherwise the catalog keeps them.
func mergeWithCatalog(db *sql.DB, imported []types.Asset) ([]types.Asset, error) {
	stored, err := database.LoadCatalog(db)
	if err != nil {
		return nil, fmt.Errorf("cannot load catalog: %w", err)
	}

	incoming := make(map[types.AssetKey]bool, len(imported))
	for _, a := range imported {
		incoming[a.Key()] = true
	}

	merged := make([]types.Asset, 0, len(stored)+len(imported))
	for _, a := range stored {
		if incoming[a.Key()] {
			continue
		}
		merged = append(merged, a)
	}
	merged = append(merged, imported...)

	logging.DebugLog("Merged %d imported assets into a catalog of %d", len(imported), len(stored))
	return types.SortDiscoveryOrder(merged), nil
}

// storeCatalog writes the merged catalog
func storeCatalog(db *sql.DB, assets []types.Asset, options ImportOptions) (int, error) {
	stored, err := database.StoreCatalog(db, assets, options.ForceRewrite)
	if err != nil {
		return 0, fmt.Errorf("cannot store catalog: %w", err)
	}
	if options.DebugMode {
		logging.DebugLog("Stored %d assets (force rewrite: %v)", stored, options.ForceRewrite)
	}
	return stored, nil
}
