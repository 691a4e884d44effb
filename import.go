package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dupefinder/scanner"
	"dupefinder/signalhandler"
)

var (
	manifestPath string
	forceRewrite bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load a hashing manifest into the catalog",
	Long: `Reads the YAML manifest written by the hashing tool and merges its entries
into the catalog. The catalog is rewritten in discovery order: a folder's own
files by name, then its sub-folders by name.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := scanner.ImportManifest(db, scanner.ImportOptions{
			ManifestPath: manifestPath,
			ForceRewrite: forceRewrite,
			DebugMode:    debugMode,
			MaxWorkers:   signalhandler.GetMaxProcs(workers),
			Output:       cmd.OutOrStdout(),
		})
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Database: %s\n", dbPath)
		if stats.Errors > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", warn(fmt.Sprintf("%d entries were skipped", stats.Errors)))
		}
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&manifestPath, "manifest", "", "manifest file written by the hashing tool")
	importCmd.Flags().BoolVar(&forceRewrite, "force", false, "rewrite fingerprints of assets already cataloged")
	importCmd.MarkFlagRequired("manifest")
	rootCmd.AddCommand(importCmd)
}
