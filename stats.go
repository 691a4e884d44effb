package main

import (
	"github.com/spf13/cobra"

	"dupefinder/database"
)

var statsFolder string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := database.GetCatalogStats(db, statsFolder)
		if err != nil {
			return err
		}
		latest, err := database.LatestRun(db)
		if err != nil {
			return err
		}

		printCatalogStats(cmd.OutOrStdout(), dbPath, stats, latest)
		return nil
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsFolder, "folder", "", "restrict to one folder sub-tree")
	rootCmd.AddCommand(statsCmd)
}
