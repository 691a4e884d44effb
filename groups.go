package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dupefinder/database"
	"dupefinder/grouping"
	"dupefinder/policy"
	"dupefinder/signalhandler"
	"dupefinder/types"
)

var (
	saveRun bool
	runID   string
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "List duplicate sets in the catalog",
	Long: `Groups the catalog into duplicate sets under the similarity policy and prints
them in discovery order. The first member of each set is the copy found first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolvePolicy(cmd.Flags(), configPath)
		if err != nil {
			return err
		}

		result, err := groupCatalog(cfg)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printSets(out, result.Sets)
		printGroupingStats(out, result.Stats)

		if saveRun && len(result.Sets) > 0 {
			id, err := database.StoreRun(db, result.Sets, cfg.String())
			if err != nil {
				return fmt.Errorf("cannot save run: %w", err)
			}
			fmt.Fprintf(out, "Saved run %s\n", header(id))
		}
		return nil
	},
}

// groupCatalog loads the catalog and groups it with the configured worker count
func groupCatalog(cfg policy.Config) (*grouping.Result, error) {
	catalog, err := database.LoadCatalog(db)
	if err != nil {
		return nil, err
	}
	return grouping.GroupCatalog(catalog, cfg, grouping.Options{Workers: signalhandler.GetMaxProcs(workers)})
}

// loadGroups returns the sets of a saved run when --run is given, or groups the
// catalog afresh otherwise
func loadGroups(cmd *cobra.Command) ([]types.DuplicateSet, error) {
	if runID == "" {
		cfg, err := resolvePolicy(cmd.Flags(), configPath)
		if err != nil {
			return nil, err
		}
		result, err := groupCatalog(cfg)
		if err != nil {
			return nil, err
		}
		return result.Sets, nil
	}

	id := runID
	if id == "latest" {
		run, err := database.LatestRun(db)
		if err != nil {
			return nil, err
		}
		if run == nil {
			return nil, fmt.Errorf("no saved runs, use groups --save first")
		}
		id = run.ID
	}
	return database.LoadRun(db, id)
}

func init() {
	groupsCmd.Flags().BoolVar(&saveRun, "save", false, "store the duplicate sets in the catalog")
	rootCmd.AddCommand(groupsCmd)
}
