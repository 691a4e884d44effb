package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"dupefinder/database"
	"dupefinder/grouping"
	"dupefinder/types"
)

var (
	header = color.New(color.FgCyan, color.Bold).SprintFunc()
	keep   = color.New(color.FgGreen).SprintFunc()
	warn   = color.New(color.FgYellow).SprintFunc()
	dim    = color.New(color.FgHiBlack).SprintFunc()
)

// printSets writes every set with its first member marked as the copy to keep
func printSets(out io.Writer, sets []types.DuplicateSet) {
	if len(sets) == 0 {
		fmt.Fprintf(out, "%s\n", dim("No duplicates found."))
		return
	}

	for i, set := range sets {
		fmt.Fprintf(out, "%s\n", header(fmt.Sprintf("Set %d (%d assets)", i+1, len(set))))
		for j, a := range set {
			if j == 0 {
				fmt.Fprintf(out, "  %s %s\n", keep("keep"), a.FullPath())
			} else {
				fmt.Fprintf(out, "  %s  %s\n", warn("dup"), a.FullPath())
			}
		}
		fmt.Fprintln(out)
	}
}

func printGroupingStats(out io.Writer, stats grouping.Stats) {
	fmt.Fprintf(out, "Summary:\n")
	fmt.Fprintf(out, "- Assets in catalog: %d (%d compared)\n", stats.Assets, stats.Eligible)
	fmt.Fprintf(out, "- Duplicate sets: %d\n", stats.Sets)
	fmt.Fprintf(out, "- Duplicates: %d\n", stats.Duplicates)
	fmt.Fprintf(out, "- Grouping time: %v\n", stats.Elapsed.Round(time.Millisecond))
}

func printCatalogStats(out io.Writer, path string, stats *database.CatalogStats, latest *database.RunInfo) {
	fmt.Fprintf(out, "%s\n", header("Catalog: "+path))
	fmt.Fprintf(out, "- Assets: %d in %d folders (%d videos)\n", stats.TotalAssets, stats.Folders, stats.Videos)
	fmt.Fprintf(out, "- Exact hashes: %d (%d unique)\n", stats.WithExactHash, stats.UniqueExactHashes)
	fmt.Fprintf(out, "- dHash: %d, pHash: %d\n", stats.WithDHash, stats.WithPHash)
	fmt.Fprintf(out, "- Saved runs: %d\n", stats.Runs)
	if latest != nil {
		fmt.Fprintf(out, "- Latest run: %s at %s (%d sets, %d duplicates)\n",
			latest.ID, latest.CreatedAt, latest.Sets, latest.Duplicates)
	}
}
