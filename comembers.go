package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dupefinder/navigation"
	"dupefinder/types"
)

var (
	memberFolder string
	memberFile   string
)

var comembersCmd = &cobra.Command{
	Use:   "comembers",
	Short: "List the duplicates of one file",
	RunE: func(cmd *cobra.Command, args []string) error {
		groups, err := loadGroups(cmd)
		if err != nil {
			return err
		}

		reference := types.Asset{FolderPath: memberFolder, FileName: memberFile}
		others := navigation.CoMembers(groups, reference)

		out := cmd.OutOrStdout()
		if len(others) == 0 {
			fmt.Fprintf(out, "%s\n", dim(reference.FullPath()+" has no duplicates"))
			return nil
		}
		fmt.Fprintf(out, "%s\n", header(reference.FullPath()))
		for _, a := range others {
			fmt.Fprintf(out, "  %s\n", a.FullPath())
		}
		return nil
	},
}

func init() {
	comembersCmd.Flags().StringVar(&memberFolder, "folder", "", "folder of the file")
	comembersCmd.Flags().StringVar(&memberFile, "file", "", "file name")
	comembersCmd.Flags().StringVar(&runID, "run", "", "use a saved run (ID or \"latest\") instead of grouping again")
	comembersCmd.MarkFlagRequired("folder")
	comembersCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(comembersCmd)
}
