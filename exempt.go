package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dupefinder/exemption"
)

var exemptPath string

var exemptCmd = &cobra.Command{
	Use:   "exempt",
	Short: "List duplicates that are safe to delete given a folder of masters",
	Long: `Everything under --path is kept. For every duplicate set that has copies both
inside and outside that folder, the copies outside it are listed as safe to
delete. Sets entirely inside or entirely outside the folder are not listed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		groups, err := loadGroups(cmd)
		if err != nil {
			return err
		}

		deletable, err := exemption.NotExempted(groups, exemptPath)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(deletable) == 0 {
			fmt.Fprintf(out, "%s\n", dim("Nothing outside "+exemptPath+" duplicates a kept file."))
			return nil
		}
		for _, a := range deletable {
			fmt.Fprintf(out, "%s\n", a.FullPath())
		}
		fmt.Fprintf(out, "\n%s\n", warn(fmt.Sprintf("%d files are safe to delete", len(deletable))))
		return nil
	},
}

func init() {
	exemptCmd.Flags().StringVar(&exemptPath, "path", "", "folder whose files are kept")
	exemptCmd.Flags().StringVar(&runID, "run", "", "use a saved run (ID or \"latest\") instead of grouping again")
	exemptCmd.MarkFlagRequired("path")
	rootCmd.AddCommand(exemptCmd)
}
