package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/recipe-agent/pkg/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	RunE: func(cmd *cobra.Command, _ []string) error {
		info := version.Get()

		if jsonOutput, _ := cmd.Flags().GetBool("json"); !jsonOutput {
			fmt.Fprintln(cmd.OutOrStdout(), info.String())
			return nil
		}

		out, err := info.JSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	versionCmd.Flags().Bool("json", false, "Output in JSON format")
}
