package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var addrCmd = &cobra.Command{
	Use:   "addr",
	Short: "Print the address the bridge would listen on",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), appConfig.Addr)
		return err
	},
}

func init() {
	rootCmd.AddCommand(addrCmd)
}
