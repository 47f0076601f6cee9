package cmd

import "github.com/spf13/cobra"

func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kyoex",
		Short: "koyo exchange backend",
	}
	cmd.AddCommand(IndexerCmd())
	cmd.AddCommand(ServerCmd())
	return cmd
}
