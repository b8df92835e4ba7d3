package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPublishDueCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "publish-due",
		Short: "Publish scheduled posts whose time has come",
		Long: `Runs the scheduled-publishing job once. Useful when the server runs
with the scheduler disabled and publishing is driven by system cron.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := flags.open()
			if err != nil {
				return err
			}
			n, err := a.posts.PublishDue(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "published %d scheduled post(s)\n", n)
			return nil
		},
	}
}
