package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ryhaapp/ryha-server/internal/seed"
)

func newSeedCmd(flags *globalFlags) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load authors, categories, crew and posts from a YAML file",
		Long: `Creates the content described in a YAML file. Entries go through the
same validation as the admin API. Running the same file twice is safe:
existing authors, categories and crew members are matched by name and
existing posts by slug.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			content, err := seed.Parse(f)
			if err != nil {
				return err
			}

			a, err := flags.open()
			if err != nil {
				return err
			}

			report, err := seed.Apply(cmd.Context(), seed.Services{
				Posts:      a.posts,
				Authors:    a.authors,
				Categories: a.categories,
				Crew:       a.crew,
			}, content, a.log.Logger)
			if report != nil {
				fmt.Fprintf(cmd.OutOrStdout(),
					"authors: %d, categories: %d, crew: %d, posts: %d created; %d skipped\n",
					report.AuthorsCreated, report.CategoriesCreated, report.CrewCreated,
					report.PostsCreated, report.Skipped,
				)
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "seed.yaml", "Seed file")
	return cmd
}
