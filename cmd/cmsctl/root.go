package main

import (
	"github.com/spf13/cobra"

	"github.com/ryhaapp/ryha-server/internal/config"
	"github.com/ryhaapp/ryha-server/internal/logger"
	"github.com/ryhaapp/ryha-server/internal/service"
	"github.com/ryhaapp/ryha-server/internal/store"
	"github.com/ryhaapp/ryha-server/internal/validation"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	dataPath string
	envFile  string
	verbose  bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "cmsctl",
		Short: "Administer a Ryha CMS data directory",
		Long: `cmsctl works directly on the data directory of a Ryha server.

A running server notices changes made by cmsctl and rebuilds its
search index, so it is safe to use while the server is up.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flags.dataPath, "data-path", "", "Data directory (default: DATA_PATH or ~/Ryha/data)")
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "Path to .env file")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Verbose output")

	root.AddCommand(
		newHashPasswordCmd(),
		newSeedCmd(flags),
		newPublishDueCmd(flags),
	)
	return root
}

// app is the part of the server a command works with.
type app struct {
	cfg        *config.Config
	log        *logger.Logger
	store      *store.Store
	posts      *service.PostService
	authors    *service.AuthorService
	categories *service.CategoryService
	crew       *service.CrewService
}

// open loads configuration the same way the server does and opens the store.
func (f *globalFlags) open() (*app, error) {
	args := []string{"-env-file", f.envFile}
	if f.dataPath != "" {
		args = append(args, "-data-path", f.dataPath)
	}
	if f.verbose {
		args = append(args, "-log-level", "debug")
	}
	cfg, err := config.Load(args)
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	})

	st, err := store.New(store.Options{Path: cfg.Data.DocumentPath(), Logger: log.Logger})
	if err != nil {
		return nil, err
	}

	v := validation.New()
	return &app{
		cfg:        cfg,
		log:        log,
		store:      st,
		posts:      service.NewPostService(st, v, nil, log.Logger),
		authors:    service.NewAuthorService(st, v, log.Logger),
		categories: service.NewCategoryService(st, v, log.Logger),
		crew:       service.NewCrewService(st, v, log.Logger),
	}, nil
}
