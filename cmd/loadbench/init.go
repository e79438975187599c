package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/loadable-dev/loadable/internal/config"
	"github.com/loadable-dev/loadable/internal/errors"
)

func initCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default " + config.ConfigFileName,
		Long: `Write a ` + config.ConfigFileName + ` into the current directory. Fields left at
their zero value keep the profile defaults, so the file only needs the
settings you want to pin between runs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}

			path := filepath.Join(dir, config.ConfigFileName)
			if config.Exists(dir) {
				if !force {
					return errors.Newf(errors.CategoryConfig, "%s already exists", config.ConfigFileName).
						WithSuggestion("Pass --force to overwrite it")
				}
				warn("Overwriting %s", path)
			}

			cfg := config.New()
			if err := cfg.SaveTo(path); err != nil {
				return err
			}

			success("Created %s", path)
			info("Edit it to pin workload values, then run 'loadbench run'.")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing config file")

	return cmd
}
