package main

import (
	"fmt"
	"path/filepath"

	"github.com/agenthands/gitcas/pkg/repo"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "create an empty repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config(cmd)
			if err != nil {
				return err
			}
			reinit, err := repo.Init(cfg)
			if err != nil {
				return errors.Wrap(err, "init failed")
			}

			dir, err := filepath.Abs(cfg.Dir)
			if err != nil {
				dir = cfg.Dir
			}
			if reinit {
				fmt.Fprintf(cmd.OutOrStdout(), "Reinitialized existing git directory in %s\n", dir)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Initialized git directory in %s\n", dir)
			}
			return nil
		},
	}
}
