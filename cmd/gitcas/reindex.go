package main

import (
	"fmt"

	"github.com/agenthands/gitcas/pkg/core"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newReindexCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "rebuild the object catalog from the object files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore(cmd, func(c *core.Config) {
				c.Catalog.Enabled = true
			})
			if err != nil {
				return err
			}
			defer s.Close()

			n, err := s.Reindex()
			if err != nil {
				return errors.Wrap(err, "reindex failed")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d objects\n", n)
			return nil
		},
	}
}
