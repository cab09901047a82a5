package main

import (
	"fmt"

	"github.com/agenthands/gitcas/pkg/cidutil"
	"github.com/agenthands/gitcas/pkg/core"
	"github.com/spf13/cobra"
)

func newLsObjectsCmd(a *app) *cobra.Command {
	var asCID bool
	cmd := &cobra.Command{
		Use:   "ls-objects",
		Short: "list every object in the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			return s.Walk(func(h core.Hash) error {
				if asCID {
					_, err := fmt.Fprintln(out, cidutil.ObjectCID(h).String())
					return err
				}
				_, err := fmt.Fprintln(out, h.String())
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&asCID, "cid", false, "print CIDs instead of hex names")
	return cmd
}
