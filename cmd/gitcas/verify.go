package main

import (
	"fmt"

	"github.com/agenthands/gitcas/pkg/cidutil"
	"github.com/agenthands/gitcas/pkg/core"
	"github.com/agenthands/gitcas/pkg/header"
	"github.com/agenthands/gitcas/pkg/objstore"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newVerifyCmd(a *app) *cobra.Command {
	var all, withCID bool
	cmd := &cobra.Command{
		Use:   "verify [--all | <object>...]",
		Short: "check that objects decompress cleanly and match their names",
		Long: `Check that objects decompress cleanly and match their names.
With --cid the raw payload is also checked against the object's CID
multihash and the CID is printed.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) > 0) {
				return fmt.Errorf("requires either --all or at least one object")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			names := args
			if all {
				err := s.Walk(func(h core.Hash) error {
					names = append(names, h.String())
					return nil
				})
				if err != nil {
					return errors.Wrap(err, "list objects failed")
				}
			}

			out := cmd.OutOrStdout()
			failed := 0
			for _, ref := range names {
				h, err := cidutil.ParseRef(ref)
				if err == nil {
					err = s.Verify(h.String())
				}
				suffix := ""
				if err == nil && withCID {
					var c string
					c, err = verifyCID(s, h)
					suffix = " " + c
				}
				if err != nil {
					failed++
					a.log.WithField("object", ref).WithError(err).Debug("verification failed")
					fmt.Fprintf(out, "%s: %s: %v\n", ref, core.KindOf(err), err)
					continue
				}
				fmt.Fprintf(out, "%s: ok%s\n", h, suffix)
			}
			if failed > 0 {
				return errors.Errorf("%d of %d objects failed verification", failed, len(names))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "verify every object in the store")
	cmd.Flags().BoolVar(&withCID, "cid", false, "also check each payload against its CID multihash")
	return cmd
}

// verifyCID rebuilds the raw payload of h and checks it against the CID
// naming the same object.
func verifyCID(s objstore.Store, h core.Hash) (string, error) {
	content, err := s.Get(h.String())
	if err != nil {
		return "", err
	}
	payload := append(header.Encode(core.KindBlob, int64(len(content))), content...)
	c := cidutil.ObjectCID(h)
	if err := cidutil.Verify(c, payload); err != nil {
		return "", errors.Wrapf(err, "object %s", c)
	}
	return c.String(), nil
}
