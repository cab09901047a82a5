package main

import (
	"fmt"

	"github.com/agenthands/gitcas/pkg/cidutil"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type catFileOptions struct {
	pretty bool
	kind   bool
	size   bool
	exists bool
}

func newCatFileCmd(a *app) *cobra.Command {
	o := &catFileOptions{}
	cmd := &cobra.Command{
		Use:   "cat-file (-p | -t | -s | -e) <object>",
		Short: "print the content, kind or size of an object",
		Long: `Print information about an object named by its 40-char hex name or CID.
With -e nothing is printed; the exit status is 0 when the object exists and
1 otherwise.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(a, cmd, args[0])
		},
	}
	cmd.Flags().BoolVarP(&o.pretty, "pretty", "p", false, "print the object content")
	cmd.Flags().BoolVarP(&o.kind, "type", "t", false, "print the object kind")
	cmd.Flags().BoolVarP(&o.size, "size", "s", false, "print the object size")
	cmd.Flags().BoolVarP(&o.exists, "exists", "e", false, "exit with zero status if the object exists")
	cmd.MarkFlagsMutuallyExclusive("pretty", "type", "size", "exists")
	cmd.MarkFlagsOneRequired("pretty", "type", "size", "exists")
	return cmd
}

func (o *catFileOptions) run(a *app, cmd *cobra.Command, ref string) error {
	h, err := cidutil.ParseRef(ref)
	if err != nil {
		return errors.Wrapf(err, "bad object %q", ref)
	}
	s, err := a.openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	out := cmd.OutOrStdout()
	name := h.String()

	switch {
	case o.exists:
		ok, err := s.Has(name)
		if err != nil {
			return err
		}
		if !ok {
			return &exitError{code: 1}
		}
	case o.kind, o.size:
		hdr, err := s.Stat(name)
		if err != nil {
			return err
		}
		if o.kind {
			fmt.Fprintln(out, hdr.Kind)
		} else {
			fmt.Fprintln(out, hdr.Size)
		}
	default:
		// Nothing is printed unless the whole object checks out.
		content, err := s.Get(name)
		if err != nil {
			return err
		}
		if _, err := out.Write(content); err != nil {
			return err
		}
	}
	return nil
}
