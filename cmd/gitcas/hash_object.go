package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/agenthands/gitcas/pkg/cidutil"
	"github.com/agenthands/gitcas/pkg/core"
	"github.com/agenthands/gitcas/pkg/objstore"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type hashObjectOptions struct {
	write bool
	stdin bool
	cid   bool
}

func newHashObjectCmd(a *app) *cobra.Command {
	o := &hashObjectOptions{}
	cmd := &cobra.Command{
		Use:   "hash-object [-w] [--stdin | <file>]",
		Short: "compute the object name of a file, optionally storing it",
		Args: func(cmd *cobra.Command, args []string) error {
			if o.stdin && len(args) > 0 {
				return fmt.Errorf("--stdin takes no file argument")
			}
			if !o.stdin && len(args) != 1 {
				return fmt.Errorf("requires exactly one file")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(a, cmd, args)
		},
	}
	cmd.Flags().BoolVarP(&o.write, "write", "w", false, "write the object into the store")
	cmd.Flags().BoolVar(&o.stdin, "stdin", false, "read the content from standard input")
	cmd.Flags().BoolVar(&o.cid, "cid", false, "print the object CID instead of the hex name")
	return cmd
}

func (o *hashObjectOptions) run(a *app, cmd *cobra.Command, args []string) error {
	var (
		r    io.Reader
		size int64
		name string
	)
	if o.stdin {
		// The header needs the size up front.
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return errors.Wrap(err, "read stdin failed")
		}
		r, size, name = bytes.NewReader(data), int64(len(data)), "<stdin>"
	} else {
		f, err := os.Open(args[0])
		if err != nil {
			return errors.Wrap(err, "open input failed")
		}
		defer f.Close()
		st, err := f.Stat()
		if err != nil {
			return errors.Wrap(err, "stat input failed")
		}
		if !st.Mode().IsRegular() {
			return errors.Errorf("%s is not a regular file", args[0])
		}
		r, size, name = f, st.Size(), args[0]
	}

	var (
		h   core.Hash
		err error
	)
	if o.write {
		s, serr := a.openStore(cmd)
		if serr != nil {
			return serr
		}
		defer s.Close()
		h, err = s.Put(r, size)
	} else {
		h, err = objstore.Encode(io.Discard, nil, r, size)
	}
	if err != nil {
		return errors.Wrapf(err, "hash %s failed", name)
	}

	if o.cid {
		fmt.Fprintln(cmd.OutOrStdout(), cidutil.ObjectCID(h).String())
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), h.String())
	}
	return nil
}
