// Command gitcas reads and writes git loose objects.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		fmt.Fprintf(os.Stderr, "gitcas: %v\n", err)
		os.Exit(1)
	}
}

// exitError ends the process with code and no message.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}
