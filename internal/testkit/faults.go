package testkit

import (
	"errors"
	"io"
)

// ErrInjectedFault is the default error returned by the fault helpers.
var ErrInjectedFault = errors.New("injected fault")

// FailAfter returns content that yields the first n bytes of r and then
// fails with err (ErrInjectedFault when nil). Put must discard its temporary
// when the caller's content breaks mid-stream.
func FailAfter(r io.Reader, n int64, err error) io.Reader {
	if err == nil {
		err = ErrInjectedFault
	}
	return io.MultiReader(io.LimitReader(r, n), &errReader{err: err})
}

type errReader struct{ err error }

func (e *errReader) Read([]byte) (int, error) { return 0, e.err }

// FailingWriter accepts Limit bytes and then fails every write with Err. It
// stands in for a full disk under the compressed object stream.
type FailingWriter struct {
	Limit   int64
	Err     error
	written int64
}

func (w *FailingWriter) Write(p []byte) (int, error) {
	err := w.Err
	if err == nil {
		err = ErrInjectedFault
	}
	room := w.Limit - w.written
	if room <= 0 {
		return 0, err
	}
	if int64(len(p)) > room {
		w.written += room
		return int(room), err
	}
	w.written += int64(len(p))
	return len(p), nil
}

// GatedReader parks the first Read until Release is closed, after signalling
// Entered. Tests use it to observe a Put while its temporary is open.
type GatedReader struct {
	r       io.Reader
	Entered chan struct{}
	Release chan struct{}
	passed  bool
}

func NewGatedReader(r io.Reader) *GatedReader {
	return &GatedReader{
		r:       r,
		Entered: make(chan struct{}),
		Release: make(chan struct{}),
	}
}

func (g *GatedReader) Read(p []byte) (int, error) {
	if !g.passed {
		g.passed = true
		close(g.Entered)
		<-g.Release
	}
	return g.r.Read(p)
}
