package core

import (
	"errors"
)

var (
	ErrInvalidInput    = errors.New("gitcas: invalid input")
	ErrNotFound        = errors.New("gitcas: not found")
	ErrCorrupt         = errors.New("gitcas: corrupt object")
	ErrUnsupportedKind = errors.New("gitcas: unsupported object kind")
	ErrSizeMismatch    = errors.New("gitcas: size mismatch")
	ErrIOFailure       = errors.New("gitcas: i/o failure")
	ErrTooLarge        = errors.New("gitcas: too large")
	ErrClosed          = errors.New("gitcas: store closed")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrInvalidInput, "invalid-input"},
	{ErrNotFound, "not-found"},
	{ErrCorrupt, "corrupt"},
	{ErrUnsupportedKind, "unsupported-kind"},
	{ErrSizeMismatch, "size-mismatch"},
	{ErrTooLarge, "too-large"},
	{ErrClosed, "closed"},
	{ErrIOFailure, "io-failure"},
}

// KindOf names the error kind err belongs to. Errors that wrap no sentinel
// report "unknown"; nil reports "".
func KindOf(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "unknown"
}

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
