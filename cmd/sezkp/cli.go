package main

import (
	"flag"
	"io"

	"github.com/sezkp/sezkp/pkg/block"
	"github.com/sezkp/sezkp/pkg/config"
	"github.com/sezkp/sezkp/pkg/ioformat"
	"github.com/sezkp/sezkp/pkg/sezkperr"
)

// checkBackend validates the --backend flag shared by prove/verify. Only
// "fold" is implemented; "stark" is a named Non-goal (spec section 1/5),
// so it is rejected explicitly rather than silently ignored.
func checkBackend(backend string) error {
	switch backend {
	case "", "fold":
		return nil
	case "stark":
		return sezkperr.New(sezkperr.KindInternal, "backend \"stark\" is not implemented")
	default:
		return sezkperr.New(sezkperr.KindInternal, "unrecognized backend \""+backend+"\"")
	}
}

// nopCloser lets openBlockSource return a uniform (block.Iterator, io.Closer)
// pair even when the source was fully materialized and has nothing to close.
type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openBlockSource opens path as a block.Iterator: a true streaming iterator
// when stream is set (spec 6's --stream flag), or a slice iterator over the
// fully materialized file otherwise. Both cases return a uniform io.Closer.
func openBlockSource(path string, stream bool) (block.Iterator, io.Closer, error) {
	if stream {
		return ioformat.OpenIterator(path)
	}
	blocks, err := ioformat.ReadBlocks(path)
	if err != nil {
		return nil, nil, err
	}
	return block.NewSliceIterator(blocks), nopCloser{}, nil
}

// flagOverrides reports which of prove/verify's config-related flags were
// actually passed on the command line, so config.ApplyFlags can distinguish
// "not set" from "set to the zero value".
func flagOverrides(fs *flag.FlagSet, foldMode *string, wrapCadence *uint64, sidecarPath *string) config.FlagOverrides {
	var o config.FlagOverrides
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "fold-mode":
			o.FoldMode = foldMode
		case "wrap-cadence":
			o.WrapCadence = wrapCadence
		case "sidecar":
			o.ProofStreamPath = sidecarPath
		}
	})
	return o
}
