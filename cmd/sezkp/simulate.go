package main

import (
	"flag"

	"github.com/sezkp/sezkp/pkg/ioformat"
	"github.com/sezkp/sezkp/pkg/sezkperr"
	"github.com/sezkp/sezkp/pkg/simulate"
)

func runSimulate(args []string) error {
	fs := flag.NewFlagSet("simulate", flag.ContinueOnError)
	t := fs.Uint64("t", 0, "total trace steps")
	b := fs.Uint64("b", 0, "steps per block")
	tau := fs.Uint("tau", 1, "number of work tapes")
	outBlocks := fs.String("out-blocks", "", "output blocks file path")
	if err := fs.Parse(args); err != nil {
		return sezkperr.Wrap(sezkperr.KindIO, "parsing simulate flags", err)
	}
	if *outBlocks == "" {
		return sezkperr.New(sezkperr.KindIO, "simulate: --out-blocks is required")
	}

	blocks, err := simulate.Blocks(simulate.Params{T: *t, B: *b, Tau: uint16(*tau)})
	if err != nil {
		return err
	}
	return ioformat.WriteBlocks(*outBlocks, blocks)
}
