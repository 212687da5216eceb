package main

import (
	"flag"
	"fmt"

	"github.com/sezkp/sezkp/pkg/ioformat"
	"github.com/sezkp/sezkp/pkg/merkle"
	"github.com/sezkp/sezkp/pkg/sezkperr"
)

func runCommit(args []string) error {
	fs := flag.NewFlagSet("commit", flag.ContinueOnError)
	blocksPath := fs.String("blocks", "", "input blocks file path")
	out := fs.String("out", "", "output manifest file path")
	if err := fs.Parse(args); err != nil {
		return sezkperr.Wrap(sezkperr.KindIO, "parsing commit flags", err)
	}
	if *blocksPath == "" || *out == "" {
		return sezkperr.New(sezkperr.KindIO, "commit: --blocks and --out are required")
	}

	it, closer, err := ioformat.OpenIterator(*blocksPath)
	if err != nil {
		return err
	}
	defer closer.Close()

	manifest, err := merkle.StreamCommit(it)
	if err != nil {
		return err
	}
	if err := ioformat.WriteManifest(*out, manifest); err != nil {
		return err
	}
	fmt.Printf("OK: committed %d leaves, root=%x\n", manifest.NLeaves, manifest.Root)
	return nil
}

func runVerifyCommit(args []string) error {
	fs := flag.NewFlagSet("verify-commit", flag.ContinueOnError)
	blocksPath := fs.String("blocks", "", "input blocks file path")
	manifestPath := fs.String("manifest", "", "manifest file path")
	if err := fs.Parse(args); err != nil {
		return sezkperr.Wrap(sezkperr.KindIO, "parsing verify-commit flags", err)
	}
	if *blocksPath == "" || *manifestPath == "" {
		return sezkperr.New(sezkperr.KindIO, "verify-commit: --blocks and --manifest are required")
	}

	manifest, err := ioformat.ReadManifest(*manifestPath)
	if err != nil {
		return err
	}
	it, closer, err := ioformat.OpenIterator(*blocksPath)
	if err != nil {
		return err
	}
	defer closer.Close()

	if err := merkle.StreamVerify(it, manifest); err != nil {
		return err
	}
	fmt.Println("OK: proof verified")
	return nil
}

func runExportJSONL(args []string) error {
	fs := flag.NewFlagSet("export-jsonl", flag.ContinueOnError)
	input := fs.String("input", "", "input blocks file path")
	output := fs.String("output", "", "output .jsonl path")
	if err := fs.Parse(args); err != nil {
		return sezkperr.Wrap(sezkperr.KindIO, "parsing export-jsonl flags", err)
	}
	if *input == "" || *output == "" {
		return sezkperr.New(sezkperr.KindIO, "export-jsonl: --input and --output are required")
	}

	blocks, err := ioformat.ReadBlocks(*input)
	if err != nil {
		return err
	}
	return ioformat.WriteBlocks(*output, blocks)
}
