package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sezkp/sezkp/pkg/config"
	"github.com/sezkp/sezkp/pkg/ioformat"
	"github.com/sezkp/sezkp/pkg/merkle"
	"github.com/sezkp/sezkp/pkg/metrics"
	"github.com/sezkp/sezkp/pkg/scheduler"
	"github.com/sezkp/sezkp/pkg/sezkperr"
)

func runProve(args []string, logger *log.Logger) error {
	fs := flag.NewFlagSet("prove", flag.ContinueOnError)
	backend := fs.String("backend", "fold", "fold|stark (only fold is implemented)")
	blocksPath := fs.String("blocks", "", "input blocks file path")
	manifestPath := fs.String("manifest", "", "manifest file path")
	out := fs.String("out", "", "output proof file path")
	configPath := fs.String("config", "", "optional YAML config file path")
	foldMode := fs.String("fold-mode", "", "balanced|minram (overrides env/config)")
	wrapCadence := fs.Uint64("wrap-cadence", 0, "emit a wrap every N folds (overrides env/config)")
	sidecarPath := fs.String("sidecar", "", "minram proof sidecar path (overrides env/config)")
	stream := fs.Bool("stream", false, "read --blocks as a streaming iterator instead of materializing it")
	assumeCommitted := fs.Bool("assume-committed", false, "skip recomputing the commitment against --manifest before proving")
	if err := fs.Parse(args); err != nil {
		return sezkperr.Wrap(sezkperr.KindIO, "parsing prove flags", err)
	}
	if *blocksPath == "" || *manifestPath == "" || *out == "" {
		return sezkperr.New(sezkperr.KindIO, "prove: --blocks, --manifest and --out are required")
	}
	if err := checkBackend(*backend); err != nil {
		return err
	}

	fileDefaults, err := config.LoadFile(*configPath)
	if err != nil {
		return err
	}
	cfg := config.FromEnv(fileDefaults)
	cfg = config.ApplyFlags(cfg, flagOverrides(fs, foldMode, wrapCadence, sidecarPath))

	manifest, err := ioformat.ReadManifest(*manifestPath)
	if err != nil {
		return err
	}

	if !*assumeCommitted {
		checkIt, checkCloser, err := ioformat.OpenIterator(*blocksPath)
		if err != nil {
			return err
		}
		err = merkle.StreamVerify(checkIt, manifest)
		checkCloser.Close()
		if err != nil {
			return err
		}
	}

	reg := prometheus.NewRegistry()
	m, err := metrics.NewScheduler(reg)
	if err != nil {
		return sezkperr.Wrap(sezkperr.KindInternal, "registering scheduler metrics", err)
	}

	before := metrics.SampleRSS()
	logger.Printf("prove: starting fold-mode=%s wrap-cadence=%d heap-alloc=%d",
		cfg.Mode, cfg.WrapCadence, before.HeapAllocBytes)

	sched, err := scheduler.New(cfg)
	if err != nil {
		return err
	}
	sched.SetMetrics(m)

	proveIt, closer, err := openBlockSource(*blocksPath, *stream)
	if err != nil {
		return err
	}
	defer closer.Close()

	proof, err := sched.Prove(proveIt)
	if err != nil {
		return err
	}
	m.BlocksFolded.Add(float64(proof.Manifest.NLeaves))

	if err := ioformat.WriteProof(*out, proof.Root); err != nil {
		return err
	}

	after := metrics.SampleRSS()
	logger.Printf("prove: finished leaves=%d root=%x heap-alloc=%d (delta=%d) gc=%d",
		proof.Manifest.NLeaves, proof.Manifest.Root, after.HeapAllocBytes,
		int64(after.HeapAllocBytes)-int64(before.HeapAllocBytes), after.NumGC)

	fmt.Printf("OK: proved %d leaves, root=%x\n", proof.Manifest.NLeaves, proof.Manifest.Root)
	return nil
}
