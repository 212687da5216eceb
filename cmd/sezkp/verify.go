package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sezkp/sezkp/pkg/config"
	"github.com/sezkp/sezkp/pkg/ioformat"
	"github.com/sezkp/sezkp/pkg/metrics"
	"github.com/sezkp/sezkp/pkg/scheduler"
	"github.com/sezkp/sezkp/pkg/sezkperr"
)

func runVerify(args []string, logger *log.Logger) error {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	backend := fs.String("backend", "fold", "fold|stark (only fold is implemented)")
	blocksPath := fs.String("blocks", "", "input blocks file path")
	manifestPath := fs.String("manifest", "", "manifest file path")
	proofPath := fs.String("proof", "", "proof file path")
	configPath := fs.String("config", "", "optional YAML config file path")
	foldMode := fs.String("fold-mode", "", "balanced|minram (overrides env/config)")
	wrapCadence := fs.Uint64("wrap-cadence", 0, "emit a wrap every N folds (overrides env/config)")
	sidecarPath := fs.String("sidecar", "", "minram proof sidecar path (overrides env/config)")
	stream := fs.Bool("stream", false, "read --blocks as a streaming iterator instead of materializing it")
	assumeCommitted := fs.Bool("assume-committed", false, "skip decoding --proof up front; the fold traversal does not read --proof, so the file is then not checked at all")
	if err := fs.Parse(args); err != nil {
		return sezkperr.Wrap(sezkperr.KindIO, "parsing verify flags", err)
	}
	if *blocksPath == "" || *manifestPath == "" || *proofPath == "" {
		return sezkperr.New(sezkperr.KindIO, "verify: --blocks, --manifest and --proof are required")
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
		// The proof file is read to confirm it decodes and matches the
		// on-disk container format (spec 6); the scheduler re-derives the
		// root from the block stream itself rather than trusting the
		// stored tree, so this is a format precheck, not a trust shortcut.
		if _, err := ioformat.ReadProof(*proofPath); err != nil {
			return err
		}
	}

	reg := prometheus.NewRegistry()
	m, err := metrics.NewScheduler(reg)
	if err != nil {
		return sezkperr.Wrap(sezkperr.KindInternal, "registering scheduler metrics", err)
	}

	before := metrics.SampleRSS()
	logger.Printf("verify: starting fold-mode=%s heap-alloc=%d", cfg.Mode, before.HeapAllocBytes)

	sched, err := scheduler.New(cfg)
	if err != nil {
		return err
	}
	sched.SetMetrics(m)

	verifyIt, closer, err := openBlockSource(*blocksPath, *stream)
	if err != nil {
		return err
	}
	defer closer.Close()

	if err := sched.Verify(verifyIt, manifest); err != nil {
		return err
	}
	m.BlocksFolded.Add(float64(manifest.NLeaves))

	after := metrics.SampleRSS()
	logger.Printf("verify: finished heap-alloc=%d (delta=%d) gc=%d",
		after.HeapAllocBytes, int64(after.HeapAllocBytes)-int64(before.HeapAllocBytes), after.NumGC)

	fmt.Println("OK: proof verified")
	return nil
}
