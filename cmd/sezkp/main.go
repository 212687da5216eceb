// Command sezkp is the thin CLI dispatcher for the SEZKP streaming proof
// pipeline (spec section 6). It wires flags and environment variables into
// the core packages and translates sezkperr.Error into the exit codes and
// one-line messages spec section 7 requires; it contains no pipeline logic
// of its own.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/sezkp/sezkp/pkg/sezkperr"
)

func main() {
	logger := log.New(os.Stderr, fmt.Sprintf("[sezkp %s] ", uuid.NewString()[:8]), log.LstdFlags)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	verb := os.Args[1]
	args := os.Args[2:]

	var err error
	switch verb {
	case "simulate":
		err = runSimulate(args)
	case "commit":
		err = runCommit(args)
	case "verify-commit":
		err = runVerifyCommit(args)
	case "export-jsonl":
		err = runExportJSONL(args)
	case "prove":
		err = runProve(args, logger)
	case "verify":
		err = runVerify(args, logger)
	case "help", "-h", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "sezkp: unrecognized verb %q\n", verb)
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "sezkp %s: %v\n", verb, err)
		os.Exit(sezkperr.ExitCodeFor(err))
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: sezkp <verb> [flags]

verbs:
  simulate       --t <u64> --b <u32> --tau <u16> --out-blocks <path>
  commit         --blocks <path> --out <manifest>
  verify-commit  --blocks <path> --manifest <path>
  export-jsonl   --input <path> --output <path>
  prove          --backend fold|stark --blocks <path> --manifest <path> --out <proof>
                 [--config <yaml>] [--fold-mode balanced|minram]
                 [--wrap-cadence K] [--sidecar <path>] [--stream] [--assume-committed]
  verify         --backend fold|stark --blocks <path> --manifest <path> --proof <path>
                 [--config <yaml>] [--fold-mode balanced|minram]
                 [--wrap-cadence K] [--sidecar <path>] [--stream] [--assume-committed]`)
}
