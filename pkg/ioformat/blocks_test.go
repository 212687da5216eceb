package ioformat

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sezkp/sezkp/pkg/block"
)

func writeFileForTest(path, contents string) error {
	return os.WriteFile(path, []byte(contents), 0o644)
}

func sampleBlocks(n int) []*block.BlockSummary {
	blocks := make([]*block.BlockSummary, n)
	for i := 0; i < n; i++ {
		blocks[i] = &block.BlockSummary{
			Version:        1,
			BlockID:        uint32(i),
			StepLo:         uint64(i) * 2,
			StepHi:         uint64(i)*2 + 1,
			Windows:        []block.Window{{Left: 0, Right: 4}},
			HeadInOffsets:  []uint32{0},
			HeadOutOffsets: []uint32{0},
			MovementLog: block.MovementLog{
				Steps: []block.Step{
					{TapeOps: []block.TapeOp{{Move: 1}}},
					{TapeOps: []block.TapeOp{{Move: -1}}},
				},
			},
		}
	}
	return blocks
}

func TestWriteReadBlocksRoundTrip(t *testing.T) {
	for _, ext := range []string{".cbor", ".jsonl", ".ndjson", ".json"} {
		t.Run(ext, func(t *testing.T) {
			blocks := sampleBlocks(5)
			path := filepath.Join(t.TempDir(), "blocks"+ext)
			if err := WriteBlocks(path, blocks); err != nil {
				t.Fatalf("WriteBlocks: %v", err)
			}
			got, err := ReadBlocks(path)
			if err != nil {
				t.Fatalf("ReadBlocks: %v", err)
			}
			if len(got) != len(blocks) {
				t.Fatalf("got %d blocks, want %d", len(got), len(blocks))
			}
			for i := range blocks {
				if got[i].BlockID != blocks[i].BlockID || got[i].StepLo != blocks[i].StepLo {
					t.Fatalf("block %d round-tripped incorrectly: got %+v", i, got[i])
				}
			}
		})
	}
}

func TestOpenIteratorNeverMaterializesCBORUpfront(t *testing.T) {
	blocks := sampleBlocks(3)
	path := filepath.Join(t.TempDir(), "blocks.cbor")
	if err := WriteBlocks(path, blocks); err != nil {
		t.Fatalf("WriteBlocks: %v", err)
	}

	it, closer, err := OpenIterator(path)
	if err != nil {
		t.Fatalf("OpenIterator: %v", err)
	}
	defer closer.Close()

	count := 0
	for {
		b, err := it.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			t.Fatalf("Next: %v", err)
		}
		if b.BlockID != uint32(count) {
			t.Fatalf("block %d has BlockID %d", count, b.BlockID)
		}
		count++
	}
	if count != 3 {
		t.Fatalf("iterated %d blocks, want 3", count)
	}
}

func TestOpenIteratorSkipsBlankJSONLLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blocks.jsonl")
	contents := `{"version":1,"block_id":0,"step_lo":0,"step_hi":0,"ctrl_in":0,"ctrl_out":0,"in_head_in":0,"in_head_out":0,"windows":[],"head_in_offsets":[],"head_out_offsets":[],"movement_log":{"steps":[]}}

`
	if err := writeFileForTest(path, contents); err != nil {
		t.Fatalf("writing test fixture: %v", err)
	}
	it, closer, err := OpenIterator(path)
	if err != nil {
		t.Fatalf("OpenIterator: %v", err)
	}
	defer closer.Close()
	if _, err := it.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if _, err := it.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF after the blank-line-padded single record, got %v", err)
	}
}

// TestOpenIteratorReadsLineAboveScannerDefault writes one block whose
// movement_log serializes to well over bufio.MaxScanTokenSize (64 KiB) on a
// single JSONL line, and checks the iterator reads it instead of failing
// with bufio.ErrTooLong.
func TestOpenIteratorReadsLineAboveScannerDefault(t *testing.T) {
	steps := make([]block.Step, 20000)
	for i := range steps {
		steps[i] = block.Step{TapeOps: []block.TapeOp{{Move: 1}, {Move: -1}}}
	}
	b := &block.BlockSummary{
		Version:        1,
		Windows:        []block.Window{{Left: 0, Right: 4}},
		HeadInOffsets:  []uint32{0},
		HeadOutOffsets: []uint32{0},
		MovementLog:    block.MovementLog{Steps: steps},
	}
	path := filepath.Join(t.TempDir(), "big.jsonl")
	if err := WriteBlocks(path, []*block.BlockSummary{b}); err != nil {
		t.Fatalf("WriteBlocks: %v", err)
	}
	if fi, err := os.Stat(path); err != nil {
		t.Fatalf("Stat: %v", err)
	} else if fi.Size() < 64*1024 {
		t.Fatalf("fixture line is only %d bytes, want > 64KiB to exercise the buffer fix", fi.Size())
	}

	it, closer, err := OpenIterator(path)
	if err != nil {
		t.Fatalf("OpenIterator: %v", err)
	}
	defer closer.Close()

	got, err := it.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if len(got.MovementLog.Steps) != len(steps) {
		t.Fatalf("got %d steps, want %d", len(got.MovementLog.Steps), len(steps))
	}
	if _, err := it.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF after the single oversized record, got %v", err)
	}
}

func TestDetectRejectsUnknownExtension(t *testing.T) {
	if _, err := detect("trace.bin"); err == nil {
		t.Fatal("expected an error for an unrecognized extension")
	}
}
