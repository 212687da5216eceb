package merkle

import (
	"testing"

	"github.com/sezkp/sezkp/pkg/block"
	"github.com/sezkp/sezkp/pkg/leafhash"
	"github.com/sezkp/sezkp/pkg/sezkperr"
)

func chain(n int) []*block.BlockSummary {
	blocks := make([]*block.BlockSummary, n)
	for i := 0; i < n; i++ {
		blocks[i] = &block.BlockSummary{
			Version:        1,
			BlockID:        uint32(i),
			StepLo:         uint64(i),
			StepHi:         uint64(i),
			Windows:        []block.Window{{Left: 0, Right: 1}},
			HeadInOffsets:  []uint32{0},
			HeadOutOffsets: []uint32{0},
			MovementLog:    block.MovementLog{Steps: []block.Step{{TapeOps: []block.TapeOp{{}}}}},
		}
	}
	return blocks
}

func TestCommitVerifyRoundTrip(t *testing.T) {
	for _, n := range []int{1, 2, 3, 4, 5, 7, 16, 17} {
		blocks := chain(n)
		manifest, err := Commit(blocks)
		if err != nil {
			t.Fatalf("n=%d: Commit: %v", n, err)
		}
		if manifest.NLeaves != uint32(n) {
			t.Fatalf("n=%d: NLeaves = %d", n, manifest.NLeaves)
		}
		if err := Verify(blocks, manifest); err != nil {
			t.Fatalf("n=%d: Verify: %v", n, err)
		}
	}
}

func TestCommitEmptyRejected(t *testing.T) {
	if _, err := Commit(nil); sezkperr.KindOf(err) != sezkperr.KindLeafCountMismatch {
		t.Fatalf("want LeafCountMismatch, got %v", err)
	}
}

func TestOddLevelPromotesWithoutDuplication(t *testing.T) {
	// n=3: level0 = [L0,L1,L2]; level1 = [H(L0,L1), L2] (L2 promoted, not
	// duplicated); root = H(H(L0,L1), L2).
	blocks := chain(3)
	leaves := make([][leafhash.Size]byte, 3)
	for i, b := range blocks {
		leaves[i] = [leafhash.Size]byte(leafhash.Hash(b))
	}
	want := CombineParents(CombineParents(leaves[0], leaves[1]), leaves[2])

	manifest, err := Commit(blocks)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if manifest.Root != want {
		t.Fatalf("root = %x, want %x (odd-promotion, not duplication)", manifest.Root, want)
	}
}

func TestVerifyDetectsRootTamper(t *testing.T) {
	blocks := chain(4)
	manifest, err := Commit(blocks)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	manifest.Root[0] ^= 0xFF
	if err := Verify(blocks, manifest); sezkperr.KindOf(err) != sezkperr.KindManifestMismatch {
		t.Fatalf("want ManifestMismatch, got %v", err)
	}
}

func TestVerifyDetectsLeafCountTamper(t *testing.T) {
	blocks := chain(4)
	manifest, err := Commit(blocks)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	manifest.NLeaves = 99
	if err := Verify(blocks, manifest); sezkperr.KindOf(err) != sezkperr.KindLeafCountMismatch {
		t.Fatalf("want LeafCountMismatch, got %v", err)
	}
}

func TestVerifyDetectsVersionMismatch(t *testing.T) {
	blocks := chain(2)
	manifest, err := Commit(blocks)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	manifest.Version = 99
	if err := Verify(blocks, manifest); sezkperr.KindOf(err) != sezkperr.KindSchemaVersion {
		t.Fatalf("want SchemaVersion, got %v", err)
	}
}

func TestRejectsNonAdjacentBlocks(t *testing.T) {
	blocks := chain(3)
	blocks[2].BlockID = 9
	if _, err := Commit(blocks); sezkperr.KindOf(err) != sezkperr.KindBoundaryMismatch {
		t.Fatalf("want BoundaryMismatch, got %v", err)
	}
}
