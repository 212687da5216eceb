// Package merkle implements the canonical left-balanced Merkle commitment
// over block-summary leaves (spec section 4.2, component C3) plus its
// one-pass streaming counterpart (section 4.3, component C4). The odd-
// promotion rule and the unkeyed BLAKE3 parent combiner here must stay
// byte-identical to the fold backend's parent commitment in pkg/fold.
package merkle

import (
	"fmt"

	"lukechampine.com/blake3"

	"github.com/sezkp/sezkp/pkg/block"
	"github.com/sezkp/sezkp/pkg/leafhash"
	"github.com/sezkp/sezkp/pkg/sezkperr"
)

// ManifestVersion is the only leaf-schema version this package understands.
const ManifestVersion = 1

// Manifest is the end-of-commit artifact: {version, root, n_leaves}.
type Manifest struct {
	Version uint32              `cbor:"1,keyasint" json:"version"`
	Root    [leafhash.Size]byte `cbor:"2,keyasint" json:"root"`
	NLeaves uint32              `cbor:"3,keyasint" json:"n_leaves"`
}

// CombineParents computes BLAKE3(left || right), unkeyed, with no domain
// separation tag. This is the "linchpin" combiner shared with pkg/fold's
// FoldProof parent commitment (spec 4.6 item 3).
func CombineParents(left, right [leafhash.Size]byte) [leafhash.Size]byte {
	h := blake3.New(leafhash.Size, nil)
	h.Write(left[:])
	h.Write(right[:])
	var out [leafhash.Size]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Commit hashes each block's leaf (pkg/leafhash) and folds the resulting
// leaves up to a single root via the same O(log T) peak-stack (stack.push /
// stack.finalize, stream.go) that StreamCommit uses. The batch and streaming
// paths MUST traverse one tree shape: a level-by-level reduction pass (pair
// up, promote a trailing odd node) produces a different nesting than the
// peak-stack's left fold whenever the leaf count's binary expansion has more
// than one gap (the smallest case is n=7), so Commit delegates to
// StreamCommit directly rather than keeping a second, divergent algorithm.
func Commit(blocks []*block.BlockSummary) (*Manifest, error) {
	return StreamCommit(block.NewSliceIterator(blocks))
}

// Verify recomputes the root over blocks and asserts equality with
// manifest.Root and len(blocks) == manifest.NLeaves.
func Verify(blocks []*block.BlockSummary, manifest *Manifest) error {
	if manifest.Version != ManifestVersion {
		return sezkperr.New(sezkperr.KindSchemaVersion,
			fmt.Sprintf("unrecognized manifest version %d", manifest.Version))
	}
	if uint32(len(blocks)) != manifest.NLeaves {
		return sezkperr.New(sezkperr.KindLeafCountMismatch,
			fmt.Sprintf("got %d blocks, manifest declares %d", len(blocks), manifest.NLeaves))
	}
	got, err := Commit(blocks)
	if err != nil {
		return err
	}
	if got.Root != manifest.Root {
		return sezkperr.Wrap(sezkperr.KindManifestMismatch, "root mismatch", sezkperr.ErrManifestMismatch)
	}
	return nil
}
