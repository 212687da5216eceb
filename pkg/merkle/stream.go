package merkle

import (
	"errors"
	"fmt"
	"io"

	"github.com/sezkp/sezkp/pkg/block"
	"github.com/sezkp/sezkp/pkg/leafhash"
	"github.com/sezkp/sezkp/pkg/sezkperr"
)

// stackEntry is one pending node in the streaming reduction: level 0 is a
// leaf, level k is the combination of 2^k leaves (modulo promotions).
type stackEntry struct {
	level  int
	digest [leafhash.Size]byte
}

// stack is the O(log T) pending-right-siblings structure from spec 4.3.
// Levels are always strictly decreasing from index 0 (oldest) to the last
// entry (newest) -- the classic binary-counter invariant -- so the final
// fold never needs to consult levels again.
type stack struct {
	entries []stackEntry
}

func (s *stack) push(leaf [leafhash.Size]byte) {
	level := 0
	digest := leaf
	for n := len(s.entries); n > 0 && s.entries[n-1].level == level; n = len(s.entries) {
		top := s.entries[n-1]
		s.entries = s.entries[:n-1]
		digest = CombineParents(top.digest, digest)
		level++
	}
	s.entries = append(s.entries, stackEntry{level: level, digest: digest})
}

// finalize folds the stack left-to-right with no padding and no duplication,
// i.e. a pure left fold of the peaks from oldest/leftmost to newest.
func (s *stack) finalize() [leafhash.Size]byte {
	acc := s.entries[0].digest
	for _, e := range s.entries[1:] {
		acc = CombineParents(acc, e.digest)
	}
	return acc
}

// StreamCommit computes a Manifest from it without ever materializing the
// full block sequence: O(log T) live stack entries plus the previous block
// (spec component C4).
func StreamCommit(it block.Iterator) (*Manifest, error) {
	var (
		st      stack
		prev    *block.BlockSummary
		nLeaves uint32
	)
	for {
		b, err := it.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, sezkperr.Wrap(sezkperr.KindIO, "reading block stream", err)
		}
		if err := b.ValidateShape(); err != nil {
			return nil, err
		}
		if prev != nil {
			if err := block.ValidateAdjacent(prev, b); err != nil {
				return nil, err
			}
		}
		st.push(leafhash.Hash(b))
		prev = b
		nLeaves++
	}
	if nLeaves == 0 {
		return nil, sezkperr.New(sezkperr.KindLeafCountMismatch, "cannot commit an empty block stream")
	}
	return &Manifest{Version: ManifestVersion, Root: st.finalize(), NLeaves: nLeaves}, nil
}

// StreamVerify recomputes the streaming root over it and asserts equality
// with manifest, never materializing the full block sequence.
func StreamVerify(it block.Iterator, manifest *Manifest) error {
	if manifest.Version != ManifestVersion {
		return sezkperr.New(sezkperr.KindSchemaVersion,
			fmt.Sprintf("unrecognized manifest version %d", manifest.Version))
	}
	got, err := StreamCommit(it)
	if err != nil {
		return err
	}
	if got.NLeaves != manifest.NLeaves {
		return sezkperr.New(sezkperr.KindLeafCountMismatch,
			fmt.Sprintf("got %d blocks, manifest declares %d", got.NLeaves, manifest.NLeaves))
	}
	if got.Root != manifest.Root {
		return sezkperr.Wrap(sezkperr.KindManifestMismatch, "root mismatch", sezkperr.ErrManifestMismatch)
	}
	return nil
}
