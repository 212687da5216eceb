// Package fold implements the Leaf, Fold, and Wrap gadgets of the folding
// proof backend (spec section 4.5-4.7, components C6-C8). Every gadget here
// is a deterministic, publicly-recomputable function of the block stream:
// as spec section 1 notes, this is a reference pipeline, not a hiding SNARK,
// so verification recomputes rather than checking a zero-knowledge relation.
package fold

import (
	"encoding/binary"

	"lukechampine.com/blake3"

	"github.com/sezkp/sezkp/pkg/block"
	"github.com/sezkp/sezkp/pkg/merkle"
)

// Kind tags which gadget produced a Node (spec 9: "tagged sum with explicit
// matching, not inheritance").
type Kind uint8

const (
	KindLeaf Kind = iota + 1
	KindFold
	KindWrap
	// KindEndpoint marks a minram-mode stub that carries only the small
	// (C, boundary_in, boundary_out, pi_commit, MAC) endpoint of a node whose
	// full body was elided to the sidecar (spec 4.8).
	KindEndpoint
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindFold:
		return "fold"
	case KindWrap:
		return "wrap"
	case KindEndpoint:
		return "endpoint"
	default:
		return "unknown"
	}
}

// Digest32 is the common digest width used throughout the fold backend.
type Digest32 = [32]byte

// Node is the tagged-sum interface every proof variant implements.
type Node interface {
	Kind() Kind
	Commitment() Digest32
	BoundaryIn() Digest32
	BoundaryOut() Digest32
	MAC() Digest32
}

// Side identifies which end of a block a boundary digest snapshots.
type Side int

const (
	SideIn Side = iota
	SideOut
)

// BoundaryDigest hashes the block's (ctrl, in_head, per-tape heads/windows)
// snapshot at the given end (spec 4.5: "Boundary digests are BLAKE3 over
// the block's ... snapshots at the given end. They must match across
// adjacent blocks.").
func BoundaryDigest(b *block.BlockSummary, side Side) Digest32 {
	h := blake3.New(32, nil)
	var scratch [8]byte
	putU16 := func(v uint16) { binary.LittleEndian.PutUint16(scratch[:2], v); h.Write(scratch[:2]) }
	putI64 := func(v int64) { binary.LittleEndian.PutUint64(scratch[:8], uint64(v)); h.Write(scratch[:8]) }
	putU32 := func(v uint32) { binary.LittleEndian.PutUint32(scratch[:4], v); h.Write(scratch[:4]) }

	switch side {
	case SideIn:
		putU16(b.CtrlIn)
		putI64(b.InHeadIn)
		for _, off := range b.HeadInOffsets {
			putU32(off)
		}
	case SideOut:
		putU16(b.CtrlOut)
		putI64(b.InHeadOut)
		for _, off := range b.HeadOutOffsets {
			putU32(off)
		}
	}
	// Windows bound both ends of the block; include them on both sides so
	// that the boundary digest also pins the per-tape extent in force at
	// that boundary.
	for _, w := range b.Windows {
		putI64(w.Left)
		putI64(w.Right)
	}
	var out Digest32
	copy(out[:], h.Sum(nil))
	return out
}

// microProof derives an opaque, deterministic per-block witness digest. Its
// exact contents are a black box to the rest of the pipeline (spec 9 open
// questions: "exact byte layout of pi-commit and ARE_bytes is opaque in
// v1") -- only its binding into the pi-commit and the transcript matters.
func microProof(b *block.BlockSummary) []byte {
	h := blake3.New(32, nil)
	var scratch [8]byte
	binary.LittleEndian.PutUint64(scratch[:], uint64(len(b.MovementLog.Steps)))
	h.Write(scratch[:])
	binary.LittleEndian.PutUint64(scratch[:], uint64(b.Tau()))
	h.Write(scratch[:])
	return h.Sum(nil)
}

// piCommit binds a list of opaque byte strings into a single 32-byte
// commitment, length-tagging each to avoid ambiguity.
func piCommit(parts ...[]byte) Digest32 {
	h := blake3.New(32, nil)
	var scratch [8]byte
	for _, p := range parts {
		binary.LittleEndian.PutUint64(scratch[:], uint64(len(p)))
		h.Write(scratch[:])
		h.Write(p)
	}
	var out Digest32
	copy(out[:], h.Sum(nil))
	return out
}

// combineCommitments is the parent combiner shared byte-for-byte with the
// Merkle module (spec 4.6 item 3: "identical to the Merkle parent
// combiner").
func combineCommitments(left, right Digest32) Digest32 {
	return merkle.CombineParents(left, right)
}
