package fold

import (
	"fmt"

	"github.com/sezkp/sezkp/pkg/sezkperr"
	"github.com/sezkp/sezkp/pkg/transcript"
)

// transcriptDomainFold is the stable ASCII domain label for fold gadgets.
const transcriptDomainFold = "sezkp/gadget/fold/v1"

// FoldProof combines two same-level child proofs into one parent proof
// (spec 4.6, component C7). Left and Right hold the two children. A
// minram-mode scheduler does not clear them: it replaces the whole fold with
// an Endpoint and keys its sidecar record by (level, index). HasSidecarIndex
// and SidecarIndex are not set by the scheduler or read by pkg/ioformat.
type FoldProof struct {
	CParent   Digest32
	PiCommit  Digest32
	Boundary0 Digest32 // boundary_in, inherited from the left child
	Boundary1 Digest32 // boundary_out, inherited from the right child
	ARE       []byte
	Mac       Digest32

	Left, Right Node

	HasSidecarIndex bool
	SidecarIndex    uint64
}

var _ Node = (*FoldProof)(nil)

func (p *FoldProof) Kind() Kind            { return KindFold }
func (p *FoldProof) Commitment() Digest32  { return p.CParent }
func (p *FoldProof) BoundaryIn() Digest32  { return p.Boundary0 }
func (p *FoldProof) BoundaryOut() Digest32 { return p.Boundary1 }
func (p *FoldProof) MAC() Digest32         { return p.Mac }

// deriveARE computes the opaque algebraic-replay-equivalence summary for a
// fold. Its contents are a black box to the rest of the pipeline (spec 9);
// only its binding into pi-commit and the transcript is load-bearing.
func deriveARE(level, index int, left, right Node) []byte {
	t := transcript.New("sezkp/are/v1")
	t.AbsorbUint64("level", uint64(level))
	t.AbsorbUint64("index", uint64(index))
	lc, rc := left.Commitment(), right.Commitment()
	lm, rm := left.MAC(), right.MAC()
	t.Absorb("left_c", lc[:])
	t.Absorb("right_c", rc[:])
	t.Absorb("left_mac", lm[:])
	t.Absorb("right_mac", rm[:])
	return t.Challenge("are_bytes", 32)
}

// MakeFold folds left and right -- which may each be a LeafProof, FoldProof,
// WrapProof, or minram Endpoint, all same-level siblings -- into one parent
// FoldProof. level and index identify this fold's position in the
// reduction tree, both for the offending-identifier in adjacency failures
// and for parallel-safe transcript labeling (spec 9).
//
// Checks performed, per spec 4.6:
//  1. Adjacency: left.BoundaryOut() == right.BoundaryIn().
//  2. Child MACs: by construction, left and right were themselves produced
//     (or recomputed, on the verify path) by MakeLeaf/MakeFold/MakeWrap, so
//     their MAC already reflects a verified sub-transcript; this gadget
//     does not re-derive them from scratch.
//  3. The parent commitment uses the identical combiner as pkg/merkle.
func MakeFold(level, index int, left, right Node) (*FoldProof, error) {
	if left.BoundaryOut() != right.BoundaryIn() {
		return nil, sezkperr.New(sezkperr.KindBoundaryMismatch, "fold adjacency failure").
			WithIdent(fmt.Sprintf("level=%d index=%d", level, index))
	}

	cParent := combineCommitments(left.Commitment(), right.Commitment())
	are := deriveARE(level, index, left, right)
	bIn, bOut := left.BoundaryIn(), right.BoundaryOut()
	pc := piCommit(cParent[:], bIn[:], bOut[:], are)

	t := transcript.New(transcriptDomainFold)
	t.AbsorbUint64("level", uint64(level))
	t.AbsorbUint64("index", uint64(index))
	t.Absorb("c_parent", cParent[:])
	t.Absorb("pi_commit", pc[:])
	t.Absorb("boundary_in", bIn[:])
	t.Absorb("boundary_out", bOut[:])
	t.Absorb("are_bytes", are)
	lm, rm := left.MAC(), right.MAC()
	t.Absorb("left_mac", lm[:])
	t.Absorb("right_mac", rm[:])

	return &FoldProof{
		CParent:   cParent,
		PiCommit:  pc,
		Boundary0: bIn,
		Boundary1: bOut,
		ARE:       are,
		Mac:       t.Mac(),
		Left:      left,
		Right:     right,
	}, nil
}

// Endpoint carries only the small (C, boundary_in, boundary_out, pi_commit,
// MAC) summary of a node whose full body has been elided in minram mode (spec
// 4.8). It satisfies Node so folding and wrapping can continue without the
// discarded children.
type Endpoint struct {
	OrigKind  Kind
	C         Digest32
	PiCommit  Digest32
	Boundary0 Digest32
	Boundary1 Digest32
	Mac       Digest32
}

var _ Node = (*Endpoint)(nil)

func (e *Endpoint) Kind() Kind            { return KindEndpoint }
func (e *Endpoint) Commitment() Digest32  { return e.C }
func (e *Endpoint) BoundaryIn() Digest32  { return e.Boundary0 }
func (e *Endpoint) BoundaryOut() Digest32 { return e.Boundary1 }
func (e *Endpoint) MAC() Digest32         { return e.Mac }

// ToEndpoint strips a node down to its small endpoint summary.
func ToEndpoint(n Node) *Endpoint {
	if e, ok := n.(*Endpoint); ok {
		return e
	}
	var pc Digest32
	switch v := n.(type) {
	case *LeafProof:
		pc = v.PiCommit
	case *FoldProof:
		pc = v.PiCommit
	case *WrapProof:
		pc = v.PiCommit
	}
	return &Endpoint{
		OrigKind:  n.Kind(),
		C:         n.Commitment(),
		PiCommit:  pc,
		Boundary0: n.BoundaryIn(),
		Boundary1: n.BoundaryOut(),
		Mac:       n.MAC(),
	}
}
