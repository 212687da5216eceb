package fold

import (
	"github.com/sezkp/sezkp/pkg/block"
	"github.com/sezkp/sezkp/pkg/leafhash"
	"github.com/sezkp/sezkp/pkg/transcript"
)

// transcriptDomainLeaf is the stable ASCII domain label for leaf gadgets
// (spec 4.4: "stable ASCII constants, fixed per gadget context").
const transcriptDomainLeaf = "sezkp/gadget/leaf/v1"

// LeafProof binds (C_leaf, pi-commit, boundary digests, micro-proof) for a
// single block (spec 4.5, component C6).
type LeafProof struct {
	CLeaf     Digest32
	PiCommit  Digest32
	Boundary0 Digest32 // boundary_in
	Boundary1 Digest32 // boundary_out
	Mac       Digest32
}

var _ Node = (*LeafProof)(nil)

func (p *LeafProof) Kind() Kind           { return KindLeaf }
func (p *LeafProof) Commitment() Digest32 { return p.CLeaf }
func (p *LeafProof) BoundaryIn() Digest32 { return p.Boundary0 }
func (p *LeafProof) BoundaryOut() Digest32 { return p.Boundary1 }
func (p *LeafProof) MAC() Digest32        { return p.Mac }

// MakeLeaf produces the leaf proof for a single block (spec 4.5). It is
// used both by the prover (to build a fresh proof) and by the verifier (to
// recompute the expected proof from the same block and compare).
func MakeLeaf(b *block.BlockSummary) *LeafProof {
	cLeaf := Digest32(leafhash.Hash(b))
	bIn := BoundaryDigest(b, SideIn)
	bOut := BoundaryDigest(b, SideOut)
	micro := microProof(b)
	pc := piCommit(cLeaf[:], bIn[:], bOut[:], micro)

	t := transcript.New(transcriptDomainLeaf)
	t.Absorb("c_leaf", cLeaf[:])
	t.Absorb("pi_commit", pc[:])
	t.Absorb("boundary_in", bIn[:])
	t.Absorb("boundary_out", bOut[:])

	return &LeafProof{
		CLeaf:     cLeaf,
		PiCommit:  pc,
		Boundary0: bIn,
		Boundary1: bOut,
		Mac:       t.Mac(),
	}
}

// VerifyLeaf recomputes the leaf proof for b and checks it matches p.
func VerifyLeaf(b *block.BlockSummary, p *LeafProof) bool {
	want := MakeLeaf(b)
	return *want == *p
}
