package fold

import "github.com/sezkp/sezkp/pkg/transcript"

// transcriptDomainWrap is the stable ASCII domain label for wrap gadgets.
const transcriptDomainWrap = "sezkp/gadget/wrap/v1"

// WrapProof rebinds (C, pi_commit) from an underlying fold to reduce
// transcript depth (spec 4.7, component C8). Per the open question in
// spec 9, a non-zero wrap cadence is transcript-only: WrapProof.Commitment
// equals the wrapped node's commitment, never a different value, so the
// top-level commitment identity is always preserved.
type WrapProof struct {
	C         Digest32
	PiCommit  Digest32
	Boundary0 Digest32
	Boundary1 Digest32
	Mac       Digest32

	Wrapped Node
}

var _ Node = (*WrapProof)(nil)

func (p *WrapProof) Kind() Kind            { return KindWrap }
func (p *WrapProof) Commitment() Digest32  { return p.C }
func (p *WrapProof) BoundaryIn() Digest32  { return p.Boundary0 }
func (p *WrapProof) BoundaryOut() Digest32 { return p.Boundary1 }
func (p *WrapProof) MAC() Digest32         { return p.Mac }

// MakeWrap wraps n, which must be the current top-of-tree (a FoldProof,
// LeafProof, or Endpoint), at wrap index wrapIdx (the 0-based count of
// wraps emitted so far).
func MakeWrap(wrapIdx int, n Node) *WrapProof {
	c := n.Commitment()
	bIn, bOut := n.BoundaryIn(), n.BoundaryOut()
	pc := piCommit(c[:], bIn[:], bOut[:])

	t := transcript.New(transcriptDomainWrap)
	t.AbsorbUint64("wrap_index", uint64(wrapIdx))
	t.Absorb("c", c[:])
	t.Absorb("pi_commit", pc[:])
	nm := n.MAC()
	t.Absorb("wrapped_mac", nm[:])

	return &WrapProof{
		C:         c,
		PiCommit:  pc,
		Boundary0: bIn,
		Boundary1: bOut,
		Mac:       t.Mac(),
		Wrapped:   n,
	}
}
