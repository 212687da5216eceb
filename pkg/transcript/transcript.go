// Package transcript implements the domain-separated Fiat-Shamir transcript
// (spec section 4.4, component C5) used by the fold backend's gadgets. It is
// built on BLAKE3: absorption and MACs use the unkeyed hash, and only
// Challenge uses keyed mode (keyed on the current MAC); BLAKE3's derive-key
// mode is not used. It follows the teacher's
// pattern of passing small, explicit state structs rather than reaching for
// a global hasher.
package transcript

import (
	"encoding/binary"

	"lukechampine.com/blake3"
)

// MacSize is the length in bytes of a transcript MAC snapshot.
const MacSize = 32

// Transcript is a running, domain-separated absorb stream. Zero value is not
// usable; construct with New.
type Transcript struct {
	h *blake3.Hasher
}

// New starts a fresh transcript under the given ASCII domain label. Labels
// are stable, per-gadget-context constants (spec 4.4: "Domain separation
// labels are stable ASCII constants, fixed per gadget context").
func New(domain string) *Transcript {
	t := &Transcript{h: blake3.New(MacSize, nil)}
	t.absorbRaw("sezkp/domain", []byte(domain))
	return t
}

// absorbRaw writes a length-tagged label followed by a length-tagged value,
// so that no pair of (label, value) absorptions can collide with another.
func (t *Transcript) absorbRaw(label string, data []byte) {
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(label)))
	t.h.Write(lenBuf[:])
	t.h.Write([]byte(label))
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(data)))
	t.h.Write(lenBuf[:])
	t.h.Write(data)
}

// Absorb appends a length-tagged, labeled segment to the transcript.
func (t *Transcript) Absorb(label string, data []byte) {
	t.absorbRaw(label, data)
}

// AbsorbUint64 is a convenience wrapper for absorbing a little-endian u64,
// used for indices such as (level, index) labels under parallel scheduling.
func (t *Transcript) AbsorbUint64(label string, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	t.Absorb(label, buf[:])
}

// Mac finalizes a non-forwarding snapshot of the current transcript state:
// calling Mac does not prevent further Absorb calls, and the returned value
// depends only on everything absorbed so far.
func (t *Transcript) Mac() [MacSize]byte {
	var out [MacSize]byte
	copy(out[:], t.h.Sum(nil))
	return out
}

// Challenge deterministically extracts n bytes, keyed on the transcript's
// current MAC and labeled so that challenges for distinct purposes never
// collide even when drawn from the same transcript state.
func (t *Transcript) Challenge(label string, n int) []byte {
	mac := t.Mac()
	x := blake3.New(n, mac[:])
	x.Write([]byte(label))
	return x.Sum(nil)
}

// Clone returns an independent copy of t that shares no further state: spec
// 4.4 requires that a transcript is "never reused across gadgets; it is
// cloned-with-prefix instead." The clone absorbs an extra prefix label so
// that forks taken at the same point diverge deterministically.
func (t *Transcript) Clone(prefix string) *Transcript {
	hCopy := *t.h
	out := &Transcript{h: &hCopy}
	out.absorbRaw("sezkp/fork", []byte(prefix))
	return out
}
