// Package leafhash computes the canonical BLAKE3 digest of a BlockSummary
// (spec section 4.1, component C2). The byte layout here is a contract: any
// deviation breaks compatibility between the Merkle commitment and the leaf
// gadget that both depend on this package.
package leafhash

import (
	"encoding/binary"

	"lukechampine.com/blake3"

	"github.com/sezkp/sezkp/pkg/block"
)

// Size is the digest length in bytes.
const Size = 32

// Digest is a 32-byte leaf hash, C_leaf in the spec.
type Digest [Size]byte

// Hash writes b's fields to a BLAKE3 sink in exactly the order specified by
// spec 4.1: all integers little-endian, no framing, no domain separator, no
// length prefixes except where explicitly noted.
func Hash(b *block.BlockSummary) Digest {
	h := blake3.New(Size, nil)

	var scratch [8]byte

	putU16 := func(v uint16) {
		binary.LittleEndian.PutUint16(scratch[:2], v)
		h.Write(scratch[:2])
	}
	putU32 := func(v uint32) {
		binary.LittleEndian.PutUint32(scratch[:4], v)
		h.Write(scratch[:4])
	}
	putU64 := func(v uint64) {
		binary.LittleEndian.PutUint64(scratch[:8], v)
		h.Write(scratch[:8])
	}
	putI64 := func(v int64) { putU64(uint64(v)) }

	// 1. version, block_id, step_lo, step_hi
	putU16(b.Version)
	putU32(b.BlockID)
	putU64(b.StepLo)
	putU64(b.StepHi)

	// 2. ctrl_in, ctrl_out, in_head_in, in_head_out
	putU16(b.CtrlIn)
	putU16(b.CtrlOut)
	putI64(b.InHeadIn)
	putI64(b.InHeadOut)

	// 3. windows.len(), then each (left, right)
	putU64(uint64(len(b.Windows)))
	for _, w := range b.Windows {
		putI64(w.Left)
		putI64(w.Right)
	}

	// 4. head_in_offsets, no length prefix (tau implied by framing)
	for _, off := range b.HeadInOffsets {
		putU32(off)
	}

	// 5. head_out_offsets
	for _, off := range b.HeadOutOffsets {
		putU32(off)
	}

	// 6. movement_log.steps.len() only, in v1
	putU64(uint64(len(b.MovementLog.Steps)))

	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}
