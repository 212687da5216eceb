// Package block defines the canonical BlockSummary / MovementLog data model
// (spec section 3) that the leaf hasher, Merkle commitment, and fold gadgets
// all share byte-for-byte.
package block

import (
	"fmt"

	"github.com/sezkp/sezkp/pkg/sezkperr"
)

// Window is a per-work-tape exact bounded window, inclusive on both ends.
type Window struct {
	Left  int64 `cbor:"1,keyasint" json:"left"`
	Right int64 `cbor:"2,keyasint" json:"right"`
}

// TapeOp is a single tape's action during one time tick. Write is nil when
// the tick performs no write to that tape.
type TapeOp struct {
	Write *uint16 `cbor:"1,keyasint,omitempty" json:"write,omitempty"`
	Move  int8    `cbor:"2,keyasint" json:"mv"`
}

// Step is one time-tick of the movement log: the control state transition
// plus the read-only input-tape head movement and one TapeOp per work tape.
type Step struct {
	CtrlIn   uint16   `cbor:"1,keyasint" json:"ctrl_in"`
	CtrlOut  uint16   `cbor:"2,keyasint" json:"ctrl_out"`
	InputMv  int8     `cbor:"3,keyasint" json:"input_mv"`
	TapeOps  []TapeOp `cbor:"4,keyasint" json:"tape_ops"`
}

// MovementLog is the time-ordered sequence of Steps within a block. Only its
// length participates in the v1 leaf hash (spec 4.1 item 6); the full log is
// still carried for tooling and future schema versions.
type MovementLog struct {
	Steps []Step `cbor:"1,keyasint" json:"steps"`
}

// BlockSummary is the canonical manifest leaf (spec section 3). Field order
// here matches the leaf-hash byte layout in spec 4.1; do not reorder without
// bumping Version.
type BlockSummary struct {
	Version   uint16 `cbor:"1,keyasint" json:"version"`
	BlockID   uint32 `cbor:"2,keyasint" json:"block_id"`
	StepLo    uint64 `cbor:"3,keyasint" json:"step_lo"`
	StepHi    uint64 `cbor:"4,keyasint" json:"step_hi"`
	CtrlIn    uint16 `cbor:"5,keyasint" json:"ctrl_in"`
	CtrlOut   uint16 `cbor:"6,keyasint" json:"ctrl_out"`
	InHeadIn  int64  `cbor:"7,keyasint" json:"in_head_in"`
	InHeadOut int64  `cbor:"8,keyasint" json:"in_head_out"`

	Windows []Window `cbor:"9,keyasint" json:"windows"`

	HeadInOffsets  []uint32 `cbor:"10,keyasint" json:"head_in_offsets"`
	HeadOutOffsets []uint32 `cbor:"11,keyasint" json:"head_out_offsets"`

	MovementLog MovementLog `cbor:"12,keyasint" json:"movement_log"`
}

// Tau returns the number of work tapes this block carries, derived from the
// window count (spec: "length = tau" for windows, head_in/out offsets).
func (b *BlockSummary) Tau() int { return len(b.Windows) }

// ValidateShape checks the block's internal invariants (tau consistency,
// step_lo <= step_hi, and every movement in {-1,0,1}) without reference to
// neighboring blocks.
func (b *BlockSummary) ValidateShape() error {
	tau := len(b.Windows)
	if len(b.HeadInOffsets) != tau || len(b.HeadOutOffsets) != tau {
		return sezkperr.New(sezkperr.KindBoundaryMismatch,
			fmt.Sprintf("tau mismatch: windows=%d head_in=%d head_out=%d", tau, len(b.HeadInOffsets), len(b.HeadOutOffsets))).
			WithIdent(fmt.Sprintf("block_id=%d", b.BlockID))
	}
	if b.StepHi < b.StepLo {
		return sezkperr.New(sezkperr.KindBoundaryMismatch, "step_hi precedes step_lo").
			WithIdent(fmt.Sprintf("block_id=%d", b.BlockID))
	}
	for i, op := range b.MovementLog.Steps {
		if op.InputMv < -1 || op.InputMv > 1 {
			return sezkperr.New(sezkperr.KindBoundaryMismatch,
				fmt.Sprintf("step %d: input_mv out of {-1,0,1}", i)).
				WithIdent(fmt.Sprintf("block_id=%d", b.BlockID))
		}
		if len(op.TapeOps) != tau {
			return sezkperr.New(sezkperr.KindBoundaryMismatch,
				fmt.Sprintf("step %d: tape op count %d != tau %d", i, len(op.TapeOps), tau)).
				WithIdent(fmt.Sprintf("block_id=%d", b.BlockID))
		}
		for j, top := range op.TapeOps {
			if top.Move < -1 || top.Move > 1 {
				return sezkperr.New(sezkperr.KindBoundaryMismatch,
					fmt.Sprintf("step %d tape %d: mv out of {-1,0,1}", i, j)).
					WithIdent(fmt.Sprintf("block_id=%d", b.BlockID))
			}
		}
	}
	return nil
}

// ValidateAdjacent checks the boundary-continuity invariants between a block
// and its immediate successor (spec section 3: "Invariants").
func ValidateAdjacent(prev, next *BlockSummary) error {
	if next.BlockID != prev.BlockID+1 {
		return sezkperr.New(sezkperr.KindBoundaryMismatch,
			fmt.Sprintf("block_id not dense: %d then %d", prev.BlockID, next.BlockID)).
			WithIdent(fmt.Sprintf("block_id=%d", next.BlockID))
	}
	if next.StepLo != prev.StepHi+1 {
		return sezkperr.New(sezkperr.KindBoundaryMismatch,
			fmt.Sprintf("step_range gap: prev.hi=%d next.lo=%d", prev.StepHi, next.StepLo)).
			WithIdent(fmt.Sprintf("block_id=%d", next.BlockID))
	}
	if next.CtrlIn != prev.CtrlOut {
		return sezkperr.New(sezkperr.KindBoundaryMismatch,
			fmt.Sprintf("ctrl discontinuity: prev.out=%d next.in=%d", prev.CtrlOut, next.CtrlIn)).
			WithIdent(fmt.Sprintf("block_id=%d", next.BlockID))
	}
	if next.InHeadIn != prev.InHeadOut {
		return sezkperr.New(sezkperr.KindBoundaryMismatch,
			fmt.Sprintf("in_head discontinuity: prev.out=%d next.in=%d", prev.InHeadOut, next.InHeadIn)).
			WithIdent(fmt.Sprintf("block_id=%d", next.BlockID))
	}
	if len(prev.Windows) != len(next.Windows) {
		return sezkperr.New(sezkperr.KindBoundaryMismatch, "tau changed across blocks").
			WithIdent(fmt.Sprintf("block_id=%d", next.BlockID))
	}
	return nil
}
