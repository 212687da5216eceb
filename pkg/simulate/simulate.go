// Package simulate produces a synthetic, boundary-consistent block stream
// parameterized by (t, b, tau), standing in for the out-of-scope RV-like VM
// simulator (spec section 1 Non-goals) so the `simulate` CLI verb (spec
// section 6) has something concrete to emit and round-trip through
// commit/prove/verify.
package simulate

import (
	"fmt"

	"github.com/sezkp/sezkp/pkg/block"
	"github.com/sezkp/sezkp/pkg/sezkperr"
)

// Params configures the synthetic trace: T total steps, B steps per block,
// and Tau work tapes.
type Params struct {
	T   uint64
	B   uint64
	Tau uint16
}

// Blocks generates a boundary-consistent BlockSummary sequence covering
// exactly p.T steps in blocks of p.B steps each (the final block may be
// shorter). Control state and tape heads walk forward deterministically as
// fixed functions of the step index (there is no random seed), so that
// repeated calls with the same Params produce
// byte-identical output (spec 8: "commit is deterministic").
func Blocks(p Params) ([]*block.BlockSummary, error) {
	if p.T == 0 {
		return nil, sezkperr.New(sezkperr.KindInternal, "simulate: t must be > 0")
	}
	if p.B == 0 {
		return nil, sezkperr.New(sezkperr.KindInternal, "simulate: b must be > 0")
	}

	nBlocks := (p.T + p.B - 1) / p.B
	blocks := make([]*block.BlockSummary, 0, nBlocks)

	windows := make([]block.Window, p.Tau)
	for i := range windows {
		windows[i] = block.Window{Left: 0, Right: int64(p.T)}
	}
	headIn := make([]uint32, p.Tau)
	headOut := make([]uint32, p.Tau)

	var ctrl uint16
	var inHead int64
	var stepCursor uint64

	for id := uint64(0); stepCursor < p.T; id++ {
		stepLo := stepCursor
		stepHi := stepLo + p.B - 1
		if stepHi >= p.T {
			stepHi = p.T - 1
		}
		nSteps := stepHi - stepLo + 1

		ctrlIn := ctrl
		inHeadIn := inHead
		headInOffsets := append([]uint32(nil), headOut...)

		steps := make([]block.Step, nSteps)
		for i := range steps {
			stepCtrlIn := ctrl
			ctrl = nextCtrl(ctrl)
			tapeOps := make([]block.TapeOp, p.Tau)
			for tau := range tapeOps {
				mv := stepDirection(stepLo + uint64(i))
				tapeOps[tau] = block.TapeOp{Move: mv}
				headOut[tau] = advanceHead(headOut[tau], mv)
			}
			mv := stepDirection(stepLo + uint64(i))
			inHead = int64(advanceHead(uint32(inHead), mv))
			steps[i] = block.Step{
				CtrlIn:  stepCtrlIn,
				CtrlOut: ctrl,
				InputMv: mv,
				TapeOps: tapeOps,
			}
		}

		headOutOffsets := append([]uint32(nil), headOut...)

		blocks = append(blocks, &block.BlockSummary{
			Version:        1,
			BlockID:        uint32(id),
			StepLo:         stepLo,
			StepHi:         stepHi,
			CtrlIn:         ctrlIn,
			CtrlOut:        ctrl,
			InHeadIn:       inHeadIn,
			InHeadOut:      inHead,
			Windows:        windows,
			HeadInOffsets:  headInOffsets,
			HeadOutOffsets: headOutOffsets,
			MovementLog:    block.MovementLog{Steps: steps},
		})

		stepCursor = stepHi + 1
	}

	if uint64(len(blocks)) != nBlocks {
		return nil, sezkperr.New(sezkperr.KindInternal, fmt.Sprintf("simulate: produced %d blocks, expected %d", len(blocks), nBlocks))
	}
	return blocks, nil
}

// nextCtrl deterministically advances the toy control state: a 3-state
// round-robin, just enough to exercise ctrl_in/ctrl_out continuity.
func nextCtrl(c uint16) uint16 { return (c + 1) % 3 }

// stepDirection derives a deterministic {-1,0,1} head movement from the
// step index, cycling so that heads drift but stay bounded.
func stepDirection(step uint64) int8 {
	switch step % 3 {
	case 0:
		return 1
	case 1:
		return 0
	default:
		return -1
	}
}

func advanceHead(offset uint32, mv int8) uint32 {
	switch {
	case mv > 0:
		return offset + 1
	case mv < 0 && offset > 0:
		return offset - 1
	default:
		return offset
	}
}
