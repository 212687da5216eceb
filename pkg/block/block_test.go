package block

import (
	"testing"

	"github.com/sezkp/sezkp/pkg/sezkperr"
)

func validBlock(id uint32) *BlockSummary {
	return &BlockSummary{
		Version:        1,
		BlockID:        id,
		StepLo:         uint64(id),
		StepHi:         uint64(id),
		Windows:        []Window{{Left: 0, Right: 10}},
		HeadInOffsets:  []uint32{0},
		HeadOutOffsets: []uint32{0},
		MovementLog:    MovementLog{Steps: []Step{{TapeOps: []TapeOp{{Move: 1}}}}},
	}
}

func TestValidateShapeAcceptsWellFormedBlock(t *testing.T) {
	if err := validBlock(0).ValidateShape(); err != nil {
		t.Fatalf("ValidateShape: %v", err)
	}
}

func TestValidateShapeRejectsTauMismatch(t *testing.T) {
	b := validBlock(0)
	b.HeadOutOffsets = []uint32{0, 1}
	if err := b.ValidateShape(); sezkperr.KindOf(err) != sezkperr.KindBoundaryMismatch {
		t.Fatalf("want BoundaryMismatch, got %v", err)
	}
}

func TestValidateShapeRejectsInvertedStepRange(t *testing.T) {
	b := validBlock(0)
	b.StepLo, b.StepHi = 5, 4
	if err := b.ValidateShape(); sezkperr.KindOf(err) != sezkperr.KindBoundaryMismatch {
		t.Fatalf("want BoundaryMismatch, got %v", err)
	}
}

func TestValidateShapeRejectsOutOfRangeMovement(t *testing.T) {
	b := validBlock(0)
	b.MovementLog.Steps[0].InputMv = 2
	if err := b.ValidateShape(); sezkperr.KindOf(err) != sezkperr.KindBoundaryMismatch {
		t.Fatalf("want BoundaryMismatch for input_mv, got %v", err)
	}

	b = validBlock(0)
	b.MovementLog.Steps[0].TapeOps[0].Move = -2
	if err := b.ValidateShape(); sezkperr.KindOf(err) != sezkperr.KindBoundaryMismatch {
		t.Fatalf("want BoundaryMismatch for tape move, got %v", err)
	}
}

func TestValidateShapeRejectsWrongTapeOpCount(t *testing.T) {
	b := validBlock(0)
	b.MovementLog.Steps[0].TapeOps = append(b.MovementLog.Steps[0].TapeOps, TapeOp{})
	if err := b.ValidateShape(); sezkperr.KindOf(err) != sezkperr.KindBoundaryMismatch {
		t.Fatalf("want BoundaryMismatch, got %v", err)
	}
}

func TestValidateAdjacentAcceptsContinuousPair(t *testing.T) {
	prev := validBlock(0)
	prev.StepHi = 3
	prev.CtrlOut = 5
	prev.InHeadOut = 2

	next := validBlock(1)
	next.StepLo = 4
	next.CtrlIn = 5
	next.InHeadIn = 2

	if err := ValidateAdjacent(prev, next); err != nil {
		t.Fatalf("ValidateAdjacent: %v", err)
	}
}

func TestValidateAdjacentRejectsGapsAndDiscontinuities(t *testing.T) {
	base := func() (*BlockSummary, *BlockSummary) {
		prev := validBlock(0)
		prev.StepHi = 3
		next := validBlock(1)
		next.StepLo = 4
		return prev, next
	}

	t.Run("block_id gap", func(t *testing.T) {
		prev, next := base()
		next.BlockID = 5
		if err := ValidateAdjacent(prev, next); sezkperr.KindOf(err) != sezkperr.KindBoundaryMismatch {
			t.Fatalf("want BoundaryMismatch, got %v", err)
		}
	})

	t.Run("step gap", func(t *testing.T) {
		prev, next := base()
		next.StepLo = 9
		if err := ValidateAdjacent(prev, next); sezkperr.KindOf(err) != sezkperr.KindBoundaryMismatch {
			t.Fatalf("want BoundaryMismatch, got %v", err)
		}
	})

	t.Run("ctrl discontinuity", func(t *testing.T) {
		prev, next := base()
		prev.CtrlOut = 1
		next.CtrlIn = 2
		if err := ValidateAdjacent(prev, next); sezkperr.KindOf(err) != sezkperr.KindBoundaryMismatch {
			t.Fatalf("want BoundaryMismatch, got %v", err)
		}
	})

	t.Run("in_head discontinuity", func(t *testing.T) {
		prev, next := base()
		prev.InHeadOut = 1
		next.InHeadIn = 2
		if err := ValidateAdjacent(prev, next); sezkperr.KindOf(err) != sezkperr.KindBoundaryMismatch {
			t.Fatalf("want BoundaryMismatch, got %v", err)
		}
	})

	t.Run("tau change", func(t *testing.T) {
		prev, next := base()
		next.Windows = append(next.Windows, Window{Left: 0, Right: 1})
		next.HeadInOffsets = append(next.HeadInOffsets, 0)
		next.HeadOutOffsets = append(next.HeadOutOffsets, 0)
		if err := ValidateAdjacent(prev, next); sezkperr.KindOf(err) != sezkperr.KindBoundaryMismatch {
			t.Fatalf("want BoundaryMismatch, got %v", err)
		}
	})
}

func TestTau(t *testing.T) {
	b := validBlock(0)
	if b.Tau() != 1 {
		t.Fatalf("Tau() = %d, want 1", b.Tau())
	}
}

func TestSliceIteratorExhausts(t *testing.T) {
	blocks := []*BlockSummary{validBlock(0), validBlock(1)}
	it := NewSliceIterator(blocks)
	for i := 0; i < 2; i++ {
		b, err := it.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if b.BlockID != uint32(i) {
			t.Fatalf("Next() returned block_id=%d, want %d", b.BlockID, i)
		}
	}
	if _, err := it.Next(); err == nil {
		t.Fatal("expected io.EOF after exhausting the iterator")
	}
}
