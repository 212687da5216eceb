package ioformat

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"

	"github.com/sezkp/sezkp/pkg/fold"
	"github.com/sezkp/sezkp/pkg/sezkperr"
)

// WireNode is the on-disk representation of a fold.Node tree (spec 6:
// "the top proof written as a single container"). Left/Right/Wrapped are
// nil when the original node was elided to the sidecar in minram mode or
// has no such child (a LeafProof).
type WireNode struct {
	Kind      uint8      `cbor:"1,keyasint" json:"kind"`
	C         [32]byte   `cbor:"2,keyasint" json:"c"`
	PiCommit  [32]byte   `cbor:"3,keyasint" json:"pi_commit"`
	Boundary0 [32]byte   `cbor:"4,keyasint" json:"boundary_in"`
	Boundary1 [32]byte   `cbor:"5,keyasint" json:"boundary_out"`
	Mac       [32]byte   `cbor:"6,keyasint" json:"mac"`
	ARE       []byte     `cbor:"7,keyasint,omitempty" json:"are_bytes,omitempty"`
	Left      *WireNode  `cbor:"8,keyasint,omitempty" json:"left,omitempty"`
	Right     *WireNode  `cbor:"9,keyasint,omitempty" json:"right,omitempty"`
	Wrapped   *WireNode  `cbor:"10,keyasint,omitempty" json:"wrapped,omitempty"`
	OrigKind  uint8      `cbor:"11,keyasint,omitempty" json:"orig_kind,omitempty"`
}

// FromNode converts a fold.Node tree to its wire representation.
func FromNode(n fold.Node) *WireNode {
	w := &WireNode{
		Kind:      uint8(n.Kind()),
		C:         n.Commitment(),
		Boundary0: n.BoundaryIn(),
		Boundary1: n.BoundaryOut(),
		Mac:       n.MAC(),
	}
	switch v := n.(type) {
	case *fold.LeafProof:
		w.PiCommit = v.PiCommit
	case *fold.FoldProof:
		w.PiCommit = v.PiCommit
		w.ARE = v.ARE
		if v.Left != nil {
			w.Left = FromNode(v.Left)
		}
		if v.Right != nil {
			w.Right = FromNode(v.Right)
		}
	case *fold.WrapProof:
		w.PiCommit = v.PiCommit
		if v.Wrapped != nil {
			w.Wrapped = FromNode(v.Wrapped)
		}
	case *fold.Endpoint:
		w.PiCommit = v.PiCommit
		w.OrigKind = uint8(v.OrigKind)
	}
	return w
}

// ToNode reconstructs a fold.Node tree from its wire representation.
func (w *WireNode) ToNode() (fold.Node, error) {
	switch fold.Kind(w.Kind) {
	case fold.KindLeaf:
		return &fold.LeafProof{
			CLeaf: w.C, PiCommit: w.PiCommit, Boundary0: w.Boundary0, Boundary1: w.Boundary1, Mac: w.Mac,
		}, nil
	case fold.KindFold:
		f := &fold.FoldProof{
			CParent: w.C, PiCommit: w.PiCommit, Boundary0: w.Boundary0, Boundary1: w.Boundary1, ARE: w.ARE, Mac: w.Mac,
		}
		if w.Left != nil {
			left, err := w.Left.ToNode()
			if err != nil {
				return nil, err
			}
			f.Left = left
		}
		if w.Right != nil {
			right, err := w.Right.ToNode()
			if err != nil {
				return nil, err
			}
			f.Right = right
		}
		return f, nil
	case fold.KindWrap:
		wr := &fold.WrapProof{
			C: w.C, PiCommit: w.PiCommit, Boundary0: w.Boundary0, Boundary1: w.Boundary1, Mac: w.Mac,
		}
		if w.Wrapped != nil {
			wrapped, err := w.Wrapped.ToNode()
			if err != nil {
				return nil, err
			}
			wr.Wrapped = wrapped
		}
		return wr, nil
	case fold.KindEndpoint:
		return &fold.Endpoint{
			OrigKind: fold.Kind(w.OrigKind), C: w.C, PiCommit: w.PiCommit, Boundary0: w.Boundary0, Boundary1: w.Boundary1, Mac: w.Mac,
		}, nil
	default:
		return nil, sezkperr.New(sezkperr.KindDecodeFormat, fmt.Sprintf("unrecognized proof node kind %d", w.Kind))
	}
}

// WriteProof writes root as a single container at path.
func WriteProof(path string, root fold.Node) error {
	ext, err := detect(path)
	if err != nil {
		return err
	}
	w := FromNode(root)
	var data []byte
	switch ext {
	case ExtCBOR:
		data, err = cbor.Marshal(w)
		if err != nil {
			return sezkperr.Wrap(sezkperr.KindInternal, "encoding proof", err)
		}
	default:
		data, err = json.Marshal(w)
		if err != nil {
			return sezkperr.Wrap(sezkperr.KindInternal, "encoding proof", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return sezkperr.Wrap(sezkperr.KindIO, "writing proof file", err)
	}
	return nil
}

// ReadProof reads a proof container written by WriteProof.
func ReadProof(path string) (fold.Node, error) {
	ext, err := detect(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, sezkperr.Wrap(sezkperr.KindIO, "reading proof file", err)
	}
	var w WireNode
	switch ext {
	case ExtCBOR:
		if err := cbor.Unmarshal(data, &w); err != nil {
			return nil, sezkperr.Wrap(sezkperr.KindDecodeFormat, "decoding proof", err)
		}
	default:
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, sezkperr.Wrap(sezkperr.KindDecodeFormat, "decoding proof", err)
		}
	}
	return w.ToNode()
}
