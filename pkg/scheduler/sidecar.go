package scheduler

import (
	"encoding/binary"
	"errors"
	"io"
	"os"

	"github.com/fxamacker/cbor/v2"

	"github.com/sezkp/sezkp/pkg/fold"
	"github.com/sezkp/sezkp/pkg/sezkperr"
)

// endpointKey identifies a tree position: (level, index), per spec 4.8.
type endpointKey struct {
	level int
	index int
}

// sidecarRecord is one elided interior proof body, record-framed with a
// 4-byte little-endian length prefix in the .cborseq sidecar file (spec
// section 6).
type sidecarRecord struct {
	Level     int32    `cbor:"1,keyasint"`
	Index     int32    `cbor:"2,keyasint"`
	Kind      uint8    `cbor:"3,keyasint"`
	C         [32]byte `cbor:"4,keyasint"`
	PiCommit  [32]byte `cbor:"5,keyasint"`
	Boundary0 [32]byte `cbor:"6,keyasint"`
	Boundary1 [32]byte `cbor:"7,keyasint"`
	Mac       [32]byte `cbor:"8,keyasint"`
	ARE       []byte   `cbor:"9,keyasint,omitempty"`
}

func recordFromNode(level, index int, n fold.Node) sidecarRecord {
	rec := sidecarRecord{
		Level:     int32(level),
		Index:     int32(index),
		Kind:      uint8(n.Kind()),
		C:         n.Commitment(),
		Boundary0: n.BoundaryIn(),
		Boundary1: n.BoundaryOut(),
		Mac:       n.MAC(),
	}
	switch v := n.(type) {
	case *fold.FoldProof:
		rec.PiCommit = v.PiCommit
		rec.ARE = v.ARE
	case *fold.WrapProof:
		rec.PiCommit = v.PiCommit
	}
	return rec
}

// SidecarWriter is the append-only writer side of the sidecar (spec 4/5/6:
// "The sidecar file is append-only while proving"). Records are assigned
// monotonically increasing 0-based indices in write order.
type SidecarWriter struct {
	f       *os.File
	nextIdx uint64
}

// CreateSidecar creates (truncating) the sidecar file at path.
func CreateSidecar(path string) (*SidecarWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, sezkperr.Wrap(sezkperr.KindIO, "creating sidecar", err)
	}
	return &SidecarWriter{f: f}, nil
}

// Append writes the elided body of n (at the given tree position) as the
// next sidecar record and returns its 0-based record index plus the total
// number of bytes written (length prefix included), so callers can report
// sidecar growth to metrics.
func (w *SidecarWriter) Append(level, index int, n fold.Node) (uint64, int, error) {
	rec := recordFromNode(level, index, n)
	payload, err := cbor.Marshal(rec)
	if err != nil {
		return 0, 0, sezkperr.Wrap(sezkperr.KindInternal, "encoding sidecar record", err)
	}
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	if _, err := w.f.Write(lenBuf[:]); err != nil {
		return 0, 0, sezkperr.Wrap(sezkperr.KindIO, "writing sidecar length prefix", err)
	}
	if _, err := w.f.Write(payload); err != nil {
		return 0, 0, sezkperr.Wrap(sezkperr.KindIO, "writing sidecar record", err)
	}
	idx := w.nextIdx
	w.nextIdx++
	return idx, len(lenBuf) + len(payload), nil
}

// Close flushes and closes the sidecar file.
func (w *SidecarWriter) Close() error {
	if err := w.f.Sync(); err != nil {
		return sezkperr.Wrap(sezkperr.KindIO, "flushing sidecar", err)
	}
	return w.f.Close()
}

// SidecarReader is the read-only, verify-time side of the sidecar. It scans
// the file once, tolerating a truncated dangling record at EOF (spec 5:
// "cancellation ... does not corrupt the sidecar because partial records
// are ignored"), and indexes fully-read records by (level, index).
type SidecarReader struct {
	records map[endpointKey]sidecarRecord
	count   int
}

// OpenSidecar reads and indexes the sidecar file at path.
func OpenSidecar(path string) (*SidecarReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, sezkperr.Wrap(sezkperr.KindIO, "opening sidecar", err)
	}
	defer f.Close()

	r := &SidecarReader{records: make(map[endpointKey]sidecarRecord)}
	var lenBuf [4]byte
	for {
		if _, err := io.ReadFull(f, lenBuf[:]); err != nil {
			if errors.Is(err, io.EOF) {
				break // clean end of file
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				break // truncated length prefix: ignore dangling tail
			}
			return nil, sezkperr.Wrap(sezkperr.KindIO, "reading sidecar length prefix", err)
		}
		n := binary.LittleEndian.Uint32(lenBuf[:])
		payload := make([]byte, n)
		if _, err := io.ReadFull(f, payload); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break // truncated record body: ignore dangling tail
			}
			return nil, sezkperr.Wrap(sezkperr.KindIO, "reading sidecar record", err)
		}
		var rec sidecarRecord
		if err := cbor.Unmarshal(payload, &rec); err != nil {
			return nil, sezkperr.Wrap(sezkperr.KindDecodeFormat, "decoding sidecar record", err)
		}
		r.records[endpointKey{level: int(rec.Level), index: int(rec.Index)}] = rec
		r.count++
	}
	return r, nil
}

// Lookup returns the stored record for (level, index), if fully read.
func (r *SidecarReader) Lookup(level, index int) (sidecarRecord, bool) {
	rec, ok := r.records[endpointKey{level: level, index: index}]
	return rec, ok
}

// Count reports how many complete records were indexed.
func (r *SidecarReader) Count() int { return r.count }
