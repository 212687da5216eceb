// Package ioformat implements the block/manifest/proof container formats
// of spec section 6: a binary CBOR encoding, a line-delimited JSON text
// stream (.jsonl/.ndjson), and a single materialized JSON array (.json).
// Readers auto-detect by file extension and expose both a random-access
// reader and a true block.Iterator that never materializes the sequence.
package ioformat

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"github.com/sezkp/sezkp/pkg/block"
	"github.com/sezkp/sezkp/pkg/sezkperr"
)

// Ext identifies one of the three block-file encodings.
type Ext string

const (
	ExtCBOR  Ext = ".cbor"
	ExtJSONL Ext = ".jsonl"
	ExtNDJSON Ext = ".ndjson"
	ExtJSON  Ext = ".json"
)

// maxJSONLLineBytes caps a single .jsonl/.ndjson line well above
// bufio.MaxScanTokenSize (64 KiB): a BlockSummary's movement_log can make
// one serialized block considerably larger than the scanner default.
const maxJSONLLineBytes = 16 * 1024 * 1024

// detect maps a file path to its encoding by extension (spec 6: "Readers
// MUST auto-detect by file extension").
func detect(path string) (Ext, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case string(ExtCBOR):
		return ExtCBOR, nil
	case string(ExtJSONL):
		return ExtJSONL, nil
	case string(ExtNDJSON):
		return ExtNDJSON, nil
	case string(ExtJSON):
		return ExtJSON, nil
	default:
		return "", sezkperr.New(sezkperr.KindDecodeFormat, fmt.Sprintf("unrecognized block file extension %q", filepath.Ext(path)))
	}
}

// WriteBlocks writes blocks to path, choosing the encoding from its
// extension. CBOR is written as a sequence of independent top-level values
// (no enclosing array), so it can be streamed back one block at a time.
func WriteBlocks(path string, blocks []*block.BlockSummary) error {
	ext, err := detect(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return sezkperr.Wrap(sezkperr.KindIO, "creating block file", err)
	}
	defer f.Close()

	switch ext {
	case ExtCBOR:
		enc := cbor.NewEncoder(f)
		for _, b := range blocks {
			if err := enc.Encode(b); err != nil {
				return sezkperr.Wrap(sezkperr.KindInternal, "encoding block", err)
			}
		}
	case ExtJSONL, ExtNDJSON:
		w := bufio.NewWriter(f)
		enc := json.NewEncoder(w)
		for _, b := range blocks {
			if err := enc.Encode(b); err != nil {
				return sezkperr.Wrap(sezkperr.KindInternal, "encoding block", err)
			}
		}
		if err := w.Flush(); err != nil {
			return sezkperr.Wrap(sezkperr.KindIO, "flushing block file", err)
		}
	case ExtJSON:
		if err := json.NewEncoder(f).Encode(blocks); err != nil {
			return sezkperr.Wrap(sezkperr.KindInternal, "encoding blocks array", err)
		}
	}
	if err := f.Sync(); err != nil {
		return sezkperr.Wrap(sezkperr.KindIO, "flushing block file", err)
	}
	return nil
}

// ReadBlocks materializes the full block sequence at path. Use OpenIterator
// instead when the caller wants O(log T) memory over a .cbor/.jsonl/.ndjson
// stream; for .json the sequence is materialized either way (spec 6).
func ReadBlocks(path string) ([]*block.BlockSummary, error) {
	it, closer, err := OpenIterator(path)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	var out []*block.BlockSummary
	for {
		b, err := it.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// OpenIterator opens path for one-block-at-a-time reading. The returned
// io.Closer must be closed once the caller is done (or has reached io.EOF).
func OpenIterator(path string) (block.Iterator, io.Closer, error) {
	ext, err := detect(path)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, sezkperr.Wrap(sezkperr.KindIO, "opening block file", err)
	}

	switch ext {
	case ExtCBOR:
		return &cborIterator{dec: cbor.NewDecoder(f)}, f, nil
	case ExtJSONL, ExtNDJSON:
		sc := bufio.NewScanner(f)
		sc.Buffer(make([]byte, 0, 64*1024), maxJSONLLineBytes)
		return &jsonlIterator{sc: sc}, f, nil
	case ExtJSON:
		var blocks []*block.BlockSummary
		if err := json.NewDecoder(f).Decode(&blocks); err != nil {
			f.Close()
			return nil, nil, sezkperr.Wrap(sezkperr.KindDecodeFormat, "decoding blocks array", err)
		}
		return block.NewSliceIterator(blocks), f, nil
	}
	f.Close()
	return nil, nil, sezkperr.New(sezkperr.KindInternal, "unreachable block extension branch")
}

type cborIterator struct {
	dec *cbor.Decoder
}

func (it *cborIterator) Next() (*block.BlockSummary, error) {
	var b block.BlockSummary
	if err := it.dec.Decode(&b); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, sezkperr.Wrap(sezkperr.KindDecodeFormat, "decoding cbor block", err)
	}
	return &b, nil
}

type jsonlIterator struct {
	sc *bufio.Scanner
}

func (it *jsonlIterator) Next() (*block.BlockSummary, error) {
	if !it.sc.Scan() {
		if err := it.sc.Err(); err != nil {
			return nil, sezkperr.Wrap(sezkperr.KindIO, "reading jsonl block file", err)
		}
		return nil, io.EOF
	}
	line := bytes.TrimSpace(it.sc.Bytes())
	if len(line) == 0 {
		return it.Next() // skip blank lines
	}
	var b block.BlockSummary
	if err := json.Unmarshal(line, &b); err != nil {
		return nil, sezkperr.Wrap(sezkperr.KindDecodeFormat, "decoding jsonl block", err)
	}
	return &b, nil
}
