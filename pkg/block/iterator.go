package block

import "io"

// Iterator yields BlockSummary values one at a time without materializing
// the whole sequence (spec 4.3/9: "a finite, non-restartable iterator").
// Next returns io.EOF (with a nil *BlockSummary) once the stream is
// exhausted.
type Iterator interface {
	Next() (*BlockSummary, error)
}

// SliceIterator adapts an in-memory, already-materialized slice to
// Iterator, for callers that used the random-access reader.
type SliceIterator struct {
	blocks []*BlockSummary
	pos    int
}

// NewSliceIterator wraps blocks as an Iterator.
func NewSliceIterator(blocks []*BlockSummary) *SliceIterator {
	return &SliceIterator{blocks: blocks}
}

// Next implements Iterator.
func (s *SliceIterator) Next() (*BlockSummary, error) {
	if s.pos >= len(s.blocks) {
		return nil, io.EOF
	}
	b := s.blocks[s.pos]
	s.pos++
	return b, nil
}
