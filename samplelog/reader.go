package samplelog

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// Reader replays a Log written by Create/Append, in append order.
type Reader struct {
	file   *os.File
	dec    *zstd.Decoder
	reader io.Reader
}

// Open opens path for reading. compressed must match the value passed to
// Create when the log was written.
func Open(path string, compressed bool) (*Reader, error) {
	f, err := os.Open(path) //nolint:gosec // audit log path is caller-controlled
	if err != nil {
		return nil, fmt.Errorf("samplelog: open %s: %w", path, err)
	}

	br := bufio.NewReader(f)
	r := &Reader{file: f, reader: br}
	if compressed {
		dec, err := zstd.NewReader(br)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("samplelog: new zstd reader: %w", err)
		}
		r.dec = dec
		r.reader = dec
	}
	return r, nil
}

// Next reads the next record, or returns io.EOF when the log is exhausted.
func (r *Reader) Next() (Record, error) {
	var header [3]int64
	if err := binary.Read(r.reader, binary.LittleEndian, &header); err != nil {
		return Record{}, err
	}
	index, kEff, n := int(header[0]), int(header[1]), int(header[2])

	nodes := make([]float64, n)
	if err := binary.Read(r.reader, binary.LittleEndian, nodes); err != nil {
		return Record{}, fmt.Errorf("samplelog: read nodes: %w", err)
	}
	weights := make([]float64, n)
	if err := binary.Read(r.reader, binary.LittleEndian, weights); err != nil {
		return Record{}, fmt.Errorf("samplelog: read weights: %w", err)
	}

	return Record{Index: index, KEff: kEff, Nodes: nodes, Weights: weights}, nil
}

// Close releases the underlying file (and decompressor, if any).
func (r *Reader) Close() error {
	if r.dec != nil {
		r.dec.Close()
	}
	return r.file.Close()
}
