// Package samplelog provides an append-only, optionally zstd-compressed
// audit log of completed SLQ samples, for long stochastic runs where a
// caller wants to resume or audit progress without rerunning matvecs. It
// is adapted from the teacher's write-ahead log, trimmed to the
// single-writer, append-only shape this use case needs: no group commit,
// no checkpoint thresholds, no replay-for-crash-recovery machinery.
package samplelog

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/hupe1980/slq/internal/kernel"
	"github.com/klauspost/compress/zstd"
)

// Record is one completed sample: its index, the number of Lanczos steps
// actually taken, and the resulting quadrature nodes/weights. Values are
// widened to float64 for the log regardless of the driver's scalar type;
// this is lossless for a float64 driver and exact (not lossy) for a
// float32 one, since every float32 value is exactly representable in
// float64.
type Record struct {
	Index   int
	KEff    int
	Nodes   []float64
	Weights []float64
}

// FromSample builds a Record from a driver's native scalar slices.
func FromSample[F kernel.Float](i, kEff int, nodes, weights []F) Record {
	return Record{Index: i, KEff: kEff, Nodes: widen(nodes), Weights: widen(weights)}
}

func widen[F kernel.Float](v []F) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

// Log is an append-only sample log backed by a single file.
type Log struct {
	mu     sync.Mutex
	file   *os.File
	bw     *bufio.Writer
	enc    *zstd.Encoder // nil when uncompressed
	writer io.Writer
	closed bool
}

// Create opens path for writing, truncating any existing content. When
// compressed is true, records are written through a streaming zstd
// encoder.
func Create(path string, compressed bool) (*Log, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) //nolint:gosec // audit log, not secret material
	if err != nil {
		return nil, fmt.Errorf("samplelog: open %s: %w", path, err)
	}

	bw := bufio.NewWriter(f)

	l := &Log{file: f, bw: bw, writer: bw}
	if compressed {
		enc, err := zstd.NewWriter(bw)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("samplelog: new zstd writer: %w", err)
		}
		l.enc = enc
		l.writer = enc
	}
	return l, nil
}

// Append writes one record to the log. Safe for concurrent use.
func (l *Log) Append(rec Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return fmt.Errorf("samplelog: append to closed log")
	}
	if len(rec.Nodes) != len(rec.Weights) {
		return fmt.Errorf("samplelog: len(nodes)=%d != len(weights)=%d", len(rec.Nodes), len(rec.Weights))
	}

	header := [3]int64{int64(rec.Index), int64(rec.KEff), int64(len(rec.Nodes))}
	if err := binary.Write(l.writer, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("samplelog: write header: %w", err)
	}
	if err := binary.Write(l.writer, binary.LittleEndian, rec.Nodes); err != nil {
		return fmt.Errorf("samplelog: write nodes: %w", err)
	}
	if err := binary.Write(l.writer, binary.LittleEndian, rec.Weights); err != nil {
		return fmt.Errorf("samplelog: write weights: %w", err)
	}
	return nil
}

// Sync flushes buffered data (through the compressor, if any) and fsyncs
// the underlying file.
func (l *Log) Sync() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.syncLocked()
}

func (l *Log) syncLocked() error {
	if l.enc != nil {
		if err := l.enc.Flush(); err != nil {
			return fmt.Errorf("samplelog: flush zstd: %w", err)
		}
	}
	if err := l.bw.Flush(); err != nil {
		return fmt.Errorf("samplelog: flush buffer: %w", err)
	}
	return l.file.Sync()
}

// Close flushes and closes the log. Safe to call more than once.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true

	if l.enc != nil {
		if err := l.enc.Close(); err != nil {
			l.file.Close()
			return fmt.Errorf("samplelog: close zstd: %w", err)
		}
	}
	if err := l.bw.Flush(); err != nil {
		l.file.Close()
		return fmt.Errorf("samplelog: flush buffer: %w", err)
	}
	return l.file.Close()
}

// ReduceFunc is the sample-reducer shape samplelog composes with; it is
// structurally identical to the root package's Reducer type, so callers
// convert with a plain type conversion at the call site
// (samplelog.ReduceFunc[F](myReducer)).
type ReduceFunc[F kernel.Float] func(i int, q, Q, nodes, weights []F) error

// Wrap returns a ReduceFunc that first invokes f, then — only if f
// succeeds — appends the sample to log. This lets a caller keep their own
// reducer (e.g. a running-mean accumulator) while also getting a durable
// audit trail, without the log dictating reducer semantics.
func Wrap[F kernel.Float](f ReduceFunc[F], log *Log) ReduceFunc[F] {
	return func(i int, q, Q, nodes, weights []F) error {
		if err := f(i, q, Q, nodes, weights); err != nil {
			return err
		}
		kEff := len(nodes)
		return log.Append(FromSample(i, kEff, nodes, weights))
	}
}
