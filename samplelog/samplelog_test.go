package samplelog

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndReplayUncompressed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.log")

	l, err := Create(path, false)
	require.NoError(t, err)
	require.NoError(t, l.Append(FromSample(0, 3, []float64{1, 2, 3}, []float64{0.2, 0.3, 0.5})))
	require.NoError(t, l.Append(FromSample(1, 2, []float64{4, 5}, []float64{0.4, 0.6})))
	require.NoError(t, l.Close())

	r, err := Open(path, false)
	require.NoError(t, err)
	defer r.Close()

	rec1, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, 0, rec1.Index)
	assert.Equal(t, []float64{1, 2, 3}, rec1.Nodes)

	rec2, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, 1, rec2.Index)
	assert.Equal(t, []float64{0.4, 0.6}, rec2.Weights)

	_, err = r.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestAppendAndReplayCompressed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.zst.log")

	l, err := Create(path, true)
	require.NoError(t, err)
	require.NoError(t, l.Append(FromSample(7, 4, []float64{1, 2, 3, 4}, []float64{0.1, 0.2, 0.3, 0.4})))
	require.NoError(t, l.Close())

	r, err := Open(path, true)
	require.NoError(t, err)
	defer r.Close()

	rec, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, 7, rec.Index)
	assert.Equal(t, 4, rec.KEff)
}

func TestWrapComposesReducer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wrapped.log")
	l, err := Create(path, false)
	require.NoError(t, err)

	var calls int
	base := ReduceFunc[float64](func(i int, q, Q, nodes, weights []float64) error {
		calls++
		return nil
	})
	wrapped := Wrap(base, l)

	require.NoError(t, wrapped(0, nil, nil, []float64{1}, []float64{1}))
	require.NoError(t, l.Close())
	assert.Equal(t, 1, calls)
}

func TestAppendMismatchedLengths(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.log")
	l, err := Create(path, false)
	require.NoError(t, err)
	defer l.Close()

	err = l.Append(Record{Index: 0, Nodes: []float64{1, 2}, Weights: []float64{1}})
	require.Error(t, err)
}
