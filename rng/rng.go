// Package rng provides the isotropic random-vector capability consumed by
// the SLQ driver. The generator itself — beyond the fill(buffer, tid)
// contract — is an external collaborator; this package fixes the
// Distribution vocabulary and ships one deterministic, per-thread-stream
// default implementation built on math/rand, in the style of the
// teacher's util.RNG.
package rng

import (
	"math"
	"math/rand"

	"github.com/hupe1980/slq/internal/kernel"
)

// Distribution selects the isotropic distribution used to fill a probe.
type Distribution int

const (
	// Rademacher draws each component uniformly from {-1, +1}.
	Rademacher Distribution = iota
	// Sphere draws a vector uniform on the sqrt(n)-scaled unit sphere.
	Sphere
	// Normal draws each component from a standard normal distribution.
	Normal
)

func (d Distribution) String() string {
	switch d {
	case Rademacher:
		return "Rademacher"
	case Sphere:
		return "Sphere"
	case Normal:
		return "Normal"
	default:
		return "Unknown"
	}
}

// Source is the isotropic RNG capability the SLQ driver consumes.
// Implementations must support independent, thread-safe draws per stream
// id after Initialize has been called.
type Source[F kernel.Float] interface {
	// Initialize prepares numThreads independent streams seeded from seed.
	// Idempotent: calling it again resets all streams.
	Initialize(numThreads int, seed int64)

	// Fill writes an isotropic sample of length len(dst) into dst, drawn
	// from stream tid using distribution dist. 𝔼[v vᵀ] = I for every dist.
	Fill(dst []F, tid int, dist Distribution) error
}

// MathRand is the default Source, backed by one *rand.Rand per thread id,
// each seeded independently by splitting the run seed (splitmix64-style)
// so that streams are reproducible and stream-stable across choices of
// numThreads, matching the "seed-stable stream-per-tid mapping" property
// spec.md's testable properties rely on.
type MathRand[F kernel.Float] struct {
	streams []*rand.Rand
}

// NewMathRand returns an uninitialized MathRand; call Initialize before use.
func NewMathRand[F kernel.Float]() *MathRand[F] {
	return &MathRand[F]{}
}

// Initialize implements Source.
func (m *MathRand[F]) Initialize(numThreads int, seed int64) {
	if numThreads < 1 {
		numThreads = 1
	}
	m.streams = make([]*rand.Rand, numThreads)
	s := uint64(seed)
	for tid := range m.streams {
		s = splitMix64(s)
		m.streams[tid] = rand.New(rand.NewSource(int64(s))) //nolint:gosec // deterministic sampling, not cryptographic
	}
}

// Fill implements Source.
func (m *MathRand[F]) Fill(dst []F, tid int, dist Distribution) error {
	if tid < 0 || tid >= len(m.streams) {
		return errOutOfRange(tid, len(m.streams))
	}
	r := m.streams[tid]
	n := len(dst)
	switch dist {
	case Rademacher:
		for i := range dst {
			if r.Intn(2) == 0 {
				dst[i] = -1
			} else {
				dst[i] = 1
			}
		}
	case Normal:
		for i := range dst {
			dst[i] = F(r.NormFloat64())
		}
	case Sphere:
		// Uniform on sqrt(n)*S^{n-1}: draw a standard normal vector and
		// rescale to norm sqrt(n).
		var sumSq float64
		for i := range dst {
			g := r.NormFloat64()
			dst[i] = F(g)
			sumSq += g * g
		}
		norm := math.Sqrt(sumSq)
		if norm == 0 {
			return nil
		}
		scale := F(math.Sqrt(float64(n)) / norm)
		for i := range dst {
			dst[i] *= scale
		}
	default:
		return errUnknownDist(dist)
	}
	return nil
}

func splitMix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	z := x
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}
