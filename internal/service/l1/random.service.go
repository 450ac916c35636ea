package l1_service

import (
	"math"
	"math/rand"
	"time"
)

// RandomSource is the single source of randomness for a simulation run.
// it is not safe for concurrent use; give each goroutine its own
type RandomSource interface {
	Seed(seed int64)
	NextFloat() float64
	NextNormal(mean, stddev float64) float64
	CurrentSeed() int64
	IsSeeded() bool
}

type randomSourceHandler struct {
	rng    *rand.Rand
	seed   int64
	seeded bool
}

// NewRandomSource seeds from the wall clock. results are not reproducible
// and IsSeeded reports false until Seed is called
func NewRandomSource() RandomSource {
	seed := time.Now().UnixNano()
	return &randomSourceHandler{
		rng:    rand.New(rand.NewSource(seed)),
		seed:   seed,
		seeded: false,
	}
}

func NewSeededRandomSource(seed int64) RandomSource {
	r := &randomSourceHandler{}
	r.Seed(seed)
	return r
}

func (r *randomSourceHandler) Seed(seed int64) {
	r.rng = rand.New(rand.NewSource(seed))
	r.seed = seed
	r.seeded = true
}

func (r *randomSourceHandler) NextFloat() float64 {
	return r.rng.Float64()
}

// NextNormal uses Box-Muller over two NextFloat draws. no spare value is
// cached, so every call consumes exactly two uniforms
func (r *randomSourceHandler) NextNormal(mean, stddev float64) float64 {
	u1 := r.NextFloat()
	u2 := r.NextFloat()
	// u1 can be 0, and log(0) is -Inf
	if u1 < 1e-300 {
		u1 = 1e-300
	}
	z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
	return mean + stddev*z
}

func (r *randomSourceHandler) CurrentSeed() int64 {
	return r.seed
}

func (r *randomSourceHandler) IsSeeded() bool {
	return r.seeded
}

// DeriveSeed mixes a base seed with a stream index (splitmix64 finaliser)
// so that worker i gets the same seed no matter how many workers exist
func DeriveSeed(base int64, stream uint64) int64 {
	z := uint64(base) + (stream+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	z = z ^ (z >> 31)
	return int64(z)
}
