package game

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math"
	"math/rand"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// NewRand returns a PRNG for seed, deriving one from crypto/rand when seed is 0.
func NewRand(seed int64) (*rand.Rand, error) {
	if seed == 0 {
		s, err := NewSeed()
		if err != nil {
			return nil, err
		}
		seed = s
	}
	return rand.New(rand.NewSource(seed)), nil
}

// Shuffle is an in-place Fisher–Yates shuffle driven by rng.
func Shuffle(rng *rand.Rand, cards []*Card) {
	for i := len(cards) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

// RoundWeightedRandom returns a value in [min, maxExclusive-1] whose bias moves from the
// low end in round 1 to the high end from round 5 on.
//
// The blend factor t = clamp01((round-1)/4)*2 walks from the low curve r² (t=0) through
// the uniform r (t=1) to the high curve 1-(1-r)² (t=2).
func RoundWeightedRandom(rng *rand.Rand, min, maxExclusive, round int) int {
	if maxExclusive-1 <= min {
		return min
	}
	r := rng.Float64()
	low := r * r
	high := 1 - (1-r)*(1-r)

	t := clamp01(float64(round-1)/4) * 2
	var curved float64
	if t <= 1 {
		curved = lerp(low, r, t)
	} else {
		curved = lerp(r, high, t-1)
	}

	span := maxExclusive - min
	v := min + int(math.Floor(curved*float64(span)))
	return clampInt(v, min, maxExclusive-1)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
