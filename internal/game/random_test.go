package game

import "testing"

// TestRoundWeightedRandomBounds: results always fall in [min, max-1].
func TestRoundWeightedRandomBounds(t *testing.T) {
	rng := testRand(3)
	ranges := [][2]int{{0, 1}, {1, 2}, {1, 4}, {0, 10}, {3, 7}}
	for _, r := range ranges {
		for round := 1; round <= 10; round++ {
			for i := 0; i < 500; i++ {
				v := RoundWeightedRandom(rng, r[0], r[1], round)
				if v < r[0] || v > r[1]-1 {
					t.Fatalf("range %v round %d: got %d", r, round, v)
				}
			}
		}
	}
}

// TestRoundWeightedRandomBias: early rounds lean low, late rounds lean high.
func TestRoundWeightedRandomBias(t *testing.T) {
	const samples = 20000
	rng := testRand(11)
	mean := func(round int) float64 {
		sum := 0
		for i := 0; i < samples; i++ {
			sum += RoundWeightedRandom(rng, 0, 10, round)
		}
		return float64(sum) / samples
	}

	early, late := mean(1), mean(7)
	mid := 4.5 // mean of a uniform draw over 0..9

	if early >= mid {
		t.Errorf("round 1 mean %.2f should be below %.1f", early, mid)
	}
	if late <= mid {
		t.Errorf("round 7 mean %.2f should be above %.1f", late, mid)
	}
	if late-early < 2 {
		t.Errorf("expected a clear shift between round 1 (%.2f) and round 7 (%.2f)", early, late)
	}
}

// TestNewRandSeedZero: seed 0 still yields a usable source.
func TestNewRandSeedZero(t *testing.T) {
	rng, err := NewRand(0)
	if err != nil {
		t.Fatal(err)
	}
	if v := rng.Intn(10); v < 0 || v >= 10 {
		t.Errorf("Intn out of range: %d", v)
	}
}
