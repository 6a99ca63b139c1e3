package utils

import (
	"math/rand"
	"time"
)

// userAgents is the rotation pool used to vary request fingerprints. All
// entries are current desktop browser strings.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36 Edg/119.0.0.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
}

// Randomizer wraps the random decisions made by the pipeline (user-agent
// rotation, jittered delays) behind a seedable source so tests are
// deterministic.
type Randomizer struct {
	rng *rand.Rand
}

// NewRandomizer creates a Randomizer seeded from the current time.
func NewRandomizer() *Randomizer {
	return NewSeededRandomizer(time.Now().UnixNano())
}

// NewSeededRandomizer creates a Randomizer with a fixed seed.
func NewSeededRandomizer(seed int64) *Randomizer {
	return &Randomizer{rng: rand.New(rand.NewSource(seed))}
}

// UserAgent picks a random entry from the rotation pool.
func (r *Randomizer) UserAgent() string {
	return userAgents[r.rng.Intn(len(userAgents))]
}

// UserAgentPoolSize returns the number of distinct user agents available.
func UserAgentPoolSize() int {
	return len(userAgents)
}

// Jitter returns a random duration drawn uniformly from [min, max].
func (r *Randomizer) Jitter(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(r.rng.Int63n(int64(max-min)+1))
}
