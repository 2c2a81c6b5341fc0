package variate

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible experiment.
// Two experiments with the same SimulationKey and identical configuration
// MUST produce bit-for-bit identical results.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// === Subsystem Constants ===

const (
	// SubsystemInterarrival drives the interarrival gap sampler of one run.
	// Uses the run seed directly.
	SubsystemInterarrival = "interarrival"

	// SubsystemService drives the service duration sampler of one run.
	SubsystemService = "service"

	// SubsystemBalking drives the balking coin of one run.
	SubsystemBalking = "balking"
)

// SubsystemRun returns the subsystem name for Monte-Carlo repetition i.
// Each repetition derives its own seed from it so runs stay independent
// whatever order they execute in.
func SubsystemRun(i int) string {
	return fmt.Sprintf("run_%d", i)
}

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem.
//
// Derivation formula:
//   - For SubsystemInterarrival: uses masterSeed directly
//   - For all other subsystems: masterSeed XOR fnv1a64(subsystemName)
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
// Concurrent runs each own a PartitionedRNG built from their derived seed.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(p.Seed(name)))
	p.subsystems[name] = rng
	return rng
}

// Seed returns the derived seed for the named subsystem without creating
// an RNG for it.
func (p *PartitionedRNG) Seed(name string) int64 {
	if name == SubsystemInterarrival {
		return int64(p.key)
	}
	return int64(p.key) ^ fnv1a64(name)
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
