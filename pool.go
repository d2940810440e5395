package docpress

import "runtime"

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxPoolSize caps concurrent tasks; soffice and Chrome are memory hungry.
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for converter child processes.
	cpuDivisor = 2
)

// ResolvePoolSize determines the worker count.
// Priority: explicit workers > GOMAXPROCS-based calculation.
// The result is always within [MinPoolSize, MaxPoolSize].
func ResolvePoolSize(workers int) int {
	n := workers
	if n <= 0 {
		// GOMAXPROCS is adjusted by automaxprocs for containers.
		n = runtime.GOMAXPROCS(0) / cpuDivisor
	}

	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
