package internal

// Shared limits for the scanner and worker pool

const (
	DefaultMaxNestingDepth = 512 // Maximum bracket nesting accepted by the scanner
	MaxShortString         = 10  // Strings up to this length are stored inline
	MaxPoolWorkers         = 256
)
