package config

// Default configuration values.
const (
	// DefaultWorkers is the default hashing worker count: a single
	// sequential pass. Raise with -j for large trees.
	DefaultWorkers = 1

	// DefaultSHA2 enables the SHA-512/256 digest by default.
	DefaultSHA2 = true

	// DefaultBlake2b disables the BLAKE2b digest by default.
	DefaultBlake2b = false

	// DefaultRetentionDays is how long journal entries are kept by
	// `integrity history clean`.
	DefaultRetentionDays = 90
)

// DefaultExclusions are glob patterns skipped during every build.
var DefaultExclusions = []string{}
