package tigercache

// Config holds every knob exposed by the facade (spec §6
// "Configuration"). Only StorageType ("" selects "memory") and
// IndexedFields (empty indexes all textual fields) give a zero value a
// meaning of its own; every other zero value is used as given, so
// callers typically start from one of the preset bundles below and
// override what they need.
type Config struct {
	StorageType      string // "memory", "bolt", "badger", or "sqlite"
	StoragePath      string
	PageSize         int
	CacheSize        int // total byte budget for the three in-RAM caches
	MaxMemory        uint64
	CreateIfMissing  bool
	UseCompression   bool
	SyncWrites       bool
	CollectMetrics   bool
	IndexedFields    []string // empty => all textual fields

	MaxDistance           int
	ScoreThreshold        int // scaled x1000, per spec §6
	MaxResults            int
	EnableBackgroundOps   bool
}

// DefaultConfig returns the baseline configuration: in-memory storage,
// a 16MB cache budget, a 256MB memory ceiling, and SearchOptions
// defaults {2, 0, 100}.
func DefaultConfig() Config {
	return Config{
		StorageType:         "memory",
		PageSize:            4096,
		CacheSize:           16 << 20,
		MaxMemory:           256 << 20,
		CreateIfMissing:     true,
		CollectMetrics:      false,
		MaxDistance:         2,
		ScoreThreshold:      0,
		MaxResults:          100,
		EnableBackgroundOps: true,
	}
}

// DevelopmentConfig favours fast iteration: small caches, metrics on,
// background ops on so pressure events are visible while developing.
func DevelopmentConfig() Config {
	cfg := DefaultConfig()
	cfg.CacheSize = 4 << 20
	cfg.MaxMemory = 64 << 20
	cfg.CollectMetrics = true
	return cfg
}

// ProductionConfig favours durability and throughput: large caches,
// synchronous writes, compression on.
func ProductionConfig() Config {
	cfg := DefaultConfig()
	cfg.StorageType = "bolt"
	cfg.CacheSize = 256 << 20
	cfg.MaxMemory = 2 << 30
	cfg.SyncWrites = true
	cfg.UseCompression = true
	cfg.CollectMetrics = true
	return cfg
}

// LowMemoryConfig favours a minimal footprint: tight budgets, no
// background worker, and a stricter (1-edit) default search so
// fuzzy candidate generation stays cheap.
func LowMemoryConfig() Config {
	cfg := DefaultConfig()
	cfg.CacheSize = 512 << 10
	cfg.MaxMemory = 8 << 20
	cfg.EnableBackgroundOps = false
	cfg.MaxDistance = 1
	cfg.MaxResults = 20
	return cfg
}
